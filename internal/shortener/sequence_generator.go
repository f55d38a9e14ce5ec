package shortener

import (
	"context"
	"errors"
	"sync"
)

// SequenceGenerator replays a fixed list of codes, wrapping around at the
// end. Useful for forcing collisions in tests.
type SequenceGenerator struct {
	mu    sync.Mutex
	codes []string
	next  int
	calls int
}

// NewSequenceGenerator creates a generator that returns codes in order
func NewSequenceGenerator(codes ...string) *SequenceGenerator {
	return &SequenceGenerator{codes: codes}
}

// GenerateShortCode returns the next code in the sequence
func (g *SequenceGenerator) GenerateShortCode(ctx context.Context) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if len(g.codes) == 0 {
		return "", errors.New("sequence generator has no codes")
	}

	code := g.codes[g.next]
	g.next = (g.next + 1) % len(g.codes)
	g.calls++
	return code, nil
}

// Calls returns how many codes have been handed out
func (g *SequenceGenerator) Calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}

// Type returns the generator type
func (g *SequenceGenerator) Type() string {
	return TypeSequence
}

// Close performs cleanup
func (g *SequenceGenerator) Close() error {
	return nil
}

// Ensure SequenceGenerator implements Generator interface
var _ Generator = (*SequenceGenerator)(nil)
