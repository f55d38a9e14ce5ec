package shortener

import (
	"context"
	"math/rand/v2"
	"sync"
)

// SeededGenerator draws codes uniformly from the alphabet using a
// deterministic PCG source, so a given seed always yields the same sequence
type SeededGenerator struct {
	mu       sync.Mutex
	rng      *rand.Rand
	alphabet string
	length   int
}

// NewSeededGenerator creates a deterministic generator seeded with config.Seed
func NewSeededGenerator(config Config) *SeededGenerator {
	return &SeededGenerator{
		rng:      rand.New(rand.NewPCG(config.Seed, config.Seed^0x9E3779B97F4A7C15)),
		alphabet: config.Alphabet,
		length:   config.Length,
	}
}

// GenerateShortCode generates the next short code in the seeded sequence
func (g *SeededGenerator) GenerateShortCode(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	code := make([]byte, g.length)

	g.mu.Lock()
	for i := range code {
		code[i] = g.alphabet[g.rng.IntN(len(g.alphabet))]
	}
	g.mu.Unlock()

	return string(code), nil
}

// Type returns the generator type
func (g *SeededGenerator) Type() string {
	return TypeSeeded
}

// Close performs cleanup
func (g *SeededGenerator) Close() error {
	return nil
}

// Ensure SeededGenerator implements Generator interface
var _ Generator = (*SeededGenerator)(nil)
