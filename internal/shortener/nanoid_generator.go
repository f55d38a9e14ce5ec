package shortener

import (
	"context"
	"fmt"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// NanoIDGenerator draws codes uniformly from the alphabet using a
// cryptographically secure source
type NanoIDGenerator struct {
	alphabet string
	length   int
}

// NewNanoIDGenerator creates a generator for codes of the configured length and alphabet
func NewNanoIDGenerator(config Config) *NanoIDGenerator {
	return &NanoIDGenerator{
		alphabet: config.Alphabet,
		length:   config.Length,
	}
}

// GenerateShortCode generates a random short code
func (g *NanoIDGenerator) GenerateShortCode(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	code, err := gonanoid.Generate(g.alphabet, g.length)
	if err != nil {
		return "", fmt.Errorf("failed to generate nanoid: %w", err)
	}
	return code, nil
}

// Type returns the generator type
func (g *NanoIDGenerator) Type() string {
	return TypeNanoID
}

// Close performs cleanup
func (g *NanoIDGenerator) Close() error {
	return nil
}

// Ensure NanoIDGenerator implements Generator interface
var _ Generator = (*NanoIDGenerator)(nil)
