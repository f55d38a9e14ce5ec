package shortener

import (
	"context"
	"fmt"
)

// Generator defines the interface for generating candidate short codes.
// Generators do not check uniqueness; the store's constraint does.
type Generator interface {
	// GenerateShortCode returns a new candidate short code
	GenerateShortCode(ctx context.Context) (string, error)

	// Type returns the type identifier of the generator
	Type() string

	// Close performs cleanup when the generator is no longer needed
	Close() error
}

// Config holds configuration for shortener generators
type Config struct {
	Length      int    `yaml:"length"`       // Number of symbols in a code
	Alphabet    string `yaml:"alphabet"`     // Symbols codes are drawn from
	Seed        uint64 `yaml:"seed"`         // Non-zero selects the deterministic generator
	MaxAttempts int    `yaml:"max_attempts"` // Insert attempts before giving up
}

// Alphanumeric is the default 62-symbol code alphabet
const Alphanumeric = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// GeneratorType constants
const (
	TypeNanoID   = "nanoid"
	TypeSeeded   = "seeded"
	TypeSequence = "sequence"
)

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		Length:      6,
		Alphabet:    Alphanumeric,
		MaxAttempts: 32,
	}
}

// Validate checks that the configuration can produce codes
func (c Config) Validate() error {
	if c.Length < 1 {
		return fmt.Errorf("code length must be positive, got: %d", c.Length)
	}
	if len(c.Alphabet) < 2 {
		return fmt.Errorf("alphabet must contain at least 2 symbols, got: %q", c.Alphabet)
	}
	seen := make(map[rune]struct{}, len(c.Alphabet))
	for _, r := range c.Alphabet {
		if !isUnreserved(r) {
			return fmt.Errorf("alphabet symbol %q is not URL-safe", r)
		}
		if _, dup := seen[r]; dup {
			return fmt.Errorf("alphabet contains duplicate symbol %q", r)
		}
		seen[r] = struct{}{}
	}
	if c.MaxAttempts < 1 {
		return fmt.Errorf("max attempts must be positive, got: %d", c.MaxAttempts)
	}
	return nil
}

// isUnreserved reports whether r may appear in a URL path segment without
// escaping (RFC 3986 unreserved characters).
func isUnreserved(r rune) bool {
	switch {
	case 'a' <= r && r <= 'z', 'A' <= r && r <= 'Z', '0' <= r && r <= '9':
		return true
	}
	return r == '-' || r == '.' || r == '_' || r == '~'
}
