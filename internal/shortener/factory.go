package shortener

import (
	"fmt"
)

// NewGenerator creates a random generator; a non-zero seed selects the
// deterministic one
func NewGenerator(config Config) (Generator, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid shortener config: %w", err)
	}

	if config.Seed != 0 {
		return NewSeededGenerator(config), nil
	}
	return NewNanoIDGenerator(config), nil
}
