package shortener

import (
	"strings"
	"testing"
)

func TestNewGenerator(t *testing.T) {
	testCases := []struct {
		name         string
		config       Config
		expectedType string
		shouldError  bool
	}{
		{
			name:         "Default config uses nanoid",
			config:       DefaultConfig(),
			expectedType: TypeNanoID,
		},
		{
			name: "Seed selects seeded generator",
			config: Config{
				Length:      6,
				Alphabet:    Alphanumeric,
				Seed:        42,
				MaxAttempts: 4,
			},
			expectedType: TypeSeeded,
		},
		{
			name: "Zero length",
			config: Config{
				Length:      0,
				Alphabet:    Alphanumeric,
				MaxAttempts: 4,
			},
			shouldError: true,
		},
		{
			name: "Single symbol alphabet",
			config: Config{
				Length:      6,
				Alphabet:    "a",
				MaxAttempts: 4,
			},
			shouldError: true,
		},
		{
			name: "Duplicate symbols",
			config: Config{
				Length:      6,
				Alphabet:    "abca",
				MaxAttempts: 4,
			},
			shouldError: true,
		},
		{
			name: "Non-ASCII symbols",
			config: Config{
				Length:      6,
				Alphabet:    "abcé",
				MaxAttempts: 4,
			},
			shouldError: true,
		},
		{
			name: "Zero attempts",
			config: Config{
				Length:      6,
				Alphabet:    Alphanumeric,
				MaxAttempts: 0,
			},
			shouldError: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			generator, err := NewGenerator(tc.config)

			if tc.shouldError {
				if err == nil {
					t.Errorf("Expected error but got none")
				}
				return
			}

			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			defer generator.Close()

			if generator.Type() != tc.expectedType {
				t.Errorf("Expected generator type %s, got %s", tc.expectedType, generator.Type())
			}
		})
	}
}

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if config.Length != 6 {
		t.Errorf("Expected default length 6, got %d", config.Length)
	}
	if len(config.Alphabet) != 62 {
		t.Errorf("Expected 62 symbol alphabet, got %d", len(config.Alphabet))
	}
	if config.Seed != 0 {
		t.Errorf("Expected zero seed, got %d", config.Seed)
	}
	if err := config.Validate(); err != nil {
		t.Errorf("Default config should be valid: %v", err)
	}
	if !strings.ContainsAny(config.Alphabet, "0123456789") || !strings.ContainsAny(config.Alphabet, "az") || !strings.ContainsAny(config.Alphabet, "AZ") {
		t.Errorf("Default alphabet should mix digits, lower and upper case: %s", config.Alphabet)
	}
}

func TestConfigValidate_AlphabetMustBeURLSafe(t *testing.T) {
	testCases := []struct {
		alphabet string
		valid    bool
	}{
		{alphabet: Alphanumeric, valid: true},
		{alphabet: "ab-_", valid: true},
		{alphabet: "a.b~", valid: true},
		{alphabet: "ab/", valid: false},
		{alphabet: "ab?", valid: false},
		{alphabet: "ab#", valid: false},
		{alphabet: "ab ", valid: false},
		{alphabet: "ab%", valid: false},
		{alphabet: "ab+", valid: false},
	}

	for _, tc := range testCases {
		t.Run(tc.alphabet, func(t *testing.T) {
			config := Config{Length: 4, Alphabet: tc.alphabet, MaxAttempts: 4}
			err := config.Validate()

			if tc.valid && err != nil {
				t.Errorf("Expected %q to be accepted, got: %v", tc.alphabet, err)
			}
			if !tc.valid {
				if err == nil {
					t.Fatalf("Expected %q to be rejected", tc.alphabet)
				}
				if !strings.Contains(err.Error(), "not URL-safe") {
					t.Errorf("Unexpected error for %q: %v", tc.alphabet, err)
				}
			}
		})
	}
}
