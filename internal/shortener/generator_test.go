package shortener

import (
	"context"
	"strings"
	"sync"
	"testing"
)

func assertCodeFormat(t *testing.T, code string, config Config) {
	t.Helper()

	if len(code) != config.Length {
		t.Errorf("Expected code length %d, got %d for code %s", config.Length, len(code), code)
	}
	for _, char := range code {
		if !strings.ContainsRune(config.Alphabet, char) {
			t.Errorf("Code %s contains symbol %q outside the alphabet", code, char)
		}
	}
}

func TestNanoIDGenerator_GenerateShortCode(t *testing.T) {
	config := DefaultConfig()
	generator := NewNanoIDGenerator(config)
	defer generator.Close()

	ctx := context.Background()
	codes := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		code, err := generator.GenerateShortCode(ctx)
		if err != nil {
			t.Fatalf("GenerateShortCode failed: %v", err)
		}
		assertCodeFormat(t, code, config)
		codes[code] = true
	}

	// 62^6 possibilities; 1000 draws colliding is vanishingly unlikely
	if len(codes) < 999 {
		t.Errorf("Expected nearly all codes to be distinct, got %d of 1000", len(codes))
	}
}

func TestNanoIDGenerator_CustomLength(t *testing.T) {
	config := Config{Length: 10, Alphabet: "xyz", MaxAttempts: 1}
	generator := NewNanoIDGenerator(config)

	code, err := generator.GenerateShortCode(context.Background())
	if err != nil {
		t.Fatalf("GenerateShortCode failed: %v", err)
	}
	assertCodeFormat(t, code, config)
}

func TestNanoIDGenerator_CancelledContext(t *testing.T) {
	generator := NewNanoIDGenerator(DefaultConfig())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := generator.GenerateShortCode(ctx); err == nil {
		t.Error("Expected error for cancelled context")
	}
}

func TestSeededGenerator_Deterministic(t *testing.T) {
	config := DefaultConfig()
	config.Seed = 1234

	first := NewSeededGenerator(config)
	second := NewSeededGenerator(config)

	ctx := context.Background()
	for i := 0; i < 50; i++ {
		a, err := first.GenerateShortCode(ctx)
		if err != nil {
			t.Fatalf("GenerateShortCode failed: %v", err)
		}
		b, err := second.GenerateShortCode(ctx)
		if err != nil {
			t.Fatalf("GenerateShortCode failed: %v", err)
		}
		if a != b {
			t.Fatalf("Same seed produced different codes at step %d: %s vs %s", i, a, b)
		}
		assertCodeFormat(t, a, config)
	}
}

func TestSeededGenerator_DifferentSeeds(t *testing.T) {
	config := DefaultConfig()
	config.Seed = 1
	first := NewSeededGenerator(config)
	config.Seed = 2
	second := NewSeededGenerator(config)

	ctx := context.Background()
	same := 0
	for i := 0; i < 20; i++ {
		a, _ := first.GenerateShortCode(ctx)
		b, _ := second.GenerateShortCode(ctx)
		if a == b {
			same++
		}
	}
	if same == 20 {
		t.Error("Different seeds produced identical sequences")
	}
}

func TestSeededGenerator_UsesWholeAlphabet(t *testing.T) {
	config := Config{Length: 1, Alphabet: "ab", Seed: 7, MaxAttempts: 1}
	generator := NewSeededGenerator(config)

	seen := make(map[string]int)
	for i := 0; i < 200; i++ {
		code, err := generator.GenerateShortCode(context.Background())
		if err != nil {
			t.Fatalf("GenerateShortCode failed: %v", err)
		}
		seen[code]++
	}

	if seen["a"] == 0 || seen["b"] == 0 {
		t.Errorf("Expected both symbols to appear, got %v", seen)
	}
}

func TestSeededGenerator_ConcurrentUse(t *testing.T) {
	config := DefaultConfig()
	config.Seed = 99
	generator := NewSeededGenerator(config)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				code, err := generator.GenerateShortCode(context.Background())
				if err != nil {
					t.Errorf("GenerateShortCode failed: %v", err)
					return
				}
				if len(code) != config.Length {
					t.Errorf("Unexpected code length: %s", code)
				}
			}
		}()
	}
	wg.Wait()
}

func TestSequenceGenerator(t *testing.T) {
	generator := NewSequenceGenerator("aaa", "bbb")
	ctx := context.Background()

	expected := []string{"aaa", "bbb", "aaa"}
	for i, want := range expected {
		got, err := generator.GenerateShortCode(ctx)
		if err != nil {
			t.Fatalf("GenerateShortCode failed: %v", err)
		}
		if got != want {
			t.Errorf("Step %d: expected %s, got %s", i, want, got)
		}
	}

	if generator.Calls() != 3 {
		t.Errorf("Expected 3 calls, got %d", generator.Calls())
	}
	if generator.Type() != TypeSequence {
		t.Errorf("Expected type %s, got %s", TypeSequence, generator.Type())
	}
}

func TestSequenceGenerator_Empty(t *testing.T) {
	generator := NewSequenceGenerator()

	if _, err := generator.GenerateShortCode(context.Background()); err == nil {
		t.Error("Expected error from empty sequence")
	}
}
