package room

import (
	"strings"
	"testing"
)

func TestCodeGeneratorEncodeShape(t *testing.T) {
	gen, err := NewCodeGenerator(150)
	if err != nil {
		t.Fatalf("NewCodeGenerator failed: %v", err)
	}

	for n := 0; n <= gen.Capacity(); n++ {
		code, err := gen.Encode(n)
		if err != nil {
			t.Fatalf("Encode(%d) failed: %v", n, err)
		}
		if len(code) < 4 {
			t.Errorf("Encode(%d) = %q, expected at least 4 characters", n, code)
		}
		for _, c := range code {
			if !strings.ContainsRune(codeAlphabet, c) {
				t.Errorf("Encode(%d) = %q contains %q outside A-Z", n, code, c)
			}
		}
	}
}

func TestCodeGeneratorRoundTrip(t *testing.T) {
	gen, err := NewCodeGenerator(150)
	if err != nil {
		t.Fatalf("NewCodeGenerator failed: %v", err)
	}

	for n := 0; n <= gen.Capacity(); n++ {
		code, err := gen.Encode(n)
		if err != nil {
			t.Fatalf("Encode(%d) failed: %v", n, err)
		}
		back, err := gen.Decode(code)
		if err != nil {
			t.Fatalf("Decode(%q) failed: %v", code, err)
		}
		if back != n {
			t.Errorf("Round trip mismatch: %d -> %q -> %d", n, code, back)
		}
	}
}

func TestCodeGeneratorDistinctInputsDistinctCodes(t *testing.T) {
	gen, err := NewCodeGenerator(150)
	if err != nil {
		t.Fatalf("NewCodeGenerator failed: %v", err)
	}

	seen := make(map[string]int)
	for n := 0; n <= gen.Capacity(); n++ {
		code, err := gen.Encode(n)
		if err != nil {
			t.Fatalf("Encode(%d) failed: %v", n, err)
		}
		if prev, dup := seen[code]; dup {
			t.Errorf("Code %q produced by both %d and %d", code, prev, n)
		}
		seen[code] = n
	}
}

func TestCodeGeneratorRandomStaysInRange(t *testing.T) {
	gen, err := NewCodeGenerator(10)
	if err != nil {
		t.Fatalf("NewCodeGenerator failed: %v", err)
	}

	for i := 0; i < 200; i++ {
		code, err := gen.Random()
		if err != nil {
			t.Fatalf("Random failed: %v", err)
		}
		n, err := gen.Decode(code)
		if err != nil {
			t.Fatalf("Decode(%q) failed: %v", code, err)
		}
		if n < 0 || n > 10 {
			t.Errorf("Random code %q decodes to %d, outside [0,10]", code, n)
		}
	}
}

func TestCodeGeneratorDefaultCapacity(t *testing.T) {
	gen, err := NewCodeGenerator(0)
	if err != nil {
		t.Fatalf("NewCodeGenerator failed: %v", err)
	}
	if gen.Capacity() != DefaultCodeCapacity {
		t.Errorf("Expected default capacity %d, got %d", DefaultCodeCapacity, gen.Capacity())
	}
}
