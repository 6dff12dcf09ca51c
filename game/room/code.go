package room

import (
	"fmt"
	"math/rand"

	"github.com/speps/go-hashids/v2"
)

const (
	// codeAlphabet keeps codes URL and keyboard safe.
	codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"

	// codeLength is the minimum encoded length; hashids pads to it.
	codeLength = 4

	// DefaultCodeCapacity bounds the integer range codes are drawn from.
	// Small on purpose: short ranges keep codes easy to read out loud, and
	// party rooms number in the dozens, not thousands.
	DefaultCodeCapacity = 150
)

// CodeGenerator produces room codes by encoding random integers from a
// bounded range into fixed-length uppercase strings. The encoding is
// reversible, which keeps the code space enumerable for capacity analysis.
type CodeGenerator struct {
	hasher   *hashids.HashID
	capacity int
}

// NewCodeGenerator creates a generator drawing from [0, capacity]. A
// capacity below 1 falls back to DefaultCodeCapacity. The capacity must
// exceed the expected number of concurrently open rooms or code generation
// will stall retrying.
func NewCodeGenerator(capacity int) (*CodeGenerator, error) {
	if capacity < 1 {
		capacity = DefaultCodeCapacity
	}

	data := hashids.NewData()
	data.Alphabet = codeAlphabet
	data.MinLength = codeLength
	data.Salt = ""

	hasher, err := hashids.NewWithData(data)
	if err != nil {
		return nil, fmt.Errorf("failed to build code hasher: %w", err)
	}

	return &CodeGenerator{hasher: hasher, capacity: capacity}, nil
}

// Capacity returns the size of the integer range codes are drawn from.
func (g *CodeGenerator) Capacity() int {
	return g.capacity
}

// Random encodes a random integer from the generator's range. Uniqueness
// against open rooms is the caller's concern.
func (g *CodeGenerator) Random() (string, error) {
	return g.Encode(rand.Intn(g.capacity + 1))
}

// Encode deterministically encodes a single integer into a room code.
func (g *CodeGenerator) Encode(n int) (string, error) {
	code, err := g.hasher.Encode([]int{n})
	if err != nil {
		return "", fmt.Errorf("failed to encode room code: %w", err)
	}
	return code, nil
}

// Decode reverses Encode. Used by the capacity analysis tooling.
func (g *CodeGenerator) Decode(code string) (int, error) {
	nums, err := g.hasher.DecodeWithError(code)
	if err != nil {
		return 0, fmt.Errorf("failed to decode room code %q: %w", code, err)
	}
	if len(nums) != 1 {
		return 0, fmt.Errorf("room code %q decodes to %d values, expected 1", code, len(nums))
	}
	return nums[0], nil
}
