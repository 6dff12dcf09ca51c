// Command analyze prints quick, human-readable heuristics about the room
// code space at a given capacity. It summarizes code lengths, shows sample
// codes, and estimates the collision probability the code generator faces
// at various concurrent room counts.
package main

import (
	"flag"
	"fmt"
	"io"
	"math"
	"os"

	"partyracer/game/room"
)

func main() {
	capacity := flag.Int("capacity", room.DefaultCodeCapacity, "highest encodable room number")
	flag.Parse()

	if err := analyzeCapacity(os.Stdout, *capacity); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// analyzeCapacity reports on the code space [0, capacity].
func analyzeCapacity(w io.Writer, capacity int) error {
	if capacity < 1 {
		return fmt.Errorf("capacity must be positive, got %d", capacity)
	}
	gen, err := room.NewCodeGenerator(capacity)
	if err != nil {
		return err
	}

	minLen, maxLen, err := codeLengthStats(gen)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "=== Room code space ===\n")
	fmt.Fprintf(w, "Capacity: %d codes (0..%d)\n", gen.Capacity()+1, gen.Capacity())
	fmt.Fprintf(w, "Code length: %d", minLen)
	if maxLen != minLen {
		fmt.Fprintf(w, "..%d", maxLen)
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "\nSample codes:\n")
	for _, n := range sampleNumbers(gen.Capacity()) {
		code, err := gen.Encode(n)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "  %4d -> %s\n", n, code)
	}

	fmt.Fprintf(w, "\nCollision odds when drawing a fresh code:\n")
	for _, rooms := range []int{1, 5, 10, 25, 50, 100} {
		if rooms > gen.Capacity()+1 {
			break
		}
		p := collisionProbability(rooms, gen.Capacity()+1)
		marker := ""
		if p > 0.5 {
			marker = "  ⚠ expect retries"
		}
		fmt.Fprintf(w, "  %3d open rooms: %5.1f%%%s\n", rooms, p*100, marker)
	}

	fmt.Fprintf(w, "\nFull at %d concurrent rooms.\n", gen.Capacity()+1)
	return nil
}

// codeLengthStats encodes the whole range and returns the shortest and
// longest code lengths.
func codeLengthStats(gen *room.CodeGenerator) (minLen, maxLen int, err error) {
	for n := 0; n <= gen.Capacity(); n++ {
		code, err := gen.Encode(n)
		if err != nil {
			return 0, 0, err
		}
		if minLen == 0 || len(code) < minLen {
			minLen = len(code)
		}
		if len(code) > maxLen {
			maxLen = len(code)
		}
	}
	return minLen, maxLen, nil
}

// collisionProbability estimates the chance a random draw hits an already
// open room when n of the space's codes are taken.
func collisionProbability(n, space int) float64 {
	if space <= 0 {
		return 1
	}
	return math.Min(1, float64(n)/float64(space))
}

// sampleNumbers picks a handful of representative room numbers across the
// range.
func sampleNumbers(capacity int) []int {
	candidates := []int{0, 1, capacity / 2, capacity}
	seen := make(map[int]bool)
	result := make([]int, 0, len(candidates))
	for _, n := range candidates {
		if n < 0 || n > capacity || seen[n] {
			continue
		}
		seen[n] = true
		result = append(result, n)
	}
	return result
}
