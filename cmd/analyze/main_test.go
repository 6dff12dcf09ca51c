package main

import (
	"bytes"
	"strings"
	"testing"

	"partyracer/game/room"
)

func TestAnalyzeCapacityReport(t *testing.T) {
	var buf bytes.Buffer
	if err := analyzeCapacity(&buf, 150); err != nil {
		t.Fatalf("analyzeCapacity failed: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "151 codes") {
		t.Errorf("Report should state the code count, got:\n%s", out)
	}
	if !strings.Contains(out, "Sample codes") {
		t.Errorf("Report should include sample codes, got:\n%s", out)
	}
	if !strings.Contains(out, "Full at 151 concurrent rooms") {
		t.Errorf("Report should state the saturation point, got:\n%s", out)
	}
}

func TestAnalyzeCapacityRejectsNegative(t *testing.T) {
	var buf bytes.Buffer
	if err := analyzeCapacity(&buf, -5); err == nil {
		t.Error("A negative capacity should be rejected")
	}
}

func TestCodeLengthStats(t *testing.T) {
	gen, err := room.NewCodeGenerator(150)
	if err != nil {
		t.Fatalf("Failed to create generator: %v", err)
	}

	minLen, maxLen, err := codeLengthStats(gen)
	if err != nil {
		t.Fatalf("codeLengthStats failed: %v", err)
	}
	if minLen < 4 {
		t.Errorf("Codes should be at least 4 characters, shortest was %d", minLen)
	}
	if maxLen < minLen {
		t.Errorf("Max length %d below min length %d", maxLen, minLen)
	}
}

func TestCollisionProbability(t *testing.T) {
	if p := collisionProbability(0, 151); p != 0 {
		t.Errorf("No open rooms means no collisions, got %v", p)
	}
	if p := collisionProbability(151, 151); p != 1 {
		t.Errorf("A full space always collides, got %v", p)
	}
	if p := collisionProbability(75, 150); p != 0.5 {
		t.Errorf("Half-full space should collide half the time, got %v", p)
	}
}

func TestSampleNumbersStayInRange(t *testing.T) {
	for _, capacity := range []int{0, 1, 150} {
		for _, n := range sampleNumbers(capacity) {
			if n < 0 || n > capacity {
				t.Errorf("Sample %d out of range for capacity %d", n, capacity)
			}
		}
	}
}
