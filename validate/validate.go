// Command validate provides a small CLI that validates scene definition JSON
// files in a directory. It checks:
//   - JSON structure and required fields
//   - Positive scene indexes (0 is reserved for the main menu)
//   - Known gamepad layout names
//   - Non-negative countdowns, with a warning for unusually long ones
//   - Duplicate scene indexes across files
//   - Spawn coordinates, when present, for NaN/Inf values
package main

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"partyracer/game/scene"
)

// longCountdownSeconds is the threshold above which a countdown is flagged
// as probably a typo.
const longCountdownSeconds = 30

// ValidationResult captures the outcome of validating a single file.
// If Valid is true, Notes contains informational messages; otherwise it
// accumulates the validation errors that were found.
type ValidationResult struct {
	File  string
	Index int
	Valid bool
	Notes []string
}

// validateSceneFile loads and validates a single scene definition file.
func validateSceneFile(filePath string) ValidationResult {
	result := ValidationResult{
		File:  filepath.Base(filePath),
		Index: -1,
		Valid: true,
		Notes: []string{},
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		result.Valid = false
		result.Notes = append(result.Notes, fmt.Sprintf("Failed to read file: %v", err))
		return result
	}

	var s scene.Scene
	if err := json.Unmarshal(data, &s); err != nil {
		result.Valid = false
		result.Notes = append(result.Notes, fmt.Sprintf("Invalid JSON: %v", err))
		return result
	}
	result.Index = s.Index

	if err := s.Validate(); err != nil {
		result.Valid = false
		result.Notes = append(result.Notes, err.Error())
		return result
	}

	if s.CountdownSeconds > longCountdownSeconds {
		result.Notes = append(result.Notes, fmt.Sprintf("⚠ countdown of %ds is unusually long", s.CountdownSeconds))
	}

	if s.Spawn != nil {
		for axis, v := range map[string]float64{"x": s.Spawn.X, "y": s.Spawn.Y, "z": s.Spawn.Z} {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				result.Valid = false
				result.Notes = append(result.Notes, fmt.Sprintf("Spawn %s coordinate is not a finite number", axis))
			}
		}
	}

	if result.Valid {
		result.Notes = append(result.Notes, fmt.Sprintf("✓ Index: %d", s.Index))
		result.Notes = append(result.Notes, fmt.Sprintf("✓ Name: %s", s.Name))
		result.Notes = append(result.Notes, fmt.Sprintf("✓ Layout: %s", s.Layout))
		result.Notes = append(result.Notes, fmt.Sprintf("✓ Countdown: %ds", s.CountdownSeconds))
		if s.Spawn != nil {
			result.Notes = append(result.Notes, fmt.Sprintf("✓ Spawn: (%.1f, %.1f, %.1f)", s.Spawn.X, s.Spawn.Y, s.Spawn.Z))
		} else {
			result.Notes = append(result.Notes, "✓ Spawn: default")
		}
	}

	return result
}

// validateDir validates every *.json file in dir and flags duplicate scene
// indexes across files.
func validateDir(dir string) ([]ValidationResult, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("error finding scene files: %w", err)
	}

	results := make([]ValidationResult, 0, len(files))
	seen := make(map[int]string)
	for _, file := range files {
		result := validateSceneFile(file)
		if result.Valid {
			if first, dup := seen[result.Index]; dup {
				result.Valid = false
				result.Notes = []string{fmt.Sprintf("Duplicate scene index %d, already used by %s", result.Index, first)}
			} else {
				seen[result.Index] = result.File
			}
		}
		results = append(results, result)
	}
	return results, nil
}

// main validates the scene directory given as the first argument (default
// "scenes"), printing a concise report and exiting non-zero if any file is
// invalid.
func main() {
	dir := "scenes"
	if len(os.Args) > 1 {
		dir = os.Args[1]
	}

	results, err := validateDir(dir)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	if len(results) == 0 {
		fmt.Printf("No scene files found in %s\n", dir)
		os.Exit(1)
	}

	allValid := true
	for _, result := range results {
		fmt.Printf("\n%s %s\n", strings.Repeat("=", 20), result.File)

		if result.Valid {
			fmt.Println("✅ VALID")
			for _, note := range result.Notes {
				fmt.Println("  " + note)
			}
		} else {
			fmt.Println("❌ INVALID")
			allValid = false
			for _, note := range result.Notes {
				fmt.Println("  ❌ " + note)
			}
		}
	}

	fmt.Printf("\n%s\n", strings.Repeat("=", 40))
	if allValid {
		fmt.Println("✅ All scene definitions are valid!")
	} else {
		fmt.Println("❌ Some scene definitions have errors")
		os.Exit(1)
	}
}
