// Command validate provides a small CLI that checks the server's on-disk
// data before deployment. It validates:
//   - Time-control preset JSON files in the presets directory
//   - Stored match files in the matches directory: JSON structure, required
//     fields, and that the recorded move log replays to the recorded position
//
// It prints a concise report and exits non-zero if anything is invalid.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mcp-arcade/chess-match-server/game/config"
	"github.com/mcp-arcade/chess-match-server/game/match"
)

var (
	presetsDir = flag.String("presets-dir", "presets", "Directory containing time-control presets")
	matchesDir = flag.String("matches-dir", "matches", "Directory containing stored match files")
)

// ValidationResult captures the outcome of validating a single file.
// If Valid is true, Notes contains informational messages; otherwise it
// accumulates the errors that were found.
type ValidationResult struct {
	File  string
	Valid bool
	Notes []string
}

func (r *ValidationResult) fail(format string, args ...interface{}) {
	r.Valid = false
	r.Notes = append(r.Notes, fmt.Sprintf(format, args...))
}

func (r *ValidationResult) note(format string, args ...interface{}) {
	r.Notes = append(r.Notes, fmt.Sprintf(format, args...))
}

// validatePresetFile loads one preset JSON file and runs the preset rules
// over it.
func validatePresetFile(filePath string) ValidationResult {
	result := ValidationResult{
		File:  filepath.Base(filePath),
		Valid: true,
		Notes: []string{},
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		result.fail("Failed to read file: %v", err)
		return result
	}

	var preset config.Preset
	if err := json.Unmarshal(data, &preset); err != nil {
		result.fail("Invalid JSON: %v", err)
		return result
	}

	if err := config.ValidatePreset(&preset); err != nil {
		result.fail("Invalid preset: %v", err)
		return result
	}

	expected := strings.TrimSuffix(filepath.Base(filePath), ".json")
	if preset.Name != expected {
		result.fail("Preset name %q does not match file name %q", preset.Name, expected)
		return result
	}

	result.note("Name: %s", preset.Name)
	if preset.InitialSeconds == 0 {
		result.note("Untimed")
	} else {
		result.note("Time: %ds + %ds increment", preset.InitialSeconds, preset.IncrementSeconds)
	}
	return result
}

// validateMatchFile loads one stored match file and verifies the snapshot
// restores, which replays the full move log against the rules engine and
// cross-checks the recorded position.
func validateMatchFile(filePath string) ValidationResult {
	result := ValidationResult{
		File:  filepath.Base(filePath),
		Valid: true,
		Notes: []string{},
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		result.fail("Failed to read file: %v", err)
		return result
	}

	var snap match.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		result.fail("Invalid JSON: %v", err)
		return result
	}

	if snap.ID == "" {
		result.fail("Missing match id")
	}
	if snap.White == "" || snap.Black == "" {
		result.fail("Missing participants (white=%q black=%q)", snap.White, snap.Black)
	}
	expected := strings.TrimSuffix(filepath.Base(filePath), ".json")
	if snap.ID != "" && snap.ID != expected {
		result.fail("Match id %q does not match file name %q", snap.ID, expected)
	}
	if !result.Valid {
		return result
	}

	m, err := match.Restore(&snap)
	if err != nil {
		result.fail("Replay failed: %v", err)
		return result
	}

	result.note("Match: %s vs %s", m.White(), m.Black())
	result.note("Status: %s", m.Status())
	result.note("Moves: %d replayed cleanly", len(m.MoveLog()))
	if m.Result() != "" {
		result.note("Result: %s", m.Result())
	}
	return result
}

// validateDir runs validate over every *.json file in dir and reports
// whether all of them passed. A missing directory is skipped, not an error.
func validateDir(dir, label string, validate func(string) ValidationResult) bool {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		fmt.Printf("\nSkipping %s: directory %s does not exist\n", label, dir)
		return true
	}

	files, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		fmt.Printf("Error finding %s files: %v\n", label, err)
		return false
	}

	fmt.Printf("\nValidating %d %s file(s) in %s\n", len(files), label, dir)

	allValid := true
	for _, file := range files {
		result := validate(file)

		fmt.Printf("\n%s %s\n", strings.Repeat("=", 20), result.File)
		if result.Valid {
			fmt.Println("VALID")
			for _, note := range result.Notes {
				fmt.Println("  " + note)
			}
		} else {
			fmt.Println("INVALID")
			allValid = false
			for _, note := range result.Notes {
				fmt.Println("  ! " + note)
			}
		}
	}
	return allValid
}

func main() {
	flag.Parse()

	presetsOK := validateDir(*presetsDir, "preset", validatePresetFile)
	matchesOK := validateDir(*matchesDir, "match", validateMatchFile)

	fmt.Printf("\n%s\n", strings.Repeat("=", 40))
	if presetsOK && matchesOK {
		fmt.Println("All files are valid")
	} else {
		fmt.Println("Some files have errors")
		os.Exit(1)
	}
}
