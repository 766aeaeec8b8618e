// Command validate checks game configuration JSON files. For each file it
// reports:
//   - JSON structure and required fields
//   - grid bounds and an even number of cells
//   - an image pool large enough for the board, with no duplicates
//   - duration and mismatch delay bounds
//   - pacing warnings for boards that leave very little time per pair
//
// Arguments are files or directories; directories are scanned for *.json.
// With no arguments the configs directory is scanned.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/wricardo/memory-match-game/game/engine"
)

// minSecondsPerPair is the pace below which a board is flagged as very hard
const minSecondsPerPair = 3.0

// ValidationResult captures the outcome of validating a single file.
// Errors holds failures when Valid is false. Notes holds informational lines
// and warnings either way.
type ValidationResult struct {
	File   string
	Valid  bool
	Errors []string
	Notes  []string
}

func (r *ValidationResult) fail(format string, args ...any) {
	r.Valid = false
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

// validateConfig loads and validates a single configuration JSON file
func validateConfig(filePath string) ValidationResult {
	result := ValidationResult{
		File:  filepath.Base(filePath),
		Valid: true,
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		result.fail("Failed to read file: %v", err)
		return result
	}

	var config engine.GameConfig
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&config); err != nil {
		result.fail("Invalid JSON: %v", err)
		return result
	}

	if err := engine.ValidateGameConfig(&config); err != nil {
		result.fail("%v", err)
		return result
	}

	pairs := config.PairsNeeded()
	result.Notes = append(result.Notes,
		fmt.Sprintf("✓ %q: %dx%d board, %d pairs", config.Name, config.Rows, config.Cols, pairs),
		fmt.Sprintf("✓ %d seconds, %s mismatch delay", config.DurationSeconds, config.MismatchDelay()),
	)

	if spare := len(config.Images) - pairs; spare > 0 {
		result.Notes = append(result.Notes, fmt.Sprintf("✓ %d images unused on this board", spare))
	}

	pace := float64(config.DurationSeconds) / float64(pairs)
	if pace < minSecondsPerPair {
		result.Notes = append(result.Notes,
			fmt.Sprintf("⚠ only %.1fs per pair; most players will run out of time", pace))
	}

	return result
}

// collectFiles expands directories into their *.json files
func collectFiles(paths []string) ([]string, error) {
	var files []string
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			files = append(files, path)
			continue
		}
		matches, err := filepath.Glob(filepath.Join(path, "*.json"))
		if err != nil {
			return nil, err
		}
		files = append(files, matches...)
	}
	return files, nil
}

// main validates each file, printing a concise report and exiting with
// non-zero status if any are invalid.
func main() {
	paths := os.Args[1:]
	if len(paths) == 0 {
		paths = []string{"configs"}
	}

	files, err := collectFiles(paths)
	if err != nil {
		fmt.Printf("Error finding config files: %v\n", err)
		os.Exit(1)
	}
	if len(files) == 0 {
		fmt.Println("No configuration files found")
		os.Exit(1)
	}

	allValid := true
	for _, file := range files {
		result := validateConfig(file)

		fmt.Printf("\n%s %s\n", strings.Repeat("=", 20), result.File)

		if result.Valid {
			fmt.Println("✅ VALID")
		} else {
			fmt.Println("❌ INVALID")
			allValid = false
			for _, err := range result.Errors {
				fmt.Println("  ❌ " + err)
			}
		}
		for _, note := range result.Notes {
			fmt.Println("  " + note)
		}
	}

	fmt.Printf("\n%s\n", strings.Repeat("=", 40))
	if allValid {
		fmt.Println("✅ All configurations are valid!")
	} else {
		fmt.Println("❌ Some configurations have errors")
		os.Exit(1)
	}
}
