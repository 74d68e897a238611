// Command validate checks the game variant files in a directory (default
// ../configs). For each .yaml, .yml or .json file it checks:
//   - the file parses and every field is in range (size, start tiles,
//     win value, four probability)
//   - the win tile can actually be built on a board of that size
//   - the name matches the file's config id and a description is present
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/wricardo/tile-merge-game/game/config"
)

// ValidationResult captures the outcome of validating a single file.
// If Valid is true, Errors contains informational messages; otherwise it
// accumulates the validation errors that were found.
type ValidationResult struct {
	File     string
	Valid    bool
	Errors   []string
	Warnings []string
}

// maxReachableTile is the largest tile a board can hold once every cell
// takes part in one merge chain. ok is false when it does not fit an int.
func maxReachableTile(size int, fourProbability float64) (tile int, ok bool) {
	exp := size * size
	if fourProbability > 0 {
		exp++
	}
	if exp >= 62 {
		return 0, false
	}
	return 1 << exp, true
}

// validateConfig loads and validates a single variant file.
func validateConfig(filePath string) ValidationResult {
	result := ValidationResult{
		File:   filepath.Base(filePath),
		Valid:  true,
		Errors: []string{},
	}

	cfg, err := config.ReadFile(filePath)
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, err.Error())
		return result
	}

	if maxTile, ok := maxReachableTile(cfg.Size, cfg.FourProbability); ok && cfg.WinValue > maxTile {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("win_value %d is unreachable on a %dx%d board (largest possible tile is %d)",
			cfg.WinValue, cfg.Size, cfg.Size, maxTile))
	}

	id := strings.TrimSuffix(result.File, filepath.Ext(result.File))
	if cfg.Name != id {
		result.Warnings = append(result.Warnings, fmt.Sprintf("name %q differs from config id %q; sessions refer to the id", cfg.Name, id))
	}
	if cfg.Description == "" {
		result.Warnings = append(result.Warnings, "description is empty")
	}
	if cfg.StartTiles*2 > cfg.Size*cfg.Size {
		result.Warnings = append(result.Warnings, fmt.Sprintf("start_tiles %d fills more than half the board", cfg.StartTiles))
	}

	if result.Valid {
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Name: %s", cfg.Name))
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Board: %dx%d", cfg.Size, cfg.Size))
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Start tiles: %d", cfg.StartTiles))
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Win tile: %d", cfg.WinValue))
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Four probability: %g", cfg.FourProbability))
	}

	return result
}

// variantFiles lists the variant files in dir, sorted.
func variantFiles(dir string) ([]string, error) {
	var files []string
	for _, pattern := range []string{"*.yaml", "*.yml", "*.json"} {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, err
		}
		files = append(files, matches...)
	}
	sort.Strings(files)
	return files, nil
}

// main validates every variant file in the directory given as the first
// argument, printing a concise report and exiting with non-zero status if
// any are invalid.
func main() {
	configDir := "../configs"
	if len(os.Args) > 1 {
		configDir = os.Args[1]
	}

	files, err := variantFiles(configDir)
	if err != nil {
		fmt.Printf("Error finding config files: %v\n", err)
		os.Exit(1)
	}
	if len(files) == 0 {
		fmt.Printf("No config files found in %s\n", configDir)
		os.Exit(1)
	}

	allValid := true
	for _, file := range files {
		result := validateConfig(file)

		fmt.Printf("\n%s %s\n", strings.Repeat("=", 20), result.File)

		if result.Valid {
			fmt.Println("✅ VALID")
			for _, info := range result.Errors {
				fmt.Println("  " + info)
			}
		} else {
			fmt.Println("❌ INVALID")
			allValid = false
			for _, err := range result.Errors {
				fmt.Println("  ❌ " + err)
			}
		}
		for _, warning := range result.Warnings {
			fmt.Println("  ⚠️  " + warning)
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

