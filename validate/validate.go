// Command validate checks the level catalogues in a config directory
// (../configs by default). For every JSON or YAML file it checks:
//   - Syntax and required fields
//   - Rule kinds, targets and level bounds (grid size, glitches, wall density)
//   - Message templates (%d placeholders)
//   - Playability: sample boards for each level carry matching cells, and
//     every matching cell is reachable from the player start
package main

import (
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/wricardo/numdash/game/engine"
)

// playabilitySamples is the number of boards generated per level
const playabilitySamples = 5

// ValidationResult captures the outcome of validating a single file.
// If Valid is true, Errors contains informational messages; otherwise it
// accumulates the validation errors that were found.
type ValidationResult struct {
	File   string
	Valid  bool
	Errors []string
}

// validateConfig loads and validates a single catalogue file. It performs
// structural checks first and only samples boards for catalogues that pass them.
func validateConfig(filePath string) ValidationResult {
	result := ValidationResult{
		File:   filepath.Base(filePath),
		Valid:  true,
		Errors: []string{},
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("Failed to read file: %v", err))
		return result
	}

	config, err := engine.ParseGameConfig(filePath, data)
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("Invalid syntax: %v", err))
		return result
	}

	if err := engine.ValidateGameConfig(config); err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, strings.TrimPrefix(err.Error(), "config validation: "))
		return result
	}

	// Playability validation - sample boards per level
	for i := range config.Levels {
		plan, ok := config.PlanLevel(i+1, false)
		if !ok {
			result.Valid = false
			result.Errors = append(result.Errors, fmt.Sprintf("Level %d cannot be planned", i+1))
			continue
		}
		levelResult := validatePlayability(plan)
		if !levelResult.Valid {
			result.Valid = false
		}
		result.Errors = append(result.Errors, levelResult.Errors...)
	}

	// Add informational data
	if result.Valid {
		rules := make(map[string]bool)
		for _, level := range config.Levels {
			rules[string(level.Rule)] = true
		}
		var names []string
		for r := range rules {
			names = append(names, r)
		}
		sort.Strings(names)

		result.Errors = append(result.Errors, fmt.Sprintf("✓ Name: %s", config.Name))
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Levels: %d", len(config.Levels)))
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Rules: %s", strings.Join(names, ", ")))
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Lives: %d", config.Lives))
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Grace period: %dms", config.GracePeriodMs))
	}

	return result
}

// validatePlayability builds sample boards for plan and checks that each one
// has matching cells and that all of them are reachable from the player start.
func validatePlayability(plan engine.LevelPlan) ValidationResult {
	result := ValidationResult{
		Valid:  true,
		Errors: []string{},
	}

	for seed := int64(1); seed <= playabilitySamples; seed++ {
		state, err := engine.BuildLevel(plan, 0, 1, rand.New(rand.NewSource(seed)))
		if err != nil {
			result.Valid = false
			result.Errors = append(result.Errors, fmt.Sprintf("Level %d: %v", plan.Number, err))
			return result
		}

		matching := state.RemainingMatching()
		if matching == 0 {
			result.Valid = false
			result.Errors = append(result.Errors, fmt.Sprintf("Level %d (seed %d): no cell matches %s", plan.Number, seed, state.Rule.Name()))
			continue
		}

		unreachable := unreachableMatches(state)
		if len(unreachable) > 0 {
			result.Valid = false
			result.Errors = append(result.Errors, fmt.Sprintf("Connectivity failure: level %d (seed %d) has %d/%d matching cells unreachable from start", plan.Number, seed, len(unreachable), matching))
			for _, p := range unreachable {
				result.Errors = append(result.Errors, fmt.Sprintf("Unreachable: cell at (%d,%d)", p.X, p.Y))
			}
		}
	}

	if result.Valid {
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Level %d: %d sample boards playable", plan.Number, playabilitySamples))
	}
	return result
}

// unreachableMatches flood fills from the player start using 4-directional
// movement over non-wall cells and returns the matching cells it never reached.
func unreachableMatches(state *engine.GameState) []engine.Position {
	visited := make(map[engine.Position]bool)
	queue := []engine.Position{state.PlayerStart}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		if visited[current] {
			continue
		}
		visited[current] = true

		for _, next := range engine.Neighbors(current, state.GridSize) {
			if !visited[next] && !state.IsWall(next) {
				queue = append(queue, next)
			}
		}
	}

	var unreachable []engine.Position
	for _, cell := range state.RemainingNumbers {
		if state.Rule.Matches(cell.Value) && !visited[cell.Position] {
			unreachable = append(unreachable, cell.Position)
		}
	}
	return unreachable
}

// catalogueFiles lists the JSON and YAML files in dir
func catalogueFiles(dir string) ([]string, error) {
	var files []string
	for _, pattern := range []string{"*.json", "*.yaml", "*.yml"} {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, err
		}
		files = append(files, matches...)
	}
	sort.Strings(files)
	return files, nil
}

// main scans the config directory (first argument, default ../configs) and
// validates each catalogue, printing a concise report and exiting with non-zero
// status if any are invalid.
func main() {
	configDir := "../configs"
	if len(os.Args) > 1 {
		configDir = os.Args[1]
	}

	files, err := catalogueFiles(configDir)
	if err != nil {
		fmt.Printf("Error finding config files: %v\n", err)
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
				if !strings.HasPrefix(err, "✓") {
					fmt.Println("  ❌ " + err)
				}
			}
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
