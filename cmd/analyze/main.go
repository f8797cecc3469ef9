// Command analyze prints board generation heuristics for the level catalogues
// in a config directory. For every level it generates sample boards and
// summarizes walls, matching cell counts and whether every passable cell can be
// reached from the player start.
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"math/rand"
	"os"

	"github.com/urfave/cli/v3"
	"github.com/wricardo/numdash/game/config"
	"github.com/wricardo/numdash/game/engine"
)

// LevelReport summarizes the sample boards generated for one level
type LevelReport struct {
	Number       int
	Rule         string
	GridSize     int
	Enemies      int
	Samples      int
	AvgWalls     float64
	MinMatches   int
	MaxMatches   int
	AvgMatches   float64
	ShortBoards  int // boards with fewer matches than the generator minimum
	Disconnected int // boards where some passable cell is cut off from the start
}

func main() {
	cmd := &cli.Command{
		Name:      "analyze",
		Usage:     "Report board generation statistics for level catalogues",
		ArgsUsage: "[catalogue...]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "config-dir",
				Value: "configs",
				Usage: "directory containing level catalogues",
			},
			&cli.IntFlag{
				Name:  "samples",
				Value: 50,
				Usage: "boards generated per level",
			},
			&cli.IntFlag{
				Name:  "seed",
				Value: 1,
				Usage: "first generation seed",
			},
			&cli.BoolFlag{
				Name:  "challenge",
				Usage: "also analyze the first challenge cycle",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return run(os.Stdout, cmd.String("config-dir"), cmd.Args().Slice(),
				int(cmd.Int("samples")), int64(cmd.Int("seed")), cmd.Bool("challenge"))
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

func run(w io.Writer, dir string, names []string, samples int, seed int64, challenge bool) error {
	manager, err := config.NewManager(dir)
	if err != nil {
		return err
	}

	if len(names) == 0 {
		infos, err := manager.ListConfigs()
		if err != nil {
			return err
		}
		for _, info := range infos {
			names = append(names, info.ConfigID)
		}
	}

	for _, name := range names {
		fmt.Fprintf(w, "\n=== Analyzing %s ===\n", name)
		cfg, err := manager.LoadConfig(name)
		if err != nil {
			fmt.Fprintf(w, "Error loading catalogue: %v\n", err)
			continue
		}
		reports, err := analyzeConfig(cfg, samples, seed, challenge)
		if err != nil {
			fmt.Fprintf(w, "Error analyzing catalogue: %v\n", err)
			continue
		}
		fmt.Fprintf(w, "Name: %s\n", cfg.Name)
		fmt.Fprintf(w, "Levels: %d, Lives: %d, Grace: %dms\n", len(cfg.Levels), cfg.Lives, cfg.GracePeriodMs)
		for _, r := range reports {
			printReport(w, r)
		}
	}
	return nil
}

// analyzeConfig reports every catalogue level, plus the second pass when challenge is set
func analyzeConfig(cfg *engine.GameConfig, samples int, seed int64, challenge bool) ([]LevelReport, error) {
	count := len(cfg.Levels)
	if challenge {
		count *= 2
	}

	var reports []LevelReport
	for n := 1; n <= count; n++ {
		plan, ok := cfg.PlanLevel(n, challenge)
		if !ok {
			break
		}
		report, err := analyzeLevel(plan, samples, seed)
		if err != nil {
			return nil, fmt.Errorf("level %d: %w", n, err)
		}
		reports = append(reports, report)
	}
	return reports, nil
}

// analyzeLevel generates samples boards for plan using consecutive seeds
func analyzeLevel(plan engine.LevelPlan, samples int, seed int64) (LevelReport, error) {
	if samples < 1 {
		samples = 1
	}

	report := LevelReport{
		Number:     plan.Number,
		GridSize:   plan.GridSize,
		Enemies:    plan.EnemyCount,
		Samples:    samples,
		MinMatches: -1,
	}

	totalWalls, totalMatches := 0, 0
	for i := 0; i < samples; i++ {
		rng := rand.New(rand.NewSource(seed + int64(i)))
		rule, err := engine.NewRule(plan.Level.Rule, plan.Level.Target, rng)
		if err != nil {
			return LevelReport{}, err
		}
		if report.Rule == "" {
			report.Rule = string(plan.Level.Rule)
		}

		board := engine.GenerateBoard(plan.GeneratorConfig(rule), rng)
		matches := board.MatchingCount(rule)

		totalWalls += len(board.Walls)
		totalMatches += matches
		if report.MinMatches == -1 || matches < report.MinMatches {
			report.MinMatches = matches
		}
		if matches > report.MaxMatches {
			report.MaxMatches = matches
		}
		if matches < engine.MinMatchCount(board.FreeCellCount()) {
			report.ShortBoards++
		}
		if !connected(board) {
			report.Disconnected++
		}
	}

	report.AvgWalls = float64(totalWalls) / float64(samples)
	report.AvgMatches = float64(totalMatches) / float64(samples)
	return report, nil
}

// connected reports whether every non-wall cell is reachable from the player start
func connected(board *engine.Board) bool {
	walls := make(map[engine.Position]bool, len(board.Walls))
	for _, w := range board.Walls {
		walls[w] = true
	}
	passable := board.Size*board.Size - len(walls)
	reached := engine.ReachableFrom(board.PlayerStart, board.Size, func(p engine.Position) bool {
		return walls[p]
	})
	return reached == passable
}

func printReport(w io.Writer, r LevelReport) {
	fmt.Fprintf(w, "Level %d (%s): %dx%d, %d glitches\n", r.Number, r.Rule, r.GridSize, r.GridSize, r.Enemies)
	fmt.Fprintf(w, "   Walls: %.1f avg | Matches: %d-%d, %.1f avg over %d boards\n",
		r.AvgWalls, r.MinMatches, r.MaxMatches, r.AvgMatches, r.Samples)

	if r.ShortBoards > 0 {
		fmt.Fprintf(w, "⚠️  WARNING: %d boards carry fewer matching cells than required\n", r.ShortBoards)
	}
	if r.Disconnected > 0 {
		fmt.Fprintf(w, "⚠️  CRITICAL: %d boards have cells unreachable from the start!\n", r.Disconnected)
	} else {
		fmt.Fprintf(w, "✅ Every passable cell is reachable from the start\n")
	}
}
