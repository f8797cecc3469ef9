// Command autoplay plays Num Dash against a running server through the REST API.
// A greedy strategy walks to the nearest matching cell, avoiding wrong numbers
// and glitches when it can, and continues level after level until the game ends.
package main

import (
	"flag"
	"log"
	"os"
	"time"

	"github.com/wricardo/numdash/game/service"
)

// game is the subset of the REST client the play loop needs
type game interface {
	GetState() (*service.Snapshot, error)
	Move(direction string) (*service.MoveResult, error)
	NextLevel() (*service.MoveResult, error)
}

// playOptions bounds a play loop
type playOptions struct {
	MaxMoves int
	Delay    time.Duration
	Verbose  bool
}

// play runs moves until the game is over, won, or MaxMoves is spent.
// It returns the last snapshot and the number of moves sent.
func play(g game, snap *service.Snapshot, opts playOptions) (*service.Snapshot, int, error) {
	strategy := NewGreedyStrategy()
	moveCount := 0

	for snap != nil && snap.Status != service.StatusGameOver && moveCount < opts.MaxMoves {
		switch snap.Status {
		case service.StatusLevelComplete:
			log.Printf("✅ Level %d complete, score %d", snap.Level, snap.Score)
			result, err := g.NextLevel()
			if err != nil {
				return snap, moveCount, err
			}
			snap = result.Snapshot
			strategy.Reset()
			continue

		case service.StatusStarting:
			time.Sleep(50 * time.Millisecond)
			next, err := g.GetState()
			if err != nil {
				return snap, moveCount, err
			}
			snap = next
			continue
		}

		if opts.Verbose && moveCount%25 == 0 {
			log.Printf("Level %d, Score %d, Lives %d, Remaining %d", snap.Level, snap.Score, snap.Lives, snap.Remaining)
		}

		direction := strategy.NextMove(snap.State)
		if direction == "" {
			log.Printf("⚠️  No valid moves available")
			return snap, moveCount, nil
		}

		result, err := g.Move(direction)
		if err != nil {
			return snap, moveCount, err
		}
		moveCount++
		if opts.Verbose && !result.Success {
			log.Printf("Move %s: %s", direction, result.Message)
		}
		snap = result.Snapshot

		if opts.Delay > 0 {
			time.Sleep(opts.Delay)
		}
	}

	return snap, moveCount, nil
}

func main() {
	serverURL := flag.String("url", "http://localhost:8080", "Game server URL")
	configName := flag.String("config", "", "Level catalogue name (default: server default)")
	mode := flag.String("mode", "normal", "Game mode: normal or challenge")
	player := flag.String("player", "", "Player name for the high score table")
	seed := flag.Int64("seed", 0, "Board seed (0 = random)")
	realTime := flag.Bool("real-time", false, "Let glitches move on the server timer")
	maxMoves := flag.Int("max-moves", 5000, "Maximum moves before giving up")
	verbose := flag.Bool("v", false, "Verbose output")
	delayMs := flag.Int("delay", 0, "Delay between moves in milliseconds (0 = no delay)")
	flag.Parse()

	gameMode, ok := service.ParseMode(*mode)
	if !ok {
		log.Fatalf("Unknown mode: %s", *mode)
	}

	log.Printf("Connecting to game server at %s", *serverURL)
	client := NewClient(*serverURL)

	snap, err := client.CreateSession(service.CreateSessionOptions{
		ConfigName: *configName,
		Mode:       gameMode,
		PlayerName: *player,
		Seed:       *seed,
		ManualTick: !*realTime,
	})
	if err != nil {
		log.Fatalf("Failed to create session: %v", err)
	}
	log.Printf("✨ Session created: %s (rule: %s)", client.SessionID(), snap.RuleName)

	final, moves, err := play(client, snap, playOptions{
		MaxMoves: *maxMoves,
		Delay:    time.Duration(*delayMs) * time.Millisecond,
		Verbose:  *verbose,
	})
	if err != nil {
		log.Printf("Play stopped: %v", err)
	}
	if final == nil {
		os.Exit(1)
	}

	log.Printf("Finished after %d moves: level %d, score %d, status %s", moves, final.Level, final.Score, final.Status)
	log.Printf("Session: %s", client.SessionID())
	if final.Status != service.StatusGameOver || final.Lives == 0 {
		os.Exit(1)
	}
	log.Printf("🎉 VICTORY!")
}
