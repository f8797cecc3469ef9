package engine

import (
	"strings"
	"testing"
)

func TestNewEngine(t *testing.T) {
	config := createTestConfig()
	plan, _ := config.PlanLevel(1, false)

	engine, err := NewEngine(config, plan, 0, config.Lives, testRNG())
	if err != nil {
		t.Fatalf("Failed to create engine: %v", err)
	}

	state := engine.GetState()
	if state.Message != config.Messages.Welcome {
		t.Errorf("Expected welcome message, got %q", state.Message)
	}
	if state.PlayerPos != (Position{X: 4, Y: 4}) {
		t.Errorf("Expected fixed start (4,4), got %v", state.PlayerPos)
	}
	if engine.GetLives() != 3 || engine.GetScore() != 0 {
		t.Errorf("Unexpected lives/score %d/%d", engine.GetLives(), engine.GetScore())
	}
	if engine.GetPlan().Number != 1 {
		t.Errorf("Expected plan for level 1, got %d", engine.GetPlan().Number)
	}

	t.Run("invalid config", func(t *testing.T) {
		bad := createTestConfig()
		bad.Name = ""
		if _, err := NewEngine(bad, plan, 0, 3, testRNG()); err == nil {
			t.Error("Expected error for invalid config")
		}
	})

	t.Run("nil rng", func(t *testing.T) {
		if _, err := NewEngine(config, plan, 0, 3, nil); err == nil {
			t.Error("Expected error for nil rng")
		}
	})
}

func TestEngineSnapshotIsolation(t *testing.T) {
	gs := newTestState(5, Even())
	addNumber(gs, 1, 0, Literal(2))
	addNumber(gs, 4, 4, Literal(4))
	engine := NewEngineWithState(createTestConfig(), gs, testRNG())

	snap := engine.GetState()
	snap.Score = 999
	snap.RemainingNumbers[0].Value.Display = "x"

	if engine.GetScore() != 0 {
		t.Error("Expected snapshot edits not to reach the engine")
	}
	if engine.GetState().RemainingNumbers[0].Value.Display != "2" {
		t.Error("Expected snapshot edits not to reach the engine's numbers")
	}
}

func TestEngineMoveUsesCatalogueMessages(t *testing.T) {
	gs := newTestState(5, Even())
	addNumber(gs, 1, 0, Literal(2))
	addNumber(gs, 0, 1, Literal(3))
	addNumber(gs, 4, 4, Literal(4))
	addNumber(gs, 3, 4, Literal(6))
	config := createTestConfig()
	engine := NewEngineWithState(config, gs, testRNG())

	res := engine.Move(Right)
	if res.Outcome != OutcomeCollectCorrect || engine.GetState().Message != "Nice!" {
		t.Errorf("Expected correct message, got %s %q", res.Outcome, engine.GetState().Message)
	}

	res = engine.MoveTo(Position{X: 1, Y: 1})
	if res.Outcome != OutcomePlainMove {
		t.Errorf("Expected plain move, got %s", res.Outcome)
	}

	res = engine.Move(Left)
	if res.Outcome != OutcomeCollectWrong || engine.GetState().Message != "Oops!" {
		t.Errorf("Expected wrong message, got %s %q", res.Outcome, engine.GetState().Message)
	}
	if engine.GetLives() != 2 {
		t.Errorf("Expected 2 lives, got %d", engine.GetLives())
	}
}

func TestEngineLevelCompleteAndGameOverMessages(t *testing.T) {
	t.Run("level complete", func(t *testing.T) {
		gs := newTestState(5, Even())
		addNumber(gs, 1, 0, Literal(2))
		engine := NewEngineWithState(createTestConfig(), gs, testRNG())

		engine.Move(Right)
		if !engine.IsLevelComplete() {
			t.Fatal("Expected level complete")
		}
		if got := engine.GetState().Message; got != "Level 1 done!" {
			t.Errorf("Expected level message, got %q", got)
		}
		if len(engine.GetPossibleMoves()) != 0 {
			t.Error("Expected no moves after level complete")
		}
	})

	t.Run("game over", func(t *testing.T) {
		gs := newTestState(5, Even())
		gs.Lives = 1
		gs.Score = 50
		addNumber(gs, 1, 0, Literal(3))
		addNumber(gs, 4, 4, Literal(2))
		engine := NewEngineWithState(createTestConfig(), gs, testRNG())

		engine.Move(Right)
		if !engine.IsGameOver() {
			t.Fatal("Expected game over")
		}
		if got := engine.GetState().Message; got != "Game over with 50 points" {
			t.Errorf("Expected game over message, got %q", got)
		}
	})
}

func TestEngineGetPossibleMoves(t *testing.T) {
	gs := newTestState(5, Even())
	gs.Walls = []Position{{X: 1, Y: 0}}
	addNumber(gs, 4, 4, Literal(2))
	engine := NewEngineWithState(nil, gs, testRNG())

	moves := engine.GetPossibleMoves()
	if len(moves) != 1 || moves[0] != Down {
		t.Errorf("Expected only down from the corner, got %v", moves)
	}
	if engine.CanMove("sideways") {
		t.Error("Expected unknown direction to be rejected")
	}
}

func TestEngineTickAndBulkMove(t *testing.T) {
	gs := newTestState(6, Even())
	gs.EnemyPositions = []Position{{X: 5, Y: 5}}
	addNumber(gs, 3, 0, Literal(2))
	addNumber(gs, 5, 0, Literal(4))
	engine := NewEngineWithState(createTestConfig(), gs, testRNG())

	if res := engine.Tick(); res.Outcome != OutcomeIgnored {
		t.Errorf("Expected tick before activation to be ignored, got %s", res.Outcome)
	}
	if res := engine.ActivateGlitches(); !res.HasEvent(EventGlitchesActive) {
		t.Error("Expected activation event")
	}
	if res := engine.Tick(); res.Outcome == OutcomeIgnored {
		t.Error("Expected tick after activation")
	}

	results := engine.BulkMove([]Direction{Right, Right, Right})
	if len(results) == 0 {
		t.Fatal("Expected bulk move results")
	}
	if engine.GetState().TotalMoves == 0 {
		t.Error("Expected moves to be recorded")
	}
}

func TestRenderRows(t *testing.T) {
	gs := newTestState(4, Even())
	gs.Walls = []Position{{X: 1, Y: 1}}
	gs.GlitchesActive = true
	gs.EnemyPositions = []Position{{X: 3, Y: 3}}
	addNumber(gs, 1, 0, Literal(12))

	rows := gs.RenderRows()
	if len(rows) != 4 {
		t.Fatalf("Expected 4 rows, got %d", len(rows))
	}
	if rows[0] != " P 12  .  ." {
		t.Errorf("Unexpected first row %q", rows[0])
	}
	if !strings.Contains(rows[1], "#") || !strings.HasSuffix(rows[3], "G") {
		t.Errorf("Unexpected rows %q", rows)
	}
}

func TestDescribeCell(t *testing.T) {
	gs := newTestState(4, Even())
	gs.Walls = []Position{{X: 1, Y: 1}}
	addNumber(gs, 1, 0, Literal(12))
	addNumber(gs, 2, 0, Literal(7))
	gs.EnemyPositions = []Position{{X: 3, Y: 3}}

	if c := gs.DescribeCell(Position{X: 1, Y: 0}); c.Kind != CellNumber || !c.Matches || c.Display != "12" {
		t.Errorf("Unexpected number cell %+v", c)
	}
	if c := gs.DescribeCell(Position{X: 2, Y: 0}); c.Matches {
		t.Error("Expected 7 not to match even")
	}
	if c := gs.DescribeCell(Position{X: 1, Y: 1}); c.Kind != CellWall {
		t.Errorf("Expected wall, got %s", c.Kind)
	}
	if c := gs.DescribeCell(Position{X: 3, Y: 3}); c.Kind != CellEmpty {
		t.Errorf("Expected a sleeping glitch to be hidden, got %s", c.Kind)
	}
	if c := gs.DescribeCell(Position{X: 9, Y: 0}); c.Kind != CellEdge {
		t.Errorf("Expected edge, got %s", c.Kind)
	}

	view := gs.LocalView()
	if len(view) != 8 || view[0].Kind != CellEdge || view[2].Kind != CellNumber {
		t.Errorf("Unexpected local view %+v", view)
	}
}
