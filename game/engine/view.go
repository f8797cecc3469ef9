package engine

import (
	"fmt"
	"strings"
)

// CellKind classifies what occupies a board cell in a snapshot
type CellKind string

const (
	CellEmpty  CellKind = "empty"
	CellWall   CellKind = "wall"
	CellNumber CellKind = "number"
	CellPlayer CellKind = "player"
	CellGlitch CellKind = "glitch"
	CellEdge   CellKind = "edge"
)

// CellView describes one cell for presentation
type CellView struct {
	X        int      `json:"x"`
	Y        int      `json:"y"`
	Kind     CellKind `json:"kind"`
	Display  string   `json:"display,omitempty"`
	Matches  bool     `json:"matches,omitempty"`
	HasValue bool     `json:"has_value,omitempty"`
}

// DescribeCell reports what occupies p. Glitches and the player take precedence over numbers.
func (gs *GameState) DescribeCell(p Position) CellView {
	view := CellView{X: p.X, Y: p.Y, Kind: CellEmpty}
	if !InBounds(p, gs.GridSize) {
		view.Kind = CellEdge
		return view
	}
	if gs.IsWall(p) {
		view.Kind = CellWall
		return view
	}
	if n, ok := gs.NumberAt(p); ok {
		view.Kind = CellNumber
		view.Display = n.Value.Display
		view.HasValue = true
		view.Matches = gs.Rule.Matches(n.Value)
	}
	if gs.PlayerPos.Equal(p) {
		view.Kind = CellPlayer
	}
	if gs.GlitchesActive && gs.EnemyAt(p) {
		view.Kind = CellGlitch
	}
	return view
}

// LocalView returns the 8 cells around the player, north first then clockwise.
// Cells beyond the edge are reported as CellEdge.
func (gs *GameState) LocalView() []CellView {
	offsets := []struct{ dx, dy int }{
		{0, -1}, {1, -1}, {1, 0}, {1, 1}, {0, 1}, {-1, 1}, {-1, 0}, {-1, -1},
	}
	out := make([]CellView, len(offsets))
	for i, o := range offsets {
		out[i] = gs.DescribeCell(Position{X: gs.PlayerPos.X + o.dx, Y: gs.PlayerPos.Y + o.dy})
	}
	return out
}

// RenderRows draws the board as fixed-width text rows.
// P is the player, G a glitch, # a wall, . an empty cell.
func (gs *GameState) RenderRows() []string {
	width := 1
	for _, n := range gs.RemainingNumbers {
		if l := len([]rune(n.Value.Display)); l > width {
			width = l
		}
	}

	rows := make([]string, gs.GridSize)
	for y := 0; y < gs.GridSize; y++ {
		cells := make([]string, gs.GridSize)
		for x := 0; x < gs.GridSize; x++ {
			cell := gs.DescribeCell(Position{X: x, Y: y})
			var s string
			switch cell.Kind {
			case CellPlayer:
				s = "P"
			case CellGlitch:
				s = "G"
			case CellWall:
				s = "#"
			case CellNumber:
				s = cell.Display
			default:
				s = "."
			}
			cells[x] = fmt.Sprintf("%*s", width, s)
		}
		rows[y] = strings.Join(cells, " ")
	}
	return rows
}

// Summary returns a one-line status for logs and tool output
func (gs *GameState) Summary() string {
	return fmt.Sprintf("level %d | %s | score %d | lives %d | remaining %d | player (%d,%d)",
		gs.Level, gs.Rule.Name(), gs.Score, gs.Lives, gs.RemainingMatching(), gs.PlayerPos.X, gs.PlayerPos.Y)
}
