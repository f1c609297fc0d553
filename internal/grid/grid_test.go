package grid

import (
	"math/rand"
	"testing"

	"github.com/vovakirdan/blockduel/internal/core"
	"github.com/vovakirdan/blockduel/internal/piece"
)

// fillRow occupies every cell of a row except the listed columns.
func fillRow(g *Grid, y int, except ...int) {
	skip := make(map[int]bool)
	for _, x := range except {
		skip[x] = true
	}
	for x := 0; x < g.Width(); x++ {
		if !skip[x] {
			g.cells[y][x] = core.ColorRed
		}
	}
}

func occupiedCount(g *Grid) int {
	n := 0
	for y := 0; y < g.Height(); y++ {
		for x := 0; x < g.Width(); x++ {
			if g.IsOccupied(x, y) {
				n++
			}
		}
	}
	return n
}

func TestCollides(t *testing.T) {
	g := NewDefault()
	g.cells[10][5] = core.ColorBlue

	single := piece.New(piece.TypeO, core.ColorYellow) // 2x2 at (X, Y)

	tests := []struct {
		name     string
		x, y     int
		dx, dy   int
		expected bool
	}{
		{"open space", 0, 0, 0, 0, false},
		{"left wall", 0, 0, -1, 0, true},
		{"right wall", 8, 0, 1, 0, true},
		{"floor", 4, 18, 0, 1, true},
		{"resting on floor", 4, 18, 0, 0, false},
		{"occupied cell", 4, 9, 1, 1, true},
		{"above board never hits cells", 5, -2, 0, 0, false},
		{"above board still hits walls", 9, -2, 1, 0, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p := single
			p.X, p.Y = tc.x, tc.y
			if got := g.Collides(p, tc.dx, tc.dy); got != tc.expected {
				t.Errorf("Collides at (%d,%d)+(%d,%d) = %v, expected %v",
					tc.x, tc.y, tc.dx, tc.dy, got, tc.expected)
			}
		})
	}
}

func TestLockAndOccupancy(t *testing.T) {
	g := NewDefault()
	p := piece.New(piece.TypeO, core.ColorYellow)
	p.X, p.Y = 4, 18
	g.Lock(p)

	if occupiedCount(g) != 4 {
		t.Errorf("occupied cells = %d, expected 4", occupiedCount(g))
	}
	for _, c := range [][2]int{{4, 18}, {5, 18}, {4, 19}, {5, 19}} {
		if !g.IsOccupied(c[0], c[1]) {
			t.Errorf("cell (%d,%d) should be occupied", c[0], c[1])
		}
	}
}

func TestLockDropsRowsAboveBoard(t *testing.T) {
	g := NewDefault()
	p := piece.New(piece.TypeO, core.ColorYellow)
	p.X, p.Y = 4, -1
	g.Lock(p)

	// Only the two visible cells land in the grid.
	if occupiedCount(g) != 2 {
		t.Errorf("occupied cells = %d, expected 2", occupiedCount(g))
	}
}

func TestCompletedLinesAlmostFullRow(t *testing.T) {
	g := NewDefault()
	fillRow(g, 19, 9)

	if rows := g.CompletedLines(); len(rows) != 0 {
		t.Errorf("CompletedLines() = %v, expected none", rows)
	}

	// Fill the last gap, the row completes.
	g.cells[19][9] = core.ColorGreen
	rows := g.CompletedLines()
	if len(rows) != 1 || rows[0] != 19 {
		t.Errorf("CompletedLines() = %v, expected [19]", rows)
	}
}

func TestClearLinesShiftsDown(t *testing.T) {
	g := NewDefault()
	fillRow(g, 19)
	g.cells[18][3] = core.ColorBlue

	if n := g.ClearLines(); n != 1 {
		t.Fatalf("ClearLines() = %d, expected 1", n)
	}

	// Bottom row empty again except the shifted leftover cell.
	if !g.IsOccupied(3, 19) {
		t.Error("cell above the cleared row should shift down to row 19")
	}
	if occupiedCount(g) != 1 {
		t.Errorf("occupied cells = %d, expected 1", occupiedCount(g))
	}
}

func TestClearLinesPreservesOrder(t *testing.T) {
	g := NewDefault()
	g.cells[16][0] = core.ColorRed
	fillRow(g, 17)
	g.cells[18][0] = core.ColorBlue
	fillRow(g, 19)

	if n := g.ClearLines(); n != 2 {
		t.Fatalf("ClearLines() = %d, expected 2", n)
	}
	if g.cells[18][0] != core.ColorRed || g.cells[19][0] != core.ColorBlue {
		t.Errorf("surviving rows out of order: row18=%v row19=%v", g.cells[18][0], g.cells[19][0])
	}
}

func TestClearLinesReturnValueMatchesFullRows(t *testing.T) {
	g := NewDefault()
	fillRow(g, 10)
	fillRow(g, 15)
	fillRow(g, 19)
	fillRow(g, 5, 2) // not complete

	before := len(g.CompletedLines())
	if n := g.ClearLines(); n != before {
		t.Errorf("ClearLines() = %d, expected %d (rows complete before call)", n, before)
	}
}

func TestAddGarbage(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	t.Run("full board worth of garbage succeeds", func(t *testing.T) {
		g := NewDefault()
		if !g.AddGarbage(20, rng) {
			t.Fatal("AddGarbage(20) on empty grid should succeed")
		}
		// Each garbage row has exactly one gap.
		for y := 0; y < g.Height(); y++ {
			gaps := 0
			for x := 0; x < g.Width(); x++ {
				if !g.IsOccupied(x, y) {
					gaps++
				}
			}
			if gaps != 1 {
				t.Errorf("row %d has %d gaps, expected 1", y, gaps)
			}
		}
	})

	t.Run("more than height fails", func(t *testing.T) {
		g := NewDefault()
		if g.AddGarbage(21, rng) {
			t.Fatal("AddGarbage(21) on a 20-row grid should fail")
		}
		if occupiedCount(g) != 0 {
			t.Error("failed AddGarbage must leave the grid unchanged")
		}
	})

	t.Run("insufficient headroom fails and leaves grid unchanged", func(t *testing.T) {
		g := NewDefault()
		g.cells[1][4] = core.ColorRed // only one empty row at the top

		if g.AddGarbage(2, rng) {
			t.Fatal("AddGarbage(2) with 1 empty top row should fail")
		}
		if !g.IsOccupied(4, 1) || occupiedCount(g) != 1 {
			t.Error("failed AddGarbage must leave the grid unchanged")
		}
	})

	t.Run("stack shifts up", func(t *testing.T) {
		g := NewDefault()
		g.cells[19][0] = core.ColorBlue

		if !g.AddGarbage(2, rng) {
			t.Fatal("AddGarbage(2) should succeed")
		}
		if !g.IsOccupied(0, 17) {
			t.Error("existing stack should shift up by 2 rows")
		}
		if g.Height() != 20 {
			t.Errorf("grid height changed to %d", g.Height())
		}
	})
}

func TestResetAndSnapshot(t *testing.T) {
	g := NewDefault()
	fillRow(g, 19)

	snap := g.Snapshot()
	g.Reset()

	if occupiedCount(g) != 0 {
		t.Error("Reset should empty the grid")
	}
	// Snapshot was a copy, not a view.
	if snap[19][0] == core.ColorNone {
		t.Error("snapshot should keep the pre-reset contents")
	}

	g.Restore(snap)
	if occupiedCount(g) != g.Width() {
		t.Errorf("Restore: occupied = %d, expected %d", occupiedCount(g), g.Width())
	}
}
