// Package grid implements the occupancy grid: collision checks, locking,
// line detection and clearing, and garbage line injection.
package grid

import (
	"math/rand"

	"github.com/vovakirdan/blockduel/internal/core"
	"github.com/vovakirdan/blockduel/internal/piece"
)

// Default board dimensions.
const (
	DefaultWidth  = 10
	DefaultHeight = 20
)

// Grid is a fixed-size occupancy matrix. A cell holds core.ColorNone when
// empty, or the color of the locked piece occupying it. Dimensions never
// change after construction.
type Grid struct {
	width  int
	height int
	cells  [][]core.Color
}

// Snapshot is an immutable copy of the grid contents, row-major.
type Snapshot [][]core.Color

// New creates an empty grid with the given dimensions.
func New(width, height int) *Grid {
	g := &Grid{width: width, height: height}
	g.cells = make([][]core.Color, height)
	for y := range g.cells {
		g.cells[y] = make([]core.Color, width)
	}
	return g
}

// NewDefault creates an empty 10x20 grid.
func NewDefault() *Grid {
	return New(DefaultWidth, DefaultHeight)
}

// Width returns the number of columns.
func (g *Grid) Width() int { return g.width }

// Height returns the number of rows.
func (g *Grid) Height() int { return g.height }

// IsOccupied reports whether the cell at (x, y) holds a locked piece.
// Coordinates outside the grid are not occupied.
func (g *Grid) IsOccupied(x, y int) bool {
	if x < 0 || x >= g.width || y < 0 || y >= g.height {
		return false
	}
	return g.cells[y][x] != core.ColorNone
}

// Collides reports whether the piece, offset by (dx, dy), overlaps a wall,
// the floor, or a locked cell. Cells above the visible board (y < 0) only
// collide against the side walls, which lets pieces spawn partially above
// the board.
func (g *Grid) Collides(p piece.Piece, dx, dy int) bool {
	hit := false
	p.Cells(func(x, y int) {
		cx, cy := x+dx, y+dy
		if cx < 0 || cx >= g.width || cy >= g.height {
			hit = true
			return
		}
		if cy >= 0 && g.cells[cy][cx] != core.ColorNone {
			hit = true
		}
	})
	return hit
}

// Lock writes the piece's filled cells into the grid. Cells above the
// visible board are dropped; the caller decides whether that ends the game.
func (g *Grid) Lock(p piece.Piece) {
	p.Cells(func(x, y int) {
		if x >= 0 && x < g.width && y >= 0 && y < g.height {
			g.cells[y][x] = p.Color
		}
	})
}

// CompletedLines returns the indices of all fully occupied rows, top first.
func (g *Grid) CompletedLines() []int {
	var rows []int
	for y := 0; y < g.height; y++ {
		full := true
		for x := 0; x < g.width; x++ {
			if g.cells[y][x] == core.ColorNone {
				full = false
				break
			}
		}
		if full {
			rows = append(rows, y)
		}
	}
	return rows
}

// ClearLines removes all completed rows, inserts the same number of empty
// rows at the top, and returns how many rows were cleared. The relative
// order of surviving rows is preserved.
func (g *Grid) ClearLines() int {
	kept := make([][]core.Color, 0, g.height)
	for y := 0; y < g.height; y++ {
		full := true
		for x := 0; x < g.width; x++ {
			if g.cells[y][x] == core.ColorNone {
				full = false
				break
			}
		}
		if !full {
			kept = append(kept, g.cells[y])
		}
	}

	cleared := g.height - len(kept)
	if cleared == 0 {
		return 0
	}

	fresh := make([][]core.Color, cleared, g.height)
	for i := range fresh {
		fresh[i] = make([]core.Color, g.width)
	}
	g.cells = append(fresh, kept...)
	return cleared
}

// AddGarbage removes count rows from the top and appends count garbage rows
// at the bottom, each fully occupied except one random column. It fails
// (grid unchanged) unless at least count entirely-empty rows exist at the
// top; the caller must treat failure as game over.
func (g *Grid) AddGarbage(count int, rng *rand.Rand) bool {
	if count <= 0 {
		return true
	}

	emptyTop := 0
	for y := 0; y < g.height; y++ {
		empty := true
		for x := 0; x < g.width; x++ {
			if g.cells[y][x] != core.ColorNone {
				empty = false
				break
			}
		}
		if !empty {
			break
		}
		emptyTop++
	}
	if emptyTop < count {
		return false
	}

	g.cells = g.cells[count:]
	for i := 0; i < count; i++ {
		row := make([]core.Color, g.width)
		gap := rng.Intn(g.width)
		for x := range row {
			if x != gap {
				row[x] = core.ColorGray
			}
		}
		g.cells = append(g.cells, row)
	}
	return true
}

// Reset empties the grid.
func (g *Grid) Reset() {
	for y := range g.cells {
		for x := range g.cells[y] {
			g.cells[y][x] = core.ColorNone
		}
	}
}

// Snapshot returns a deep copy of the grid contents.
func (g *Grid) Snapshot() Snapshot {
	out := make(Snapshot, g.height)
	for y, row := range g.cells {
		out[y] = make([]core.Color, g.width)
		copy(out[y], row)
	}
	return out
}

// Restore replaces the grid contents from a snapshot with matching
// dimensions. Used when mirroring a remote board.
func (g *Grid) Restore(s Snapshot) {
	for y := 0; y < g.height && y < len(s); y++ {
		copy(g.cells[y], s[y])
	}
}
