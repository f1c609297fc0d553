// Package piece defines the seven tetromino shapes, their rotation rule and
// the random piece generator.
package piece

import "github.com/vovakirdan/blockduel/internal/core"

// Type identifies one of the seven tetrominoes.
type Type int

const (
	TypeI Type = iota
	TypeO
	TypeT
	TypeS
	TypeZ
	TypeJ
	TypeL
)

// TypeCount is the number of distinct tetromino types.
const TypeCount = 7

// String returns the single-letter name of the type.
func (t Type) String() string {
	switch t {
	case TypeI:
		return "I"
	case TypeO:
		return "O"
	case TypeT:
		return "T"
	case TypeS:
		return "S"
	case TypeZ:
		return "Z"
	case TypeJ:
		return "J"
	case TypeL:
		return "L"
	default:
		return "?"
	}
}

// ParseType resolves a single-letter type name, as used on the wire and in
// the color configuration.
func ParseType(s string) (Type, bool) {
	for t := TypeI; t <= TypeL; t++ {
		if t.String() == s {
			return t, true
		}
	}
	return 0, false
}

// Canonical spawn orientations. Matrices are row-major, row 0 on top.
var spawnShapes = map[Type][][]int{
	TypeI: {{1, 1, 1, 1}},
	TypeO: {{1, 1}, {1, 1}},
	TypeT: {{0, 1, 0}, {1, 1, 1}},
	TypeS: {{0, 1, 1}, {1, 1, 0}},
	TypeZ: {{1, 1, 0}, {0, 1, 1}},
	TypeJ: {{1, 0, 0}, {1, 1, 1}},
	TypeL: {{0, 0, 1}, {1, 1, 1}},
}

// Piece is a falling tetromino: its type, current shape matrix, color and
// board position (top-left corner of the shape matrix; Y may be negative
// while the piece is above the visible board).
type Piece struct {
	Type  Type
	Shape [][]int
	Color core.Color
	X, Y  int
}

// New creates a piece of the given type in its spawn orientation.
func New(t Type, color core.Color) Piece {
	return Piece{
		Type:  t,
		Shape: cloneShape(spawnShapes[t]),
		Color: color,
	}
}

// Width returns the number of columns in the current shape matrix.
func (p Piece) Width() int {
	if len(p.Shape) == 0 {
		return 0
	}
	return len(p.Shape[0])
}

// Height returns the number of rows in the current shape matrix.
func (p Piece) Height() int {
	return len(p.Shape)
}

// Rotated returns a copy of the piece rotated 90 degrees clockwise:
// transpose the shape matrix, then reverse each row. The O piece never
// rotates.
func (p Piece) Rotated() Piece {
	if p.Type == TypeO {
		return p.clone()
	}

	rows := p.Height()
	cols := p.Width()
	rotated := make([][]int, cols)
	for x := 0; x < cols; x++ {
		rotated[x] = make([]int, rows)
		for y := 0; y < rows; y++ {
			rotated[x][y] = p.Shape[rows-1-y][x]
		}
	}

	out := p.clone()
	out.Shape = rotated
	return out
}

// Cells calls fn for every filled cell of the piece in board coordinates.
func (p Piece) Cells(fn func(x, y int)) {
	for sy, row := range p.Shape {
		for sx, filled := range row {
			if filled != 0 {
				fn(p.X+sx, p.Y+sy)
			}
		}
	}
}

func (p Piece) clone() Piece {
	out := p
	out.Shape = cloneShape(p.Shape)
	return out
}

func cloneShape(shape [][]int) [][]int {
	out := make([][]int, len(shape))
	for i, row := range shape {
		out[i] = make([]int, len(row))
		copy(out[i], row)
	}
	return out
}
