package piece

import (
	"math/rand"

	"github.com/vovakirdan/blockduel/internal/core"
)

// Generator produces random pieces with pre-resolved colors.
// Draws are uniform and independent over the seven types (no bag).
type Generator struct {
	rng    *rand.Rand
	colors map[Type]core.Color
}

// NewGenerator creates a generator with the given seed and piece color
// mapping. Types missing from the mapping fall back to ColorWhite.
func NewGenerator(seed int64, colors map[Type]core.Color) *Generator {
	return &Generator{
		rng:    rand.New(rand.NewSource(seed)),
		colors: colors,
	}
}

// Next returns a new random piece in its spawn orientation at (0, 0).
func (g *Generator) Next() Piece {
	t := Type(g.rng.Intn(TypeCount))
	return New(t, g.ColorFor(t))
}

// ColorFor returns the configured color for a piece type.
func (g *Generator) ColorFor(t Type) core.Color {
	if c, ok := g.colors[t]; ok {
		return c
	}
	return core.ColorWhite
}
