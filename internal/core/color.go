// Package core provides fundamental types shared by the game engine and the
// network layer. It contains no external dependencies to keep game logic
// pure and testable.
package core

import "fmt"

// Color represents the color of a locked cell or a falling piece.
// Uses ANSI-style color identifiers for terminal compatibility.
type Color uint8

// Predefined colors for board cells and pieces.
// ColorNone marks an empty cell.
const (
	ColorNone Color = iota
	ColorRed
	ColorGreen
	ColorYellow
	ColorBlue
	ColorMagenta
	ColorCyan
	ColorWhite
	ColorOrange
	ColorGray
)

var colorNames = map[string]Color{
	"red":     ColorRed,
	"green":   ColorGreen,
	"yellow":  ColorYellow,
	"blue":    ColorBlue,
	"magenta": ColorMagenta,
	"cyan":    ColorCyan,
	"white":   ColorWhite,
	"orange":  ColorOrange,
	"gray":    ColorGray,
}

// ParseColor resolves a color name from configuration into a Color.
func ParseColor(name string) (Color, error) {
	c, ok := colorNames[name]
	if !ok {
		return ColorNone, fmt.Errorf("core: unknown color %q", name)
	}
	return c, nil
}

// String returns the configuration name of the color.
func (c Color) String() string {
	for name, v := range colorNames {
		if v == c {
			return name
		}
	}
	return "none"
}
