package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/blockduel/internal/core"
	"github.com/vovakirdan/blockduel/internal/game"
	"github.com/vovakirdan/blockduel/internal/grid"
	"github.com/vovakirdan/blockduel/internal/match"
	"github.com/vovakirdan/blockduel/internal/piece"
)

const ansiHome = "\x1b[H\x1b[2J"

// colorStyles maps cell colors to lipgloss styles.
var colorStyles = map[core.Color]lipgloss.Style{
	core.ColorRed:     lipgloss.NewStyle().Foreground(lipgloss.Color("1")),
	core.ColorGreen:   lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
	core.ColorYellow:  lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
	core.ColorBlue:    lipgloss.NewStyle().Foreground(lipgloss.Color("4")),
	core.ColorMagenta: lipgloss.NewStyle().Foreground(lipgloss.Color("5")),
	core.ColorCyan:    lipgloss.NewStyle().Foreground(lipgloss.Color("6")),
	core.ColorWhite:   lipgloss.NewStyle().Foreground(lipgloss.Color("7")),
	core.ColorOrange:  lipgloss.NewStyle().Foreground(lipgloss.Color("208")),
	core.ColorGray:    lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
}

var emptyCellStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))

func cellGlyph(c core.Color) string {
	if c == core.ColorNone {
		return emptyCellStyle.Render(" .")
	}
	if style, ok := colorStyles[c]; ok {
		return style.Render("[]")
	}
	return "[]"
}

// composeBoard copies the board snapshot and overlays the falling piece.
// Rows inside the clear window flash white.
func composeBoard(board grid.Snapshot, current *piece.Piece, clearing []int) grid.Snapshot {
	out := make(grid.Snapshot, len(board))
	for y, row := range board {
		out[y] = make([]core.Color, len(row))
		copy(out[y], row)
	}
	if current != nil {
		current.Cells(func(x, y int) {
			if y >= 0 && y < len(out) && x >= 0 && x < len(out[y]) {
				out[y][x] = current.Color
			}
		})
	}
	for _, y := range clearing {
		if y < 0 || y >= len(out) {
			continue
		}
		for x := range out[y] {
			out[y][x] = core.ColorWhite
		}
	}
	return out
}

func boardLines(board grid.Snapshot, title string) []string {
	width := 0
	if len(board) > 0 {
		width = len(board[0])
	}

	lines := make([]string, 0, len(board)+3)
	lines = append(lines, fmt.Sprintf(" %-*s", width*2, title))
	lines = append(lines, "+"+strings.Repeat("-", width*2)+"+")
	for _, row := range board {
		var b strings.Builder
		b.WriteByte('|')
		for _, c := range row {
			b.WriteString(cellGlyph(c))
		}
		b.WriteByte('|')
		lines = append(lines, b.String())
	}
	lines = append(lines, "+"+strings.Repeat("-", width*2)+"+")
	return lines
}

func statsLines(stats game.Stats, next *piece.Piece) []string {
	nextName := "-"
	if next != nil {
		nextName = next.Type.String()
	}
	return []string{
		fmt.Sprintf("Score: %d", stats.Score),
		fmt.Sprintf("Level: %d", stats.Level),
		fmt.Sprintf("Lines: %d", stats.Lines),
		fmt.Sprintf("Next:  %s", nextName),
	}
}

// screen prefixes the clear-and-home escape and converts line endings for
// the raw-mode terminal.
func screen(body string) string {
	return ansiHome + strings.ReplaceAll(body, "\n", "\r\n") + "\r\n"
}

// renderSolo draws the single-player screen.
func renderSolo(snap game.Snapshot) string {
	board := composeBoard(snap.Grid, snap.Current, snap.Clearing)
	lines := boardLines(board, "blockduel")
	lines = append(lines, statsLines(snap.Stats, snap.Next)...)

	switch snap.State {
	case game.StatePaused:
		lines = append(lines, "", "-- paused --  p to resume")
	case game.StateGameOver:
		lines = append(lines, "", "GAME OVER  r to restart, q to quit")
	default:
		lines = append(lines, "", "a/d move  w rotate  s drop  space hard drop  p pause  q quit")
	}

	return screen(strings.Join(lines, "\n"))
}

// renderDuel draws the local board next to the opponent mirror.
func renderDuel(snap game.Snapshot, localName string, opp match.Opponent, winner match.Winner) string {
	left := boardLines(composeBoard(snap.Grid, snap.Current, snap.Clearing), localName)
	left = append(left, statsLines(snap.Stats, snap.Next)...)

	oppName := opp.Name
	if oppName == "" {
		oppName = "waiting..."
	}
	oppBoard := opp.Board
	if len(oppBoard) == 0 {
		oppBoard = emptyBoard(len(snap.Grid), boardWidth(snap.Grid))
	}
	right := boardLines(composeBoard(oppBoard, opp.Current, nil), oppName)
	right = append(right, statsLines(opp.Stats, opp.Next)...)

	body := lipgloss.JoinHorizontal(lipgloss.Top,
		strings.Join(left, "\n"),
		"   ",
		strings.Join(right, "\n"),
	)

	var footer string
	switch {
	case winner != match.WinnerNone:
		footer = fmt.Sprintf("Winner: %s  r for rematch, q to leave", winner)
	case snap.State == game.StatePaused:
		footer = "-- paused --  p to resume"
	case snap.State == game.StateMenu:
		footer = "waiting for opponent..."
	default:
		footer = "a/d move  w rotate  s drop  space hard drop  q leave"
	}

	return screen(body + "\n\n" + footer)
}

func boardWidth(board grid.Snapshot) int {
	if len(board) > 0 {
		return len(board[0])
	}
	return 0
}

func emptyBoard(height, width int) grid.Snapshot {
	out := make(grid.Snapshot, height)
	for y := range out {
		out[y] = make([]core.Color, width)
	}
	return out
}
