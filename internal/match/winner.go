// Package match orchestrates a two-player match: one authoritative local
// session, a mirrored opponent snapshot driven by the network, and the
// translation between gameplay events and protocol messages.
package match

import (
	"github.com/vovakirdan/blockduel/internal/game"
	"github.com/vovakirdan/blockduel/internal/grid"
	"github.com/vovakirdan/blockduel/internal/piece"
)

// Winner is the match outcome, derived from the arbitration rules.
type Winner int

const (
	WinnerNone Winner = iota
	WinnerLocal
	WinnerOpponent
	WinnerDisconnected
)

// String returns a human-readable name for the outcome.
func (w Winner) String() string {
	switch w {
	case WinnerNone:
		return "undecided"
	case WinnerLocal:
		return "local player"
	case WinnerOpponent:
		return "opponent"
	case WinnerDisconnected:
		return "disconnected"
	default:
		return "unknown"
	}
}

// Opponent is the mirrored remote state. It is replaced wholesale on every
// BoardUpdate (last write wins, no local simulation) and partially on the
// debounced stats and next-piece messages.
type Opponent struct {
	Name    string
	Board   grid.Snapshot
	Current *piece.Piece
	Next    *piece.Piece
	Stats   game.Stats
}
