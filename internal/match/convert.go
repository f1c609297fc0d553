package match

import (
	"github.com/vovakirdan/blockduel/internal/core"
	"github.com/vovakirdan/blockduel/internal/game"
	"github.com/vovakirdan/blockduel/internal/grid"
	"github.com/vovakirdan/blockduel/internal/piece"
	"github.com/vovakirdan/blockduel/internal/protocol"
)

// toBoardUpdate converts a local session snapshot into the wire form. Board
// and current piece travel in one message so the receiver always sees a
// consistent pair.
func toBoardUpdate(snap game.Snapshot) protocol.BoardUpdate {
	cells := make([][]int, len(snap.Grid))
	for y, row := range snap.Grid {
		cells[y] = make([]int, len(row))
		for x, c := range row {
			cells[y][x] = int(c)
		}
	}

	out := protocol.BoardUpdate{Cells: cells}
	if snap.Current != nil {
		out.Piece = toPieceState(*snap.Current)
	}
	return out
}

func toPieceState(p piece.Piece) *protocol.PieceState {
	return &protocol.PieceState{
		Type:  p.Type.String(),
		Shape: p.Shape,
		Color: p.Color.String(),
		X:     p.X,
		Y:     p.Y,
	}
}

// fromBoardUpdate converts a received board message into mirror state.
func fromBoardUpdate(msg protocol.BoardUpdate) (grid.Snapshot, *piece.Piece) {
	board := make(grid.Snapshot, len(msg.Cells))
	for y, row := range msg.Cells {
		board[y] = make([]core.Color, len(row))
		for x, c := range row {
			board[y][x] = core.Color(c)
		}
	}

	var current *piece.Piece
	if msg.Piece != nil {
		p := fromPieceState(*msg.Piece)
		current = &p
	}
	return board, current
}

// fromPieceState rebuilds a piece from the wire. Unknown type or color
// names degrade gracefully rather than dropping the whole message.
func fromPieceState(ps protocol.PieceState) piece.Piece {
	t, _ := piece.ParseType(ps.Type)
	color, err := core.ParseColor(ps.Color)
	if err != nil {
		color = core.ColorWhite
	}
	return piece.Piece{
		Type:  t,
		Shape: ps.Shape,
		Color: color,
		X:     ps.X,
		Y:     ps.Y,
	}
}

// fromNextUpdate rebuilds the opponent's preview piece in spawn
// orientation.
func fromNextUpdate(msg protocol.NextPieceUpdate) *piece.Piece {
	t, ok := piece.ParseType(msg.Type)
	if !ok {
		return nil
	}
	color, err := core.ParseColor(msg.Color)
	if err != nil {
		color = core.ColorWhite
	}
	p := piece.New(t, color)
	return &p
}
