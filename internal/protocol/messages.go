// Package protocol defines the typed wire messages exchanged between two
// game instances and their newline-delimited JSON framing. It is
// transport-agnostic and independent of the gameplay packages: payloads are
// plain JSON-friendly values, translated at the orchestrator boundary.
package protocol

// Kind discriminates message variants on the wire.
type Kind string

const (
	KindPlayerReady        Kind = "playerReady"
	KindGameStart          Kind = "gameStart"
	KindStatsUpdate        Kind = "statsUpdate"
	KindBoardUpdate        Kind = "boardUpdate"
	KindNextPieceUpdate    Kind = "nextPieceUpdate"
	KindGarbageReceived    Kind = "garbageReceived"
	KindGameOver           Kind = "gameOver"
	KindPlayAgainRequest   Kind = "playAgainRequest"
	KindPlayerLeftGame     Kind = "playerLeftGame"
	KindPlayerDisconnected Kind = "playerDisconnected"
	KindPing               Kind = "ping"
	KindPong               Kind = "pong"
)

// Message is the closed union of everything that can travel on the wire.
type Message interface {
	Kind() Kind
}

// PlayerReady opens the handshake and carries the player's display name.
type PlayerReady struct {
	Name string `json:"name"`
}

func (PlayerReady) Kind() Kind { return KindPlayerReady }

// GameStart synchronizes the match countdown.
type GameStart struct {
	Timestamp int64 `json:"timestamp"` // unix millis at the sender
}

func (GameStart) Kind() Kind { return KindGameStart }

// StatsUpdate carries the sender's score, level and line count. Sent
// debounced, not on every change.
type StatsUpdate struct {
	Score int `json:"score"`
	Level int `json:"level"`
	Lines int `json:"lines"`
}

func (StatsUpdate) Kind() Kind { return KindStatsUpdate }

// PieceState describes a falling piece inside a BoardUpdate.
type PieceState struct {
	Type  string  `json:"type"`  // single letter I,O,T,S,Z,J,L
	Shape [][]int `json:"shape"` // current rotation, row-major 0/1
	Color string  `json:"color"`
	X     int     `json:"x"`
	Y     int     `json:"y"`
}

// BoardUpdate replaces the receiver's mirror of the sender's board
// wholesale. Piece is nil between a lock and the next spawn, so board and
// piece always arrive atomically consistent.
type BoardUpdate struct {
	Cells [][]int     `json:"cells"` // row-major color codes, 0 = empty
	Piece *PieceState `json:"piece,omitempty"`
}

func (BoardUpdate) Kind() Kind { return KindBoardUpdate }

// NextPieceUpdate previews the sender's upcoming piece.
type NextPieceUpdate struct {
	Type  string `json:"type"`
	Color string `json:"color"`
}

func (NextPieceUpdate) Kind() Kind { return KindNextPieceUpdate }

// GarbageReceived tells the receiver to add garbage lines to its own board.
type GarbageReceived struct {
	Count int `json:"count"`
}

func (GarbageReceived) Kind() Kind { return KindGarbageReceived }

// GameOver announces the sender's terminal state and final stats. The
// sender loses the arbitration.
type GameOver struct {
	Score int `json:"score"`
	Level int `json:"level"`
	Lines int `json:"lines"`
}

func (GameOver) Kind() Kind { return KindGameOver }

// PlayAgainRequest signals readiness for a rematch.
type PlayAgainRequest struct{}

func (PlayAgainRequest) Kind() Kind { return KindPlayAgainRequest }

// PlayerLeftGame is the graceful exit notice.
type PlayerLeftGame struct{}

func (PlayerLeftGame) Kind() Kind { return KindPlayerLeftGame }

// PlayerDisconnected marks an ungraceful, unrecoverable connection loss.
type PlayerDisconnected struct{}

func (PlayerDisconnected) Kind() Kind { return KindPlayerDisconnected }

// Ping is the heartbeat request.
type Ping struct {
	Timestamp int64 `json:"timestamp"`
}

func (Ping) Kind() Kind { return KindPing }

// Pong answers a Ping, echoing its timestamp.
type Pong struct {
	Timestamp int64 `json:"timestamp"`
}

func (Pong) Kind() Kind { return KindPong }
