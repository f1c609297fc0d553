package game

// Event is a notification published by a Session on its event channel.
type Event interface {
	sessionEvent()
}

// StateChangedEvent is published on every state transition.
type StateChangedEvent struct {
	State State
}

func (StateChangedEvent) sessionEvent() {}

// StatsChangedEvent is published whenever score, level or line count change.
// LinesDelta is how many lines the triggering clear removed (0 for pure
// score changes).
type StatsChangedEvent struct {
	Stats      Stats
	LinesDelta int
}

func (StatsChangedEvent) sessionEvent() {}

// PieceLockedEvent is published right after the current piece is written
// into the grid and the current slot is cleared.
type PieceLockedEvent struct{}

func (PieceLockedEvent) sessionEvent() {}

// LinesClearedEvent is published when completed rows enter the clear window.
// The rows are still on the board until the window elapses.
type LinesClearedEvent struct {
	Rows []int
}

func (LinesClearedEvent) sessionEvent() {}

// GameOverEvent is published when the session reaches its terminal state by
// spawn collision or garbage overflow.
type GameOverEvent struct {
	Stats Stats
}

func (GameOverEvent) sessionEvent() {}
