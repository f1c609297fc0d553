// Package game implements one player's match: the session state machine,
// the gravity loop, scoring and lock/spawn sequencing.
package game

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/vovakirdan/blockduel/internal/config"
	"github.com/vovakirdan/blockduel/internal/core"
	"github.com/vovakirdan/blockduel/internal/grid"
	"github.com/vovakirdan/blockduel/internal/piece"
)

// State represents the session lifecycle.
type State int

const (
	StateMenu State = iota
	StatePlaying
	StatePaused
	StateGameOver
)

// String returns a human-readable name for the state.
func (s State) String() string {
	switch s {
	case StateMenu:
		return "menu"
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	case StateGameOver:
		return "game_over"
	default:
		return "unknown"
	}
}

// Stats holds the player's score, level and cleared line count.
// Level is always floor(Lines/10)+1.
type Stats struct {
	Score int
	Level int
	Lines int
}

// Snapshot is an immutable copy of the session's observable state.
type Snapshot struct {
	State    State
	Grid     grid.Snapshot
	Current  *piece.Piece // nil between lock and next spawn
	Next     *piece.Piece
	Stats    Stats
	Clearing []int // rows currently inside the clear window
}

// Session drives a single player's game. All mutation happens under one
// mutex: the gravity loop ticks and player actions never interleave.
type Session struct {
	mu  sync.Mutex
	cfg config.GameConfig

	grid *grid.Grid
	gen  *piece.Generator
	rng  *rand.Rand // garbage gap placement

	state   State
	stats   Stats
	current *piece.Piece
	next    *piece.Piece

	dropTicks  int // ticks since the last gravity step
	clearing   []int
	clearTicks int
	pending    *piece.Piece // piece waiting behind the clear window

	events chan Event
}

// New creates a session in the Menu state. The piece->color mapping is
// pre-resolved by the caller (typically from config).
func New(cfg config.GameConfig, colors map[piece.Type]core.Color, seed int64) *Session {
	return &Session{
		cfg:    cfg,
		grid:   grid.New(cfg.Width, cfg.Height),
		gen:    piece.NewGenerator(seed, colors),
		rng:    rand.New(rand.NewSource(seed + 1)),
		state:  StateMenu,
		events: make(chan Event, 64),
	}
}

// Events returns the channel the session publishes on. Events are dropped,
// never blocked on, when the consumer lags.
func (s *Session) Events() <-chan Event {
	return s.events
}

func (s *Session) publish(evt Event) {
	select {
	case s.events <- evt:
	default:
		// Consumer lags, drop the oldest event and retry once
		select {
		case <-s.events:
		default:
		}
		select {
		case s.events <- evt:
		default:
		}
	}
}

// Start resets the board and stats and begins play. Valid from Menu and
// GameOver (restart).
func (s *Session) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.grid.Reset()
	s.stats = Stats{Level: 1}
	s.clearing = nil
	s.clearTicks = 0
	s.pending = nil
	s.dropTicks = 0

	first := s.gen.Next()
	second := s.gen.Next()
	s.next = &second
	s.setState(StatePlaying)
	s.publish(StatsChangedEvent{Stats: s.stats})
	s.spawn(first)
}

// Pause suspends the gravity loop. The drop timer resumes exactly where it
// left off.
func (s *Session) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StatePlaying {
		s.setState(StatePaused)
	}
}

// Resume continues a paused game.
func (s *Session) Resume() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StatePaused {
		s.setState(StatePlaying)
	}
}

// Finish moves the session to GameOver without publishing a GameOverEvent.
// Used when the match ends for an external reason (opponent lost or left).
func (s *Session) Finish() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StatePlaying || s.state == StatePaused {
		s.setState(StateGameOver)
	}
}

// MoveLeft shifts the current piece one column left if nothing blocks it.
func (s *Session) MoveLeft() { s.shift(-1) }

// MoveRight shifts the current piece one column right if nothing blocks it.
func (s *Session) MoveRight() { s.shift(1) }

func (s *Session) shift(dx int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StatePlaying || s.current == nil {
		return
	}
	if !s.grid.Collides(*s.current, dx, 0) {
		s.current.X += dx
	}
}

// Rotate turns the current piece clockwise. The rotation is rejected when
// the rotated shape collides at the current position; no kick offsets are
// attempted.
func (s *Session) Rotate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StatePlaying || s.current == nil {
		return
	}
	rotated := s.current.Rotated()
	if !s.grid.Collides(rotated, 0, 0) {
		s.current = &rotated
	}
}

// SoftDrop moves the current piece down one row, awarding one point per
// successful step. If the piece cannot move it locks instead.
func (s *Session) SoftDrop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StatePlaying || s.current == nil {
		return
	}
	if s.grid.Collides(*s.current, 0, 1) {
		s.lockCurrent()
		return
	}
	s.current.Y++
	s.stats.Score++
	s.publish(StatsChangedEvent{Stats: s.stats})
}

// HardDrop drops the current piece as far as it can fall and locks it
// there. Points equal the fall distance, plus the configured per-row bonus.
func (s *Session) HardDrop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StatePlaying || s.current == nil {
		return
	}
	dist := 0
	for !s.grid.Collides(*s.current, 0, dist+1) {
		dist++
	}
	s.current.Y += dist
	if dist > 0 {
		s.stats.Score += dist + dist*s.cfg.HardDropBonus
		s.publish(StatsChangedEvent{Stats: s.stats})
	}
	s.lockCurrent()
}

// ApplyGarbage injects count garbage lines at the bottom of the board.
// Returns false when the board has no room, which is terminal: the session
// transitions to GameOver before returning.
func (s *Session) ApplyGarbage(count int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StatePlaying && s.state != StatePaused {
		return true
	}
	if s.grid.AddGarbage(count, s.rng) {
		return true
	}
	s.gameOver()
	return false
}

// Tick advances the simulation by one fixed step. Called by Run at the
// configured tick rate; exposed so tests can drive time deterministically.
func (s *Session) Tick() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StatePlaying {
		return
	}

	if s.clearing != nil {
		s.clearTicks++
		if s.clearTicks >= s.ticksFor(time.Duration(s.cfg.ClearDelayMs)*time.Millisecond) {
			s.finishClear()
		}
		return
	}

	if s.current == nil {
		return
	}

	s.dropTicks++
	if s.dropTicks >= s.ticksFor(s.cfg.DropSpeed(s.stats.Level)) {
		s.dropTicks = 0
		s.gravityStep()
	}
}

// Run drives the gravity loop until the context is cancelled.
func (s *Session) Run(ctx context.Context) {
	interval := time.Second / time.Duration(s.cfg.TickRate)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Tick()
		}
	}
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Stats returns a copy of the current stats.
func (s *Session) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

// Snapshot returns an immutable copy of the observable session state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		State: s.state,
		Grid:  s.grid.Snapshot(),
		Stats: s.stats,
	}
	if s.current != nil {
		c := *s.current
		snap.Current = &c
	}
	if s.next != nil {
		n := *s.next
		snap.Next = &n
	}
	if s.clearing != nil {
		snap.Clearing = append([]int(nil), s.clearing...)
	}
	return snap
}

// --- internal, callers hold s.mu ---

func (s *Session) setState(st State) {
	if s.state == st {
		return
	}
	s.state = st
	s.publish(StateChangedEvent{State: st})
}

func (s *Session) ticksFor(d time.Duration) int {
	interval := time.Second / time.Duration(s.cfg.TickRate)
	n := int(d / interval)
	if n < 1 {
		n = 1
	}
	return n
}

// spawn positions a piece at the top of the board and makes it current.
// A spawn that collides immediately ends the game.
func (s *Session) spawn(p piece.Piece) {
	p.X = (s.grid.Width() - p.Width()) / 2
	p.Y = -1

	if s.grid.Collides(p, 0, 0) {
		s.gameOver()
		return
	}
	s.current = &p
	s.dropTicks = 0
}

// gravityStep moves the current piece down one row, locking on contact.
func (s *Session) gravityStep() {
	if s.grid.Collides(*s.current, 0, 1) {
		s.lockCurrent()
		return
	}
	s.current.Y++
}

// lockCurrent writes the current piece into the grid and runs the lock
// sequencing: clear the current slot, promote the saved next piece, draw a
// new next, then either enter the clear window or spawn immediately.
func (s *Session) lockCurrent() {
	p := *s.current

	// Filled cells still above the visible board are terminal.
	overflow := false
	p.Cells(func(_, y int) {
		if y < 0 {
			overflow = true
		}
	})
	if overflow {
		s.grid.Lock(p)
		s.gameOver()
		return
	}

	s.grid.Lock(p)
	s.current = nil

	promoted := *s.next
	fresh := s.gen.Next()
	s.next = &fresh

	s.publish(PieceLockedEvent{})

	if rows := s.grid.CompletedLines(); len(rows) > 0 {
		s.clearing = rows
		s.clearTicks = 0
		s.pending = &promoted
		s.publish(LinesClearedEvent{Rows: append([]int(nil), rows...)})
		return
	}
	s.spawn(promoted)
}

// finishClear removes the completed rows after the clear window, updates
// the stats and spawns the piece that was waiting.
func (s *Session) finishClear() {
	n := s.grid.ClearLines()
	s.clearing = nil
	s.clearTicks = 0

	if n > 0 {
		s.stats.Score += s.cfg.LineScore(n) * (s.stats.Level + 1)
		s.stats.Lines += n
		s.stats.Level = s.stats.Lines/10 + 1
		s.publish(StatsChangedEvent{Stats: s.stats, LinesDelta: n})
	}

	if s.pending != nil {
		p := *s.pending
		s.pending = nil
		s.spawn(p)
	}
}

// gameOver transitions to the terminal state and publishes the final stats.
func (s *Session) gameOver() {
	s.current = nil
	s.pending = nil
	s.clearing = nil
	s.setState(StateGameOver)
	s.publish(GameOverEvent{Stats: s.stats})
}
