package game

import (
	"testing"

	"github.com/vovakirdan/blockduel/internal/config"
	"github.com/vovakirdan/blockduel/internal/core"
	"github.com/vovakirdan/blockduel/internal/piece"
)

func testSession(t *testing.T, seed int64) *Session {
	t.Helper()
	cfg := config.Default()
	colors, err := cfg.PieceColors()
	if err != nil {
		t.Fatalf("PieceColors: %v", err)
	}
	return New(cfg.Game, colors, seed)
}

// drainEvents consumes all pending events and returns them.
func drainEvents(s *Session) []Event {
	var out []Event
	for {
		select {
		case evt := <-s.Events():
			out = append(out, evt)
		default:
			return out
		}
	}
}

// fillBottomRow occupies the bottom row except the listed columns.
func fillBottomRow(s *Session, except ...int) {
	skip := make(map[int]bool)
	for _, x := range except {
		skip[x] = true
	}
	filler := piece.Piece{
		Type:  piece.TypeI,
		Shape: [][]int{{1}},
		Color: core.ColorGray,
		Y:     s.grid.Height() - 1,
	}
	for x := 0; x < s.grid.Width(); x++ {
		if !skip[x] {
			filler.X = x
			s.grid.Lock(filler)
		}
	}
}

// setCurrent replaces the falling piece, bypassing the generator.
func setCurrent(s *Session, p piece.Piece) {
	s.mu.Lock()
	s.current = &p
	s.mu.Unlock()
}

func TestStartInitializes(t *testing.T) {
	s := testSession(t, 1)

	if s.State() != StateMenu {
		t.Fatalf("initial state = %v, expected menu", s.State())
	}

	s.Start()

	if s.State() != StatePlaying {
		t.Errorf("state after Start = %v, expected playing", s.State())
	}
	snap := s.Snapshot()
	if snap.Current == nil || snap.Next == nil {
		t.Fatal("Start should produce a current and a next piece")
	}
	if snap.Stats != (Stats{Level: 1}) {
		t.Errorf("stats after Start = %+v, expected zeroed at level 1", snap.Stats)
	}
	// Spawn is centered and may sit partially above the board.
	wantX := (s.grid.Width() - snap.Current.Width()) / 2
	if snap.Current.X != wantX || snap.Current.Y != -1 {
		t.Errorf("spawn position = (%d,%d), expected (%d,-1)", snap.Current.X, snap.Current.Y, wantX)
	}
}

func TestGravityCadence(t *testing.T) {
	s := testSession(t, 2)
	s.Start()

	// Level 1: 500ms per drop at 60 ticks/sec = 30 ticks.
	startY := s.Snapshot().Current.Y
	for i := 0; i < 29; i++ {
		s.Tick()
	}
	if y := s.Snapshot().Current.Y; y != startY {
		t.Fatalf("piece moved after 29 ticks (y=%d)", y)
	}
	s.Tick()
	if y := s.Snapshot().Current.Y; y != startY+1 {
		t.Errorf("piece at y=%d after 30 ticks, expected %d", y, startY+1)
	}
}

func TestPauseSuspendsAndResumesInPlace(t *testing.T) {
	s := testSession(t, 3)
	s.Start()
	startY := s.Snapshot().Current.Y

	for i := 0; i < 15; i++ {
		s.Tick()
	}
	s.Pause()
	if s.State() != StatePaused {
		t.Fatalf("state after Pause = %v", s.State())
	}
	for i := 0; i < 100; i++ {
		s.Tick()
	}
	if y := s.Snapshot().Current.Y; y != startY {
		t.Fatalf("piece moved while paused (y=%d)", y)
	}

	s.Resume()
	// 15 ticks already elapsed before the pause; 15 more complete the drop.
	for i := 0; i < 15; i++ {
		s.Tick()
	}
	if y := s.Snapshot().Current.Y; y != startY+1 {
		t.Errorf("piece at y=%d after resume, expected %d", y, startY+1)
	}
}

func TestMoveRejectedAtWalls(t *testing.T) {
	s := testSession(t, 4)
	s.Start()
	setCurrent(s, withPos(piece.New(piece.TypeO, core.ColorYellow), 0, 5))

	s.MoveLeft()
	if x := s.Snapshot().Current.X; x != 0 {
		t.Errorf("piece at x=%d after blocked MoveLeft, expected 0", x)
	}
	s.MoveRight()
	if x := s.Snapshot().Current.X; x != 1 {
		t.Errorf("piece at x=%d after MoveRight, expected 1", x)
	}
}

func TestSoftDropScoresPerStep(t *testing.T) {
	s := testSession(t, 5)
	s.Start()
	setCurrent(s, withPos(piece.New(piece.TypeO, core.ColorYellow), 4, 5))

	s.SoftDrop()
	s.SoftDrop()

	snap := s.Snapshot()
	if snap.Stats.Score != 2 {
		t.Errorf("score = %d after two soft drops, expected 2", snap.Stats.Score)
	}
	if snap.Current.Y != 7 {
		t.Errorf("piece at y=%d, expected 7", snap.Current.Y)
	}
}

func TestSoftDropLocksOnContact(t *testing.T) {
	s := testSession(t, 6)
	s.Start()
	setCurrent(s, withPos(piece.New(piece.TypeO, core.ColorYellow), 4, 18))
	drainEvents(s)

	s.SoftDrop() // resting on the floor: lock instead of move

	if !s.grid.IsOccupied(4, 19) || !s.grid.IsOccupied(5, 18) {
		t.Error("piece should be locked into the grid")
	}
	locked := false
	for _, evt := range drainEvents(s) {
		if _, ok := evt.(PieceLockedEvent); ok {
			locked = true
		}
	}
	if !locked {
		t.Error("expected a PieceLockedEvent")
	}
	// No lines completed: the saved next piece spawns immediately.
	if s.Snapshot().Current == nil {
		t.Error("next piece should spawn immediately after a lock without clears")
	}
}

func TestHardDropLocksAtMaxDistance(t *testing.T) {
	s := testSession(t, 7)
	s.Start()
	setCurrent(s, withPos(piece.New(piece.TypeO, core.ColorYellow), 4, 0))

	s.HardDrop()

	if !s.grid.IsOccupied(4, 19) || !s.grid.IsOccupied(5, 19) {
		t.Error("hard-dropped piece should rest on the floor")
	}
	// Fall distance 18 (y 0 -> 18), one point per row, no bonus by default.
	if got := s.Stats().Score; got != 18 {
		t.Errorf("score = %d after hard drop, expected 18", got)
	}
}

func TestLineClearWindowAndScoring(t *testing.T) {
	s := testSession(t, 8)
	s.Start()
	fillBottomRow(s, 8, 9)
	setCurrent(s, withPos(piece.New(piece.TypeO, core.ColorYellow), 8, 18))
	drainEvents(s)

	s.SoftDrop() // lock, completing the bottom row

	snap := s.Snapshot()
	if len(snap.Clearing) != 1 || snap.Clearing[0] != 19 {
		t.Fatalf("clearing rows = %v, expected [19]", snap.Clearing)
	}
	if snap.Current != nil {
		t.Error("current piece slot should stay empty during the clear window")
	}
	if snap.Stats.Score != 0 {
		t.Errorf("stats updated before the clear window elapsed (score=%d)", snap.Stats.Score)
	}

	// 300ms window at 60 ticks/sec = 18 ticks.
	for i := 0; i < 18; i++ {
		s.Tick()
	}

	snap = s.Snapshot()
	if len(snap.Clearing) != 0 {
		t.Error("clear window should be over")
	}
	// Single line at level 1: 40 x (1+1).
	if snap.Stats.Score != 80 || snap.Stats.Lines != 1 {
		t.Errorf("stats = %+v, expected score 80 lines 1", snap.Stats)
	}
	if snap.Current == nil {
		t.Error("pending piece should spawn after the clear window")
	}
	// The two cells locked above the cleared row shift down to the bottom.
	if !s.grid.IsOccupied(8, 19) || !s.grid.IsOccupied(9, 19) {
		t.Error("rows above the cleared line should shift down")
	}
}

func TestTetrisScoring(t *testing.T) {
	s := testSession(t, 9)
	s.Start()
	// Four nearly complete rows with a one-wide well in column 9.
	for y := 16; y <= 19; y++ {
		for x := 0; x < 9; x++ {
			s.grid.Lock(piece.Piece{Shape: [][]int{{1}}, Color: core.ColorGray, X: x, Y: y})
		}
	}
	// Vertical I piece fills the well.
	vertical := piece.Piece{
		Type:  piece.TypeI,
		Shape: [][]int{{1}, {1}, {1}, {1}},
		Color: core.ColorCyan,
		X:     9, Y: 16,
	}
	setCurrent(s, vertical)

	s.SoftDrop() // resting on the floor, locks
	for i := 0; i < 18; i++ {
		s.Tick()
	}

	stats := s.Stats()
	// 4 lines at level 1: 800 x (1+1) = 1600.
	if stats.Score != 1600 || stats.Lines != 4 {
		t.Errorf("stats = %+v, expected score 1600 lines 4", stats)
	}
}

func TestLevelRecomputedFromLines(t *testing.T) {
	s := testSession(t, 10)
	s.Start()
	s.mu.Lock()
	s.stats.Lines = 9
	s.mu.Unlock()

	fillBottomRow(s, 8, 9)
	setCurrent(s, withPos(piece.New(piece.TypeO, core.ColorYellow), 8, 18))
	s.SoftDrop()
	for i := 0; i < 18; i++ {
		s.Tick()
	}

	stats := s.Stats()
	if stats.Lines != 10 || stats.Level != 2 {
		t.Errorf("stats = %+v, expected lines 10 level 2", stats)
	}
}

func TestRotationRejectedWhenBlocked(t *testing.T) {
	s := testSession(t, 11)
	s.Start()
	// Horizontal I against the right wall cannot rotate into the wall, but a
	// vertical I at the same column can exist; block it with a locked cell.
	vertical := piece.Piece{
		Type:  piece.TypeI,
		Shape: [][]int{{1}, {1}, {1}, {1}},
		Color: core.ColorCyan,
		X:     5, Y: 10,
	}
	s.grid.Lock(piece.Piece{Shape: [][]int{{1}}, Color: core.ColorGray, X: 8, Y: 10})
	setCurrent(s, vertical)

	s.Rotate() // would become 1x4 at (5,10)..(8,10), cell (8,10) is taken

	if got := s.Snapshot().Current.Height(); got != 4 {
		t.Errorf("blocked rotation should leave the piece unchanged (height=%d)", got)
	}
}

func TestSpawnCollisionEndsGame(t *testing.T) {
	s := testSession(t, 12)
	s.Start()
	drainEvents(s)

	// Stack reaching the spawn rows.
	for x := 0; x < s.grid.Width(); x++ {
		s.grid.Lock(piece.Piece{Shape: [][]int{{1}}, Color: core.ColorGray, X: x, Y: 0})
	}
	s.mu.Lock()
	s.spawn(piece.New(piece.TypeO, core.ColorYellow))
	s.mu.Unlock()

	if s.State() != StateGameOver {
		t.Errorf("state = %v, expected game over on spawn collision", s.State())
	}
	sawGameOver := false
	for _, evt := range drainEvents(s) {
		if _, ok := evt.(GameOverEvent); ok {
			sawGameOver = true
		}
	}
	if !sawGameOver {
		t.Error("expected a GameOverEvent")
	}
}

func TestLockAboveBoardEndsGame(t *testing.T) {
	s := testSession(t, 13)
	s.Start()
	// Support directly below the spawn rows.
	s.grid.Lock(piece.Piece{Shape: [][]int{{1}}, Color: core.ColorGray, X: 4, Y: 1})
	s.grid.Lock(piece.Piece{Shape: [][]int{{1}}, Color: core.ColorGray, X: 5, Y: 1})
	setCurrent(s, withPos(piece.New(piece.TypeO, core.ColorYellow), 4, -1))

	s.SoftDrop() // cannot move, locks with cells above the board

	if s.State() != StateGameOver {
		t.Errorf("state = %v, expected game over when locking above the board", s.State())
	}
}

func TestApplyGarbage(t *testing.T) {
	s := testSession(t, 14)
	s.Start()

	if !s.ApplyGarbage(2) {
		t.Fatal("garbage on an empty board should succeed")
	}
	occupied := 0
	for y := 0; y < s.grid.Height(); y++ {
		for x := 0; x < s.grid.Width(); x++ {
			if s.grid.IsOccupied(x, y) {
				occupied++
			}
		}
	}
	if occupied != 2*(s.grid.Width()-1) {
		t.Errorf("occupied cells = %d, expected %d", occupied, 2*(s.grid.Width()-1))
	}

	// Overflow is terminal.
	if s.ApplyGarbage(21) {
		t.Fatal("garbage beyond the board height should fail")
	}
	if s.State() != StateGameOver {
		t.Errorf("state = %v, expected game over on garbage overflow", s.State())
	}
}

func TestFinishDoesNotPublishGameOver(t *testing.T) {
	s := testSession(t, 15)
	s.Start()
	drainEvents(s)

	s.Finish()

	if s.State() != StateGameOver {
		t.Fatalf("state = %v, expected game over", s.State())
	}
	for _, evt := range drainEvents(s) {
		if _, ok := evt.(GameOverEvent); ok {
			t.Error("Finish must not publish a GameOverEvent")
		}
	}
}

func TestRestartAfterGameOver(t *testing.T) {
	s := testSession(t, 16)
	s.Start()
	s.Finish()

	s.Start()

	if s.State() != StatePlaying {
		t.Errorf("state = %v, expected playing after restart", s.State())
	}
	if s.Stats() != (Stats{Level: 1}) {
		t.Errorf("stats = %+v, expected reset", s.Stats())
	}
}

func withPos(p piece.Piece, x, y int) piece.Piece {
	p.X, p.Y = x, y
	return p
}
