package match

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/blockduel/internal/config"
	"github.com/vovakirdan/blockduel/internal/core"
	"github.com/vovakirdan/blockduel/internal/game"
	"github.com/vovakirdan/blockduel/internal/netplay"
	"github.com/vovakirdan/blockduel/internal/protocol"
)

// ResultSink persists match outcomes. Mirrors the storage package without
// depending on it; a nil sink disables persistence.
type ResultSink interface {
	SaveScore(score, level, lines int) error
	SaveMatch(opponent, outcome string, localScore, remoteScore, durationSecs int) error
}

// Orchestrator owns the authoritative local session and the opponent
// mirror, and drives the replication protocol over the connection manager.
// All event handling runs on the single Run goroutine, which makes the
// game-over arbitration a simple first-signal-wins.
type Orchestrator struct {
	cfg       config.Config
	localName string
	isHost    bool

	session *game.Session
	conn    *netplay.Manager
	logger  *log.Logger
	sink    ResultSink

	opponent *core.Cell[Opponent]
	winner   *core.Cell[Winner]

	// mu guards the flags below: handlers run on the Run goroutine but
	// RequestPlayAgain is called from the input goroutine.
	mu          sync.Mutex
	started     bool
	startedAt   time.Time
	localReady  bool
	remoteReady bool
	remoteName  string

	statsDirty   bool
	lastNextType string
}

// New creates an orchestrator for one match. The host side initiates the
// countdown once the peer's handshake arrives.
func New(cfg config.Config, localName string, isHost bool, session *game.Session, conn *netplay.Manager, logger *log.Logger) *Orchestrator {
	return &Orchestrator{
		cfg:       cfg,
		localName: localName,
		isHost:    isHost,
		session:   session,
		conn:      conn,
		logger:    logger,
		opponent:  core.NewCell(Opponent{}),
		winner:    core.NewCell(WinnerNone),
	}
}

// SetResultSink attaches an optional score/match persister.
func (o *Orchestrator) SetResultSink(sink ResultSink) {
	o.sink = sink
}

// Session exposes the local session for the input front end.
func (o *Orchestrator) Session() *game.Session {
	return o.session
}

// Opponent returns the current opponent mirror.
func (o *Orchestrator) Opponent() Opponent {
	return o.opponent.Get()
}

// WatchOpponent returns a conflating channel of mirror updates.
func (o *Orchestrator) WatchOpponent() <-chan Opponent {
	return o.opponent.Watch()
}

// Winner returns the match outcome, WinnerNone while undecided.
func (o *Orchestrator) Winner() Winner {
	return o.winner.Get()
}

// WatchWinner returns a conflating channel of outcome changes.
func (o *Orchestrator) WatchWinner() <-chan Winner {
	return o.winner.Watch()
}

// RequestPlayAgain signals local rematch readiness. The match restarts
// once both sides have signalled.
func (o *Orchestrator) RequestPlayAgain() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.localReady = true
	o.send(protocol.PlayAgainRequest{})
	o.maybeRestart()
}

// LeaveGame notifies the peer, allows a short delivery grace period, then
// tears the match down.
func (o *Orchestrator) LeaveGame() {
	o.send(protocol.PlayerLeftGame{})
	time.Sleep(o.cfg.Net.LeaveGrace())
	o.session.Finish()
	o.conn.Close()
}

// Run drives the match until the context is cancelled: the gravity loop,
// the periodic broadcasts and all event handling. The broadcast cadence is
// independent of the gravity loop; it only reads session snapshots.
func (o *Orchestrator) Run(ctx context.Context) {
	go o.session.Run(ctx)

	boardTicker := time.NewTicker(o.cfg.Net.BoardSync())
	defer boardTicker.Stop()
	syncTicker := time.NewTicker(o.cfg.Net.Debounce())
	defer syncTicker.Stop()

	o.send(protocol.PlayerReady{Name: o.localName})

	for {
		select {
		case <-ctx.Done():
			return
		case evt := <-o.session.Events():
			o.handleSessionEvent(evt)
		case evt := <-o.conn.Events():
			o.handleNetEvent(evt)
		case <-boardTicker.C:
			o.mu.Lock()
			o.broadcastBoard()
			o.mu.Unlock()
		case <-syncTicker.C:
			o.mu.Lock()
			o.broadcastDebounced()
			o.mu.Unlock()
		}
	}
}

// garbageFor maps a local line clear to the garbage sent to the opponent.
func garbageFor(lines int) int {
	switch lines {
	case 1:
		return 0
	case 2:
		return 1
	case 3:
		return 2
	case 4:
		return 4
	default:
		if lines > 4 {
			return lines - 1
		}
		return 0
	}
}

func (o *Orchestrator) handleSessionEvent(evt game.Event) {
	o.mu.Lock()
	defer o.mu.Unlock()
	switch evt := evt.(type) {
	case game.StatsChangedEvent:
		o.statsDirty = true
		if g := garbageFor(evt.LinesDelta); g > 0 {
			o.send(protocol.GarbageReceived{Count: g})
		}
	case game.PieceLockedEvent:
		// The current piece just vanished; push the board immediately so
		// the peer never renders a stale falling piece over locked cells.
		o.broadcastBoard()
	case game.GameOverEvent:
		o.localDefeat(evt.Stats)
	case game.StateChangedEvent, game.LinesClearedEvent:
		// Visible through snapshots, nothing to replicate directly
	}
}

func (o *Orchestrator) handleNetEvent(evt netplay.Event) {
	switch evt := evt.(type) {
	case netplay.MessageEvent:
		o.handleMessage(evt.Msg)
	case netplay.PeerLostEvent:
		o.logger.Info("peer lost")
		o.mu.Lock()
		o.decide(WinnerDisconnected)
		o.mu.Unlock()
		o.session.Finish()
	}
}

func (o *Orchestrator) handleMessage(msg protocol.Message) {
	o.mu.Lock()
	defer o.mu.Unlock()
	switch msg := msg.(type) {
	case protocol.PlayerReady:
		o.remoteName = msg.Name
		o.setOpponentName(msg.Name)
		if o.isHost && !o.started {
			o.send(protocol.GameStart{Timestamp: time.Now().UnixMilli()})
			o.startMatch()
		}
	case protocol.GameStart:
		if !o.isHost && !o.started {
			o.startMatch()
		}
	case protocol.BoardUpdate:
		board, current := fromBoardUpdate(msg)
		opp := o.opponent.Get()
		opp.Board = board
		opp.Current = current
		o.opponent.Set(opp)
	case protocol.StatsUpdate:
		opp := o.opponent.Get()
		opp.Stats = game.Stats{Score: msg.Score, Level: msg.Level, Lines: msg.Lines}
		o.opponent.Set(opp)
	case protocol.NextPieceUpdate:
		opp := o.opponent.Get()
		opp.Next = fromNextUpdate(msg)
		o.opponent.Set(opp)
	case protocol.GarbageReceived:
		// Overflow ends the local game; the session publishes the
		// GameOverEvent that triggers the loss announcement.
		o.session.ApplyGarbage(msg.Count)
	case protocol.GameOver:
		opp := o.opponent.Get()
		opp.Stats = game.Stats{Score: msg.Score, Level: msg.Level, Lines: msg.Lines}
		o.opponent.Set(opp)
		o.decide(WinnerLocal)
		o.session.Finish()
	case protocol.PlayAgainRequest:
		o.remoteReady = true
		o.maybeRestart()
	case protocol.PlayerLeftGame, protocol.PlayerDisconnected:
		o.logger.Info("peer left the game")
		o.decide(WinnerDisconnected)
		o.session.Finish()
		o.conn.Close()
	}
}

func (o *Orchestrator) startMatch() {
	o.started = true
	o.startedAt = time.Now()
	o.session.Start()
	o.logger.Info("match started", "opponent", o.remoteName)
}

// localDefeat handles the local session reaching its terminal state: this
// side announces its loss and the arbitration resolves in the peer's favor
// unless an earlier signal already decided the match.
func (o *Orchestrator) localDefeat(stats game.Stats) {
	o.send(protocol.GameOver{Score: stats.Score, Level: stats.Level, Lines: stats.Lines})
	o.decide(WinnerOpponent)
	o.saveScore(stats)
}

// decide resolves the arbitration: the first terminal signal observed
// wins; later signals are ignored. Caller holds mu.
func (o *Orchestrator) decide(w Winner) {
	if o.winner.Get() != WinnerNone {
		return
	}
	o.winner.Set(w)
	o.logger.Info("match decided", "winner", w)
	o.saveMatch(w)
}

// maybeRestart begins the rematch once both sides signalled. Caller
// holds mu.
func (o *Orchestrator) maybeRestart() {
	if !o.localReady || !o.remoteReady {
		return
	}
	o.localReady = false
	o.remoteReady = false
	o.statsDirty = false
	o.lastNextType = ""
	o.opponent.Set(Opponent{Name: o.remoteName})
	o.winner.Set(WinnerNone)
	o.started = true
	o.startedAt = time.Now()
	o.session.Start()
	o.logger.Info("rematch started")
}

// broadcastBoard sends the full board plus falling piece. Caller holds mu.
func (o *Orchestrator) broadcastBoard() {
	if !o.started || o.session.State() != game.StatePlaying {
		return
	}
	o.send(toBoardUpdate(o.session.Snapshot()))
}

// broadcastDebounced flushes the slower-moving state: stats when they
// changed since the last flush, and the next-piece preview when it
// differs from the one last sent. Caller holds mu.
func (o *Orchestrator) broadcastDebounced() {
	if !o.started {
		return
	}
	if o.statsDirty {
		o.statsDirty = false
		stats := o.session.Stats()
		o.send(protocol.StatsUpdate{Score: stats.Score, Level: stats.Level, Lines: stats.Lines})
	}
	if snap := o.session.Snapshot(); snap.Next != nil {
		if t := snap.Next.Type.String(); t != o.lastNextType {
			o.lastNextType = t
			o.send(protocol.NextPieceUpdate{Type: t, Color: snap.Next.Color.String()})
		}
	}
}

func (o *Orchestrator) setOpponentName(name string) {
	opp := o.opponent.Get()
	opp.Name = name
	o.opponent.Set(opp)
}

// send is fire-and-forget: transport errors are already logged and handled
// by the connection manager.
func (o *Orchestrator) send(msg protocol.Message) {
	_ = o.conn.Send(msg)
}

func (o *Orchestrator) saveScore(stats game.Stats) {
	if o.sink == nil {
		return
	}
	go func() {
		if err := o.sink.SaveScore(stats.Score, stats.Level, stats.Lines); err != nil {
			o.logger.Warn("could not save score", "error", err)
		}
	}()
}

func (o *Orchestrator) saveMatch(w Winner) {
	if o.sink == nil {
		return
	}
	local := o.session.Stats()
	remote := o.opponent.Get().Stats
	opponent := o.remoteName
	duration := 0
	if !o.startedAt.IsZero() {
		duration = int(time.Since(o.startedAt).Seconds())
	}
	go func() {
		if err := o.sink.SaveMatch(opponent, w.String(), local.Score, remote.Score, duration); err != nil {
			o.logger.Warn("could not save match result", "error", err)
		}
	}()
}
