package netplay

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/blockduel/internal/config"
	"github.com/vovakirdan/blockduel/internal/core"
	"github.com/vovakirdan/blockduel/internal/protocol"
)

// ErrNotConnected is returned by Send when no peer connection is active.
var ErrNotConnected = errors.New("netplay: not connected")

// Event is a notification published by the Manager.
type Event interface {
	netEvent()
}

// MessageEvent carries a received peer message. Heartbeat frames are
// handled internally and never surfaced.
type MessageEvent struct {
	Msg protocol.Message
}

func (MessageEvent) netEvent() {}

// PeerLostEvent is published exactly once when a lost connection could not
// be re-established within the retry budget.
type PeerLostEvent struct{}

func (PeerLostEvent) netEvent() {}

// Manager owns the single peer connection: accept or dial, the receive
// loop, the heartbeat, and bounded-retry reconnection. At most one
// connection is active at any time.
type Manager struct {
	cfg    config.NetConfig
	disc   Discovery
	logger *log.Logger

	status *core.Cell[Status]
	events chan Event

	mu           sync.Mutex
	conn         net.Conn
	writer       *protocol.Writer
	connCancel   context.CancelFunc
	gen          int // connection generation, guards stale failure reports
	reconnecting bool
	lostFired    bool
	isHost       bool
	localName    string
	lastPeer     *PeerInfo
	listener     net.Listener
	annCancel    context.CancelFunc

	dialMu sync.Mutex // serializes outbound connection attempts

	closeOnce sync.Once
	closed    chan struct{}
}

// NewManager creates a connection manager. The discovery capability may be
// nil when peers are addressed manually.
func NewManager(cfg config.NetConfig, disc Discovery, logger *log.Logger) *Manager {
	return &Manager{
		cfg:    cfg,
		disc:   disc,
		logger: logger,
		status: core.NewCell(Status{State: StateDisconnected}),
		events: make(chan Event, 256),
		closed: make(chan struct{}),
	}
}

// Events returns the channel the manager publishes on.
func (m *Manager) Events() <-chan Event {
	return m.events
}

// Status returns the current connection status.
func (m *Manager) Status() Status {
	return m.status.Get()
}

// WatchStatus returns a conflating channel of status changes.
func (m *Manager) WatchStatus() <-chan Status {
	return m.status.Watch()
}

// Host binds the game port, advertises the session and accepts a single
// inbound connection. It returns once listening; the accept happens in the
// background.
func (m *Manager) Host(ctx context.Context, name string) error {
	listener, err := net.Listen("tcp", fmt.Sprintf(":%d", m.cfg.Port))
	if err != nil {
		m.setStatus(Status{State: StateError, Reason: err.Error()})
		return fmt.Errorf("netplay: listen: %w", err)
	}

	annCtx, annCancel := context.WithCancel(ctx)

	m.mu.Lock()
	m.listener = listener
	m.isHost = true
	m.localName = name
	m.annCancel = annCancel
	m.mu.Unlock()

	m.setStatus(Status{State: StateHosting, Name: name})

	if m.disc != nil {
		if err := m.disc.Announce(annCtx, name); err != nil {
			// Discovery failure is recoverable: surface it but keep
			// listening for manually addressed peers.
			m.logger.Warn("advertisement failed", "error", err)
			m.setStatus(Status{State: StateError, Reason: err.Error()})
		}
	}

	go func() {
		conn, err := listener.Accept()
		if err != nil {
			return // listener closed by Close
		}
		annCancel()
		m.logger.Info("peer connected", "remote", conn.RemoteAddr())
		m.setupConn(conn)
	}()
	return nil
}

// Addr returns the bound listener address while hosting.
func (m *Manager) Addr() net.Addr {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listener == nil {
		return nil
	}
	return m.listener.Addr()
}

// Join opens the single outbound connection to a discovered peer.
// Connection attempts are serialized: one candidate at a time.
func (m *Manager) Join(ctx context.Context, peer PeerInfo, name string) error {
	m.mu.Lock()
	m.isHost = false
	m.localName = name
	p := peer
	m.lastPeer = &p
	m.mu.Unlock()

	m.setStatus(Status{State: StateConnecting})

	conn, err := m.dial(ctx, peer)
	if err != nil {
		m.setStatus(Status{State: StateError, Reason: err.Error()})
		return err
	}
	m.logger.Info("connected to host", "peer", peer.Name, "remote", conn.RemoteAddr())
	m.setupConn(conn)
	return nil
}

func (m *Manager) dial(ctx context.Context, peer PeerInfo) (net.Conn, error) {
	m.dialMu.Lock()
	defer m.dialMu.Unlock()

	d := net.Dialer{Timeout: m.cfg.DialTimeout()}
	conn, err := d.DialContext(ctx, "tcp", peer.HostPort())
	if err != nil {
		return nil, fmt.Errorf("netplay: dial %s: %w", peer.HostPort(), err)
	}
	return conn, nil
}

// Send writes one message to the peer. Write errors are transport errors:
// they are logged, trigger the reconnection procedure and are returned to
// the caller, who should treat the send as fire-and-forget.
func (m *Manager) Send(msg protocol.Message) error {
	m.mu.Lock()
	writer := m.writer
	gen := m.gen
	m.mu.Unlock()

	if writer == nil {
		return ErrNotConnected
	}
	if err := writer.Write(msg); err != nil {
		m.logger.Warn("send failed", "kind", msg.Kind(), "error", err)
		m.connBroken(gen, err)
		return err
	}
	return nil
}

// Close tears down the connection, the listener and discovery. Idempotent.
func (m *Manager) Close() {
	m.closeOnce.Do(func() {
		close(m.closed)

		m.mu.Lock()
		conn := m.conn
		listener := m.listener
		cancel := m.connCancel
		annCancel := m.annCancel
		m.conn = nil
		m.writer = nil
		m.mu.Unlock()

		if cancel != nil {
			cancel()
		}
		if annCancel != nil {
			annCancel()
		}
		if conn != nil {
			conn.Close()
		}
		if listener != nil {
			listener.Close()
		}
		if m.disc != nil {
			m.disc.Close()
		}
		m.setStatus(Status{State: StateDisconnected})
	})
}

// --- internals ---

func (m *Manager) setStatus(s Status) {
	m.status.Set(s)
}

func (m *Manager) publish(evt Event) {
	select {
	case m.events <- evt:
	default:
		select {
		case <-m.events:
		default:
		}
		select {
		case m.events <- evt:
		default:
		}
	}
}

// setupConn installs a new active connection and starts its receive and
// heartbeat loops.
func (m *Manager) setupConn(conn net.Conn) {
	ctx, cancel := context.WithCancel(context.Background())

	m.mu.Lock()
	m.gen++
	gen := m.gen
	m.conn = conn
	m.writer = protocol.NewWriter(conn)
	m.connCancel = cancel
	m.reconnecting = false
	m.lostFired = false
	m.mu.Unlock()

	m.setStatus(Status{State: StateConnected})

	go m.receiveLoop(conn, gen)
	go m.heartbeatLoop(ctx, gen)
}

func (m *Manager) receiveLoop(conn net.Conn, gen int) {
	r := protocol.NewReader(conn)
	for {
		msg, err := r.Read()
		if err != nil {
			if errors.Is(err, protocol.ErrMalformed) || errors.Is(err, protocol.ErrUnknownKind) {
				// Per-message error: drop the frame, keep the stream
				m.logger.Debug("dropping bad frame", "error", err)
				continue
			}
			if !errors.Is(err, io.EOF) {
				m.logger.Warn("receive failed", "error", err)
			}
			m.connBroken(gen, err)
			return
		}

		switch msg := msg.(type) {
		case protocol.Ping:
			// Answered internally; the orchestrator never sees heartbeats
			if err := m.Send(protocol.Pong{Timestamp: msg.Timestamp}); err != nil {
				return
			}
		case protocol.Pong:
			// Liveness confirmed, nothing to do
		default:
			m.publish(MessageEvent{Msg: msg})
		}
	}
}

func (m *Manager) heartbeatLoop(ctx context.Context, gen int) {
	ticker := time.NewTicker(m.cfg.Heartbeat())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-m.closed:
			return
		case <-ticker.C:
			if err := m.Send(protocol.Ping{Timestamp: time.Now().UnixMilli()}); err != nil {
				return // Send already reported the transport error
			}
		}
	}
}

// connBroken handles a detected disconnection for the given connection
// generation. Stale reports (an older connection, or a loss already being
// handled) are ignored so each loss starts exactly one reconnect loop.
func (m *Manager) connBroken(gen int, cause error) {
	select {
	case <-m.closed:
		return
	default:
	}

	m.mu.Lock()
	if gen != m.gen || m.reconnecting || m.conn == nil {
		m.mu.Unlock()
		return
	}
	m.reconnecting = true
	conn := m.conn
	cancel := m.connCancel
	m.conn = nil
	m.writer = nil
	m.connCancel = nil
	m.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	conn.Close()
	m.logger.Info("connection lost", "cause", cause)

	go m.reconnectLoop()
}

// reconnectLoop retries with linear backoff (backoff unit x attempt) up to
// the configured attempt budget. The host waits for a new inbound
// connection with a deadline; the joiner re-dials the last known peer.
func (m *Manager) reconnectLoop() {
	for attempt := 1; attempt <= m.cfg.MaxReconnects; attempt++ {
		m.setStatus(Status{State: StateReconnecting, Attempt: attempt})

		select {
		case <-m.closed:
			return
		case <-time.After(m.cfg.Backoff() * time.Duration(attempt)):
		}

		conn, err := m.reattempt()
		if err == nil {
			m.logger.Info("reconnected", "attempt", attempt)
			m.setupConn(conn)
			return
		}
		select {
		case <-m.closed:
			return
		default:
		}
		m.logger.Warn("reconnect failed", "attempt", attempt, "error", err)
	}

	m.mu.Lock()
	m.reconnecting = false
	fire := !m.lostFired
	m.lostFired = true
	m.mu.Unlock()

	m.setStatus(Status{State: StateDisconnected})
	if fire {
		m.publish(PeerLostEvent{})
	}
}

func (m *Manager) reattempt() (net.Conn, error) {
	m.mu.Lock()
	isHost := m.isHost
	listener := m.listener
	var lastPeer *PeerInfo
	if m.lastPeer != nil {
		p := *m.lastPeer
		lastPeer = &p
	}
	m.mu.Unlock()

	if isHost {
		if listener == nil {
			return nil, errors.New("netplay: listener gone")
		}
		tl, ok := listener.(*net.TCPListener)
		if !ok {
			return nil, errors.New("netplay: listener does not support deadlines")
		}
		if err := tl.SetDeadline(time.Now().Add(m.cfg.AcceptWindow())); err != nil {
			return nil, err
		}
		conn, err := tl.Accept()
		tl.SetDeadline(time.Time{})
		if err != nil {
			return nil, fmt.Errorf("netplay: re-accept: %w", err)
		}
		return conn, nil
	}

	if lastPeer == nil {
		return nil, errors.New("netplay: no known peer to reconnect to")
	}
	return m.dial(context.Background(), *lastPeer)
}
