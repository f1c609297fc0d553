// Package netplay manages the peer-to-peer connection: LAN discovery,
// connect/accept, heartbeat and bounded-retry reconnection.
package netplay

import (
	"fmt"
	"net"
	"strconv"
)

// State is the connection lifecycle state.
type State int

const (
	StateDisconnected State = iota
	StateHosting
	StateConnecting
	StateConnected
	StateReconnecting
	StateError
)

// String returns a human-readable name for the state.
func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateHosting:
		return "hosting"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateReconnecting:
		return "reconnecting"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// Status is the observable connection state with its variant payloads:
// the advertised name while hosting, the attempt counter while
// reconnecting, the reason on error.
type Status struct {
	State   State
	Name    string
	Attempt int
	Reason  string
}

// String formats the status for logs and status lines.
func (s Status) String() string {
	switch s.State {
	case StateHosting:
		return fmt.Sprintf("hosting as %q", s.Name)
	case StateReconnecting:
		return fmt.Sprintf("reconnecting (attempt %d)", s.Attempt)
	case StateError:
		return fmt.Sprintf("error: %s", s.Reason)
	default:
		return s.State.String()
	}
}

// PeerInfo describes a discovered peer. It is never mutated and is
// discarded on disconnect.
type PeerInfo struct {
	Name string
	Addr string
	Port int
}

// HostPort returns the dialable "addr:port" form, bracketing IPv6
// literals.
func (p PeerInfo) HostPort() string {
	return net.JoinHostPort(p.Addr, strconv.Itoa(p.Port))
}
