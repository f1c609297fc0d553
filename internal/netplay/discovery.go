package netplay

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/blockduel/internal/config"
)

// Discovery is the injected capability for finding peers on the local
// network: advertise the local session under the fixed service identifier,
// and report peers advertising the same identifier. Any mechanism
// satisfying that contract works; the engine has no opinion on the
// physical layer.
type Discovery interface {
	// Announce advertises the local session under the given display name
	// until the context is cancelled.
	Announce(ctx context.Context, name string) error

	// Discover reports discovered peers on the returned channel until the
	// context is cancelled. Each peer is reported once.
	Discover(ctx context.Context) (<-chan PeerInfo, error)

	// Close releases the underlying resources. Idempotent.
	Close() error
}

// beacon is the UDP advertisement payload.
type beacon struct {
	Service string `json:"service"`
	Name    string `json:"name"`
	Port    int    `json:"port"` // TCP game port of the announcer
}

// BroadcastDiscovery implements Discovery with periodic UDP broadcast
// beacons: the host broadcasts, joiners listen on the discovery port.
type BroadcastDiscovery struct {
	cfg    config.NetConfig
	logger *log.Logger

	// BroadcastAddr is the beacon destination. Overridable for tests and
	// unusual network setups.
	BroadcastAddr string

	mu        sync.Mutex
	listener  *net.UDPConn
	closeOnce sync.Once
	closed    chan struct{}
}

// NewBroadcastDiscovery creates a discovery instance using the configured
// discovery port and service name.
func NewBroadcastDiscovery(cfg config.NetConfig, logger *log.Logger) *BroadcastDiscovery {
	return &BroadcastDiscovery{
		cfg:           cfg,
		logger:        logger,
		BroadcastAddr: "255.255.255.255",
		closed:        make(chan struct{}),
	}
}

// Announce starts broadcasting beacons for the local session.
func (d *BroadcastDiscovery) Announce(ctx context.Context, name string) error {
	dest := fmt.Sprintf("%s:%d", d.BroadcastAddr, d.cfg.DiscoveryPort)
	conn, err := net.Dial("udp", dest)
	if err != nil {
		return fmt.Errorf("netplay: announce dial %s: %w", dest, err)
	}

	payload, err := json.Marshal(beacon{
		Service: d.cfg.ServiceName,
		Name:    name,
		Port:    d.cfg.Port,
	})
	if err != nil {
		conn.Close()
		return fmt.Errorf("netplay: marshal beacon: %w", err)
	}

	go func() {
		defer conn.Close()
		ticker := time.NewTicker(d.cfg.Announce())
		defer ticker.Stop()

		for {
			if _, err := conn.Write(payload); err != nil {
				d.logger.Warn("beacon send failed", "error", err)
			}
			select {
			case <-ctx.Done():
				return
			case <-d.closed:
				return
			case <-ticker.C:
			}
		}
	}()
	return nil
}

// Discover listens for beacons and reports each distinct peer once.
func (d *BroadcastDiscovery) Discover(ctx context.Context) (<-chan PeerInfo, error) {
	listener, err := net.ListenUDP("udp", &net.UDPAddr{Port: d.cfg.DiscoveryPort})
	if err != nil {
		return nil, fmt.Errorf("netplay: discovery listen: %w", err)
	}

	d.mu.Lock()
	d.listener = listener
	d.mu.Unlock()

	peers := make(chan PeerInfo, 16)

	// Unblock the read loop when the caller gives up.
	go func() {
		select {
		case <-ctx.Done():
		case <-d.closed:
		}
		listener.Close()
	}()

	go func() {
		defer close(peers)
		seen := make(map[string]bool)
		buf := make([]byte, 1024)

		for {
			n, addr, err := listener.ReadFromUDP(buf)
			if err != nil {
				return // listener closed
			}
			peer, ok := parseBeacon(buf[:n], addr.IP.String(), d.cfg.ServiceName)
			if !ok {
				continue
			}
			key := peer.HostPort() + "|" + peer.Name
			if seen[key] {
				continue
			}
			seen[key] = true
			select {
			case peers <- peer:
			default:
				// Queue full, re-announce will find them again later
				delete(seen, key)
			}
		}
	}()
	return peers, nil
}

// DiscoveryPort returns the bound UDP port, which differs from the
// configured one when it was 0.
func (d *BroadcastDiscovery) DiscoveryPort() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.listener == nil {
		return d.cfg.DiscoveryPort
	}
	return d.listener.LocalAddr().(*net.UDPAddr).Port
}

// Close stops announcement and discovery.
func (d *BroadcastDiscovery) Close() error {
	d.closeOnce.Do(func() {
		close(d.closed)
		d.mu.Lock()
		if d.listener != nil {
			d.listener.Close()
		}
		d.mu.Unlock()
	})
	return nil
}

// parseBeacon validates a received datagram against the expected service
// identifier.
func parseBeacon(data []byte, fromAddr, service string) (PeerInfo, bool) {
	var b beacon
	if err := json.Unmarshal(data, &b); err != nil {
		return PeerInfo{}, false
	}
	if b.Service != service || b.Port <= 0 {
		return PeerInfo{}, false
	}
	return PeerInfo{Name: b.Name, Addr: fromAddr, Port: b.Port}, true
}
