package protocol

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"
)

// ErrUnknownKind is returned by Decode for message kinds this build does
// not understand. Receivers drop such messages and continue.
var ErrUnknownKind = errors.New("protocol: unknown message kind")

// ErrMalformed is returned by Decode for frames that do not parse. Like
// ErrUnknownKind it is a per-message error, not a transport failure.
var ErrMalformed = errors.New("protocol: malformed frame")

// Envelope is the self-describing frame: one JSON object per line.
// Unknown fields inside Data are ignored for forward compatibility.
type Envelope struct {
	Type Kind            `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// Encode marshals a message into its envelope form (without the trailing
// newline).
func Encode(msg Message) ([]byte, error) {
	if msg == nil {
		return nil, errors.New("protocol: cannot encode nil message")
	}
	data, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("protocol: marshal %s payload: %w", msg.Kind(), err)
	}
	return json.Marshal(Envelope{Type: msg.Kind(), Data: data})
}

// Decode parses one framed line back into a typed message.
func Decode(line []byte) (Message, error) {
	if len(line) == 0 {
		return nil, fmt.Errorf("%w: empty frame", ErrMalformed)
	}
	var env Envelope
	if err := json.Unmarshal(line, &env); err != nil {
		return nil, fmt.Errorf("%w: envelope: %v", ErrMalformed, err)
	}

	msg, err := emptyMessage(env.Type)
	if err != nil {
		return nil, err
	}
	if len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, msg); err != nil {
			return nil, fmt.Errorf("%w: %s payload: %v", ErrMalformed, env.Type, err)
		}
	}
	return deref(msg), nil
}

// emptyMessage returns a pointer to the zero value for a kind.
func emptyMessage(k Kind) (any, error) {
	switch k {
	case KindPlayerReady:
		return &PlayerReady{}, nil
	case KindGameStart:
		return &GameStart{}, nil
	case KindStatsUpdate:
		return &StatsUpdate{}, nil
	case KindBoardUpdate:
		return &BoardUpdate{}, nil
	case KindNextPieceUpdate:
		return &NextPieceUpdate{}, nil
	case KindGarbageReceived:
		return &GarbageReceived{}, nil
	case KindGameOver:
		return &GameOver{}, nil
	case KindPlayAgainRequest:
		return &PlayAgainRequest{}, nil
	case KindPlayerLeftGame:
		return &PlayerLeftGame{}, nil
	case KindPlayerDisconnected:
		return &PlayerDisconnected{}, nil
	case KindPing:
		return &Ping{}, nil
	case KindPong:
		return &Pong{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, k)
	}
}

func deref(msg any) Message {
	switch m := msg.(type) {
	case *PlayerReady:
		return *m
	case *GameStart:
		return *m
	case *StatsUpdate:
		return *m
	case *BoardUpdate:
		return *m
	case *NextPieceUpdate:
		return *m
	case *GarbageReceived:
		return *m
	case *GameOver:
		return *m
	case *PlayAgainRequest:
		return *m
	case *PlayerLeftGame:
		return *m
	case *PlayerDisconnected:
		return *m
	case *Ping:
		return *m
	case *Pong:
		return *m
	default:
		return nil
	}
}

// maxFrameSize bounds a single line; a full board update is well under 4KB.
const maxFrameSize = 256 * 1024

// Writer frames messages onto a byte stream. All writes are serialized
// behind one mutex so concurrent senders never interleave frames.
type Writer struct {
	mu sync.Mutex
	w  *bufio.Writer
}

// NewWriter wraps a stream for framed writes.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: bufio.NewWriter(w)}
}

// Write frames and flushes one message.
func (w *Writer) Write(msg Message) error {
	data, err := Encode(msg)
	if err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if _, err := w.w.Write(data); err != nil {
		return fmt.Errorf("protocol: write frame: %w", err)
	}
	if err := w.w.WriteByte('\n'); err != nil {
		return fmt.Errorf("protocol: write frame: %w", err)
	}
	if err := w.w.Flush(); err != nil {
		return fmt.Errorf("protocol: flush frame: %w", err)
	}
	return nil
}

// Reader reads framed messages from a byte stream.
type Reader struct {
	scanner *bufio.Scanner
}

// NewReader wraps a stream for framed reads.
func NewReader(r io.Reader) *Reader {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 4096), maxFrameSize)
	return &Reader{scanner: scanner}
}

// Read returns the next message. It returns io.EOF at end of stream and
// decode errors per frame; the caller decides whether a decode error is
// fatal (it is not, per the protocol error policy).
func (r *Reader) Read() (Message, error) {
	if !r.scanner.Scan() {
		if err := r.scanner.Err(); err != nil {
			return nil, err
		}
		return nil, io.EOF
	}
	return Decode(r.scanner.Bytes())
}
