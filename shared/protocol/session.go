// Package protocol implements the per-connection handshake and payload
// protocol for ClipGate.
//
// The wire format is deliberately tiny: one tab-separated handshake line,
// then raw payload bytes until the sender closes the connection. There is
// no response channel; the protocol is fire-and-forget.
//
// WHY a Session type instead of a parse function:
// A connection moves through states (awaiting handshake, reading payload,
// complete, rejected) and the listener needs to ask afterwards what happened
// and what was read. Binding that lifecycle to one struct per connection
// keeps the listener loop simple and makes the state machine testable
// against plain io.Readers without sockets.

package protocol

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"

	"github.com/tmair/clipgate/shared/auth"
)

// State identifies where a Session is in its lifecycle.
type State int

const (
	// StateAwaitingHandshake is the initial state before any bytes arrive.
	StateAwaitingHandshake State = iota

	// StateReadingPayload means the handshake was accepted and payload
	// bytes are being accumulated.
	StateReadingPayload

	// StateComplete means the sender closed the connection and the payload
	// is final.
	StateComplete

	// StateRejected means the handshake key did not match. No payload bytes
	// are ever read in this state.
	StateRejected
)

// String returns a short name for logging.
func (s State) String() string {
	switch s {
	case StateAwaitingHandshake:
		return "awaiting_handshake"
	case StateReadingPayload:
		return "reading_payload"
	case StateComplete:
		return "complete"
	case StateRejected:
		return "rejected"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// HeaderType is the header key that selects the output sink.
const HeaderType = "type"

// DefaultType is the sink selected when the sender names none.
const DefaultType = "clipboard"

// Headers holds the key=value pairs from the handshake line.
// Keys are unique; a repeated key keeps its first value.
type Headers map[string]string

// Type returns the requested output type, defaulting to "clipboard" when
// the header is absent or empty.
func (h Headers) Type() string {
	if v := h[HeaderType]; v != "" {
		return v
	}
	return DefaultType
}

// Session represents one accepted connection: it parses the handshake,
// accumulates the payload, and records the outcome. A Session is owned by
// exactly one connection handler and is discarded when the socket closes.
type Session struct {
	// ID is a correlation identifier attached to every log event for this
	// connection.
	ID string

	// RemoteAddr is the peer's address, for logging only.
	RemoteAddr string

	state   State
	headers Headers
	payload bytes.Buffer
}

// NewSession creates a Session for a freshly accepted connection.
func NewSession(remoteAddr string) *Session {
	return &Session{
		ID:         uuid.NewString(),
		RemoteAddr: remoteAddr,
		state:      StateAwaitingHandshake,
		headers:    make(Headers),
	}
}

// State returns the session's current lifecycle state.
func (s *Session) State() State { return s.state }

// Accepted reports whether the handshake key matched.
func (s *Session) Accepted() bool {
	return s.state == StateReadingPayload || s.state == StateComplete
}

// Headers returns the parsed handshake headers. Only meaningful once the
// session was accepted.
func (s *Session) Headers() Headers { return s.headers }

// Payload returns the raw payload bytes read so far. The bytes are exactly
// what the sender wrote after the handshake line, separators included.
func (s *Session) Payload() []byte { return s.payload.Bytes() }

// Run drives the session to completion against the connection's read side:
// it reads the handshake line, checks the accept key, and (if accepted)
// accumulates payload bytes until the peer closes the connection.
//
// A key mismatch is not an error: the session ends in StateRejected and the
// caller simply closes the socket. Errors are reserved for actual I/O
// failures mid-stream.
//
// WHY no read deadline: The protocol has no terminator other than EOF, and
// the tool targets interactive, trusted-network use. A connected-but-silent
// peer therefore holds the (single-threaded) listener until it disconnects;
// this is an accepted limitation, not an oversight.
func (s *Session) Run(r io.Reader, acceptKey string) error {
	if s.state != StateAwaitingHandshake {
		return fmt.Errorf("session %s already ran (state %s)", s.ID, s.state)
	}

	br := bufio.NewReader(r)

	line, err := br.ReadString('\n')
	if err != nil && err != io.EOF {
		return fmt.Errorf("failed to read handshake: %w", err)
	}
	// A sender that closes before completing the first line still gets its
	// partial line checked: an empty or wrong first field rejects as usual.

	if !s.handshake(line, acceptKey) {
		// Rejected: consume nothing further, the caller closes the socket.
		s.state = StateRejected
		return nil
	}
	s.state = StateReadingPayload

	if err == io.EOF {
		// Handshake line arrived without a trailing newline and the sender
		// closed immediately: accepted, empty payload.
		s.state = StateComplete
		return nil
	}

	// Everything after the handshake line, through end-of-stream, is payload.
	// io.Copy preserves the bytes verbatim, line separators included.
	if _, err := io.Copy(&s.payload, br); err != nil {
		return fmt.Errorf("failed to read payload: %w", err)
	}
	s.state = StateComplete
	return nil
}

// handshake parses the first line and checks the accept key. It returns
// false on key mismatch without touching the header map.
func (s *Session) handshake(line, acceptKey string) bool {
	// Strip the line terminator only; payload bytes are never trimmed.
	line = strings.TrimRight(line, "\r\n")

	fields := strings.Split(line, "\t")
	if !auth.ValidateKey(acceptKey, fields[0]) {
		return false
	}

	// Remaining tab fields are key=value headers. Fields without '=' carry
	// no information and are skipped; the accept key already gated garbage.
	for _, f := range fields[1:] {
		k, v, ok := strings.Cut(f, "=")
		if !ok || k == "" {
			continue
		}
		if _, dup := s.headers[k]; dup {
			continue
		}
		s.headers[k] = v
	}
	return true
}
