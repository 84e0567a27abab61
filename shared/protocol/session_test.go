package protocol

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKey = "change_on_install"

func runSession(t *testing.T, input string) *Session {
	t.Helper()
	s := NewSession("127.0.0.1:12345")
	require.NoError(t, s.Run(strings.NewReader(input), testKey))
	return s
}

func TestSessionAcceptsExactKey(t *testing.T) {
	s := runSession(t, "change_on_install\ttype=clipboard\nHello\n")

	assert.Equal(t, StateComplete, s.State())
	assert.True(t, s.Accepted())
	assert.Equal(t, "clipboard", s.Headers().Type())
	assert.Equal(t, []byte("Hello\n"), s.Payload())
}

func TestSessionRejectsWrongKey(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "different key", input: "wrong_key\nHello\n"},
		{name: "prefix of key", input: "change_on\nHello\n"},
		{name: "key with suffix", input: "change_on_installX\nHello\n"},
		{name: "case variant", input: "Change_On_Install\nHello\n"},
		{name: "empty line", input: "\nHello\n"},
		{name: "empty stream", input: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := runSession(t, tt.input)
			assert.Equal(t, StateRejected, s.State())
			assert.False(t, s.Accepted())
			// No payload bytes are consumed after a failed handshake.
			assert.Empty(t, s.Payload())
		})
	}
}

func TestSessionPayloadIsVerbatim(t *testing.T) {
	// Line separators, blank lines, and trailing whitespace all survive.
	payload := "line one\n\nline three  \nno trailing newline"
	s := runSession(t, testKey+"\n"+payload)

	assert.Equal(t, []byte(payload), s.Payload())
	assert.Equal(t, StateComplete, s.State())
}

func TestSessionEmptyPayload(t *testing.T) {
	s := runSession(t, "change_on_install\n")

	assert.True(t, s.Accepted())
	assert.Empty(t, s.Payload())
}

func TestSessionHandshakeWithoutNewline(t *testing.T) {
	// Sender closes right after the key with no line terminator.
	s := runSession(t, "change_on_install")

	assert.True(t, s.Accepted())
	assert.Equal(t, StateComplete, s.State())
	assert.Empty(t, s.Payload())
}

func TestSessionHeaders(t *testing.T) {
	s := runSession(t, "change_on_install\ttype=stdout\thost=mybox\nx")

	h := s.Headers()
	assert.Equal(t, "stdout", h.Type())
	assert.Equal(t, "mybox", h["host"])
}

func TestSessionHeaderDefaultsAndJunk(t *testing.T) {
	// Malformed fields (no '=') are skipped; first value wins on duplicates.
	s := runSession(t, "change_on_install\tjunk\ttype=stdout\ttype=clipboard\n")

	assert.Equal(t, "stdout", s.Headers().Type())
	_, ok := s.Headers()["junk"]
	assert.False(t, ok)
}

func TestSessionTypeDefaultsToClipboard(t *testing.T) {
	s := runSession(t, "change_on_install\nHello\n")
	assert.Equal(t, "clipboard", s.Headers().Type())

	s = runSession(t, "change_on_install\ttype=\nHello\n")
	assert.Equal(t, "clipboard", s.Headers().Type())
}

func TestSessionCRLFHandshake(t *testing.T) {
	// Windows senders terminate the handshake with \r\n; the \r must not
	// become part of the last header value. Payload bytes stay untouched.
	s := runSession(t, "change_on_install\ttype=stdout\r\nHello\r\n")

	assert.True(t, s.Accepted())
	assert.Equal(t, "stdout", s.Headers().Type())
	assert.Equal(t, []byte("Hello\r\n"), s.Payload())
}

func TestSessionRunTwice(t *testing.T) {
	s := runSession(t, "change_on_install\nHello")
	assert.Error(t, s.Run(strings.NewReader("change_on_install\n"), testKey))
}
