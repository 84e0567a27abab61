package sink

import (
	"fmt"
	"io"
	"os"
)

// StdoutSink writes text to the daemon's own standard output. It is the
// terminal link of the fallback chain: constructing it cannot fail, so a
// usable sink always exists on any host.
type StdoutSink struct {
	w io.Writer
}

// NewStdoutSink creates a stdout sink. A nil writer means os.Stdout; tests
// inject a buffer.
func NewStdoutSink(w io.Writer) *StdoutSink {
	if w == nil {
		w = os.Stdout
	}
	return &StdoutSink{w: w}
}

// Kind identifies this sink as the stdout output.
func (s *StdoutSink) Kind() Kind { return KindStdout }

// Write prints the text followed by a separating newline when the text does
// not already end in one, so consecutive payloads stay distinguishable on a
// terminal.
func (s *StdoutSink) Write(text []byte) error {
	if _, err := s.w.Write(text); err != nil {
		return fmt.Errorf("failed to write stdout: %w", err)
	}
	if len(text) > 0 && text[len(text)-1] != '\n' {
		if _, err := io.WriteString(s.w, "\n"); err != nil {
			return fmt.Errorf("failed to write stdout: %w", err)
		}
	}
	return nil
}

// NoopNotifier performs no action. Used when no notification mechanism
// exists on the host and when the stdout backend is forced (a daemon
// already printing payloads should not also raise banners).
type NoopNotifier struct{}

// Notify does nothing and always succeeds.
func (NoopNotifier) Notify(title, body string) error { return nil }
