// Dispatch: the pipeline between a completed session and the host, wiring
// the encoding guess, the sink write, and the notification together.

package main

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/tmair/clipgate/shared/protocol"
	"github.com/tmair/clipgate/shared/sink"
	"github.com/tmair/clipgate/shared/textenc"
)

// previewLength is how many characters of the original text appear in the
// notification body.
const previewLength = 40

// errSinkUnavailable marks dispatch failures that mean the daemon cannot do
// useful work at all (a forced backend with no usable mechanism). The
// listener treats these as fatal; ordinary write failures are per-connection.
var errSinkUnavailable = errors.New("sink unavailable")

// sinkProvider is the slice of sink.Factory the dispatcher depends on.
// WHY an interface: End-to-end tests record which sinks and notifiers were
// (or were not) invoked without touching the real clipboard.
type sinkProvider interface {
	Sink(kind sink.Kind) (sink.Sink, error)
	Notifier() sink.Notifier
}

// dispatcher routes one decoded payload to its output sink and fires the
// notification afterwards.
type dispatcher struct {
	sinks    sinkProvider
	encoding string
	log      zerolog.Logger
}

// writeText runs the full dispatch pipeline: encoding detection and
// transcoding, sink resolution by header type, the sink write, then the
// notification with a truncated preview of the original text.
//
// An empty payload is a documented short-circuit: no sink or notifier is
// invoked at all, and it is not an error. A sender that connects, shakes
// hands, and closes has simply said nothing.
func (d *dispatcher) writeText(raw []byte, headers protocol.Headers) error {
	if len(raw) == 0 {
		d.log.Debug().Msg("empty payload, dispatch skipped")
		return nil
	}

	suspects := textenc.Detect(raw)
	guess := suspects[0]
	if len(suspects) > 1 {
		// Ambiguity is not an error; the first candidate wins by policy.
		d.log.Debug().
			Strs("suspects", suspects).
			Str("charset", guess).
			Msg("encoding ambiguous, using first suspect")
	}

	out, err := textenc.Transcode(raw, guess, d.encoding)
	if err != nil {
		return fmt.Errorf("encoding pipeline failed: %w", err)
	}
	d.log.Debug().
		Str("charset", guess).
		Str("target", d.encoding).
		Int("bytes_in", len(raw)).
		Int("bytes_out", len(out)).
		Msg("payload transcoded")

	target, err := d.sinks.Sink(sink.KindFromHeader(headers.Type()))
	if err != nil {
		return fmt.Errorf("%w: %v", errSinkUnavailable, err)
	}
	if err := target.Write(out); err != nil {
		return fmt.Errorf("failed to write to %s sink: %w", target.Kind(), err)
	}

	// Full payload echo at the highest verbosity only; decode with the
	// guess so the console shows text, not legacy-charset bytes.
	if e := d.log.Debug(); e.Enabled() {
		echo, echoErr := textenc.Transcode(raw, guess, textenc.CharsetUTF8)
		if echoErr == nil {
			e.Str("text", string(echo)).Msg("payload echo")
		}
	}

	// The preview comes from the original (pre-transcoding) text so the
	// banner shows what the sender wrote regardless of the output charset.
	title := fmt.Sprintf("ClipGate: %d bytes to %s", len(out), target.Kind())
	body := textenc.Preview(raw, guess, previewLength)
	if err := d.sinks.Notifier().Notify(title, body); err != nil {
		// The text already landed; a failed banner is not worth failing
		// the connection over.
		d.log.Warn().Err(err).Msg("failed to show notification")
	}
	return nil
}
