package sink

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

// Backend pins how the factory selects sink implementations.
type Backend string

const (
	// BackendAuto walks the full fallback chain: native, then external
	// commands, then stdout.
	BackendAuto Backend = "auto"

	// BackendNative requires the native platform API; fatal if unavailable.
	BackendNative Backend = "native"

	// BackendCommand requires an external command; fatal if none of the
	// candidates are executable.
	BackendCommand Backend = "command"

	// BackendStdout skips probing entirely and prints payloads.
	BackendStdout Backend = "stdout"
)

// ParseBackend converts a configuration string into a Backend.
func ParseBackend(s string) (Backend, error) {
	switch b := Backend(strings.ToLower(s)); b {
	case BackendAuto, BackendNative, BackendCommand, BackendStdout:
		return b, nil
	default:
		return "", fmt.Errorf("unknown backend %q", s)
	}
}

// Factory probes the host for the best available Sink and Notifier and
// memoizes one instance per kind for the life of the process.
//
// WHY memoization: Probing involves filesystem lookups and, for the native
// paths, environment inspection. Doing it once per kind keeps per-
// connection dispatch cheap and guarantees every session observes the same
// output mechanism (first successful probe wins, forever).
//
// WHY a mutex when the daemon is single-threaded: First-probe-wins must
// survive any future concurrent caller, and the guard costs nothing on the
// sequential path.
type Factory struct {
	mu       sync.Mutex
	sinks    map[Kind]Sink
	notifier Notifier
	hasNotif bool

	backend     Backend
	resolver    Resolver
	clipProbe   func() bool
	notifyProbe func() bool
	stdout      io.Writer
	log         zerolog.Logger
}

// Option customizes a Factory. Production code usually passes only
// WithBackend and WithLogger; tests inject probes, resolvers, and writers.
type Option func(*Factory)

// WithBackend pins the selection policy (default BackendAuto).
func WithBackend(b Backend) Option { return func(f *Factory) { f.backend = b } }

// WithResolver replaces the PATH-based command resolver.
func WithResolver(r Resolver) Option { return func(f *Factory) { f.resolver = r } }

// WithClipboardProbe replaces the native clipboard availability check.
func WithClipboardProbe(p func() bool) Option { return func(f *Factory) { f.clipProbe = p } }

// WithNotifyProbe replaces the native notification availability check.
func WithNotifyProbe(p func() bool) Option { return func(f *Factory) { f.notifyProbe = p } }

// WithStdout redirects the stdout-fallback sink's writer.
func WithStdout(w io.Writer) Option { return func(f *Factory) { f.stdout = w } }

// WithLogger attaches a logger for probe decisions.
func WithLogger(log zerolog.Logger) Option { return func(f *Factory) { f.log = log } }

// NewFactory creates a Factory with real platform probes and the PATH
// resolver, then applies options.
func NewFactory(opts ...Option) *Factory {
	f := &Factory{
		sinks:       make(map[Kind]Sink),
		backend:     BackendAuto,
		resolver:    PathResolver{},
		clipProbe:   nativeClipboardAvailable,
		notifyProbe: nativeNotifyAvailable,
		log:         zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Sink returns the memoized Sink for kind, constructing it on first use.
// Construction can only fail when a forced backend is unusable; with the
// default auto backend the chain always terminates in stdout.
func (f *Factory) Sink(kind Kind) (Sink, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if s, ok := f.sinks[kind]; ok {
		return s, nil
	}
	s, err := f.buildSink(kind)
	if err != nil {
		return nil, err
	}
	f.sinks[kind] = s
	return s, nil
}

// buildSink runs the selection policy for kind. Caller holds the mutex.
func (f *Factory) buildSink(kind Kind) (Sink, error) {
	if kind == KindStdout {
		return NewStdoutSink(f.stdout), nil
	}

	switch f.backend {
	case BackendStdout:
		f.log.Debug().Str("kind", string(kind)).Msg("stdout backend forced")
		return NewStdoutSink(f.stdout), nil

	case BackendNative:
		if !f.clipProbe() {
			return nil, fmt.Errorf("native clipboard API unavailable on this host")
		}
		return ClipboardSink{}, nil

	case BackendCommand:
		s, err := NewCommandSink(kind, f.resolver, clipboardCandidates())
		if err != nil {
			return nil, fmt.Errorf("command backend forced but %w", err)
		}
		f.log.Debug().Str("command", s.Command()).Msg("external clipboard command selected")
		return s, nil

	default: // BackendAuto
		if f.clipProbe() {
			f.log.Debug().Str("kind", string(kind)).Msg("native clipboard selected")
			return ClipboardSink{}, nil
		}
		s, err := NewCommandSink(kind, f.resolver, clipboardCandidates())
		if err == nil {
			f.log.Debug().Str("command", s.Command()).Msg("external clipboard command selected")
			return s, nil
		}
		f.log.Warn().Err(err).Msg("no clipboard mechanism found, falling back to stdout")
		return NewStdoutSink(f.stdout), nil
	}
}

// Notifier returns the memoized Notifier, constructing it on first use.
// There is exactly one logical notifier type; construction never fails
// because the no-op notifier is always available.
func (f *Factory) Notifier() Notifier {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.hasNotif {
		return f.notifier
	}
	f.notifier = f.buildNotifier()
	f.hasNotif = true
	return f.notifier
}

// buildNotifier runs the notifier fallback chain. Caller holds the mutex.
func (f *Factory) buildNotifier() Notifier {
	if f.backend == BackendStdout {
		return NoopNotifier{}
	}
	if f.notifyProbe() {
		f.log.Debug().Msg("native notifier selected")
		return newNativeNotifier()
	}
	if n, err := NewCommandNotifier(f.resolver, notifyCandidates()); err == nil {
		f.log.Debug().Str("command", n.spec.Name).Msg("external notify command selected")
		return n
	}
	f.log.Debug().Msg("no notification mechanism found, notifications disabled")
	return NoopNotifier{}
}
