// Package sink defines ClipGate's output capabilities and selects a concrete
// implementation per host.
//
// A Sink receives the transcoded payload (clipboard, external command, or
// stdout fallback); a Notifier produces the short user-visible
// acknowledgment afterwards. Selection walks a fallback chain - native
// platform API, then an ordered list of external commands on PATH, then
// stdout - and the result is memoized per sink kind for the life of the
// process (see factory.go).
//
// WHY a closed set of kinds behind one interface instead of a subclass
// hierarchy: The set of outputs is small and known at compile time. Tagged
// variants chosen at construction time avoid any runtime type inspection
// and let tests enumerate every case.

package sink

// Kind identifies a logical output target. It is a closed enumeration; the
// mapping from header values to kinds is total, with unknown or absent
// values defaulting to the clipboard.
type Kind string

const (
	// KindClipboard routes text to the OS clipboard (or its best stand-in).
	KindClipboard Kind = "clipboard"

	// KindStdout routes text to the daemon's own standard output.
	KindStdout Kind = "stdout"
)

// KindFromHeader maps a wire-level `type` header value onto a Kind.
// WHY default to clipboard: The clipboard is the reason this daemon exists;
// an unrecognized type from an older or newer sender should still land the
// text somewhere useful rather than fail the connection.
func KindFromHeader(v string) Kind {
	switch v {
	case string(KindStdout):
		return KindStdout
	default:
		return KindClipboard
	}
}

// Sink is an abstract output target for decoded text. Write borrows the
// byte slice for the duration of the call only and retains no reference.
type Sink interface {
	// Kind identifies which logical output this sink serves, for
	// notification titles and logs.
	Kind() Kind

	// Write delivers the transcoded text to the output target.
	Write(text []byte) error
}

// Notifier is an abstract secondary output producing a short user-visible
// acknowledgment, typically a desktop banner.
type Notifier interface {
	Notify(title, body string) error
}
