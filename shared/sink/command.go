package sink

import (
	"bytes"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
)

// Placeholders substituted into the argument list of commands that take
// their input positionally instead of on stdin.
const (
	placeholderText  = "{text}"
	placeholderTitle = "{title}"
	placeholderBody  = "{body}"
)

// Spec describes one external command candidate: the executable name to
// probe on the search path, its fixed arguments, and how text reaches it.
type Spec struct {
	// Name is the bare executable name looked up on PATH.
	Name string

	// Args are the command's arguments. For Stdin commands they are passed
	// as-is; otherwise placeholders in them are replaced with the text.
	Args []string

	// Stdin selects the invocation form: pipe the text on standard input
	// (pbcopy, xclip) versus substitute it into the arguments (notify-send).
	Stdin bool

	// Path is the resolved absolute path, filled in by a Resolver.
	Path string
}

// Resolver finds the first usable candidate on the executable search path.
//
// WHY an interface: Fallback-order behavior must be testable without
// depending on what happens to be installed on the build machine. Tests
// inject a fake; production uses PathResolver.
type Resolver interface {
	Resolve(candidates []Spec) (Spec, bool)
}

// PathResolver probes candidates with exec.LookPath, honoring the PATH
// environment of the daemon process.
type PathResolver struct{}

// Resolve returns the first candidate whose executable exists on PATH.
func (PathResolver) Resolve(candidates []Spec) (Spec, bool) {
	for _, c := range candidates {
		if p, err := exec.LookPath(c.Name); err == nil {
			c.Path = p
			return c, true
		}
	}
	return Spec{}, false
}

// NoCommandError reports that none of the probed commands were executable.
// It lists every candidate tried so a missing-package problem is
// diagnosable from the error alone.
type NoCommandError struct {
	Tried []string
}

func (e *NoCommandError) Error() string {
	return fmt.Sprintf("no usable external command found (tried: %s)",
		strings.Join(e.Tried, ", "))
}

func candidateNames(candidates []Spec) []string {
	names := make([]string, len(candidates))
	for i, c := range candidates {
		names[i] = c.Name
	}
	return names
}

// clipboardCandidates returns the platform's external clipboard commands in
// probe order.
func clipboardCandidates() []Spec {
	switch runtime.GOOS {
	case "darwin":
		return []Spec{
			{Name: "pbcopy", Stdin: true},
		}
	case "windows":
		return []Spec{
			{Name: "clip", Stdin: true},
		}
	default:
		// X11 tools first, Wayland last: on most mixed setups XWayland
		// makes xclip work, while wl-copy only works under Wayland proper.
		return []Spec{
			{Name: "xclip", Args: []string{"-selection", "clipboard"}, Stdin: true},
			{Name: "xsel", Args: []string{"--clipboard", "--input"}, Stdin: true},
			{Name: "wl-copy", Stdin: true},
		}
	}
}

// notifyCandidates returns the platform's external notification commands in
// probe order. These take the text positionally rather than on stdin.
func notifyCandidates() []Spec {
	switch runtime.GOOS {
	case "darwin":
		return []Spec{
			{Name: "terminal-notifier", Args: []string{"-title", placeholderTitle, "-message", placeholderBody}},
		}
	case "windows":
		// No conventional CLI notifier ships with Windows; the native
		// toast path covers it.
		return nil
	default:
		return []Spec{
			{Name: "notify-send", Args: []string{placeholderTitle, placeholderBody}},
		}
	}
}

// CommandSink wraps one resolved external command as a Sink.
type CommandSink struct {
	kind Kind
	spec Spec
}

// NewCommandSink probes candidates through the resolver and wraps the first
// hit. Returns a NoCommandError naming every candidate when nothing on the
// host is executable; the caller decides whether that is fatal.
func NewCommandSink(kind Kind, r Resolver, candidates []Spec) (*CommandSink, error) {
	spec, ok := r.Resolve(candidates)
	if !ok {
		return nil, &NoCommandError{Tried: candidateNames(candidates)}
	}
	return &CommandSink{kind: kind, spec: spec}, nil
}

// Kind returns the logical output this command serves.
func (s *CommandSink) Kind() Kind { return s.kind }

// Command returns the resolved executable name, for logs and tests.
func (s *CommandSink) Command() string { return s.spec.Name }

// Write runs the command once, delivering text on stdin or in the argument
// list according to the candidate's invocation form.
func (s *CommandSink) Write(text []byte) error {
	args := expandArgs(s.spec.Args, placeholderText, string(text))
	cmd := exec.Command(s.spec.Path, args...)
	if s.spec.Stdin {
		cmd.Stdin = bytes.NewReader(text)
	}
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s failed: %w (%s)", s.spec.Name, err, bytes.TrimSpace(out))
	}
	return nil
}

// CommandNotifier wraps one resolved external command as a Notifier.
type CommandNotifier struct {
	spec Spec
}

// NewCommandNotifier probes candidates and wraps the first hit, with the
// same error contract as NewCommandSink.
func NewCommandNotifier(r Resolver, candidates []Spec) (*CommandNotifier, error) {
	spec, ok := r.Resolve(candidates)
	if !ok {
		return nil, &NoCommandError{Tried: candidateNames(candidates)}
	}
	return &CommandNotifier{spec: spec}, nil
}

// Notify runs the command once with title and body substituted into its
// argument list.
func (n *CommandNotifier) Notify(title, body string) error {
	args := n.spec.Args
	args = expandArgs(args, placeholderTitle, title)
	args = expandArgs(args, placeholderBody, body)
	cmd := exec.Command(n.spec.Path, args...)
	if n.spec.Stdin {
		cmd.Stdin = strings.NewReader(body)
	}
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s failed: %w (%s)", n.spec.Name, err, bytes.TrimSpace(out))
	}
	return nil
}

// expandArgs returns args with every occurrence of placeholder replaced by
// value, copying so the Spec's argument template is never mutated.
func expandArgs(args []string, placeholder, value string) []string {
	out := make([]string, len(args))
	for i, a := range args {
		out[i] = strings.ReplaceAll(a, placeholder, value)
	}
	return out
}
