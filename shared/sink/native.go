package sink

import (
	"fmt"
	"os"
	"runtime"

	"github.com/atotto/clipboard"
)

// ClipboardSink writes text to the OS clipboard through
// github.com/atotto/clipboard.
//
// WHY a cross-platform clipboard library: Clipboard access is deeply
// OS-specific (pbcopy/pbpaste on macOS, xclip/xsel or wl-copy on Linux,
// Win32 APIs on Windows). atotto/clipboard abstracts all of that behind a
// simple WriteAll, so this file carries no build tags.
type ClipboardSink struct{}

// Kind identifies this sink as the clipboard output.
func (ClipboardSink) Kind() Kind { return KindClipboard }

// Write replaces the clipboard contents with text.
func (ClipboardSink) Write(text []byte) error {
	if err := clipboard.WriteAll(string(text)); err != nil {
		return fmt.Errorf("failed to write clipboard: %w", err)
	}
	return nil
}

// nativeClipboardAvailable reports whether the native clipboard path can
// work on this host.
//
// WHY the env checks on Linux: atotto/clipboard shells out to an X11 or
// Wayland helper there, so without a display session the "native" path
// would fail on every write. Detecting that up front lets the factory fall
// through to the command chain (and ultimately stdout) honestly instead of
// constructing a sink that can never succeed.
func nativeClipboardAvailable() bool {
	if clipboard.Unsupported {
		return false
	}
	if runtime.GOOS == "linux" &&
		os.Getenv("DISPLAY") == "" && os.Getenv("WAYLAND_DISPLAY") == "" {
		return false
	}
	return true
}
