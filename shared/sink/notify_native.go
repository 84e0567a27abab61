//go:build !windows

package sink

import (
	"fmt"
	"os"
	"runtime"

	"github.com/gen2brain/beeep"
)

// nativeNotifier shows desktop banners through github.com/gen2brain/beeep,
// which maps onto the native mechanism of each OS (NSUserNotification on
// macOS, libnotify/D-Bus on Linux).
type nativeNotifier struct{}

func newNativeNotifier() Notifier { return nativeNotifier{} }

// Notify displays a desktop notification. The empty icon path uses the
// system default notification icon.
func (nativeNotifier) Notify(title, body string) error {
	if err := beeep.Notify(title, body, ""); err != nil {
		return fmt.Errorf("failed to show notification: %w", err)
	}
	return nil
}

// nativeNotifyAvailable reports whether the native notification path can
// work. On Linux beeep talks to the session D-Bus; without one every
// Notify would fail, so fall through to the command chain instead.
func nativeNotifyAvailable() bool {
	if runtime.GOOS == "linux" && os.Getenv("DBUS_SESSION_BUS_ADDRESS") == "" {
		return false
	}
	return true
}
