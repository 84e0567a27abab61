//go:build windows

package sink

import (
	"fmt"

	"gopkg.in/toast.v1"
)

// nativeNotifier shows Windows toast notifications. beeep also supports
// Windows, but toast notifications carry an AppID and integrate with the
// action center, which plain balloon tips do not.
type nativeNotifier struct{}

func newNativeNotifier() Notifier { return nativeNotifier{} }

// Notify displays a toast notification.
func (nativeNotifier) Notify(title, body string) error {
	n := toast.Notification{
		AppID:   "ClipGate",
		Title:   title,
		Message: body,
	}
	if err := n.Push(); err != nil {
		return fmt.Errorf("failed to show notification: %w", err)
	}
	return nil
}

// nativeNotifyAvailable reports whether the native notification path can
// work; toast notifications are always available on Windows.
func nativeNotifyAvailable() bool { return true }
