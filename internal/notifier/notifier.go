package notifier

import (
	"fmt"
	"os/exec"

	"github.com/jiangwan/chrome-outlook-calendar/internal/nerdfonts"
)

// Notifier surfaces sync outcomes as desktop notifications while the watch
// daemon runs. It shells out to notify-send and stays silent when disabled
// or when no notification daemon is around.
type Notifier struct {
	enabled bool
}

func New(enabled bool) *Notifier {
	return &Notifier{enabled: enabled}
}

// EventsUpdated announces a completed sync.
func (n *Notifier) EventsUpdated(count int) error {
	return n.send(
		fmt.Sprintf("%s Calendar updated", nerdfonts.CalendarCheck),
		fmt.Sprintf("%d upcoming events synced", count),
		"low",
	)
}

// SyncFailed announces a terminal non-auth sync failure.
func (n *Notifier) SyncFailed(message string) error {
	return n.send(
		fmt.Sprintf("%s Calendar sync failed", nerdfonts.ExclamationTriangle),
		message,
		"normal",
	)
}

// AuthRequired announces that the session was lost and a login is needed.
func (n *Notifier) AuthRequired() error {
	return n.send(
		fmt.Sprintf("%s Sign-in required", nerdfonts.ExclamationCircle),
		"Run 'chrome-outlook-calendar login' to reconnect your account",
		"critical",
	)
}

func (n *Notifier) send(title, message, urgency string) error {
	if !n.enabled {
		return nil
	}

	cmd := exec.Command("notify-send",
		"--app-name=chrome-outlook-calendar",
		"--urgency="+urgency,
		title,
		message,
	)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to send notification: %w", err)
	}
	return nil
}
