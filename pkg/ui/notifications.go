package ui

import (
	"fmt"
	"os/exec"
	"runtime"
	"strings"

	"twharvest/pkg/config"
)

// NotificationSender interface for platform-specific notification implementations
type NotificationSender interface {
	Send(title, message string) error
}

// LinuxNotificationSender sends notifications on Linux using notify-send
type LinuxNotificationSender struct{}

func (l *LinuxNotificationSender) Send(title, message string) error {
	cmd := exec.Command("notify-send", title, message)
	return cmd.Run()
}

// MacOSNotificationSender sends notifications on macOS using osascript
type MacOSNotificationSender struct{}

func (m *MacOSNotificationSender) Send(title, message string) error {
	script := fmt.Sprintf(`display notification %q with title %q`, message, title)
	cmd := exec.Command("osascript", "-e", script)
	return cmd.Run()
}

// WindowsNotificationSender sends notifications on Windows using PowerShell
type WindowsNotificationSender struct{}

func (w *WindowsNotificationSender) Send(title, message string) error {
	script := fmt.Sprintf(`
		[Windows.UI.Notifications.ToastNotificationManager, Windows.UI.Notifications, ContentType = WindowsRuntime] | Out-Null
		[Windows.Data.Xml.Dom.XmlDocument, Windows.Data.Xml.Dom.XmlDocument, ContentType = WindowsRuntime] | Out-Null
		$xml = @"
<toast>
	<visual>
		<binding template="ToastText02">
			<text id="1">%s</text>
			<text id="2">%s</text>
		</binding>
	</visual>
</toast>
"@
		$doc = [Windows.Data.Xml.Dom.XmlDocument]::new()
		$doc.LoadXml($xml)
		$toast = [Windows.UI.Notifications.ToastNotification]::new($doc)
		[Windows.UI.Notifications.ToastNotificationManager]::CreateToastNotifier("twharvest").Show($toast)
	`, title, message)

	cmd := exec.Command("powershell", "-NoProfile", "-NonInteractive", "-Command", script)
	return cmd.Run()
}

// platformSender picks the desktop sender for the current OS, or nil
func platformSender() NotificationSender {
	switch runtime.GOOS {
	case "linux":
		return &LinuxNotificationSender{}
	case "darwin":
		return &MacOSNotificationSender{}
	case "windows":
		return &WindowsNotificationSender{}
	}
	return nil
}

// Notifier sends run notifications according to the notification config
type Notifier struct {
	sender NotificationSender
	cfg    config.NotificationConfig
}

// NewNotifier creates a Notifier. Desktop notifications are only sent when
// the configured type is "desktop".
func NewNotifier(cfg config.NotificationConfig) *Notifier {
	n := &Notifier{cfg: cfg}
	if strings.EqualFold(cfg.NotificationType, "desktop") {
		n.sender = platformSender()
	}
	return n
}

// NewNotifierWithSender creates a Notifier with an explicit sender
func NewNotifierWithSender(cfg config.NotificationConfig, sender NotificationSender) *Notifier {
	return &Notifier{cfg: cfg, sender: sender}
}

func (n *Notifier) active() bool {
	return n != nil && n.cfg.Enabled && !strings.EqualFold(n.cfg.NotificationType, "none")
}

// NotifyComplete announces a finished harvest
func (n *Notifier) NotifyComplete(title, message string) {
	if n.active() && n.cfg.OnComplete {
		n.send(Green, title, message)
	}
}

// NotifyRateLimit announces a wait for a quota reset
func (n *Notifier) NotifyRateLimit(title, message string) {
	if n.active() && n.cfg.OnRateLimit {
		n.send(Yellow, title, message)
	}
}

// NotifyError announces a failure
func (n *Notifier) NotifyError(title, message string) {
	if n.active() {
		n.send(Red, title, message)
	}
}

func (n *Notifier) send(color func(string) string, title, message string) {
	// Always print to console
	Printf("\n%s: %s\n", color(title), message)

	// Send desktop notification if supported
	if n.sender != nil {
		// Ignore errors as notifications are not critical
		_ = n.sender.Send(title, message)
	}
}
