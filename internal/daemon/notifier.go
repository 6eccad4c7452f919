package daemon

import (
	"log/slog"
	"sync"
	"time"

	godbus "github.com/godbus/dbus/v5"

	"github.com/jmylchreest/veil/internal/dbus"
)

// NotificationLevel indicates the severity of an internal notice.
type NotificationLevel int

const (
	// NotificationLevelInfo is for informational messages (low urgency).
	NotificationLevelInfo NotificationLevel = iota
	// NotificationLevelWarning is for warning messages (normal urgency).
	NotificationLevelWarning
	// NotificationLevelError is for error messages (critical urgency).
	NotificationLevelError
)

// DefaultNoticeInterval is the minimum time between two notices with the
// same key.
const DefaultNoticeInterval = 5 * time.Second

// InternalNotifier tells the user about veild's own events, such as a config
// reload, through the normal notification path. Repeats are rate limited.
type InternalNotifier struct {
	mu     sync.Mutex
	logger *slog.Logger
	now    func() time.Time

	notifyHandler func(n *dbus.DBusNotification) (uint32, error)

	lastNotifyTime map[string]time.Time
	minInterval    time.Duration

	enabled bool
}

// NewInternalNotifier creates a new InternalNotifier.
func NewInternalNotifier(logger *slog.Logger) *InternalNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &InternalNotifier{
		logger:         logger.With("component", "notifier"),
		now:            time.Now,
		lastNotifyTime: make(map[string]time.Time),
		minInterval:    DefaultNoticeInterval,
		enabled:        true,
	}
}

// SetNotifyHandler sets the function that shows a notice, usually
// NotificationServer.NotifyInternal.
func (n *InternalNotifier) SetNotifyHandler(handler func(n *dbus.DBusNotification) (uint32, error)) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notifyHandler = handler
}

// SetEnabled enables or disables internal notices.
func (n *InternalNotifier) SetEnabled(enabled bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.enabled = enabled
}

// SetMinInterval sets the minimum interval between duplicate notices.
func (n *InternalNotifier) SetMinInterval(interval time.Duration) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.minInterval = interval
}

// Notify shows a notice unless one with the same key was shown within the
// minimum interval. It reports whether the notice was shown.
func (n *InternalNotifier) Notify(key, summary, body string, level NotificationLevel) bool {
	n.mu.Lock()
	if !n.enabled {
		n.mu.Unlock()
		return false
	}
	handler := n.notifyHandler
	if handler == nil {
		n.mu.Unlock()
		n.logger.Debug("internal notice skipped: no handler", "summary", summary)
		return false
	}
	now := n.now()
	if last, ok := n.lastNotifyTime[key]; ok && now.Sub(last) < n.minInterval {
		n.mu.Unlock()
		n.logger.Debug("internal notice rate-limited", "key", key)
		return false
	}
	n.lastNotifyTime[key] = now
	n.mu.Unlock()

	urgency := byte(dbus.UrgencyNormal)
	icon := "dialog-warning"
	switch level {
	case NotificationLevelInfo:
		urgency, icon = dbus.UrgencyLow, "dialog-information"
	case NotificationLevelError:
		urgency, icon = dbus.UrgencyCritical, "dialog-error"
	}

	notification := &dbus.DBusNotification{
		AppName: "veild",
		AppIcon: icon,
		Summary: summary,
		Body:    body,
		Hints: map[string]godbus.Variant{
			"urgency":       godbus.MakeVariant(urgency),
			"transient":     godbus.MakeVariant(true),
			"desktop-entry": godbus.MakeVariant("veild"),
		},
		ExpireTimeout: 5000,
	}

	// Called without the lock: the handler may block on the owner loop.
	if _, err := handler(notification); err != nil {
		n.logger.Debug("internal notice not shown", "key", key, "error", err)
		return false
	}
	n.logger.Debug("internal notice shown", "key", key, "level", level)
	return true
}

// NotifyStartup announces that the daemon is running.
func (n *InternalNotifier) NotifyStartup(version string) bool {
	return n.Notify("startup", "veild started", "Overlay daemon v"+version+" is running.", NotificationLevelInfo)
}

// NotifyConfigReloaded announces a successful config reload.
func (n *InternalNotifier) NotifyConfigReloaded() bool {
	return n.Notify("config-reload", "Configuration reloaded", "", NotificationLevelInfo)
}

// NotifyConfigError reports a config file that was rejected.
func (n *InternalNotifier) NotifyConfigError(err error) bool {
	return n.Notify("config-error", "Configuration error", err.Error(), NotificationLevelWarning)
}

// NotifyThemeError reports a stylesheet that could not be loaded.
func (n *InternalNotifier) NotifyThemeError(err error) bool {
	return n.Notify("theme-error", "Theme error", err.Error(), NotificationLevelWarning)
}

// NotifyAudioError reports a sound that failed to play.
func (n *InternalNotifier) NotifyAudioError(err error) bool {
	return n.Notify("audio-error", "Audio error", err.Error(), NotificationLevelWarning)
}
