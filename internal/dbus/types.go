package dbus

import (
	"time"

	"github.com/godbus/dbus/v5"

	"github.com/jmylchreest/veil/internal/overlay"
)

// CloseReason represents the reason for closing a notification.
// These values are defined by the freedesktop.org notification specification.
type CloseReason uint32

const (
	// CloseReasonExpired indicates the notification expired (timeout reached).
	CloseReasonExpired CloseReason = 1
	// CloseReasonDismissed indicates the user dismissed the notification.
	CloseReasonDismissed CloseReason = 2
	// CloseReasonClosed indicates the notification was closed via CloseNotification.
	CloseReasonClosed CloseReason = 3
	// CloseReasonUndefined is reserved/undefined by freedesktop.org.
	CloseReasonUndefined CloseReason = 4
)

// String returns the string representation of the close reason.
func (r CloseReason) String() string {
	switch r {
	case CloseReasonExpired:
		return "expired"
	case CloseReasonDismissed:
		return "dismissed"
	case CloseReasonClosed:
		return "closed"
	case CloseReasonUndefined:
		return "undefined"
	default:
		return "unknown"
	}
}

// CloseReasonFor maps an overlay dismissal onto the freedesktop close reasons.
// Anything the user did counts as dismissed.
func CloseReasonFor(r overlay.DismissReason) CloseReason {
	switch r {
	case overlay.ReasonExpired:
		return CloseReasonExpired
	case overlay.ReasonTap, overlay.ReasonDrag, overlay.ReasonAction:
		return CloseReasonDismissed
	case overlay.ReasonProgrammatic:
		return CloseReasonClosed
	}
	return CloseReasonUndefined
}

// Urgency levels from the urgency hint.
const (
	UrgencyLow      = 0
	UrgencyNormal   = 1
	UrgencyCritical = 2
)

// DBusNotification represents an incoming D-Bus Notify call.
// It contains the raw parameters from the org.freedesktop.Notifications.Notify method.
type DBusNotification struct {
	AppName       string
	ReplacesID    uint32
	AppIcon       string
	Summary       string
	Body          string
	Actions       []string // Alternating key, label pairs
	Hints         map[string]dbus.Variant
	ExpireTimeout int32 // -1 = server default, 0 = never expire
}

// Action represents a notification action with key and label.
type Action struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

// ParsedActions converts the D-Bus action array to structured form.
// D-Bus actions are passed as alternating key/label pairs.
func (n *DBusNotification) ParsedActions() []Action {
	actions := make([]Action, 0, len(n.Actions)/2)
	for i := 0; i+1 < len(n.Actions); i += 2 {
		actions = append(actions, Action{
			Key:   n.Actions[i],
			Label: n.Actions[i+1],
		})
	}
	return actions
}

// Urgency extracts the urgency hint from the notification.
// Returns UrgencyNormal if not specified.
func (n *DBusNotification) Urgency() int {
	if v, ok := n.Hints["urgency"]; ok {
		if b, ok := v.Value().(byte); ok {
			return int(b)
		}
	}
	return UrgencyNormal
}

// Timeout interprets expire_timeout. ok is false when the notification
// should stay until closed; a zero duration means the server default.
func (n *DBusNotification) Timeout() (d time.Duration, ok bool) {
	switch {
	case n.ExpireTimeout == 0:
		return 0, false
	case n.ExpireTimeout < 0:
		return 0, true
	}
	return time.Duration(n.ExpireTimeout) * time.Millisecond, true
}

// Text joins summary and body the way a single-line toast shows them.
func (n *DBusNotification) Text() string {
	switch {
	case n.Body == "":
		return n.Summary
	case n.Summary == "":
		return n.Body
	}
	return n.Summary + ": " + n.Body
}

// OverlayInfo is one entry of the List reply, signature (sssx).
type OverlayInfo struct {
	ID      string
	Kind    string
	Title   string
	Created int64 // unix milliseconds
}

// ServerCapabilities lists the capabilities advertised on
// org.freedesktop.Notifications.
var ServerCapabilities = []string{
	"actions", // Alert buttons
	"body",    // Body text
}

// ServerInfo contains information about the notification server.
type ServerInfo struct {
	Name        string // "veild"
	Vendor      string // "veil"
	Version     string // Build version
	SpecVersion string // "1.2"
}

// DefaultServerInfo returns the default server information.
func DefaultServerInfo() ServerInfo {
	return ServerInfo{
		Name:        "veild",
		Vendor:      "veil",
		Version:     "0.0.1", // Will be replaced by build-time version
		SpecVersion: "1.2",
	}
}
