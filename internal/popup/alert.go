package popup

import (
	"context"

	"github.com/jmylchreest/veil/internal/overlay"
)

// Keys identifying the built-in alert buttons.
const (
	KeyCancel  = "cancel"
	KeyConfirm = "confirm"
)

// AlertAction is one alert button. Handler runs after the alert starts
// dismissing.
type AlertAction struct {
	Key     string
	Title   string
	Handler func()
}

// DefaultCancelAction is shown when the caller asks for no specific cancel
// button.
func DefaultCancelAction() *AlertAction {
	return &AlertAction{Key: KeyCancel, Title: "Cancel"}
}

// AlertConfig is what a ContentBuilder needs to lay out an alert.
type AlertConfig struct {
	Title            string
	Subtitle         string
	ShowCancel       bool
	Cancel           *AlertAction
	Confirm          *AlertAction
	WithoutAnimation bool
}

// Buttons returns the buttons to draw, cancel first.
func (c AlertConfig) Buttons() []AlertAction {
	var out []AlertAction
	if c.ShowCancel && c.Cancel != nil {
		out = append(out, *c.Cancel)
	}
	if c.Confirm != nil {
		out = append(out, *c.Confirm)
	}
	return out
}

// AlertOption adjusts an alert request.
type AlertOption func(*AlertConfig)

// WithTitle sets the alert title.
func WithTitle(title string) AlertOption {
	return func(c *AlertConfig) { c.Title = title }
}

// WithSubtitle sets the alert message.
func WithSubtitle(sub string) AlertOption {
	return func(c *AlertConfig) { c.Subtitle = sub }
}

// WithCancel replaces the default cancel button.
func WithCancel(title string, handler func()) AlertOption {
	return func(c *AlertConfig) {
		c.ShowCancel = true
		c.Cancel = &AlertAction{Key: KeyCancel, Title: title, Handler: handler}
	}
}

// WithoutCancel removes the cancel button.
func WithoutCancel() AlertOption {
	return func(c *AlertConfig) { c.ShowCancel = false }
}

// WithConfirm adds a confirm button.
func WithConfirm(title string, handler func()) AlertOption {
	return func(c *AlertConfig) {
		c.Confirm = &AlertAction{Key: KeyConfirm, Title: title, Handler: handler}
	}
}

// WithAction adds a confirm-position button with a custom key.
func WithAction(key, title string, handler func()) AlertOption {
	return func(c *AlertConfig) {
		c.Confirm = &AlertAction{Key: key, Title: title, Handler: handler}
	}
}

// AlertWithoutAnimation shows and hides the alert instantly.
func AlertWithoutAnimation() AlertOption {
	return func(c *AlertConfig) { c.WithoutAnimation = true }
}

// ContentBuilder builds the surfaces for toasts and alerts. Hosts supply it.
// Alert surfaces must implement overlay.Interactive and call onAction when a
// button is hit.
type ContentBuilder interface {
	BuildToast(cfg ToastConfig) overlay.Surface
	BuildAlert(cfg AlertConfig, onAction func(ctx context.Context, a AlertAction)) overlay.Surface
}
