package popup

import (
	"time"

	"github.com/jmylchreest/veil/internal/overlay"
)

// Icon names the glyph shown in a toast.
type Icon string

const (
	IconNone    Icon = ""
	IconSuccess Icon = "success"
	IconFail    Icon = "fail"
	IconLoading Icon = "loading"
)

// Insets is padding around toast content.
type Insets struct {
	Top, Left, Bottom, Right float64
}

// Uniform returns equal insets on every side.
func Uniform(v float64) Insets { return Insets{v, v, v, v} }

// DefaultToastInsets is the padding used unless a toast overrides it.
var DefaultToastInsets = Insets{Top: 12, Left: 25, Bottom: 12, Right: 25}

// ToastConfig is what a ContentBuilder needs to lay out a toast.
type ToastConfig struct {
	Title   string
	Icon    Icon
	Rotate  bool // spin the icon, used by loading
	Insets  Insets
	Spacing float64
	Region  bool // shown in the dynamic region
}

// DefaultToastConfig returns the toast layout defaults.
func DefaultToastConfig() ToastConfig {
	return ToastConfig{Insets: DefaultToastInsets, Spacing: 5}
}

// ToastOption adjusts a toast request.
type ToastOption func(*toastRequest)

type toastRequest struct {
	cfg   overlay.Config
	toast ToastConfig
	host  overlay.Host
	kind  string
}

// ToastBaseConfig is the overlay configuration toasts start from: a dialog
// on a clear background that lets input through, cannot be tapped away and
// closes itself.
func ToastBaseConfig() overlay.Config {
	cfg := overlay.DialogConfig()
	cfg.Background = overlay.Clear
	cfg.UserInteraction = false
	cfg.AutoDismiss = true
	cfg.Dismissible = false
	return cfg
}

// WithIcon sets the toast icon.
func WithIcon(icon Icon) ToastOption {
	return func(r *toastRequest) { r.toast.Icon = icon }
}

// WithRotation spins the icon while the toast is visible.
func WithRotation(enable bool) ToastOption {
	return func(r *toastRequest) { r.toast.Rotate = enable }
}

// WithDelay sets how long the toast stays up.
func WithDelay(d time.Duration) ToastOption {
	return func(r *toastRequest) { r.cfg.AutoDismissDelay = d }
}

// WithAutoDismiss toggles auto-dismiss. A toast without it holds the loading
// slot until HideLoading or another dismissal.
func WithAutoDismiss(enable bool) ToastOption {
	return func(r *toastRequest) { r.cfg.AutoDismiss = enable }
}

// WithPosition places the toast.
func WithPosition(pos overlay.ToastPosition) ToastOption {
	return func(r *toastRequest) {
		r.cfg.ToastPosition = pos
		r.toast.Region = pos == overlay.ToastDynamicRegion
	}
}

// WithHost shows the toast in host instead of the presenter's default host.
func WithHost(h overlay.Host) ToastOption {
	return func(r *toastRequest) { r.host = h }
}

// WithInsets overrides content padding.
func WithInsets(in Insets) ToastOption {
	return func(r *toastRequest) { r.toast.Insets = in }
}

// WithSpacing sets the gap between icon and title.
func WithSpacing(s float64) ToastOption {
	return func(r *toastRequest) { r.toast.Spacing = s }
}

// WithInteraction blocks input to the content underneath while shown.
func WithInteraction(enable bool) ToastOption {
	return func(r *toastRequest) { r.cfg.UserInteraction = enable }
}

// WithBackground sets the tint behind the toast.
func WithBackground(c overlay.Color) ToastOption {
	return func(r *toastRequest) { r.cfg.Background = c }
}

// WithoutAnimation shows and hides the toast instantly.
func WithoutAnimation() ToastOption {
	return func(r *toastRequest) { r.cfg.WithoutAnimation = true }
}

func loadingOptions(message string) []ToastOption {
	opts := []ToastOption{
		WithAutoDismiss(false),
		WithIcon(IconLoading),
		WithRotation(true),
		WithSpacing(15),
		WithInteraction(true),
	}
	if message != "" {
		opts = append(opts, WithInsets(Insets{Top: 30, Left: 47, Bottom: 30, Right: 47}))
	} else {
		opts = append(opts, WithInsets(Uniform(35)))
	}
	return opts
}
