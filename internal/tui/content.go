package tui

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/lipgloss"

	"github.com/jmylchreest/veil/internal/overlay"
	"github.com/jmylchreest/veil/internal/popup"
)

// Toast insets are given in points; these convert them to cells.
const (
	pointsPerRow    = 15.0
	pointsPerColumn = 8.0
)

const (
	alertMinWidth = 24
	alertMaxWidth = 48
	drawerWidth   = 32
)

// Styles for the content builder.
var (
	toastStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("236")).
			Foreground(lipgloss.Color("252"))

	alertStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(1, 2)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))

	subtitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	buttonStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")).
			Background(lipgloss.Color("238")).
			Padding(0, 1)

	confirmStyle = buttonStyle.
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("62"))

	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Background(lipgloss.Color("236"))
	failStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Background(lipgloss.Color("236"))
	spinStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("69")).Background(lipgloss.Color("236"))

	fadedStyle = lipgloss.NewStyle().Faint(true)
)

// Builder draws popup content with lipgloss.
type Builder struct {
	now  func() time.Time
	spin spinner.Spinner
}

// NewBuilder creates a content builder. now drives spinner frames and may be
// nil.
func NewBuilder(now func() time.Time) *Builder {
	if now == nil {
		now = time.Now
	}
	return &Builder{now: now, spin: spinner.Dot}
}

// panel is a terminal surface. draw returns the content for a point in time;
// every frame of it has the same size.
type panel struct {
	*overlay.Box
	draw func(now time.Time) string
}

func newPanel(draw func(time.Time) string, now time.Time) *panel {
	s := draw(now)
	w, h := lipgloss.Size(s)
	return &panel{
		Box:  overlay.NewBox(overlay.Rect{Width: float64(w), Height: float64(h)}),
		draw: draw,
	}
}

func (p *panel) Render(now time.Time) []string {
	s := p.draw(now)
	if p.Opacity() < 1 {
		s = fadedStyle.Render(s)
	}
	return strings.Split(s, "\n")
}

// BuildToast lays out an icon above a message.
func (b *Builder) BuildToast(tc popup.ToastConfig) overlay.Surface {
	style := toastStyle.Padding(
		cells(tc.Insets.Top, pointsPerRow),
		cells(tc.Insets.Right, pointsPerColumn),
		cells(tc.Insets.Bottom, pointsPerRow),
		cells(tc.Insets.Left, pointsPerColumn),
	)
	gap := cells(tc.Spacing, pointsPerRow)
	start := b.now()

	draw := func(now time.Time) string {
		var parts []string
		if icon := b.icon(tc, now.Sub(start)); icon != "" {
			parts = append(parts, icon)
			if tc.Title != "" && gap > 0 {
				parts = append(parts, strings.Repeat("\n", gap-1))
			}
		}
		if tc.Title != "" {
			parts = append(parts, tc.Title)
		}
		return style.Render(lipgloss.JoinVertical(lipgloss.Center, parts...))
	}
	return newPanel(draw, start)
}

func (b *Builder) icon(tc popup.ToastConfig, elapsed time.Duration) string {
	switch tc.Icon {
	case popup.IconSuccess:
		return successStyle.Render("✔")
	case popup.IconFail:
		return failStyle.Render("✘")
	case popup.IconLoading:
		frames := b.spin.Frames
		if !tc.Rotate || b.spin.FPS <= 0 {
			return spinStyle.Render(frames[0])
		}
		return spinStyle.Render(frames[int(elapsed/b.spin.FPS)%len(frames)])
	}
	return ""
}

// alertPanel is an alert whose buttons react to taps.
type alertPanel struct {
	*panel
	buttons  []alertButton
	onAction func(context.Context, popup.AlertAction)
}

type alertButton struct {
	action popup.AlertAction
	// hit area relative to the panel origin
	area overlay.Rect
}

// HandleTap presses the button under p, if any.
func (a *alertPanel) HandleTap(ctx context.Context, p overlay.Point) bool {
	f := a.Frame()
	rel := overlay.Point{X: p.X - f.X, Y: p.Y - f.Y}
	for _, btn := range a.buttons {
		if btn.area.Contains(rel) {
			a.onAction(ctx, btn.action)
			return true
		}
	}
	return false
}

// BuildAlert lays out a title, a wrapped message and a right-aligned row of
// buttons.
func (b *Builder) BuildAlert(ac popup.AlertConfig, onAction func(context.Context, popup.AlertAction)) overlay.Surface {
	actions := ac.Buttons()
	rendered := make([]string, len(actions))
	rowW := 0
	for i, act := range actions {
		st := buttonStyle
		if act.Key == popup.KeyConfirm {
			st = confirmStyle
		}
		rendered[i] = st.Render(act.Title)
		if i > 0 {
			rowW += 2
		}
		rowW += lipgloss.Width(rendered[i])
	}

	inner := max(lipgloss.Width(ac.Title), lipgloss.Width(ac.Subtitle), rowW)
	inner = min(max(inner, alertMinWidth), alertMaxWidth)

	var body []string
	if ac.Title != "" {
		body = append(body, titleStyle.Width(inner).Render(ac.Title))
	}
	if ac.Subtitle != "" {
		body = append(body, subtitleStyle.Width(inner).Render(ac.Subtitle))
	}
	top := lipgloss.Height(lipgloss.JoinVertical(lipgloss.Left, body...))
	if len(body) == 0 {
		top = 0
	}
	row := strings.Join(rendered, "  ")
	body = append(body, "", lipgloss.PlaceHorizontal(inner, lipgloss.Right, row))
	content := alertStyle.Render(lipgloss.JoinVertical(lipgloss.Left, body...))

	// Border and padding put the body at column 3, row 2.
	x := 3 + (inner - rowW)
	y := 2 + top + 1
	buttons := make([]alertButton, len(actions))
	for i, act := range actions {
		w := lipgloss.Width(rendered[i])
		buttons[i] = alertButton{
			action: act,
			area:   overlay.Rect{X: float64(x), Y: float64(y), Width: float64(w), Height: 1},
		}
		x += w + 2
	}

	return &alertPanel{
		panel:    newPanel(func(time.Time) string { return content }, b.now()),
		buttons:  buttons,
		onAction: onAction,
	}
}

// Sheet returns content for a bottom sheet spanning the region width.
func (b *Builder) Sheet(title, body string) overlay.ContentProvider {
	return overlay.ContentFunc(func(o *overlay.Overlay) overlay.Surface {
		w := int(o.Region().Width) - panelStyle.GetHorizontalBorderSize()
		return b.static(title, body, max(w, 1), 0)
	})
}

// Drawer returns content for a side drawer spanning the region height.
func (b *Builder) Drawer(title, body string) overlay.ContentProvider {
	return overlay.ContentFunc(func(o *overlay.Overlay) overlay.Surface {
		h := int(o.Region().Height) - panelStyle.GetVerticalBorderSize()
		return b.static(title, body, drawerWidth, max(h, 1))
	})
}

// Dialog returns content for a centered dialog.
func (b *Builder) Dialog(title, body string) overlay.ContentProvider {
	return overlay.ContentFunc(func(*overlay.Overlay) overlay.Surface {
		return b.static(title, body, alertMaxWidth, 0)
	})
}

func (b *Builder) static(title, body string, width, height int) *panel {
	st := panelStyle.Width(width)
	if height > 0 {
		st = st.Height(height)
	}
	content := st.Render(lipgloss.JoinVertical(lipgloss.Left, titleStyle.Render(title), "", body))
	return newPanel(func(time.Time) string { return content }, b.now())
}

func cells(points, per float64) int {
	return int(math.Round(points / per))
}
