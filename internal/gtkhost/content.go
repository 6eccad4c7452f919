package gtkhost

import (
	"context"

	"github.com/diamondburned/gotk4/pkg/gtk/v4"

	"github.com/jmylchreest/veil/internal/overlay"
	"github.com/jmylchreest/veil/internal/popup"
)

const (
	alertMinWidth = 280
	alertMaxChars = 40
	iconPixelSize = 48
	drawerWidth   = 320
	sheetHeight   = 240
)

// Builder builds popup content out of GTK widgets styled by the theme
// stylesheet.
type Builder struct {
	sched *Scheduler
}

// NewBuilder creates a builder. Button handlers run with sched's owner
// context.
func NewBuilder(sched *Scheduler) *Builder {
	return &Builder{sched: sched}
}

// iconName returns the themed icon for a toast icon, or "" when the icon is
// drawn some other way or not at all.
func iconName(ic popup.Icon) string {
	switch ic {
	case popup.IconSuccess:
		return "object-select-symbolic"
	case popup.IconFail:
		return "dialog-error-symbolic"
	}
	return ""
}

// BuildToast lays out an icon above a message.
func (b *Builder) BuildToast(tc popup.ToastConfig) overlay.Surface {
	box := gtk.NewBox(gtk.OrientationVertical, pixels(tc.Spacing))
	box.AddCSSClass("veil-toast")
	if tc.Region {
		box.AddCSSClass("region")
	}
	box.SetMarginTop(pixels(tc.Insets.Top))
	box.SetMarginBottom(pixels(tc.Insets.Bottom))
	box.SetMarginStart(pixels(tc.Insets.Left))
	box.SetMarginEnd(pixels(tc.Insets.Right))

	switch tc.Icon {
	case popup.IconNone:
	case popup.IconLoading:
		spin := gtk.NewSpinner()
		spin.AddCSSClass("veil-toast-icon")
		spin.SetSizeRequest(iconPixelSize, iconPixelSize)
		spin.SetSpinning(tc.Rotate)
		box.Append(spin)
	default:
		img := gtk.NewImageFromIconName(iconName(tc.Icon))
		img.AddCSSClass("veil-toast-icon")
		img.AddCSSClass(string(tc.Icon))
		img.SetPixelSize(iconPixelSize)
		box.Append(img)
	}

	if tc.Title != "" {
		lbl := gtk.NewLabel(tc.Title)
		lbl.AddCSSClass("veil-toast-title")
		lbl.SetWrap(true)
		lbl.SetMaxWidthChars(alertMaxChars)
		lbl.SetJustify(gtk.JustifyCenter)
		box.Append(lbl)
	}
	return NewWidget(box)
}

// BuildAlert lays out a title, a wrapped message and a right-aligned row of
// buttons.
func (b *Builder) BuildAlert(ac popup.AlertConfig, onAction func(context.Context, popup.AlertAction)) overlay.Surface {
	box := gtk.NewBox(gtk.OrientationVertical, 8)
	box.AddCSSClass("veil-alert")
	box.SetSizeRequest(alertMinWidth, -1)

	if ac.Title != "" {
		title := gtk.NewLabel(ac.Title)
		title.AddCSSClass("veil-alert-title")
		title.SetXAlign(0)
		title.SetWrap(true)
		title.SetMaxWidthChars(alertMaxChars)
		box.Append(title)
	}
	if ac.Subtitle != "" {
		sub := gtk.NewLabel(ac.Subtitle)
		sub.AddCSSClass("veil-alert-subtitle")
		sub.SetXAlign(0)
		sub.SetWrap(true)
		sub.SetMaxWidthChars(alertMaxChars)
		box.Append(sub)
	}

	if actions := ac.Buttons(); len(actions) > 0 {
		row := gtk.NewBox(gtk.OrientationHorizontal, 8)
		row.AddCSSClass("veil-alert-buttons")
		row.SetHAlign(gtk.AlignEnd)
		for _, act := range actions {
			btn := gtk.NewButtonWithLabel(act.Title)
			if act.Key == popup.KeyConfirm {
				btn.AddCSSClass("suggested-action")
			}
			btn.ConnectClicked(func() {
				onAction(b.sched.Context(), act)
			})
			row.Append(btn)
		}
		box.Append(row)
	}
	return NewWidget(box)
}

// Sheet returns content for a bottom sheet spanning the region width.
func (b *Builder) Sheet(title, body string) overlay.ContentProvider {
	return overlay.ContentFunc(func(o *overlay.Overlay) overlay.Surface {
		w := b.panel("veil-sheet", title, body)
		w.Box.SetFrame(overlay.Rect{Width: o.Region().Width, Height: sheetHeight})
		return w
	})
}

// Drawer returns content for a side drawer spanning the region height.
func (b *Builder) Drawer(title, body string) overlay.ContentProvider {
	return overlay.ContentFunc(func(o *overlay.Overlay) overlay.Surface {
		w := b.panel("veil-drawer", title, body)
		w.Box.SetFrame(overlay.Rect{Width: drawerWidth, Height: o.Region().Height})
		return w
	})
}

// Dialog returns content for a centered dialog.
func (b *Builder) Dialog(title, body string) overlay.ContentProvider {
	return overlay.ContentFunc(func(*overlay.Overlay) overlay.Surface {
		return b.panel("veil-dialog", title, body)
	})
}

func (b *Builder) panel(class, title, body string) *Widget {
	box := gtk.NewBox(gtk.OrientationVertical, 12)
	box.AddCSSClass("veil-panel")
	box.AddCSSClass(class)

	t := gtk.NewLabel(title)
	t.AddCSSClass("veil-alert-title")
	t.SetXAlign(0)
	box.Append(t)

	l := gtk.NewLabel(body)
	l.SetXAlign(0)
	l.SetWrap(true)
	l.SetMaxWidthChars(alertMaxChars)
	box.Append(l)
	return NewWidget(box)
}
