package tui

import (
	"context"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/veil/internal/mainloop"
	"github.com/jmylchreest/veil/internal/overlay"
	"github.com/jmylchreest/veil/internal/popup"
)

func TestFit(t *testing.T) {
	lines := fit("ab\ncdefgh", 4, 3)
	assert.Equal(t, []string{"ab  ", "cdef", "    "}, lines)
}

func TestPaint(t *testing.T) {
	tests := []struct {
		name string
		x, y int
		want []string
	}{
		{"inside", 1, 0, []string{"aXYd", "efgh"}},
		{"clipped left", -1, 1, []string{"abcd", "Yfgh"}},
		{"clipped right", 3, 0, []string{"abcX", "efgh"}},
		{"below screen", 0, 2, []string{"abcd", "efgh"}},
		{"fully off left", -2, 0, []string{"abcd", "efgh"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bg := []string{"abcd", "efgh"}
			paint(bg, []string{"XY"}, 4, tt.x, tt.y)
			assert.Equal(t, tt.want, bg)
		})
	}
}

func TestHost_AttachOrderAndTop(t *testing.T) {
	sched := mainloop.NewManual()
	host := NewHost(40, 12, sched.Now)
	builder := NewBuilder(sched.Now)
	ctrl := overlay.NewController(sched, overlay.WithStrategy(overlay.InstantStrategy{}))
	ctx := context.Background()

	sheet, err := ctrl.Present(ctx, host, overlay.BottomSheetConfig(), builder.Sheet("Sheet", "body"))
	require.NoError(t, err)
	dialog, err := ctrl.Present(ctx, host, overlay.DialogConfig(), builder.Dialog("Dialog", "body"))
	require.NoError(t, err)

	assert.Equal(t, 2, host.Len())
	assert.Same(t, dialog, host.Top())

	dialog.Dismiss(ctx, nil)
	assert.Equal(t, 1, host.Len())
	assert.Same(t, sheet, host.Top())

	assert.Equal(t, 40.0, sheet.Frame().Width, "sheet spans the screen")
}

func TestHost_ComposeDrawsOverBase(t *testing.T) {
	sched := mainloop.NewManual()
	host := NewHost(30, 8, sched.Now)
	builder := NewBuilder(sched.Now)
	ctrl := overlay.NewController(sched, overlay.WithStrategy(overlay.InstantStrategy{}))

	cfg := popup.ToastBaseConfig()
	cfg.AutoDismiss = false
	provider := overlay.ContentFunc(func(*overlay.Overlay) overlay.Surface {
		return builder.BuildToast(popup.ToastConfig{Title: "hello"})
	})
	o, err := ctrl.Present(context.Background(), host, cfg, provider)
	require.NoError(t, err)

	base := strings.Repeat(strings.Repeat(".", 30)+"\n", 8)
	out := strings.Split(host.Compose(base), "\n")
	require.Len(t, out, 8)

	row := int(math.Round(o.Frame().Y))
	assert.Contains(t, out[row], "hello")
	assert.Equal(t, strings.Repeat(".", 30), out[0], "clear background leaves the base alone")
}

func TestHost_ComposeSkipsTransparentSurfaces(t *testing.T) {
	sched := mainloop.NewManual()
	host := NewHost(20, 4, sched.Now)
	builder := NewBuilder(sched.Now)
	ctrl := overlay.NewController(sched, overlay.WithStrategy(overlay.InstantStrategy{}))

	o, err := ctrl.Present(context.Background(), host, overlay.DialogConfig(), builder.Dialog("Faded", ""))
	require.NoError(t, err)
	o.Surface().(overlay.Fader).SetOpacity(0)

	assert.NotContains(t, host.Compose(""), "Faded")
}

func TestBuilder_LoadingSpinnerAdvances(t *testing.T) {
	sched := mainloop.NewManual()
	b := NewBuilder(sched.Now)

	sf := b.BuildToast(popup.ToastConfig{Title: "wait", Icon: popup.IconLoading, Rotate: true})
	r := sf.(Renderer)
	first := strings.Join(r.Render(sched.Now()), "\n")
	second := strings.Join(r.Render(sched.Now().Add(b.spin.FPS)), "\n")
	assert.NotEqual(t, first, second)

	w, h := sf.Frame().Width, sf.Frame().Height
	assert.Greater(t, w, 0.0)
	assert.Greater(t, h, 0.0)
}

func TestBuilder_AlertButtonsRightAligned(t *testing.T) {
	b := NewBuilder(nil)
	var pressed []string
	sf := b.BuildAlert(popup.AlertConfig{
		Title:      "Delete?",
		ShowCancel: true,
		Cancel:     popup.DefaultCancelAction(),
		Confirm:    &popup.AlertAction{Key: popup.KeyConfirm, Title: "Delete"},
	}, func(_ context.Context, a popup.AlertAction) {
		pressed = append(pressed, a.Key)
	})
	ap := sf.(*alertPanel)
	require.Len(t, ap.buttons, 2)

	cancel, confirm := ap.buttons[0].area, ap.buttons[1].area
	assert.Less(t, cancel.MaxX(), confirm.X)
	assert.Equal(t, cancel.Y, confirm.Y)
	// Border and right padding follow the last button.
	assert.Equal(t, sf.Frame().Width-3, confirm.MaxX())

	assert.True(t, ap.HandleTap(context.Background(), overlay.Point{X: cancel.X, Y: cancel.Y}))
	assert.False(t, ap.HandleTap(context.Background(), overlay.Point{X: 0, Y: 0}))
	assert.Equal(t, []string{popup.KeyCancel}, pressed)
}
