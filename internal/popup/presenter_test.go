package popup

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/veil/internal/mainloop"
	"github.com/jmylchreest/veil/internal/overlay"
)

type testHost struct {
	children map[*overlay.Overlay]bool
	attached int
	detached int
}

func newTestHost() *testHost {
	return &testHost{children: make(map[*overlay.Overlay]bool)}
}

func (h *testHost) Bounds() overlay.Rect { return overlay.Rect{Width: 80, Height: 24} }

func (h *testHost) Attach(o *overlay.Overlay) {
	h.attached++
	h.children[o] = true
}

func (h *testHost) Detach(o *overlay.Overlay) {
	h.detached++
	delete(h.children, o)
}

type alertSurface struct {
	*overlay.Box
	cfg      AlertConfig
	onAction func(ctx context.Context, a AlertAction)
}

type testBuilder struct {
	toasts []ToastConfig
	alerts []*alertSurface
}

func (b *testBuilder) BuildToast(cfg ToastConfig) overlay.Surface {
	b.toasts = append(b.toasts, cfg)
	return overlay.NewBox(overlay.Rect{Width: 20, Height: 3})
}

func (b *testBuilder) BuildAlert(cfg AlertConfig, onAction func(ctx context.Context, a AlertAction)) overlay.Surface {
	s := &alertSurface{Box: overlay.NewBox(overlay.Rect{Width: 30, Height: 7}), cfg: cfg, onAction: onAction}
	b.alerts = append(b.alerts, s)
	return s
}

type countingAnnouncer struct{ kinds []string }

func (a *countingAnnouncer) Announce(kind string) { a.kinds = append(a.kinds, kind) }

type fixture struct {
	sched   *mainloop.Manual
	host    *testHost
	builder *testBuilder
	queue   *LoadingQueue
	p       *Presenter
}

func newFixture(opts ...Option) *fixture {
	sched := mainloop.NewManual()
	f := &fixture{
		sched:   sched,
		host:    newTestHost(),
		builder: &testBuilder{},
		queue:   NewLoadingQueue(nil),
	}
	ctrl := overlay.NewController(sched, overlay.WithStrategy(overlay.InstantStrategy{}))
	f.p = New(ctrl, f.host, f.builder, append([]Option{WithQueue(f.queue)}, opts...)...)
	return f
}

func TestLoading_SecondRequestRejected(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	first, err := f.p.Loading(ctx, "Saving", nil)
	require.NoError(t, err)
	require.NotNil(t, first)
	assert.Equal(t, 1, f.queue.Len())

	second, err := f.p.Loading(ctx, "Saving again", nil)
	assert.ErrorIs(t, err, overlay.ErrQueueOccupied)
	assert.Nil(t, second)
	assert.Equal(t, 1, f.queue.Len())
	assert.Len(t, f.host.children, 1, "no overlay is built for the rejected request")
	assert.Len(t, f.builder.toasts, 1)
}

func TestLoading_Options(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	o, err := f.p.Loading(ctx, "Working", nil)
	require.NoError(t, err)
	cfg := o.Config()
	assert.False(t, cfg.AutoDismiss)
	assert.True(t, cfg.UserInteraction)
	assert.False(t, cfg.Dismissible)
	assert.Equal(t, KindLoading, o.Kind())

	tc := f.builder.toasts[0]
	assert.Equal(t, IconLoading, tc.Icon)
	assert.True(t, tc.Rotate)
	assert.Equal(t, 15.0, tc.Spacing)
	assert.Equal(t, Insets{Top: 30, Left: 47, Bottom: 30, Right: 47}, tc.Insets)

	require.True(t, f.p.HideLoading(ctx))
	_, err = f.p.Loading(ctx, "", nil)
	require.NoError(t, err)
	assert.Equal(t, Uniform(35), f.builder.toasts[1].Insets)
}

func TestLoading_ExplicitHost(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	other := newTestHost()

	o, err := f.p.Loading(ctx, "", other)
	require.NoError(t, err)
	assert.Same(t, other, o.Host())
	f.p.HideLoading(ctx)

	f.p.defaults.ToastPosition = overlay.ToastDynamicRegion
	o, err = f.p.Loading(ctx, "", other)
	require.NoError(t, err)
	assert.Same(t, f.host, o.Host(), "dynamic region ignores the explicit host")
}

func TestToast_HostAndPosition(t *testing.T) {
	ctx := context.Background()

	t.Run("explicit host", func(t *testing.T) {
		f := newFixture()
		other := newTestHost()
		o, err := f.p.Toast(ctx, "Moved", WithHost(other), WithPosition(overlay.ToastTop))
		require.NoError(t, err)
		assert.Same(t, other, o.Host())
		assert.Equal(t, overlay.ToastTop, o.Config().ToastPosition)
		assert.False(t, f.builder.toasts[0].Region)
		assert.Empty(t, f.host.children)
	})

	t.Run("dynamic region ignores the explicit host", func(t *testing.T) {
		f := newFixture()
		other := newTestHost()
		o, err := f.p.Toast(ctx, "Island", WithHost(other), WithPosition(overlay.ToastDynamicRegion))
		require.NoError(t, err)
		assert.Same(t, f.host, o.Host())
		assert.Equal(t, overlay.ToastDynamicRegion, o.Config().ToastPosition)
		assert.True(t, f.builder.toasts[0].Region)
		assert.Zero(t, other.attached)
	})

	t.Run("option order does not matter", func(t *testing.T) {
		f := newFixture()
		o, err := f.p.Toast(ctx, "Island", WithPosition(overlay.ToastDynamicRegion), WithHost(newTestHost()))
		require.NoError(t, err)
		assert.Same(t, f.host, o.Host())
	})
}

func TestToast_Background(t *testing.T) {
	f := newFixture()
	tint := overlay.Color{R: 0.2, G: 0.2, B: 0.2, A: 0.5}

	o, err := f.p.Toast(context.Background(), "Tinted", WithBackground(tint))
	require.NoError(t, err)
	assert.Equal(t, tint, o.Config().Background)
	assert.False(t, o.Config().UserInteraction)
}

// newSpringFixture presents with the default animated strategy.
func newSpringFixture(opts ...Option) *fixture {
	sched := mainloop.NewManual()
	f := &fixture{
		sched:   sched,
		host:    newTestHost(),
		builder: &testBuilder{},
		queue:   NewLoadingQueue(nil),
	}
	ctrl := overlay.NewController(sched)
	f.p = New(ctrl, f.host, f.builder, append([]Option{WithQueue(f.queue)}, opts...)...)
	return f
}

func TestWithoutAnimation(t *testing.T) {
	ctx := context.Background()

	t.Run("toast animates by default", func(t *testing.T) {
		f := newSpringFixture()
		o, err := f.p.Toast(ctx, "Saved", WithAutoDismiss(false))
		require.NoError(t, err)
		assert.Equal(t, overlay.StatePresenting, o.State())
		f.sched.Advance(5 * time.Second)
		assert.Equal(t, overlay.StatePresented, o.State())
	})

	t.Run("toast", func(t *testing.T) {
		f := newSpringFixture()
		o, err := f.p.Toast(ctx, "Saved", WithoutAnimation(), WithAutoDismiss(false))
		require.NoError(t, err)
		assert.Equal(t, overlay.StatePresented, o.State())

		require.True(t, f.p.HideLoading(ctx))
		assert.Equal(t, overlay.StateDismissed, o.State())
		assert.Empty(t, f.host.children)
	})

	t.Run("alert", func(t *testing.T) {
		f := newSpringFixture()
		o, err := f.p.Alert(ctx, WithTitle("Quit?"), AlertWithoutAnimation())
		require.NoError(t, err)
		assert.True(t, o.Config().WithoutAnimation)
		assert.Equal(t, overlay.StatePresented, o.State())

		s := f.builder.alerts[0]
		s.onAction(ctx, s.cfg.Buttons()[0])
		assert.Equal(t, overlay.StateDismissed, o.State())
	})

	t.Run("from defaults", func(t *testing.T) {
		d := DefaultDefaults()
		d.WithoutAnimation = true
		f := newSpringFixture(WithDefaults(d))

		toast, err := f.p.Toast(ctx, "Saved")
		require.NoError(t, err)
		assert.Equal(t, overlay.StatePresented, toast.State())
		require.True(t, f.p.Dismiss(ctx, toast.ID()))
		assert.Equal(t, overlay.StateDismissed, toast.State())

		alert, err := f.p.Alert(ctx, WithTitle("Quit?"))
		require.NoError(t, err)
		assert.Equal(t, overlay.StatePresented, alert.State())
	})
}

func TestHideLoading(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	assert.False(t, f.p.HideLoading(ctx), "empty queue is a no-op")
	assert.Zero(t, f.host.detached)

	o, err := f.p.Loading(ctx, "", nil)
	require.NoError(t, err)
	assert.True(t, f.p.HideLoading(ctx))
	assert.Equal(t, overlay.StateDismissed, o.State())
	assert.False(t, f.queue.Occupied())
	assert.Empty(t, f.host.children)

	assert.False(t, f.p.HideLoading(ctx))
	assert.Equal(t, 1, f.host.detached)
}

func TestLoading_SlotReleasedByOtherDismissal(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	o, err := f.p.Loading(ctx, "", nil)
	require.NoError(t, err)
	assert.True(t, f.p.Dismiss(ctx, o.ID()))
	assert.False(t, f.queue.Occupied())

	_, err = f.p.Loading(ctx, "", nil)
	assert.NoError(t, err)
}

func TestToast(t *testing.T) {
	ctx := context.Background()

	t.Run("needs title or icon", func(t *testing.T) {
		f := newFixture()
		_, err := f.p.Toast(ctx, "")
		assert.ErrorIs(t, err, overlay.ErrInvalidConfiguration)
		assert.Empty(t, f.host.children)

		_, err = f.p.Toast(ctx, "", WithIcon(IconSuccess))
		assert.NoError(t, err)
	})

	t.Run("auto dismisses and is not queued", func(t *testing.T) {
		f := newFixture()
		o, err := f.p.Toast(ctx, "Saved", WithDelay(time.Second))
		require.NoError(t, err)
		cfg := o.Config()
		assert.True(t, cfg.AutoDismiss)
		assert.False(t, cfg.Dismissible)
		assert.False(t, cfg.UserInteraction)
		assert.Equal(t, overlay.Clear, cfg.Background)
		assert.False(t, f.queue.Occupied())

		f.sched.Advance(time.Second)
		assert.Equal(t, overlay.StateDismissed, o.State())
		assert.Equal(t, overlay.ReasonExpired, o.Reason())
	})

	t.Run("refused while loading", func(t *testing.T) {
		f := newFixture()
		_, err := f.p.Loading(ctx, "", nil)
		require.NoError(t, err)
		_, err = f.p.Toast(ctx, "Saved")
		assert.ErrorIs(t, err, overlay.ErrQueueOccupied)
	})

	t.Run("manual toast holds the slot", func(t *testing.T) {
		f := newFixture()
		_, err := f.p.Toast(ctx, "Pinned", WithAutoDismiss(false))
		require.NoError(t, err)
		assert.True(t, f.queue.Occupied())
		assert.True(t, f.p.HideLoading(ctx))
	})

	t.Run("no host", func(t *testing.T) {
		sched := mainloop.NewManual()
		ctrl := overlay.NewController(sched, overlay.WithStrategy(overlay.InstantStrategy{}))
		p := New(ctrl, nil, &testBuilder{}, WithQueue(NewLoadingQueue(nil)))
		_, err := p.Toast(ctx, "Hello")
		assert.ErrorIs(t, err, overlay.ErrNoHost)
	})
}

func TestAlert_TitleAndConfirmOnly(t *testing.T) {
	var dismissals, confirms int
	f := newFixture(OnDismissed(func(*overlay.Overlay, overlay.DismissReason) { dismissals++ }))
	ctx := context.Background()

	o, err := f.p.Alert(ctx, WithTitle("Delete?"), WithConfirm("Delete", func() { confirms++ }))
	require.NoError(t, err)
	require.Len(t, f.builder.alerts, 1)

	s := f.builder.alerts[0]
	buttons := s.cfg.Buttons()
	require.Len(t, buttons, 2, "default cancel is shown")
	assert.Equal(t, KeyCancel, buttons[0].Key)
	assert.Equal(t, KeyConfirm, buttons[1].Key)

	cfg := o.Config()
	assert.False(t, cfg.Dismissible)
	assert.False(t, cfg.AutoDismiss)
	assert.True(t, cfg.UserInteraction)

	s.onAction(ctx, buttons[1])
	s.onAction(ctx, buttons[1])
	assert.Equal(t, 1, dismissals)
	assert.Equal(t, 1, confirms)
	assert.Equal(t, overlay.ReasonAction, o.Reason())
	assert.Empty(t, f.host.children)
}

func TestAlert_Validation(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.p.Alert(ctx, WithConfirm("OK", nil))
	assert.ErrorIs(t, err, overlay.ErrInvalidConfiguration)

	_, err = f.p.Alert(ctx, WithSubtitle("Only a subtitle"), WithoutCancel())
	require.NoError(t, err)
	assert.Empty(t, f.builder.alerts[0].cfg.Buttons())
}

func TestAlert_ActionObserverAndBackgroundTap(t *testing.T) {
	var pressed []string
	f := newFixture(OnAction(func(_ *overlay.Overlay, a AlertAction) { pressed = append(pressed, a.Key) }))
	ctx := context.Background()

	o, err := f.p.Alert(ctx, WithTitle("Quit?"), WithCancel("Stay", nil))
	require.NoError(t, err)

	o.HandleTap(ctx, overlay.Point{X: 0, Y: 0})
	assert.Equal(t, overlay.StatePresented, o.State(), "alerts are not dismissible from the background")

	s := f.builder.alerts[0]
	s.onAction(ctx, s.cfg.Buttons()[0])
	assert.Equal(t, []string{KeyCancel}, pressed)
}

func TestPresenter_ActiveAndDismiss(t *testing.T) {
	ann := &countingAnnouncer{}
	f := newFixture(WithAnnouncer(ann))
	ctx := context.Background()

	sheet, err := f.p.Present(ctx, nil, overlay.BottomSheetConfig(), overlay.Static(overlay.NewBox(overlay.Rect{Width: 80, Height: 8})))
	require.NoError(t, err)
	_, err = f.p.Toast(ctx, "Hi", WithAutoDismiss(false))
	require.NoError(t, err)

	infos := f.p.Active(ctx)
	require.Len(t, infos, 2)
	assert.ElementsMatch(t, []string{KindCustom, KindToast}, []string{infos[0].Kind, infos[1].Kind})
	assert.Equal(t, []string{KindCustom, KindToast}, ann.kinds)

	got, ok := f.p.Lookup(ctx, sheet.ID())
	require.True(t, ok)
	assert.Same(t, sheet, got)

	assert.True(t, f.p.Dismiss(ctx, sheet.ID()))
	assert.False(t, f.p.Dismiss(ctx, sheet.ID()))
	assert.False(t, f.p.Dismiss(ctx, "missing"))
	_, ok = f.p.Lookup(ctx, sheet.ID())
	assert.False(t, ok)

	assert.Equal(t, 1, f.p.DismissAll(ctx))
	assert.Empty(t, f.p.Active(ctx))
	assert.False(t, f.queue.Occupied())
	assert.Equal(t, f.host.attached, f.host.detached)
}

func TestDefaultLoadingQueueIsShared(t *testing.T) {
	assert.Same(t, DefaultLoadingQueue(), DefaultLoadingQueue())
}

func TestLoadingQueue(t *testing.T) {
	q := NewLoadingQueue(nil)
	assert.Nil(t, q.DequeueFirst())
	assert.False(t, q.DequeueAndDismissFirst(context.Background()))

	a := &LoadingEntry{}
	assert.True(t, q.Enqueue(a))
	assert.False(t, q.Enqueue(&LoadingEntry{}))
	assert.Same(t, a, q.First())
	assert.True(t, q.DequeueAndDismissFirst(context.Background()))
	assert.Zero(t, q.Len())
}

func TestPresenter_SubscribeAfterConstruction(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	var reasons []overlay.DismissReason
	require.NoError(t, f.p.Subscribe(ctx, func(_ *overlay.Overlay, r overlay.DismissReason) {
		reasons = append(reasons, r)
	}, nil))

	o, err := f.p.Toast(ctx, "Saved")
	require.NoError(t, err)
	f.sched.Advance(overlay.DefaultAutoDismissDelay)

	assert.Equal(t, overlay.StateDismissed, o.State())
	assert.Equal(t, []overlay.DismissReason{overlay.ReasonExpired}, reasons)
}
