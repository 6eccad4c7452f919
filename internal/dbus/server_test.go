package dbus

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/veil/internal/mainloop"
	"github.com/jmylchreest/veil/internal/overlay"
	"github.com/jmylchreest/veil/internal/popup"
)

type screen struct{ attached int }

func (s *screen) Bounds() overlay.Rect { return overlay.Rect{Width: 100, Height: 50} }
func (s *screen) Attach(*overlay.Overlay) { s.attached++ }
func (s *screen) Detach(*overlay.Overlay) { s.attached-- }

type boxes struct{}

func (boxes) BuildToast(popup.ToastConfig) overlay.Surface {
	return overlay.NewBox(overlay.Rect{Width: 20, Height: 3})
}

func (boxes) BuildAlert(popup.AlertConfig, func(context.Context, popup.AlertAction)) overlay.Surface {
	return overlay.NewBox(overlay.Rect{Width: 30, Height: 8})
}

func newTestServer() (*Server, *popup.Presenter, *mainloop.Manual, *screen) {
	sched := mainloop.NewManual()
	host := &screen{}
	ctrl := overlay.NewController(sched,
		overlay.WithStrategy(overlay.InstantStrategy{}),
		overlay.WithClock(sched.Now),
	)
	p := popup.New(ctrl, host, boxes{}, popup.WithQueue(popup.NewLoadingQueue(nil)))
	return NewServer(p, nil), p, sched, host
}

func TestServer_Toast(t *testing.T) {
	s, p, sched, host := newTestServer()

	id, derr := s.Toast("Saved", "success", 500)
	require.Nil(t, derr)
	assert.NotEmpty(t, id)
	assert.Equal(t, 1, host.attached)

	sched.Advance(500 * time.Millisecond)
	assert.Equal(t, 0, host.attached)
	_, ok := p.Lookup(context.Background(), id)
	assert.False(t, ok)
}

func TestServer_ToastErrors(t *testing.T) {
	s, _, _, _ := newTestServer()

	_, derr := s.Toast("Saved", "sparkles", 0)
	require.NotNil(t, derr)
	assert.Equal(t, ErrorInvalidConfiguration, derr.Name)

	_, derr = s.Toast("", "", 0)
	require.NotNil(t, derr)
	assert.Equal(t, ErrorInvalidConfiguration, derr.Name)

	_, derr = s.Loading("Working")
	require.Nil(t, derr)
	_, derr = s.Toast("Saved", "", 0)
	require.NotNil(t, derr)
	assert.Equal(t, ErrorQueueOccupied, derr.Name)
}

func TestServer_LoadingAndHide(t *testing.T) {
	s, _, _, host := newTestServer()

	hidden, derr := s.HideLoading()
	require.Nil(t, derr)
	assert.False(t, hidden)

	_, derr = s.Loading("")
	require.Nil(t, derr)
	_, derr = s.Loading("again")
	require.NotNil(t, derr)
	assert.Equal(t, ErrorQueueOccupied, derr.Name)
	assert.Equal(t, 1, host.attached)

	hidden, derr = s.HideLoading()
	require.Nil(t, derr)
	assert.True(t, hidden)
	assert.Equal(t, 0, host.attached)
}

func TestServer_AlertListDismiss(t *testing.T) {
	s, _, _, host := newTestServer()

	_, derr := s.Alert("", "", "OK", true)
	require.NotNil(t, derr)
	assert.Equal(t, ErrorInvalidConfiguration, derr.Name)

	id, derr := s.Alert("Delete?", "This cannot be undone.", "Delete", false)
	require.Nil(t, derr)

	list, derr := s.List()
	require.Nil(t, derr)
	require.Len(t, list, 1)
	assert.Equal(t, id, list[0].ID)
	assert.Equal(t, popup.KindAlert, list[0].Kind)
	assert.Equal(t, "Delete?", list[0].Title)
	assert.NotZero(t, list[0].Created)

	ok, derr := s.Dismiss(id)
	require.Nil(t, derr)
	assert.True(t, ok)
	ok, _ = s.Dismiss(id)
	assert.False(t, ok, "second dismiss is redundant")
	assert.Equal(t, 0, host.attached)
}

func TestServer_ObserversWithoutBus(t *testing.T) {
	s, p, _, _ := newTestServer()
	require.NoError(t, p.Subscribe(context.Background(), s.OnDismissed, s.OnAction))

	id, derr := s.Toast("Saved", "", 0)
	require.Nil(t, derr)
	ok, _ := s.Dismiss(id)
	assert.True(t, ok, "emission is skipped while unconnected")

	assert.Error(t, s.EmitDismissed(id, overlay.ReasonProgrammatic))
	assert.NoError(t, s.Stop())
}

func TestParseIcon(t *testing.T) {
	for _, name := range []string{"", "success", "fail", "loading"} {
		icon, err := ParseIcon(name)
		require.NoError(t, err)
		assert.Equal(t, popup.Icon(name), icon)
	}
	_, err := ParseIcon("star")
	assert.ErrorIs(t, err, overlay.ErrInvalidConfiguration)
}

func TestErrorRoundTrip(t *testing.T) {
	tests := []struct {
		err  error
		name string
	}{
		{&overlay.Error{Op: "toast", Err: overlay.ErrQueueOccupied}, ErrorQueueOccupied},
		{&overlay.Error{Op: "present", Err: overlay.ErrNoHost}, ErrorNoHost},
		{overlay.ErrInvalidConfiguration, ErrorInvalidConfiguration},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			derr := toDBusError(tt.err)
			assert.Equal(t, tt.name, derr.Name)

			back := fromDBusError("Call", *derr)
			var oe *overlay.Error
			require.True(t, errors.As(back, &oe))
			assert.Equal(t, "Call", oe.Op)
			for _, sentinel := range []error{overlay.ErrQueueOccupied, overlay.ErrNoHost, overlay.ErrInvalidConfiguration} {
				assert.Equal(t, errors.Is(tt.err, sentinel), errors.Is(back, sentinel))
			}
		})
	}

	plain := fromDBusError("Call", dbus.NewError("org.freedesktop.DBus.Error.ServiceUnknown", nil))
	assert.NotErrorIs(t, plain, overlay.ErrNoHost)
	assert.Contains(t, plain.Error(), "Call")
}

func TestOutcome_Apply(t *testing.T) {
	id := "01J0000000000000000000000"
	dismissed := func(r overlay.DismissReason) *dbus.Signal {
		return &dbus.Signal{Name: VeilInterface + ".Dismissed", Body: []any{id, uint32(r)}}
	}
	action := &dbus.Signal{Name: VeilInterface + ".ActionInvoked", Body: []any{id, "confirm"}}

	t.Run("plain dismissal", func(t *testing.T) {
		var o Outcome
		done, err := o.apply(dismissed(overlay.ReasonExpired), id)
		require.NoError(t, err)
		assert.True(t, done)
		assert.Equal(t, overlay.ReasonExpired, o.Reason)
	})

	t.Run("action after dismissal", func(t *testing.T) {
		var o Outcome
		done, _ := o.apply(dismissed(overlay.ReasonAction), id)
		assert.False(t, done, "waits for the action key")
		done, _ = o.apply(action, id)
		assert.True(t, done)
		assert.Equal(t, "confirm", o.Action)
	})

	t.Run("other overlay", func(t *testing.T) {
		var o Outcome
		done, _ := o.apply(dismissed(overlay.ReasonTap), "someone-else")
		assert.False(t, done)
	})

	t.Run("malformed", func(t *testing.T) {
		var o Outcome
		_, err := o.apply(&dbus.Signal{Name: VeilInterface + ".Dismissed", Body: []any{id, "tap"}}, id)
		assert.Error(t, err)
	})
}
