package overlay

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func drag(b *Bridge, cfg Config, frame Rect, samples ...DragSample) (Outcome, Rect) {
	var out Outcome
	for _, s := range samples {
		out = b.Handle(cfg, s, frame)
		if out.Action == ActionFollow || out.Action == ActionCommit || out.Action == ActionSnapBack {
			frame = out.Frame
		}
	}
	return out, frame
}

func at(phase DragPhase, x, y float64) DragSample {
	return DragSample{Phase: phase, Location: Point{X: x, Y: y}}
}

func TestBridge_LeftDrawerClamp(t *testing.T) {
	cfg := DrawerConfig(DirectionLeft)
	rest := Rect{X: 0, Y: 0, Width: 100, Height: 200}

	tests := []struct {
		name  string
		moveX float64
		wantX float64
	}{
		{"toward closed edge follows", 20, -30},
		{"past rest is clamped", 80, 0},
		{"far past rest is clamped", 400, 0},
		{"exactly at rest", 50, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var b Bridge
			out, _ := drag(&b, cfg, rest, at(DragBegan, 50, 100), at(DragChanged, tt.moveX, 100))
			require.Equal(t, ActionFollow, out.Action)
			assert.Equal(t, tt.wantX, out.Frame.X)
			assert.LessOrEqual(t, out.Frame.X, rest.X)
			assert.Equal(t, rest.Y, out.Frame.Y)
		})
	}
}

func TestBridge_RightDrawerClamp(t *testing.T) {
	cfg := DrawerConfig(DirectionRight)
	rest := Rect{X: 300, Y: 0, Width: 100, Height: 200}

	tests := []struct {
		name  string
		moveX float64
		wantX float64
	}{
		{"toward closed edge follows", 380, 330},
		{"past rest is clamped", 320, 300},
		{"far past rest is clamped", -100, 300},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var b Bridge
			out, _ := drag(&b, cfg, rest, at(DragBegan, 350, 100), at(DragChanged, tt.moveX, 100))
			require.Equal(t, ActionFollow, out.Action)
			assert.Equal(t, tt.wantX, out.Frame.X)
			assert.GreaterOrEqual(t, out.Frame.X, rest.X)
		})
	}
}

func TestBridge_BottomSheetClamp(t *testing.T) {
	cfg := BottomSheetConfig()
	rest := Rect{X: 0, Y: 300, Width: 400, Height: 100}

	var b Bridge
	out, _ := drag(&b, cfg, rest, at(DragBegan, 200, 350), at(DragChanged, 260, 320))
	require.Equal(t, ActionFollow, out.Action)
	assert.Equal(t, rest.Y, out.Frame.Y, "sheet must not rise above rest")
	assert.Equal(t, rest.X, out.Frame.X, "sheet never moves sideways")

	out = b.Handle(cfg, at(DragChanged, 200, 400), out.Frame)
	assert.Equal(t, 350.0, out.Frame.Y)
}

func TestBridge_CommitDependsOnVelocitySignOnly(t *testing.T) {
	tests := []struct {
		name     string
		cfg      Config
		rest     Rect
		begin    Point
		end      Point
		velocity Point
		want     Action
	}{
		{
			name: "left drawer far drag released still cancels",
			cfg:  DrawerConfig(DirectionLeft), rest: Rect{Width: 100, Height: 200},
			begin: Point{50, 100}, end: Point{-40, 100}, velocity: Point{},
			want: ActionSnapBack,
		},
		{
			name: "left drawer short flick commits",
			cfg:  DrawerConfig(DirectionLeft), rest: Rect{Width: 100, Height: 200},
			begin: Point{50, 100}, end: Point{48, 100}, velocity: Point{X: -60},
			want: ActionCommit,
		},
		{
			name: "left drawer flick the wrong way cancels",
			cfg:  DrawerConfig(DirectionLeft), rest: Rect{Width: 100, Height: 200},
			begin: Point{50, 100}, end: Point{0, 100}, velocity: Point{X: 60},
			want: ActionSnapBack,
		},
		{
			name: "right drawer short flick commits",
			cfg:  DrawerConfig(DirectionRight), rest: Rect{X: 300, Width: 100, Height: 200},
			begin: Point{350, 100}, end: Point{352, 100}, velocity: Point{X: 60},
			want: ActionCommit,
		},
		{
			name: "right drawer far drag released still cancels",
			cfg:  DrawerConfig(DirectionRight), rest: Rect{X: 300, Width: 100, Height: 200},
			begin: Point{350, 100}, end: Point{440, 100}, velocity: Point{},
			want: ActionSnapBack,
		},
		{
			name: "sheet downward flick commits",
			cfg:  BottomSheetConfig(), rest: Rect{Y: 300, Width: 400, Height: 100},
			begin: Point{200, 350}, end: Point{200, 352}, velocity: Point{Y: 10},
			want: ActionCommit,
		},
		{
			name: "sheet dragged far then pushed up cancels",
			cfg:  BottomSheetConfig(), rest: Rect{Y: 300, Width: 400, Height: 100},
			begin: Point{200, 350}, end: Point{200, 440}, velocity: Point{Y: -1},
			want: ActionSnapBack,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var b Bridge
			_, frame := drag(&b, tt.cfg, tt.rest,
				at(DragBegan, tt.begin.X, tt.begin.Y),
				at(DragChanged, tt.end.X, tt.end.Y),
			)
			out := b.Handle(tt.cfg, DragSample{Phase: DragEnded, Location: tt.end, Velocity: tt.velocity}, frame)
			assert.Equal(t, tt.want, out.Action)
			if tt.want == ActionSnapBack {
				assert.Equal(t, tt.rest, out.Restore)
				assert.Equal(t, BridgeCancelled, b.State())
			} else {
				assert.Equal(t, BridgeCommitted, b.State())
			}
		})
	}
}

func TestBridge_VelocityEpsilon(t *testing.T) {
	cfg := BottomSheetConfig()
	cfg.VelocityEpsilon = 20
	rest := Rect{Y: 300, Width: 400, Height: 100}

	var b Bridge
	b.Handle(cfg, at(DragBegan, 200, 350), rest)
	out := b.Handle(cfg, DragSample{Phase: DragEnded, Location: Point{200, 360}, Velocity: Point{Y: 15}}, rest)
	assert.Equal(t, ActionSnapBack, out.Action)

	b.Reset()
	b.Handle(cfg, at(DragBegan, 200, 350), rest)
	out = b.Handle(cfg, DragSample{Phase: DragEnded, Location: Point{200, 360}, Velocity: Point{Y: 25}}, rest)
	assert.Equal(t, ActionCommit, out.Action)
}

func TestBridge_DialogNeverMoves(t *testing.T) {
	cfg := DefaultConfig() // dialog with drag enabled
	rest := Rect{X: 100, Y: 100, Width: 50, Height: 50}

	var b Bridge
	b.Handle(cfg, at(DragBegan, 120, 120), rest)
	out := b.Handle(cfg, at(DragChanged, 300, 300), rest)
	assert.Equal(t, ActionNone, out.Action)
	assert.Equal(t, rest, out.Frame)

	out = b.Handle(cfg, DragSample{Phase: DragEnded, Location: Point{300, 300}, Velocity: Point{X: 100, Y: 100}}, rest)
	assert.Equal(t, ActionTap, out.Action)
}

func TestBridge_DragDisabledBecomesTap(t *testing.T) {
	cfg := BottomSheetConfig()
	cfg.DragEnabled = false
	rest := Rect{Y: 300, Width: 400, Height: 100}

	var b Bridge
	b.Handle(cfg, at(DragBegan, 200, 350), rest)
	out := b.Handle(cfg, at(DragChanged, 200, 390), rest)
	assert.Equal(t, ActionTap, out.Action)
	assert.Equal(t, rest, out.Frame, "deltas are ignored")

	out = b.Handle(cfg, at(DragEnded, 200, 390), rest)
	assert.Equal(t, ActionNone, out.Action, "gesture already resolved")
}

func TestBridge_IgnoresSamplesWithoutBegin(t *testing.T) {
	cfg := BottomSheetConfig()
	rest := Rect{Y: 300, Width: 400, Height: 100}

	var b Bridge
	assert.Equal(t, ActionNone, b.Handle(cfg, at(DragChanged, 0, 0), rest).Action)
	assert.Equal(t, ActionNone, b.Handle(cfg, DragSample{Phase: DragEnded, Velocity: Point{Y: 100}}, rest).Action)
	assert.Equal(t, BridgeIdle, b.State())
}

func TestShouldBegin(t *testing.T) {
	content := Rect{X: 10, Y: 10, Width: 10, Height: 10}
	inside := Point{X: 15, Y: 15}
	outside := Point{X: 1, Y: 1}

	dismissible := BottomSheetConfig()
	locked := BottomSheetConfig()
	locked.Dismissible = false
	noDrag := BottomSheetConfig()
	noDrag.DragEnabled = false

	tests := []struct {
		name string
		kind GestureKind
		p    Point
		cfg  Config
		want bool
	}{
		{"tap inside never dismisses", GestureTap, inside, dismissible, false},
		{"tap outside dismissible", GestureTap, outside, dismissible, true},
		{"tap outside locked", GestureTap, outside, locked, false},
		{"drag dismissible", GestureDrag, inside, dismissible, true},
		{"drag locked", GestureDrag, inside, locked, false},
		{"drag disabled", GestureDrag, outside, noDrag, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ShouldBegin(tt.kind, tt.p, content, tt.cfg))
		})
	}
}
