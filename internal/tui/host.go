package tui

import (
	"math"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/jmylchreest/veil/internal/overlay"
)

// dimCacheSize bounds the number of dimmed background lines kept around.
const dimCacheSize = 512

// Renderer is implemented by surfaces the terminal host can draw. The
// returned lines are exactly as wide as the surface frame.
type Renderer interface {
	Render(now time.Time) []string
}

// Host is an overlay.Host on a terminal screen measured in cells. Like every
// host it is only touched on the owner loop.
type Host struct {
	width    int
	height   int
	overlays []*overlay.Overlay
	now      func() time.Time

	dimmed *lru.Cache[string, string]
	scrim  lipgloss.Style
}

// NewHost creates a host with the given screen size. now may be nil.
func NewHost(width, height int, now func() time.Time) *Host {
	if now == nil {
		now = time.Now
	}
	// lru.New only fails for a non-positive size.
	cache, _ := lru.New[string, string](dimCacheSize)
	return &Host{
		width:  width,
		height: height,
		now:    now,
		dimmed: cache,
		scrim:  lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Faint(true),
	}
}

// SetSize updates the screen size. Overlays already attached keep their
// frames.
func (h *Host) SetSize(width, height int) {
	h.width, h.height = width, height
}

func (h *Host) Bounds() overlay.Rect {
	return overlay.Rect{Width: float64(h.width), Height: float64(h.height)}
}

func (h *Host) Attach(o *overlay.Overlay) {
	h.overlays = append(h.overlays, o)
}

func (h *Host) Detach(o *overlay.Overlay) {
	h.overlays = slices.DeleteFunc(h.overlays, func(x *overlay.Overlay) bool { return x == o })
}

// Len returns the number of attached overlays, including dismissing ones.
func (h *Host) Len() int { return len(h.overlays) }

// Top returns the newest overlay that is still live.
func (h *Host) Top() *overlay.Overlay {
	for i := len(h.overlays) - 1; i >= 0; i-- {
		if h.overlays[i].Live() {
			return h.overlays[i]
		}
	}
	return nil
}

// Compose draws the attached overlays over base, oldest first. Overlays with
// a visible background dim everything beneath them.
func (h *Host) Compose(base string) string {
	if h.width <= 0 || h.height <= 0 {
		return base
	}
	lines := fit(base, h.width, h.height)
	now := h.now()

	for _, o := range h.overlays {
		if o.Config().Background.A > 0 {
			for i, ln := range lines {
				lines[i] = h.dim(ln)
			}
		}
		sf := o.Surface()
		if b, ok := sf.(interface{ Opacity() float64 }); ok && b.Opacity() <= 0 {
			continue
		}
		r, ok := sf.(Renderer)
		if !ok {
			continue
		}
		f := sf.Frame()
		paint(lines, r.Render(now), h.width, int(math.Round(f.X)), int(math.Round(f.Y)))
	}
	return strings.Join(lines, "\n")
}

func (h *Host) dim(line string) string {
	if v, ok := h.dimmed.Get(line); ok {
		return v
	}
	v := h.scrim.Render(xansi.Strip(line))
	h.dimmed.Add(line, v)
	return v
}

// fit splits s into exactly height lines, each padded or cut to width cells.
func fit(s string, width, height int) []string {
	src := strings.Split(s, "\n")
	out := make([]string, height)
	for i := range out {
		var ln string
		if i < len(src) {
			ln = src[i]
		}
		if n := xansi.StringWidth(ln); n < width {
			ln += strings.Repeat(" ", width-n)
		} else if n > width {
			ln = xansi.Cut(ln, 0, width)
		}
		out[i] = ln
	}
	return out
}

// paint writes fg over bg at cell (x, y), clipping whatever falls outside
// the screen. Drawers sliding in from the side have a negative x.
func paint(bg, fg []string, width, x, y int) {
	for i, fl := range fg {
		row := y + i
		if row < 0 || row >= len(bg) {
			continue
		}
		fw := xansi.StringWidth(fl)
		from := max(0, -x)
		to := min(fw, width-x)
		if to <= from {
			continue
		}
		x0 := x + from
		seg := xansi.Cut(fl, from, to)
		bg[row] = xansi.Cut(bg[row], 0, x0) + seg + xansi.Cut(bg[row], x0+(to-from), width)
	}
}
