// Package tui is a terminal host for overlays and an interactive demo built
// on it.
package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/sync/errgroup"

	"github.com/jmylchreest/veil/internal/config"
	"github.com/jmylchreest/veil/internal/mainloop"
	"github.com/jmylchreest/veil/internal/overlay"
	"github.com/jmylchreest/veil/internal/popup"
)

// barHeight is the number of rows below the overlay host.
const barHeight = 1

// Styles for the demo chrome.
var (
	backdropTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("205")).
				MarginBottom(1)

	backdropTextStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("245"))

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))
)

// Feed remembers the latest overlay event for the status bar. It is written
// and read on the owner loop.
type Feed struct {
	last string
}

// Dismissed is an overlay.DismissFunc.
func (f *Feed) Dismissed(o *overlay.Overlay, reason overlay.DismissReason) {
	f.last = fmt.Sprintf("%s dismissed (%s)", o.Kind(), reason)
}

// Action is a popup.ActionFunc.
func (f *Feed) Action(_ *overlay.Overlay, a popup.AlertAction) {
	f.last = fmt.Sprintf("alert: %s", a.Title)
}

// Last returns the latest event.
func (f *Feed) Last() string { return f.last }

// Model is the demo TUI. Overlay state lives on the scheduler's loop; the
// model only reaches it through Do.
type Model struct {
	ctx       context.Context
	sched     mainloop.Scheduler
	host      *Host
	presenter *popup.Presenter
	builder   *Builder
	feed      *Feed
	cfg       *config.Config
	now       func() time.Time

	keys    KeyMap
	help    help.Model
	pointer *overlay.Pointer

	width    int
	height   int
	ready    bool
	showHelp bool
	ticking  bool
	interval time.Duration

	statusMsg string
	statusErr bool
}

// New creates the demo model. feed may be nil.
func New(ctx context.Context, sched mainloop.Scheduler, host *Host, presenter *popup.Presenter, builder *Builder, cfg *config.Config, feed *Feed) Model {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if feed == nil {
		feed = &Feed{}
	}
	fps := cfg.Animation.FPS
	if fps <= 0 {
		fps = config.DefaultFPS
	}
	return Model{
		ctx:       ctx,
		sched:     sched,
		host:      host,
		presenter: presenter,
		builder:   builder,
		feed:      feed,
		cfg:       cfg,
		now:       time.Now,
		keys:      DefaultKeyMap(),
		help:      help.New(),
		pointer:   &overlay.Pointer{},
		interval:  time.Second / time.Duration(fps),
	}
}

// Init initializes the TUI.
func (m Model) Init() tea.Cmd {
	return tea.SetWindowTitle("veil")
}

type frameMsg struct{}

type statusMsg struct {
	text  string
	isErr bool
}

type clearStatusMsg struct{}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.help.Width = msg.Width
		_ = m.sched.Do(m.ctx, func(context.Context) {
			m.host.SetSize(msg.Width, max(msg.Height-barHeight, 0))
		})
		return m, nil

	case frameMsg:
		var busy bool
		_ = m.sched.Do(m.ctx, func(context.Context) { busy = m.host.Len() > 0 })
		if !busy && !m.pointer.Pressed() {
			m.ticking = false
			return m, nil
		}
		return m, m.tick()

	case statusMsg:
		m.statusMsg = msg.text
		m.statusErr = msg.isErr
		return m, tea.Tick(3*time.Second, func(time.Time) tea.Msg {
			return clearStatusMsg{}
		})

	case clearStatusMsg:
		m.statusMsg = ""
		m.statusErr = false
		return m, nil
	}
	return m, nil
}

// failTint dims the screen behind a failure toast.
var failTint = overlay.Color{R: 0.6, A: 0.25}

// handleKey handles key presses.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var err error
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp
		return m, nil

	case key.Matches(msg, m.keys.Toast):
		_, err = m.presenter.Toast(m.ctx, "Saved", popup.WithIcon(popup.IconSuccess))
	case key.Matches(msg, m.keys.FailToast):
		_, err = m.presenter.Toast(m.ctx, "Could not save",
			popup.WithIcon(popup.IconFail),
			popup.WithBackground(failTint))
	case key.Matches(msg, m.keys.Loading):
		_, err = m.presenter.Loading(m.ctx, m.cfg.Loading.Message, nil)
	case key.Matches(msg, m.keys.Hide):
		if !m.presenter.HideLoading(m.ctx) {
			return m, status("nothing is loading", false)
		}
	case key.Matches(msg, m.keys.Alert):
		_, err = m.presenter.Alert(m.ctx,
			popup.WithTitle("Discard draft?"),
			popup.WithSubtitle("Your changes will be lost."),
			popup.WithConfirm("Discard", nil),
		)
	case key.Matches(msg, m.keys.Sheet):
		_, err = m.presenter.Present(m.ctx, nil,
			m.cfg.Apply(overlay.BottomSheetConfig()),
			m.builder.Sheet("Share", "Drag down or tap outside to close."))
	case key.Matches(msg, m.keys.Left):
		_, err = m.presenter.Present(m.ctx, nil,
			m.cfg.Apply(overlay.DrawerConfig(overlay.DirectionLeft)),
			m.builder.Drawer("Menu", "Swipe left to close."))
	case key.Matches(msg, m.keys.Right):
		_, err = m.presenter.Present(m.ctx, nil,
			m.cfg.Apply(overlay.DrawerConfig(overlay.DirectionRight)),
			m.builder.Drawer("Details", "Swipe right to close."))

	case key.Matches(msg, m.keys.Back):
		_ = m.sched.Do(m.ctx, func(ctx context.Context) {
			if top := m.host.Top(); top != nil {
				// A point outside every frame is a background tap.
				top.HandleTap(ctx, overlay.Point{X: -1, Y: -1})
			}
		})
	case key.Matches(msg, m.keys.DismissAll):
		n := m.presenter.DismissAll(m.ctx)
		return m, tea.Batch(m.startTicking(), status(fmt.Sprintf("dismissed %d", n), false))

	default:
		return m, nil
	}

	if err != nil {
		return m, status(describe(err), true)
	}
	return m, m.startTicking()
}

// handleMouse turns mouse events into taps and drags on the top overlay.
// A press that never moves is a tap; otherwise it is a drag.
func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	p := overlay.Point{X: float64(msg.X), Y: float64(msg.Y)}
	ptr := m.pointer

	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft {
			return m, nil
		}
		var top *overlay.Overlay
		_ = m.sched.Do(m.ctx, func(context.Context) { top = m.host.Top() })
		ptr.Press(m.now(), p, top)

	case tea.MouseActionMotion:
		if !ptr.Move(m.ctx, m.now(), p) {
			return m, nil
		}

	case tea.MouseActionRelease:
		if !ptr.Pressed() {
			return m, nil
		}
		routed := ptr.Target() != nil
		if !ptr.Release(m.ctx, m.now(), p) {
			if !routed {
				return m, nil
			}
			return m, status("tap passed through", false)
		}

	default:
		return m, nil
	}
	return m, m.startTicking()
}

func (m *Model) startTicking() tea.Cmd {
	if m.ticking {
		return nil
	}
	m.ticking = true
	return m.tick()
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.interval, func(time.Time) tea.Msg { return frameMsg{} })
}

func status(text string, isErr bool) tea.Cmd {
	return func() tea.Msg { return statusMsg{text: text, isErr: isErr} }
}

func describe(err error) string {
	switch {
	case errors.Is(err, overlay.ErrQueueOccupied):
		return "a loading overlay is active"
	case errors.Is(err, overlay.ErrNoHost):
		return "screen not ready"
	}
	return err.Error()
}

// View renders the TUI.
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	var screen, last string
	_ = m.sched.Do(m.ctx, func(context.Context) {
		screen = m.host.Compose(m.backdrop())
		last = m.feed.Last()
	})
	return screen + "\n" + m.statusBar(last)
}

func (m Model) backdrop() string {
	text := backdropTextStyle.Render("Press a key to open an overlay. Drag sheets and drawers with the mouse.")
	body := []string{backdropTitleStyle.Render("veil"), text}
	if m.showHelp {
		body = append(body, "", m.help.FullHelpView(m.keys.FullHelp()))
	}
	content := lipgloss.JoinVertical(lipgloss.Center, body...)
	return lipgloss.Place(m.width, max(m.height-barHeight, 0), lipgloss.Center, lipgloss.Center, content)
}

func (m Model) statusBar(last string) string {
	left := m.help.ShortHelpView(m.keys.ShortHelp())
	var right string
	switch {
	case m.statusMsg != "" && m.statusErr:
		right = errorStyle.Render(m.statusMsg)
	case m.statusMsg != "":
		right = statusStyle.Render(m.statusMsg)
	case last != "":
		right = statusStyle.Render(last)
	}
	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		return left
	}
	return left + strings.Repeat(" ", gap) + right
}

// RunOptions configures the TUI.
type RunOptions struct {
	Config    *config.Config
	Logger    *slog.Logger
	Announcer popup.Announcer

	// Serve runs alongside the TUI with its presenter, e.g. to take requests
	// over D-Bus. It must return once ctx is done.
	Serve func(ctx context.Context, p *popup.Presenter) error
}

// Run starts the demo TUI and blocks until it exits.
func Run(ctx context.Context, opts RunOptions) error {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	loop := mainloop.New(logger)
	loop.Start()
	defer loop.Stop()

	// Bounds stay empty until the first WindowSizeMsg.
	host := NewHost(0, 0, nil)
	builder := NewBuilder(nil)
	ctrl := overlay.NewController(loop,
		overlay.WithLogger(logger),
		overlay.WithStrategy(overlay.NewSpringStrategy(loop, cfg.SpringOptions())),
	)

	feed := &Feed{}
	popts := []popup.Option{
		popup.WithLogger(logger),
		popup.WithDefaults(cfg.PresenterDefaults()),
		popup.OnDismissed(feed.Dismissed),
		popup.OnAction(feed.Action),
	}
	if opts.Announcer != nil {
		popts = append(popts, popup.WithAnnouncer(opts.Announcer))
	}
	presenter := popup.New(ctrl, host, builder, popts...)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)

	m := New(gctx, loop, host, presenter, builder, cfg, feed)
	prog := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(gctx))

	g.Go(func() error {
		defer cancel()
		if _, err := prog.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
			return fmt.Errorf("tui: %w", err)
		}
		return nil
	})
	if opts.Serve != nil {
		g.Go(func() error { return opts.Serve(gctx, presenter) })
	}
	return g.Wait()
}
