package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/veil/internal/audio"
	"github.com/jmylchreest/veil/internal/config"
	"github.com/jmylchreest/veil/internal/dbus"
	"github.com/jmylchreest/veil/internal/popup"
	"github.com/jmylchreest/veil/internal/tui"
)

var demoOpts struct {
	serve   bool
	logFile string
}

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Launch the interactive terminal demo",
	Long: `Launch the terminal overlay demo.

Key bindings:
  t           Toast
  f           Failure toast
  l / h       Show / hide loading
  a           Alert
  s           Bottom sheet
  d / D       Left / right drawer
  esc         Tap the background of the top overlay
  x           Dismiss all
  ?           Show help
  q           Quit

Drag sheets and drawers with the mouse to dismiss them.

With --serve the demo also exports the D-Bus presenter, so 'veil toast'
and friends show up inside the terminal.`,
	RunE: runDemo,
}

func init() {
	rootCmd.AddCommand(demoCmd)

	demoCmd.Flags().BoolVar(&demoOpts.serve, "serve", false,
		"Also serve the presenter on the session bus")
	demoCmd.Flags().StringVar(&demoOpts.logFile, "log-file", "",
		"Log file while the demo owns the screen (default: ~/.local/state/veil/veil.log)")
}

func runDemo(cmd *cobra.Command, args []string) error {
	c := getConfig()

	// The alternate screen owns stderr; logs go to a file instead.
	logPath := demoOpts.logFile
	if logPath == "" {
		logPath = config.LogPath()
	}
	if err := os.MkdirAll(filepath.Dir(logPath), 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer func() { _ = f.Close() }()

	level := c.Level()
	if globalOpts.verbose {
		level = slog.LevelDebug
	}
	fileLogger := slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(fileLogger)
	fileLogger.Info("starting demo", "version", version, "serve", demoOpts.serve)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sounds := audio.NewManager(c, fileLogger)
	if err := sounds.Start(ctx); err != nil {
		fileLogger.Warn("failed to start audio", "error", err)
	}
	defer sounds.Stop()

	opts := tui.RunOptions{
		Config:    c,
		Logger:    fileLogger,
		Announcer: sounds,
	}
	if demoOpts.serve {
		opts.Serve = func(ctx context.Context, p *popup.Presenter) error {
			srv := dbus.NewServer(p, fileLogger)
			if err := p.Subscribe(ctx, srv.OnDismissed, srv.OnAction); err != nil {
				return err
			}
			return srv.Serve(ctx)
		}
	}
	return tui.Run(ctx, opts)
}
