// Package main is the entry point for the veild overlay daemon.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"

	"github.com/diamondburned/gotk4-adwaita/pkg/adw"
	"github.com/diamondburned/gotk4/pkg/core/glib"
	"github.com/diamondburned/gotk4/pkg/gtk/v4"

	"github.com/jmylchreest/veil/internal/audio"
	"github.com/jmylchreest/veil/internal/config"
	"github.com/jmylchreest/veil/internal/daemon"
	"github.com/jmylchreest/veil/internal/dbus"
	"github.com/jmylchreest/veil/internal/gtkhost"
	"github.com/jmylchreest/veil/internal/overlay"
	"github.com/jmylchreest/veil/internal/popup"
)

const (
	appID   = "io.github.jmylchreest.veild"
	appName = "veild"
)

var (
	// Build-time variables
	version = "dev"
)

func main() {
	configPath := flag.String("config", "", "Path to config file (default: ~/.config/veil/config.toml)")
	monitor := flag.Int("monitor", -1, "Monitor to show overlays on (1-indexed, 0 for the first; overrides the config)")
	verbose := flag.Bool("verbose", false, "Enable debug logging")
	showVersion := flag.Bool("version", false, "Show version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println("veild version", version)
		os.Exit(0)
	}

	if *configPath == "" {
		*configPath = config.ConfigPath()
	}
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		slog.Error("failed to load config", "path", *configPath, "error", err)
		os.Exit(1)
	}
	if *monitor >= 0 {
		cfg.Display.Monitor = *monitor
	}

	level := cfg.Level()
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	os.Exit(run(cfg, *configPath, *monitor >= 0, logger))
}

// run owns the GTK application and returns its exit status.
func run(cfg *config.Config, configPath string, pinnedMonitor bool, logger *slog.Logger) int {
	logger.Info("starting veild", "version", version, "config", configPath)

	// Create the libadwaita application
	app := adw.NewApplication(appID, 0)

	// Shared state between GTK main loop and signal handlers
	var (
		sched         *gtkhost.Scheduler
		host          *gtkhost.Host
		stylesheet    *gtkhost.Stylesheet
		presenter     *popup.Presenter
		veilServer    *dbus.Server
		notifyServer  *dbus.NotificationServer
		audioManager  *audio.Manager
		configWatcher *daemon.ConfigWatcher
		themeWatcher  *daemon.FileWatcher
		notifier      *daemon.InternalNotifier
		running       atomic.Bool
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case sig := <-sigCh:
			logger.Info("received signal, shutting down", "signal", sig)
		case <-ctx.Done():
			return
		}
		cancel()
		glib.IdleAdd(func() {
			app.Quit()
		})
	}()

	// watchTheme follows edits to a theme file; bundled themes have none.
	watchTheme := func() {
		if themeWatcher != nil {
			_ = themeWatcher.Stop()
			themeWatcher = nil
		}
		path := stylesheet.Path()
		if path == "" {
			return
		}
		themeWatcher = daemon.NewFileWatcher(path, func() {
			glib.IdleAdd(func() {
				if err := stylesheet.Reload(); err != nil {
					logger.Warn("failed to reload theme", "path", path, "error", err)
					notifier.NotifyThemeError(err)
				}
			})
		}, logger)
		if err := themeWatcher.Start(ctx); err != nil {
			logger.Warn("failed to watch theme", "path", path, "error", err)
		}
	}

	app.ConnectActivate(func() {
		if running.Load() {
			logger.Warn("application already running")
			return
		}
		running.Store(true)

		sched = gtkhost.NewScheduler()
		owner := sched.Context()

		gtkhost.ApplyColorScheme(cfg.Theme.ColorScheme)
		stylesheet = gtkhost.NewStylesheet(logger)
		if err := stylesheet.Load(cfg.Theme.CSS); err != nil {
			logger.Warn("failed to load theme, using default", "theme", cfg.Theme.CSS, "error", err)
			_ = stylesheet.Load("")
		}
		stylesheet.Apply(nil)

		host = gtkhost.NewHost(&app.Application, sched, cfg.Display.Monitor, logger)
		host.SetColorScheme(cfg.Theme.ColorScheme)
		builder := gtkhost.NewBuilder(sched)

		audioManager = audio.NewManager(cfg, logger)
		if err := audioManager.Start(ctx); err != nil {
			logger.Warn("failed to start audio manager", "error", err)
		}

		ctrl := overlay.NewController(sched,
			overlay.WithLogger(logger),
			overlay.WithStrategy(overlay.NewSpringStrategy(sched, cfg.SpringOptions())),
		)
		presenter = popup.New(ctrl, host, builder,
			popup.WithLogger(logger),
			popup.WithDefaults(cfg.PresenterDefaults()),
			popup.WithAnnouncer(audioManager),
		)

		notifier = daemon.NewInternalNotifier(logger)

		if cfg.DBus.Enabled {
			veilServer = dbus.NewServer(presenter, logger)
			if err := veilServer.Start(ctx); err != nil {
				logger.Error("failed to start D-Bus presenter", "error", err)
				app.Quit()
				return
			}
			if err := presenter.Subscribe(owner, veilServer.OnDismissed, veilServer.OnAction); err != nil {
				logger.Warn("failed to subscribe D-Bus signals", "error", err)
			}
		}

		if cfg.DBus.ClaimNotifications {
			notifyServer = dbus.NewNotificationServer(logger)
			info := dbus.DefaultServerInfo()
			info.Version = version
			notifyServer.SetServerInfo(info)

			bridge := daemon.NewBridge(ctx, presenter, notifyServer, logger)
			notifyServer.SetNotifyHandler(bridge.Show)
			notifyServer.SetCloseHandler(bridge.Close)
			if err := presenter.Subscribe(owner, bridge.OnDismissed, nil); err != nil {
				logger.Warn("failed to subscribe notification bridge", "error", err)
			}
			if err := notifyServer.Start(); err != nil {
				logger.Warn("failed to claim notifications, continuing without", "error", err)
				notifyServer = nil
			}
		}

		// Notices are raised from main-loop callbacks, while the presenter
		// waits on the main loop; hand them to a goroutine.
		notifier.SetNotifyHandler(func(n *dbus.DBusNotification) (uint32, error) {
			go func() {
				var err error
				if notifyServer != nil {
					_, err = notifyServer.NotifyInternal(n)
				} else {
					_, err = presenter.Toast(ctx, n.Text(), popup.WithIcon(popup.IconFail))
				}
				if err != nil {
					logger.Debug("internal notice not shown", "summary", n.Summary, "error", err)
				}
			}()
			return 0, nil
		})
		audioManager.SetErrorHandler(func(err error) {
			notifier.NotifyAudioError(err)
		})

		configWatcher = daemon.NewConfigWatcher(configPath, logger)
		configWatcher.SetReloadCallback(func(newConfig *config.Config) {
			glib.IdleAdd(func() {
				if pinnedMonitor {
					newConfig.Display.Monitor = cfg.Display.Monitor
				}
				if err := presenter.SetDefaults(owner, newConfig.PresenterDefaults()); err != nil {
					logger.Warn("failed to apply presenter defaults", "error", err)
				}
				audioManager.UpdateConfig(newConfig)

				if newConfig.Theme.CSS != cfg.Theme.CSS {
					if err := stylesheet.Load(newConfig.Theme.CSS); err != nil {
						logger.Warn("failed to load new theme", "theme", newConfig.Theme.CSS, "error", err)
						notifier.NotifyThemeError(err)
					} else {
						watchTheme()
					}
				}
				if newConfig.Theme.ColorScheme != cfg.Theme.ColorScheme {
					gtkhost.ApplyColorScheme(newConfig.Theme.ColorScheme)
					host.SetColorScheme(newConfig.Theme.ColorScheme)
				}
				if newConfig.Display.Monitor != cfg.Display.Monitor {
					host.SetMonitor(newConfig.Display.Monitor)
				}

				cfg = newConfig
				notifier.NotifyConfigReloaded()
			})
		})
		configWatcher.SetErrorCallback(func(err error) {
			notifier.NotifyConfigError(err)
		})
		if err := configWatcher.Start(ctx, cfg); err != nil {
			logger.Warn("failed to start config watcher", "error", err)
		}
		watchTheme()

		logger.Info("veild ready",
			"dbus_interface", dbus.VeilInterface,
			"notifications", notifyServer != nil,
			"monitor", cfg.Display.Monitor,
		)
		notifier.NotifyStartup(version)

		// Create a hidden window to keep the application running
		// (GTK apps quit when all windows are closed)
		keepAliveWindow := gtk.NewWindow()
		keepAliveWindow.SetApplication(&app.Application)
		keepAliveWindow.SetDefaultSize(1, 1)
		keepAliveWindow.SetDecorated(false)
		keepAliveWindow.SetVisible(false)
	})

	app.ConnectShutdown(func() {
		logger.Info("application shutting down")
		cancel()
		if sched != nil {
			sched.Stop()
		}
		if configWatcher != nil {
			_ = configWatcher.Stop()
		}
		if themeWatcher != nil {
			_ = themeWatcher.Stop()
		}
		if audioManager != nil {
			audioManager.Stop()
		}
		if notifyServer != nil {
			_ = notifyServer.Stop()
		}
		if veilServer != nil {
			_ = veilServer.Stop()
		}
		running.Store(false)
	})

	status := app.Run(os.Args[:1])
	if status != 0 {
		logger.Error("application exited with error", "status", status)
		return status
	}
	logger.Info("veild stopped")
	return 0
}
