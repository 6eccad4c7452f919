package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/spf13/cobra"

	"github.com/jmylchreest/veil/internal/dbus"
	"github.com/jmylchreest/veil/internal/output"
	"github.com/jmylchreest/veil/internal/overlay"
	"github.com/jmylchreest/veil/internal/popup"
)

// requestTimeout bounds a single call to the presenter.
const requestTimeout = 10 * time.Second

var toastOpts struct {
	icon  string
	delay time.Duration
}

var alertOpts struct {
	subtitle string
	confirm  string
	noCancel bool
	wait     bool
	timeout  time.Duration
}

var toastCmd = &cobra.Command{
	Use:   "toast <message>",
	Short: "Show a toast",
	Long: `Show a toast on a running presenter and print its ID.

Examples:
  veil toast "Saved"
  veil toast --icon success "Upload finished"
  veil toast --icon fail --delay 5s "Build failed"`,
	Args: cobra.ExactArgs(1),
	RunE: runToast,
}

var loadingCmd = &cobra.Command{
	Use:   "loading [message]",
	Short: "Show the loading indicator",
	Long: `Show the loading indicator and print its ID. Only one loading
indicator is shown at a time; while it is up, toasts are refused.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLoading,
}

var hideLoadingCmd = &cobra.Command{
	Use:   "hide-loading",
	Short: "Hide the loading indicator",
	Args:  cobra.NoArgs,
	RunE:  runHideLoading,
}

var alertCmd = &cobra.Command{
	Use:   "alert <title>",
	Short: "Show an alert",
	Long: `Show an alert and print its ID.

With --wait, block until the alert is dismissed and print how it ended:
the reason, followed by the pressed button's key if any. The exit status
is 0 when the confirm button was pressed and 1 otherwise, so alerts can
gate shell scripts:

  veil alert --confirm Delete --wait "Delete 3 files?" && rm a b c`,
	Args: cobra.ExactArgs(1),
	RunE: runAlert,
}

var dismissCmd = &cobra.Command{
	Use:   "dismiss [index|id...]",
	Short: "Dismiss overlays by index or ID",
	Long: `Dismiss overlays by 1-based index (as shown by 'veil list') or ID.
With no arguments, IDs are read from stdin, one per line:

  veil list --format ids | veil dismiss
  veil dismiss 1`,
	RunE: runDismiss,
}

func init() {
	rootCmd.AddCommand(toastCmd, loadingCmd, hideLoadingCmd, alertCmd, dismissCmd)

	toastCmd.Flags().StringVar(&toastOpts.icon, "icon", "",
		"Icon (success, fail, loading; empty for none)")
	toastCmd.Flags().DurationVar(&toastOpts.delay, "delay", 0,
		"How long the toast stays up (0 uses the presenter's default)")

	alertCmd.Flags().StringVar(&alertOpts.subtitle, "subtitle", "",
		"Secondary text")
	alertCmd.Flags().StringVar(&alertOpts.confirm, "confirm", "",
		"Confirm button label (empty for none)")
	alertCmd.Flags().BoolVar(&alertOpts.noCancel, "no-cancel", false,
		"Leave out the cancel button")
	alertCmd.Flags().BoolVar(&alertOpts.wait, "wait", false,
		"Wait for the alert to be dismissed and print the outcome")
	alertCmd.Flags().DurationVar(&alertOpts.timeout, "timeout", 0,
		"Give up waiting after this long (0 waits forever)")
}

// withClient connects to the presenter and runs fn with a bounded context.
func withClient(fn func(ctx context.Context, c *dbus.Client) error) error {
	c, err := dbus.Connect()
	if err != nil {
		return err
	}
	defer func() { _ = c.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()
	return explain(fn(ctx, c))
}

// explain adds a hint to errors a user can act on.
func explain(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, overlay.ErrQueueOccupied):
		return fmt.Errorf("%w (hide the loading indicator first)", err)
	case errors.Is(err, overlay.ErrNoHost):
		return fmt.Errorf("%w (is a display attached to veild?)", err)
	case strings.Contains(err.Error(), "ServiceUnknown"):
		return fmt.Errorf("no presenter on the session bus (start veild or 'veil demo --serve'): %w", err)
	}
	return err
}

func runToast(cmd *cobra.Command, args []string) error {
	if _, err := dbus.ParseIcon(toastOpts.icon); err != nil {
		return err
	}
	if toastOpts.delay < 0 {
		return fmt.Errorf("%w: negative delay", overlay.ErrInvalidConfiguration)
	}
	return withClient(func(ctx context.Context, c *dbus.Client) error {
		id, err := c.Toast(ctx, args[0], toastOpts.icon, toastOpts.delay)
		if err != nil {
			return err
		}
		fmt.Println(id)
		return nil
	})
}

func runLoading(cmd *cobra.Command, args []string) error {
	message := ""
	if len(args) > 0 {
		message = args[0]
	}
	return withClient(func(ctx context.Context, c *dbus.Client) error {
		id, err := c.Loading(ctx, message)
		if err != nil {
			return err
		}
		fmt.Println(id)
		return nil
	})
}

func runHideLoading(cmd *cobra.Command, args []string) error {
	return withClient(func(ctx context.Context, c *dbus.Client) error {
		hidden, err := c.HideLoading(ctx)
		if err != nil {
			return err
		}
		if !hidden {
			logger.Info("no loading indicator was shown")
		}
		return nil
	})
}

func runAlert(cmd *cobra.Command, args []string) error {
	c, err := dbus.Connect()
	if err != nil {
		return explain(err)
	}
	defer func() { _ = c.Close() }()

	callCtx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()
	id, err := c.Alert(callCtx, args[0], alertOpts.subtitle, alertOpts.confirm, !alertOpts.noCancel)
	if err != nil {
		return explain(err)
	}
	if !alertOpts.wait {
		fmt.Println(id)
		return nil
	}

	waitCtx := context.Background()
	if alertOpts.timeout > 0 {
		var cancelWait context.CancelFunc
		waitCtx, cancelWait = context.WithTimeout(waitCtx, alertOpts.timeout)
		defer cancelWait()
	}
	out, err := c.Wait(waitCtx, id)
	if err != nil {
		return fmt.Errorf("waiting for alert %s: %w", id, err)
	}

	if out.Action != "" {
		fmt.Printf("%s %s\n", out.Reason, out.Action)
	} else {
		fmt.Println(out.Reason)
	}
	if out.Action != popup.KeyConfirm {
		_ = c.Close()
		os.Exit(1)
	}
	return nil
}

func runDismiss(cmd *cobra.Command, args []string) error {
	ids := args
	if len(ids) == 0 {
		var err error
		ids, err = readIDs(bufio.NewScanner(os.Stdin))
		if err != nil {
			return err
		}
	}
	if len(ids) == 0 {
		return fmt.Errorf("no overlay IDs given")
	}

	return withClient(func(ctx context.Context, c *dbus.Client) error {
		ids, err := resolveIndexes(ctx, c, ids)
		if err != nil {
			return err
		}
		missing := 0
		for _, id := range ids {
			ok, err := c.Dismiss(ctx, id)
			if err != nil {
				return err
			}
			if !ok {
				missing++
				logger.Warn("overlay not found", "id", id)
			}
		}
		if missing == len(ids) {
			return fmt.Errorf("none of the given overlays are live")
		}
		return nil
	})
}

// readIDs reads one overlay per line, skipping blanks. A line picked from
// dmenu or plain output yields the first ULID-shaped field in it.
func readIDs(s *bufio.Scanner) ([]string, error) {
	var ids []string
	for s.Scan() {
		line := strings.TrimSpace(s.Text())
		if line == "" {
			continue
		}
		ids = append(ids, idFromLine(line))
	}
	if err := s.Err(); err != nil {
		return nil, fmt.Errorf("failed to read stdin: %w", err)
	}
	return ids, nil
}

func idFromLine(line string) string {
	for _, f := range strings.FieldsFunc(line, func(r rune) bool {
		return r == ' ' || r == '|' || r == '\t' || r == '[' || r == ']'
	}) {
		if _, err := ulid.ParseStrict(f); err == nil {
			return f
		}
	}
	return line
}

// resolveIndexes replaces 1-based indexes with the IDs they point at in the
// default listing. The listing is fetched at most once.
func resolveIndexes(ctx context.Context, c *dbus.Client, args []string) ([]string, error) {
	var entries []output.Entry
	out := make([]string, 0, len(args))
	for _, arg := range args {
		idx, err := strconv.Atoi(arg)
		if err != nil {
			out = append(out, arg)
			continue
		}
		if entries == nil {
			if entries, err = fetchEntries(ctx, c); err != nil {
				return nil, err
			}
		}
		e, ok := output.LookupByIndex(entries, idx)
		if !ok {
			return nil, fmt.Errorf("index %d out of range (%d live overlays)", idx, len(entries))
		}
		out = append(out, e.ID)
	}
	return out, nil
}
