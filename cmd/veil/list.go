package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/veil/internal/dbus"
	"github.com/jmylchreest/veil/internal/output"
)

var listOpts struct {
	format   string
	field    string
	template string
	kind     string
	search   string
	since    string
	limit    int
	sortBy   string
	order    string
	noIndex  bool
	noAge    bool
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List live overlays",
	Long: `List the overlays a running presenter is showing, oldest first.

Examples:
  # Plain listing
  veil list

  # Pick one with fuzzel and dismiss it
  veil list --format dmenu | fuzzel -d | veil dismiss

  # Only alerts, as JSON
  veil list --kind alert --format json

  # Custom template
  veil list --template '{{.Entry.ID}} {{.Entry.Title | upper}}'`,
	Args: cobra.NoArgs,
	RunE: runList,
}

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().StringVarP(&listOpts.format, "format", "f", string(output.FormatPlain),
		"Output format (plain, json, dmenu, ids)")
	listCmd.Flags().StringVar(&listOpts.field, "field", "",
		"Output a single field per overlay (id, kind, title, created)")
	listCmd.Flags().StringVar(&listOpts.template, "template", "",
		"Custom Go template for plain/dmenu lines")
	listCmd.Flags().StringVar(&listOpts.kind, "kind", "",
		"Only list overlays of this kind (toast, loading, alert, sheet, drawer, dialog)")
	listCmd.Flags().StringVarP(&listOpts.search, "search", "s", "",
		"Only list overlays whose title contains this text")
	listCmd.Flags().StringVar(&listOpts.since, "since", "",
		"Only list overlays shown within this duration (e.g., 30s, 5m, 1d)")
	listCmd.Flags().IntVarP(&listOpts.limit, "limit", "n", 0,
		"Maximum number of overlays to list (0=unlimited)")
	listCmd.Flags().StringVar(&listOpts.sortBy, "sort", "created",
		"Sort by field (created, kind, title)")
	listCmd.Flags().StringVar(&listOpts.order, "order", "asc",
		"Sort order (asc, desc)")
	listCmd.Flags().BoolVar(&listOpts.noIndex, "no-index", false,
		"Leave out the index column")
	listCmd.Flags().BoolVar(&listOpts.noAge, "no-age", false,
		"Leave out the age column")
}

func runList(cmd *cobra.Command, args []string) error {
	since, err := output.ParseDuration(listOpts.since)
	if err != nil {
		return err
	}

	var entries []output.Entry
	err = withClient(func(ctx context.Context, c *dbus.Client) error {
		var err error
		entries, err = fetchEntries(ctx, c)
		return err
	})
	if err != nil {
		return err
	}

	entries = output.Select(entries, output.SelectOptions{
		Kind:   listOpts.kind,
		Search: listOpts.search,
		Since:  since,
		Limit:  listOpts.limit,
		Field:  output.ParseSortField(listOpts.sortBy),
		Order:  output.ParseSortOrder(listOpts.order),
	})
	logger.Debug("listed overlays", "count", len(entries))

	if listOpts.field != "" {
		for _, e := range entries {
			fmt.Println(output.FormatField(e, listOpts.field))
		}
		return nil
	}

	opts := output.DefaultFormatterOptions()
	opts.Template = listOpts.template
	opts.ShowIndex = !listOpts.noIndex
	opts.ShowAge = !listOpts.noAge

	f, err := output.NewFormatter(output.FormatType(listOpts.format), opts)
	if err != nil {
		return err
	}
	return f.Format(os.Stdout, entries)
}

// fetchEntries lists the live overlays, oldest first.
func fetchEntries(ctx context.Context, c *dbus.Client) ([]output.Entry, error) {
	infos, err := c.List(ctx)
	if err != nil {
		return nil, err
	}
	entries := make([]output.Entry, 0, len(infos))
	for _, info := range infos {
		entries = append(entries, output.Entry{
			ID:      info.ID,
			Kind:    info.Kind,
			Title:   info.Title,
			Created: time.UnixMilli(info.Created),
		})
	}
	return output.Select(entries, output.DefaultSelectOptions()), nil
}
