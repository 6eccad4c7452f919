package output

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"
)

// SortField represents a field to sort by.
type SortField string

const (
	SortByCreated SortField = "created"
	SortByKind    SortField = "kind"
	SortByTitle   SortField = "title"
)

// SortOrder represents ascending or descending order.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// SelectOptions narrows and orders a listing.
type SelectOptions struct {
	Kind   string        // exact kind, empty for all
	Search string        // case-insensitive title substring
	Since  time.Duration // only overlays younger than this, 0 for all
	Limit  int           // 0 = unlimited
	Field  SortField
	Order  SortOrder

	// Now is the reference for Since; zero means time.Now.
	Now time.Time
}

// DefaultSelectOptions lists everything, oldest first, matching the
// presenter's stacking order.
func DefaultSelectOptions() SelectOptions {
	return SelectOptions{Field: SortByCreated, Order: SortAsc}
}

// Select filters and sorts entries into a new slice.
func Select(entries []Entry, opts SelectOptions) []Entry {
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}
	search := strings.ToLower(opts.Search)

	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if opts.Kind != "" && e.Kind != opts.Kind {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(e.Title), search) {
			continue
		}
		if opts.Since > 0 && now.Sub(e.Created) > opts.Since {
			continue
		}
		out = append(out, e)
	}

	slices.SortStableFunc(out, func(a, b Entry) int {
		var c int
		switch opts.Field {
		case SortByKind:
			c = strings.Compare(a.Kind, b.Kind)
		case SortByTitle:
			c = strings.Compare(strings.ToLower(a.Title), strings.ToLower(b.Title))
		default:
			c = a.Created.Compare(b.Created)
		}
		if opts.Order == SortDesc {
			return -c
		}
		return c
	})

	if opts.Limit > 0 && len(out) > opts.Limit {
		out = out[:opts.Limit]
	}
	return out
}

// LookupByIndex finds an entry by its 1-based index.
func LookupByIndex(entries []Entry, index int) (Entry, bool) {
	if index < 1 || index > len(entries) {
		return Entry{}, false
	}
	return entries[index-1], true
}

// ParseSortField parses a sort field, falling back to created.
func ParseSortField(s string) SortField {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "kind", "k":
		return SortByKind
	case "title", "t":
		return SortByTitle
	default:
		return SortByCreated
	}
}

// ParseSortOrder parses a sort order, falling back to ascending.
func ParseSortOrder(s string) SortOrder {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "desc", "descending", "d":
		return SortDesc
	default:
		return SortAsc
	}
}

// ParseDuration parses a Go duration, also accepting day (7d) and week (1w)
// suffixes. "0" and "" mean no limit.
func ParseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "0" || s == "" {
		return 0, nil
	}

	if daysStr, found := strings.CutSuffix(s, "d"); found {
		days, err := strconv.Atoi(daysStr)
		if err != nil {
			return 0, fmt.Errorf("invalid duration: %s", s)
		}
		return time.Duration(days) * 24 * time.Hour, nil
	}
	if weeksStr, found := strings.CutSuffix(s, "w"); found {
		weeks, err := strconv.Atoi(weeksStr)
		if err != nil {
			return 0, fmt.Errorf("invalid duration: %s", s)
		}
		return time.Duration(weeks) * 7 * 24 * time.Hour, nil
	}
	return time.ParseDuration(s)
}
