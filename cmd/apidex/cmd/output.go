package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/donaldgifford/apidex/internal/autocomplete"
	domain "github.com/donaldgifford/apidex/pkg/types"
)

// tabWriter wraps tabwriter with error tracking.
type tabWriter struct {
	*tabwriter.Writer
	err error
}

func newTabWriter(w io.Writer) *tabWriter {
	return &tabWriter{Writer: tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)}
}

func (tw *tabWriter) writef(format string, args ...any) {
	if tw.err != nil {
		return
	}
	_, tw.err = fmt.Fprintf(tw.Writer, format, args...)
}

func (tw *tabWriter) finish() error {
	if tw.err != nil {
		return tw.err
	}
	return tw.Flush()
}

func printAPITable(w io.Writer, apis []domain.API) error {
	return printAPITableFrom(w, apis, 0)
}

// printAPITableFrom prints apis[start:] numbered by their list position.
func printAPITableFrom(w io.Writer, apis []domain.API, start int) error {
	tw := newTabWriter(w)
	tw.writef("#\tID\tNAME\tCATEGORY\tRATING\tREVIEWS\tFAVS\tPRICING\tAUTH\n")
	for i := start; i < len(apis); i++ {
		fav := ""
		if apis[i].IsFavorited {
			fav = " *"
		}
		tw.writef("%d\t%d\t%s%s\t%s\t%.1f\t%d\t%d\t%s\t%s\n",
			i+1,
			apis[i].APIID,
			truncate(apis[i].Name, 36),
			fav,
			apis[i].Category,
			apis[i].Rating,
			apis[i].ReviewCount,
			apis[i].FavoriteCount,
			apis[i].PricingType,
			apis[i].AuthType,
		)
	}
	return tw.finish()
}

func printComparison(w io.Writer, comps []domain.Comparison) error {
	tw := newTabWriter(w)

	tw.writef("\t")
	for i := range comps {
		tw.writef("%s\t", truncate(comps[i].API.Name, 28))
	}
	tw.writef("\n")

	row := func(label string, cell func(c domain.Comparison) string) {
		tw.writef("%s\t", label)
		for i := range comps {
			tw.writef("%s\t", cell(comps[i]))
		}
		tw.writef("\n")
	}

	row("ID", func(c domain.Comparison) string { return fmt.Sprint(c.API.APIID) })
	row("Rating", func(c domain.Comparison) string {
		return fmt.Sprintf("%.1f (%d reviews)", c.API.Rating, c.API.ReviewCount)
	})
	row("Auth", func(c domain.Comparison) string { return dash(c.API.AuthType) })
	row("Pricing", func(c domain.Comparison) string {
		if c.Pricing == nil {
			return dash(c.API.PricingType)
		}
		return c.Pricing.PricingType
	})
	row("Plans", func(c domain.Comparison) string {
		if c.Pricing == nil || len(c.Pricing.Plans) == 0 {
			return "-"
		}
		plans := make([]string, 0, len(c.Pricing.Plans))
		for _, p := range c.Pricing.Plans {
			plans = append(plans, formatPlan(p))
		}
		return strings.Join(plans, ", ")
	})
	return tw.finish()
}

func formatPlan(p domain.PricingPlan) string {
	if p.Price == 0 {
		return p.Name + " free"
	}
	s := fmt.Sprintf("%s %.2f", p.Name, p.Price)
	if p.Currency != "" {
		s += " " + p.Currency
	}
	if p.Period != "" {
		s += "/" + p.Period
	}
	return s
}

func printBookmarkGroups(w io.Writer, groups []domain.BookmarkGroup) error {
	tw := newTabWriter(w)
	for _, g := range groups {
		tw.writef("%s\n", g.Date)
		for i := range g.APIs {
			tw.writef("  %d\t%s\t%s\n", g.APIs[i].APIID, truncate(g.APIs[i].Name, 40), g.APIs[i].Category)
		}
	}
	return tw.finish()
}

func printList(w io.Writer, items []string) error {
	tw := newTabWriter(w)
	for i, item := range items {
		tw.writef("%d\t%s\n", i+1, item)
	}
	return tw.finish()
}

func printSuggestions(w io.Writer, s autocomplete.Suggestions) error {
	tw := newTabWriter(w)
	for _, r := range s.Recent {
		tw.writef("recent\t%s\n", r)
	}
	for _, a := range s.APIs {
		tw.writef("api\t%s\n", a)
	}
	return tw.finish()
}

func outputJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
