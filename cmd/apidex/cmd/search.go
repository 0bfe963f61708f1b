package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/donaldgifford/apidex/internal/explore"
	domain "github.com/donaldgifford/apidex/pkg/types"
)

// queryFlags are the listing flags shared by search and explore.
type queryFlags struct {
	sort      string
	direction string
	pricing   string
	auth      string
	minRating float64
	size      int
}

func (f *queryFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.sort, "sort", "", "sort field (LATEST, POPULAR, MOST_REVIEWED)")
	cmd.Flags().StringVar(&f.direction, "direction", "", "sort direction (ASC, DESC)")
	cmd.Flags().StringVar(&f.pricing, "pricing", "", "comma-separated pricing types (FREE, FREEMIUM, PAID)")
	cmd.Flags().StringVar(&f.auth, "auth", "", "comma-separated auth types (API_KEY, OAUTH2, NONE)")
	cmd.Flags().Float64Var(&f.minRating, "min-rating", 0, "minimum rating")
	cmd.Flags().IntVar(&f.size, "size", 0, "page size (default explore.page_size)")
}

// apply overlays the flags that were set on base.
func (f *queryFlags) apply(cmd *cobra.Command, base domain.QueryParams) (domain.QueryParams, error) {
	if f.sort != "" {
		s := domain.SortOption(strings.ToUpper(f.sort))
		if !s.Valid() {
			return base, fmt.Errorf("invalid --sort %q: must be one of LATEST, POPULAR, MOST_REVIEWED", f.sort)
		}
		base.Sort = s
	}
	if f.direction != "" {
		d := domain.Direction(strings.ToUpper(f.direction))
		if !d.Valid() {
			return base, fmt.Errorf("invalid --direction %q: must be ASC or DESC", f.direction)
		}
		base.Direction = d
	}
	if f.size > 0 {
		base.Size = f.size
	}
	base.PricingTypes = strings.Join(domain.SplitList(f.pricing), ",")
	base.AuthTypes = strings.Join(domain.SplitList(f.auth), ",")
	if cmd.Flags().Changed("min-rating") {
		r := f.minRating
		base.MinRating = &r
	}
	return base, nil
}

func searchCmd() *cobra.Command {
	var (
		qf    queryFlags
		pages int
	)

	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Search the directory",
		Long: "Search the directory and page through the results. The query is\n" +
			"recorded in the recent-search history.",
		Example: `  # Latest APIs
  apidex search

  # Free weather APIs, most popular first, up to 3 pages
  apidex search weather --pricing FREE --sort POPULAR --pages 3`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			params, err := qf.apply(cmd, a.baseParams())
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("pages") {
				pages = a.cfg.Explore.MaxPages
			}

			query := strings.TrimSpace(strings.Join(args, " "))
			st, more, err := runSearch(ctx, a, params, query, pages)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if jsonOutput() {
				return outputJSON(out, st.Items)
			}
			return printSearchResult(out, st, more)
		},
	}
	qf.register(cmd)
	cmd.Flags().IntVar(&pages, "pages", 0, "maximum pages to load, 0 for all (default explore.max_pages)")
	return cmd
}

// runSearch runs one explore session to completion or the page limit and
// reports whether more pages remain.
func runSearch(
	ctx context.Context,
	a *app,
	params domain.QueryParams,
	query string,
	pages int,
) (explore.State, bool, error) {
	session := explore.NewSession(a.client,
		explore.WithBaseParams(params),
		explore.WithSessionLogger(a.log),
	)

	var err error
	if query != "" {
		err = session.Search(ctx, query)
		if recErr := a.recent.Add(ctx, query); recErr != nil {
			a.log.Warn("recording recent search failed", "term", query, "error", recErr)
		}
	} else {
		err = session.Start(ctx)
	}
	if err != nil {
		return explore.State{}, false, err
	}

	_, err = explore.NewSentinel(session, a.log).Exhaust(ctx, pages)
	more := errors.Is(err, explore.ErrPageLimit)
	if err != nil && !more {
		return session.Snapshot(), false, err
	}
	return session.Snapshot(), more, nil
}

func printSearchResult(w io.Writer, st explore.State, more bool) error {
	if st.Empty || len(st.Items) == 0 {
		_, err := fmt.Fprintln(w, "No APIs found.")
		return err
	}

	total := "?"
	if st.Total != nil {
		total = fmt.Sprint(*st.Total)
	}
	if _, err := fmt.Fprintf(w, "Showing %d of %s APIs\n\n", len(st.Items), total); err != nil {
		return err
	}
	if err := printAPITable(w, st.Items); err != nil {
		return err
	}
	if more {
		_, err := fmt.Fprintln(w, "\nMore results available; raise --pages or use `apidex explore`.")
		return err
	}
	return nil
}
