package cmd

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/donaldgifford/apidex/internal/compare"
	domain "github.com/donaldgifford/apidex/pkg/types"
)

// resolvePageSize is the listing page size used to look up APIs by id.
const resolvePageSize = 100

func compareCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "compare <id>...",
		Short: "Compare APIs side by side",
		Long: "Compare up to compare.max_items APIs by id, with their pricing plans\n" +
			"loaded in parallel.",
		Example: `  apidex compare 12 40 7`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			ids := make([]int64, 0, len(args))
			for _, arg := range args {
				id, err := strconv.ParseInt(arg, 10, 64)
				if err != nil {
					return fmt.Errorf("invalid api id %q", arg)
				}
				ids = append(ids, id)
			}

			sel := a.newSelection()
			for _, api := range resolveAPIs(ctx, a, ids) {
				if _, err := sel.Add(api); err != nil {
					if errors.Is(err, compare.ErrLimitReached) {
						return fmt.Errorf("you can compare at most %d APIs", sel.Max())
					}
					return err
				}
			}

			comps, loadErr := a.newPricingLoader().Load(ctx, sel.Items())
			out := cmd.OutOrStdout()
			if jsonOutput() {
				if err := outputJSON(out, comps); err != nil {
					return err
				}
				return loadErr
			}
			if err := printComparison(out, comps); err != nil {
				return err
			}
			return loadErr
		},
	}
}

// resolveAPIs looks up listing details for ids by paging through the
// directory, up to explore.max_pages pages or to the last page when
// max_pages is not positive. Ids that are not found keep a placeholder name.
func resolveAPIs(ctx context.Context, a *app, ids []int64) []domain.API {
	found := make(map[int64]domain.API, len(ids))
	missing := map[int64]struct{}{}
	for _, id := range ids {
		missing[id] = struct{}{}
	}

	params := domain.DefaultQueryParams()
	params.Size = resolvePageSize
	limit := a.cfg.Explore.MaxPages
	for page := 0; (limit <= 0 || page < limit) && len(missing) > 0; page++ {
		params.Page = page
		res, err := a.client.ListAPIs(ctx, params)
		if err != nil {
			a.log.Warn("resolving api details failed", "page", page, "error", err)
			break
		}
		for i := range res.Content {
			id := res.Content[i].APIID
			if _, ok := missing[id]; ok {
				found[id] = res.Content[i]
				delete(missing, id)
			}
		}
		if res.Last {
			break
		}
	}

	out := make([]domain.API, 0, len(ids))
	for _, id := range ids {
		api, ok := found[id]
		if !ok {
			api = domain.API{APIID: id, Name: fmt.Sprintf("api %d", id)}
		}
		out = append(out, api)
	}
	return out
}
