package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/donaldgifford/apidex/internal/autocomplete"
)

func suggestCmd() *cobra.Command {
	var now bool

	cmd := &cobra.Command{
		Use:   "suggest <text>",
		Short: "Autocomplete a search",
		Long: "Suggest recent searches and API names for partial input, after the\n" +
			"configured autocomplete debounce. --now skips the wait.",
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			got, err := runSuggest(ctx, a, strings.Join(args, " "), now)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if jsonOutput() {
				return outputJSON(out, got)
			}
			if len(got.Recent) == 0 && len(got.APIs) == 0 {
				_, err := fmt.Fprintln(out, "No suggestions.")
				return err
			}
			return printSuggestions(out, got)
		},
	}

	cmd.Flags().BoolVar(&now, "now", false, "fire the lookup without waiting for the debounce")
	return cmd
}

// runSuggest types text into a debounced suggester and waits for its
// result. With now set the pending keystroke is flushed immediately.
func runSuggest(ctx context.Context, a *app, text string, now bool) (autocomplete.Suggestions, error) {
	s := autocomplete.New(a.client, a.recent,
		autocomplete.WithDelay(a.cfg.Autocomplete.Debounce),
		autocomplete.WithSize(a.cfg.Autocomplete.Size),
		autocomplete.WithLogger(a.log),
	)
	defer s.Stop()

	wait := a.cfg.API.Timeout
	if !now {
		wait += a.cfg.Autocomplete.Debounce
	}
	waitCtx, cancel := context.WithTimeout(ctx, wait)
	defer cancel()

	s.Type(waitCtx, text)
	if now {
		s.Flush()
	}

	select {
	case got := <-s.Results():
		if got.Err != nil {
			return got, got.Err
		}
		return got, nil
	case <-waitCtx.Done():
		return autocomplete.Suggestions{}, fmt.Errorf("waiting for suggestions: %w", waitCtx.Err())
	}
}
