package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/donaldgifford/apidex/internal/autocomplete"
	"github.com/donaldgifford/apidex/internal/compare"
	"github.com/donaldgifford/apidex/internal/explore"
	domain "github.com/donaldgifford/apidex/pkg/types"
)

const exploreHelp = `commands:
  q <text>                     search (empty text clears the search)
  sort <SORT> [ASC|DESC]       LATEST, POPULAR or MOST_REVIEWED
  filter [pricing=A,B] [auth=A,B] [rating=N] | filter clear
  more                         load the next page
  retry                        retry the failed page
  list                         show everything loaded so far
  compare add <n|#id> | compare rm <n|#id> | compare clear | compare show
  fav <n|#id>                  toggle favorite
  recent [rm <term> | clear]   recent searches
  suggest <text>               autocomplete
  quit`

func exploreCmd() *cobra.Command {
	var qf queryFlags

	cmd := &cobra.Command{
		Use:   "explore",
		Short: "Browse the directory interactively",
		Long: "Start an interactive explore session. Results accumulate page by page\n" +
			"as you ask for more; changing the search, filters or sort starts over.\n\n" +
			exploreHelp,
		RunE: func(cmd *cobra.Command, _ []string) error {
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
			return newExplorer(a, params, cmd.InOrStdin(), cmd.OutOrStdout()).run(ctx)
		},
	}
	qf.register(cmd)
	return cmd
}

// loadResult is the outcome of one sentinel event.
type loadResult struct {
	requested bool
	err       error
}

// explorer is the interactive explore session. "more" is a sentinel
// visibility event delivered to a watching goroutine.
type explorer struct {
	a         *app
	in        io.Reader
	out       io.Writer
	session   *explore.Session
	sentinel  *explore.Sentinel
	events    chan struct{}
	loads     chan loadResult
	selection *compare.Selection
	pricing   *compare.PricingLoader
	suggester *autocomplete.Suggester
}

func newExplorer(a *app, params domain.QueryParams, in io.Reader, out io.Writer) *explorer {
	session := explore.NewSession(a.client,
		explore.WithBaseParams(params),
		explore.WithSessionLogger(a.log),
	)
	return &explorer{
		a:         a,
		in:        in,
		out:       out,
		session:   session,
		sentinel:  explore.NewSentinel(session, a.log),
		events:    make(chan struct{}),
		loads:     make(chan loadResult, 1),
		selection: a.newSelection(),
		pricing:   a.newPricingLoader(),
		suggester: autocomplete.New(a.client, a.recent,
			autocomplete.WithSize(a.cfg.Autocomplete.Size),
			autocomplete.WithLogger(a.log),
		),
	}
}

func (e *explorer) run(ctx context.Context) error {
	watchCtx, cancel := context.WithCancel(ctx)
	watching := make(chan struct{})
	go func() {
		defer close(watching)
		_ = e.sentinel.Watch(watchCtx, e.events, func(requested bool, err error) {
			e.loads <- loadResult{requested: requested, err: err}
		})
	}()
	defer func() {
		cancel()
		<-watching
	}()

	if err := e.session.Start(ctx); err != nil {
		e.printf("error: %v (type retry)\n", err)
	} else {
		e.show(0)
	}

	scanner := bufio.NewScanner(e.in)
	e.printf("> ")
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "quit" || line == "exit" {
			return nil
		}
		if line != "" {
			if err := e.exec(ctx, line); err != nil {
				e.printf("error: %v\n", err)
			}
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		e.printf("> ")
	}
	return scanner.Err()
}

func (e *explorer) exec(ctx context.Context, line string) error {
	cmd, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)

	switch cmd {
	case "q", "search":
		if err := e.session.Search(ctx, rest); err != nil {
			return err
		}
		if err := e.a.recent.Add(ctx, rest); err != nil {
			e.a.log.Warn("recording recent search failed", "term", rest, "error", err)
		}
		e.show(0)
	case "sort":
		return e.sort(ctx, strings.Fields(rest))
	case "filter":
		return e.filter(ctx, strings.Fields(rest))
	case "more":
		return e.more(ctx)
	case "retry":
		if e.session.Snapshot().Err == nil {
			e.printf("nothing to retry\n")
			return nil
		}
		if err := e.session.Retry(ctx); err != nil {
			return err
		}
		e.show(0)
	case "list":
		e.show(0)
	case "compare":
		return e.compare(ctx, strings.Fields(rest))
	case "fav":
		api, err := e.resolve(rest)
		if err != nil {
			return err
		}
		res, err := e.a.bookmarks.Toggle(ctx, e.a.client, api.APIID)
		if err != nil {
			return err
		}
		if res.IsFavorited {
			e.printf("favorited %s\n", api.Name)
		} else {
			e.printf("unfavorited %s\n", api.Name)
		}
	case "recent":
		return e.recent(ctx, strings.Fields(rest))
	case "suggest":
		s := e.suggester.Suggest(ctx, rest)
		if s.Err != nil {
			return s.Err
		}
		return printSuggestions(e.out, s)
	case "help", "?":
		e.printf("%s\n", exploreHelp)
	default:
		e.printf("unknown command %q, type help\n", cmd)
	}
	return nil
}

func (e *explorer) sort(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("usage: sort <LATEST|POPULAR|MOST_REVIEWED> [ASC|DESC]")
	}
	s := domain.SortOption(strings.ToUpper(args[0]))
	if !s.Valid() {
		return fmt.Errorf("unknown sort %q", args[0])
	}
	d := e.session.Snapshot().Params.Direction
	if len(args) > 1 {
		d = domain.Direction(strings.ToUpper(args[1]))
		if !d.Valid() {
			return fmt.Errorf("unknown direction %q", args[1])
		}
	}
	if err := e.session.Sort(ctx, s, d); err != nil {
		return err
	}
	e.show(0)
	return nil
}

func (e *explorer) filter(ctx context.Context, args []string) error {
	f := domain.Filters{}
	if len(args) != 1 || args[0] != "clear" {
		f = e.session.Snapshot().Params.Filters()
		for _, arg := range args {
			key, value, ok := strings.Cut(arg, "=")
			if !ok {
				return fmt.Errorf("filter %q must be key=value", arg)
			}
			switch key {
			case "pricing":
				f.PricingTypes = strings.Join(domain.SplitList(value), ",")
			case "auth":
				f.AuthTypes = strings.Join(domain.SplitList(value), ",")
			case "rating":
				if value == "" {
					f.MinRating = nil
					continue
				}
				r, err := strconv.ParseFloat(value, 64)
				if err != nil {
					return fmt.Errorf("invalid rating %q: %w", value, err)
				}
				f.MinRating = &r
			default:
				return fmt.Errorf("unknown filter %q", key)
			}
		}
	}
	if err := e.session.Filter(ctx, f); err != nil {
		return err
	}
	e.show(0)
	return nil
}

func (e *explorer) compare(ctx context.Context, args []string) error {
	if len(args) == 0 {
		args = []string{"show"}
	}
	switch args[0] {
	case "add":
		if len(args) < 2 {
			return errors.New("usage: compare add <n|#id>")
		}
		api, err := e.resolve(args[1])
		if err != nil {
			return err
		}
		added, err := e.selection.Add(api)
		if errors.Is(err, compare.ErrLimitReached) {
			return fmt.Errorf("you can compare at most %d APIs; remove one first", e.selection.Max())
		}
		if err != nil {
			return err
		}
		if added {
			e.printf("added %s (%d/%d)\n", api.Name, e.selection.Len(), e.selection.Max())
		} else {
			e.printf("%s is already selected\n", api.Name)
		}
	case "rm":
		if len(args) < 2 {
			return errors.New("usage: compare rm <n|#id>")
		}
		api, err := e.resolve(args[1])
		if err != nil {
			return err
		}
		if !e.selection.Remove(api.APIID) {
			e.printf("%s is not selected\n", api.Name)
			return nil
		}
		e.pricing.Forget(api.APIID)
		e.printf("removed %s (%d/%d)\n", api.Name, e.selection.Len(), e.selection.Max())
	case "clear":
		e.selection.Clear()
	case "show":
		items := e.selection.Items()
		if len(items) == 0 {
			e.printf("nothing selected\n")
			return nil
		}
		comps, err := e.pricing.Load(ctx, items)
		if err != nil {
			e.printf("warning: %v\n", err)
		}
		return printComparison(e.out, comps)
	default:
		return fmt.Errorf("unknown compare command %q", args[0])
	}
	return nil
}

// more fires the sentinel and waits for the watcher to finish the load.
func (e *explorer) more(ctx context.Context) error {
	before := len(e.session.Snapshot().Items)

	select {
	case e.events <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}

	var res loadResult
	select {
	case res = <-e.loads:
	case <-ctx.Done():
		return ctx.Err()
	}

	if res.err != nil {
		return res.err
	}
	if !res.requested {
		e.printf("%s\n", e.whyNoMore())
		return nil
	}
	e.show(before)
	return nil
}

func (e *explorer) recent(ctx context.Context, args []string) error {
	switch {
	case len(args) == 0:
		terms := e.a.recent.List(ctx)
		if len(terms) == 0 {
			e.printf("no recent searches\n")
			return nil
		}
		return printList(e.out, terms)
	case args[0] == "clear":
		return e.a.recent.Clear(ctx)
	case args[0] == "rm" && len(args) > 1:
		return e.a.recent.Remove(ctx, strings.Join(args[1:], " "))
	default:
		return errors.New("usage: recent [rm <term> | clear]")
	}
}

// resolve finds a loaded API by 1-based list position or by "#<apiId>".
func (e *explorer) resolve(ref string) (domain.API, error) {
	items := e.session.Snapshot().Items
	if id, ok := strings.CutPrefix(ref, "#"); ok {
		n, err := strconv.ParseInt(id, 10, 64)
		if err != nil {
			return domain.API{}, fmt.Errorf("invalid api id %q", id)
		}
		for i := range items {
			if items[i].APIID == n {
				return items[i], nil
			}
		}
		return domain.API{}, fmt.Errorf("api #%d is not in the list", n)
	}

	n, err := strconv.Atoi(ref)
	if err != nil || n < 1 || n > len(items) {
		return domain.API{}, fmt.Errorf("no list entry %q", ref)
	}
	return items[n-1], nil
}

func (e *explorer) whyNoMore() string {
	st := e.session.Snapshot()
	switch {
	case st.Err != nil:
		return "last page failed, type retry"
	case st.Loading:
		return "still loading"
	case st.Last:
		return "no more results"
	default:
		return "nothing to load yet"
	}
}

// show prints the status line and the rows from index start on.
func (e *explorer) show(start int) {
	st := e.session.Snapshot()
	if st.Err != nil {
		e.printf("error: %v (type retry)\n", st.Err)
		return
	}
	if st.Empty {
		e.printf("No APIs found.\n")
		return
	}

	total := "?"
	if st.Total != nil {
		total = strconv.Itoa(*st.Total)
	}
	e.printf("%d of %s APIs", len(st.Items), total)
	if st.Last {
		e.printf(" (end)")
	}
	e.printf("\n")

	if start >= len(st.Items) {
		return
	}
	if err := printAPITableFrom(e.out, st.Items, start); err != nil {
		e.a.log.Debug("writing table failed", "error", err)
	}
}

func (e *explorer) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(e.out, format, args...)
}
