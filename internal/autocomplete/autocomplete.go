// Package autocomplete produces search-as-you-type suggestions from the
// recent-search history and the directory.
package autocomplete

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/donaldgifford/apidex/internal/debounce"
	"github.com/donaldgifford/apidex/pkg/logger"
	domain "github.com/donaldgifford/apidex/pkg/types"
)

// Defaults.
const (
	DefaultDelay = 300 * time.Millisecond
	DefaultSize  = 5
)

// Searcher queries the directory.
type Searcher interface {
	ListAPIs(ctx context.Context, params domain.QueryParams) (*domain.ResultPage, error)
}

// History supplies recent searches matching a prefix.
type History interface {
	Matching(ctx context.Context, prefix string) []string
}

// Suggestions answer one input.
type Suggestions struct {
	Input  string   `json:"input"`
	Recent []string `json:"recent"`
	APIs   []string `json:"apis"`
	Err    error    `json:"-"`
}

// Suggester debounces keystrokes and publishes suggestions for the input
// that survives.
type Suggester struct {
	searcher Searcher
	history  History
	size     int
	deb      *debounce.Debouncer
	log      *slog.Logger

	mu      sync.Mutex
	results chan Suggestions
}

// Option configures a Suggester.
type Option func(*options)

type options struct {
	delay time.Duration
	size  int
	log   *slog.Logger
}

// WithDelay sets the debounce delay.
func WithDelay(d time.Duration) Option {
	return func(o *options) { o.delay = d }
}

// WithSize sets how many API names are requested.
func WithSize(n int) Option {
	return func(o *options) { o.size = n }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.log = l }
}

// New creates a Suggester. history may be nil.
func New(searcher Searcher, history History, opts ...Option) *Suggester {
	o := options{delay: DefaultDelay, size: DefaultSize}
	for _, opt := range opts {
		opt(&o)
	}
	if o.size <= 0 {
		o.size = DefaultSize
	}
	return &Suggester{
		searcher: searcher,
		history:  history,
		size:     o.size,
		deb:      debounce.New(o.delay),
		log:      logger.Component(o.log, "autocomplete"),
		results:  make(chan Suggestions, 1),
	}
}

// Results delivers suggestions for debounced input. Only the newest
// undelivered result is kept.
func (s *Suggester) Results() <-chan Suggestions {
	return s.results
}

// Type records a keystroke. Suggestions for text are computed only if no
// other keystroke arrives within the delay.
func (s *Suggester) Type(ctx context.Context, text string) {
	s.deb.Trigger(func() {
		if ctx.Err() != nil {
			return
		}
		s.publish(s.Suggest(ctx, text))
	})
}

// Flush computes suggestions for the pending keystroke immediately.
func (s *Suggester) Flush() bool {
	return s.deb.Flush()
}

// Stop drops any pending keystroke.
func (s *Suggester) Stop() {
	s.deb.Cancel()
}

// Suggest computes suggestions for text without debouncing. Blank text
// returns the whole history and skips the directory.
func (s *Suggester) Suggest(ctx context.Context, text string) Suggestions {
	text = strings.TrimSpace(text)
	out := Suggestions{Input: text, Recent: []string{}, APIs: []string{}}
	if s.history != nil {
		if recent := s.history.Matching(ctx, text); recent != nil {
			out.Recent = recent
		}
	}
	if text == "" {
		return out
	}

	params := domain.DefaultQueryParams()
	params.Q = text
	params.Size = s.size
	page, err := s.searcher.ListAPIs(ctx, params)
	if err != nil {
		s.log.Debug("suggestion lookup failed", "term", text, "error", err)
		out.Err = fmt.Errorf("looking up suggestions for %q: %w", text, err)
		return out
	}
	for i := range page.Content {
		out.APIs = append(out.APIs, page.Content[i].Name)
	}
	return out
}

func (s *Suggester) publish(sg Suggestions) {
	s.mu.Lock()
	defer s.mu.Unlock()
	select {
	case <-s.results:
	default:
	}
	s.results <- sg
}
