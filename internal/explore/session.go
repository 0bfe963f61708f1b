package explore

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/donaldgifford/apidex/internal/metrics"
	"github.com/donaldgifford/apidex/pkg/logger"
	domain "github.com/donaldgifford/apidex/pkg/types"
)

// Fetcher loads one page of the directory listing.
type Fetcher interface {
	ListAPIs(ctx context.Context, params domain.QueryParams) (*domain.ResultPage, error)
}

// State is a point-in-time view of a session.
type State struct {
	SessionID string
	Params    domain.QueryParams
	Items     []domain.API
	// Total is nil until the first page of the session arrives.
	Total    *int
	Received bool
	Loading  bool
	Last     bool
	Empty    bool
	Err      error
}

// Session is one explore view: every search, filter or sort change starts a
// new query session, and the sentinel pages through it.
//
// Each session boundary bumps a token. A response is applied only if the
// token it was requested under is still current, so a slow page from an old
// session can never overwrite the list of a newer one.
type Session struct {
	fetcher Fetcher
	log     *slog.Logger

	mu          sync.Mutex
	query       *QueryState
	acc         *Accumulator
	token       uint64
	id          string
	lastKey     string
	inFlight    bool
	replaceNext bool
	err         error
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithBaseParams sets the parameters of the initial session.
func WithBaseParams(p domain.QueryParams) SessionOption {
	return func(s *Session) {
		s.query = NewQueryState(p)
	}
}

// WithSessionLogger sets the logger.
func WithSessionLogger(l *slog.Logger) SessionOption {
	return func(s *Session) {
		s.log = logger.Component(l, "explore")
	}
}

// NewSession creates a session that fetches through f. Nothing is loaded
// until Start or a query change.
func NewSession(f Fetcher, opts ...SessionOption) *Session {
	s := &Session{
		fetcher: f,
		log:     logger.Discard(),
		query:   NewQueryState(domain.DefaultQueryParams()),
		acc:     NewAccumulator(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.resetLocked()
	return s
}

type request struct {
	params  domain.QueryParams
	key     string
	token   uint64
	replace bool
	session string
}

// Start loads the first page of the current parameters.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	req, ok := s.beginLocked()
	s.mu.Unlock()
	if !ok {
		return nil
	}
	return s.run(ctx, req)
}

// Search sets the search text. A changed text starts a new session and
// loads its first page.
func (s *Session) Search(ctx context.Context, text string) error {
	return s.change(ctx, func(q *QueryState) bool { return q.SetQuery(text) })
}

// Filter replaces the filters, starting a new session if they changed.
func (s *Session) Filter(ctx context.Context, f domain.Filters) error {
	return s.change(ctx, func(q *QueryState) bool { return q.SetFilters(f) })
}

// Sort changes the ordering, starting a new session if it changed.
func (s *Session) Sort(ctx context.Context, sort domain.SortOption, dir domain.Direction) error {
	return s.change(ctx, func(q *QueryState) bool { return q.SetSort(sort, dir) })
}

func (s *Session) change(ctx context.Context, mutate func(*QueryState) bool) error {
	s.mu.Lock()
	if mutate(s.query) {
		s.resetLocked()
	}
	req, ok := s.beginLocked()
	s.mu.Unlock()
	if !ok {
		return nil
	}
	return s.run(ctx, req)
}

// LoadMore requests the next page of the current session. It does nothing
// and returns false while a fetch is in flight, before the first page has
// arrived, after the last page, or while a failed fetch awaits Retry.
func (s *Session) LoadMore(ctx context.Context) (bool, error) {
	s.mu.Lock()
	if !s.canLoadMoreLocked() {
		s.mu.Unlock()
		return false, nil
	}
	s.query.NextPage()
	req, ok := s.beginLocked()
	s.mu.Unlock()
	if !ok {
		return false, nil
	}
	return true, s.run(ctx, req)
}

// CanLoadMore reports whether LoadMore would issue a request.
func (s *Session) CanLoadMore() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.canLoadMoreLocked()
}

func (s *Session) canLoadMoreLocked() bool {
	return !s.inFlight && s.err == nil && s.acc.Received() && !s.acc.Last()
}

// Retry re-issues the request that failed. It is the only way a session
// resumes after an error; nothing retries on a timer.
func (s *Session) Retry(ctx context.Context) error {
	s.mu.Lock()
	if s.err == nil || s.inFlight {
		s.mu.Unlock()
		return nil
	}
	s.err = nil
	req, ok := s.beginLocked()
	s.mu.Unlock()
	if !ok {
		return nil
	}
	return s.run(ctx, req)
}

// Snapshot returns the current state.
func (s *Session) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := State{
		SessionID: s.id,
		Params:    s.query.Params(),
		Items:     s.acc.Items(),
		Received:  s.acc.Received(),
		Loading:   s.inFlight,
		Last:      s.acc.Last(),
		Empty:     s.acc.Empty(),
		Err:       s.err,
	}
	if total, ok := s.acc.Total(); ok {
		st.Total = &total
	}
	return st
}

// resetLocked starts a new query session.
func (s *Session) resetLocked() {
	s.token++
	s.id = uuid.NewString()
	s.acc.Clear()
	s.replaceNext = true
	s.inFlight = false
	s.err = nil
	s.lastKey = ""
}

// beginLocked claims the next request, or reports false when the params
// match the previous request. Issuing a request clears a standing failure;
// the new response decides whether the session is halted.
func (s *Session) beginLocked() (request, bool) {
	params := s.query.Params()
	key := params.Key()
	if key == s.lastKey {
		metrics.FetchesSuppressedTotal.Inc()
		s.log.Debug("duplicate fetch suppressed", "session", s.id, "key", key)
		return request{}, false
	}

	s.lastKey = key
	s.inFlight = true
	s.err = nil
	return request{
		params:  params,
		key:     key,
		token:   s.token,
		replace: s.replaceNext,
		session: s.id,
	}, true
}

// run performs req and applies the response if its session is still current.
func (s *Session) run(ctx context.Context, req request) error {
	mode := "append"
	if req.replace {
		mode = "replace"
	}
	metrics.FetchesTotal.WithLabelValues(mode).Inc()
	s.log.Debug("fetching page",
		"session", req.session, "page", req.params.Page, "mode", mode, "key", req.key)

	page, err := s.fetcher.ListAPIs(ctx, req.params)

	s.mu.Lock()
	defer s.mu.Unlock()

	if req.token != s.token {
		metrics.StalePagesDiscardedTotal.Inc()
		s.log.Debug("discarding stale page",
			"session", req.session, "page", req.params.Page, "current", s.id)
		return nil
	}

	s.inFlight = false

	if err != nil {
		s.err = err
		// Clearing the key lets Retry re-issue the identical request.
		s.lastKey = ""
		s.log.Warn("page fetch failed",
			"session", req.session, "page", req.params.Page, "error", err)
		return fmt.Errorf("loading page %d: %w", req.params.Page, err)
	}

	if req.replace {
		s.acc.Reset(page)
		s.replaceNext = false
		return nil
	}

	before := s.acc.Len()
	added := s.acc.Append(page)
	if page != nil {
		metrics.DuplicateItemsDroppedTotal.Add(float64(len(page.Content) - added))
	}
	metrics.ItemsAppendedTotal.Add(float64(added))
	s.log.Debug("page appended",
		"session", req.session, "page", req.params.Page, "added", added, "before", before)
	return nil
}
