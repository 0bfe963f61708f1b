package explore

import (
	"context"
	"errors"
	"log/slog"

	"github.com/donaldgifford/apidex/pkg/logger"
)

// Sentinel is the end-of-list marker. Each time it becomes visible it asks
// the session for one more page; the session decides whether that is
// allowed.
type Sentinel struct {
	session *Session
	log     *slog.Logger
}

// NewSentinel returns a sentinel bound to s.
func NewSentinel(s *Session, l *slog.Logger) *Sentinel {
	return &Sentinel{session: s, log: logger.Component(l, "sentinel")}
}

// Visible handles one visibility event and reports whether a page was
// requested.
func (t *Sentinel) Visible(ctx context.Context) (bool, error) {
	return t.session.LoadMore(ctx)
}

// Watch handles visibility events until events closes or ctx is done. When
// loaded is non-nil it receives the outcome of every event, in order. Fetch
// errors are logged and leave the session waiting for Retry.
func (t *Sentinel) Watch(ctx context.Context, events <-chan struct{}, loaded func(requested bool, err error)) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case _, ok := <-events:
			if !ok {
				return nil
			}
			requested, err := t.Visible(ctx)
			if err != nil {
				t.log.Warn("load more failed", "error", err)
			}
			if loaded != nil {
				loaded(requested, err)
			}
		}
	}
}

// ErrPageLimit is returned by Exhaust when maxPages pages were loaded and
// the listing still has more.
var ErrPageLimit = errors.New("page limit reached")

// Exhaust keeps the sentinel in view until the last page arrives or
// maxPages pages (including the first) have been loaded. A maxPages of zero
// or less means no limit. It returns the number of pages loaded by this
// call.
func (t *Sentinel) Exhaust(ctx context.Context, maxPages int) (int, error) {
	loaded := 0
	for {
		st := t.session.Snapshot()
		if st.Err != nil || st.Last || !st.Received {
			return loaded, st.Err
		}
		if maxPages > 0 && st.Params.Page+1 >= maxPages {
			return loaded, ErrPageLimit
		}
		if err := ctx.Err(); err != nil {
			return loaded, err
		}

		requested, err := t.Visible(ctx)
		if err != nil {
			return loaded, err
		}
		if !requested {
			return loaded, nil
		}
		loaded++
	}
}
