// Package recent keeps a bounded most-recently-used list of search terms.
package recent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/donaldgifford/apidex/internal/metrics"
	"github.com/donaldgifford/apidex/internal/storage"
	"github.com/donaldgifford/apidex/pkg/logger"
)

// Key is the storage key the history is persisted under.
const Key = "recentSearches"

// Default bounds for the two layouts the history is shown in.
const (
	CompactLimit = 5
	FullLimit    = 10
)

// DefaultTTL is how long a cookie-backed history survives without a write.
const DefaultTTL = 30 * 24 * time.Hour

// Store is a recent-search history persisted to a storage.Backend. Every
// mutation reads the persisted list first, so concurrent writers from other
// processes lose at most their own last write.
type Store struct {
	backend storage.Backend
	limit   int
	ttl     time.Duration
	log     *slog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithLimit sets the maximum history length.
func WithLimit(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.limit = n
		}
	}
}

// WithTTL sets the expiry passed to the backend on every write. Backends
// without expiry ignore it.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		s.ttl = ttl
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		s.log = logger.Component(l, "recent")
	}
}

// New creates a Store over backend.
func New(backend storage.Backend, opts ...Option) *Store {
	s := &Store{
		backend: backend,
		limit:   FullLimit,
		ttl:     DefaultTTL,
		log:     logger.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Limit returns the configured bound.
func (s *Store) Limit() int {
	return s.limit
}

// List returns the history, most recent first. Absent, corrupt or
// unreachable history is returned as an empty list.
func (s *Store) List(ctx context.Context) []string {
	terms, err := s.load(ctx)
	if err != nil {
		s.log.Debug("recent searches unavailable", "error", err)
		return []string{}
	}
	return terms
}

// Add records term as the most recent search. Blank terms are ignored. An
// existing identical term moves to the front instead of being duplicated.
// A history that cannot be read is left untouched.
func (s *Store) Add(ctx context.Context, term string) error {
	if strings.TrimSpace(term) == "" {
		return nil
	}

	current, err := s.load(ctx)
	if err != nil {
		return fmt.Errorf("adding recent search: %w", err)
	}
	next := make([]string, 0, len(current)+1)
	next = append(next, term)
	for _, t := range current {
		if t != term {
			next = append(next, t)
		}
	}
	if len(next) > s.limit {
		next = next[:s.limit]
	}

	if err := s.save(ctx, next); err != nil {
		return fmt.Errorf("adding recent search: %w", err)
	}
	metrics.RecentSearchWritesTotal.WithLabelValues("add").Inc()
	return nil
}

// Remove deletes every exact match of term. When nothing is left the backing
// key is removed entirely.
func (s *Store) Remove(ctx context.Context, term string) error {
	current, err := s.load(ctx)
	if err != nil {
		return fmt.Errorf("removing recent search: %w", err)
	}
	next := make([]string, 0, len(current))
	for _, t := range current {
		if t != term {
			next = append(next, t)
		}
	}
	if len(next) == len(current) && len(current) > 0 {
		return nil
	}

	if len(next) == 0 {
		err = s.backend.Delete(ctx, Key)
	} else {
		err = s.save(ctx, next)
	}
	if err != nil {
		return fmt.Errorf("removing recent search: %w", err)
	}
	metrics.RecentSearchWritesTotal.WithLabelValues("remove").Inc()
	return nil
}

// Clear forgets the whole history.
func (s *Store) Clear(ctx context.Context) error {
	if err := s.backend.Delete(ctx, Key); err != nil {
		return fmt.Errorf("clearing recent searches: %w", err)
	}
	metrics.RecentSearchWritesTotal.WithLabelValues("clear").Inc()
	return nil
}

// Matching returns history entries that start with prefix, case-insensitively.
func (s *Store) Matching(ctx context.Context, prefix string) []string {
	prefix = strings.ToLower(strings.TrimSpace(prefix))
	var out []string
	for _, t := range s.List(ctx) {
		if strings.HasPrefix(strings.ToLower(t), prefix) {
			out = append(out, t)
		}
	}
	return out
}

// load reads the stored history. Absent and corrupt values read as empty;
// backend failures are returned.
func (s *Store) load(ctx context.Context) ([]string, error) {
	data, err := s.backend.Get(ctx, Key)
	if errors.Is(err, storage.ErrNotFound) {
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", Key, err)
	}

	var terms []string
	if err := json.Unmarshal(data, &terms); err != nil {
		metrics.StorageCorruptReadsTotal.WithLabelValues(Key).Inc()
		s.log.Debug("discarding corrupt recent searches", "error", err)
		return []string{}, nil
	}
	if terms == nil {
		terms = []string{}
	}
	return terms, nil
}

func (s *Store) save(ctx context.Context, terms []string) error {
	data, err := json.Marshal(terms)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", Key, err)
	}
	return s.backend.Set(ctx, Key, data, s.ttl)
}
