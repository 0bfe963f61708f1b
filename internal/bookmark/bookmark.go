// Package bookmark records the day each API was favorited and groups the
// user's favorites by that day.
package bookmark

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/donaldgifford/apidex/internal/metrics"
	"github.com/donaldgifford/apidex/internal/storage"
	"github.com/donaldgifford/apidex/pkg/logger"
	domain "github.com/donaldgifford/apidex/pkg/types"
)

// Key is the storage key bookmark dates are persisted under.
const Key = "bookmarkDates"

// maxFavoritePages caps Favorites so a misbehaving server cannot page forever.
const maxFavoritePages = 50

// Toggler flips the favorite flag of an API on the server.
type Toggler interface {
	ToggleFavorite(ctx context.Context, apiID int64) (*domain.FavoriteResult, error)
}

// Lister pages through the user's favorited APIs.
type Lister interface {
	ListFavorites(ctx context.Context, page, size int) (*domain.ResultPage, error)
}

// Dates is the apiId to bookmark-date map kept in a storage.Backend.
type Dates struct {
	backend storage.Backend
	now     func() time.Time
	log     *slog.Logger
}

// Option configures Dates.
type Option func(*Dates)

// WithClock sets the clock used to stamp new bookmarks.
func WithClock(now func() time.Time) Option {
	return func(d *Dates) { d.now = now }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(d *Dates) { d.log = logger.Component(l, "bookmark") }
}

// NewDates creates a Dates over backend.
func NewDates(backend storage.Backend, opts ...Option) *Dates {
	d := &Dates{
		backend: backend,
		now:     time.Now,
		log:     logger.Discard(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Load returns the recorded dates. Absent, corrupt or unreachable data is an
// empty map.
func (d *Dates) Load(ctx context.Context) map[int64]string {
	dates, err := d.load(ctx)
	if err != nil {
		d.log.Debug("bookmark dates unavailable", "error", err)
		return map[int64]string{}
	}
	return dates
}

// load reads the stored dates. Absent and corrupt values read as empty;
// backend failures are returned so writers never overwrite what they could
// not read.
func (d *Dates) load(ctx context.Context) (map[int64]string, error) {
	data, err := d.backend.Get(ctx, Key)
	if errors.Is(err, storage.ErrNotFound) {
		return map[int64]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", Key, err)
	}

	dates := map[int64]string{}
	if err := json.Unmarshal(data, &dates); err != nil {
		metrics.StorageCorruptReadsTotal.WithLabelValues(Key).Inc()
		d.log.Debug("bookmark dates corrupt, treating as empty", "error", err)
		return map[int64]string{}, nil
	}
	if dates == nil {
		dates = map[int64]string{}
	}
	return dates, nil
}

// Record stamps id with today's date.
func (d *Dates) Record(ctx context.Context, id int64) error {
	dates, err := d.load(ctx)
	if err != nil {
		return err
	}
	dates[id] = d.now().Format(domain.BookmarkDateLayout)
	return d.save(ctx, dates)
}

// Forget drops the date of id. Forgetting an unrecorded id writes nothing.
func (d *Dates) Forget(ctx context.Context, id int64) error {
	dates, err := d.load(ctx)
	if err != nil {
		return err
	}
	if _, ok := dates[id]; !ok {
		return nil
	}
	delete(dates, id)
	return d.save(ctx, dates)
}

func (d *Dates) save(ctx context.Context, dates map[int64]string) error {
	data, err := json.Marshal(dates)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", Key, err)
	}
	if err := d.backend.Set(ctx, Key, data, 0); err != nil {
		return fmt.Errorf("saving %s: %w", Key, err)
	}
	return nil
}

// Toggle flips the favorite on the server and records or forgets the local
// date to match the server's answer.
func (d *Dates) Toggle(ctx context.Context, t Toggler, id int64) (*domain.FavoriteResult, error) {
	res, err := t.ToggleFavorite(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("toggling favorite %d: %w", id, err)
	}

	if res.IsFavorited {
		err = d.Record(ctx, id)
	} else {
		err = d.Forget(ctx, id)
	}
	if err != nil {
		return res, fmt.Errorf("updating bookmark date for %d: %w", id, err)
	}
	d.log.Debug("favorite toggled", "api_id", id, "favorited", res.IsFavorited)
	return res, nil
}

// Group buckets apis by recorded bookmark date, newest date first, with
// undated APIs in a trailing "unknown" group. Input order is kept within a
// group.
func (d *Dates) Group(ctx context.Context, apis []domain.API) []domain.BookmarkGroup {
	return GroupByDate(apis, d.Load(ctx))
}

// Favorites loads every favorited API from l and groups them.
func (d *Dates) Favorites(ctx context.Context, l Lister, pageSize int) ([]domain.BookmarkGroup, error) {
	if pageSize <= 0 {
		pageSize = domain.DefaultPageSize
	}

	var all []domain.API
	for page := 0; page < maxFavoritePages; page++ {
		res, err := l.ListFavorites(ctx, page, pageSize)
		if err != nil {
			return nil, fmt.Errorf("listing favorites page %d: %w", page, err)
		}
		all = append(all, res.Content...)
		if res.Last || len(res.Content) == 0 {
			break
		}
	}
	return d.Group(ctx, all), nil
}

// GroupByDate is Group over an explicit date map.
func GroupByDate(apis []domain.API, dates map[int64]string) []domain.BookmarkGroup {
	byDate := map[string][]domain.API{}
	var keys []string
	for i := range apis {
		date := dates[apis[i].APIID]
		if _, err := time.Parse(domain.BookmarkDateLayout, date); err != nil {
			date = domain.UnknownBookmarkDate
		}
		if _, ok := byDate[date]; !ok && date != domain.UnknownBookmarkDate {
			keys = append(keys, date)
		}
		byDate[date] = append(byDate[date], apis[i])
	}

	sort.Sort(sort.Reverse(sort.StringSlice(keys)))

	groups := make([]domain.BookmarkGroup, 0, len(keys)+1)
	for _, k := range keys {
		groups = append(groups, domain.BookmarkGroup{Date: k, APIs: byDate[k]})
	}
	if unknown, ok := byDate[domain.UnknownBookmarkDate]; ok {
		groups = append(groups, domain.BookmarkGroup{Date: domain.UnknownBookmarkDate, APIs: unknown})
	}
	return groups
}
