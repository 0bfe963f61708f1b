package compare

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/sync/errgroup"

	"github.com/donaldgifford/apidex/internal/api/client"
	"github.com/donaldgifford/apidex/internal/metrics"
	"github.com/donaldgifford/apidex/pkg/logger"
	domain "github.com/donaldgifford/apidex/pkg/types"
)

// PricingFetcher loads the pricing of one API.
type PricingFetcher interface {
	GetPricing(ctx context.Context, id int64) (*domain.Pricing, error)
}

// PricingLoader fetches pricing for the compare view in parallel and keeps
// recent answers in an expiring LRU.
type PricingLoader struct {
	fetcher     PricingFetcher
	concurrency int
	cache       *lru.LRU[int64, *domain.Pricing]
	log         *slog.Logger
}

// LoaderOption configures a PricingLoader.
type LoaderOption func(*loaderOptions)

type loaderOptions struct {
	concurrency int
	cacheSize   int
	cacheTTL    time.Duration
	log         *slog.Logger
}

// WithConcurrency bounds the number of pricing requests in flight.
func WithConcurrency(n int) LoaderOption {
	return func(o *loaderOptions) { o.concurrency = n }
}

// WithCache sets the pricing cache size and entry lifetime.
func WithCache(size int, ttl time.Duration) LoaderOption {
	return func(o *loaderOptions) {
		o.cacheSize = size
		o.cacheTTL = ttl
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) LoaderOption {
	return func(o *loaderOptions) { o.log = l }
}

// NewPricingLoader creates a loader over f.
func NewPricingLoader(f PricingFetcher, opts ...LoaderOption) *PricingLoader {
	o := loaderOptions{
		concurrency: 4,
		cacheSize:   64,
		cacheTTL:    5 * time.Minute,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.concurrency < 1 {
		o.concurrency = 1
	}
	if o.cacheSize < 1 {
		o.cacheSize = 1
	}

	return &PricingLoader{
		fetcher:     f,
		concurrency: o.concurrency,
		cache:       lru.NewLRU[int64, *domain.Pricing](o.cacheSize, nil, o.cacheTTL),
		log:         logger.Component(o.log, "compare"),
	}
}

// Load returns one Comparison per item, in item order. APIs the server has
// no pricing for get a nil Pricing. On error the comparisons loaded so far
// are returned alongside it.
func (l *PricingLoader) Load(ctx context.Context, items []domain.API) ([]domain.Comparison, error) {
	out := make([]domain.Comparison, len(items))
	for i := range items {
		out[i].API = items[i]
	}

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(l.concurrency)

	var mu sync.Mutex
	for i := range items {
		id := items[i].APIID
		if p, ok := l.cache.Get(id); ok {
			metrics.PricingCacheHitsTotal.Inc()
			out[i].Pricing = p
			continue
		}

		eg.Go(func() error {
			p, err := l.fetcher.GetPricing(ctx, id)
			if err != nil {
				if client.IsNotFound(err) {
					l.log.Debug("no pricing published", "api_id", id)
					return nil
				}
				return fmt.Errorf("loading pricing for api %d: %w", id, err)
			}
			l.cache.Add(id, p)

			mu.Lock()
			out[i].Pricing = p
			mu.Unlock()
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return out, err
	}
	return out, nil
}

// Forget drops the cached pricing of id.
func (l *PricingLoader) Forget(id int64) {
	l.cache.Remove(id)
}
