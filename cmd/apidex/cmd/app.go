package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/viper"

	"github.com/donaldgifford/apidex/internal/api/client"
	"github.com/donaldgifford/apidex/internal/bookmark"
	"github.com/donaldgifford/apidex/internal/compare"
	"github.com/donaldgifford/apidex/internal/config"
	"github.com/donaldgifford/apidex/internal/recent"
	"github.com/donaldgifford/apidex/internal/storage"
	"github.com/donaldgifford/apidex/pkg/logger"
	domain "github.com/donaldgifford/apidex/pkg/types"
)

// app holds the dependencies shared by the commands.
type app struct {
	cfg       *config.Config
	log       *slog.Logger
	client    *client.Client
	recent    *recent.Store
	bookmarks *bookmark.Dates
	closers   []func() error
}

// newApp loads configuration and wires the client and local stores.
func newApp(ctx context.Context) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return newAppFromConfig(ctx, cfg)
}

func loadConfig() (*config.Config, error) {
	var cfg *config.Config
	if path := viper.ConfigFileUsed(); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, fmt.Errorf("loading config: %w", err)
		}
		cfg = loaded
	} else {
		cfg = config.Default()
	}

	if viper.IsSet("server") {
		cfg.API.BaseURL = viper.GetString("server")
	}
	return cfg, nil
}

func newAppFromConfig(ctx context.Context, cfg *config.Config) (*app, error) {
	a := &app{
		cfg: cfg,
		log: logger.NewWithWriter(os.Stderr, cfg.Logging.Level, cfg.Logging.Format),
	}

	a.client = client.New(cfg.API.BaseURL,
		client.WithTimeout(cfg.API.Timeout),
		client.WithToken(cfg.API.Token),
		client.WithRateLimit(cfg.API.RateLimit.PerSecond, cfg.API.RateLimit.Burst),
	)

	recentBackend, bookmarkBackend, err := a.backends(ctx)
	if err != nil {
		return nil, err
	}

	a.recent = recent.New(recentBackend,
		recent.WithLimit(cfg.Recent.RecentBound()),
		recent.WithTTL(cfg.Recent.TTL),
		recent.WithLogger(a.log),
	)
	a.bookmarks = bookmark.NewDates(bookmarkBackend, bookmark.WithLogger(a.log))
	return a, nil
}

// backends builds the recent-search backend from config. Bookmark dates
// share redis when it is configured and otherwise live in their own file.
func (a *app) backends(ctx context.Context) (storage.Backend, storage.Backend, error) {
	switch a.cfg.Recent.Backend {
	case config.BackendRedis:
		r, err := storage.DialRedis(ctx, a.cfg.Redis.URL, "apidex:")
		if err != nil {
			return nil, nil, err
		}
		a.closers = append(a.closers, r.Close)
		return r, r, nil
	case config.BackendCookie:
		return storage.NewCookie(a.cfg.Recent.Path), storage.NewFile(a.cfg.Bookmarks.Path), nil
	default:
		return storage.NewFile(a.cfg.Recent.Path), storage.NewFile(a.cfg.Bookmarks.Path), nil
	}
}

func (a *app) Close() error {
	var firstErr error
	for _, c := range a.closers {
		if err := c(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (a *app) baseParams() domain.QueryParams {
	p := domain.DefaultQueryParams()
	p.Size = a.cfg.Explore.PageSize
	p.Sort = domain.SortOption(a.cfg.Explore.Sort)
	p.Direction = domain.Direction(a.cfg.Explore.Direction)
	return p
}

func (a *app) newSelection() *compare.Selection {
	return compare.NewSelection(a.cfg.Compare.MaxItems)
}

func (a *app) newPricingLoader() *compare.PricingLoader {
	return compare.NewPricingLoader(a.client,
		compare.WithConcurrency(a.cfg.Compare.PricingConcurrency),
		compare.WithCache(a.cfg.Compare.PricingCacheSize, a.cfg.Compare.PricingCacheTTL),
		compare.WithLogger(a.log),
	)
}
