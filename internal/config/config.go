// Package config handles loading and validating the apidex configuration
// from YAML files with environment variable substitution.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	domain "github.com/donaldgifford/apidex/pkg/types"
)

// Recent-search backends.
const (
	BackendFile   = "file"
	BackendCookie = "cookie"
	BackendRedis  = "redis"
)

// Recent-search variants. The compact variant keeps the short history of the
// mobile layout, the full variant the longer desktop one.
const (
	VariantCompact = "compact"
	VariantFull    = "full"
)

// Config is the top-level apidex configuration.
type Config struct {
	API          APIConfig          `yaml:"api"`
	Explore      ExploreConfig      `yaml:"explore"`
	Recent       RecentConfig       `yaml:"recent"`
	Compare      CompareConfig      `yaml:"compare"`
	Bookmarks    BookmarksConfig    `yaml:"bookmarks"`
	Autocomplete AutocompleteConfig `yaml:"autocomplete"`
	Redis        RedisConfig        `yaml:"redis"`
	Server       ServerConfig       `yaml:"server"`
	Logging      LoggingConfig      `yaml:"logging"`
}

// APIConfig defines how the directory REST API is reached.
type APIConfig struct {
	BaseURL   string          `yaml:"base_url"`
	Token     string          `yaml:"token"`
	Timeout   time.Duration   `yaml:"timeout"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

// RateLimitConfig throttles outgoing API calls.
type RateLimitConfig struct {
	PerSecond float64 `yaml:"per_second"`
	Burst     int     `yaml:"burst"`
}

// ExploreConfig defines the default listing session.
type ExploreConfig struct {
	PageSize  int    `yaml:"page_size"`
	Sort      string `yaml:"sort"`
	Direction string `yaml:"direction"`
	MaxPages  int    `yaml:"max_pages"` // negative for no limit
}

// RecentConfig defines recent-search persistence.
type RecentConfig struct {
	Backend string        `yaml:"backend"` // file, cookie, redis
	Variant string        `yaml:"variant"` // compact, full
	Limit   int           `yaml:"limit"`   // overrides the variant bound when set
	TTL     time.Duration `yaml:"ttl"`     // cookie and redis only
	Path    string        `yaml:"path"`
}

// CompareConfig defines the compare selection and view.
type CompareConfig struct {
	MaxItems           int           `yaml:"max_items"`
	PricingConcurrency int           `yaml:"pricing_concurrency"`
	PricingCacheTTL    time.Duration `yaml:"pricing_cache_ttl"`
	PricingCacheSize   int           `yaml:"pricing_cache_size"`
}

// BookmarksConfig defines where bookmark dates are kept.
type BookmarksConfig struct {
	Path string `yaml:"path"`
}

// AutocompleteConfig defines search-as-you-type behaviour.
type AutocompleteConfig struct {
	Debounce time.Duration `yaml:"debounce"`
	Size     int           `yaml:"size"`
}

// RedisConfig defines the shared redis store.
type RedisConfig struct {
	URL string `yaml:"url"`
}

// ServerConfig defines the mock directory server.
type ServerConfig struct {
	Host         string        `yaml:"host"`
	Port         int           `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	SeedSize     int           `yaml:"seed_size"`
}

// LoggingConfig defines logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text, json
}

// RecentBound returns the maximum recent-search history length.
func (r *RecentConfig) RecentBound() int {
	if r.Limit > 0 {
		return r.Limit
	}
	if r.Variant == VariantCompact {
		return 5
	}
	return 10
}

// Load reads and parses a YAML config file, performing environment variable
// substitution and validation.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // config path from trusted CLI flag
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	return Parse(data)
}

// Parse builds a Config from raw YAML.
func Parse(data []byte) (*Config, error) {
	expanded := os.ExpandEnv(string(data))

	cfg := &Config{}
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("parsing config YAML: %w", err)
	}

	applyDefaults(cfg)

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// Default returns the configuration used when no config file is present.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

func applyDefaults(cfg *Config) {
	applyAPIDefaults(&cfg.API)
	applyExploreDefaults(&cfg.Explore)
	applyRecentDefaults(&cfg.Recent)
	applyCompareDefaults(&cfg.Compare)
	applyBookmarksDefaults(&cfg.Bookmarks)
	applyAutocompleteDefaults(&cfg.Autocomplete)
	applyServerDefaults(&cfg.Server)
	applyLoggingDefaults(&cfg.Logging)
}

func applyAPIDefaults(a *APIConfig) {
	if a.BaseURL == "" {
		a.BaseURL = "http://localhost:8080"
	}
	if a.Timeout == 0 {
		a.Timeout = 10 * time.Second
	}
	if a.RateLimit.PerSecond == 0 {
		a.RateLimit.PerSecond = 10
	}
	if a.RateLimit.Burst == 0 {
		a.RateLimit.Burst = 20
	}
}

func applyExploreDefaults(e *ExploreConfig) {
	if e.PageSize == 0 {
		e.PageSize = domain.DefaultPageSize
	}
	if e.Sort == "" {
		e.Sort = string(domain.DefaultSort)
	}
	if e.Direction == "" {
		e.Direction = string(domain.DefaultDirection)
	}
	if e.MaxPages == 0 {
		e.MaxPages = 5
	}
}

func applyRecentDefaults(r *RecentConfig) {
	if r.Backend == "" {
		r.Backend = BackendFile
	}
	if r.Variant == "" {
		r.Variant = VariantFull
	}
	if r.TTL == 0 {
		r.TTL = 30 * 24 * time.Hour
	}
	if r.Path == "" {
		name := "recent.json"
		if r.Backend == BackendCookie {
			name = "cookies.txt"
		}
		r.Path = filepath.Join(stateDir(), name)
	}
}

func applyCompareDefaults(c *CompareConfig) {
	if c.MaxItems == 0 {
		c.MaxItems = 3
	}
	if c.PricingConcurrency == 0 {
		c.PricingConcurrency = 4
	}
	if c.PricingCacheTTL == 0 {
		c.PricingCacheTTL = 5 * time.Minute
	}
	if c.PricingCacheSize == 0 {
		c.PricingCacheSize = 64
	}
}

func applyBookmarksDefaults(b *BookmarksConfig) {
	if b.Path == "" {
		b.Path = filepath.Join(stateDir(), "bookmarks.json")
	}
}

func applyAutocompleteDefaults(a *AutocompleteConfig) {
	if a.Debounce == 0 {
		a.Debounce = 300 * time.Millisecond
	}
	if a.Size == 0 {
		a.Size = 5
	}
}

func applyServerDefaults(s *ServerConfig) {
	if s.Host == "" {
		s.Host = "0.0.0.0"
	}
	if s.Port == 0 {
		s.Port = 8080
	}
	if s.ReadTimeout == 0 {
		s.ReadTimeout = 30 * time.Second
	}
	if s.WriteTimeout == 0 {
		s.WriteTimeout = 30 * time.Second
	}
	if s.SeedSize == 0 {
		s.SeedSize = 120
	}
}

func applyLoggingDefaults(l *LoggingConfig) {
	if l.Level == "" {
		l.Level = "info"
	}
	if l.Format == "" {
		l.Format = "text"
	}
}

// stateDir is where local state files live unless a path is configured.
func stateDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "apidex")
	}
	return ".apidex"
}

func validate(cfg *Config) error {
	var errs []error

	if u, err := url.Parse(cfg.API.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Errorf("api.base_url must be an absolute URL (got %q)", cfg.API.BaseURL))
	}
	if cfg.API.RateLimit.PerSecond < 0 {
		errs = append(errs, fmt.Errorf("api.rate_limit.per_second must not be negative"))
	}

	if cfg.Explore.PageSize < 1 || cfg.Explore.PageSize > 100 {
		errs = append(errs, fmt.Errorf("explore.page_size must be between 1 and 100"))
	}
	if !domain.SortOption(cfg.Explore.Sort).Valid() {
		errs = append(errs, fmt.Errorf(
			"explore.sort must be one of: LATEST, POPULAR, MOST_REVIEWED (got %q)",
			cfg.Explore.Sort,
		))
	}
	if !domain.Direction(cfg.Explore.Direction).Valid() {
		errs = append(errs, fmt.Errorf(
			"explore.direction must be one of: ASC, DESC (got %q)",
			cfg.Explore.Direction,
		))
	}

	switch cfg.Recent.Backend {
	case BackendFile, BackendCookie:
	case BackendRedis:
		if cfg.Redis.URL == "" {
			errs = append(errs, fmt.Errorf("redis.url is required when recent.backend is redis"))
		}
	default:
		errs = append(errs, fmt.Errorf(
			"recent.backend must be one of: file, cookie, redis (got %q)",
			cfg.Recent.Backend,
		))
	}
	if cfg.Recent.Variant != VariantCompact && cfg.Recent.Variant != VariantFull {
		errs = append(errs, fmt.Errorf(
			"recent.variant must be one of: compact, full (got %q)",
			cfg.Recent.Variant,
		))
	}

	if cfg.Compare.MaxItems < 1 {
		errs = append(errs, fmt.Errorf("compare.max_items must be at least 1"))
	}

	return errors.Join(errs...)
}
