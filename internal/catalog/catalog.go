// Package catalog is the in-memory API directory served by the mock server.
package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"
	"sync"

	domain "github.com/donaldgifford/apidex/pkg/types"
)

// Lookup errors.
var (
	ErrNotFound  = errors.New("api not found")
	ErrNoPricing = errors.New("api has no published pricing")
)

// Catalog is a mutable, concurrency-safe set of APIs with per-user favorite
// state and pricing.
type Catalog struct {
	mu        sync.RWMutex
	apis      []domain.API
	byID      map[int64]int
	favorites map[int64]struct{}
	pricing   map[int64]*domain.Pricing
}

// Fixture is the on-disk form of a catalog.
type Fixture struct {
	APIs    []domain.API     `json:"apis"`
	Pricing []domain.Pricing `json:"pricing"`
}

// New builds a catalog from apis and their pricing. APIs already flagged as
// favorited start in the favorite set.
func New(apis []domain.API, pricing []domain.Pricing) *Catalog {
	c := &Catalog{
		apis:      make([]domain.API, 0, len(apis)),
		byID:      make(map[int64]int, len(apis)),
		favorites: map[int64]struct{}{},
		pricing:   make(map[int64]*domain.Pricing, len(pricing)),
	}
	for i := range apis {
		if _, dup := c.byID[apis[i].APIID]; dup {
			continue
		}
		c.byID[apis[i].APIID] = len(c.apis)
		c.apis = append(c.apis, apis[i])
		if apis[i].IsFavorited {
			c.favorites[apis[i].APIID] = struct{}{}
		}
	}
	for i := range pricing {
		p := pricing[i]
		c.pricing[p.APIID] = &p
	}
	return c
}

// LoadFixture reads a catalog from a JSON fixture file.
func LoadFixture(path string) (*Catalog, error) {
	data, err := os.ReadFile(path) //nolint:gosec // fixture path from trusted CLI flag
	if err != nil {
		return nil, fmt.Errorf("reading fixture: %w", err)
	}
	var f Fixture
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing fixture: %w", err)
	}
	return New(f.APIs, f.Pricing), nil
}

// Len returns the number of APIs.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.apis)
}

// Search filters, sorts and pages the catalog.
func (c *Catalog) Search(p domain.QueryParams) domain.ResultPage {
	c.mu.RLock()
	defer c.mu.RUnlock()

	q := strings.ToLower(strings.TrimSpace(p.Q))
	pricing := domain.SplitList(p.PricingTypes)
	auth := domain.SplitList(p.AuthTypes)

	var matched []domain.API
	for i := range c.apis {
		a := c.apis[i]
		if q != "" && !matchesText(a, q) {
			continue
		}
		if len(pricing) > 0 && !slices.Contains(pricing, strings.ToUpper(a.PricingType)) {
			continue
		}
		if len(auth) > 0 && !slices.Contains(auth, strings.ToUpper(a.AuthType)) {
			continue
		}
		if p.MinRating != nil && a.Rating < *p.MinRating {
			continue
		}
		_, a.IsFavorited = c.favorites[a.APIID]
		matched = append(matched, a)
	}

	sortAPIs(matched, p.Sort, p.Direction)
	return paginate(matched, p.Page, p.Size)
}

// Favorites pages through the favorited APIs, newest first.
func (c *Catalog) Favorites(page, size int) domain.ResultPage {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var favs []domain.API
	for i := range c.apis {
		if _, ok := c.favorites[c.apis[i].APIID]; ok {
			a := c.apis[i]
			a.IsFavorited = true
			favs = append(favs, a)
		}
	}
	sortAPIs(favs, domain.SortLatest, domain.DirectionDesc)
	return paginate(favs, page, size)
}

// ToggleFavorite flips the favorite flag of id and adjusts its count.
func (c *Catalog) ToggleFavorite(id int64) (domain.FavoriteResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	idx, ok := c.byID[id]
	if !ok {
		return domain.FavoriteResult{}, ErrNotFound
	}

	a := &c.apis[idx]
	if _, fav := c.favorites[id]; fav {
		delete(c.favorites, id)
		if a.FavoriteCount > 0 {
			a.FavoriteCount--
		}
		return domain.FavoriteResult{APIID: id, IsFavorited: false}, nil
	}
	c.favorites[id] = struct{}{}
	a.FavoriteCount++
	return domain.FavoriteResult{APIID: id, IsFavorited: true}, nil
}

// Pricing returns the pricing of id.
func (c *Catalog) Pricing(id int64) (*domain.Pricing, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if _, ok := c.byID[id]; !ok {
		return nil, ErrNotFound
	}
	p, ok := c.pricing[id]
	if !ok {
		return nil, ErrNoPricing
	}
	out := *p
	out.Plans = slices.Clone(p.Plans)
	return &out, nil
}

func matchesText(a domain.API, q string) bool {
	return strings.Contains(strings.ToLower(a.Name), q) ||
		strings.Contains(strings.ToLower(a.Description), q) ||
		strings.Contains(strings.ToLower(a.Category), q)
}

// sortAPIs orders in place. Ties break on APIID so pages never overlap.
func sortAPIs(apis []domain.API, sort domain.SortOption, dir domain.Direction) {
	cmpField := func(a, b domain.API) int {
		switch sort {
		case domain.SortPopular:
			return a.FavoriteCount - b.FavoriteCount
		case domain.SortMostReviewed:
			return a.ReviewCount - b.ReviewCount
		default:
			return a.CreatedAt.Compare(b.CreatedAt)
		}
	}

	slices.SortStableFunc(apis, func(a, b domain.API) int {
		c := cmpField(a, b)
		if c == 0 {
			c = cmpInt64(a.APIID, b.APIID)
		}
		if dir != domain.DirectionAsc {
			c = -c
		}
		return c
	})
}

func cmpInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func paginate(apis []domain.API, page, size int) domain.ResultPage {
	if size <= 0 {
		size = domain.DefaultPageSize
	}
	if page < 0 {
		page = 0
	}
	total := len(apis)
	start := min(page*size, total)
	end := min(start+size, total)

	content := make([]domain.API, 0, end-start)
	content = append(content, apis[start:end]...)
	return domain.ResultPage{
		Content:       content,
		Last:          end >= total,
		TotalElements: total,
	}
}
