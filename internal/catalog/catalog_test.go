package catalog

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/donaldgifford/apidex/pkg/types"
)

func fixtureAPIs() []domain.API {
	day := func(d int) time.Time { return time.Date(2026, time.March, d, 0, 0, 0, 0, time.UTC) }
	return []domain.API{
		{APIID: 1, Name: "Weather Now", Category: "Weather", PricingType: "FREE", AuthType: "API_KEY", Rating: 4.5, ReviewCount: 10, FavoriteCount: 3, CreatedAt: day(1)},
		{APIID: 2, Name: "MapTiles", Category: "Maps", PricingType: "PAID", AuthType: "OAUTH2", Rating: 3.9, ReviewCount: 50, FavoriteCount: 9, CreatedAt: day(3)},
		{APIID: 3, Name: "PayFlow", Description: "weather-proof payments", Category: "Payments", PricingType: "FREEMIUM", AuthType: "OAUTH2", Rating: 4.9, ReviewCount: 5, FavoriteCount: 1, CreatedAt: day(2)},
		{APIID: 4, Name: "Geo Lookup", Category: "Maps", PricingType: "FREE", AuthType: "NONE", Rating: 2.0, ReviewCount: 50, FavoriteCount: 0, CreatedAt: day(4)},
	}
}

func pageIDs(p domain.ResultPage) []int64 {
	out := make([]int64, 0, len(p.Content))
	for i := range p.Content {
		out = append(out, p.Content[i].APIID)
	}
	return out
}

func ptr(f float64) *float64 { return &f }

func TestCatalog_Search(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		params    domain.QueryParams
		wantIDs   []int64
		wantTotal int
		wantLast  bool
	}{
		{
			name:      "latest first by default",
			params:    domain.DefaultQueryParams(),
			wantIDs:   []int64{4, 2, 3, 1},
			wantTotal: 4,
			wantLast:  true,
		},
		{
			name:      "text matches name and description",
			params:    domain.QueryParams{Size: 10, Q: "WEATHER", Sort: domain.SortLatest, Direction: domain.DirectionAsc},
			wantIDs:   []int64{1, 3},
			wantTotal: 2,
			wantLast:  true,
		},
		{
			name:      "pricing filter list",
			params:    domain.QueryParams{Size: 10, PricingTypes: "free, freemium", Sort: domain.SortPopular, Direction: domain.DirectionDesc},
			wantIDs:   []int64{1, 3, 4},
			wantTotal: 3,
			wantLast:  true,
		},
		{
			name:      "auth and rating filters",
			params:    domain.QueryParams{Size: 10, AuthTypes: "OAUTH2", MinRating: ptr(4)},
			wantIDs:   []int64{3},
			wantTotal: 1,
			wantLast:  true,
		},
		{
			name:      "most reviewed ties break on id",
			params:    domain.QueryParams{Size: 2, Sort: domain.SortMostReviewed, Direction: domain.DirectionDesc},
			wantIDs:   []int64{4, 2},
			wantTotal: 4,
			wantLast:  false,
		},
		{
			name:      "second page",
			params:    domain.QueryParams{Page: 1, Size: 3, Sort: domain.SortLatest, Direction: domain.DirectionDesc},
			wantIDs:   []int64{1},
			wantTotal: 4,
			wantLast:  true,
		},
		{
			name:      "page past the end",
			params:    domain.QueryParams{Page: 9, Size: 3},
			wantIDs:   []int64{},
			wantTotal: 4,
			wantLast:  true,
		},
		{
			name:      "no matches",
			params:    domain.QueryParams{Size: 5, Q: "zzz"},
			wantIDs:   []int64{},
			wantTotal: 0,
			wantLast:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c := New(fixtureAPIs(), nil)
			got := c.Search(tt.params)
			assert.Equal(t, tt.wantIDs, pageIDs(got))
			assert.Equal(t, tt.wantTotal, got.TotalElements)
			assert.Equal(t, tt.wantLast, got.Last)
			assert.NotNil(t, got.Content)
		})
	}
}

func TestCatalog_ToggleFavorite(t *testing.T) {
	t.Parallel()

	c := New(fixtureAPIs(), nil)

	res, err := c.ToggleFavorite(2)
	require.NoError(t, err)
	assert.True(t, res.IsFavorited)

	page := c.Search(domain.QueryParams{Size: 10, Q: "MapTiles"})
	require.Len(t, page.Content, 1)
	assert.True(t, page.Content[0].IsFavorited)
	assert.Equal(t, 10, page.Content[0].FavoriteCount)

	favs := c.Favorites(0, 10)
	assert.Equal(t, []int64{2}, pageIDs(favs))

	res, err = c.ToggleFavorite(2)
	require.NoError(t, err)
	assert.False(t, res.IsFavorited)
	assert.Empty(t, c.Favorites(0, 10).Content)

	_, err = c.ToggleFavorite(404)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestCatalog_Pricing(t *testing.T) {
	t.Parallel()

	c := New(fixtureAPIs(), []domain.Pricing{
		{APIID: 2, PricingType: "PAID", Plans: []domain.PricingPlan{{Name: "Pro", Price: 20}}},
	})

	p, err := c.Pricing(2)
	require.NoError(t, err)
	assert.Equal(t, "PAID", p.PricingType)
	p.Plans[0].Name = "mutated"
	again, err := c.Pricing(2)
	require.NoError(t, err)
	assert.Equal(t, "Pro", again.Plans[0].Name)

	_, err = c.Pricing(1)
	require.ErrorIs(t, err, ErrNoPricing)
	_, err = c.Pricing(99)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestNew_DropsDuplicateIDs(t *testing.T) {
	t.Parallel()

	apis := fixtureAPIs()
	apis = append(apis, domain.API{APIID: 1, Name: "dup"})
	c := New(apis, nil)

	assert.Equal(t, 4, c.Len())
}

func TestSeed_Deterministic(t *testing.T) {
	t.Parallel()

	a := Seed(50, 7).Search(domain.QueryParams{Size: 50})
	b := Seed(50, 7).Search(domain.QueryParams{Size: 50})

	assert.Equal(t, a, b)
	assert.Equal(t, 50, a.TotalElements)
	for i := range a.Content {
		assert.GreaterOrEqual(t, a.Content[i].Rating, 1.0)
		assert.LessOrEqual(t, a.Content[i].Rating, 5.0)
	}
}

func TestSeed_PagesDoNotOverlap(t *testing.T) {
	t.Parallel()

	c := Seed(45, 1)
	seen := map[int64]bool{}
	for page := 0; ; page++ {
		p := c.Search(domain.QueryParams{Page: page, Size: 10, Sort: domain.SortPopular, Direction: domain.DirectionDesc})
		for _, id := range pageIDs(p) {
			assert.False(t, seen[id], "api %d on two pages", id)
			seen[id] = true
		}
		if p.Last {
			break
		}
	}
	assert.Len(t, seen, 45)
}

func TestLoadFixture(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "catalog.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"apis": [{"apiId": 1, "name": "One", "isFavorited": true}],
		"pricing": [{"apiId": 1, "pricingType": "FREE", "plans": []}]
	}`), 0o600))

	c, err := LoadFixture(path)
	require.NoError(t, err)
	assert.Equal(t, 1, c.Len())
	assert.Equal(t, []int64{1}, pageIDs(c.Favorites(0, 5)))

	_, err = LoadFixture(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
}
