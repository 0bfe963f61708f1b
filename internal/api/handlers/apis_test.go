package handlers_test

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donaldgifford/apidex/internal/api/handlers"
	"github.com/donaldgifford/apidex/internal/catalog"
	domain "github.com/donaldgifford/apidex/pkg/types"
)

func testCatalog() *catalog.Catalog {
	day := func(d int) time.Time { return time.Date(2026, time.May, d, 0, 0, 0, 0, time.UTC) }
	return catalog.New([]domain.API{
		{APIID: 1, Name: "Weather Now", PricingType: "FREE", AuthType: "API_KEY", Rating: 4.2, FavoriteCount: 5, CreatedAt: day(1)},
		{APIID: 2, Name: "MapTiles", PricingType: "PAID", AuthType: "OAUTH2", Rating: 3.1, FavoriteCount: 50, CreatedAt: day(2)},
		{APIID: 3, Name: "PayFlow", PricingType: "FREEMIUM", AuthType: "OAUTH2", Rating: 4.8, FavoriteCount: 12, CreatedAt: day(3)},
	}, []domain.Pricing{
		{APIID: 2, PricingType: "PAID", Plans: []domain.PricingPlan{{Name: "Pro", Price: 20, Currency: "USD"}}},
	})
}

func decodePage(t *testing.T, body []byte) domain.Envelope[domain.ResultPage] {
	t.Helper()
	var env domain.Envelope[domain.ResultPage]
	require.NoError(t, json.Unmarshal(body, &env))
	return env
}

func TestAPIsHandler_ListAPIs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		query      string
		wantStatus int
		wantIDs    []int64
		wantTotal  int
		wantLast   bool
	}{
		{
			name:       "defaults sort latest desc",
			query:      "",
			wantStatus: http.StatusOK,
			wantIDs:    []int64{3, 2, 1},
			wantTotal:  3,
			wantLast:   true,
		},
		{
			name:       "popular with page size",
			query:      "?sort=POPULAR&direction=DESC&size=2",
			wantStatus: http.StatusOK,
			wantIDs:    []int64{2, 3},
			wantTotal:  3,
			wantLast:   false,
		},
		{
			name:       "second page",
			query:      "?sort=POPULAR&direction=DESC&size=2&page=1",
			wantStatus: http.StatusOK,
			wantIDs:    []int64{1},
			wantTotal:  3,
			wantLast:   true,
		},
		{
			name:       "filters",
			query:      "?pricingTypes=FREE,FREEMIUM&authTypes=OAUTH2&minRating=4.5",
			wantStatus: http.StatusOK,
			wantIDs:    []int64{3},
			wantTotal:  1,
			wantLast:   true,
		},
		{
			name:       "search text",
			query:      "?q=weather",
			wantStatus: http.StatusOK,
			wantIDs:    []int64{1},
			wantTotal:  1,
			wantLast:   true,
		},
		{
			name:       "invalid sort returns 422",
			query:      "?sort=RANDOM",
			wantStatus: http.StatusUnprocessableEntity,
		},
		{
			name:       "oversized page returns 422",
			query:      "?size=1000",
			wantStatus: http.StatusUnprocessableEntity,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, api := humatest.New(t)
			handlers.RegisterAPIRoutes(api, handlers.NewAPIsHandler(testCatalog()))

			resp := api.Get("/api/v1/apis" + tt.query)
			require.Equal(t, tt.wantStatus, resp.Code, resp.Body.String())
			if tt.wantStatus != http.StatusOK {
				return
			}

			env := decodePage(t, resp.Body.Bytes())
			assert.True(t, env.IsSuccess)
			assert.Equal(t, "COMMON200", env.Code)

			ids := make([]int64, 0, len(env.Result.Content))
			for _, a := range env.Result.Content {
				ids = append(ids, a.APIID)
			}
			assert.Equal(t, tt.wantIDs, ids)
			assert.Equal(t, tt.wantTotal, env.Result.TotalElements)
			assert.Equal(t, tt.wantLast, env.Result.Last)
		})
	}
}

func TestAPIsHandler_EmptyResultHasEmptyContent(t *testing.T) {
	t.Parallel()

	_, api := humatest.New(t)
	handlers.RegisterAPIRoutes(api, handlers.NewAPIsHandler(testCatalog()))

	resp := api.Get("/api/v1/apis?q=nothing")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"content":[]`)
	assert.Contains(t, resp.Body.String(), `"totalElements":0`)
}

func TestAPIsHandler_ToggleFavorite(t *testing.T) {
	t.Parallel()

	_, api := humatest.New(t)
	handlers.RegisterAPIRoutes(api, handlers.NewAPIsHandler(testCatalog()))

	resp := api.Post("/api/v1/apis/2/favorite")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"isFavorited":true`)

	favs := decodePage(t, api.Get("/api/v1/apis/favorites").Body.Bytes())
	require.Len(t, favs.Result.Content, 1)
	assert.Equal(t, int64(2), favs.Result.Content[0].APIID)

	resp = api.Post("/api/v1/apis/2/favorite")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"isFavorited":false`)

	resp = api.Post("/api/v1/apis/99/favorite")
	require.Equal(t, http.StatusNotFound, resp.Code)
	assert.Contains(t, resp.Body.String(), "api 99 not found")
}

func TestAPIsHandler_GetPricing(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		path       string
		wantStatus int
		wantBody   string
	}{
		{
			name:       "published pricing",
			path:       "/api/v1/apis/2/pricing",
			wantStatus: http.StatusOK,
			wantBody:   `"name":"Pro"`,
		},
		{
			name:       "no pricing returns 404",
			path:       "/api/v1/apis/1/pricing",
			wantStatus: http.StatusNotFound,
			wantBody:   "no pricing published for api 1",
		},
		{
			name:       "unknown api returns 404",
			path:       "/api/v1/apis/77/pricing",
			wantStatus: http.StatusNotFound,
			wantBody:   "api 77 not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, api := humatest.New(t)
			handlers.RegisterAPIRoutes(api, handlers.NewAPIsHandler(testCatalog()))

			resp := api.Get(tt.path)
			require.Equal(t, tt.wantStatus, resp.Code)
			assert.Contains(t, resp.Body.String(), tt.wantBody)
		})
	}
}
