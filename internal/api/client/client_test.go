package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/donaldgifford/apidex/pkg/types"
)

func writeEnvelope[T any](t *testing.T, w http.ResponseWriter, result T) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	assert.NoError(t, json.NewEncoder(w).Encode(domain.Envelope[T]{
		IsSuccess: true,
		Code:      "COMMON200",
		Result:    result,
	}))
}

func TestClient_ConnectionRefused(t *testing.T) {
	t.Parallel()

	c := New("http://127.0.0.1:1") // nothing listening
	_, err := c.ListAPIs(context.Background(), domain.DefaultQueryParams())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "API server not running")
}

func TestClient_HTTPError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		status   int
		body     string
		wantMsg  string
		wantCode string
	}{
		{
			name:     "envelope body",
			status:   http.StatusBadRequest,
			body:     `{"isSuccess":false,"code":"API400","message":"invalid sort"}`,
			wantMsg:  "invalid sort",
			wantCode: "API400",
		},
		{
			name:    "problem json body",
			status:  http.StatusNotFound,
			body:    `{"title":"Not Found","status":404,"detail":"api 9 not found"}`,
			wantMsg: "api 9 not found",
		},
		{
			name:    "plain body",
			status:  http.StatusInternalServerError,
			body:    `upstream exploded`,
			wantMsg: "upstream exploded",
		},
		{
			name:    "empty body",
			status:  http.StatusBadGateway,
			wantMsg: "Bad Gateway",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := New(srv.URL).GetPricing(context.Background(), 9)
			require.Error(t, err)

			var apiErr *APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.status, apiErr.StatusCode)
			assert.Equal(t, tt.wantMsg, apiErr.Message)
			assert.Equal(t, tt.wantCode, apiErr.Code)
			assert.Contains(t, err.Error(), "API error (HTTP")
		})
	}
}

func TestClient_UnsuccessfulEnvelope(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"isSuccess":false,"code":"MEMBER401","message":"login required"}`))
	}))
	defer srv.Close()

	_, err := New(srv.URL).ToggleFavorite(context.Background(), 3)
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusOK, apiErr.StatusCode)
	assert.Equal(t, "MEMBER401", apiErr.Code)
	assert.Equal(t, "login required", apiErr.Message)
}

func TestClient_DecodeError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html>`))
	}))
	defer srv.Close()

	_, err := New(srv.URL).ListAPIs(context.Background(), domain.DefaultQueryParams())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decoding response")
}

func TestClient_ListAPIs(t *testing.T) {
	t.Parallel()

	rating := 4.5
	params := domain.QueryParams{
		Page:         2,
		Size:         10,
		Sort:         domain.SortPopular,
		Direction:    domain.DirectionAsc,
		Q:            "weather",
		PricingTypes: "FREE,FREEMIUM",
		AuthTypes:    "API_KEY",
		MinRating:    &rating,
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/v1/apis", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "2", q.Get("page"))
		assert.Equal(t, "10", q.Get("size"))
		assert.Equal(t, "POPULAR", q.Get("sort"))
		assert.Equal(t, "ASC", q.Get("direction"))
		assert.Equal(t, "weather", q.Get("q"))
		assert.Equal(t, "FREE,FREEMIUM", q.Get("pricingTypes"))
		assert.Equal(t, "API_KEY", q.Get("authTypes"))
		assert.Equal(t, "4.5", q.Get("minRating"))

		writeEnvelope(t, w, domain.ResultPage{
			Content:       []domain.API{{APIID: 1, Name: "Weatherly"}},
			Last:          true,
			TotalElements: 21,
		})
	}))
	defer srv.Close()

	page, err := New(srv.URL).ListAPIs(context.Background(), params)
	require.NoError(t, err)
	assert.True(t, page.Last)
	assert.Equal(t, 21, page.TotalElements)
	require.Len(t, page.Content, 1)
	assert.Equal(t, int64(1), page.Content[0].APIID)
}

func TestClient_ToggleFavorite(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/apis/42/favorite", r.URL.Path)
		writeEnvelope(t, w, domain.FavoriteResult{IsFavorited: true})
	}))
	defer srv.Close()

	res, err := New(srv.URL).ToggleFavorite(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, int64(42), res.APIID, "missing apiId falls back to the requested one")
	assert.True(t, res.IsFavorited)
}

func TestClient_GetPricing(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/apis/7/pricing", r.URL.Path)
		writeEnvelope(t, w, domain.Pricing{
			APIID:       7,
			PricingType: "FREEMIUM",
			Plans:       []domain.PricingPlan{{Name: "Free", Price: 0}, {Name: "Pro", Price: 29}},
		})
	}))
	defer srv.Close()

	p, err := New(srv.URL).GetPricing(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, "FREEMIUM", p.PricingType)
	assert.Len(t, p.Plans, 2)
}

func TestClient_ListFavorites(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/apis/favorites", r.URL.Path)
		assert.Equal(t, "1", r.URL.Query().Get("page"))
		assert.Equal(t, "50", r.URL.Query().Get("size"))
		writeEnvelope(t, w, domain.ResultPage{Content: []domain.API{{APIID: 5}}, Last: true})
	}))
	defer srv.Close()

	page, err := New(srv.URL).ListFavorites(context.Background(), 1, 50)
	require.NoError(t, err)
	assert.Len(t, page.Content, 1)
}

func TestClient_SendsBearerToken(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer s3cret", r.Header.Get("Authorization"))
		writeEnvelope(t, w, domain.ResultPage{})
	}))
	defer srv.Close()

	_, err := New(srv.URL, WithToken("s3cret")).ListAPIs(context.Background(), domain.DefaultQueryParams())
	require.NoError(t, err)
}

func TestClient_RateLimitHonorsContext(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeEnvelope(t, w, domain.ResultPage{})
	}))
	defer srv.Close()

	c := New(srv.URL, WithRateLimit(0.001, 1))

	// First call consumes the only token.
	_, err := c.ListAPIs(context.Background(), domain.DefaultQueryParams())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = c.ListAPIs(ctx, domain.DefaultQueryParams())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limiter wait")
}

func TestIsNotFound(t *testing.T) {
	t.Parallel()

	assert.True(t, IsNotFound(&APIError{StatusCode: http.StatusNotFound}))
	assert.False(t, IsNotFound(&APIError{StatusCode: http.StatusBadRequest}))
	assert.False(t, IsNotFound(assert.AnError))
}

func TestOptions(t *testing.T) {
	t.Parallel()

	custom := &http.Client{}
	c := New("http://example.com/", WithHTTPClient(custom))
	assert.Same(t, custom, c.httpClient)
	assert.Equal(t, "http://example.com", c.baseURL)

	c = New("http://example.com", WithTimeout(2*time.Second), WithRateLimit(0, 0))
	assert.Equal(t, 2*time.Second, c.httpClient.Timeout)
	assert.Nil(t, c.limiter)
}
