package cmd

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donaldgifford/apidex/internal/api/client"
	"github.com/donaldgifford/apidex/internal/catalog"
	"github.com/donaldgifford/apidex/internal/explore"
	"github.com/donaldgifford/apidex/pkg/logger"
	domain "github.com/donaldgifford/apidex/pkg/types"
)

func TestNewServer_HealthChecks(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(newServer(catalog.Seed(10, 3), logger.Discard()))
	t.Cleanup(srv.Close)

	for _, path := range []string{"/healthz", "/readyz", "/metrics"} {
		resp, err := http.Get(srv.URL + path) //nolint:noctx // test
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode, path)
		require.NoError(t, resp.Body.Close())
	}
}

func TestNewServer_OpenAPI(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(newServer(catalog.Seed(1, 1), logger.Discard()))
	t.Cleanup(srv.Close)

	resp, err := http.Get(srv.URL + "/openapi.json") //nolint:noctx // test
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var doc struct {
		Paths map[string]any `json:"paths"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&doc))
	assert.Contains(t, doc.Paths, "/api/v1/apis")
	assert.Contains(t, doc.Paths, "/api/v1/apis/{id}/favorite")
	assert.Contains(t, doc.Paths, "/api/v1/apis/{id}/pricing")
	assert.Contains(t, doc.Paths, "/api/v1/apis/favorites")
}

func TestNewServer_ClientRoundTrip(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(newServer(catalog.Seed(25, 9), logger.Discard()))
	t.Cleanup(srv.Close)
	ctx := context.Background()

	c := client.New(srv.URL)
	p := domain.DefaultQueryParams()
	p.Size = 10
	s := explore.NewSession(c, explore.WithBaseParams(p))
	require.NoError(t, s.Start(ctx))

	loaded, err := explore.NewSentinel(s, nil).Exhaust(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, loaded)

	st := s.Snapshot()
	assert.Len(t, st.Items, 25)
	assert.True(t, st.Last)
	require.NotNil(t, st.Total)
	assert.Equal(t, 25, *st.Total)

	fav, err := c.ToggleFavorite(ctx, st.Items[0].APIID)
	require.NoError(t, err)
	assert.True(t, fav.IsFavorited)

	favs, err := c.ListFavorites(ctx, 0, 5)
	require.NoError(t, err)
	require.Len(t, favs.Content, 1)
	assert.Equal(t, st.Items[0].APIID, favs.Content[0].APIID)

	_, err = c.GetPricing(ctx, 9999)
	require.Error(t, err)
	assert.True(t, client.IsNotFound(err))
}
