package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	domain "github.com/donaldgifford/apidex/pkg/types"
)

// ListAPIs returns one page of the directory listing for params.
func (c *Client) ListAPIs(ctx context.Context, params domain.QueryParams) (*domain.ResultPage, error) {
	page, err := call[domain.ResultPage](
		ctx, c, "list_apis", http.MethodGet, "/api/v1/apis?"+params.Key(), nil,
	)
	if err != nil {
		return nil, err
	}
	return &page, nil
}

// ToggleFavorite flips the favorite state of an API for the current member.
func (c *Client) ToggleFavorite(ctx context.Context, apiID int64) (*domain.FavoriteResult, error) {
	res, err := call[domain.FavoriteResult](
		ctx, c, "favorite", http.MethodPost, fmt.Sprintf("/api/v1/apis/%d/favorite", apiID), nil,
	)
	if err != nil {
		return nil, err
	}
	if res.APIID == 0 {
		res.APIID = apiID
	}
	return &res, nil
}

// GetPricing returns the pricing details of an API.
func (c *Client) GetPricing(ctx context.Context, apiID int64) (*domain.Pricing, error) {
	p, err := call[domain.Pricing](
		ctx, c, "pricing", http.MethodGet, fmt.Sprintf("/api/v1/apis/%d/pricing", apiID), nil,
	)
	if err != nil {
		return nil, err
	}
	if p.APIID == 0 {
		p.APIID = apiID
	}
	return &p, nil
}

// ListFavorites returns one page of the member's favorited APIs.
func (c *Client) ListFavorites(ctx context.Context, page, size int) (*domain.ResultPage, error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	if size > 0 {
		q.Set("size", strconv.Itoa(size))
	}

	res, err := call[domain.ResultPage](
		ctx, c, "favorites", http.MethodGet, "/api/v1/apis/favorites?"+q.Encode(), nil,
	)
	if err != nil {
		return nil, err
	}
	return &res, nil
}
