// Package domain defines the core types shared by the apidex client, the
// explore session and the mock directory server.
package domain

import (
	"net/url"
	"strconv"
	"strings"
	"time"
)

// SortOption is the server-side ordering of an API listing.
type SortOption string

// Sort option constants.
const (
	SortLatest       SortOption = "LATEST"
	SortPopular      SortOption = "POPULAR"
	SortMostReviewed SortOption = "MOST_REVIEWED"
)

// Valid reports whether s is a known sort option.
func (s SortOption) Valid() bool {
	switch s {
	case SortLatest, SortPopular, SortMostReviewed:
		return true
	}
	return false
}

// Direction is the sort direction.
type Direction string

// Direction constants.
const (
	DirectionAsc  Direction = "ASC"
	DirectionDesc Direction = "DESC"
)

// Valid reports whether d is a known direction.
func (d Direction) Valid() bool {
	return d == DirectionAsc || d == DirectionDesc
}

// Query defaults.
const (
	DefaultPageSize  = 20
	DefaultSort      = SortLatest
	DefaultDirection = DirectionDesc
)

// QueryParams are the search, filter, sort and paging parameters of an
// API listing request. Two QueryParams are the same request when their
// Key values are equal.
type QueryParams struct {
	Page         int        `json:"page"`
	Size         int        `json:"size"`
	Sort         SortOption `json:"sort"`
	Direction    Direction  `json:"direction"`
	Q            string     `json:"q,omitempty"`
	PricingTypes string     `json:"pricingTypes,omitempty"`
	AuthTypes    string     `json:"authTypes,omitempty"`
	MinRating    *float64   `json:"minRating,omitempty"`
}

// DefaultQueryParams returns params for the first page of the default listing.
func DefaultQueryParams() QueryParams {
	return QueryParams{
		Size:      DefaultPageSize,
		Sort:      DefaultSort,
		Direction: DefaultDirection,
	}
}

// Values renders the params as URL query values. Empty optional fields are
// omitted.
func (p QueryParams) Values() url.Values {
	v := url.Values{}
	v.Set("page", strconv.Itoa(p.Page))
	v.Set("size", strconv.Itoa(p.Size))
	if p.Sort != "" {
		v.Set("sort", string(p.Sort))
	}
	if p.Direction != "" {
		v.Set("direction", string(p.Direction))
	}
	if p.Q != "" {
		v.Set("q", p.Q)
	}
	if p.PricingTypes != "" {
		v.Set("pricingTypes", p.PricingTypes)
	}
	if p.AuthTypes != "" {
		v.Set("authTypes", p.AuthTypes)
	}
	if p.MinRating != nil {
		v.Set("minRating", strconv.FormatFloat(*p.MinRating, 'f', -1, 64))
	}
	return v
}

// Key is the canonical serialized form of the params. url.Values.Encode
// sorts by key, so equal params always produce equal keys.
func (p QueryParams) Key() string {
	return p.Values().Encode()
}

// Filters returns the filter portion of the params.
func (p QueryParams) Filters() Filters {
	return Filters{
		PricingTypes: p.PricingTypes,
		AuthTypes:    p.AuthTypes,
		MinRating:    p.MinRating,
	}
}

// Filters are the narrowing fields of a listing request.
type Filters struct {
	PricingTypes string   `json:"pricingTypes,omitempty"`
	AuthTypes    string   `json:"authTypes,omitempty"`
	MinRating    *float64 `json:"minRating,omitempty"`
}

// Equal reports whether two filter sets select the same APIs.
func (f Filters) Equal(o Filters) bool {
	if f.PricingTypes != o.PricingTypes || f.AuthTypes != o.AuthTypes {
		return false
	}
	switch {
	case f.MinRating == nil && o.MinRating == nil:
		return true
	case f.MinRating == nil || o.MinRating == nil:
		return false
	default:
		return *f.MinRating == *o.MinRating
	}
}

// SplitList splits a comma-separated filter value such as "FREE,PAID" into
// trimmed, non-empty, upper-cased elements.
func SplitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.ToUpper(strings.TrimSpace(part))
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// API is a single entry in the directory. Identity is APIID.
type API struct {
	APIID         int64     `json:"apiId"`
	Name          string    `json:"name"`
	Description   string    `json:"description,omitempty"`
	Category      string    `json:"category,omitempty"`
	Rating        float64   `json:"rating"`
	ReviewCount   int       `json:"reviewCount"`
	FavoriteCount int       `json:"favoriteCount"`
	PricingType   string    `json:"pricingType,omitempty"`
	AuthType      string    `json:"authType,omitempty"`
	IsFavorited   bool      `json:"isFavorited"`
	ThumbnailURL  string    `json:"thumbnailUrl,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}

// ResultPage is one page of a paginated API listing.
type ResultPage struct {
	Content       []API `json:"content"`
	Last          bool  `json:"last"`
	TotalElements int   `json:"totalElements"`
}

// Envelope is the wrapper every directory endpoint responds with.
type Envelope[T any] struct {
	IsSuccess bool   `json:"isSuccess"`
	Code      string `json:"code,omitempty"`
	Message   string `json:"message,omitempty"`
	Result    T      `json:"result"`
}

// FavoriteResult is the outcome of a favorite toggle.
type FavoriteResult struct {
	APIID       int64 `json:"apiId"`
	IsFavorited bool  `json:"isFavorited"`
}

// PricingPlan is one purchasable tier of an API.
type PricingPlan struct {
	Name     string   `json:"name"`
	Price    float64  `json:"price"`
	Currency string   `json:"currency,omitempty"`
	Period   string   `json:"period,omitempty"`
	Features []string `json:"features,omitempty"`
}

// Pricing describes how an API is billed.
type Pricing struct {
	APIID       int64         `json:"apiId"`
	PricingType string        `json:"pricingType"`
	PricingURL  string        `json:"pricingUrl,omitempty"`
	Plans       []PricingPlan `json:"plans"`
}

// Comparison pairs a compared API with its pricing.
type Comparison struct {
	API     API      `json:"api"`
	Pricing *Pricing `json:"pricing,omitempty"`
}

// BookmarkDateLayout is the layout of recorded bookmark dates.
const BookmarkDateLayout = "2006-01-02"

// UnknownBookmarkDate labels favorites with no recorded date.
const UnknownBookmarkDate = "unknown"

// BookmarkGroup is a set of favorited APIs bookmarked on the same day.
type BookmarkGroup struct {
	Date string `json:"date"`
	APIs []API  `json:"apis"`
}
