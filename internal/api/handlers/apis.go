package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/donaldgifford/apidex/internal/catalog"
	domain "github.com/donaldgifford/apidex/pkg/types"
)

// successCode is the envelope code of every successful response.
const successCode = "COMMON200"

// Directory is the catalog the API handlers serve.
type Directory interface {
	Search(params domain.QueryParams) domain.ResultPage
	Favorites(page, size int) domain.ResultPage
	ToggleFavorite(id int64) (domain.FavoriteResult, error)
	Pricing(id int64) (*domain.Pricing, error)
	Len() int
}

// APIsHandler handles the directory listing, favorite and pricing endpoints.
type APIsHandler struct {
	dir Directory
}

// NewAPIsHandler creates a new APIsHandler.
func NewAPIsHandler(dir Directory) *APIsHandler {
	return &APIsHandler{dir: dir}
}

// --- Input/Output types ---

// ListAPIsInput is the query of a directory listing.
type ListAPIsInput struct {
	Page         int     `query:"page"         doc:"Zero-based page index"                  minimum:"0"`
	Size         int     `query:"size"         doc:"Page size (default 20)"                 minimum:"0" maximum:"100"`
	Sort         string  `query:"sort"         doc:"Sort field"                             enum:"LATEST,POPULAR,MOST_REVIEWED,"`
	Direction    string  `query:"direction"    doc:"Sort direction"                         enum:"ASC,DESC,"`
	Q            string  `query:"q"            doc:"Free-text search"`
	PricingTypes string  `query:"pricingTypes" doc:"Comma-separated pricing types"`
	AuthTypes    string  `query:"authTypes"    doc:"Comma-separated auth types"`
	MinRating    float64 `query:"minRating"    doc:"Minimum rating"                         minimum:"0" maximum:"5"`
}

// PageOutput is an enveloped page of APIs.
type PageOutput struct {
	Body domain.Envelope[domain.ResultPage]
}

// APIIDInput addresses a single API.
type APIIDInput struct {
	ID int64 `path:"id" doc:"API ID" minimum:"1"`
}

// FavoriteOutput is the enveloped result of a favorite toggle.
type FavoriteOutput struct {
	Body domain.Envelope[domain.FavoriteResult]
}

// PricingOutput is the enveloped pricing of an API.
type PricingOutput struct {
	Body domain.Envelope[domain.Pricing]
}

// ListFavoritesInput pages through favorites.
type ListFavoritesInput struct {
	Page int `query:"page" doc:"Zero-based page index"  minimum:"0"`
	Size int `query:"size" doc:"Page size (default 20)" minimum:"0" maximum:"100"`
}

// --- Handlers ---

// ListAPIs returns one page of APIs matching the search, filters and sort.
func (h *APIsHandler) ListAPIs(_ context.Context, input *ListAPIsInput) (*PageOutput, error) {
	params := domain.QueryParams{
		Page:         input.Page,
		Size:         input.Size,
		Sort:         domain.SortOption(input.Sort),
		Direction:    domain.Direction(input.Direction),
		Q:            input.Q,
		PricingTypes: input.PricingTypes,
		AuthTypes:    input.AuthTypes,
	}
	if params.Size == 0 {
		params.Size = domain.DefaultPageSize
	}
	if params.Sort == "" {
		params.Sort = domain.DefaultSort
	}
	if params.Direction == "" {
		params.Direction = domain.DefaultDirection
	}
	if input.MinRating > 0 {
		params.MinRating = &input.MinRating
	}

	return &PageOutput{Body: success(h.dir.Search(params))}, nil
}

// ListFavorites returns one page of favorited APIs.
func (h *APIsHandler) ListFavorites(_ context.Context, input *ListFavoritesInput) (*PageOutput, error) {
	size := input.Size
	if size == 0 {
		size = domain.DefaultPageSize
	}
	return &PageOutput{Body: success(h.dir.Favorites(input.Page, size))}, nil
}

// ToggleFavorite flips the favorite flag of an API.
func (h *APIsHandler) ToggleFavorite(_ context.Context, input *APIIDInput) (*FavoriteOutput, error) {
	res, err := h.dir.ToggleFavorite(input.ID)
	if err != nil {
		return nil, lookupError(input.ID, err)
	}
	return &FavoriteOutput{Body: success(res)}, nil
}

// GetPricing returns the pricing plans of an API.
func (h *APIsHandler) GetPricing(_ context.Context, input *APIIDInput) (*PricingOutput, error) {
	p, err := h.dir.Pricing(input.ID)
	if err != nil {
		return nil, lookupError(input.ID, err)
	}
	return &PricingOutput{Body: success(*p)}, nil
}

func success[T any](result T) domain.Envelope[T] {
	return domain.Envelope[T]{
		IsSuccess: true,
		Code:      successCode,
		Message:   "OK",
		Result:    result,
	}
}

func lookupError(id int64, err error) error {
	switch {
	case errors.Is(err, catalog.ErrNotFound):
		return huma.Error404NotFound(fmt.Sprintf("api %d not found", id))
	case errors.Is(err, catalog.ErrNoPricing):
		return huma.Error404NotFound(fmt.Sprintf("no pricing published for api %d", id))
	default:
		return huma.Error500InternalServerError("directory lookup failed: " + err.Error())
	}
}

// RegisterAPIRoutes registers the directory endpoints with the Huma API.
func RegisterAPIRoutes(api huma.API, h *APIsHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "list-apis",
		Method:      http.MethodGet,
		Path:        "/api/v1/apis",
		Summary:     "List APIs",
		Description: "Returns one page of APIs matching the search text, filters and sort.",
		Tags:        []string{"apis"},
	}, h.ListAPIs)

	huma.Register(api, huma.Operation{
		OperationID: "list-favorites",
		Method:      http.MethodGet,
		Path:        "/api/v1/apis/favorites",
		Summary:     "List favorited APIs",
		Description: "Returns one page of the caller's favorited APIs, newest first.",
		Tags:        []string{"favorites"},
	}, h.ListFavorites)

	huma.Register(api, huma.Operation{
		OperationID: "toggle-favorite",
		Method:      http.MethodPost,
		Path:        "/api/v1/apis/{id}/favorite",
		Summary:     "Toggle favorite",
		Description: "Flips the favorite flag of an API and returns the new state.",
		Tags:        []string{"favorites"},
		Errors:      []int{http.StatusNotFound},
	}, h.ToggleFavorite)

	huma.Register(api, huma.Operation{
		OperationID: "get-pricing",
		Method:      http.MethodGet,
		Path:        "/api/v1/apis/{id}/pricing",
		Summary:     "Get API pricing",
		Description: "Returns the pricing plans of an API.",
		Tags:        []string{"pricing"},
		Errors:      []int{http.StatusNotFound},
	}, h.GetPricing)
}
