// Package explore implements the incremental list session behind the
// explore view: query state, the deduplicating result accumulator, the
// scroll sentinel, and the session that ties them to the directory API.
package explore

import (
	"strings"

	domain "github.com/donaldgifford/apidex/pkg/types"
)

// QueryState holds the current search, filter, sort and page parameters.
// Changes to the search text, filters or sort are session boundaries and
// rewind the page to 0; paging forward never is.
type QueryState struct {
	params domain.QueryParams
}

// NewQueryState starts from base, normalized to page 0 with defaults filled.
func NewQueryState(base domain.QueryParams) *QueryState {
	def := domain.DefaultQueryParams()
	if base.Size <= 0 {
		base.Size = def.Size
	}
	if !base.Sort.Valid() {
		base.Sort = def.Sort
	}
	if !base.Direction.Valid() {
		base.Direction = def.Direction
	}
	base.Page = 0
	base.Q = strings.TrimSpace(base.Q)
	return &QueryState{params: base}
}

// Params returns a copy of the current parameters.
func (q *QueryState) Params() domain.QueryParams {
	p := q.params
	if p.MinRating != nil {
		r := *p.MinRating
		p.MinRating = &r
	}
	return p
}

// SetQuery changes the search text. It reports whether this was a session
// boundary; unchanged text is not.
func (q *QueryState) SetQuery(text string) bool {
	text = strings.TrimSpace(text)
	if text == q.params.Q {
		return false
	}
	q.params.Q = text
	q.params.Page = 0
	return true
}

// SetFilters replaces the filter fields and reports whether they changed.
func (q *QueryState) SetFilters(f domain.Filters) bool {
	if q.params.Filters().Equal(f) {
		return false
	}
	q.params.PricingTypes = f.PricingTypes
	q.params.AuthTypes = f.AuthTypes
	q.params.MinRating = nil
	if f.MinRating != nil {
		r := *f.MinRating
		q.params.MinRating = &r
	}
	q.params.Page = 0
	return true
}

// SetSort changes the ordering and reports whether it changed. Invalid values
// keep the current setting.
func (q *QueryState) SetSort(sort domain.SortOption, dir domain.Direction) bool {
	if !sort.Valid() {
		sort = q.params.Sort
	}
	if !dir.Valid() {
		dir = q.params.Direction
	}
	if sort == q.params.Sort && dir == q.params.Direction {
		return false
	}
	q.params.Sort = sort
	q.params.Direction = dir
	q.params.Page = 0
	return true
}

// NextPage advances the page cursor and returns the new page.
func (q *QueryState) NextPage() int {
	q.params.Page++
	return q.params.Page
}
