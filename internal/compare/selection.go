// Package compare holds the bounded set of APIs picked for side-by-side
// comparison and loads their pricing for the compare view.
package compare

import (
	"errors"
	"sync"

	"github.com/donaldgifford/apidex/internal/metrics"
	domain "github.com/donaldgifford/apidex/pkg/types"
)

// DefaultMax is the default selection bound.
const DefaultMax = 3

// ErrLimitReached is returned by Add when the selection is full.
var ErrLimitReached = errors.New("compare limit reached")

// Selection is an insertion-ordered set of APIs keyed by APIID, never larger
// than its bound. It is safe for concurrent use.
type Selection struct {
	mu    sync.Mutex
	max   int
	order []domain.API
	index map[int64]struct{}
}

// NewSelection returns an empty selection bounded at max. A non-positive max
// uses DefaultMax.
func NewSelection(maxItems int) *Selection {
	if maxItems <= 0 {
		maxItems = DefaultMax
	}
	return &Selection{
		max:   maxItems,
		index: make(map[int64]struct{}, maxItems),
	}
}

// Add appends api. Adding an API that is already selected reports false with
// no error. A full selection is left unchanged and ErrLimitReached returned.
func (s *Selection) Add(api domain.API) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.index[api.APIID]; ok {
		return false, nil
	}
	if len(s.order) >= s.max {
		metrics.CompareRejectionsTotal.Inc()
		return false, ErrLimitReached
	}
	s.index[api.APIID] = struct{}{}
	s.order = append(s.order, api)
	return true, nil
}

// Remove drops the API with the given id and reports whether it was selected.
func (s *Selection) Remove(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.index[id]; !ok {
		return false
	}
	delete(s.index, id)
	for i := range s.order {
		if s.order[i].APIID == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return true
}

// Clear empties the selection.
func (s *Selection) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.order = nil
	s.index = make(map[int64]struct{}, s.max)
}

// Has reports whether id is selected.
func (s *Selection) Has(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.index[id]
	return ok
}

// Items returns the selected APIs in the order they were added.
func (s *Selection) Items() []domain.API {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.API, len(s.order))
	copy(out, s.order)
	return out
}

// Len returns the number of selected APIs.
func (s *Selection) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.order)
}

// Max returns the selection bound.
func (s *Selection) Max() int {
	return s.max
}
