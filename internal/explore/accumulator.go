package explore

import (
	domain "github.com/donaldgifford/apidex/pkg/types"
)

// Accumulator merges paginated responses into one list that is unique by
// APIID and ordered by first appearance.
type Accumulator struct {
	items    []domain.API
	seen     map[int64]struct{}
	total    int
	hasTotal bool
	received bool
	last     bool
}

// NewAccumulator returns an empty accumulator.
func NewAccumulator() *Accumulator {
	return &Accumulator{seen: map[int64]struct{}{}}
}

// Reset replaces the list wholesale with page.Content.
func (a *Accumulator) Reset(page *domain.ResultPage) {
	a.Clear()
	a.received = true
	if page == nil {
		return
	}
	a.record(page)
	a.items = make([]domain.API, 0, len(page.Content))
	for i := range page.Content {
		a.items = append(a.items, page.Content[i])
		a.seen[page.Content[i].APIID] = struct{}{}
	}
}

// Append adds the items of page whose APIID is not listed yet, keeping the
// page's order, and returns how many were added. The page's last and total
// are recorded even when nothing is added.
func (a *Accumulator) Append(page *domain.ResultPage) int {
	a.received = true
	if page == nil {
		return 0
	}
	a.record(page)

	added := 0
	for i := range page.Content {
		id := page.Content[i].APIID
		if _, dup := a.seen[id]; dup {
			continue
		}
		a.seen[id] = struct{}{}
		a.items = append(a.items, page.Content[i])
		added++
	}
	return added
}

func (a *Accumulator) record(page *domain.ResultPage) {
	a.last = page.Last
	a.total = page.TotalElements
	a.hasTotal = true
}

// Clear empties the list and unsets total, last and received.
func (a *Accumulator) Clear() {
	a.items = nil
	a.seen = map[int64]struct{}{}
	a.total = 0
	a.hasTotal = false
	a.received = false
	a.last = false
}

// Items returns a copy of the accumulated list.
func (a *Accumulator) Items() []domain.API {
	out := make([]domain.API, len(a.items))
	copy(out, a.items)
	return out
}

// Len returns the number of accumulated items.
func (a *Accumulator) Len() int {
	return len(a.items)
}

// Total returns the server-reported total. ok is false until a page has been
// received, which keeps "unknown" distinct from 0.
func (a *Accumulator) Total() (total int, ok bool) {
	return a.total, a.hasTotal
}

// Received reports whether any page was applied since the last clear.
func (a *Accumulator) Received() bool {
	return a.received
}

// Last reports whether the most recent page was the final one.
func (a *Accumulator) Last() bool {
	return a.last
}

// Empty reports the "no results" state: a response arrived, the server
// reported zero matches, and nothing is listed.
func (a *Accumulator) Empty() bool {
	return a.received && a.hasTotal && a.total == 0 && len(a.items) == 0
}
