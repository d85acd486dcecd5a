package database

// DefaultLimit caps list queries that do not specify their own limit.
const DefaultLimit = 1000

// QueryFilter carries offset pagination parameters for list operations.
type QueryFilter struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

// Normalize clamps the filter to sane values: a non-positive or missing
// limit becomes DefaultLimit, a negative offset becomes zero.
func (f QueryFilter) Normalize() QueryFilter {
	if f.Limit <= 0 || f.Limit > DefaultLimit {
		f.Limit = DefaultLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return f
}

// Paginated wraps a page of results with the filter that produced it.
type Paginated[T any] struct {
	Offset  int `json:"offset"`
	Limit   int `json:"limit"`
	Count   int `json:"count"`
	Results []T `json:"results"`
}

// NewPaginated builds a Paginated page from a normalized filter and the
// rows it matched.
func NewPaginated[T any](filter QueryFilter, results []T) Paginated[T] {
	if results == nil {
		results = []T{}
	}
	return Paginated[T]{
		Offset:  filter.Offset,
		Limit:   filter.Limit,
		Count:   len(results),
		Results: results,
	}
}
