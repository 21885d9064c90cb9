package pagination

import (
	"math"
	"net/http"
	"strconv"
)

// Paginator is a [Window] plus the result-set bookkeeping around it.
type Paginator struct {
	Window

	Hits           int
	ResultsPerPage int
	IsPaginated    bool
	HasNext        bool
	HasPrevious    bool
	Next           int
	Previous       int
}

// FromRequest reads the page number off the request and builds the paginator
// for a result set of hits items, perPage at a time.
//
// A missing or malformed page falls back to 1 and a non-positive perPage is
// treated as 1; nothing here fails.
func FromRequest(r *http.Request, hits, perPage, adjacent int) Paginator {
	page, _ := strconv.Atoi(r.URL.Query().Get(PageParam))
	return New(page, hits, perPage, adjacent, ParseParams(r.URL.RawQuery), r.URL.Path)
}

// New builds a paginator without a request. See [FromRequest].
func New(page, hits, perPage, adjacent int, params []Param, basePath string) Paginator {
	perPage = max(perPage, 1)
	hits = max(hits, 0)

	pages := hits / perPage
	if hits%perPage != 0 {
		pages++
	}
	w := Compute(page, pages, adjacent, params, basePath)
	next := w.Page
	if next < math.MaxInt {
		next++
	}

	return Paginator{
		Window:         w,
		Hits:           hits,
		ResultsPerPage: perPage,
		IsPaginated:    pages > 1,
		HasNext:        w.Page < pages,
		HasPrevious:    w.Page > 1,
		Next:           next,
		Previous:       w.Page - 1,
	}
}

// Offset is the zero-based row offset of the current page, for SQL OFFSET.
// It saturates rather than wrapping for absurd page numbers.
func (p Paginator) Offset() int {
	if p.Page-1 > math.MaxInt/p.ResultsPerPage {
		return math.MaxInt
	}
	return (p.Page - 1) * p.ResultsPerPage
}

// Limit is the page size, for SQL LIMIT.
func (p Paginator) Limit() int {
	return p.ResultsPerPage
}
