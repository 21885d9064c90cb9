// Package pagination computes the data behind page-link controls: a bounded
// window of page numbers around the current page and the request's query
// string with the page parameter stripped out.
package pagination

import (
	"net/url"
	"slices"
	"strconv"
	"strings"
)

// PageParam is the query parameter reserved for the page number.
const PageParam = "page"

// DefaultAdjacent is how many page links are shown on each side of the current page.
const DefaultAdjacent = 2

// Param is a single query parameter. Order matters, so these travel in slices
// rather than in a [url.Values].
type Param struct {
	Key   string
	Value string
}

// Window is everything a template needs to render first, previous, numbered,
// next and last page links.
type Window struct {
	Page     int
	Pages    int
	Adjacent int

	// Ascending, no duplicates, always within [1, Pages].
	PageNumbers []int
	ShowFirst   bool
	ShowLast    bool

	// The incoming query minus the page parameter, in the order received.
	QueryWithoutPage   string
	HasOtherParameters bool
	BasePath           string
}

// Compute builds the window for currentPage out of totalPages. Inputs are
// clamped rather than rejected: currentPage to at least 1, adjacent and
// totalPages to at least 0.
func Compute(currentPage, totalPages, adjacent int, params []Param, basePath string) Window {
	currentPage = max(currentPage, 1)
	totalPages = max(totalPages, 0)
	adjacent = max(adjacent, 0)

	// currentPage-adjacent can't overflow once both are clamped; the upper
	// bound is compared by distance so a huge adjacent can't wrap around.
	lo := max(currentPage-adjacent, 1)
	hi := totalPages
	if currentPage <= totalPages && adjacent < totalPages-currentPage {
		hi = currentPage + adjacent
	}

	numbers := []int{}
	for n := lo; n <= hi; n++ {
		numbers = append(numbers, n)
		if n == hi {
			break
		}
	}

	query := queryWithout(params, PageParam)

	return Window{
		Page:               currentPage,
		Pages:              totalPages,
		Adjacent:           adjacent,
		PageNumbers:        numbers,
		ShowFirst:          !slices.Contains(numbers, 1),
		ShowLast:           totalPages > 0 && !slices.Contains(numbers, totalPages),
		QueryWithoutPage:   query,
		HasOtherParameters: query != "",
		BasePath:           basePath,
	}
}

// URL links to the given page, keeping every other query parameter.
func (w Window) URL(page int) string {
	var b strings.Builder
	b.WriteString(w.BasePath)
	b.WriteByte('?')
	if w.HasOtherParameters {
		b.WriteString(w.QueryWithoutPage)
		b.WriteByte('&')
	}
	b.WriteString(PageParam)
	b.WriteByte('=')
	b.WriteString(strconv.Itoa(page))

	return b.String()
}

// IsCurrent reports whether n is the page being viewed. Handy in templates.
func (w Window) IsCurrent(n int) bool {
	return n == w.Page
}

func queryWithout(params []Param, skip string) string {
	pairs := make([]string, 0, len(params))
	for _, p := range params {
		if p.Key == skip {
			continue
		}
		pairs = append(pairs, url.QueryEscape(p.Key)+"="+url.QueryEscape(p.Value))
	}

	return strings.Join(pairs, "&")
}

// ParseParams splits a raw query string into its parameters, in order.
//
// A pair that fails to unescape is kept as it appeared on the wire.
func ParseParams(rawQuery string) []Param {
	params := []Param{}
	for _, pair := range strings.Split(rawQuery, "&") {
		if pair == "" {
			continue
		}

		key, value, _ := strings.Cut(pair, "=")
		if k, err := url.QueryUnescape(key); err == nil {
			key = k
		}
		if v, err := url.QueryUnescape(value); err == nil {
			value = v
		}
		params = append(params, Param{Key: key, Value: value})
	}

	return params
}
