// Package paging holds the cursor over incrementally fetched hotel pages.
package paging

import (
	"github.com/AzielCF/az-hotelbot/dialog/domain/hotel"
)

// PageSize is the number of results requested per upstream page.
const PageSize = 25

type Outcome int

const (
	OutcomeItem Outcome = iota
	OutcomeRequiresNextPage
	OutcomeExhausted
)

func (o Outcome) String() string {
	switch o {
	case OutcomeItem:
		return "item"
	case OutcomeRequiresNextPage:
		return "requires_next_page"
	case OutcomeExhausted:
		return "exhausted"
	}
	return "unknown"
}

// Cursor walks the results fetched so far. Index always points at the next
// result to present; Page is the last page fetched.
type Cursor struct {
	Page            int            `json:"page"`
	Index           int            `json:"index"`
	Items           []hotel.Result `json:"items,omitempty"`
	LastPageReached bool           `json:"last_page_reached"`
}

// Next yields the next result or tells the caller what to do instead.
func (c *Cursor) Next() (hotel.Result, Outcome) {
	if c.Index < len(c.Items) {
		item := c.Items[c.Index]
		c.Index++
		return item, OutcomeItem
	}
	if c.LastPageReached {
		return hotel.Result{}, OutcomeExhausted
	}
	return hotel.Result{}, OutcomeRequiresNextPage
}

// Unread steps back over the last yielded result.
func (c *Cursor) Unread() {
	if c.Index > 0 {
		c.Index--
	}
}

// Append adds a freshly fetched page. The index is left untouched.
func (c *Cursor) Append(page int, batch []hotel.Result) {
	c.Items = append(c.Items, batch...)
	c.Page = page
	if IsLastPage(len(batch)) {
		c.LastPageReached = true
	}
}

// Presented returns how many results have been handed out.
func (c *Cursor) Presented() int {
	return c.Index
}

// IsLastPage applies the short-page heuristic. A full page says nothing, an
// empty one is reported separately by the fetcher.
func IsLastPage(n int) bool {
	return n > 0 && n < PageSize
}
