package criteria

import (
	"time"

	"github.com/AzielCF/az-hotelbot/dialog/domain/hotel"
)

const (
	DefaultMinPrice      int64   = 1
	DefaultMaxPrice      int64   = 5_000_000
	DefaultMaxDistanceKm float64 = 1000

	dateLayout = "2006-01-02"
)

// SearchCriteria is the finalized, immutable set of search parameters.
type SearchCriteria struct {
	Command       Command
	City          hotel.City
	DateIn        time.Time
	DateOut       time.Time
	MinPrice      int64
	MaxPrice      int64
	MaxDistanceKm float64
}

func (c SearchCriteria) Nights() int {
	return c.Query(1, 0).Nights()
}

// Query builds the upstream request for the given page.
func (c SearchCriteria) Query(page, pageSize int) hotel.Query {
	q := hotel.Query{
		DestinationID: c.City.ID,
		CheckIn:       c.DateIn,
		CheckOut:      c.DateOut,
		Sort:          c.Command.Sort(),
		Page:          page,
		PageSize:      pageSize,
	}
	if c.Command.HasFilters() {
		q.Price = &hotel.PriceRange{Min: c.MinPrice, Max: c.MaxPrice}
	}
	return q
}

// DateOf truncates t to a calendar day in UTC.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD day.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return t, nil
}

// FormatDate renders a day the way ParseDate reads it.
func FormatDate(t time.Time) string {
	return t.Format(dateLayout)
}
