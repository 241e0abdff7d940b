package hotel

import (
	"context"
	"time"
)

// PhotoNotFound is stored in place of a photo reference when the upstream
// result carried no thumbnail.
const PhotoNotFound = "link_not_found"

// City is a destination candidate returned by a city search.
type City struct {
	ID   string `json:"id" bson:"id"`
	Name string `json:"name" bson:"name"`
}

type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Result is one hotel as parsed from the upstream search.
type Result struct {
	ID           string      `json:"id"`
	Name         string      `json:"name"`
	Stars        float64     `json:"stars"`
	Address      string      `json:"address"`
	DistanceKm   float64     `json:"distance_km"`
	CostPerNight float64     `json:"cost_per_night"`
	TotalCost    float64     `json:"total_cost"`
	Coordinates  Coordinates `json:"coordinates"`
	PhotoURL     string      `json:"photo_url,omitempty"`
}

// PhotoRef returns the photo reference recorded for this result.
func (r Result) PhotoRef() string {
	if r.PhotoURL == "" {
		return PhotoNotFound
	}
	return r.PhotoURL
}

type SortOrder string

const (
	SortPriceAsc  SortOrder = "price_asc"
	SortPriceDesc SortOrder = "price_desc"
	SortDistance  SortOrder = "distance"
)

// PriceRange limits the nightly price, both bounds inclusive.
type PriceRange struct {
	Min int64
	Max int64
}

// Query is one page request against the upstream hotel search.
type Query struct {
	DestinationID string
	CheckIn       time.Time
	CheckOut      time.Time
	Sort          SortOrder
	Page          int
	PageSize      int
	Price         *PriceRange
}

// Nights returns the length of the stay, never less than one.
func (q Query) Nights() int {
	n := int(q.CheckOut.Sub(q.CheckIn).Hours() / 24)
	if n < 1 {
		return 1
	}
	return n
}

// Searcher is the upstream hotel search collaborator.
type Searcher interface {
	SearchCities(ctx context.Context, query string) ([]City, error)
	SearchHotels(ctx context.Context, q Query) ([]Result, error)
	HotelPhotos(ctx context.Context, hotelID string) ([]string, error)
}
