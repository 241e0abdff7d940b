package rapidapi

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/AzielCF/az-hotelbot/dialog/domain/hotel"
	"github.com/AzielCF/az-hotelbot/pkg/htmltext"
)

const kmPerMile = 1.609

type citiesResponse struct {
	Suggestions []struct {
		Group    string `json:"group"`
		Entities []struct {
			DestinationID string `json:"destinationId"`
			Name          string `json:"name"`
			Type          string `json:"type"`
		} `json:"entities"`
	} `json:"suggestions"`
}

// cities reads the first suggestion group, which holds the cities.
func (r citiesResponse) cities() ([]hotel.City, error) {
	if len(r.Suggestions) == 0 {
		return nil, fmt.Errorf("%w: no suggestion groups", hotel.ErrBadUpstreamShape)
	}
	entities := r.Suggestions[0].Entities
	if len(entities) == 0 {
		return nil, hotel.ErrCitiesNotFound
	}
	seen := make(map[string]struct{}, len(entities))
	out := make([]hotel.City, 0, len(entities))
	for _, e := range entities {
		if _, dup := seen[e.DestinationID]; dup || e.DestinationID == "" {
			continue
		}
		seen[e.DestinationID] = struct{}{}
		out = append(out, hotel.City{ID: e.DestinationID, Name: htmltext.Plain(e.Name)})
	}
	if len(out) == 0 {
		return nil, hotel.ErrCitiesNotFound
	}
	return out, nil
}

type hotelsResponse struct {
	Result string `json:"result"`
	Data   *struct {
		Body struct {
			SearchResults struct {
				Results []rawHotel `json:"results"`
			} `json:"searchResults"`
		} `json:"body"`
	} `json:"data"`
}

type rawHotel struct {
	ID         json64  `json:"id"`
	Name       string  `json:"name"`
	StarRating float64 `json:"starRating"`
	Address    struct {
		StreetAddress string `json:"streetAddress"`
		Locality      string `json:"locality"`
		CountryName   string `json:"countryName"`
	} `json:"address"`
	Landmarks []struct {
		Label    string `json:"label"`
		Distance string `json:"distance"`
	} `json:"landmarks"`
	RatePlan *struct {
		Price struct {
			ExactCurrent float64 `json:"exactCurrent"`
		} `json:"price"`
	} `json:"ratePlan"`
	Coordinate struct {
		Lat float64 `json:"lat"`
		Lon float64 `json:"lon"`
	} `json:"coordinate"`
	OptimizedThumbUrls *struct {
		SrpDesktop string `json:"srpDesktop"`
	} `json:"optimizedThumbUrls"`
}

// json64 accepts the hotel id as either a JSON number or a string.
type json64 string

func (j *json64) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		return nil
	}
	*j = json64(strings.Trim(string(b), `"`))
	return nil
}

func (r hotelsResponse) results(nights int) ([]hotel.Result, error) {
	if r.Result != "OK" || r.Data == nil {
		return nil, fmt.Errorf("%w: result is %q", hotel.ErrBadUpstreamShape, r.Result)
	}
	raw := r.Data.Body.SearchResults.Results
	out := make([]hotel.Result, 0, len(raw))
	for _, h := range raw {
		res, err := h.toResult(nights)
		if err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	return out, nil
}

func (h rawHotel) toResult(nights int) (hotel.Result, error) {
	if len(h.Landmarks) == 0 {
		return hotel.Result{}, fmt.Errorf("%w: hotel %s has no landmarks", hotel.ErrBadUpstreamShape, h.ID)
	}
	km, err := milesToKm(h.Landmarks[0].Distance)
	if err != nil {
		return hotel.Result{}, fmt.Errorf("%w: hotel %s: %v", hotel.ErrBadUpstreamShape, h.ID, err)
	}
	var perNight float64
	if h.RatePlan != nil {
		perNight = h.RatePlan.Price.ExactCurrent
	}

	res := hotel.Result{
		ID:           string(h.ID),
		Name:         h.Name,
		Stars:        h.StarRating,
		Address:      joinAddress(h.Address.StreetAddress, h.Address.Locality, h.Address.CountryName),
		DistanceKm:   km,
		CostPerNight: round2(perNight),
		TotalCost:    round2(perNight * float64(nights)),
		Coordinates:  hotel.Coordinates{Lat: h.Coordinate.Lat, Lon: h.Coordinate.Lon},
	}
	if h.OptimizedThumbUrls != nil && h.OptimizedThumbUrls.SrpDesktop != "" {
		res.PhotoURL = highResolution(h.OptimizedThumbUrls.SrpDesktop)
	}
	return res, nil
}

type photosResponse struct {
	HotelImages []struct {
		BaseURL string `json:"baseUrl"`
	} `json:"hotelImages"`
}

func (r photosResponse) urls() []string {
	out := make([]string, 0, len(r.HotelImages))
	for _, img := range r.HotelImages {
		if img.BaseURL == "" {
			continue
		}
		out = append(out, strings.ReplaceAll(img.BaseURL, "{size}", "y"))
	}
	return out
}

// milesToKm parses "0.7 miles".
func milesToKm(s string) (float64, error) {
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "miles"))
	s = strings.TrimSpace(strings.TrimSuffix(s, "mile"))
	miles, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	return round2(miles * kmPerMile), nil
}

// highResolution swaps the thumbnail size in a search result photo URL.
func highResolution(link string) string {
	return strings.ReplaceAll(strings.ReplaceAll(link, "250", "1280"), "140", "720")
}

func joinAddress(parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, ", ")
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
