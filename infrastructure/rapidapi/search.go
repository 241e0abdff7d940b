package rapidapi

import (
	"context"
	"errors"
	"net/url"
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/AzielCF/az-hotelbot/dialog/domain/criteria"
	"github.com/AzielCF/az-hotelbot/dialog/domain/hotel"
)

const (
	pathCities = "/locations/v2/search"
	pathHotels = "/properties/list"
	pathPhotos = "/properties/get-hotel-photos"

	landmark = "City center"
	locale   = "en_US"
	currency = "USD"
)

var sortOrders = map[hotel.SortOrder]string{
	hotel.SortPriceAsc:  "PRICE",
	hotel.SortPriceDesc: "PRICE_HIGHEST_FIRST",
	hotel.SortDistance:  "DISTANCE_FROM_LANDMARK",
}

var _ hotel.Searcher = (*Client)(nil)

// SearchCities looks a city name up. Answers without a body are retried a
// few times; the first structured answer is final.
func (c *Client) SearchCities(ctx context.Context, query string) ([]hotel.City, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("locale", locale)
	params.Set("currency", currency)

	var (
		resp citiesResponse
		err  error
	)
	for attempt := 1; attempt <= c.cityAttempts; attempt++ {
		resp = citiesResponse{}
		err = c.get(ctx, pathCities, params, &resp)
		if err == nil || !errors.Is(err, hotel.ErrUpstreamEmpty) {
			break
		}
		logrus.Debugf("[RAPIDAPI] city search %q attempt %d/%d: %v", query, attempt, c.cityAttempts, err)
	}
	if err != nil {
		return nil, err
	}
	return resp.cities()
}

// SearchHotels fetches one result page.
func (c *Client) SearchHotels(ctx context.Context, q hotel.Query) ([]hotel.Result, error) {
	sortOrder, ok := sortOrders[q.Sort]
	if !ok {
		sortOrder = sortOrders[hotel.SortPriceAsc]
	}
	params := url.Values{}
	params.Set("destinationId", q.DestinationID)
	params.Set("pageNumber", strconv.Itoa(q.Page))
	params.Set("pageSize", strconv.Itoa(q.PageSize))
	params.Set("checkIn", criteria.FormatDate(q.CheckIn))
	params.Set("checkOut", criteria.FormatDate(q.CheckOut))
	params.Set("adults1", "1")
	params.Set("sortOrder", sortOrder)
	params.Set("locale", locale)
	params.Set("currency", currency)
	params.Set("landmarkIds", landmark)
	if q.Price != nil {
		params.Set("priceMin", strconv.FormatInt(q.Price.Min, 10))
		params.Set("priceMax", strconv.FormatInt(q.Price.Max, 10))
	}

	var resp hotelsResponse
	if err := c.get(ctx, pathHotels, params, &resp); err != nil {
		return nil, err
	}
	return resp.results(q.Nights())
}

// HotelPhotos returns full size photo URLs. Lists are cached because the
// photo browser asks again on every page flip.
func (c *Client) HotelPhotos(ctx context.Context, hotelID string) ([]string, error) {
	if urls, ok := c.photos.get(hotelID); ok {
		return urls, nil
	}
	params := url.Values{}
	params.Set("id", hotelID)

	var resp photosResponse
	if err := c.get(ctx, pathPhotos, params, &resp); err != nil {
		return nil, err
	}
	urls := resp.urls()
	c.photos.put(hotelID, urls)
	return urls, nil
}
