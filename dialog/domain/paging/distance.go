package paging

import "github.com/AzielCF/az-hotelbot/dialog/domain/hotel"

// TruncateByDistance drops the suffix of a distance-sorted batch that lies
// beyond maxKm. The batch is scanned from the end so only the tail is
// inspected in the common case.
func TruncateByDistance(batch []hotel.Result, maxKm float64) ([]hotel.Result, error) {
	end := len(batch)
	for end > 0 && batch[end-1].DistanceKm > maxKm {
		end--
	}
	if end == 0 {
		return nil, hotel.ErrNoResultsInRange
	}
	return batch[:end], nil
}
