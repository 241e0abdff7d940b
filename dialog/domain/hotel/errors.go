package hotel

import "errors"

var (
	ErrCitiesNotFound   = errors.New("no cities matched the query")
	ErrHotelsNotFound   = errors.New("no hotels matched the criteria")
	ErrNoResultsInRange = errors.New("no hotels within the requested distance")
	ErrPhotosNotFound   = errors.New("hotel has no photos")
	ErrUpstreamEmpty    = errors.New("upstream returned an empty response")
	ErrUpstreamTimeout  = errors.New("upstream request timed out")
	ErrBadUpstreamShape = errors.New("upstream response has an unexpected shape")
	ErrPageExhausted    = errors.New("no more hotels to show")
	ErrHistoryEmpty     = errors.New("search history is empty")
)

// Kind returns a short stable name for a hotel-search error, used in logs and
// monitor events. Unknown errors map to "internal".
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrCitiesNotFound):
		return "cities_not_found"
	case errors.Is(err, ErrHotelsNotFound):
		return "hotels_not_found"
	case errors.Is(err, ErrNoResultsInRange):
		return "no_results_in_range"
	case errors.Is(err, ErrPhotosNotFound):
		return "photos_not_found"
	case errors.Is(err, ErrUpstreamEmpty):
		return "empty"
	case errors.Is(err, ErrUpstreamTimeout):
		return "timeout"
	case errors.Is(err, ErrBadUpstreamShape):
		return "bad_result"
	case errors.Is(err, ErrPageExhausted):
		return "page_index"
	case errors.Is(err, ErrHistoryEmpty):
		return "history_empty"
	default:
		return "internal"
	}
}

// IsUserFacing reports whether err is one of the search errors that is
// reported to the user instead of being treated as an internal failure.
func IsUserFacing(err error) bool {
	k := Kind(err)
	return k != "" && k != "internal"
}
