package application

import (
	"errors"

	"github.com/AzielCF/az-hotelbot/dialog/domain/criteria"
	"github.com/AzielCF/az-hotelbot/dialog/domain/hotel"
)

const (
	msgInternal     = "⚠️ Something went wrong. Please try again."
	msgStaleButton  = "⌛ This button is no longer active."
	msgUseCommand   = "🤖 Please choose an action on the keyboard or enter a command. /help lists them."
	msgDateTooEarly = "❗ This date is not available, pick a later one."
	msgDateOrder    = "❗ The check-out date must be after the check-in date."
)

// userMessage maps an error to the single text shown to the user for it.
func userMessage(err error) string {
	switch {
	case errors.Is(err, hotel.ErrCitiesNotFound):
		return "🔎 No cities found for this name. Try another one."
	case errors.Is(err, hotel.ErrHotelsNotFound):
		return "🏨 No hotels found for these criteria."
	case errors.Is(err, hotel.ErrNoResultsInRange):
		return "📏 No hotels found within the chosen distance from the center."
	case errors.Is(err, hotel.ErrPhotosNotFound):
		return "📷 This hotel has no photos."
	case errors.Is(err, hotel.ErrUpstreamEmpty):
		return "⚠️ The hotel service returned nothing. Please try again later."
	case errors.Is(err, hotel.ErrUpstreamTimeout):
		return "⌛ The hotel service did not answer in time. Please try again later."
	case errors.Is(err, hotel.ErrBadUpstreamShape):
		return "⚠️ The hotel service sent an unexpected answer. Please try again later."
	case errors.Is(err, hotel.ErrPageExhausted):
		return "🏁 That's all the hotels found."
	case errors.Is(err, hotel.ErrHistoryEmpty):
		return "📁 Your search history is empty."
	case errors.Is(err, criteria.ErrInvalidNumber):
		return "❗ Please enter a non-negative number."
	case errors.Is(err, criteria.ErrRangeConflict):
		return "❗ The minimum price cannot be greater than the maximum price."
	case errors.Is(err, criteria.ErrInvalidDate):
		return "❗ Pick a date on the calendar or type it as YYYY-MM-DD."
	default:
		return msgInternal
	}
}

// keepsState reports whether a user-facing error leaves the dialog where it is.
// Every other one ends the session.
func keepsState(err error) bool {
	return errors.Is(err, hotel.ErrPageExhausted) || errors.Is(err, hotel.ErrPhotosNotFound)
}
