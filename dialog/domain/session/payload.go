package session

import (
	"time"

	"github.com/AzielCF/az-hotelbot/dialog/domain/chat"
	"github.com/AzielCF/az-hotelbot/dialog/domain/hotel"
	"github.com/AzielCF/az-hotelbot/dialog/domain/paging"
)

// Payload is the per-state data of a session. Only the types below
// implement it.
type Payload interface {
	payload()
}

// Prompt is held by states that only need to remember the last question.
type Prompt struct {
	Handle chat.Handle `json:"handle"`
}

// CitySelection is held while the user picks one of the matched cities.
type CitySelection struct {
	Query  string       `json:"query"`
	Cities []hotel.City `json:"cities"`
	Prompt chat.Handle  `json:"prompt"`
}

// FilterInput is held through the price and distance branch. Hub is the
// summary message with the filter buttons, Prompt the pending question and
// Pending the rejected inputs and error replies not yet cleaned up.
type FilterInput struct {
	Hub     chat.Handle   `json:"hub"`
	Prompt  chat.Handle   `json:"prompt"`
	Pending []chat.Handle `json:"pending,omitempty"`
}

type DateField string

const (
	FieldDateIn  DateField = "date_in"
	FieldDateOut DateField = "date_out"
)

// DateConfirmation is held while a date is picked and confirmed. Prompt is
// the calendar or confirmation message; Candidate is zero until a day is picked.
// Pending holds rejected dates and their error replies.
type DateConfirmation struct {
	Field     DateField     `json:"field"`
	Candidate time.Time     `json:"candidate"`
	Prompt    chat.Handle   `json:"prompt"`
	Pending   []chat.Handle `json:"pending,omitempty"`
}

// Paging is held while results are shown one at a time.
type Paging struct {
	Cursor paging.Cursor `json:"cursor"`
}

// HistoryHeader is one rendered ledger entry header.
type HistoryHeader struct {
	Key       string      `json:"key"`
	Handle    chat.Handle `json:"handle"`
	HasHotels bool        `json:"has_hotels"`
}

// HistoryView is the presenter state of an open history view.
type HistoryView struct {
	Caption chat.Handle              `json:"caption"`
	Headers []HistoryHeader          `json:"headers"`
	Shown   map[string][]chat.Handle `json:"shown,omitempty"`
}

func (Prompt) payload()           {}
func (CitySelection) payload()    {}
func (FilterInput) payload()      {}
func (DateConfirmation) payload() {}
func (Paging) payload()           {}
func (HistoryView) payload()      {}

// Header returns the header for key or nil.
func (v *HistoryView) Header(key string) *HistoryHeader {
	for i := range v.Headers {
		if v.Headers[i].Key == key {
			return &v.Headers[i]
		}
	}
	return nil
}

// Expanded reports whether the hotels of key are currently presented.
func (v *HistoryView) Expanded(key string) bool {
	_, ok := v.Shown[key]
	return ok
}
