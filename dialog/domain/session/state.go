package session

import (
	"errors"
	"fmt"
)

type State string

const (
	StateIdle               State = "idle"
	StateAwaitingCity       State = "awaiting_city"
	StateSelectingCity      State = "selecting_city"
	StateAwaitingPriceRange State = "awaiting_price_range"
	StateAwaitingMinPrice   State = "awaiting_min_price"
	StateAwaitingMaxPrice   State = "awaiting_max_price"
	StateAwaitingDistance   State = "awaiting_distance"
	StateAwaitingMaxDist    State = "awaiting_max_distance"
	StateAwaitingDateIn     State = "awaiting_date_in"
	StateAwaitingDateOut    State = "awaiting_date_out"
	StateConfirmingDates    State = "confirming_dates"
	StateConfirmingCriteria State = "confirming_criteria"
	StatePaginating         State = "paginating"
	StateViewingHistory     State = "viewing_history"
)

var ErrIllegalTransition = errors.New("illegal state transition")

// transitions lists the legal edges of the dialog. Returning to Idle is
// legal from every state and is not listed.
var transitions = map[State][]State{
	StateIdle:               {StateAwaitingCity, StateViewingHistory},
	StateAwaitingCity:       {StateSelectingCity},
	StateSelectingCity:      {StateAwaitingPriceRange, StateAwaitingDateIn},
	StateAwaitingPriceRange: {StateAwaitingMinPrice, StateAwaitingMaxPrice, StateAwaitingDistance},
	StateAwaitingMinPrice:   {StateAwaitingPriceRange},
	StateAwaitingMaxPrice:   {StateAwaitingPriceRange},
	StateAwaitingDistance:   {StateAwaitingMaxDist, StateAwaitingDateIn},
	StateAwaitingMaxDist:    {StateAwaitingDistance},
	StateAwaitingDateIn:     {StateConfirmingDates},
	StateConfirmingDates:    {StateAwaitingDateIn, StateAwaitingDateOut, StateConfirmingCriteria},
	StateAwaitingDateOut:    {StateConfirmingDates},
	StateConfirmingCriteria: {StateAwaitingCity, StatePaginating},
	StatePaginating:         {},
	StateViewingHistory:     {},
}

// CanTransition reports whether moving from one state to another is legal.
func CanTransition(from, to State) bool {
	if to == StateIdle {
		return true
	}
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Valid reports whether s is a known state.
func (s State) Valid() bool {
	_, ok := transitions[s]
	return ok
}

// AwaitsText reports whether the state consumes free text input.
func (s State) AwaitsText() bool {
	switch s {
	case StateAwaitingCity, StateAwaitingMinPrice, StateAwaitingMaxPrice,
		StateAwaitingMaxDist, StateAwaitingDateIn, StateAwaitingDateOut:
		return true
	}
	return false
}

func transitionError(from, to State) error {
	return fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, from, to)
}
