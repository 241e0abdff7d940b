package criteria

import "errors"

var (
	ErrInvalidNumber  = errors.New("value is not a valid non-negative number")
	ErrRangeConflict  = errors.New("minimum price must not exceed maximum price")
	ErrInvalidDate    = errors.New("value is not a valid date")
	ErrIncomplete     = errors.New("search criteria are incomplete")
	ErrUnknownCommand = errors.New("unknown search command")
)
