package criteria

import (
	"strings"

	"github.com/AzielCF/az-hotelbot/dialog/domain/hotel"
)

// Command is the search flavour chosen by the user.
type Command string

const (
	CommandLowPrice  Command = "lowprice"
	CommandHighPrice Command = "highprice"
	CommandBestDeal  Command = "bestdeal"
)

// ParseCommand accepts "/lowprice", "lowprice" and the like.
func ParseCommand(s string) (Command, bool) {
	c := Command(strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), "/"))
	switch c {
	case CommandLowPrice, CommandHighPrice, CommandBestDeal:
		return c, true
	}
	return "", false
}

func (c Command) Sort() hotel.SortOrder {
	switch c {
	case CommandHighPrice:
		return hotel.SortPriceDesc
	case CommandBestDeal:
		return hotel.SortDistance
	default:
		return hotel.SortPriceAsc
	}
}

// HasFilters reports whether the command collects price and distance bounds.
func (c Command) HasFilters() bool {
	return c == CommandBestDeal
}
