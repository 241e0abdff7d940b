package application

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/AzielCF/az-hotelbot/dialog/domain/chat"
	"github.com/AzielCF/az-hotelbot/dialog/domain/hotel"
	"github.com/AzielCF/az-hotelbot/dialog/domain/session"
)

// Button payload prefixes. Payloads are "<action>" or "<action>:<arg>".
const (
	actCity        = "city"
	actPriceMin    = "price_min"
	actPriceMax    = "price_max"
	actPriceDone   = "price_done"
	actDistMax     = "dist_max"
	actDistDone    = "dist_done"
	actCalNav      = "cal_nav"
	actCalDay      = "cal_day"
	actNoop        = "noop"
	actDateYes     = "date_yes"
	actDateNo      = "date_no"
	actCriteriaYes = "crit_yes"
	actCriteriaNo  = "crit_no"
	actHistShow    = "hist_show"
	actHistHide    = "hist_hide"
	actMap         = "map"
	actPhotos      = "photos"
	actPhoto       = "photo"
	actClose       = "close"
)

func data(action string, arg ...string) string {
	if len(arg) == 0 {
		return action
	}
	return action + ":" + strings.Join(arg, ":")
}

// splitData separates the action from the rest of the payload.
func splitData(payload string) (action, arg string) {
	action, arg, _ = strings.Cut(payload, ":")
	return action, arg
}

func mainMenuKeyboard() [][]string {
	return [][]string{
		{BtnLowPrice, BtnHighPrice},
		{BtnBestDeal},
		{BtnHistory, BtnHelp},
	}
}

func showMoreKeyboard() [][]string {
	return [][]string{{BtnShowMore}, {BtnMainMenu}}
}

func historyKeyboard() [][]string {
	return [][]string{{BtnClearHistory}, {BtnMainMenu}}
}

func cityButtons(cities []hotel.City) [][]chat.Button {
	rows := make([][]chat.Button, 0, len(cities))
	for _, c := range cities {
		rows = append(rows, []chat.Button{{Text: c.Name, Data: data(actCity, c.ID)}})
	}
	return rows
}

func priceButtons() [][]chat.Button {
	return [][]chat.Button{
		{{Text: "Min price", Data: actPriceMin}, {Text: "Max price", Data: actPriceMax}},
		{{Text: "✅ Done", Data: actPriceDone}},
	}
}

func distanceButtons() [][]chat.Button {
	return [][]chat.Button{
		{{Text: "Max distance", Data: actDistMax}},
		{{Text: "✅ Done", Data: actDistDone}},
	}
}

func yesNoButtons(yes, no string) [][]chat.Button {
	return [][]chat.Button{{{Text: "✅ Yes", Data: yes}, {Text: "❌ No", Data: no}}}
}

func hotelCardButtons(r hotel.Result) [][]chat.Button {
	coords := fmt.Sprintf("%s,%s",
		strconv.FormatFloat(r.Coordinates.Lat, 'f', -1, 64),
		strconv.FormatFloat(r.Coordinates.Lon, 'f', -1, 64))
	return [][]chat.Button{
		{{Text: "🌍 On map", Data: data(actMap, coords)}},
		{{Text: "📷 Photos", Data: data(actPhotos, r.ID)}},
	}
}

func mapButtons(lat, lon float64) [][]chat.Button {
	return [][]chat.Button{
		{{Text: "Google Maps", URL: fmt.Sprintf("https://www.google.com/maps/search/?api=1&query=%f,%f", lat, lon)}},
		{{Text: "Yandex Maps", URL: fmt.Sprintf("https://yandex.ru/maps/?pt=%f,%f&z=16&l=map", lon, lat)}},
		{{Text: "✖ Close", Data: actClose}},
	}
}

func photoButtons(hotelID string, index, total int) [][]chat.Button {
	prev := (index - 1 + total) % total
	next := (index + 1) % total
	return [][]chat.Button{
		{
			{Text: "◀", Data: data(actPhoto, hotelID, strconv.Itoa(prev))},
			{Text: fmt.Sprintf("%d/%d", index+1, total), Data: actNoop},
			{Text: "▶", Data: data(actPhoto, hotelID, strconv.Itoa(next))},
		},
		{{Text: "✖ Close", Data: actClose}},
	}
}

func historyHeaderButtons(key string, expanded bool) [][]chat.Button {
	if expanded {
		return [][]chat.Button{{{Text: "🙈 Hide hotels", Data: data(actHistHide, key)}}}
	}
	return [][]chat.Button{{{Text: "🏨 Show hotels", Data: data(actHistShow, key)}}}
}

func headerButtonsFor(h session.HistoryHeader, expanded bool) [][]chat.Button {
	if !h.HasHotels {
		return nil
	}
	return historyHeaderButtons(h.Key, expanded)
}
