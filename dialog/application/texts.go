package application

import (
	"fmt"
	"html"
	"math"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/AzielCF/az-hotelbot/dialog/domain/criteria"
	"github.com/AzielCF/az-hotelbot/dialog/domain/hotel"
	"github.com/AzielCF/az-hotelbot/dialog/domain/session"
)

// Reply keyboard labels.
const (
	BtnLowPrice     = "⬇️ Cheap hotels"
	BtnHighPrice    = "⬆️ Expensive hotels"
	BtnBestDeal     = "🔍 Search with filters"
	BtnHistory      = "📁 Search history"
	BtnHelp         = "ℹ️ Help"
	BtnMainMenu     = "🏠 Main menu"
	BtnShowMore     = "➕ Show more"
	BtnClearHistory = "❌ Clear history"
)

const (
	txtChooseAction = "❓ Choose an action"
	txtEnterCity    = "🏙 Enter the city to search in:"
	txtSearching    = "🔎 Searching..."
	txtChooseCity   = "🏙 Choose a city:"
	txtFoundHotels  = "🏨 Found hotels:"
	txtStartOver    = "🔁 Let's start over from the city."
	txtHistory      = "📁 Search history:"
	txtMinPrice     = "💲 Enter the minimum price per night in USD:"
	txtMaxPrice     = "💲 Enter the maximum price per night in USD:"
	txtMaxDistance  = "🚗 Enter the maximum distance to the city center in km:"
	txtDateIn       = "📅 Choose the check-in date:"
	txtDateOut      = "📅 Choose the check-out date:"
	txtMapTitle     = "🌍 Open the hotel on a map:"
)

const helpText = `<b>Commands</b>
/lowprice - cheapest hotels in a city
/highprice - most expensive hotels in a city
/bestdeal - hotels by price range and distance to the center
/history - your search history
/help - this message

The buttons under the input field do the same.`

var commandLabels = map[string]criteria.Command{
	BtnLowPrice:  criteria.CommandLowPrice,
	BtnHighPrice: criteria.CommandHighPrice,
	BtnBestDeal:  criteria.CommandBestDeal,
}

// commandFromText maps "/lowprice" and the menu labels to a command.
func commandFromText(text string) (criteria.Command, bool) {
	if c, ok := commandLabels[text]; ok {
		return c, true
	}
	if !strings.HasPrefix(text, "/") {
		return "", false
	}
	return criteria.ParseCommand(strings.SplitN(text, "@", 2)[0])
}

func readableDate(t time.Time) string {
	return t.Format("2 January 2006")
}

func invocationText(cmd criteria.Command, at time.Time) string {
	return fmt.Sprintf("<b>Command</b> /%s\n<b>invoked at</b> %s", cmd, at.Format("15:04, 2 January 2006"))
}

func money(v float64) string {
	return "$" + humanize.CommafWithDigits(v, 2)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// HotelCardText renders one hotel the way it is shown and stored in history.
func HotelCardText(r hotel.Result, nights int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🏨 <b>%s</b>\n", html.EscapeString(r.Name))
	if stars := int(r.Stars); stars > 0 {
		fmt.Fprintf(&b, "%s\n", strings.Repeat("⭐", stars))
	}
	if r.Address != "" {
		fmt.Fprintf(&b, "📍 %s\n", html.EscapeString(r.Address))
	}
	fmt.Fprintf(&b, "🚗 %s km to the center\n", humanize.CommafWithDigits(round2(r.DistanceKm), 2))
	fmt.Fprintf(&b, "💵 %s for %d %s\n", money(r.TotalCost), nights, plural(nights, "night", "nights"))
	fmt.Fprintf(&b, "💵 %s per night", money(r.CostPerNight))
	return b.String()
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

func priceHubText(b *criteria.Builder) string {
	lo, minOK := b.MinPrice()
	hi, maxOK := b.MaxPrice()
	minText, maxText := "not set", "not set"
	if minOK {
		minText = money(float64(lo))
	}
	if maxOK {
		maxText = money(float64(hi))
	}
	return fmt.Sprintf("💲 <b>Price per night</b>\nMinimum: %s\nMaximum: %s", minText, maxText)
}

func distanceHubText(b *criteria.Builder) string {
	d, ok := b.MaxDistance()
	dText := "not set"
	if ok {
		dText = humanize.CommafWithDigits(d, 2) + " km"
	}
	return fmt.Sprintf("🚗 <b>Distance to the center</b>\nMaximum: %s", dText)
}

func datePrompt(field session.DateField) string {
	if field == session.FieldDateOut {
		return txtDateOut
	}
	return txtDateIn
}

func dateLabel(field session.DateField) string {
	if field == session.FieldDateOut {
		return "Check-out"
	}
	return "Check-in"
}

func dateConfirmText(field session.DateField, d time.Time) string {
	return fmt.Sprintf("📅 %s: <b>%s</b>. Correct?", dateLabel(field), readableDate(d))
}

func dateChosenText(field session.DateField, d time.Time) string {
	return fmt.Sprintf("📅 %s: <b>%s</b>", dateLabel(field), readableDate(d))
}

func citySelectedText(name string) string {
	return fmt.Sprintf("🏙 City: <b>%s</b>", html.EscapeString(name))
}

func criteriaSummary(c criteria.SearchCriteria) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🔎 <b>Search</b> /%s\n", c.Command)
	fmt.Fprintf(&b, "🏙 City: %s\n", html.EscapeString(c.City.Name))
	fmt.Fprintf(&b, "📅 %s - %s (%d %s)\n", readableDate(c.DateIn), readableDate(c.DateOut), c.Nights(), plural(c.Nights(), "night", "nights"))
	if c.Command.HasFilters() {
		fmt.Fprintf(&b, "💲 %s - %s per night\n", money(float64(c.MinPrice)), money(float64(c.MaxPrice)))
		fmt.Fprintf(&b, "🚗 up to %s km from the center\n", humanize.CommafWithDigits(c.MaxDistanceKm, 2))
	}
	b.WriteString("Start the search?")
	return b.String()
}

func echoText(input string) string {
	return fmt.Sprintf("🤖 Message not recognized, the bot is waiting for a button press.\nYou wrote: <code>%s</code>", html.EscapeString(input))
}
