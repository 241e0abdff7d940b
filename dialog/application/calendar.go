package application

import (
	"time"

	"github.com/AzielCF/az-hotelbot/dialog/domain/chat"
	"github.com/AzielCF/az-hotelbot/dialog/domain/criteria"
)

const monthLayout = "2006-01"

var weekdayHeader = []string{"Mo", "Tu", "We", "Th", "Fr", "Sa", "Su"}

func monthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// calendarKeyboard renders one month as an inline keyboard. Days before
// minDay are blank and the previous-month arrow is hidden when that month
// has no selectable day.
func calendarKeyboard(month, minDay time.Time) [][]chat.Button {
	month = monthStart(month)
	if month.Before(monthStart(minDay)) {
		month = monthStart(minDay)
	}
	blank := chat.Button{Text: " ", Data: actNoop}

	prev := blank
	if month.After(monthStart(minDay)) {
		prev = chat.Button{Text: "«", Data: data(actCalNav, month.AddDate(0, -1, 0).Format(monthLayout))}
	}
	next := chat.Button{Text: "»", Data: data(actCalNav, month.AddDate(0, 1, 0).Format(monthLayout))}

	rows := [][]chat.Button{
		{prev, {Text: month.Format("January 2006"), Data: actNoop}, next},
	}
	header := make([]chat.Button, 0, 7)
	for _, d := range weekdayHeader {
		header = append(header, chat.Button{Text: d, Data: actNoop})
	}
	rows = append(rows, header)

	// Monday-first offset of the 1st.
	offset := (int(month.Weekday()) + 6) % 7
	week := make([]chat.Button, 0, 7)
	for i := 0; i < offset; i++ {
		week = append(week, blank)
	}
	for day := month; day.Month() == month.Month(); day = day.AddDate(0, 0, 1) {
		if day.Before(minDay) {
			week = append(week, blank)
		} else {
			week = append(week, chat.Button{Text: day.Format("2"), Data: data(actCalDay, criteria.FormatDate(day))})
		}
		if len(week) == 7 {
			rows = append(rows, week)
			week = make([]chat.Button, 0, 7)
		}
	}
	if len(week) > 0 {
		for len(week) < 7 {
			week = append(week, blank)
		}
		rows = append(rows, week)
	}
	return rows
}

func parseMonth(s string) (time.Time, bool) {
	t, err := time.Parse(monthLayout, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
