package application

import (
	"strings"
	"time"

	"github.com/AzielCF/az-hotelbot/dialog/domain/chat"
	"github.com/AzielCF/az-hotelbot/dialog/domain/criteria"
	"github.com/AzielCF/az-hotelbot/dialog/domain/session"
)

func pickerState(field session.DateField) session.State {
	if field == session.FieldDateOut {
		return session.StateAwaitingDateOut
	}
	return session.StateAwaitingDateIn
}

// minDate is the first day the calendar offers for field.
func (m *Machine) minDate(t *turn, field session.DateField) time.Time {
	if field == session.FieldDateOut {
		if in, ok := t.s.Criteria.DateIn(); ok {
			return in.AddDate(0, 0, 1)
		}
	}
	return m.today()
}

func (m *Machine) openDatePicker(t *turn, field session.DateField) error {
	minDay := m.minDate(t, field)
	h, err := m.send(t, chat.Message{Text: datePrompt(field), Inline: calendarKeyboard(minDay, minDay)})
	if err != nil {
		return err
	}
	return t.s.Transition(pickerState(field), session.DateConfirmation{Field: field, Prompt: h})
}

// onDatePick accepts a calendar day, month navigation or a typed date.
func (m *Machine) onDatePick(t *turn) (bool, error) {
	dc, _ := t.s.Payload.(session.DateConfirmation)
	minDay := m.minDate(t, dc.Field)

	var picked time.Time
	switch t.ev.Kind {
	case chat.EventButton:
		action, arg := splitData(t.ev.Text)
		switch action {
		case actCalNav:
			month, ok := parseMonth(arg)
			if !ok {
				return false, nil
			}
			return true, m.edit(t, dc.Prompt, chat.Message{MarkupOnly: true, Inline: calendarKeyboard(month, minDay)})
		case actCalDay:
			d, err := criteria.ParseDate(arg)
			if err != nil {
				return false, nil
			}
			picked = d
		default:
			return false, nil
		}
	case chat.EventText:
		d, err := criteria.ParseDate(strings.TrimSpace(t.ev.Text))
		if err != nil {
			return true, m.rejectDate(t, dc, userMessage(err))
		}
		picked = d
	}

	// The check-out order is checked on confirmation, so only check-in is
	// held to the calendar minimum here.
	if dc.Field == session.FieldDateIn && picked.Before(minDay) {
		return true, m.rejectDate(t, dc, msgDateTooEarly)
	}

	for _, h := range dc.Pending {
		if err := m.del(t, h); err != nil {
			return true, err
		}
	}

	confirm := chat.Message{
		Text:   dateConfirmText(dc.Field, picked),
		Inline: yesNoButtons(actDateYes, actDateNo),
	}
	prompt := dc.Prompt
	if t.ev.Kind == chat.EventText {
		// A typed date goes below the calendar; replace the calendar with a fresh question.
		if err := m.del(t, dc.Prompt); err != nil {
			return true, err
		}
		prompt = chat.Handle{}
	}
	if prompt.IsZero() {
		h, err := m.send(t, confirm)
		if err != nil {
			return true, err
		}
		prompt = h
	} else if err := m.edit(t, prompt, confirm); err != nil {
		return true, err
	}

	return true, t.s.Transition(session.StateConfirmingDates, session.DateConfirmation{
		Field:     dc.Field,
		Candidate: picked,
		Prompt:    prompt,
	})
}

// rejectDate answers a date that cannot be used and remembers both messages
// so they go away once a date is accepted.
func (m *Machine) rejectDate(t *turn, dc session.DateConfirmation, reply string) error {
	h, err := m.send(t, chat.Message{Text: reply})
	if err != nil {
		return err
	}
	if t.ev.Kind == chat.EventText {
		dc.Pending = append(dc.Pending, t.ev.Message)
	}
	dc.Pending = append(dc.Pending, h)
	t.s.Stay(dc)
	return nil
}

func (m *Machine) onDateConfirm(t *turn) (bool, error) {
	if t.ev.Kind != chat.EventButton {
		return false, nil
	}
	dc, _ := t.s.Payload.(session.DateConfirmation)

	switch t.ev.Text {
	case actDateNo:
		if err := m.del(t, dc.Prompt); err != nil {
			return true, err
		}
		return true, m.openDatePicker(t, dc.Field)

	case actDateYes:
		if dc.Field == session.FieldDateIn {
			t.s.Criteria.SetDateIn(dc.Candidate)
			if err := m.edit(t, dc.Prompt, chat.Message{Text: dateChosenText(dc.Field, dc.Candidate)}); err != nil {
				return true, err
			}
			return true, m.openDatePicker(t, session.FieldDateOut)
		}

		in, _ := t.s.Criteria.DateIn()
		if !dc.Candidate.After(in) {
			if err := m.edit(t, dc.Prompt, chat.Message{Text: msgDateOrder}); err != nil {
				return true, err
			}
			return true, m.openDatePicker(t, session.FieldDateOut)
		}
		t.s.Criteria.SetDateOut(dc.Candidate)
		if err := m.edit(t, dc.Prompt, chat.Message{Text: dateChosenText(dc.Field, dc.Candidate)}); err != nil {
			return true, err
		}
		return true, m.askCriteriaConfirmation(t)
	}
	return false, nil
}
