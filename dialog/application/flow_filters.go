package application

import (
	"errors"
	"strings"

	"github.com/AzielCF/az-hotelbot/dialog/domain/chat"
	"github.com/AzielCF/az-hotelbot/dialog/domain/criteria"
	"github.com/AzielCF/az-hotelbot/dialog/domain/session"
)

func (m *Machine) openPriceHub(t *turn) error {
	h, err := m.send(t, chat.Message{Text: priceHubText(t.s.Criteria), Inline: priceButtons()})
	if err != nil {
		return err
	}
	return t.s.Transition(session.StateAwaitingPriceRange, session.FilterInput{Hub: h})
}

func (m *Machine) openDistanceHub(t *turn) error {
	h, err := m.send(t, chat.Message{Text: distanceHubText(t.s.Criteria), Inline: distanceButtons()})
	if err != nil {
		return err
	}
	return t.s.Transition(session.StateAwaitingDistance, session.FilterInput{Hub: h})
}

func (m *Machine) onPriceHub(t *turn) (bool, error) {
	if t.ev.Kind != chat.EventButton {
		return false, nil
	}
	switch t.ev.Text {
	case actPriceMin:
		return true, m.askBound(t, session.StateAwaitingMinPrice, txtMinPrice)
	case actPriceMax:
		return true, m.askBound(t, session.StateAwaitingMaxPrice, txtMaxPrice)
	case actPriceDone:
		fi, _ := t.s.Payload.(session.FilterInput)
		if err := m.edit(t, fi.Hub, chat.Message{Text: priceHubText(t.s.Criteria)}); err != nil {
			return true, err
		}
		return true, m.openDistanceHub(t)
	}
	return false, nil
}

func (m *Machine) onDistanceHub(t *turn) (bool, error) {
	if t.ev.Kind != chat.EventButton {
		return false, nil
	}
	switch t.ev.Text {
	case actDistMax:
		return true, m.askBound(t, session.StateAwaitingMaxDist, txtMaxDistance)
	case actDistDone:
		fi, _ := t.s.Payload.(session.FilterInput)
		if err := m.edit(t, fi.Hub, chat.Message{Text: distanceHubText(t.s.Criteria)}); err != nil {
			return true, err
		}
		return true, m.openDatePicker(t, session.FieldDateIn)
	}
	return false, nil
}

// askBound hides the hub buttons and asks for one bound.
func (m *Machine) askBound(t *turn, next session.State, question string) error {
	fi, _ := t.s.Payload.(session.FilterInput)
	if err := m.edit(t, fi.Hub, chat.Message{MarkupOnly: true}); err != nil {
		return err
	}
	h, err := m.send(t, chat.Message{Text: question})
	if err != nil {
		return err
	}
	return t.s.Transition(next, session.FilterInput{Hub: fi.Hub, Prompt: h})
}

func (m *Machine) onMinPrice(t *turn) (bool, error) {
	return m.acceptBound(t, session.StateAwaitingPriceRange, func(b *criteria.Builder, in string) error {
		_, err := b.SetMinPrice(in)
		return err
	})
}

func (m *Machine) onMaxPrice(t *turn) (bool, error) {
	return m.acceptBound(t, session.StateAwaitingPriceRange, func(b *criteria.Builder, in string) error {
		_, err := b.SetMaxPrice(in)
		return err
	})
}

func (m *Machine) onMaxDistance(t *turn) (bool, error) {
	return m.acceptBound(t, session.StateAwaitingDistance, func(b *criteria.Builder, in string) error {
		_, err := b.SetMaxDistance(in)
		return err
	})
}

// acceptBound validates typed input for a bound. A rejected value stays in
// the chat together with the error reply until a valid value arrives; then
// the prompt, the input and all pending messages are removed and the hub is
// refreshed. The bound is only kept if that cleanup succeeds.
func (m *Machine) acceptBound(t *turn, hub session.State, set func(*criteria.Builder, string) error) (bool, error) {
	if t.ev.Kind != chat.EventText {
		return false, nil
	}
	fi, _ := t.s.Payload.(session.FilterInput)

	if err := set(t.s.Criteria, strings.TrimSpace(t.ev.Text)); err != nil {
		if !errors.Is(err, criteria.ErrInvalidNumber) && !errors.Is(err, criteria.ErrRangeConflict) {
			return true, err
		}
		h, sendErr := m.send(t, chat.Message{Text: userMessage(err)})
		if sendErr != nil {
			return true, sendErr
		}
		fi.Pending = append(fi.Pending, t.ev.Message, h)
		t.s.Stay(fi)
		return true, nil
	}

	cleanup := append([]chat.Handle{fi.Prompt, t.ev.Message}, fi.Pending...)
	for _, h := range cleanup {
		if err := m.del(t, h); err != nil {
			return true, err
		}
	}

	text, buttons := priceHubText(t.s.Criteria), priceButtons()
	if hub == session.StateAwaitingDistance {
		text, buttons = distanceHubText(t.s.Criteria), distanceButtons()
	}
	if err := m.edit(t, fi.Hub, chat.Message{Text: text, Inline: buttons}); err != nil {
		return true, err
	}
	return true, t.s.Transition(hub, session.FilterInput{Hub: fi.Hub})
}
