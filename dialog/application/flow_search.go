package application

import (
	"strings"

	"github.com/AzielCF/az-hotelbot/dialog/domain/chat"
	"github.com/AzielCF/az-hotelbot/dialog/domain/criteria"
	"github.com/AzielCF/az-hotelbot/dialog/domain/hotel"
	"github.com/AzielCF/az-hotelbot/dialog/domain/session"
)

// startCommand begins a new search, abandoning whatever dialog was running.
func (m *Machine) startCommand(t *turn, cmd criteria.Command) error {
	if err := m.goHome(t, false); err != nil {
		return err
	}

	at := m.now().In(m.loc)
	key := at.Format(entryKeyLayout)
	if err := m.ledger.RecordInvocation(t.ctx, t.s.UserID, key, invocationText(cmd, at)); err != nil {
		return err
	}

	h, err := m.send(t, chat.Message{Text: txtEnterCity, RemoveReply: true})
	if err != nil {
		return err
	}
	if err := t.s.Transition(session.StateAwaitingCity, session.Prompt{Handle: h}); err != nil {
		return err
	}
	t.s.Criteria = criteria.NewBuilder(cmd)
	t.s.EntryKey = key
	return nil
}

func (m *Machine) onCityQuery(t *turn) (bool, error) {
	if t.ev.Kind != chat.EventText {
		return false, nil
	}
	query := strings.TrimSpace(t.ev.Text)

	placeholder, err := m.send(t, chat.Message{Text: txtSearching})
	if err != nil {
		return true, err
	}
	cities, err := m.searcher.SearchCities(t.ctx, query)
	if delErr := m.del(t, placeholder); delErr != nil {
		t.log.WithError(delErr).Warn("[DIALOG] could not remove search placeholder")
	}
	if err != nil {
		return true, err
	}
	if len(cities) == 0 {
		return true, hotel.ErrCitiesNotFound
	}

	sel := session.CitySelection{Query: query, Cities: cities}
	if len(cities) == 1 {
		if err := t.s.Transition(session.StateSelectingCity, sel); err != nil {
			return true, err
		}
		return true, m.selectCity(t, cities[0], chat.Handle{})
	}

	sel.Prompt, err = m.send(t, chat.Message{Text: txtChooseCity, Inline: cityButtons(cities)})
	if err != nil {
		return true, err
	}
	return true, t.s.Transition(session.StateSelectingCity, sel)
}

func (m *Machine) onCityChoice(t *turn) (bool, error) {
	action, id := splitData(t.ev.Text)
	if t.ev.Kind != chat.EventButton || action != actCity {
		return false, nil
	}
	sel, _ := t.s.Payload.(session.CitySelection)
	for _, c := range sel.Cities {
		if c.ID == id {
			return true, m.selectCity(t, c, sel.Prompt)
		}
	}
	return false, nil
}

// selectCity commits the city and moves on to filters or dates.
func (m *Machine) selectCity(t *turn, city hotel.City, prompt chat.Handle) error {
	t.s.Criteria.SetCity(city.Name, city.ID)
	if err := m.ledger.AppendCityToInvocation(t.ctx, t.s.UserID, t.s.EntryKey, city.Name); err != nil {
		return err
	}
	if err := m.edit(t, prompt, chat.Message{Text: citySelectedText(city.Name)}); err != nil {
		return err
	}
	if t.s.Criteria.Command().HasFilters() {
		return m.openPriceHub(t)
	}
	return m.openDatePicker(t, session.FieldDateIn)
}
