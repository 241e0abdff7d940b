package application

import (
	"strings"

	"github.com/AzielCF/az-hotelbot/dialog/domain/chat"
	"github.com/AzielCF/az-hotelbot/dialog/domain/hotel"
	"github.com/AzielCF/az-hotelbot/dialog/domain/session"
)

func (m *Machine) openHistory(t *turn) error {
	if err := m.goHome(t, false); err != nil {
		return err
	}
	view, err := m.presenter.Open(t.ctx, t.ev.ChatID, t.s.UserID)
	if err != nil {
		// Remove whatever part of the view made it out.
		if tdErr := m.presenter.TeardownAll(t.ctx, &view, t.ev.ChatID); tdErr != nil {
			t.log.WithError(tdErr).Warn("[DIALOG] history teardown incomplete")
		}
		return err
	}
	return t.s.Transition(session.StateViewingHistory, view)
}

func (m *Machine) onHistoryAction(t *turn) (bool, error) {
	view, _ := t.s.Payload.(session.HistoryView)

	switch t.ev.Kind {
	case chat.EventButton:
		action, key := splitData(t.ev.Text)
		switch action {
		case actHistShow:
			if err := m.presenter.Show(t.ctx, &view, t.ev.ChatID, t.s.UserID, key); err != nil {
				if !view.Expanded(key) {
					return true, err
				}
				// Hotels went out, so the view must be saved with them.
				t.log.WithError(err).Warnf("[DIALOG] history entry %s shown partly", key)
				if _, sendErr := m.send(t, chat.Message{Text: msgInternal}); sendErr != nil {
					t.log.WithError(sendErr).Warn("[DIALOG] could not notify user about failure")
				}
			}
			t.s.Stay(view)
			return true, nil
		case actHistHide:
			err := m.presenter.Hide(t.ctx, &view, t.ev.ChatID, key)
			t.s.Stay(view)
			return true, err
		}
	case chat.EventText:
		if strings.TrimSpace(t.ev.Text) == BtnClearHistory {
			if err := m.ledger.ClearAll(t.ctx, t.s.UserID); err != nil {
				return true, err
			}
			// report() tears the view down and announces the empty history.
			return true, hotel.ErrHistoryEmpty
		}
	}
	return false, nil
}
