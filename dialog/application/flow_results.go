package application

import (
	"strconv"
	"strings"

	"github.com/AzielCF/az-hotelbot/dialog/domain/chat"
	"github.com/AzielCF/az-hotelbot/dialog/domain/hotel"
	"github.com/AzielCF/az-hotelbot/dialog/domain/session"
)

func (m *Machine) askCriteriaConfirmation(t *turn) error {
	c, err := t.s.Criteria.Finalize()
	if err != nil {
		return err
	}
	h, err := m.send(t, chat.Message{Text: criteriaSummary(c), Inline: yesNoButtons(actCriteriaYes, actCriteriaNo)})
	if err != nil {
		return err
	}
	return t.s.Transition(session.StateConfirmingCriteria, session.Prompt{Handle: h})
}

func (m *Machine) onCriteriaConfirm(t *turn) (bool, error) {
	if t.ev.Kind != chat.EventButton {
		return false, nil
	}
	p, _ := t.s.Payload.(session.Prompt)

	switch t.ev.Text {
	case actCriteriaNo:
		if err := m.edit(t, p.Handle, chat.Message{Text: txtStartOver}); err != nil {
			return true, err
		}
		t.s.Criteria.ResetFromCity()
		h, err := m.send(t, chat.Message{Text: txtEnterCity})
		if err != nil {
			return true, err
		}
		return true, t.s.Transition(session.StateAwaitingCity, session.Prompt{Handle: h})

	case actCriteriaYes:
		c, err := t.s.Criteria.Finalize()
		if err != nil {
			return true, err
		}
		if err := t.s.Transition(session.StatePaginating, session.Paging{}); err != nil {
			return true, err
		}

		placeholder, err := m.send(t, chat.Message{Text: txtSearching})
		if err != nil {
			return true, err
		}
		var pg session.Paging
		item, err := m.paginator.Advance(t.ctx, &pg.Cursor, c, t.s.UserID, t.s.EntryKey)
		if delErr := m.del(t, placeholder); delErr != nil {
			t.log.WithError(delErr).Warn("[DIALOG] could not remove search placeholder")
		}
		// On an internal failure the session stays in confirmation, so the
		// buttons stay too.
		if err != nil && !hotel.IsUserFacing(err) {
			return true, err
		}
		if editErr := m.edit(t, p.Handle, chat.Message{MarkupOnly: true}); editErr != nil {
			return true, editErr
		}
		if err != nil {
			return true, err
		}

		if _, err := m.send(t, chat.Message{Text: txtFoundHotels, Reply: showMoreKeyboard()}); err != nil {
			return true, err
		}
		if err := m.presentHotel(t, item, c.Nights()); err != nil {
			return true, err
		}
		t.s.Stay(pg)
		return true, nil
	}
	return false, nil
}

func (m *Machine) onShowMore(t *turn) (bool, error) {
	if t.ev.Kind != chat.EventText || strings.TrimSpace(t.ev.Text) != BtnShowMore {
		return false, nil
	}
	c, err := t.s.Criteria.Finalize()
	if err != nil {
		return true, err
	}
	pg, _ := t.s.Payload.(session.Paging)
	item, err := m.paginator.Advance(t.ctx, &pg.Cursor, c, t.s.UserID, t.s.EntryKey)
	if err != nil {
		return true, err
	}
	if err := m.presentHotel(t, item, c.Nights()); err != nil {
		return true, err
	}
	t.s.Stay(pg)
	return true, nil
}

func (m *Machine) presentHotel(t *turn, r hotel.Result, nights int) error {
	_, err := sendWithPhotoFallback(t.ctx, m.transport, t.ev.ChatID, chat.Message{
		Text:     HotelCardText(r, nights),
		PhotoURL: r.PhotoURL,
		Inline:   hotelCardButtons(r),
	})
	return err
}

func (m *Machine) showMap(t *turn, arg string) error {
	latText, lonText, ok := strings.Cut(arg, ",")
	if !ok {
		return m.echo(t)
	}
	lat, err1 := strconv.ParseFloat(latText, 64)
	lon, err2 := strconv.ParseFloat(lonText, 64)
	if err1 != nil || err2 != nil {
		return m.echo(t)
	}
	_, err := m.send(t, chat.Message{
		Text:     txtMapTitle,
		Location: &chat.Location{Lat: lat, Lon: lon},
		Inline:   mapButtons(lat, lon),
	})
	return err
}

func (m *Machine) openPhotos(t *turn, hotelID string) error {
	photos, err := m.searcher.HotelPhotos(t.ctx, hotelID)
	if err != nil {
		return err
	}
	if len(photos) == 0 {
		return hotel.ErrPhotosNotFound
	}
	_, err = m.send(t, chat.Message{PhotoURL: photos[0], Inline: photoButtons(hotelID, 0, len(photos))})
	return err
}

// flipPhoto swaps the photo of a browser message in place.
func (m *Machine) flipPhoto(t *turn, arg string) error {
	hotelID, idxText, ok := strings.Cut(arg, ":")
	if !ok {
		return m.echo(t)
	}
	idx, err := strconv.Atoi(idxText)
	if err != nil {
		return m.echo(t)
	}
	photos, err := m.searcher.HotelPhotos(t.ctx, hotelID)
	if err != nil {
		return err
	}
	if len(photos) == 0 {
		return hotel.ErrPhotosNotFound
	}
	idx = ((idx % len(photos)) + len(photos)) % len(photos)
	return m.transport.Edit(t.ctx, t.ev.ChatID, t.ev.Message, chat.Message{
		PhotoURL: photos[idx],
		Inline:   photoButtons(hotelID, idx, len(photos)),
	})
}
