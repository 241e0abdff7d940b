package application

import (
	"context"
	"errors"

	"github.com/AzielCF/az-hotelbot/dialog/domain/chat"
	"github.com/AzielCF/az-hotelbot/dialog/domain/hotel"
	"github.com/AzielCF/az-hotelbot/dialog/domain/session"
)

// Presenter renders the ledger as chat messages and keeps track of what it
// sent so it can take it back. Its state lives in the session's HistoryView.
type Presenter struct {
	transport chat.Transport
	ledger    *Ledger
}

func NewPresenter(transport chat.Transport, ledger *Ledger) *Presenter {
	return &Presenter{transport: transport, ledger: ledger}
}

// Open sends the caption and one header per entry.
func (p *Presenter) Open(ctx context.Context, chatID, userID string) (session.HistoryView, error) {
	entries, err := p.ledger.ListEntries(ctx, userID)
	if err != nil {
		return session.HistoryView{}, err
	}

	view := session.HistoryView{Shown: map[string][]chat.Handle{}}
	if len(entries) == 0 {
		return view, hotel.ErrHistoryEmpty
	}

	view.Caption, err = p.transport.Send(ctx, chatID, chat.Message{Text: txtHistory, Reply: historyKeyboard()})
	if err != nil {
		return view, err
	}
	for _, e := range entries {
		header := session.HistoryHeader{Key: e.Key, HasHotels: len(e.FoundHotels) > 0}
		header.Handle, err = p.transport.Send(ctx, chatID, chat.Message{
			Text:   e.Text,
			Inline: headerButtonsFor(header, false),
		})
		if err != nil {
			return view, err
		}
		view.Headers = append(view.Headers, header)
	}
	return view, nil
}

// Show presents the hotels recorded under key. Already expanded entries are
// left alone. When a send fails midway the view still holds the hotels that
// made it out, and the error is returned.
func (p *Presenter) Show(ctx context.Context, view *session.HistoryView, chatID, userID, key string) error {
	header := view.Header(key)
	if header == nil || view.Expanded(key) {
		return nil
	}
	hotels, err := p.ledger.ListFoundHotels(ctx, userID, key)
	if err != nil {
		return err
	}

	if view.Shown == nil {
		view.Shown = map[string][]chat.Handle{}
	}
	handles := make([]chat.Handle, 0, len(hotels))
	var sendErr error
	for _, snap := range hotels {
		h, err := sendWithPhotoFallback(ctx, p.transport, chatID, chat.Message{Text: snap.Text, PhotoURL: snap.Photo})
		if err != nil {
			sendErr = err
			break
		}
		handles = append(handles, h)
	}
	if sendErr != nil && len(handles) == 0 {
		return sendErr
	}
	// A partly shown entry counts as expanded so Hide and teardown remove it.
	view.Shown[key] = handles

	editErr := p.transport.Edit(ctx, chatID, header.Handle, chat.Message{
		MarkupOnly: true,
		Inline:     headerButtonsFor(*header, true),
	})
	return errors.Join(sendErr, editErr)
}

// Hide removes the presented hotels of key.
func (p *Presenter) Hide(ctx context.Context, view *session.HistoryView, chatID, key string) error {
	header := view.Header(key)
	if header == nil || !view.Expanded(key) {
		return nil
	}
	if err := p.deleteAll(ctx, chatID, view.Shown[key]); err != nil {
		return err
	}
	delete(view.Shown, key)

	return p.transport.Edit(ctx, chatID, header.Handle, chat.Message{
		MarkupOnly: true,
		Inline:     headerButtonsFor(*header, false),
	})
}

// TeardownAll deletes every message the view sent: presented hotels,
// headers and the caption.
func (p *Presenter) TeardownAll(ctx context.Context, view *session.HistoryView, chatID string) error {
	var errs []error
	for key, handles := range view.Shown {
		errs = append(errs, p.deleteAll(ctx, chatID, handles))
		delete(view.Shown, key)
	}
	for _, h := range view.Headers {
		errs = append(errs, p.transport.Delete(ctx, chatID, h.Handle))
	}
	view.Headers = nil
	if !view.Caption.IsZero() {
		errs = append(errs, p.transport.Delete(ctx, chatID, view.Caption))
		view.Caption = chat.Handle{}
	}
	return errors.Join(errs...)
}

func (p *Presenter) deleteAll(ctx context.Context, chatID string, handles []chat.Handle) error {
	var errs []error
	for _, h := range handles {
		errs = append(errs, p.transport.Delete(ctx, chatID, h))
	}
	return errors.Join(errs...)
}
