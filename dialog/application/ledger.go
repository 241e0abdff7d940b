package application

import (
	"context"
	"fmt"
	"html"

	"github.com/AzielCF/az-hotelbot/dialog/domain/history"
	"github.com/sirupsen/logrus"
)

// Ledger records every search invocation of a user and the hotels that were
// presented for it.
type Ledger struct {
	store history.DocumentStore
}

func NewLedger(store history.DocumentStore) *Ledger {
	return &Ledger{store: store}
}

// RecordInvocation creates or overwrites the entry for key, dropping any
// hotels recorded under it.
func (l *Ledger) RecordInvocation(ctx context.Context, userID, key, text string) error {
	return l.update(ctx, userID, func(doc *history.Document) {
		e := doc.Upsert(key)
		e.Text = text
		e.FoundHotels = []history.HotelSnapshot{}
	})
}

// AppendCityToInvocation prefixes the entry text with the chosen city. The
// text is sent with HTML parse mode, so the name is escaped.
func (l *Ledger) AppendCityToInvocation(ctx context.Context, userID, key, city string) error {
	return l.update(ctx, userID, func(doc *history.Document) {
		e := doc.Upsert(key)
		e.Text = fmt.Sprintf("Search in <b>%s</b>\n%s", html.EscapeString(city), e.Text)
	})
}

func (l *Ledger) AppendFoundHotel(ctx context.Context, userID, key string, snap history.HotelSnapshot) error {
	return l.update(ctx, userID, func(doc *history.Document) {
		e := doc.Upsert(key)
		e.FoundHotels = append(e.FoundHotels, snap)
	})
}

// ListEntries returns the entries in insertion order.
func (l *Ledger) ListEntries(ctx context.Context, userID string) ([]history.Entry, error) {
	doc, err := l.store.Load(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load history of %s: %w", userID, err)
	}
	return doc.Entries, nil
}

// ListFoundHotels returns the snapshots recorded under key, or none when the
// entry does not exist.
func (l *Ledger) ListFoundHotels(ctx context.Context, userID, key string) ([]history.HotelSnapshot, error) {
	doc, err := l.store.Load(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load history of %s: %w", userID, err)
	}
	if i := doc.Find(key); i >= 0 {
		return doc.Entries[i].FoundHotels, nil
	}
	return nil, nil
}

// ClearAll empties the found hotels of every entry. Entries and their texts
// are kept.
func (l *Ledger) ClearAll(ctx context.Context, userID string) error {
	return l.update(ctx, userID, func(doc *history.Document) {
		for i := range doc.Entries {
			doc.Entries[i].FoundHotels = []history.HotelSnapshot{}
		}
	})
}

func (l *Ledger) update(ctx context.Context, userID string, fn func(doc *history.Document)) error {
	doc, err := l.store.Load(ctx, userID)
	if err != nil {
		return fmt.Errorf("load history of %s: %w", userID, err)
	}
	doc.UserID = userID
	fn(&doc)
	if err := l.store.Save(ctx, doc); err != nil {
		logrus.WithError(err).Errorf("[HISTORY] failed to save history of %s", userID)
		return fmt.Errorf("save history of %s: %w", userID, err)
	}
	return nil
}
