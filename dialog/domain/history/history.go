// Package history models the per-user ledger of past search invocations.
package history

import "context"

// HotelSnapshot is a presented hotel as it was shown at presentation time.
type HotelSnapshot struct {
	Text  string `json:"text" bson:"text"`
	Photo string `json:"photo_id" bson:"photo_id"`
}

// Entry is one command invocation.
type Entry struct {
	Key         string          `json:"key" bson:"key"`
	Text        string          `json:"text" bson:"text"`
	FoundHotels []HotelSnapshot `json:"found_hotels" bson:"found_hotels"`
}

// Document is the whole ledger of one user. Entries keep insertion order.
type Document struct {
	UserID  string  `json:"user_id" bson:"_id"`
	Entries []Entry `json:"history" bson:"history"`
}

// Find returns the position of the entry with the given key or -1.
func (d *Document) Find(key string) int {
	for i := range d.Entries {
		if d.Entries[i].Key == key {
			return i
		}
	}
	return -1
}

// Upsert returns the entry for key, appending a new one when missing.
func (d *Document) Upsert(key string) *Entry {
	if i := d.Find(key); i >= 0 {
		return &d.Entries[i]
	}
	d.Entries = append(d.Entries, Entry{Key: key})
	return &d.Entries[len(d.Entries)-1]
}

// DocumentStore persists ledger documents. Load returns an empty document
// for unknown users.
type DocumentStore interface {
	Load(ctx context.Context, userID string) (Document, error)
	Save(ctx context.Context, doc Document) error
}
