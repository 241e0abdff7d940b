package repository

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/AzielCF/az-hotelbot/dialog/domain/history"
)

// MemoryHistoryStore keeps ledger documents in memory. Used in tests and for
// running the bot without any database.
type MemoryHistoryStore struct {
	mu   sync.RWMutex
	docs map[string][]byte
}

func NewMemoryHistoryStore() *MemoryHistoryStore {
	return &MemoryHistoryStore{docs: make(map[string][]byte)}
}

func (s *MemoryHistoryStore) Load(ctx context.Context, userID string) (history.Document, error) {
	s.mu.RLock()
	raw, ok := s.docs[userID]
	s.mu.RUnlock()

	doc := history.Document{UserID: userID}
	if !ok {
		return doc, nil
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return history.Document{}, err
	}
	return doc, nil
}

func (s *MemoryHistoryStore) Save(ctx context.Context, doc history.Document) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.docs[doc.UserID] = raw
	s.mu.Unlock()
	return nil
}
