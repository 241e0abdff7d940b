package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/AzielCF/az-hotelbot/dialog/domain/history"
	"github.com/AzielCF/az-hotelbot/infrastructure/valkey"
)

// ValkeyHistoryStore stores each ledger document as one JSON value.
type ValkeyHistoryStore struct {
	client *valkey.Client
}

func NewValkeyHistoryStore(client *valkey.Client) *ValkeyHistoryStore {
	return &ValkeyHistoryStore{client: client}
}

func (s *ValkeyHistoryStore) key(userID string) string {
	return s.client.Key("history", userID)
}

func (s *ValkeyHistoryStore) Load(ctx context.Context, userID string) (history.Document, error) {
	inner := s.client.Inner()
	data, err := inner.Do(ctx, inner.B().Get().Key(s.key(userID)).Build()).AsBytes()
	if err != nil {
		if valkey.IsNil(err) {
			return history.Document{UserID: userID}, nil
		}
		return history.Document{}, fmt.Errorf("failed to get history: %w", err)
	}

	var doc history.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return history.Document{}, fmt.Errorf("failed to unmarshal history: %w", err)
	}
	doc.UserID = userID
	return doc, nil
}

func (s *ValkeyHistoryStore) Save(ctx context.Context, doc history.Document) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal history: %w", err)
	}
	inner := s.client.Inner()
	if err := inner.Do(ctx, inner.B().Set().Key(s.key(doc.UserID)).Value(string(data)).Build()).Error(); err != nil {
		return fmt.Errorf("failed to save history: %w", err)
	}
	return nil
}
