package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/AzielCF/az-hotelbot/dialog/domain/history"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// historyModel is the relational row holding one ledger document.
type historyModel struct {
	UserID    string `gorm:"primaryKey;column:user_id;size:64"`
	Entries   string `gorm:"column:entries;type:text"`
	UpdatedAt time.Time
}

func (historyModel) TableName() string { return "search_history" }

// GormHistoryStore keeps ledger documents in SQLite or Postgres.
type GormHistoryStore struct {
	db *gorm.DB
}

func NewGormHistoryStore(db *gorm.DB) *GormHistoryStore {
	return &GormHistoryStore{db: db}
}

func (s *GormHistoryStore) Init(ctx context.Context) error {
	return s.db.WithContext(ctx).AutoMigrate(&historyModel{})
}

func (s *GormHistoryStore) Load(ctx context.Context, userID string) (history.Document, error) {
	doc := history.Document{UserID: userID}

	var m historyModel
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return doc, nil
	}
	if err != nil {
		return history.Document{}, err
	}
	if m.Entries != "" {
		if err := json.Unmarshal([]byte(m.Entries), &doc.Entries); err != nil {
			return history.Document{}, fmt.Errorf("corrupt history for %s: %w", userID, err)
		}
	}
	return doc, nil
}

func (s *GormHistoryStore) Save(ctx context.Context, doc history.Document) error {
	raw, err := json.Marshal(doc.Entries)
	if err != nil {
		return err
	}
	m := historyModel{UserID: doc.UserID, Entries: string(raw), UpdatedAt: time.Now().UTC()}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"entries", "updated_at"}),
	}).Create(&m).Error
}
