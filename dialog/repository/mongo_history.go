package repository

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/AzielCF/az-hotelbot/dialog/domain/history"
)

// MongoHistoryStore keeps one document per user in a MongoDB collection:
// {_id: <user>, history: [{key, text, found_hotels: [{text, photo_id}]}]}.
type MongoHistoryStore struct {
	coll *mongo.Collection
}

func NewMongoHistoryStore(db *mongo.Database, collection string) *MongoHistoryStore {
	return &MongoHistoryStore{coll: db.Collection(collection)}
}

func (s *MongoHistoryStore) Load(ctx context.Context, userID string) (history.Document, error) {
	var doc history.Document
	err := s.coll.FindOne(ctx, bson.M{"_id": userID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return history.Document{UserID: userID}, nil
	}
	if err != nil {
		return history.Document{}, fmt.Errorf("find history: %w", err)
	}
	return doc, nil
}

func (s *MongoHistoryStore) Save(ctx context.Context, doc history.Document) error {
	entries := doc.Entries
	if entries == nil {
		entries = []history.Entry{}
	}
	_, err := s.coll.UpdateOne(ctx,
		bson.M{"_id": doc.UserID},
		bson.M{"$set": bson.M{"history": entries}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("upsert history: %w", err)
	}
	return nil
}
