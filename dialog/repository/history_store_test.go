package repository

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/AzielCF/az-hotelbot/dialog/domain/history"
	"github.com/AzielCF/az-hotelbot/infrastructure/valkey"
)

// exerciseStore runs the same contract against every DocumentStore.
func exerciseStore(t *testing.T, store history.DocumentStore) {
	ctx := context.Background()
	user := "user-" + time.Now().Format("150405.000000")

	doc, err := store.Load(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, user, doc.UserID)
	assert.Empty(t, doc.Entries)

	doc.Upsert("k2").Text = "second"
	doc.Upsert("k1").Text = "first"
	doc.Entries[0].FoundHotels = []history.HotelSnapshot{{Text: "Hotel A", Photo: "https://img/a.jpg"}}
	require.NoError(t, store.Save(ctx, doc))

	got, err := store.Load(ctx, user)
	require.NoError(t, err)
	require.Len(t, got.Entries, 2)
	assert.Equal(t, "k2", got.Entries[0].Key)
	assert.Equal(t, "k1", got.Entries[1].Key)
	require.Len(t, got.Entries[0].FoundHotels, 1)
	assert.Equal(t, "https://img/a.jpg", got.Entries[0].FoundHotels[0].Photo)

	got.Entries[0].FoundHotels = nil
	require.NoError(t, store.Save(ctx, got))
	again, err := store.Load(ctx, user)
	require.NoError(t, err)
	assert.Empty(t, again.Entries[0].FoundHotels)
	assert.Equal(t, "second", again.Entries[0].Text)
}

func TestMemoryHistoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryHistoryStore())
}

func TestGormHistoryStore_SQLite(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "history.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	store := NewGormHistoryStore(db)
	require.NoError(t, store.Init(context.Background()))
	exerciseStore(t, store)
}

func TestValkeyHistoryStore(t *testing.T) {
	vk, err := valkey.NewClient(valkey.Config{Address: "localhost:6379", KeyPrefix: "hotelbot-test", ConnectTimeout: 500 * time.Millisecond})
	if err != nil {
		t.Skip("No valkey")
	}
	defer vk.Close()
	exerciseStore(t, NewValkeyHistoryStore(vk))
}

func TestMongoHistoryStore(t *testing.T) {
	uri := os.Getenv("MONGO_TEST_URI")
	if uri == "" {
		t.Skip("MONGO_TEST_URI not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	require.NoError(t, err)
	defer client.Disconnect(context.Background())

	db := client.Database("hotelbot_test")
	defer db.Drop(context.Background())
	exerciseStore(t, NewMongoHistoryStore(db, "history"))
}
