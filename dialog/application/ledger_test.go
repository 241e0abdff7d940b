package application

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AzielCF/az-hotelbot/dialog/domain/history"
	"github.com/AzielCF/az-hotelbot/dialog/repository"
)

func TestLedger_UnknownUserIsEmpty(t *testing.T) {
	l := NewLedger(repository.NewMemoryHistoryStore())
	entries, err := l.ListEntries(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Empty(t, entries)

	hotels, err := l.ListFoundHotels(context.Background(), "nobody", "k")
	require.NoError(t, err)
	assert.Empty(t, hotels)

	require.NoError(t, l.ClearAll(context.Background(), "nobody"))
}

func TestLedger_RecordInvocationOverwrites(t *testing.T) {
	ctx := context.Background()
	l := NewLedger(repository.NewMemoryHistoryStore())

	require.NoError(t, l.RecordInvocation(ctx, "u", "k1", "first"))
	require.NoError(t, l.RecordInvocation(ctx, "u", "k1", "second"))

	entries, err := l.ListEntries(ctx, "u")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "second", entries[0].Text)
}

func TestLedger_AppendCityPrefixesText(t *testing.T) {
	ctx := context.Background()
	l := NewLedger(repository.NewMemoryHistoryStore())
	require.NoError(t, l.RecordInvocation(ctx, "u", "k1", "Command /lowprice"))
	require.NoError(t, l.AppendCityToInvocation(ctx, "u", "k1", "Paris"))

	entries, err := l.ListEntries(ctx, "u")
	require.NoError(t, err)
	assert.Equal(t, "Search in <b>Paris</b>\nCommand /lowprice", entries[0].Text)
}

func TestLedger_AppendCityEscapesName(t *testing.T) {
	ctx := context.Background()
	l := NewLedger(repository.NewMemoryHistoryStore())
	require.NoError(t, l.RecordInvocation(ctx, "u", "k1", "Command /bestdeal"))
	require.NoError(t, l.AppendCityToInvocation(ctx, "u", "k1", "Ann & <Tom>"))

	entries, err := l.ListEntries(ctx, "u")
	require.NoError(t, err)
	assert.Equal(t, "Search in <b>Ann &amp; &lt;Tom&gt;</b>\nCommand /bestdeal", entries[0].Text)
}

func TestLedger_FoundHotelRoundTrip(t *testing.T) {
	ctx := context.Background()
	l := NewLedger(repository.NewMemoryHistoryStore())
	snap := history.HotelSnapshot{Text: "🏨 <b>Le Petit</b>\n⭐⭐", Photo: "AgACAgIAAxkBAAIB"}

	require.NoError(t, l.RecordInvocation(ctx, "u", "k1", "cmd"))
	require.NoError(t, l.AppendFoundHotel(ctx, "u", "k1", snap))

	got, err := l.ListFoundHotels(ctx, "u", "k1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, snap, got[0])
}

func TestLedger_ClearAllKeepsEntries(t *testing.T) {
	ctx := context.Background()
	l := NewLedger(repository.NewMemoryHistoryStore())
	for _, k := range []string{"k1", "k2", "k3"} {
		require.NoError(t, l.RecordInvocation(ctx, "u", k, "text "+k))
		require.NoError(t, l.AppendFoundHotel(ctx, "u", k, history.HotelSnapshot{Text: "h", Photo: "p"}))
	}

	require.NoError(t, l.ClearAll(ctx, "u"))

	entries, err := l.ListEntries(ctx, "u")
	require.NoError(t, err)
	require.Len(t, entries, 3)
	for i, e := range entries {
		assert.Equal(t, []string{"k1", "k2", "k3"}[i], e.Key)
		assert.Equal(t, "text "+e.Key, e.Text)
		assert.Empty(t, e.FoundHotels)
	}
}

type failingStore struct{ history.DocumentStore }

func (failingStore) Save(ctx context.Context, doc history.Document) error {
	return errors.New("disk full")
}

func TestLedger_SaveFailureIsReturned(t *testing.T) {
	l := NewLedger(failingStore{repository.NewMemoryHistoryStore()})
	err := l.RecordInvocation(context.Background(), "u", "k", "t")
	assert.ErrorContains(t, err, "disk full")
}
