package application

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AzielCF/az-hotelbot/dialog/domain/criteria"
	"github.com/AzielCF/az-hotelbot/dialog/domain/hotel"
	"github.com/AzielCF/az-hotelbot/dialog/domain/paging"
	"github.com/AzielCF/az-hotelbot/dialog/repository"
)

func testCriteria(cmd criteria.Command, maxKm float64) criteria.SearchCriteria {
	return criteria.SearchCriteria{
		Command:       cmd,
		City:          hotel.City{ID: "504261", Name: "Paris"},
		DateIn:        time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		DateOut:       time.Date(2024, 6, 5, 0, 0, 0, 0, time.UTC),
		MinPrice:      criteria.DefaultMinPrice,
		MaxPrice:      criteria.DefaultMaxPrice,
		MaxDistanceKm: maxKm,
	}
}

func TestPaginator_FetchPageTruncatesBestDeal(t *testing.T) {
	s := newFakeSearcher()
	s.pages[1] = hotels(1, 2, 3, 9, 10)
	p := NewPaginator(s, NewLedger(repository.NewMemoryHistoryStore()))

	batch, err := p.FetchPage(context.Background(), testCriteria(criteria.CommandBestDeal, 5), 1)
	require.NoError(t, err)
	assert.Len(t, batch, 3)

	_, err = p.FetchPage(context.Background(), testCriteria(criteria.CommandBestDeal, 0), 1)
	assert.ErrorIs(t, err, hotel.ErrNoResultsInRange)

	all, err := p.FetchPage(context.Background(), testCriteria(criteria.CommandLowPrice, 0), 1)
	require.NoError(t, err)
	assert.Len(t, all, 5, "only BestDeal is cut by distance")

	require.Len(t, s.queries, 3)
	assert.Equal(t, paging.PageSize, s.queries[0].PageSize)
	assert.Equal(t, hotel.SortDistance, s.queries[0].Sort)
	require.NotNil(t, s.queries[0].Price)
	assert.Nil(t, s.queries[2].Price)
}

func TestPaginator_FirstEmptyPageIsNotFound(t *testing.T) {
	p := NewPaginator(newFakeSearcher(), NewLedger(repository.NewMemoryHistoryStore()))
	var cur paging.Cursor
	_, err := p.Advance(context.Background(), &cur, testCriteria(criteria.CommandLowPrice, 1000), "u", "k")
	assert.ErrorIs(t, err, hotel.ErrHotelsNotFound)
}

func TestPaginator_AdvanceAcrossPages(t *testing.T) {
	ctx := context.Background()
	s := newFakeSearcher()
	s.pages[1] = manyHotels(25)
	s.pages[2] = manyHotels(2)
	ledger := NewLedger(repository.NewMemoryHistoryStore())
	p := NewPaginator(s, ledger)
	c := testCriteria(criteria.CommandHighPrice, 1000)

	var cur paging.Cursor
	for i := 0; i < 27; i++ {
		_, err := p.Advance(ctx, &cur, c, "u", "k")
		require.NoError(t, err, i)
	}
	assert.Equal(t, 2, s.queryCount())
	assert.True(t, cur.LastPageReached)

	_, err := p.Advance(ctx, &cur, c, "u", "k")
	assert.ErrorIs(t, err, hotel.ErrPageExhausted)
	assert.Equal(t, 2, s.queryCount(), "exhausted cursor does not refetch")

	snaps, err := ledger.ListFoundHotels(ctx, "u", "k")
	require.NoError(t, err)
	assert.Len(t, snaps, 27)
}

func TestPaginator_EmptyLaterPageIsExhausted(t *testing.T) {
	ctx := context.Background()
	s := newFakeSearcher()
	s.pages[1] = manyHotels(25)
	p := NewPaginator(s, NewLedger(repository.NewMemoryHistoryStore()))
	c := testCriteria(criteria.CommandLowPrice, 1000)

	var cur paging.Cursor
	for i := 0; i < 25; i++ {
		_, err := p.Advance(ctx, &cur, c, "u", "k")
		require.NoError(t, err)
	}
	_, err := p.Advance(ctx, &cur, c, "u", "k")
	assert.ErrorIs(t, err, hotel.ErrPageExhausted)
	assert.False(t, cur.LastPageReached)
}

func TestPaginator_UpstreamErrorPropagates(t *testing.T) {
	s := newFakeSearcher()
	s.pageErr[1] = hotel.ErrUpstreamTimeout
	p := NewPaginator(s, NewLedger(repository.NewMemoryHistoryStore()))
	var cur paging.Cursor
	_, err := p.Advance(context.Background(), &cur, testCriteria(criteria.CommandLowPrice, 1000), "u", "k")
	assert.ErrorIs(t, err, hotel.ErrUpstreamTimeout)
}

func TestPaginator_RecordsBeforeReturning(t *testing.T) {
	ctx := context.Background()
	s := newFakeSearcher()
	s.pages[1] = hotels(0.5)
	s.pages[1][0].PhotoURL = ""
	ledger := NewLedger(repository.NewMemoryHistoryStore())
	p := NewPaginator(s, ledger)

	var cur paging.Cursor
	item, err := p.Advance(ctx, &cur, testCriteria(criteria.CommandLowPrice, 1000), "u", "k")
	require.NoError(t, err)

	snaps, err := ledger.ListFoundHotels(ctx, "u", "k")
	require.NoError(t, err)
	require.Len(t, snaps, 1)
	assert.Equal(t, HotelCardText(item, 4), snaps[0].Text)
	assert.Equal(t, hotel.PhotoNotFound, snaps[0].Photo)
}

func TestPaginator_LedgerFailureDoesNotConsumeItem(t *testing.T) {
	ctx := context.Background()
	s := newFakeSearcher()
	s.pages[1] = hotels(1, 2)
	p := NewPaginator(s, NewLedger(failingStore{repository.NewMemoryHistoryStore()}))

	var cur paging.Cursor
	_, err := p.Advance(ctx, &cur, testCriteria(criteria.CommandLowPrice, 1000), "u", "k")
	require.Error(t, err)
	assert.Equal(t, 0, cur.Index)
}
