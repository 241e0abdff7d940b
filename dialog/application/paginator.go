package application

import (
	"context"
	"errors"

	"github.com/AzielCF/az-hotelbot/dialog/domain/criteria"
	"github.com/AzielCF/az-hotelbot/dialog/domain/history"
	"github.com/AzielCF/az-hotelbot/dialog/domain/hotel"
	"github.com/AzielCF/az-hotelbot/dialog/domain/paging"
)

// Paginator fetches result pages on demand and hands out one hotel at a
// time. Every hotel it yields is recorded in the ledger first.
type Paginator struct {
	searcher hotel.Searcher
	ledger   *Ledger
}

func NewPaginator(searcher hotel.Searcher, ledger *Ledger) *Paginator {
	return &Paginator{searcher: searcher, ledger: ledger}
}

// FetchPage requests one page. BestDeal pages are cut at the distance bound.
func (p *Paginator) FetchPage(ctx context.Context, c criteria.SearchCriteria, page int) ([]hotel.Result, error) {
	batch, err := p.searcher.SearchHotels(ctx, c.Query(page, paging.PageSize))
	if err != nil {
		return nil, err
	}
	if len(batch) == 0 {
		return nil, hotel.ErrHotelsNotFound
	}
	if c.Command.HasFilters() {
		return paging.TruncateByDistance(batch, c.MaxDistanceKm)
	}
	return batch, nil
}

// Advance yields the next hotel, fetching the following page when the
// cursor has run out. An empty page after the first one means the results
// are exhausted.
func (p *Paginator) Advance(ctx context.Context, cur *paging.Cursor, c criteria.SearchCriteria, userID, entryKey string) (hotel.Result, error) {
	for {
		item, outcome := cur.Next()
		switch outcome {
		case paging.OutcomeItem:
			snap := history.HotelSnapshot{Text: HotelCardText(item, c.Nights()), Photo: item.PhotoRef()}
			if err := p.ledger.AppendFoundHotel(ctx, userID, entryKey, snap); err != nil {
				cur.Unread()
				return hotel.Result{}, err
			}
			return item, nil

		case paging.OutcomeExhausted:
			return hotel.Result{}, hotel.ErrPageExhausted

		case paging.OutcomeRequiresNextPage:
			next := cur.Page + 1
			batch, err := p.FetchPage(ctx, c, next)
			if err != nil {
				if cur.Page > 0 && (errors.Is(err, hotel.ErrHotelsNotFound) || errors.Is(err, hotel.ErrNoResultsInRange)) {
					return hotel.Result{}, hotel.ErrPageExhausted
				}
				return hotel.Result{}, err
			}
			cur.Append(next, batch)
		}
	}
}
