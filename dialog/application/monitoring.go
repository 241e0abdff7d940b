package application

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/AzielCF/az-hotelbot/dialog/domain/hotel"
	"github.com/AzielCF/az-hotelbot/pkg/botmonitor"
)

// monitoredSearcher records every upstream call in the monitor.
type monitoredSearcher struct {
	next    hotel.Searcher
	monitor *botmonitor.Monitor
}

func newMonitoredSearcher(next hotel.Searcher, monitor *botmonitor.Monitor) hotel.Searcher {
	if monitor == nil {
		return next
	}
	return &monitoredSearcher{next: next, monitor: monitor}
}

func (s *monitoredSearcher) SearchCities(ctx context.Context, query string) ([]hotel.City, error) {
	start := time.Now()
	cities, err := s.next.SearchCities(ctx, query)
	s.observe("city_search", start, err, map[string]string{"query": query})
	return cities, err
}

func (s *monitoredSearcher) SearchHotels(ctx context.Context, q hotel.Query) ([]hotel.Result, error) {
	start := time.Now()
	results, err := s.next.SearchHotels(ctx, q)
	s.observe("hotel_search", start, err, map[string]string{
		"destination": q.DestinationID,
		"sort":        string(q.Sort),
	})
	return results, err
}

func (s *monitoredSearcher) HotelPhotos(ctx context.Context, hotelID string) ([]string, error) {
	start := time.Now()
	photos, err := s.next.HotelPhotos(ctx, hotelID)
	s.observe("photos", start, err, map[string]string{"hotel": hotelID})
	return photos, err
}

func (s *monitoredSearcher) observe(kind string, start time.Time, err error, meta map[string]string) {
	ev := botmonitor.Event{
		Stage:      botmonitor.StageUpstream,
		Kind:       kind,
		Status:     botmonitor.StatusOK,
		Metadata:   meta,
		DurationMs: time.Since(start).Milliseconds(),
	}
	if err != nil {
		ev.Status = botmonitor.StatusError
		ev.Error = hotel.Kind(err)
		logrus.WithError(err).Debugf("[DIALOG] upstream %s failed", kind)
	}
	s.monitor.Record(ev)
}
