package application

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/AzielCF/az-hotelbot/dialog/domain/chat"
	"github.com/AzielCF/az-hotelbot/dialog/domain/hotel"
)

type sentMessage struct {
	Handle chat.Handle
	Msg    chat.Message
}

type editCall struct {
	Handle chat.Handle
	Msg    chat.Message
}

// fakeTransport remembers everything sent to one or more chats.
type fakeTransport struct {
	mu           sync.Mutex
	nextID       int
	sent         []sentMessage
	edits        []editCall
	deleted      []chat.Handle
	live         map[int]chat.Message
	rejectPhotos bool
	failDelete   error
	// failText makes every send of a message with this text fail.
	failText string
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{live: map[int]chat.Message{}}
}

func (f *fakeTransport) Send(ctx context.Context, chatID string, msg chat.Message) (chat.Handle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.rejectPhotos && msg.PhotoURL != "" {
		return chat.Handle{}, errors.New("Bad Request: wrong file identifier/HTTP URL specified")
	}
	if f.failText != "" && msg.Text == f.failText {
		return chat.Handle{}, errors.New("Too Many Requests: retry after 5")
	}
	f.nextID++
	h := chat.Handle{MessageID: f.nextID}
	f.sent = append(f.sent, sentMessage{Handle: h, Msg: msg})
	f.live[h.MessageID] = msg
	return h, nil
}

func (f *fakeTransport) Edit(ctx context.Context, chatID string, h chat.Handle, msg chat.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.edits = append(f.edits, editCall{Handle: h, Msg: msg})
	cur, ok := f.live[h.MessageID]
	if !ok {
		return fmt.Errorf("message %d not found", h.MessageID)
	}
	if msg.MarkupOnly {
		cur.Inline = msg.Inline
	} else {
		cur = msg
	}
	f.live[h.MessageID] = cur
	return nil
}

func (f *fakeTransport) Delete(ctx context.Context, chatID string, h chat.Handle) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failDelete != nil {
		return f.failDelete
	}
	f.deleted = append(f.deleted, h)
	delete(f.live, h.MessageID)
	return nil
}

func (f *fakeTransport) last() chat.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.sent) == 0 {
		return chat.Message{}
	}
	return f.sent[len(f.sent)-1].Msg
}

func (f *fakeTransport) lastHandle() chat.Handle {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.sent) == 0 {
		return chat.Handle{}
	}
	return f.sent[len(f.sent)-1].Handle
}

func (f *fakeTransport) liveCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.live)
}

func (f *fakeTransport) isLive(h chat.Handle) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.live[h.MessageID]
	return ok
}

func (f *fakeTransport) sentTexts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.sent))
	for _, s := range f.sent {
		out = append(out, s.Msg.Text)
	}
	return out
}

// fakeSearcher serves canned upstream answers.
type fakeSearcher struct {
	mu       sync.Mutex
	cities   map[string][]hotel.City
	cityErr  error
	pages    map[int][]hotel.Result
	pageErr  map[int]error
	photos   map[string][]string
	queries  []hotel.Query
	photoErr error
}

func newFakeSearcher() *fakeSearcher {
	return &fakeSearcher{
		cities:  map[string][]hotel.City{},
		pages:   map[int][]hotel.Result{},
		pageErr: map[int]error{},
		photos:  map[string][]string{},
	}
}

func (f *fakeSearcher) SearchCities(ctx context.Context, query string) ([]hotel.City, error) {
	if f.cityErr != nil {
		return nil, f.cityErr
	}
	cities, ok := f.cities[query]
	if !ok {
		return nil, hotel.ErrCitiesNotFound
	}
	return cities, nil
}

func (f *fakeSearcher) SearchHotels(ctx context.Context, q hotel.Query) ([]hotel.Result, error) {
	f.mu.Lock()
	f.queries = append(f.queries, q)
	f.mu.Unlock()
	if err := f.pageErr[q.Page]; err != nil {
		return nil, err
	}
	return f.pages[q.Page], nil
}

func (f *fakeSearcher) HotelPhotos(ctx context.Context, hotelID string) ([]string, error) {
	if f.photoErr != nil {
		return nil, f.photoErr
	}
	return f.photos[hotelID], nil
}

func (f *fakeSearcher) queryCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.queries)
}

func hotels(distances ...float64) []hotel.Result {
	out := make([]hotel.Result, len(distances))
	for i, d := range distances {
		out[i] = hotel.Result{
			ID:           fmt.Sprintf("h%d", i+1),
			Name:         fmt.Sprintf("Hotel %d", i+1),
			Stars:        3,
			DistanceKm:   d,
			CostPerNight: 100,
			TotalCost:    400,
			PhotoURL:     fmt.Sprintf("https://img.example/h%d.jpg", i+1),
		}
	}
	return out
}

func manyHotels(n int) []hotel.Result {
	d := make([]float64, n)
	for i := range d {
		d[i] = float64(i + 1)
	}
	return hotels(d...)
}
