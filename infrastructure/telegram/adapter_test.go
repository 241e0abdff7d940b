package telegram

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AzielCF/az-hotelbot/dialog/domain/chat"
	"github.com/AzielCF/az-hotelbot/pkg/botmonitor"
	"github.com/AzielCF/az-hotelbot/pkg/chatpresence"
	"github.com/AzielCF/az-hotelbot/pkg/msgworker"
)

type fakeBot struct {
	mu         sync.Mutex
	sent       []tgbotapi.Chattable
	requests   []tgbotapi.Chattable
	sendErr    error
	requestErr error
}

func (f *fakeBot) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return tgbotapi.Message{}, f.sendErr
	}
	f.sent = append(f.sent, c)
	return tgbotapi.Message{MessageID: 100 + len(f.sent)}, nil
}

func (f *fakeBot) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, c)
	if f.requestErr != nil {
		return nil, f.requestErr
	}
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func TestSend_TextWithReplyKeyboard(t *testing.T) {
	bot := &fakeBot{}
	a := newWithAPI(bot, nil)

	h, err := a.Send(context.Background(), "42", chat.Message{Text: "<b>hi</b>", Reply: [][]string{{"A", "B"}, {"C"}}})
	require.NoError(t, err)
	assert.Equal(t, 101, h.MessageID)

	m, ok := bot.sent[0].(tgbotapi.MessageConfig)
	require.True(t, ok)
	assert.EqualValues(t, 42, m.ChatID)
	assert.Equal(t, "<b>hi</b>", m.Text)
	assert.Equal(t, tgbotapi.ModeHTML, m.ParseMode)
	kb, ok := m.ReplyMarkup.(tgbotapi.ReplyKeyboardMarkup)
	require.True(t, ok)
	assert.True(t, kb.ResizeKeyboard)
	require.Len(t, kb.Keyboard, 2)
	assert.Equal(t, "B", kb.Keyboard[0][1].Text)
}

func TestSend_RemoveReplyKeyboard(t *testing.T) {
	bot := &fakeBot{}
	a := newWithAPI(bot, nil)

	_, err := a.Send(context.Background(), "42", chat.Message{Text: "city?", RemoveReply: true})
	require.NoError(t, err)
	m := bot.sent[0].(tgbotapi.MessageConfig)
	_, ok := m.ReplyMarkup.(tgbotapi.ReplyKeyboardRemove)
	assert.True(t, ok)
}

func TestSend_PhotoWithInlineButtons(t *testing.T) {
	bot := &fakeBot{}
	a := newWithAPI(bot, nil)

	_, err := a.Send(context.Background(), "-1001", chat.Message{
		Text:     "card",
		PhotoURL: "https://img.example/1.jpg",
		Inline: [][]chat.Button{
			{{Text: "map", Data: "map:1,2"}},
			{{Text: "site", URL: "https://example.com"}},
		},
	})
	require.NoError(t, err)

	p, ok := bot.sent[0].(tgbotapi.PhotoConfig)
	require.True(t, ok)
	assert.EqualValues(t, -1001, p.ChatID)
	assert.Equal(t, tgbotapi.FileURL("https://img.example/1.jpg"), p.File)
	assert.Equal(t, "card", p.Caption)
	kb, ok := p.ReplyMarkup.(tgbotapi.InlineKeyboardMarkup)
	require.True(t, ok)
	require.Len(t, kb.InlineKeyboard, 2)
	require.NotNil(t, kb.InlineKeyboard[0][0].CallbackData)
	assert.Equal(t, "map:1,2", *kb.InlineKeyboard[0][0].CallbackData)
	require.NotNil(t, kb.InlineKeyboard[1][0].URL)
	assert.Equal(t, "https://example.com", *kb.InlineKeyboard[1][0].URL)
}

func TestSend_Location(t *testing.T) {
	bot := &fakeBot{}
	a := newWithAPI(bot, nil)

	_, err := a.Send(context.Background(), "42", chat.Message{Text: "🌍 <b>Bed &amp; Breakfast</b>", Location: &chat.Location{Lat: 48.8566, Lon: 2.3522}})
	require.NoError(t, err)
	v, ok := bot.sent[0].(tgbotapi.VenueConfig)
	require.True(t, ok)
	assert.Equal(t, "🌍 Bed & Breakfast", v.Title)
	assert.Equal(t, 48.8566, v.Latitude)
	assert.Equal(t, 2.3522, v.Longitude)
}

func TestSend_InvalidChatID(t *testing.T) {
	a := newWithAPI(&fakeBot{}, nil)
	_, err := a.Send(context.Background(), "not-a-number", chat.Message{Text: "x"})
	assert.Error(t, err)
}

func TestSend_ErrorIsRecorded(t *testing.T) {
	monitor := botmonitor.New(10, 0)
	a := newWithAPI(&fakeBot{sendErr: errors.New("Bad Request: wrong file identifier/HTTP URL specified")}, monitor)

	_, err := a.Send(context.Background(), "42", chat.Message{PhotoURL: "https://bad"})
	assert.ErrorContains(t, err, "wrong file identifier")
	assert.EqualValues(t, 1, monitor.Stats().TotalErrors)
}

func TestEdit_Variants(t *testing.T) {
	bot := &fakeBot{}
	a := newWithAPI(bot, nil)
	ctx := context.Background()
	h := chat.Handle{MessageID: 7}

	require.NoError(t, a.Edit(ctx, "42", h, chat.Message{MarkupOnly: true}))
	markup, ok := bot.requests[0].(tgbotapi.EditMessageReplyMarkupConfig)
	require.True(t, ok)
	assert.Equal(t, 7, markup.MessageID)
	require.NotNil(t, markup.ReplyMarkup)
	assert.Empty(t, markup.ReplyMarkup.InlineKeyboard)

	require.NoError(t, a.Edit(ctx, "42", h, chat.Message{Text: "new", Inline: [][]chat.Button{{{Text: "ok", Data: "x"}}}}))
	text, ok := bot.requests[1].(tgbotapi.EditMessageTextConfig)
	require.True(t, ok)
	assert.Equal(t, "new", text.Text)
	assert.Equal(t, tgbotapi.ModeHTML, text.ParseMode)
	require.NotNil(t, text.ReplyMarkup)

	require.NoError(t, a.Edit(ctx, "42", h, chat.Message{PhotoURL: "https://img.example/2.jpg"}))
	media, ok := bot.requests[2].(tgbotapi.EditMessageMediaConfig)
	require.True(t, ok)
	photo, ok := media.Media.(tgbotapi.InputMediaPhoto)
	require.True(t, ok)
	assert.Equal(t, tgbotapi.FileURL("https://img.example/2.jpg"), photo.Media)
}

func TestEdit_NotModifiedIsIgnored(t *testing.T) {
	a := newWithAPI(&fakeBot{requestErr: errors.New("Bad Request: message is not modified")}, nil)
	assert.NoError(t, a.Edit(context.Background(), "42", chat.Handle{MessageID: 1}, chat.Message{Text: "same"}))
}

func TestDelete_Idempotent(t *testing.T) {
	bot := &fakeBot{requestErr: errors.New("Bad Request: message to delete not found")}
	a := newWithAPI(bot, nil)
	assert.NoError(t, a.Delete(context.Background(), "42", chat.Handle{MessageID: 5}))

	del, ok := bot.requests[0].(tgbotapi.DeleteMessageConfig)
	require.True(t, ok)
	assert.Equal(t, 5, del.MessageID)

	bot.requestErr = errors.New("Forbidden: bot was blocked by the user")
	assert.Error(t, a.Delete(context.Background(), "42", chat.Handle{MessageID: 5}))
}

func TestToEvent(t *testing.T) {
	user := &tgbotapi.User{ID: 7, FirstName: "Ana", LastName: "Diaz"}

	ev, ok := ToEvent(tgbotapi.Update{Message: &tgbotapi.Message{
		MessageID: 11,
		From:      user,
		Chat:      &tgbotapi.Chat{ID: 42},
		Text:      "/lowprice",
	}})
	require.True(t, ok)
	assert.Equal(t, chat.Event{
		Kind:     chat.EventText,
		ChatID:   "42",
		UserID:   "7",
		UserName: "Ana Diaz",
		Text:     "/lowprice",
		Message:  chat.Handle{MessageID: 11},
	}, ev)

	ev, ok = ToEvent(tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{
		ID:      "cb",
		From:    &tgbotapi.User{ID: 7, UserName: "ana"},
		Message: &tgbotapi.Message{MessageID: 12, Chat: &tgbotapi.Chat{ID: 42}},
		Data:    "city:504261",
	}})
	require.True(t, ok)
	assert.Equal(t, chat.EventButton, ev.Kind)
	assert.Equal(t, "city:504261", ev.Text)
	assert.Equal(t, "ana", ev.UserName)
	assert.Equal(t, 12, ev.Message.MessageID)

	_, ok = ToEvent(tgbotapi.Update{Message: &tgbotapi.Message{From: user, Chat: &tgbotapi.Chat{ID: 42}}})
	assert.False(t, ok, "messages without text are ignored")

	_, ok = ToEvent(tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{ID: "inline", From: user}})
	assert.False(t, ok)

	_, ok = ToEvent(tgbotapi.Update{})
	assert.False(t, ok)
}

type recordingHandler struct {
	mu     sync.Mutex
	events []chat.Event
	done   chan struct{}
}

func (r *recordingHandler) Handle(ctx context.Context, ev chat.Event) error {
	r.mu.Lock()
	r.events = append(r.events, ev)
	r.mu.Unlock()
	r.done <- struct{}{}
	return nil
}

func TestDispatcher_AnswersCallbacksAndQueues(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bot := &fakeBot{}
	pool := msgworker.NewPool(2, 4)
	pool.Start(ctx)
	defer pool.Stop()

	handler := &recordingHandler{done: make(chan struct{}, 2)}
	d := NewDispatcher(newWithAPI(bot, nil), pool, handler, nil)

	assert.NoError(t, d.Dispatch(tgbotapi.Update{UpdateID: 1, CallbackQuery: &tgbotapi.CallbackQuery{
		ID:      "cb-1",
		From:    &tgbotapi.User{ID: 7},
		Message: &tgbotapi.Message{MessageID: 3, Chat: &tgbotapi.Chat{ID: 42}},
		Data:    "price_done",
	}}))
	assert.ErrorIs(t, d.Dispatch(tgbotapi.Update{UpdateID: 2}), ErrUnsupportedUpdate)

	select {
	case <-handler.done:
	case <-time.After(2 * time.Second):
		t.Fatal("event was not handled")
	}

	bot.mu.Lock()
	require.Len(t, bot.requests, 1)
	cb, ok := bot.requests[0].(tgbotapi.CallbackConfig)
	bot.mu.Unlock()
	require.True(t, ok)
	assert.Equal(t, "cb-1", cb.CallbackQueryID)

	handler.mu.Lock()
	defer handler.mu.Unlock()
	require.Len(t, handler.events, 1)
	assert.Equal(t, "price_done", handler.events[0].Text)
}

type slowHandler struct {
	bot *fakeBot
}

// Handle returns once the typing indicator has been requested.
func (h slowHandler) Handle(ctx context.Context, ev chat.Event) error {
	deadline := time.After(2 * time.Second)
	for {
		h.bot.mu.Lock()
		for _, r := range h.bot.requests {
			if _, ok := r.(tgbotapi.ChatActionConfig); ok {
				h.bot.mu.Unlock()
				return nil
			}
		}
		h.bot.mu.Unlock()
		select {
		case <-deadline:
			return errors.New("no typing indicator")
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestDispatcher_ShowsTypingForSlowEvents(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bot := &fakeBot{}
	pool := msgworker.NewPool(1, 4)
	var mu sync.Mutex
	var handled []error
	pool.OnJobDone = func(job msgworker.Job, err error, took time.Duration) {
		mu.Lock()
		handled = append(handled, err)
		mu.Unlock()
	}
	pool.Start(ctx)
	defer pool.Stop()

	d := NewDispatcher(newWithAPI(bot, nil), pool, slowHandler{bot: bot}, nil)
	d.ShowTyping(chatpresence.New(0, time.Hour))

	require.NoError(t, d.Dispatch(tgbotapi.Update{UpdateID: 9, Message: &tgbotapi.Message{
		MessageID: 1,
		From:      &tgbotapi.User{ID: 7},
		Chat:      &tgbotapi.Chat{ID: 42},
		Text:      "Paris",
	}}))

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(handled) == 1
	}, 3*time.Second, 10*time.Millisecond)
	mu.Lock()
	assert.NoError(t, handled[0])
	mu.Unlock()
}
