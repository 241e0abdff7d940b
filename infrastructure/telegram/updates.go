package telegram

import (
	"context"
	"errors"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"github.com/AzielCF/az-hotelbot/dialog/domain/chat"
	"github.com/AzielCF/az-hotelbot/pkg/botmonitor"
	"github.com/AzielCF/az-hotelbot/pkg/chatpresence"
	"github.com/AzielCF/az-hotelbot/pkg/msgworker"
)

// ToEvent turns an update into a dialog event. Updates the dialog does not
// react to report false.
func ToEvent(u tgbotapi.Update) (chat.Event, bool) {
	switch {
	case u.CallbackQuery != nil:
		cq := u.CallbackQuery
		if cq.Message == nil || cq.Message.Chat == nil || cq.From == nil {
			return chat.Event{}, false
		}
		return chat.Event{
			Kind:     chat.EventButton,
			ChatID:   strconv.FormatInt(cq.Message.Chat.ID, 10),
			UserID:   strconv.FormatInt(cq.From.ID, 10),
			UserName: displayName(cq.From),
			Text:     cq.Data,
			Message:  chat.Handle{MessageID: cq.Message.MessageID},
		}, true

	case u.Message != nil:
		m := u.Message
		if m.Chat == nil || m.From == nil || strings.TrimSpace(m.Text) == "" {
			return chat.Event{}, false
		}
		return chat.Event{
			Kind:     chat.EventText,
			ChatID:   strconv.FormatInt(m.Chat.ID, 10),
			UserID:   strconv.FormatInt(m.From.ID, 10),
			UserName: displayName(m.From),
			Text:     m.Text,
			Message:  chat.Handle{MessageID: m.MessageID},
		}, true
	}
	return chat.Event{}, false
}

func displayName(u *tgbotapi.User) string {
	if u.UserName != "" {
		return u.UserName
	}
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

var (
	ErrUnsupportedUpdate = errors.New("update carries no dialog event")
	ErrQueueFull         = errors.New("worker queue full")
)

// EventHandler processes one dialog event.
type EventHandler interface {
	Handle(ctx context.Context, ev chat.Event) error
}

// Dispatcher feeds updates into the worker pool, one queue per chat.
type Dispatcher struct {
	adapter *Adapter
	pool    *msgworker.Pool
	handler EventHandler
	monitor *botmonitor.Monitor
	typing  *chatpresence.Tracker
}

func NewDispatcher(adapter *Adapter, pool *msgworker.Pool, handler EventHandler, monitor *botmonitor.Monitor) *Dispatcher {
	return &Dispatcher{adapter: adapter, pool: pool, handler: handler, monitor: monitor}
}

// ShowTyping makes events that take long to handle show a typing
// indicator in their chat.
func (d *Dispatcher) ShowTyping(tr *chatpresence.Tracker) {
	d.typing = tr
}

// Dispatch answers button presses right away and queues the event.
func (d *Dispatcher) Dispatch(u tgbotapi.Update) error {
	if u.CallbackQuery != nil {
		d.adapter.AnswerCallback(u.CallbackQuery.ID)
	}
	ev, ok := ToEvent(u)
	if !ok {
		return ErrUnsupportedUpdate
	}

	traceID := strconv.Itoa(u.UpdateID)
	queued := d.pool.TryDispatch(msgworker.Job{
		ChatKey: ev.SessionKey(),
		TraceID: traceID,
		Handler: func(ctx context.Context) error {
			stop := d.typing.Start(ctx, ev.ChatID, func(ctx context.Context) error {
				return d.adapter.SendTyping(ctx, ev.ChatID)
			})
			defer stop()
			return d.handler.Handle(ctx, ev)
		},
	})
	if !queued {
		d.monitor.Record(botmonitor.Event{
			TraceID: traceID,
			ChatID:  ev.ChatID,
			Stage:   botmonitor.StageInbound,
			Kind:    string(ev.Kind),
			Status:  botmonitor.StatusError,
			Error:   "dropped: " + ErrQueueFull.Error(),
		})
		return ErrQueueFull
	}
	return nil
}

// Poll receives updates with long polling until ctx is done.
func (d *Dispatcher) Poll(ctx context.Context, timeoutSec int) {
	bot := d.adapter.Bot()
	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = timeoutSec
	cfg.AllowedUpdates = []string{"message", "callback_query"}

	updates := bot.GetUpdatesChan(cfg)
	logrus.Info("[TELEGRAM] Long polling started")
	for {
		select {
		case <-ctx.Done():
			bot.StopReceivingUpdates()
			logrus.Info("[TELEGRAM] Long polling stopped")
			return
		case u, ok := <-updates:
			if !ok {
				return
			}
			if err := d.Dispatch(u); errors.Is(err, ErrQueueFull) {
				logrus.WithField("update_id", u.UpdateID).Warn("[TELEGRAM] Update dropped, worker queue full")
			}
		}
	}
}
