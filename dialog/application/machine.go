package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/AzielCF/az-hotelbot/dialog/domain/chat"
	"github.com/AzielCF/az-hotelbot/dialog/domain/hotel"
	"github.com/AzielCF/az-hotelbot/dialog/domain/session"
	"github.com/AzielCF/az-hotelbot/pkg/botmonitor"
)

const (
	entryKeyLayout = "20060102T150405.000"
	sessionLockTTL = 30 * time.Second
)

type Config struct {
	Transport chat.Transport
	Searcher  hotel.Searcher
	Sessions  session.Store
	Ledger    *Ledger
	Monitor   *botmonitor.Monitor
	// Location is used for history timestamps and for "today" in calendars.
	Location *time.Location
	Now      func() time.Time
}

// Machine drives the dialog of every chat. Handle must not be called
// concurrently for the same chat; the worker pool guarantees that.
type Machine struct {
	transport chat.Transport
	searcher  hotel.Searcher
	sessions  session.Store
	ledger    *Ledger
	paginator *Paginator
	presenter *Presenter
	monitor   *botmonitor.Monitor
	loc       *time.Location
	now       func() time.Time
	handlers  map[session.State]stateHandler
}

// turn is the context of one event being handled.
type turn struct {
	ctx   context.Context
	ev    chat.Event
	s     *session.Session
	log   *logrus.Entry
	trace string
}

// stateHandler reports false when the event is not one the state accepts.
type stateHandler func(t *turn) (bool, error)

func NewMachine(cfg Config) *Machine {
	loc := cfg.Location
	if loc == nil {
		loc = time.UTC
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	searcher := newMonitoredSearcher(cfg.Searcher, cfg.Monitor)
	m := &Machine{
		transport: cfg.Transport,
		searcher:  searcher,
		sessions:  cfg.Sessions,
		ledger:    cfg.Ledger,
		paginator: NewPaginator(searcher, cfg.Ledger),
		presenter: NewPresenter(cfg.Transport, cfg.Ledger),
		monitor:   cfg.Monitor,
		loc:       loc,
		now:       now,
	}
	m.handlers = map[session.State]stateHandler{
		session.StateAwaitingCity:       m.onCityQuery,
		session.StateSelectingCity:      m.onCityChoice,
		session.StateAwaitingPriceRange: m.onPriceHub,
		session.StateAwaitingMinPrice:   m.onMinPrice,
		session.StateAwaitingMaxPrice:   m.onMaxPrice,
		session.StateAwaitingDistance:   m.onDistanceHub,
		session.StateAwaitingMaxDist:    m.onMaxDistance,
		session.StateAwaitingDateIn:     m.onDatePick,
		session.StateAwaitingDateOut:    m.onDatePick,
		session.StateConfirmingDates:    m.onDateConfirm,
		session.StateConfirmingCriteria: m.onCriteriaConfirm,
		session.StatePaginating:         m.onShowMore,
		session.StateViewingHistory:     m.onHistoryAction,
	}
	return m
}

// Handle processes one inbound event. The session is stored only when the
// event was handled; on failure the previous state stays in place.
func (m *Machine) Handle(ctx context.Context, ev chat.Event) error {
	start := time.Now()
	trace := uuid.NewString()
	log := logrus.WithFields(logrus.Fields{"chat": ev.ChatID, "trace_id": trace})

	if locker, ok := m.sessions.(session.Locker); ok {
		unlock, err := locker.Lock(ctx, ev.SessionKey(), sessionLockTTL)
		if err != nil {
			return fmt.Errorf("lock session %s: %w", ev.SessionKey(), err)
		}
		defer unlock()
	}

	current, err := m.sessions.Get(ctx, ev.SessionKey())
	if errors.Is(err, session.ErrNotFound) {
		current, err = session.New(ev.SessionKey(), ev.UserID), nil
	}
	if err != nil {
		return fmt.Errorf("load session %s: %w", ev.SessionKey(), err)
	}
	work, err := current.Clone()
	if err != nil {
		return err
	}
	if work.UserID == "" {
		work.UserID = ev.UserID
	}

	t := &turn{ctx: ctx, ev: ev, s: work, log: log, trace: trace}
	log.Debugf("[DIALOG] %s event %q in state %s", ev.Kind, ev.Text, work.State)

	err = m.route(t)
	if err != nil && hotel.IsUserFacing(err) {
		err = m.report(t, err)
	}
	m.record(t, err, time.Since(start))
	if err != nil {
		log.WithError(err).Errorf("[DIALOG] event failed in state %s", current.State)
		if _, sendErr := m.transport.Send(ctx, ev.ChatID, chat.Message{Text: msgInternal}); sendErr != nil {
			log.WithError(sendErr).Warn("[DIALOG] could not notify user about failure")
		}
		return err
	}

	if work.IsIdle() {
		return m.sessions.Delete(ctx, work.Key)
	}
	return m.sessions.Save(ctx, work)
}

func (m *Machine) route(t *turn) error {
	text := strings.TrimSpace(t.ev.Text)

	if t.ev.Kind == chat.EventText {
		switch text {
		case "/start", BtnMainMenu:
			return m.goHome(t, true)
		case "/help", BtnHelp:
			_, err := m.send(t, chat.Message{Text: helpText})
			return err
		case "/history", BtnHistory:
			return m.openHistory(t)
		}
		if cmd, ok := commandFromText(text); ok {
			return m.startCommand(t, cmd)
		}
	}

	if t.ev.Kind == chat.EventButton {
		action, arg := splitData(text)
		switch action {
		case actNoop:
			return nil
		case actClose:
			return m.transport.Delete(t.ctx, t.ev.ChatID, t.ev.Message)
		case actMap:
			return m.showMap(t, arg)
		case actPhotos:
			return m.openPhotos(t, arg)
		case actPhoto:
			return m.flipPhoto(t, arg)
		}
	}

	if h, ok := m.handlers[t.s.State]; ok {
		handled, err := h(t)
		if handled || err != nil {
			return err
		}
	}
	return m.echo(t)
}

// report tells the user about a search error. Errors that do not keep the
// state end the session.
func (m *Machine) report(t *turn, cause error) error {
	t.log.WithField("kind", hotel.Kind(cause)).Infof("[DIALOG] %v", cause)
	if keepsState(cause) {
		_, err := m.send(t, chat.Message{Text: userMessage(cause)})
		return err
	}
	if err := m.reset(t); err != nil {
		return err
	}
	_, err := m.send(t, chat.Message{Text: userMessage(cause), Reply: mainMenuKeyboard()})
	return err
}

// reset drops the current dialog, tearing down an open history view.
func (m *Machine) reset(t *turn) error {
	if view, ok := t.s.Payload.(session.HistoryView); ok {
		if err := m.presenter.TeardownAll(t.ctx, &view, t.ev.ChatID); err != nil {
			t.log.WithError(err).Warn("[DIALOG] history teardown incomplete")
		}
	}
	return t.s.Transition(session.StateIdle, nil)
}

func (m *Machine) goHome(t *turn, menu bool) error {
	if err := m.reset(t); err != nil {
		return err
	}
	if !menu {
		return nil
	}
	_, err := m.send(t, chat.Message{Text: txtChooseAction, Reply: mainMenuKeyboard()})
	return err
}

func (m *Machine) echo(t *turn) error {
	switch {
	case t.ev.Kind == chat.EventButton:
		_, err := m.send(t, chat.Message{Text: msgStaleButton})
		return err
	case t.s.IsIdle():
		_, err := m.send(t, chat.Message{Text: msgUseCommand})
		return err
	default:
		_, err := m.send(t, chat.Message{Text: echoText(t.ev.Text)})
		return err
	}
}

func (m *Machine) send(t *turn, msg chat.Message) (chat.Handle, error) {
	return m.transport.Send(t.ctx, t.ev.ChatID, msg)
}

func (m *Machine) edit(t *turn, h chat.Handle, msg chat.Message) error {
	if h.IsZero() {
		_, err := m.send(t, msg)
		return err
	}
	return m.transport.Edit(t.ctx, t.ev.ChatID, h, msg)
}

func (m *Machine) del(t *turn, h chat.Handle) error {
	if h.IsZero() {
		return nil
	}
	return m.transport.Delete(t.ctx, t.ev.ChatID, h)
}

func (m *Machine) today() time.Time {
	n := m.now().In(m.loc)
	return time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, time.UTC)
}

func (m *Machine) record(t *turn, err error, took time.Duration) {
	ev := botmonitor.Event{
		TraceID:    t.trace,
		ChatID:     t.ev.ChatID,
		Stage:      botmonitor.StageInbound,
		Kind:       string(t.ev.Kind),
		State:      string(t.s.State),
		Status:     botmonitor.StatusOK,
		DurationMs: took.Milliseconds(),
	}
	if err != nil {
		ev.Status = botmonitor.StatusError
		ev.Error = err.Error()
	}
	m.monitor.Record(ev)
}
