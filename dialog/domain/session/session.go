package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/AzielCF/az-hotelbot/dialog/domain/criteria"
)

// Session is the dialog state of one chat.
type Session struct {
	Key       string            `json:"key"`
	UserID    string            `json:"user_id"`
	State     State             `json:"state"`
	EntryKey  string            `json:"entry_key,omitempty"`
	Criteria  *criteria.Builder `json:"criteria,omitempty"`
	Payload   Payload           `json:"-"`
	UpdatedAt time.Time         `json:"updated_at"`
}

func New(key, userID string) *Session {
	return &Session{Key: key, UserID: userID, State: StateIdle}
}

// Transition moves the session to another state through the transition
// table and installs the payload of the new state.
func (s *Session) Transition(to State, p Payload) error {
	if !CanTransition(s.State, to) {
		return transitionError(s.State, to)
	}
	s.State = to
	s.Payload = p
	if to == StateIdle {
		s.EntryKey = ""
		s.Criteria = nil
	}
	return nil
}

// Stay replaces the payload without changing state.
func (s *Session) Stay(p Payload) {
	s.Payload = p
}

func (s *Session) IsIdle() bool {
	return s.State == StateIdle
}

// Clone returns a deep copy so handlers can work on a scratch session that
// is only stored once they succeed.
func (s *Session) Clone() (*Session, error) {
	raw, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	var out Session
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

type envelope struct {
	Key       string            `json:"key"`
	UserID    string            `json:"user_id"`
	State     State             `json:"state"`
	EntryKey  string            `json:"entry_key,omitempty"`
	Criteria  *criteria.Builder `json:"criteria,omitempty"`
	Payload   json.RawMessage   `json:"payload,omitempty"`
	UpdatedAt time.Time         `json:"updated_at"`
}

func (s Session) MarshalJSON() ([]byte, error) {
	env := envelope{
		Key:       s.Key,
		UserID:    s.UserID,
		State:     s.State,
		EntryKey:  s.EntryKey,
		Criteria:  s.Criteria,
		UpdatedAt: s.UpdatedAt,
	}
	if s.Payload != nil {
		raw, err := json.Marshal(s.Payload)
		if err != nil {
			return nil, err
		}
		env.Payload = raw
	}
	return json.Marshal(env)
}

func (s *Session) UnmarshalJSON(data []byte) error {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return err
	}
	if !env.State.Valid() {
		return fmt.Errorf("unknown session state %q", env.State)
	}
	*s = Session{
		Key:       env.Key,
		UserID:    env.UserID,
		State:     env.State,
		EntryKey:  env.EntryKey,
		Criteria:  env.Criteria,
		UpdatedAt: env.UpdatedAt,
	}
	if len(env.Payload) == 0 || string(env.Payload) == "null" {
		return nil
	}
	p, err := decodePayload(env.State, env.Payload)
	if err != nil {
		return fmt.Errorf("decode %s payload: %w", env.State, err)
	}
	s.Payload = p
	return nil
}

func decodePayload(st State, raw json.RawMessage) (Payload, error) {
	switch st {
	case StateAwaitingCity, StateConfirmingCriteria:
		return decodeAs[Prompt](raw)
	case StateSelectingCity:
		return decodeAs[CitySelection](raw)
	case StateAwaitingPriceRange, StateAwaitingMinPrice, StateAwaitingMaxPrice,
		StateAwaitingDistance, StateAwaitingMaxDist:
		return decodeAs[FilterInput](raw)
	case StateAwaitingDateIn, StateAwaitingDateOut, StateConfirmingDates:
		return decodeAs[DateConfirmation](raw)
	case StatePaginating:
		return decodeAs[Paging](raw)
	case StateViewingHistory:
		return decodeAs[HistoryView](raw)
	}
	return nil, nil
}

func decodeAs[T Payload](raw json.RawMessage) (Payload, error) {
	var p T
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, err
	}
	return p, nil
}

// Store persists sessions by key. Get returns ErrNotFound for unknown keys.
type Store interface {
	Save(ctx context.Context, s *Session) error
	Get(ctx context.Context, key string) (*Session, error)
	Delete(ctx context.Context, key string) error
	List(ctx context.Context) ([]*Session, error)
}

// Locker is implemented by stores that can serialize access to one key
// across processes.
type Locker interface {
	Lock(ctx context.Context, key string, ttl time.Duration) (unlock func(), err error)
}
