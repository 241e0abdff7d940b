package repository

import (
	"context"
	"sync"
	"time"

	"github.com/AzielCF/az-hotelbot/dialog/domain/session"
	"github.com/sirupsen/logrus"
)

// MemorySessionStore keeps sessions in process memory. Data is lost on restart.
type MemorySessionStore struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[string]*memoryEntry
	stop    chan struct{}
}

type memoryEntry struct {
	raw      []byte
	expireAt time.Time
}

// NewMemorySessionStore creates the store. A ttl of zero keeps sessions until
// they are deleted; otherwise a cleanup goroutine drops expired ones.
func NewMemorySessionStore(ttl time.Duration) *MemorySessionStore {
	ms := &MemorySessionStore{
		ttl:     ttl,
		entries: make(map[string]*memoryEntry),
		stop:    make(chan struct{}),
	}
	if ttl > 0 {
		go ms.cleanupLoop()
	}
	return ms
}

// Save stores a serialized copy so later mutations of s do not leak into the store.
func (ms *MemorySessionStore) Save(ctx context.Context, s *session.Session) error {
	s.UpdatedAt = time.Now().UTC()
	raw, err := s.MarshalJSON()
	if err != nil {
		return err
	}

	ms.mu.Lock()
	defer ms.mu.Unlock()

	e := &memoryEntry{raw: raw}
	if ms.ttl > 0 {
		e.expireAt = time.Now().Add(ms.ttl)
	}
	ms.entries[s.Key] = e
	return nil
}

func (ms *MemorySessionStore) Get(ctx context.Context, key string) (*session.Session, error) {
	ms.mu.RLock()
	e, ok := ms.entries[key]
	ms.mu.RUnlock()

	if !ok || e.expired(time.Now()) {
		return nil, session.ErrNotFound
	}
	var s session.Session
	if err := s.UnmarshalJSON(e.raw); err != nil {
		return nil, err
	}
	return &s, nil
}

func (ms *MemorySessionStore) Delete(ctx context.Context, key string) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	delete(ms.entries, key)
	return nil
}

func (ms *MemorySessionStore) List(ctx context.Context) ([]*session.Session, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	now := time.Now()
	result := make([]*session.Session, 0, len(ms.entries))
	for key, e := range ms.entries {
		if e.expired(now) {
			continue
		}
		var s session.Session
		if err := s.UnmarshalJSON(e.raw); err != nil {
			logrus.Warnf("[MemorySessionStore] skipping unreadable session %s: %v", key, err)
			continue
		}
		result = append(result, &s)
	}
	return result, nil
}

// Close stops the cleanup goroutine.
func (ms *MemorySessionStore) Close() {
	select {
	case <-ms.stop:
	default:
		close(ms.stop)
	}
}

func (e *memoryEntry) expired(now time.Time) bool {
	return !e.expireAt.IsZero() && now.After(e.expireAt)
}

func (ms *MemorySessionStore) cleanupLoop() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ms.stop:
			return
		case <-ticker.C:
			ms.cleanup()
		}
	}
}

func (ms *MemorySessionStore) cleanup() {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	now := time.Now()
	removed := 0
	for key, e := range ms.entries {
		if e.expired(now) {
			delete(ms.entries, key)
			removed++
		}
	}
	if removed > 0 {
		logrus.Infof("[MemorySessionStore] Cleanup: removed %d abandoned dialogs", removed)
	}
}
