package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	valkeylib "github.com/valkey-io/valkey-go"

	"github.com/AzielCF/az-hotelbot/dialog/domain/session"
	"github.com/AzielCF/az-hotelbot/infrastructure/valkey"
)

const (
	lockSuffix     = ":lock"
	lockWaitTime   = 50 * time.Millisecond
	maxLockRetries = 20
)

// Lua script for atomic lock release (only delete if token matches)
const releaseLockScript = `
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
else
	return 0
end
`

// ValkeySessionStore keeps dialog sessions in Valkey so several bot
// processes can serve the same users.
type ValkeySessionStore struct {
	client *valkey.Client
	prefix string
	ttl    time.Duration
}

func NewValkeySessionStore(client *valkey.Client, ttl time.Duration) *ValkeySessionStore {
	return &ValkeySessionStore{
		client: client,
		prefix: client.Key("dialog") + ":",
		ttl:    ttl,
	}
}

func (s *ValkeySessionStore) fullKey(key string) string {
	return s.prefix + key
}

func (s *ValkeySessionStore) inner() valkeylib.Client {
	return s.client.Inner()
}

func (s *ValkeySessionStore) Save(ctx context.Context, sess *session.Session) error {
	sess.UpdatedAt = time.Now().UTC()
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	set := s.inner().B().Set().Key(s.fullKey(sess.Key)).Value(string(data))
	cmd := set.Build()
	if s.ttl > 0 {
		cmd = set.Ex(s.ttl).Build()
	}
	if err := s.inner().Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

func (s *ValkeySessionStore) Get(ctx context.Context, key string) (*session.Session, error) {
	cmd := s.inner().B().Get().Key(s.fullKey(key)).Build()

	data, err := s.inner().Do(ctx, cmd).AsBytes()
	if err != nil {
		if valkey.IsNil(err) {
			return nil, session.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	var sess session.Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return &sess, nil
}

func (s *ValkeySessionStore) Delete(ctx context.Context, key string) error {
	cmd := s.inner().B().Del().Key(s.fullKey(key)).Build()
	if err := s.inner().Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// List returns every stored session. Uses SCAN and MGET.
func (s *ValkeySessionStore) List(ctx context.Context) ([]*session.Session, error) {
	var keys []string
	var cursor uint64
	for {
		cmd := s.inner().B().Scan().Cursor(cursor).Match(s.prefix + "*").Count(100).Build()
		result, err := s.inner().Do(ctx, cmd).AsScanEntry()
		if err != nil {
			return nil, fmt.Errorf("failed to scan sessions: %w", err)
		}
		for _, k := range result.Elements {
			if len(k) > len(lockSuffix) && k[len(k)-len(lockSuffix):] == lockSuffix {
				continue
			}
			keys = append(keys, k)
		}
		cursor = result.Cursor
		if cursor == 0 {
			break
		}
	}
	if len(keys) == 0 {
		return nil, nil
	}

	values, err := s.inner().Do(ctx, s.inner().B().Mget().Key(keys...).Build()).AsStrSlice()
	if err != nil {
		return nil, fmt.Errorf("failed to mget sessions: %w", err)
	}

	out := make([]*session.Session, 0, len(values))
	for i, val := range values {
		if val == "" {
			continue
		}
		var sess session.Session
		if err := json.Unmarshal([]byte(val), &sess); err != nil {
			logrus.Warnf("[ValkeySessionStore] Failed to unmarshal session %s: %v", keys[i], err)
			continue
		}
		out = append(out, &sess)
	}
	return out, nil
}

// Lock takes a distributed lock on one session key. The returned func
// releases it only if the lock is still ours.
func (s *ValkeySessionStore) Lock(ctx context.Context, key string, ttl time.Duration) (func(), error) {
	lockKey := s.fullKey(key) + lockSuffix
	token := uuid.New().String()

	for i := 0; i < maxLockRetries; i++ {
		cmd := s.inner().B().Set().Key(lockKey).Value(token).Nx().Ex(ttl).Build()
		err := s.inner().Do(ctx, cmd).Error()
		if err == nil {
			return func() { s.release(lockKey, token) }, nil
		}
		if !valkey.IsNil(err) {
			logrus.Debugf("[ValkeySessionStore] Lock attempt %d failed for %s: %v", i+1, key, err)
		}

		sleep := lockWaitTime + time.Duration(rand.Intn(20))*time.Millisecond
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(sleep):
		}
	}
	return nil, errors.Join(session.ErrLocked, fmt.Errorf("gave up on %s after %d attempts", key, maxLockRetries))
}

func (s *ValkeySessionStore) release(lockKey, token string) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	cmd := s.inner().B().Eval().Script(releaseLockScript).Numkeys(1).Key(lockKey).Arg(token).Build()
	if err := s.inner().Do(ctx, cmd).Error(); err != nil {
		logrus.Warnf("[ValkeySessionStore] Failed to release lock %s: %v", lockKey, err)
	}
}
