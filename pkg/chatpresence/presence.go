// Package chatpresence shows a "typing" indicator in chats whose event
// takes a while to handle, such as a hotel search.
package chatpresence

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Pulse sends one typing indicator to a chat.
type Pulse func(ctx context.Context) error

// Tracker starts pulsing only after delay, so quick answers never show the
// indicator. Telegram clears it after about five seconds, hence every.
type Tracker struct {
	delay time.Duration
	every time.Duration

	mu     sync.Mutex
	active map[string]time.Time
}

func New(delay, every time.Duration) *Tracker {
	if every <= 0 {
		every = 4 * time.Second
	}
	return &Tracker{delay: delay, every: every, active: make(map[string]time.Time)}
}

// Start pulses chatKey until stop is called or ctx is done. stop waits for
// the pulsing goroutine to exit.
func (t *Tracker) Start(ctx context.Context, chatKey string, pulse Pulse) (stop func()) {
	if t == nil || pulse == nil {
		return func() {}
	}

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		defer t.clear(chatKey)

		timer := time.NewTimer(t.delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}

		t.mark(chatKey)
		ticker := time.NewTicker(t.every)
		defer ticker.Stop()
		for {
			if err := pulse(ctx); err != nil && ctx.Err() == nil {
				logrus.WithError(err).Debugf("[PRESENCE] typing pulse failed for %s", chatKey)
			}
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()

	return func() {
		cancel()
		<-done
	}
}

// Active returns the chats currently showing the indicator and since when.
func (t *Tracker) Active() map[string]time.Time {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make(map[string]time.Time, len(t.active))
	for k, v := range t.active {
		out[k] = v
	}
	return out
}

func (t *Tracker) mark(chatKey string) {
	t.mu.Lock()
	t.active[chatKey] = time.Now()
	t.mu.Unlock()
}

func (t *Tracker) clear(chatKey string) {
	t.mu.Lock()
	delete(t.active, chatKey)
	t.mu.Unlock()
}
