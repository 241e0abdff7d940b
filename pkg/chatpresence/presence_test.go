package chatpresence

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStart_QuickHandlingNeverPulses(t *testing.T) {
	tr := New(time.Hour, time.Second)
	var pulses int32

	stop := tr.Start(context.Background(), "42", func(context.Context) error {
		atomic.AddInt32(&pulses, 1)
		return nil
	})
	stop()

	assert.Zero(t, atomic.LoadInt32(&pulses))
	assert.Empty(t, tr.Active())
}

func TestStart_PulsesUntilStopped(t *testing.T) {
	tr := New(0, 10*time.Millisecond)
	var pulses int32

	stop := tr.Start(context.Background(), "42", func(context.Context) error {
		atomic.AddInt32(&pulses, 1)
		return nil
	})

	assert.Eventually(t, func() bool { return atomic.LoadInt32(&pulses) >= 3 }, time.Second, 5*time.Millisecond)
	assert.Contains(t, tr.Active(), "42")

	stop()
	after := atomic.LoadInt32(&pulses)
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, after, atomic.LoadInt32(&pulses))
	assert.Empty(t, tr.Active())
}

func TestStart_NilTracker(t *testing.T) {
	var tr *Tracker
	stop := tr.Start(context.Background(), "42", func(context.Context) error { return nil })
	assert.NotPanics(t, stop)
}
