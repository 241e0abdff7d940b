package botmonitor

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMonitor_RingKeepsNewest(t *testing.T) {
	m := New(3, 0)
	for i := 0; i < 5; i++ {
		m.Record(Event{Stage: StageInbound, Status: StatusOK, TraceID: fmt.Sprint(i)})
	}
	st := m.Stats()
	assert.Equal(t, int64(5), st.TotalInbound)
	require.Len(t, st.RecentEvents, 3)
	assert.Equal(t, "2", st.RecentEvents[0].TraceID)
	assert.Equal(t, "4", st.RecentEvents[2].TraceID)
	assert.Equal(t, 3, st.BufferCapacity)
}

func TestMonitor_Counters(t *testing.T) {
	m := New(10, 0)
	m.Record(Event{Stage: StageUpstream, Status: StatusError, Error: "timeout"})
	m.Record(Event{Stage: StageOutbound, Status: StatusOK})
	m.Record(Event{Stage: StageOutbound, Status: StatusError})

	st := m.Stats()
	assert.Equal(t, int64(1), st.TotalUpstream)
	assert.Equal(t, int64(1), st.TotalOutbound)
	assert.Equal(t, int64(2), st.TotalErrors)
}

func TestMonitor_TTLHidesOldEvents(t *testing.T) {
	m := New(10, time.Minute)
	m.Record(Event{Stage: StageInbound, Timestamp: time.Now().UTC().Add(-2 * time.Minute)})
	m.Record(Event{Stage: StageInbound})
	assert.Len(t, m.Stats().RecentEvents, 1)
}

func TestMonitor_NilIsNoop(t *testing.T) {
	var m *Monitor
	assert.NotPanics(t, func() { m.Record(Event{}) })
}
