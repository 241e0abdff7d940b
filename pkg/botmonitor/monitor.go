// Package botmonitor keeps a bounded ring of recent dialog events and
// running counters, exposed through the ops API.
package botmonitor

import (
	"sync"
	"sync/atomic"
	"time"
)

const (
	StageInbound  = "inbound"
	StageUpstream = "upstream"
	StageOutbound = "outbound"

	StatusOK    = "ok"
	StatusError = "error"
)

type Event struct {
	Timestamp  time.Time         `json:"timestamp"`
	TraceID    string            `json:"trace_id"`
	ChatID     string            `json:"chat_id"`
	Stage      string            `json:"stage"`  // inbound | upstream | outbound
	Kind       string            `json:"kind"`   // text | button | city_search | hotel_search | photos
	State      string            `json:"state"`  // dialog state after handling
	Status     string            `json:"status"` // ok | error
	Error      string            `json:"error,omitempty"`
	Metadata   map[string]string `json:"metadata,omitempty"`
	DurationMs int64             `json:"duration_ms"`
}

type Stats struct {
	TotalInbound   int64   `json:"total_inbound"`
	TotalUpstream  int64   `json:"total_upstream"`
	TotalOutbound  int64   `json:"total_outbound"`
	TotalErrors    int64   `json:"total_errors"`
	BufferCapacity int     `json:"buffer_capacity"`
	RecentEvents   []Event `json:"recent_events"`
}

type Monitor struct {
	ttl time.Duration

	eventsMu sync.Mutex
	events   []Event
	idx      int
	count    int

	totalInbound  int64
	totalUpstream int64
	totalOutbound int64
	totalErrors   int64
}

// New creates a monitor holding at most size events. Events older than ttl
// are hidden from Stats; zero keeps them until overwritten.
func New(size int, ttl time.Duration) *Monitor {
	if size <= 0 {
		size = 200
	}
	return &Monitor{events: make([]Event, size), ttl: ttl}
}

func (m *Monitor) Record(e Event) {
	if m == nil {
		return
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}

	switch e.Stage {
	case StageInbound:
		atomic.AddInt64(&m.totalInbound, 1)
	case StageUpstream:
		atomic.AddInt64(&m.totalUpstream, 1)
	case StageOutbound:
		if e.Status == StatusOK {
			atomic.AddInt64(&m.totalOutbound, 1)
		}
	}
	if e.Status == StatusError {
		atomic.AddInt64(&m.totalErrors, 1)
	}

	m.eventsMu.Lock()
	m.events[m.idx] = e
	m.idx = (m.idx + 1) % len(m.events)
	if m.count < len(m.events) {
		m.count++
	}
	m.eventsMu.Unlock()
}

// Stats returns the counters and the retained events, oldest first.
func (m *Monitor) Stats() Stats {
	m.eventsMu.Lock()
	defer m.eventsMu.Unlock()

	res := make([]Event, 0, m.count)
	var cutoff time.Time
	if m.ttl > 0 {
		cutoff = time.Now().UTC().Add(-m.ttl)
	}
	start := (m.idx - m.count) % len(m.events)
	if start < 0 {
		start += len(m.events)
	}
	for i := 0; i < m.count; i++ {
		e := m.events[(start+i)%len(m.events)]
		if !cutoff.IsZero() && e.Timestamp.Before(cutoff) {
			continue
		}
		res = append(res, e)
	}

	return Stats{
		TotalInbound:   atomic.LoadInt64(&m.totalInbound),
		TotalUpstream:  atomic.LoadInt64(&m.totalUpstream),
		TotalOutbound:  atomic.LoadInt64(&m.totalOutbound),
		TotalErrors:    atomic.LoadInt64(&m.totalErrors),
		BufferCapacity: len(m.events),
		RecentEvents:   res,
	}
}
