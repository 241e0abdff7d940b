// Package msgworker runs chat events on a fixed set of workers. Events of
// one chat always land on the same worker, so they are handled in arrival
// order while different chats proceed in parallel.
package msgworker

import (
	"context"
	"hash/fnv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
)

// Job is one chat event to process.
type Job struct {
	ChatKey string
	TraceID string
	Handler func(ctx context.Context) error
}

type PoolStats struct {
	NumWorkers      int            `json:"num_workers"`
	QueueSize       int            `json:"queue_size"`
	ActiveWorkers   int            `json:"active_workers"`
	TotalDispatched int64          `json:"total_dispatched"`
	TotalProcessed  int64          `json:"total_processed"`
	TotalDropped    int64          `json:"total_dropped"`
	TotalErrors     int64          `json:"total_errors"`
	Uptime          string         `json:"uptime"`
	WorkerStats     []WorkerStats  `json:"worker_stats"`
	ActiveChats     map[string]int `json:"active_chats"` // chat key -> worker id
}

type WorkerStats struct {
	WorkerID      int   `json:"worker_id"`
	QueueDepth    int   `json:"queue_depth"`
	IsProcessing  bool  `json:"is_processing"`
	JobsProcessed int64 `json:"jobs_processed"`
}

type activeChat struct {
	workerID  int
	updatedAt time.Time
}

// activeChatTTL is how long a chat stays listed as active after dispatch.
const activeChatTTL = 2 * time.Second

type Pool struct {
	numWorkers int
	queueSize  int
	workers    []*worker
	wg         sync.WaitGroup
	stopOnce   sync.Once
	stopped    int32
	stopCh     chan struct{}
	startTime  time.Time

	totalDispatched int64
	totalProcessed  int64
	totalDropped    int64
	totalErrors     int64

	activeMu    sync.Mutex
	activeChats map[string]activeChat

	// OnJobDone is called after every job with its outcome.
	OnJobDone func(job Job, err error, took time.Duration)
}

type worker struct {
	id            int
	jobs          chan Job
	ctx           context.Context
	cancel        context.CancelFunc
	processing    int32
	jobsProcessed int64
	pool          *Pool
}

func NewPool(numWorkers, queueSize int) *Pool {
	if numWorkers <= 0 {
		numWorkers = 10
	}
	if queueSize <= 0 {
		queueSize = 100
	}
	return &Pool{
		numWorkers:  numWorkers,
		queueSize:   queueSize,
		workers:     make([]*worker, numWorkers),
		activeChats: make(map[string]activeChat),
		stopCh:      make(chan struct{}),
		startTime:   time.Now(),
	}
}

// Start launches the workers. Cancelling ctx makes them drain and exit.
func (p *Pool) Start(ctx context.Context) {
	p.wg.Add(1)
	go p.pruneActiveChats(ctx)

	for i := 0; i < p.numWorkers; i++ {
		wctx, cancel := context.WithCancel(ctx)
		w := &worker{
			id:     i,
			jobs:   make(chan Job, p.queueSize),
			ctx:    wctx,
			cancel: cancel,
			pool:   p,
		}
		p.workers[i] = w
		p.wg.Add(1)
		go w.run(&p.wg)
	}

	logrus.Infof("[MSG_WORKER_POOL] Started with %d workers, queue size: %d", p.numWorkers, p.queueSize)
}

func (p *Pool) pruneActiveChats(ctx context.Context) {
	defer p.wg.Done()
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-p.stopCh:
			return
		case now := <-ticker.C:
			p.activeMu.Lock()
			for k, v := range p.activeChats {
				if now.Sub(v.updatedAt) > activeChatTTL {
					delete(p.activeChats, k)
				}
			}
			p.activeMu.Unlock()
		}
	}
}

// TryDispatch queues the job on its chat's worker without blocking and
// reports whether it was accepted.
func (p *Pool) TryDispatch(job Job) bool {
	if atomic.LoadInt32(&p.stopped) == 1 {
		atomic.AddInt64(&p.totalDropped, 1)
		return false
	}

	shard := p.shardFor(job.ChatKey)
	atomic.AddInt64(&p.totalDispatched, 1)

	p.activeMu.Lock()
	p.activeChats[job.ChatKey] = activeChat{workerID: shard, updatedAt: time.Now()}
	p.activeMu.Unlock()

	sent := func() (ok bool) {
		// A send on a queue closed by Stop panics.
		defer func() {
			if r := recover(); r != nil {
				ok = false
			}
		}()
		select {
		case p.workers[shard].jobs <- job:
			return true
		default:
			return false
		}
	}()
	if sent {
		return true
	}

	p.activeMu.Lock()
	delete(p.activeChats, job.ChatKey)
	p.activeMu.Unlock()

	atomic.AddInt64(&p.totalDropped, 1)
	logrus.Warnf("[MSG_WORKER_POOL] Worker %d queue full (or stopped), dropping job for chat %s", shard, job.ChatKey)
	return false
}

func (p *Pool) Dispatch(job Job) {
	_ = p.TryDispatch(job)
}

// Stop closes the queues and waits for in-flight and queued jobs.
func (p *Pool) Stop() {
	p.stopOnce.Do(func() {
		atomic.StoreInt32(&p.stopped, 1)
		close(p.stopCh)
		logrus.Info("[MSG_WORKER_POOL] Stopping workers...")

		for _, w := range p.workers {
			if w == nil {
				continue
			}
			close(w.jobs)
		}
		p.wg.Wait()
		for _, w := range p.workers {
			if w != nil {
				w.cancel()
			}
		}

		logrus.Info("[MSG_WORKER_POOL] All workers stopped")
	})
}

func (p *Pool) shardFor(chatKey string) int {
	h := fnv.New32a()
	h.Write([]byte(chatKey))
	return int(h.Sum32() % uint32(p.numWorkers))
}

func (p *Pool) Stats() PoolStats {
	workerStats := make([]WorkerStats, 0, len(p.workers))
	active := 0
	for _, w := range p.workers {
		if w == nil {
			continue
		}
		busy := atomic.LoadInt32(&w.processing) == 1
		if busy {
			active++
		}
		workerStats = append(workerStats, WorkerStats{
			WorkerID:      w.id,
			QueueDepth:    len(w.jobs),
			IsProcessing:  busy,
			JobsProcessed: atomic.LoadInt64(&w.jobsProcessed),
		})
	}

	now := time.Now()
	p.activeMu.Lock()
	chats := make(map[string]int, len(p.activeChats))
	for k, v := range p.activeChats {
		if now.Sub(v.updatedAt) > activeChatTTL {
			continue
		}
		chats[k] = v.workerID
	}
	p.activeMu.Unlock()

	return PoolStats{
		NumWorkers:      p.numWorkers,
		QueueSize:       p.queueSize,
		ActiveWorkers:   active,
		TotalDispatched: atomic.LoadInt64(&p.totalDispatched),
		TotalProcessed:  atomic.LoadInt64(&p.totalProcessed),
		TotalDropped:    atomic.LoadInt64(&p.totalDropped),
		TotalErrors:     atomic.LoadInt64(&p.totalErrors),
		Uptime:          time.Since(p.startTime).Truncate(time.Second).String(),
		WorkerStats:     workerStats,
		ActiveChats:     chats,
	}
}

func (w *worker) run(wg *sync.WaitGroup) {
	defer wg.Done()
	logrus.Debugf("[MSG_WORKER_POOL] Worker %d started", w.id)

	for job := range w.jobs {
		w.process(job)
	}
	logrus.Debugf("[MSG_WORKER_POOL] Worker %d shutting down", w.id)
}

func (w *worker) process(job Job) {
	start := time.Now()
	atomic.StoreInt32(&w.processing, 1)

	var err error
	defer func() {
		if r := recover(); r != nil {
			atomic.AddInt64(&w.pool.totalErrors, 1)
			logrus.Errorf("[MSG_WORKER_POOL] Worker %d panic for chat %s: %v", w.id, job.ChatKey, r)
		}
		atomic.StoreInt32(&w.processing, 0)
		atomic.AddInt64(&w.jobsProcessed, 1)
		atomic.AddInt64(&w.pool.totalProcessed, 1)
		if w.pool.OnJobDone != nil {
			w.pool.OnJobDone(job, err, time.Since(start))
		}
	}()

	err = job.Handler(w.ctx)
	if err != nil {
		atomic.AddInt64(&w.pool.totalErrors, 1)
		logrus.WithError(err).WithField("trace_id", job.TraceID).
			Errorf("[MSG_WORKER_POOL] Worker %d job failed for chat %s", w.id, job.ChatKey)
	}
}
