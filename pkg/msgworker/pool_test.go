package msgworker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func waitTimeout(t *testing.T, wg *sync.WaitGroup, d time.Duration) {
	t.Helper()
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(d):
		t.Fatal("timed out waiting for jobs")
	}
}

// keysOnDistinctShards returns n chat keys that hash to n different workers.
func keysOnDistinctShards(p *Pool, n int) []string {
	seen := map[int]bool{}
	var keys []string
	for i := 0; len(keys) < n; i++ {
		k := fmt.Sprintf("chat-%d", i)
		if s := p.shardFor(k); !seen[s] {
			seen[s] = true
			keys = append(keys, k)
		}
	}
	return keys
}

func TestPool_DispatchNonBlocking(t *testing.T) {
	pool := NewPool(2, 10)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	pool.Start(ctx)
	defer pool.Stop()

	start := time.Now()
	pool.Dispatch(Job{ChatKey: "123", Handler: func(ctx context.Context) error {
		time.Sleep(100 * time.Millisecond)
		return nil
	}})
	assert.Less(t, time.Since(start), 20*time.Millisecond)
}

func TestPool_SameChatSequentialProcessing(t *testing.T) {
	pool := NewPool(4, 100)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	pool.Start(ctx)
	defer pool.Stop()

	var (
		mu      sync.Mutex
		results []int
		wg      sync.WaitGroup
	)
	for i := 1; i <= 5; i++ {
		val := i
		wg.Add(1)
		pool.Dispatch(Job{ChatKey: "chat1", Handler: func(ctx context.Context) error {
			defer wg.Done()
			time.Sleep(5 * time.Millisecond)
			mu.Lock()
			results = append(results, val)
			mu.Unlock()
			return nil
		}})
	}
	waitTimeout(t, &wg, 2*time.Second)

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, []int{1, 2, 3, 4, 5}, results)
}

func TestPool_DifferentChatsRunInParallel(t *testing.T) {
	pool := NewPool(4, 100)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	pool.Start(ctx)
	defer pool.Stop()

	release := make(chan struct{})
	var started sync.WaitGroup
	var finished sync.WaitGroup
	for _, key := range keysOnDistinctShards(pool, 3) {
		started.Add(1)
		finished.Add(1)
		pool.Dispatch(Job{ChatKey: key, Handler: func(ctx context.Context) error {
			defer finished.Done()
			started.Done()
			<-release
			return nil
		}})
	}

	// All three block until released, so they can only all start if they run concurrently.
	waitTimeout(t, &started, 2*time.Second)
	assert.Equal(t, 3, pool.Stats().ActiveWorkers)
	close(release)
	waitTimeout(t, &finished, 2*time.Second)
}

func TestPool_QueueFullDrops(t *testing.T) {
	pool := NewPool(1, 1)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	pool.Start(ctx)
	defer pool.Stop()

	block := make(chan struct{})
	running := make(chan struct{})
	require.True(t, pool.TryDispatch(Job{ChatKey: "a", Handler: func(ctx context.Context) error {
		close(running)
		<-block
		return nil
	}}))
	<-running
	require.True(t, pool.TryDispatch(Job{ChatKey: "a", Handler: func(ctx context.Context) error { return nil }}))
	assert.False(t, pool.TryDispatch(Job{ChatKey: "a", Handler: func(ctx context.Context) error { return nil }}))
	close(block)

	assert.Equal(t, int64(1), pool.Stats().TotalDropped)
}

func TestPool_GracefulShutdownDrainsQueue(t *testing.T) {
	pool := NewPool(2, 10)
	pool.Start(context.Background())

	var completed int32
	for i := 0; i < 4; i++ {
		pool.Dispatch(Job{ChatKey: fmt.Sprint(i), Handler: func(ctx context.Context) error {
			time.Sleep(20 * time.Millisecond)
			atomic.AddInt32(&completed, 1)
			return nil
		}})
	}
	pool.Stop()

	assert.Equal(t, int32(4), atomic.LoadInt32(&completed))
	assert.False(t, pool.TryDispatch(Job{ChatKey: "late", Handler: func(ctx context.Context) error { return nil }}))
}

func TestPool_ErrorsAndPanicsAreCounted(t *testing.T) {
	pool := NewPool(1, 10)
	var done sync.WaitGroup
	var lastErr atomic.Value
	pool.OnJobDone = func(job Job, err error, took time.Duration) {
		if err != nil {
			lastErr.Store(err)
		}
		done.Done()
	}
	pool.Start(context.Background())
	defer pool.Stop()

	done.Add(2)
	pool.Dispatch(Job{ChatKey: "x", TraceID: "t1", Handler: func(ctx context.Context) error {
		return errors.New("upstream down")
	}})
	pool.Dispatch(Job{ChatKey: "x", TraceID: "t2", Handler: func(ctx context.Context) error {
		panic("boom")
	}})
	waitTimeout(t, &done, 2*time.Second)

	st := pool.Stats()
	assert.Equal(t, int64(2), st.TotalErrors)
	assert.Equal(t, int64(2), st.TotalProcessed)
	assert.EqualError(t, lastErr.Load().(error), "upstream down")
}

func TestPool_ConsistentHashing(t *testing.T) {
	pool := NewPool(4, 100)
	s1 := pool.shardFor("chat123")
	assert.Equal(t, s1, pool.shardFor("chat123"))
	assert.GreaterOrEqual(t, s1, 0)
	assert.Less(t, s1, 4)
}

func TestPool_FairDistribution(t *testing.T) {
	pool := NewPool(4, 100)
	counts := make(map[int]int)
	for i := 0; i < 400; i++ {
		counts[pool.shardFor(fmt.Sprintf("%d", 100000+i))]++
	}
	for shard, n := range counts {
		assert.Greater(t, n, 60, "worker %d", shard)
		assert.Less(t, n, 140, "worker %d", shard)
	}
}
