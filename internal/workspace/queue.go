package workspace

import (
	"context"
	"sync"

	"syno/internal/service"
)

// keyedQueue serializes work per key in arrival order. Work on different
// keys runs concurrently.
type keyedQueue struct {
	mu      sync.Mutex
	tails   map[service.ID]chan struct{}
	pending map[service.ID]int
}

func newKeyedQueue() *keyedQueue {
	return &keyedQueue{
		tails:   make(map[service.ID]chan struct{}),
		pending: make(map[service.ID]int),
	}
}

// lock waits until every earlier holder of key has released it.
// The returned func must be called exactly once.
func (q *keyedQueue) lock(ctx context.Context, key service.ID) (func(), error) {
	done := make(chan struct{})

	q.mu.Lock()
	prev := q.tails[key]
	q.tails[key] = done
	q.pending[key]++
	q.mu.Unlock()

	release := func() {
		q.mu.Lock()
		if q.tails[key] == done {
			delete(q.tails, key)
		}
		if q.pending[key]--; q.pending[key] <= 0 {
			delete(q.pending, key)
		}
		q.mu.Unlock()
		close(done)
	}

	if prev == nil {
		return release, nil
	}
	select {
	case <-prev:
		return release, nil
	case <-ctx.Done():
		// Keep the chain intact: later waiters are queued behind us.
		go func() {
			<-prev
			release()
		}()
		return nil, ctx.Err()
	}
}

// size returns the number of holders and waiters for key.
func (q *keyedQueue) size(key service.ID) int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.pending[key]
}
