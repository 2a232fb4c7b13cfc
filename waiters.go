package revq

import (
	"context"
	"sync"
	"sync/atomic"
)

// waiterHub is the wait coordinator shared by all handles of one chain. It
// tracks how many handles are alive (for the "could anything still publish?"
// termination rule) and holds one buffered channel per currently suspended
// waiter. The mutex guards only the registry; it is never held while parked.
type waiterHub struct {
	handles atomic.Int64
	mu      sync.Mutex
	waiters map[chan struct{}]struct{}
}

func newWaiterHub() *waiterHub {
	h := &waiterHub{waiters: make(map[chan struct{}]struct{})}
	h.handles.Store(1)
	return h
}

func (h *waiterHub) join() {
	h.handles.Add(1)
}

// leave removes a closed handle from the live count and wakes every waiter:
// each re-checks the chain and the count, so the last close can never strand
// a sleeper.
func (h *waiterHub) leave() {
	h.handles.Add(-1)
	h.notifyAll(nil)
}

func (h *waiterHub) live() int64 {
	return h.handles.Load()
}

func (h *waiterHub) register(ch chan struct{}) {
	h.mu.Lock()
	h.waiters[ch] = struct{}{}
	h.mu.Unlock()
}

func (h *waiterHub) unregister(ch chan struct{}) {
	h.mu.Lock()
	delete(h.waiters, ch)
	h.mu.Unlock()
}

// notifyAll drains the registry and signals every suspended waiter except the
// caller's own channel. Entries are consumed on wake, so a wakeup is never
// double-delivered; woken waiters re-register before their next check.
func (h *waiterHub) notifyAll(except chan struct{}) {
	h.mu.Lock()
	for ch := range h.waiters {
		if ch == except {
			continue
		}
		delete(h.waiters, ch)
		select {
		case ch <- struct{}{}:
		default:
		}
	}
	h.mu.Unlock()
}

func (h *waiterHub) stats() (handles int64, waiters int) {
	h.mu.Lock()
	waiters = len(h.waiters)
	h.mu.Unlock()
	return h.handles.Load(), waiters
}

// Next suspends the caller until a revision is available, publishing this
// handle's own pending values while it waits. It returns ErrExhausted instead of
// hanging once no other live handle exists, because nothing could wake it
// again. Context cancellation is the only timeout mechanism: the queue itself
// has none.
func (q *Queue[T]) Next(ctx context.Context) (*Revision[T], error) {
	if q.closed {
		return nil, ErrQueueClosed
	}

	ch := make(chan struct{}, 1)
	for {
		// Register before re-checking the chain so a publish landing between
		// the check and the park is never missed.
		q.hub.register(ch)

		if rev := q.advance(ch); rev != nil {
			q.hub.unregister(ch)
			return rev, nil
		}

		if q.hub.live() == 1 {
			q.hub.unregister(ch)
			// Catch the race between the advance above and the count
			// dropping to one: the departing handle may have published
			// first, leaving unread revisions on the chain.
			if rev := q.step(); rev != nil {
				return rev, nil
			}
			return nil, ErrExhausted
		}

		select {
		case <-ch:
			// Woken by a publish or a departing handle; re-check.
		case <-ctx.Done():
			q.hub.unregister(ch)
			return nil, ctx.Err()
		}
	}
}

// NextBlocking is Next without a cancellation point, for plain threaded
// callers. It parks the goroutine until data arrives or every other handle is
// closed.
func (q *Queue[T]) NextBlocking() (*Revision[T], error) {
	return q.Next(context.Background())
}
