package revq

import (
	"fmt"
	"io"
	"iter"
	"strings"
)

// Queue is a producer/consumer handle on one shared revision chain. Every
// handle derived from the same root (via Clone) publishes into and reads from
// the same chain; each keeps its own cursor and its own pending buffer.
//
// A Queue does nothing until Advance, Publish, All or Next is called: Enqueue
// only buffers locally.
//
// One Queue value must not be used from multiple goroutines at once. Clones
// are fully independent and may be used concurrently with each other without
// external locking.
type Queue[T any] struct {
	// cursor is partially shared state: every handle can find the current end
	// of the chain from it, but may lag behind with unconsumed revisions.
	cursor  *appendSlot[T]
	pending []T
	hub     *waiterHub
	closed  bool
}

// New creates the root handle of a fresh, empty revision chain.
func New[T any]() *Queue[T] {
	return &Queue[T]{
		cursor: newSlot[T](1), // held by this cursor
		hub:    newWaiterHub(),
	}
}

// Clone derives an independent handle sharing this handle's current cursor
// position. The clone starts with an empty pending buffer and observes only
// revisions published from the shared position forward.
//
// Clone panics on a closed handle: the handle gave up its chain position.
func (q *Queue[T]) Clone() *Queue[T] {
	if q.closed {
		panic("revq: clone of a closed queue handle")
	}
	q.cursor.acquire()
	q.hub.join()
	return &Queue[T]{cursor: q.cursor, hub: q.hub}
}

// Enqueue buffers a value for later publication. It never fails and has no
// effect beyond the handle's private buffer; call Advance or Publish to link
// buffered values into the shared chain.
func (q *Queue[T]) Enqueue(value T) {
	q.pending = append(q.pending, value)
}

// Pending reports how many enqueued values have not been published yet.
func (q *Queue[T]) Pending() int {
	return len(q.pending)
}

// Advance is the fundamental polling primitive. It tries to publish the
// pending buffer front-to-back onto the shared chain and walks the cursor
// forward, returning the next revision this handle has not seen: either one
// discovered while losing a publish race to a concurrent handle, or the one
// the cursor currently rests on. A nil result means nothing is available
// right now; more may arrive later. It is not an error and not stream end.
//
// The returned revision is owned by the caller and must be released.
func (q *Queue[T]) Advance() *Revision[T] {
	return q.advance(nil)
}

func (q *Queue[T]) advance(except chan struct{}) *Revision[T] {
	if q.closed {
		return nil
	}

	before := len(q.pending)
	rev := q.step()

	// Pending shrank, so at least one value went onto the chain: wake waiters.
	if len(q.pending) != before {
		q.hub.notifyAll(except)
	}
	return rev
}

// step runs one round of the publish/advance loop over the lock-free chain.
func (q *Queue[T]) step() *Revision[T] {
	for len(q.pending) > 0 {
		n := newNode(q.pending[0])

		winner := q.cursor.trySet(n)
		if winner == nil {
			// Published. Adopt the new node's successor slot as the cursor
			// and keep publishing until a concurrent handle interrupts us.
			var zero T
			q.pending[0] = zero
			q.pending = q.pending[1:]
			q.moveTo(n.next.Load())
			continue
		}

		// Lost the race: the slot already holds another handle's node. The
		// front value stays pending; hand the winner to the caller and catch
		// up from its successor.
		return q.materialize(winner)
	}

	if n := q.cursor.node.Load(); n != nil {
		return q.materialize(n)
	}
	return nil
}

// materialize wraps the node occupying the cursor slot in a Revision and
// steps the cursor past it. The cursor's holder on the slot is inherited by
// the revision, so no count changes hands for the slot itself.
func (q *Queue[T]) materialize(n *node[T]) *Revision[T] {
	rev := &Revision[T]{slot: q.cursor, node: n}
	next := n.next.Load()
	next.acquire()
	q.cursor = next
	return rev
}

// moveTo advances the cursor without materializing a revision.
func (q *Queue[T]) moveTo(next *appendSlot[T]) {
	next.acquire()
	old := q.cursor
	q.cursor = next
	old.release()
}

// Publish force-flushes the pending buffer, discarding any revisions
// concurrently published by other handles. It is the fire-and-forget
// counterpart of Advance for pure producers.
func (q *Queue[T]) Publish() {
	for {
		rev := q.Advance()
		if rev == nil {
			return
		}
		rev.Release()
	}
}

// All returns an iterator draining Advance until nothing is available. Each
// yielded revision is owned by the loop body and must be released there.
//
//	for rev := range q.All() {
//		use(rev.Value())
//		rev.Release()
//	}
func (q *Queue[T]) All() iter.Seq[*Revision[T]] {
	return func(yield func(*Revision[T]) bool) {
		for {
			rev := q.Advance()
			if rev == nil {
				return
			}
			if !yield(rev) {
				return
			}
		}
	}
}

// Close releases the handle's position on the chain and removes it from the
// live-handle count. Closing the last handle wakes every blocked waiter so
// none sleeps forever. Close is not idempotent: a second call reports
// ErrQueueClosed, all other operations on a closed handle are no-ops.
func (q *Queue[T]) Close() error {
	if q.closed {
		return ErrQueueClosed
	}
	q.closed = true
	q.pending = nil
	q.cursor.release()
	q.hub.leave()
	return nil
}

// DumpState writes a diagnostic snapshot: every revision between this
// handle's cursor and the end of the chain, the pending buffer, and the
// coordinator counters. It never mutates the queue and is not synchronized
// with concurrent publishers; the output is a best-effort snapshot.
func (q *Queue[T]) DumpState(w io.Writer, prefix string) error {
	if q.closed {
		_, err := fmt.Fprintf(w, "%s <closed>\n", prefix)
		return err
	}

	var sb strings.Builder
	s := q.cursor
	for {
		n := s.node.Load()
		if n == nil {
			break
		}
		if sb.Len() > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "%v", n.data)
		s = n.next.Load()
	}

	handles, waiters := q.hub.stats()
	_, err := fmt.Fprintf(w, "%s [%s] pending = %v; handles = %d; waiters = %d\n",
		prefix, sb.String(), q.pending, handles, waiters)
	return err
}
