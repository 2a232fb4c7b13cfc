package revq

import "sync/atomic"

// Revision is an owning reference to one published value. It keeps the value's
// node, and transitively everything published after it, reachable until the
// reference is released. Predecessor revisions are not kept alive: the chain
// only links forward.
//
// A Revision is safe to share across goroutines through Clone; a single
// Revision value, like a queue handle, belongs to one goroutine at a time.
//
// Callers that hold a Revision long-term should either Release it once the
// value has been copied out, or TryDetach it so the rest of the chain can be
// reclaimed. A leaked Revision is eventually collected by the GC, but until
// then it blocks TryDetach for other references on the same node.
type Revision[T any] struct {
	slot     *appendSlot[T]
	node     *node[T]
	released atomic.Bool
}

// Value returns the published payload. The payload is immutable; for large
// values wrap the revision with Map instead of copying.
func (r *Revision[T]) Value() T {
	return r.node.data
}

// Clone returns an independent reference to the same revision. Both
// references must be released separately, and TryDetach fails on either while
// the other is live.
func (r *Revision[T]) Clone() *Revision[T] {
	r.slot.acquire()
	return &Revision[T]{slot: r.slot, node: r.node}
}

// Release gives up this reference's hold on the revision. It is idempotent;
// only the first call drops the holder. Value must not be called afterwards.
func (r *Revision[T]) Release() {
	if r.released.CompareAndSwap(false, true) {
		r.slot.release()
	}
}

// TryDetach severs the revision's forward link, replacing it with a fresh
// empty slot so that everything published after this revision can be
// reclaimed once otherwise unreferenced. It succeeds only when this reference
// is the sole holder of the revision: no clone, no other handle's cursor, and
// no live predecessor that a cursor could still traverse from. On failure the
// chain is untouched and the call may be retried later.
func (r *Revision[T]) TryDetach() error {
	if r.released.Load() {
		return ErrRevisionReleased
	}
	if r.slot.holders.Load() != 1 {
		return ErrRevisionShared
	}
	// Sole holder: nothing can clone this reference or walk into the slot
	// concurrently (a cursor approaching from behind would imply a live
	// predecessor link, i.e. a second holder), so the swap is unobserved.
	old := r.node.next.Swap(newSlot[T](1))
	old.release()
	return nil
}

// Mapped is a read-only projection of a Revision, produced by Map. It shares
// the underlying reference: releasing or detaching the projection acts on the
// revision it was derived from.
type Mapped[T, U any] struct {
	rev *Revision[T]
	fn  func(T) U
}

// Map derives a projection of the revision's payload without copying the
// revision itself. The projection participates in the node's lifecycle
// exactly like the reference it wraps.
func Map[T, U any](rev *Revision[T], fn func(T) U) *Mapped[T, U] {
	return &Mapped[T, U]{rev: rev, fn: fn}
}

// Value returns the projected payload.
func (m *Mapped[T, U]) Value() U {
	return m.fn(m.rev.Value())
}

// TryDetach delegates to the underlying revision reference.
func (m *Mapped[T, U]) TryDetach() error {
	return m.rev.TryDetach()
}

// Release delegates to the underlying revision reference.
func (m *Mapped[T, U]) Release() {
	m.rev.Release()
}

// Unwrap returns the underlying revision reference.
func (m *Mapped[T, U]) Unwrap() *Revision[T] {
	return m.rev
}
