// Package revq implements a broadcast revision queue: an unbounded, append-only
// sequence of values shared by any number of producer/consumer handles derived
// by cloning one root handle. Publishing is lock-free and never blocks on slow
// consumers; every handle observes every revision published after its cursor
// position, in chain order, exactly once.
//
// # Architecture
//
// The queue is a singly-linked chain of immutable revision nodes. Each node
// links to its successor through an append slot, a set-once atomic cell that
// is written exactly once via compare-and-swap. Concurrent publishers race on
// the same slot; the loser does not retry the slot but adopts the winner's
// node as a newly discovered revision and continues from its successor. This
// is the only mutation the chain ever sees, so readers need no locks at all.
//
// Every handle owns a cursor (its position in the chain) and a private pending
// buffer of values not yet published. Advance drains the pending buffer into
// the chain and walks the cursor forward, returning one discovered revision
// per call:
//
//	q := revq.New[string]()
//	q.Enqueue("hello")
//	q.Publish() // flush pending, discard concurrently published revisions
//
//	l := q.Clone() // same chain position, empty pending buffer
//	q.Enqueue("world")
//	q.Publish()
//
//	rev := l.Advance() // revision carrying "world"
//	defer rev.Release()
//
// # Handles
//
// A single handle is owned by one goroutine at a time, like any other Go
// collection. Distinct handles, including clones of the same root, are safe
// to use from any number of goroutines concurrently; all cross-handle
// coordination happens through the chain's atomic slots.
//
// Clones share the cloning handle's current cursor position, not the chain
// origin: a subscriber cloned after a publish never sees that publish.
//
// Close a handle when done with it. The last close wakes every blocked waiter
// so none sleeps forever.
//
// # Waiting
//
// Next suspends the caller until some handle (possibly this one, racing
// others) publishes a revision, or until no other live handle remains that
// could ever publish again, in which case it returns ErrExhausted instead of
// sleeping forever:
//
//	rev, err := q.Next(ctx)
//	switch {
//	case errors.Is(err, revq.ErrExhausted):
//		// every other handle is closed; no more data, ever
//	case err != nil:
//		// ctx cancelled
//	default:
//		defer rev.Release()
//		use(rev.Value())
//	}
//
// There is no built-in timeout; the context is the caller's timer.
//
// # Memory
//
// Revisions are kept alive by the handles that can still reach them: cursors
// and Revision references hold slots, and releasing the last holder of a slot
// cascades down the chain. A long-held Revision therefore pins every later
// revision; call TryDetach to sever its forward link once the reference is
// provably the sole owner, or simply Release it. Leaked (never released)
// references are reclaimed by the garbage collector as usual, but they make
// TryDetach on neighbouring revisions fail until they are collected.
package revq
