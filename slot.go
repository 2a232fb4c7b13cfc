package revq

import "sync/atomic"

// node is one published revision: an immutable payload plus the append slot
// through which its successor will be linked. The next pointer is written at
// creation and only ever replaced by TryDetach, which first proves no other
// holder can traverse through this node.
type node[T any] struct {
	data T
	next atomic.Pointer[appendSlot[T]]
}

func newNode[T any](data T) *node[T] {
	n := &node[T]{data: data}
	// The fresh successor slot starts with one holder: the link from this node.
	n.next.Store(newSlot[T](1))
	return n
}

// appendSlot is the set-once cell linking one node to its successor. It
// transitions from empty to full exactly once, via compare-and-swap; losers of
// the race continue from the winner's successor slot instead of retrying.
//
// holders counts everything that can still reach the slot: queue cursors
// positioned on it, live Revision references materialized at it, and the link
// from its predecessor node. The count exists purely to prove exclusive
// ownership for TryDetach; reclamation itself is the garbage collector's job.
type appendSlot[T any] struct {
	node    atomic.Pointer[node[T]]
	holders atomic.Int64
}

func newSlot[T any](holders int64) *appendSlot[T] {
	s := &appendSlot[T]{}
	s.holders.Store(holders)
	return s
}

// trySet attempts the empty-to-full transition. It returns nil when n was
// installed, or the node that already occupies the slot when the race was
// lost. The slot is never mutated on the losing path.
func (s *appendSlot[T]) trySet(n *node[T]) *node[T] {
	if s.node.CompareAndSwap(nil, n) {
		return nil
	}
	winner := s.node.Load()
	if winner == nil {
		// A full slot can never empty again; observing one here means the
		// set-once contract was broken somewhere.
		panic("revq: append slot lost its node after a failed publish race")
	}
	return winner
}

func (s *appendSlot[T]) acquire() {
	s.holders.Add(1)
}

// release drops one holder. When the last holder of a full slot goes away the
// slot becomes unreachable, so the link it contributed to its successor is
// dropped too; the cascade walks the chain iteratively to stay on a flat
// stack for arbitrarily long dead prefixes.
func (s *appendSlot[T]) release() {
	for s != nil {
		if s.holders.Add(-1) != 0 {
			return
		}
		n := s.node.Load()
		if n == nil {
			return
		}
		s = n.next.Load()
	}
}
