package revq

import "errors"

var (
	// ErrQueueClosed is returned when waiting on a handle that has been closed.
	ErrQueueClosed = errors.New("queue handle is closed")

	// ErrExhausted is returned by Next when no other live handle exists, so no
	// further revision can ever be published. It is a normal terminal value,
	// not a failure.
	ErrExhausted = errors.New("no live handle can publish further revisions")

	// ErrRevisionShared is returned by TryDetach when the revision is still
	// reachable from another reference or cursor. The chain is left untouched;
	// the call may be retried once the other holders are released.
	ErrRevisionShared = errors.New("revision is shared and cannot be detached")

	// ErrRevisionReleased is returned by TryDetach on a reference whose holder
	// was already given up via Release.
	ErrRevisionReleased = errors.New("revision reference already released")
)
