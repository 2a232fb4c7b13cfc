package broadcast

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/dmitrymomot/revq"
)

// DefaultBufferSize is the per-subscriber delivery buffer used when no option
// or config overrides it.
const DefaultBufferSize = 100

// Message wraps a broadcast payload. The envelope exists so transport
// metadata can be added without breaking subscribers.
type Message[T any] struct {
	Data T
}

// Broadcaster fans messages out to any number of subscribers.
type Broadcaster[T any] interface {
	// Broadcast publishes a message to all current subscribers. It never
	// blocks on slow subscribers.
	Broadcast(ctx context.Context, msg Message[T]) error
	// Subscribe registers a new subscriber receiving messages broadcast from
	// this point on. The subscription ends when ctx is cancelled, the
	// subscriber is closed, or the broadcaster shuts down.
	Subscribe(ctx context.Context) (Subscriber[T], error)
	// Close shuts the broadcaster down and ends every subscription.
	Close() error
}

// Subscriber receives broadcast messages.
type Subscriber[T any] interface {
	// ID returns the unique subscriber identity.
	ID() string
	// Receive returns the delivery channel. It closes when the subscription
	// ends.
	Receive() <-chan Message[T]
	// Close ends the subscription and releases its queue handle.
	Close() error
}

// Option configures a broadcaster.
type Option func(*settings)

type settings struct {
	buffer int
	logger *slog.Logger
}

// WithBufferSize sets the per-subscriber delivery buffer. Non-positive values
// are ignored.
func WithBufferSize(size int) Option {
	return func(s *settings) {
		if size > 0 {
			s.buffer = size
		}
	}
}

// WithConfig applies an environment-loaded Config.
func WithConfig(cfg Config) Option {
	return func(s *settings) {
		if cfg.BufferSize > 0 {
			s.buffer = cfg.BufferSize
		}
	}
}

// WithLogger configures structured logging for subscriber lifecycle events.
// Logging is disabled by default.
func WithLogger(logger *slog.Logger) Option {
	return func(s *settings) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// QueueBroadcaster implements Broadcaster over a shared revision chain. The
// root queue handle is the single publishing cursor; each subscriber clones
// it and drains its own cursor in a dedicated goroutine.
type QueueBroadcaster[T any] struct {
	mu     sync.Mutex
	root   *revq.Queue[T]
	subs   map[string]*queueSubscriber[T]
	buffer int
	logger *slog.Logger
	closed bool
}

// New creates a broadcaster over a fresh revision chain.
func New[T any](opts ...Option) *QueueBroadcaster[T] {
	s := settings{
		buffer: DefaultBufferSize,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(&s)
	}

	return &QueueBroadcaster[T]{
		root:   revq.New[T](),
		subs:   make(map[string]*queueSubscriber[T]),
		buffer: s.buffer,
		logger: s.logger,
	}
}

// Broadcast publishes the message onto the shared chain. Delivery to
// subscribers is asynchronous; Broadcast returns as soon as the message is
// linked.
func (b *QueueBroadcaster[T]) Broadcast(ctx context.Context, msg Message[T]) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return ErrBroadcasterClosed
	}

	b.root.Enqueue(msg.Data)
	b.root.Publish()
	b.logger.DebugContext(ctx, "message broadcast", slog.Int("subscribers", len(b.subs)))
	return nil
}

// Subscribe clones the publishing cursor, so the subscriber sees exactly the
// messages broadcast after this call.
func (b *QueueBroadcaster[T]) Subscribe(ctx context.Context) (Subscriber[T], error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil, ErrBroadcasterClosed
	}

	sctx, cancel := context.WithCancel(ctx)
	sub := &queueSubscriber[T]{
		id:     uuid.NewString(),
		out:    make(chan Message[T], b.buffer),
		cancel: cancel,
	}
	b.subs[sub.id] = sub

	handle := b.root.Clone()
	go b.pump(sctx, handle, sub)

	b.logger.DebugContext(ctx, "subscriber attached", slog.String("subscriber_id", sub.id))
	return sub, nil
}

// pump moves revisions from the subscriber's queue cursor into its delivery
// channel until the subscription ends.
func (b *QueueBroadcaster[T]) pump(ctx context.Context, handle *revq.Queue[T], sub *queueSubscriber[T]) {
	defer func() {
		handle.Close()
		close(sub.out)
		b.detach(sub.id)
	}()

	for {
		rev, err := handle.Next(ctx)
		if err != nil {
			// Cancelled subscription or no live publisher left; either way
			// the subscription is over.
			return
		}
		msg := Message[T]{Data: rev.Value()}
		rev.Release()

		select {
		case sub.out <- msg:
		case <-ctx.Done():
			return
		}
	}
}

func (b *QueueBroadcaster[T]) detach(id string) {
	b.mu.Lock()
	delete(b.subs, id)
	b.mu.Unlock()
	b.logger.Debug("subscriber detached", slog.String("subscriber_id", id))
}

// Close shuts down the broadcaster: further Broadcast and Subscribe calls
// fail, and every subscriber's delivery channel closes once its pump drains.
func (b *QueueBroadcaster[T]) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return ErrBroadcasterClosed
	}
	b.closed = true
	subs := make([]*queueSubscriber[T], 0, len(b.subs))
	for _, sub := range b.subs {
		subs = append(subs, sub)
	}
	b.root.Close()
	b.mu.Unlock()

	// Cancel outside the lock: pumps detach themselves and need the mutex.
	for _, sub := range subs {
		sub.cancel()
	}

	b.logger.Info("broadcaster closed", slog.Int("subscribers", len(subs)))
	return nil
}

type queueSubscriber[T any] struct {
	id     string
	out    chan Message[T]
	cancel context.CancelFunc
	once   sync.Once
}

func (s *queueSubscriber[T]) ID() string { return s.id }

func (s *queueSubscriber[T]) Receive() <-chan Message[T] { return s.out }

func (s *queueSubscriber[T]) Close() error {
	err := ErrSubscriberClosed
	s.once.Do(func() {
		s.cancel()
		err = nil
	})
	return err
}
