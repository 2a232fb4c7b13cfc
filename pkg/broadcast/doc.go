// Package broadcast provides a generic pub/sub layer on top of the revision
// queue, for host code that wants channel-based fan-out instead of driving
// queue handles directly.
//
// Unlike channel-copy broadcasters, messages are not duplicated per
// subscriber: every subscriber reads the same append-only revision chain
// through its own cursor. Publishing is non-blocking regardless of how many
// subscribers exist or how slow they are; a slow subscriber only delays its
// own delivery goroutine, never the broadcaster or its peers.
//
// # Usage
//
//	cfg, err := broadcast.LoadConfig()
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	b := broadcast.New[string](
//		broadcast.WithConfig(cfg),
//		broadcast.WithLogger(logger),
//	)
//	defer b.Close()
//
//	ctx, cancel := context.WithCancel(context.Background())
//	defer cancel()
//
//	sub, err := b.Subscribe(ctx)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer sub.Close()
//
//	go func() {
//		for msg := range sub.Receive() {
//			fmt.Println(msg.Data)
//		}
//	}()
//
//	b.Broadcast(ctx, broadcast.Message[string]{Data: "hello"})
//
// # Delivery semantics
//
// A subscriber observes every message broadcast after Subscribe returned, in
// broadcast order, exactly once. Messages broadcast before the subscription
// are never delivered. Receive's channel closes when the subscriber is
// closed, its context is cancelled, or the broadcaster shuts down.
//
// Because the underlying chain is unbounded, a subscriber that stops reading
// pins memory for everything published after its position. Close subscribers
// you no longer drain.
//
// # Configuration
//
// Config is loaded from the environment (with .env autoloading) the same way
// as any other service config:
//
//	BROADCAST_BUFFER_SIZE=100  # per-subscriber delivery buffer
package broadcast
