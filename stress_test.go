package revq_test

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fastrand"
	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/revq"
)

// TestQueue_Stress hammers one chain with several producers and several
// independent consumers and checks the global delivery contract: every
// consumer cloned before the first publish sees every value exactly once,
// and values from one producer never reorder relative to each other.
func TestQueue_Stress(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping stress test in short mode")
	}

	t.Parallel()

	const (
		producers      = 4
		consumers      = 3
		perProducer    = 500
		producerStride = 1 << 16 // value = producer<<16 | seq
	)

	root := revq.New[int]()

	// Consumers clone the origin cursor before anything is published, so the
	// full history must be visible to each of them.
	var tails []*revq.Queue[int]
	for range consumers {
		tails = append(tails, root.Clone())
	}

	var g errgroup.Group

	for p := range producers {
		q := root.Clone()
		g.Go(func() error {
			defer q.Close()
			var rng fastrand.RNG
			rng.Seed(uint32(p + 1))
			for seq := 0; seq < perProducer; {
				// Publish in small random batches to vary race interleavings.
				batch := int(rng.Uint32n(3)) + 1
				for range batch {
					if seq == perProducer {
						break
					}
					q.Enqueue(p*producerStride + seq)
					seq++
				}
				q.Publish()
				if rng.Uint32n(4) == 0 {
					runtime.Gosched()
				}
			}
			return nil
		})
	}

	results := make([][]int, consumers)
	for c, tail := range tails {
		g.Go(func() error {
			defer tail.Close()
			total := producers * perProducer
			got := make([]int, 0, total)
			for len(got) < total {
				rev, err := tail.NextBlocking()
				if err != nil {
					return err
				}
				got = append(got, rev.Value())
				rev.Release()
			}
			results[c] = got
			return nil
		})
	}

	require.NoError(t, g.Wait())
	root.Close()

	for c, got := range results {
		require.Len(t, got, producers*perProducer)

		seen := make(map[int]struct{}, len(got))
		lastSeq := make([]int, producers)
		for i := range lastSeq {
			lastSeq[i] = -1
		}
		for _, v := range got {
			_, dup := seen[v]
			require.False(t, dup, "consumer %d observed %d twice", c, v)
			seen[v] = struct{}{}

			producer, seq := v/producerStride, v%producerStride
			assert.Greater(t, seq, lastSeq[producer],
				"consumer %d saw producer %d values out of order", c, producer)
			lastSeq[producer] = seq
		}
	}

	// All consumers saw the same chain, in the same total order.
	for c := 1; c < consumers; c++ {
		assert.Equal(t, results[0], results[c], "chain order diverged between consumers")
	}
}
