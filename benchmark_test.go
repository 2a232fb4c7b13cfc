package revq_test

import (
	"testing"

	"github.com/dmitrymomot/revq"
)

func BenchmarkQueue_Publish(b *testing.B) {
	q := revq.New[int]()
	defer q.Close()

	b.ReportAllocs()
	for i := 0; b.Loop(); i++ {
		q.Enqueue(i)
		q.Publish()
	}
}

func BenchmarkQueue_PublishAdvance(b *testing.B) {
	q := revq.New[int]()
	defer q.Close()
	l := q.Clone()
	defer l.Close()

	b.ReportAllocs()
	for i := 0; b.Loop(); i++ {
		q.Enqueue(i)
		q.Publish()
		if rev := l.Advance(); rev != nil {
			rev.Release()
		}
	}
}

func BenchmarkQueue_Fanout(b *testing.B) {
	q := revq.New[int]()
	defer q.Close()

	listeners := make([]*revq.Queue[int], 8)
	for i := range listeners {
		listeners[i] = q.Clone()
		defer listeners[i].Close()
	}

	b.ReportAllocs()
	for i := 0; b.Loop(); i++ {
		q.Enqueue(i)
		q.Publish()
		for _, l := range listeners {
			if rev := l.Advance(); rev != nil {
				rev.Release()
			}
		}
	}
}

func BenchmarkQueue_ContendedPublish(b *testing.B) {
	root := revq.New[int]()
	defer root.Close()

	b.ReportAllocs()
	b.RunParallel(func(pb *testing.PB) {
		q := root.Clone()
		defer q.Close()
		for pb.Next() {
			q.Enqueue(1)
			q.Publish()
		}
	})
}
