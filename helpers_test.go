package asyncseq

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func mustPanicContains(t *testing.T, contains string, fn func()) {
	t.Helper()
	defer func() {
		r := recover()
		require.NotNil(t, r, "expected panic")
		require.Contains(t, fmt.Sprint(r), contains)
	}()
	fn()
}

func testLogger(t *testing.T) zerolog.Logger {
	return zerolog.New(zerolog.NewTestWriter(t)).Level(zerolog.DebugLevel)
}

// pipe is a source whose pulls are answered by the test. A send succeeds
// only while a pull is waiting, so a completed send proves a pull was in
// flight. Every iterator of a pipe shares its channel.
type pipe[T any] struct {
	ch     chan Outcome[T]
	pulls  atomic.Int32
	closed atomic.Bool
}

func newPipe[T any]() *pipe[T] {
	return &pipe[T]{ch: make(chan Outcome[T])}
}

func (p *pipe[T]) Iterator(context.Context) Iterator[T] { return p }

func (p *pipe[T]) Next(ctx context.Context) (T, error) {
	p.pulls.Add(1)
	select {
	case o := <-p.ch:
		return o.Get()
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

func (p *pipe[T]) Close() error {
	p.closed.Store(true)
	return nil
}

func (p *pipe[T]) send(t *testing.T, o Outcome[T]) {
	t.Helper()
	select {
	case p.ch <- o:
	case <-time.After(2 * time.Second):
		t.Fatalf("no pull waiting for %v", o)
	}
}

// counted wraps a producer and counts the pulls made on its iterators.
type counted[T any] struct {
	p     Producer[T]
	pulls atomic.Int32
}

func countPulls[T any](p Producer[T]) *counted[T] {
	return &counted[T]{p: p}
}

func (c *counted[T]) Iterator(ctx context.Context) Iterator[T] {
	src := c.p.Iterator(ctx)
	return NewIterator(func(ctx context.Context) (T, error) {
		c.pulls.Add(1)
		return src.Next(ctx)
	}, src.Close)
}

// nextAsync runs it.Next on a new goroutine.
func nextAsync[T any](ctx context.Context, it Iterator[T]) <-chan Outcome[T] {
	ch := make(chan Outcome[T], 1)
	go func() {
		ch <- Pull(ctx, it)
	}()
	return ch
}

func receive[T any](t *testing.T, ch <-chan Outcome[T]) Outcome[T] {
	t.Helper()
	select {
	case o := <-ch:
		return o
	case <-time.After(2 * time.Second):
		t.Fatal("Next did not return")
		return Outcome[T]{}
	}
}

func drain[T any](t *testing.T, it Iterator[T]) ([]T, error) {
	t.Helper()
	var items []T
	for {
		o := Pull(context.Background(), it)
		switch o.Kind() {
		case KindEnd:
			return items, nil
		case KindFailure:
			return items, o.Err()
		}
		items = append(items, o.Value())
	}
}

// failAfter yields items and then fails with err.
func failAfter[T any](items []T, err error) Producer[T] {
	return ProducerFunc[T](func(context.Context) Iterator[T] {
		var idx int
		return NewIterator(func(context.Context) (T, error) {
			if idx < len(items) {
				v := items[idx]
				idx++
				return v, nil
			}
			var zero T
			return zero, err
		}, nil)
	})
}
