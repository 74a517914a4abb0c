package asyncseq

import (
	"context"
	"time"
)

// fetch is a forked pull: Next runs on a goroutine of the owning group
// against an iterator the fetch owns exclusively. It settles exactly once,
// handing back the outcome together with the iterator, whose ownership
// returns to whichever state consumes the fetch.
//
// A fetch may be carried unresolved from one Next call to the next; that is
// how combinators keep at most one pull in flight per source.
type fetch[T any] struct {
	done   chan struct{}
	cancel context.CancelFunc

	// Written before done is closed.
	out Outcome[T]
	it  Iterator[T]
	at  time.Time
}

// startFetch forks a pull of it. The caller must not touch it again until
// the fetch has settled.
func startFetch[T any](g *group, it Iterator[T]) *fetch[T] {
	ctx, cancel := context.WithCancel(g.ctx)
	f := &fetch[T]{
		done:   make(chan struct{}),
		cancel: cancel,
		it:     it,
	}
	g.fork(func(context.Context) {
		defer close(f.done)
		defer cancel()
		f.out = pullSafely(ctx, it)
		f.at = g.clock.Now()
	})
	return f
}

// settled reports whether the fetch has resolved without blocking.
func (f *fetch[T]) settled() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}

// result returns the outcome and the advanced iterator. It must only be
// called once the fetch has settled.
func (f *fetch[T]) result() (Outcome[T], Iterator[T]) {
	return f.out, f.it
}

// await blocks until the fetch settles or ctx is done. On ctx cancellation
// the fetch stays in flight and may be awaited again.
func (f *fetch[T]) await(ctx context.Context) (Outcome[T], Iterator[T], error) {
	select {
	case <-f.done:
		return f.out, f.it, nil
	default:
	}
	select {
	case <-f.done:
		return f.out, f.it, nil
	case <-ctx.Done():
		return Outcome[T]{}, nil, ctx.Err()
	}
}

// abandon cancels a fetch whose result will never be consumed. The goroutine
// is still joined by the group when the iterator is closed.
func (f *fetch[T]) abandon() {
	if f != nil {
		f.cancel()
	}
}
