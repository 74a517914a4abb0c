package asyncseq

import (
	"context"
	"fmt"
	"io"
	"time"
)

// Debounce suppresses elements that are followed by a newer one within the
// quiet period. An element is emitted only after quiet has elapsed with no
// newer element arriving from p.
//
// Each new arrival restarts the quiet period from zero. When the quiet period
// elapses, the candidate is emitted and the pull already in flight is kept for
// the next call. When p ends, the remaining quiet period is waited out, the last
// candidate is emitted, and the sequence ends. A failure from p discards the
// candidate and is returned as the terminal value.
//
// Debounce panics if p is nil or quiet is not positive.
func Debounce[T any](p Producer[T], quiet time.Duration, opts ...Option) Producer[T] {
	if p == nil {
		panic("asyncseq: Debounce requires a non-nil producer")
	}
	if quiet <= 0 {
		panic("asyncseq: Debounce requires quiet > 0")
	}
	cfg := buildConfig(opts)
	return ProducerFunc[T](func(ctx context.Context) Iterator[T] {
		c := newCore(ctx, cfg, "debounce")
		src := p.Iterator(c.g.ctx)
		return &debounceIterator[T]{
			core:  c,
			src:   src,
			quiet: quiet,
			state: debounceIdle[T]{it: src},
		}
	})
}

type debounceState[T any] interface {
	debounceState()
}

type (
	debounceIdle[T any] struct {
		it Iterator[T]
	}

	// The last quiet period elapsed with this pull still in flight.
	debouncePending[T any] struct {
		req *fetch[T]
	}

	// A candidate is waiting out its quiet period; the caller stopped
	// waiting before it was decided.
	debounceHolding[T any] struct {
		candidate T
		req       *fetch[T]
		quiet     *deadline
	}

	// The source ended; the candidate is emitted once quiet fires.
	debounceFlushing[T any] struct {
		candidate T
		quiet     *deadline
	}

	debounceFinished[T any] struct{}
)

func (debounceIdle[T]) debounceState()     {}
func (debouncePending[T]) debounceState()  {}
func (debounceHolding[T]) debounceState()  {}
func (debounceFlushing[T]) debounceState() {}
func (debounceFinished[T]) debounceState() {}

type debounceIterator[T any] struct {
	*core
	src   Iterator[T]
	quiet time.Duration
	state debounceState[T]
}

func (d *debounceIterator[T]) Next(ctx context.Context) (T, error) {
	d.enter()
	defer d.exit()

	var zero T
	if d.closed {
		return zero, io.EOF
	}

	switch st := d.state.(type) {
	case debounceIdle[T]:
		return d.candidate(ctx, fetchOne(d.core, st.it))
	case debouncePending[T]:
		return d.candidate(ctx, st.req)
	case debounceHolding[T]:
		return d.hold(ctx, st.candidate, st.req, st.quiet)
	case debounceFlushing[T]:
		return d.flush(ctx, st)
	case debounceFinished[T]:
		return zero, io.EOF
	default:
		panic(fmt.Sprintf("asyncseq: unknown debounce state %T", st))
	}
}

// candidate waits for the first element of a new quiet period.
func (d *debounceIterator[T]) candidate(ctx context.Context, req *fetch[T]) (T, error) {
	var zero T

	out, it, err := req.await(ctx)
	if err != nil {
		d.state = debouncePending[T]{req: req}
		return zero, err
	}
	if !out.IsElement() {
		d.state = debounceFinished[T]{}
		return out.Get()
	}
	return d.hold(ctx, out.Value(), fetchOne(d.core, it), newDeadline(d.cfg.clock, d.quiet))
}

// hold races the next pull against the quiet period until the candidate
// is decided.
func (d *debounceIterator[T]) hold(ctx context.Context, candidate T, req *fetch[T], quiet *deadline) (T, error) {
	var zero T

	for {
		fired, err := raceTimer(ctx, req, quiet)
		if err != nil {
			d.state = debounceHolding[T]{candidate: candidate, req: req, quiet: quiet}
			return zero, err
		}
		if fired {
			d.probe.quiet()
			d.state = debouncePending[T]{req: req}
			return candidate, nil
		}

		out, it := req.result()
		switch out.Kind() {
		case KindElement:
			quiet.stop()
			candidate = out.Value()
			req = fetchOne(d.core, it)
			quiet = newDeadline(d.cfg.clock, d.quiet)

		case KindFailure:
			quiet.stop()
			d.state = debounceFinished[T]{}
			return zero, out.Err()

		default:
			return d.flush(ctx, debounceFlushing[T]{candidate: candidate, quiet: quiet})
		}
	}
}

func (d *debounceIterator[T]) flush(ctx context.Context, st debounceFlushing[T]) (T, error) {
	if err := st.quiet.wait(ctx); err != nil {
		d.state = st
		var zero T
		return zero, err
	}
	d.state = debounceFinished[T]{}
	return st.candidate, nil
}

func (d *debounceIterator[T]) Close() error {
	if !d.shutdown() {
		return nil
	}
	switch st := d.state.(type) {
	case debounceHolding[T]:
		st.quiet.stop()
	case debounceFlushing[T]:
		st.quiet.stop()
	}
	d.state = debounceFinished[T]{}
	return d.src.Close()
}
