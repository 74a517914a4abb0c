package asyncseq

import (
	"context"
	"io"
	"time"
)

// Delay holds back every outcome of p for d after it has been pulled.
//
// Delay panics if p is nil or d is negative.
func Delay[T any](p Producer[T], d time.Duration, opts ...Option) Producer[T] {
	return delayed(p, d, false, opts)
}

// DelayRequests waits d before every pull of p.
//
// DelayRequests panics if p is nil or d is negative.
func DelayRequests[T any](p Producer[T], d time.Duration, opts ...Option) Producer[T] {
	return delayed(p, d, true, opts)
}

func delayed[T any](p Producer[T], d time.Duration, upfront bool, opts []Option) Producer[T] {
	if p == nil {
		panic("asyncseq: Delay requires a non-nil producer")
	}
	if d < 0 {
		panic("asyncseq: Delay requires d >= 0")
	}
	cfg := buildConfig(opts)
	return ProducerFunc[T](func(ctx context.Context) Iterator[T] {
		return &delayIterator[T]{src: p.Iterator(ctx), cfg: cfg, d: d, upfront: upfront}
	})
}

type delayIterator[T any] struct {
	src     Iterator[T]
	cfg     config
	d       time.Duration
	upfront bool

	// An outcome pulled by an earlier call that gave up while waiting.
	held  *Outcome[T]
	ended bool
}

func (it *delayIterator[T]) Next(ctx context.Context) (T, error) {
	var zero T
	if it.ended {
		return zero, io.EOF
	}

	if it.upfront {
		if err := it.wait(ctx); err != nil {
			return zero, err
		}
		v, err := it.src.Next(ctx)
		if err == io.EOF {
			it.ended = true
		}
		return v, err
	}

	if it.held == nil {
		v, err := it.src.Next(ctx)
		if interrupted(ctx, err) {
			return zero, err
		}
		out := OutcomeOf(v, err)
		it.held = &out
	}
	if err := it.wait(ctx); err != nil {
		return zero, err
	}
	out := *it.held
	it.held = nil
	if out.IsEnd() {
		it.ended = true
	}
	return out.Get()
}

func (it *delayIterator[T]) wait(ctx context.Context) error {
	if it.d == 0 {
		return nil
	}
	t := it.cfg.clock.NewTimer(it.d)
	defer t.Stop()
	return sleep(ctx, t)
}

func (it *delayIterator[T]) Close() error {
	it.ended = true
	return it.src.Close()
}
