package asyncseq

import (
	"context"
	"fmt"
	"io"
	"time"
)

// Timeout bounds the wait for each element of p by d. If d elapses before
// the next pull settles, the pull is cancelled and the sequence ends:
// Next returns io.EOF, not an error. The truncation is silent so that
// operators downstream see a regular end of sequence.
//
// End and failure from p are passed through and are terminal.
//
// Timeout panics if p is nil or d is not positive.
func Timeout[T any](p Producer[T], d time.Duration, opts ...Option) Producer[T] {
	if p == nil {
		panic("asyncseq: Timeout requires a non-nil producer")
	}
	if d <= 0 {
		panic("asyncseq: Timeout requires d > 0")
	}
	cfg := buildConfig(opts)
	return ProducerFunc[T](func(ctx context.Context) Iterator[T] {
		c := newCore(ctx, cfg, "timeout")
		src := p.Iterator(c.g.ctx)
		return &timeoutIterator[T]{
			core:  c,
			src:   src,
			d:     d,
			state: timeoutActive[T]{it: src},
		}
	})
}

type timeoutState[T any] interface {
	timeoutState()
}

type (
	timeoutActive[T any] struct {
		it Iterator[T]
	}

	// A pull and its timer are running; the caller stopped waiting.
	timeoutWaiting[T any] struct {
		req      *fetch[T]
		deadline *deadline
	}

	timeoutTimedOut[T any] struct{}

	// The source ended or failed.
	timeoutFinished[T any] struct{}
)

func (timeoutActive[T]) timeoutState()   {}
func (timeoutWaiting[T]) timeoutState()  {}
func (timeoutTimedOut[T]) timeoutState() {}
func (timeoutFinished[T]) timeoutState() {}

type timeoutIterator[T any] struct {
	*core
	src   Iterator[T]
	d     time.Duration
	state timeoutState[T]
}

func (t *timeoutIterator[T]) Next(ctx context.Context) (T, error) {
	t.enter()
	defer t.exit()

	var zero T
	if t.closed {
		return zero, io.EOF
	}

	switch st := t.state.(type) {
	case timeoutActive[T]:
		return t.wait(ctx, fetchOne(t.core, st.it), newDeadline(t.cfg.clock, t.d))
	case timeoutWaiting[T]:
		return t.wait(ctx, st.req, st.deadline)
	case timeoutTimedOut[T], timeoutFinished[T]:
		return zero, io.EOF
	default:
		panic(fmt.Sprintf("asyncseq: unknown timeout state %T", st))
	}
}

func (t *timeoutIterator[T]) wait(ctx context.Context, req *fetch[T], dl *deadline) (T, error) {
	var zero T

	fired, err := raceTimer(ctx, req, dl)
	if err != nil {
		t.state = timeoutWaiting[T]{req: req, deadline: dl}
		return zero, err
	}
	if fired {
		req.abandon()
		t.probe.timedOut()
		t.state = timeoutTimedOut[T]{}
		return zero, io.EOF
	}

	dl.stop()
	out, it := req.result()
	if out.IsElement() {
		t.state = timeoutActive[T]{it: it}
	} else {
		t.state = timeoutFinished[T]{}
	}
	return out.Get()
}

func (t *timeoutIterator[T]) Close() error {
	if !t.shutdown() {
		return nil
	}
	if st, ok := t.state.(timeoutWaiting[T]); ok {
		st.deadline.stop()
	}
	t.state = timeoutFinished[T]{}
	return t.src.Close()
}
