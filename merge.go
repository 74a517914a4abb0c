package asyncseq

import (
	"context"
	"errors"
	"fmt"
	"io"
)

// Merge interleaves the elements of a and b in the order they arrive.
//
// Each side has at most one pull in flight. When one side wins a race, its
// element is emitted and the other side's pull is carried into the next
// call rather than restarted, so no element is skipped or pulled twice.
// Once one side ends, Merge waits for the other side's pending pull and
// then passes straight through to it.
//
// A failure from either side is returned immediately. The failed side is
// not pulled again; the merged sequence continues with the other side.
//
// Merge panics if a or b is nil.
func Merge[T any](a, b Producer[T], opts ...Option) Producer[T] {
	if a == nil || b == nil {
		panic("asyncseq: Merge requires non-nil producers")
	}
	cfg := buildConfig(opts)
	return ProducerFunc[T](func(ctx context.Context) Iterator[T] {
		c := newCore(ctx, cfg, "merge")
		ia, ib := a.Iterator(c.g.ctx), b.Iterator(c.g.ctx)
		return &mergeIterator[T]{
			core:  c,
			srcA:  ia,
			srcB:  ib,
			state: mergeInitial[T]{a: ia, b: ib},
		}
	})
}

type mergeState[T any] interface {
	mergeState()
}

type (
	// Neither side has been pulled yet.
	mergeInitial[T any] struct {
		a, b Iterator[T]
	}

	// A's pull is in flight; b is idle because it just won.
	mergeFetchingA[T any] struct {
		aReq *fetch[T]
		b    Iterator[T]
	}

	// B's pull is in flight; a is idle because it just won.
	mergeFetchingB[T any] struct {
		a    Iterator[T]
		bReq *fetch[T]
	}

	// Both pulls are in flight; the last caller stopped waiting.
	mergeRacing[T any] struct {
		aReq, bReq *fetch[T]
	}

	// One side is retired. Exactly one of it and req is set.
	mergeSingle[T any] struct {
		it  Iterator[T]
		req *fetch[T]
	}

	mergeFinished[T any] struct{}
)

func (mergeInitial[T]) mergeState()   {}
func (mergeFetchingA[T]) mergeState() {}
func (mergeFetchingB[T]) mergeState() {}
func (mergeRacing[T]) mergeState()    {}
func (mergeSingle[T]) mergeState()    {}
func (mergeFinished[T]) mergeState()  {}

type mergeIterator[T any] struct {
	*core
	srcA, srcB Iterator[T]
	state      mergeState[T]
}

func (m *mergeIterator[T]) Next(ctx context.Context) (T, error) {
	m.enter()
	defer m.exit()

	var zero T
	if m.closed {
		return zero, io.EOF
	}

	switch st := m.state.(type) {
	case mergeInitial[T]:
		return m.race(ctx, fetchSide(m.core, sideA, st.a), fetchSide(m.core, sideB, st.b))
	case mergeFetchingA[T]:
		return m.race(ctx, st.aReq, fetchSide(m.core, sideB, st.b))
	case mergeFetchingB[T]:
		return m.race(ctx, fetchSide(m.core, sideA, st.a), st.bReq)
	case mergeRacing[T]:
		return m.race(ctx, st.aReq, st.bReq)
	case mergeSingle[T]:
		return m.single(ctx, st)
	case mergeFinished[T]:
		return zero, io.EOF
	default:
		panic(fmt.Sprintf("asyncseq: unknown merge state %T", st))
	}
}

func (m *mergeIterator[T]) race(ctx context.Context, aReq, bReq *fetch[T]) (T, error) {
	var zero T

	s, err := raceFirst(ctx, aReq, bReq)
	if err != nil {
		m.state = mergeRacing[T]{aReq: aReq, bReq: bReq}
		return zero, err
	}
	m.probe.raced(s.winner)

	switch s.out.Kind() {
	case KindElement:
		if s.winner == sideA {
			m.state = mergeFetchingB[T]{a: s.it, bReq: s.pending}
		} else {
			m.state = mergeFetchingA[T]{aReq: s.pending, b: s.it}
		}
		return s.out.Value(), nil

	case KindFailure:
		m.state = mergeSingle[T]{req: s.pending}
		return zero, s.out.Err()

	default:
		st := mergeSingle[T]{req: s.pending}
		m.state = st
		return m.single(ctx, st)
	}
}

// single serves pulls once only one side is left: first by awaiting the
// pull that was in flight when the other side retired, then by calling the
// surviving iterator directly.
func (m *mergeIterator[T]) single(ctx context.Context, st mergeSingle[T]) (T, error) {
	var zero T

	if st.req != nil {
		out, it, err := st.req.await(ctx)
		if err != nil {
			return zero, err
		}
		m.state = mergeSingle[T]{it: it}
		return m.settle(out)
	}

	v, err := st.it.Next(ctx)
	if interrupted(ctx, err) {
		return zero, err
	}
	return m.settle(OutcomeOf(v, err))
}

func (m *mergeIterator[T]) settle(out Outcome[T]) (T, error) {
	if !out.IsElement() {
		m.state = mergeFinished[T]{}
	}
	return out.Get()
}

func (m *mergeIterator[T]) Close() error {
	if !m.shutdown() {
		return nil
	}
	m.state = mergeFinished[T]{}
	return errors.Join(m.srcA.Close(), m.srcB.Close())
}
