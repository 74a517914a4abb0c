package asyncseq

import (
	"context"
	"errors"
	"fmt"
	"io"
)

// Pair holds two values paired by [CombineLatest] or [Zip].
type Pair[A, B any] struct {
	First  A
	Second B
}

// CombineLatest emits the pair of the most recent elements of a and b every
// time either side produces a new element, once both sides have produced at
// least one.
//
// Only the side that won the last race gets a new pull; the other side's
// pull stays in flight across calls.
//
// The combined sequence ends as soon as either side ends or fails, even if
// the other side still has elements to give. A failure is returned once;
// later calls return io.EOF. The pull still in flight on the other side is
// cancelled, since its result can never be used, and joined by Close.
//
// CombineLatest panics if a or b is nil.
func CombineLatest[A, B any](a Producer[A], b Producer[B], opts ...Option) Producer[Pair[A, B]] {
	if a == nil || b == nil {
		panic("asyncseq: CombineLatest requires non-nil producers")
	}
	cfg := buildConfig(opts)
	return ProducerFunc[Pair[A, B]](func(ctx context.Context) Iterator[Pair[A, B]] {
		c := newCore(ctx, cfg, "combine-latest")
		ia, ib := a.Iterator(c.g.ctx), b.Iterator(c.g.ctx)
		return &combineLatestIterator[A, B]{
			core:  c,
			srcA:  ia,
			srcB:  ib,
			state: combineInitial[A, B]{a: ia, b: ib},
		}
	})
}

type combineState[A, B any] interface {
	combineState()
}

type (
	combineInitial[A, B any] struct {
		a Iterator[A]
		b Iterator[B]
	}

	// A's pull is in flight; B delivered last.
	combineFetchingA[A, B any] struct {
		aReq *fetch[A]
		b    Iterator[B]
	}

	// B's pull is in flight; A delivered last.
	combineFetchingB[A, B any] struct {
		a    Iterator[A]
		bReq *fetch[B]
	}

	combineRacing[A, B any] struct {
		aReq *fetch[A]
		bReq *fetch[B]
	}

	combineFinished[A, B any] struct{}
)

func (combineInitial[A, B]) combineState()   {}
func (combineFetchingA[A, B]) combineState() {}
func (combineFetchingB[A, B]) combineState() {}
func (combineRacing[A, B]) combineState()    {}
func (combineFinished[A, B]) combineState()  {}

type combineLatestIterator[A, B any] struct {
	*core
	srcA  Iterator[A]
	srcB  Iterator[B]
	state combineState[A, B]

	lastA      A
	lastB      B
	hasA, hasB bool
}

func (c *combineLatestIterator[A, B]) Next(ctx context.Context) (Pair[A, B], error) {
	c.enter()
	defer c.exit()

	var zero Pair[A, B]
	if c.closed {
		return zero, io.EOF
	}

	for {
		var (
			aReq *fetch[A]
			bReq *fetch[B]
		)
		switch st := c.state.(type) {
		case combineInitial[A, B]:
			aReq, bReq = fetchSide(c.core, sideA, st.a), fetchSide(c.core, sideB, st.b)
		case combineFetchingA[A, B]:
			aReq, bReq = st.aReq, fetchSide(c.core, sideB, st.b)
		case combineFetchingB[A, B]:
			aReq, bReq = fetchSide(c.core, sideA, st.a), st.bReq
		case combineRacing[A, B]:
			aReq, bReq = st.aReq, st.bReq
		case combineFinished[A, B]:
			return zero, io.EOF
		default:
			panic(fmt.Sprintf("asyncseq: unknown combine-latest state %T", st))
		}

		won, err := race(ctx, aReq, bReq)
		if err != nil {
			c.state = combineRacing[A, B]{aReq: aReq, bReq: bReq}
			return zero, err
		}
		c.probe.raced(won)

		if won == sideA {
			out, it := aReq.result()
			if !out.IsElement() {
				c.finish(bReq.abandon)
				return zero, out.Err()
			}
			c.lastA, c.hasA = out.Value(), true
			c.state = combineFetchingB[A, B]{a: it, bReq: bReq}
		} else {
			out, it := bReq.result()
			if !out.IsElement() {
				c.finish(aReq.abandon)
				return zero, out.Err()
			}
			c.lastB, c.hasB = out.Value(), true
			c.state = combineFetchingA[A, B]{aReq: aReq, b: it}
		}

		if c.hasA && c.hasB {
			return Pair[A, B]{First: c.lastA, Second: c.lastB}, nil
		}
	}
}

// finish moves to the terminal state, cancelling the other side's pull.
func (c *combineLatestIterator[A, B]) finish(abandon func()) {
	c.state = combineFinished[A, B]{}
	abandon()
}

func (c *combineLatestIterator[A, B]) Close() error {
	if !c.shutdown() {
		return nil
	}
	c.state = combineFinished[A, B]{}
	return errors.Join(c.srcA.Close(), c.srcB.Close())
}
