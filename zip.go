package asyncseq

import (
	"context"
	"errors"
	"fmt"
	"io"
)

// Zip pairs the elements of a and b by position.
//
// Every call forks a fresh pull on both sides and waits for both to settle,
// even when one of them has already ended or failed, so both iterators are
// always advanced together. The latency of a call is that of the slower
// side.
//
// Once both pulls settle, a failure wins over end, and a's failure wins
// over b's when both fail in the same round. The sequence ends as soon as
// either side ends.
//
// Zip panics if a or b is nil.
func Zip[A, B any](a Producer[A], b Producer[B], opts ...Option) Producer[Pair[A, B]] {
	if a == nil || b == nil {
		panic("asyncseq: Zip requires non-nil producers")
	}
	cfg := buildConfig(opts)
	return ProducerFunc[Pair[A, B]](func(ctx context.Context) Iterator[Pair[A, B]] {
		c := newCore(ctx, cfg, "zip")
		ia, ib := a.Iterator(c.g.ctx), b.Iterator(c.g.ctx)
		return &zipIterator[A, B]{
			core:  c,
			srcA:  ia,
			srcB:  ib,
			state: zipIdle[A, B]{a: ia, b: ib},
		}
	})
}

type zipState[A, B any] interface {
	zipState()
}

type (
	zipIdle[A, B any] struct {
		a Iterator[A]
		b Iterator[B]
	}

	// Both pulls of the current round are in flight.
	zipAwaiting[A, B any] struct {
		aReq *fetch[A]
		bReq *fetch[B]
	}

	zipFinished[A, B any] struct{}
)

func (zipIdle[A, B]) zipState()     {}
func (zipAwaiting[A, B]) zipState() {}
func (zipFinished[A, B]) zipState() {}

type zipIterator[A, B any] struct {
	*core
	srcA  Iterator[A]
	srcB  Iterator[B]
	state zipState[A, B]
}

func (z *zipIterator[A, B]) Next(ctx context.Context) (Pair[A, B], error) {
	z.enter()
	defer z.exit()

	var zero Pair[A, B]
	if z.closed {
		return zero, io.EOF
	}

	var round zipAwaiting[A, B]
	switch st := z.state.(type) {
	case zipIdle[A, B]:
		round = zipAwaiting[A, B]{
			aReq: fetchSide(z.core, sideA, st.a),
			bReq: fetchSide(z.core, sideB, st.b),
		}
	case zipAwaiting[A, B]:
		round = st
	case zipFinished[A, B]:
		return zero, io.EOF
	default:
		panic(fmt.Sprintf("asyncseq: unknown zip state %T", st))
	}
	z.state = round

	if err := z.awaitBoth(ctx, round); err != nil {
		return zero, err
	}

	outA, itA := round.aReq.result()
	outB, itB := round.bReq.result()
	switch {
	case outA.IsFailure():
		z.state = zipFinished[A, B]{}
		return zero, outA.Err()
	case outB.IsFailure():
		z.state = zipFinished[A, B]{}
		return zero, outB.Err()
	case outA.IsEnd(), outB.IsEnd():
		z.state = zipFinished[A, B]{}
		return zero, io.EOF
	}

	z.state = zipIdle[A, B]{a: itA, b: itB}
	return Pair[A, B]{First: outA.Value(), Second: outB.Value()}, nil
}

// awaitBoth waits for the first pull to settle and then for the other.
func (z *zipIterator[A, B]) awaitBoth(ctx context.Context, round zipAwaiting[A, B]) error {
	won, err := race(ctx, round.aReq, round.bReq)
	if err != nil {
		return err
	}
	z.probe.raced(won)

	if won == sideA {
		_, _, err = round.bReq.await(ctx)
	} else {
		_, _, err = round.aReq.await(ctx)
	}
	return err
}

func (z *zipIterator[A, B]) Close() error {
	if !z.shutdown() {
		return nil
	}
	z.state = zipFinished[A, B]{}
	return errors.Join(z.srcA.Close(), z.srcB.Close())
}
