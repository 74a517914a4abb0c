package asyncseq

import (
	"context"
	"errors"
	"io"
)

// segmentStep maps one outcome of the base iterator either to a segment to
// drain or, when the segment is nil, to an outcome emitted as is.
type segmentStep[T, U any] func(ctx context.Context, o Outcome[T]) (Producer[U], Outcome[U])

// flatMapIterator drains one segment at a time. The base iterator is not
// pulled while a segment is open.
type flatMapIterator[T, U any] struct {
	// Bounds the segment iterators, like src.
	ctx   context.Context
	src   Iterator[T]
	step  segmentStep[T, U]
	seg   Iterator[U]
	ended bool
}

func (it *flatMapIterator[T, U]) Next(ctx context.Context) (U, error) {
	var zero U
	for !it.ended {
		if it.seg != nil {
			v, err := it.seg.Next(ctx)
			if err == nil {
				return v, nil
			}
			if interrupted(ctx, err) {
				return zero, err
			}
			closeErr := it.seg.Close()
			it.seg = nil
			if err != io.EOF {
				it.ended = true
				return zero, err
			}
			if closeErr != nil {
				it.ended = true
				return zero, closeErr
			}
			continue
		}

		v, err := it.src.Next(ctx)
		if interrupted(ctx, err) {
			return zero, err
		}
		next, out := it.step(ctx, OutcomeOf(v, err))
		if next == nil {
			if !out.IsElement() {
				it.ended = true
			}
			return out.Get()
		}
		it.seg = next.Iterator(it.ctx)
	}
	return zero, io.EOF
}

func (it *flatMapIterator[T, U]) Close() error {
	it.ended = true
	var segErr error
	if it.seg != nil {
		segErr = it.seg.Close()
		it.seg = nil
	}
	return errors.Join(segErr, it.src.Close())
}

func flatMapped[T, U any](p Producer[T], step segmentStep[T, U]) Producer[U] {
	return ProducerFunc[U](func(ctx context.Context) Iterator[U] {
		return &flatMapIterator[T, U]{ctx: ctx, src: p.Iterator(ctx), step: step}
	})
}

// FlatMapOutcome maps every element and every failure of p to a segment
// producer and yields the segments one after another. Each segment is
// drained before p is pulled again; a nil segment is empty. The sequence
// ends when p ends.
//
// An error returned by fn, or a failure inside a segment, is forwarded and
// ends the sequence.
func FlatMapOutcome[T, U any](p Producer[T], fn func(context.Context, Outcome[T]) (Producer[U], error)) Producer[U] {
	if p == nil || fn == nil {
		panic("asyncseq: FlatMapOutcome requires a non-nil producer and function")
	}
	return flatMapped(p, func(ctx context.Context, o Outcome[T]) (Producer[U], Outcome[U]) {
		if o.IsEnd() {
			return nil, End[U]()
		}
		seg, err := fn(ctx, o)
		if err != nil {
			return nil, Failure[U](err)
		}
		if seg == nil {
			seg = Empty[U]()
		}
		return seg, Outcome[U]{}
	})
}

// FlatMapError passes the elements of p through and replaces every failure
// with the segment fn returns for it. A nil segment drops the failure.
//
// An error returned by fn, or a failure inside a segment, is forwarded and
// ends the sequence.
func FlatMapError[T any](p Producer[T], fn func(context.Context, error) (Producer[T], error)) Producer[T] {
	if p == nil || fn == nil {
		panic("asyncseq: FlatMapError requires a non-nil producer and function")
	}
	return flatMapped(p, func(ctx context.Context, o Outcome[T]) (Producer[T], Outcome[T]) {
		if !o.IsFailure() {
			return nil, o
		}
		seg, err := fn(ctx, o.Err())
		if err != nil {
			return nil, Failure[T](err)
		}
		if seg == nil {
			seg = Empty[T]()
		}
		return seg, Outcome[T]{}
	})
}
