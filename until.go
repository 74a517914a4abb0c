package asyncseq

import (
	"context"
	"io"
	"sync/atomic"
)

// trigger selects which outcomes of the other producer end the prefix of
// PrefixUntil* or start the suffix of DropUntil*.
type trigger uint8

const (
	onElement trigger = iota
	onError
	onResult
)

// signal is the element type merged by the until operators: either an
// element of the base producer or a trigger from the other one.
type signal[T any] struct {
	val       T
	triggered bool
}

// PrefixUntilElement yields the elements of base until other produces its
// first element. A failure of either producer is forwarded and ends the
// sequence, as it does for every operator in this family.
func PrefixUntilElement[T, U any](base Producer[T], other Producer[U], opts ...Option) Producer[T] {
	return until(base, other, onElement, true, opts)
}

// PrefixUntilError yields the elements of base until other fails. Elements
// of other are ignored.
func PrefixUntilError[T, U any](base Producer[T], other Producer[U], opts ...Option) Producer[T] {
	return until(base, other, onError, true, opts)
}

// PrefixUntilResult yields the elements of base until other produces an
// element or fails.
func PrefixUntilResult[T, U any](base Producer[T], other Producer[U], opts ...Option) Producer[T] {
	return until(base, other, onResult, true, opts)
}

// DropUntilElement skips the elements of base until other produces its
// first element, then yields the rest. Failures are forwarded and end the
// sequence.
func DropUntilElement[T, U any](base Producer[T], other Producer[U], opts ...Option) Producer[T] {
	return until(base, other, onElement, false, opts)
}

// DropUntilError skips the elements of base until other fails, then yields
// the rest. Elements of other are ignored.
func DropUntilError[T, U any](base Producer[T], other Producer[U], opts ...Option) Producer[T] {
	return until(base, other, onError, false, opts)
}

// DropUntilResult skips the elements of base until other produces an
// element or fails, then yields the rest.
func DropUntilResult[T, U any](base Producer[T], other Producer[U], opts ...Option) Producer[T] {
	return until(base, other, onResult, false, opts)
}

func until[T, U any](base Producer[T], other Producer[U], on trigger, prefix bool, opts []Option) Producer[T] {
	if base == nil || other == nil {
		panic("asyncseq: until operators require non-nil producers")
	}
	return ProducerFunc[T](func(ctx context.Context) Iterator[T] {
		// Set once the trigger has been seen; the other side then ends so
		// merge stops pulling it.
		seen := new(atomic.Bool)

		left := Map(base, func(_ context.Context, v T) (signal[T], error) {
			return signal[T]{val: v}, nil
		})
		right := ProducerFunc[signal[T]](func(ctx context.Context) Iterator[signal[T]] {
			return &triggerIterator[T, U]{src: other.Iterator(ctx), on: on, seen: seen}
		})

		return &untilIterator[T]{
			src:    Merge[signal[T]](left, right, opts...).Iterator(ctx),
			seen:   seen,
			prefix: prefix,
		}
	})
}

// triggerIterator turns the outcomes of the other producer into trigger
// signals.
type triggerIterator[T, U any] struct {
	src  Iterator[U]
	on   trigger
	seen *atomic.Bool
}

func (it *triggerIterator[T, U]) Next(ctx context.Context) (signal[T], error) {
	var zero signal[T]
	for {
		if it.seen.Load() {
			return zero, io.EOF
		}
		v, err := it.src.Next(ctx)
		out := OutcomeOf(v, err)
		switch {
		case out.IsEnd():
			return zero, io.EOF
		case interrupted(ctx, err):
			return zero, err
		case out.IsElement() && it.on != onError:
			return signal[T]{triggered: true}, nil
		case out.IsFailure() && it.on == onElement:
			return zero, err
		case out.IsFailure():
			return signal[T]{triggered: true}, nil
		}
	}
}

func (it *triggerIterator[T, U]) Close() error {
	return it.src.Close()
}

type untilIterator[T any] struct {
	src    Iterator[signal[T]]
	seen   *atomic.Bool
	prefix bool
	ended  bool
}

func (it *untilIterator[T]) Next(ctx context.Context) (T, error) {
	var zero T
	for !it.ended {
		s, err := it.src.Next(ctx)
		if err != nil {
			if !interrupted(ctx, err) {
				it.ended = true
			}
			return zero, err
		}
		if s.triggered {
			it.seen.Store(true)
			if it.prefix {
				it.ended = true
			}
			continue
		}
		if it.prefix || it.seen.Load() {
			return s.val, nil
		}
	}
	return zero, io.EOF
}

func (it *untilIterator[T]) Close() error {
	it.ended = true
	return it.src.Close()
}
