package asyncseq

import (
	"context"
	"io"
)

// funcIterator is the iterator behind the simple sources. After next
// returns io.EOF it is never called again.
type funcIterator[T any] struct {
	next  func(ctx context.Context) (T, error)
	close func() error
	ended bool
}

func (it *funcIterator[T]) Next(ctx context.Context) (T, error) {
	var zero T
	if it.ended {
		return zero, io.EOF
	}
	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	default:
	}
	v, err := it.next(ctx)
	if err == io.EOF {
		it.ended = true
	}
	return v, err
}

func (it *funcIterator[T]) Close() error {
	it.ended = true
	if it.close != nil {
		return it.close()
	}
	return nil
}

// NewIterator wraps next as an [Iterator] with an idempotent end: once next
// returns io.EOF it is not called again. close may be nil.
func NewIterator[T any](next func(ctx context.Context) (T, error), close func() error) Iterator[T] {
	if next == nil {
		panic("asyncseq: NewIterator requires a non-nil next function")
	}
	return &funcIterator[T]{next: next, close: close}
}

// FromFunc returns a producer whose iterators call fn for every pull. fn is
// shared by all iterators of the producer; return io.EOF to end.
func FromFunc[T any](fn func(ctx context.Context) (T, error)) Producer[T] {
	if fn == nil {
		panic("asyncseq: FromFunc requires a non-nil function")
	}
	return ProducerFunc[T](func(context.Context) Iterator[T] {
		return NewIterator(fn, nil)
	})
}

// FromSlice returns a producer yielding the items in order. Every iterator
// starts from the first item.
func FromSlice[T any](items []T) Producer[T] {
	return ProducerFunc[T](func(context.Context) Iterator[T] {
		var idx int
		return NewIterator(func(context.Context) (T, error) {
			if idx >= len(items) {
				var zero T
				return zero, io.EOF
			}
			v := items[idx]
			idx++
			return v, nil
		}, nil)
	})
}

// FromChan returns a producer that receives from ch until it is closed.
// Iterators of the same producer share the channel.
func FromChan[T any](ch <-chan T) Producer[T] {
	return ProducerFunc[T](func(context.Context) Iterator[T] {
		return NewIterator(func(ctx context.Context) (T, error) {
			select {
			case <-ctx.Done():
				var zero T
				return zero, ctx.Err()
			case v, ok := <-ch:
				if !ok {
					var zero T
					return zero, io.EOF
				}
				return v, nil
			}
		}, nil)
	})
}

// Just returns a producer of the single element v.
func Just[T any](v T) Producer[T] {
	return FromSlice([]T{v})
}

// Empty returns a producer that ends immediately.
func Empty[T any]() Producer[T] {
	return FromSlice[T](nil)
}

// Fail returns a producer whose first pull fails with err and which ends
// afterwards.
func Fail[T any](err error) Producer[T] {
	if err == nil {
		panic("asyncseq: Fail requires a non-nil error")
	}
	return ProducerFunc[T](func(context.Context) Iterator[T] {
		var failed bool
		return NewIterator(func(context.Context) (T, error) {
			var zero T
			if failed {
				return zero, io.EOF
			}
			failed = true
			return zero, err
		}, nil)
	})
}

// Repeat returns a producer yielding v n times, or forever if n is negative.
func Repeat[T any](n int, v T) Producer[T] {
	return RepeatFunc(n, func() T { return v })
}

// RepeatFunc is like [Repeat] but computes each element lazily with fn.
func RepeatFunc[T any](n int, fn func() T) Producer[T] {
	if fn == nil {
		panic("asyncseq: RepeatFunc requires a non-nil function")
	}
	return ProducerFunc[T](func(context.Context) Iterator[T] {
		left := n
		return NewIterator(func(context.Context) (T, error) {
			if left == 0 {
				var zero T
				return zero, io.EOF
			}
			if left > 0 {
				left--
			}
			return fn(), nil
		}, nil)
	})
}
