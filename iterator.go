package asyncseq

import (
	"context"
	"io"
)

// Iterator is a cursor over the progress of one [Producer].
//
// Next returns the next element, io.EOF once the sequence has ended, or the
// failure raised by the source. Once Next has returned io.EOF it keeps
// returning io.EOF.
//
// An Iterator is single-consumer: Next and Close must not be called
// concurrently. The iterators returned by this package panic when Next is
// entered twice at the same time.
type Iterator[T any] interface {
	Next(ctx context.Context) (T, error)

	// Close releases background work and closes upstream iterators.
	// It is idempotent.
	Close() error
}

// Producer describes how to build an [Iterator]. Producers hold no
// per-iteration state and may be shared freely.
//
// The ctx passed to Iterator bounds the lifetime of any background work the
// iterator starts; the ctx passed to [Iterator.Next] only bounds one wait.
type Producer[T any] interface {
	Iterator(ctx context.Context) Iterator[T]
}

// ProducerFunc adapts a function to the [Producer] interface.
type ProducerFunc[T any] func(ctx context.Context) Iterator[T]

// Iterator implements [Producer].
func (f ProducerFunc[T]) Iterator(ctx context.Context) Iterator[T] {
	return f(ctx)
}

// Pull calls it.Next once and wraps the result in an [Outcome].
func Pull[T any](ctx context.Context, it Iterator[T]) Outcome[T] {
	return OutcomeOf(it.Next(ctx))
}

// Collect drains p into a slice. On failure it returns the elements gathered
// so far alongside the error, following [io.Reader] conventions.
func Collect[T any](ctx context.Context, p Producer[T]) ([]T, error) {
	it := p.Iterator(ctx)
	defer it.Close()

	var items []T
	for {
		v, err := it.Next(ctx)
		if err == io.EOF {
			return items, nil
		}
		if err != nil {
			return items, err
		}
		items = append(items, v)
	}
}

// ForEach calls fn for every element of p until the sequence ends, a
// failure is pulled, or fn returns an error.
func ForEach[T any](ctx context.Context, p Producer[T], fn func(T) error) error {
	it := p.Iterator(ctx)
	defer it.Close()

	for {
		v, err := it.Next(ctx)
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if err := fn(v); err != nil {
			return err
		}
	}
}

// Count drains p and returns the number of elements pulled.
func Count[T any](ctx context.Context, p Producer[T]) (int, error) {
	var n int
	err := ForEach(ctx, p, func(T) error {
		n++
		return nil
	})
	return n, err
}

// ToChan pumps p into a channel from a new goroutine. The error channel
// receives the terminal failure (nil on a clean end) and both channels are
// closed afterwards. Cancel ctx to stop the goroutine early.
func ToChan[T any](ctx context.Context, p Producer[T]) (<-chan T, <-chan error) {
	ch := make(chan T)
	errCh := make(chan error, 1)
	go func() {
		defer close(errCh)
		defer close(ch)
		errCh <- ForEach(ctx, p, func(v T) error {
			select {
			case ch <- v:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		})
	}()
	return ch, errCh
}
