package asyncseq

import (
	"context"
	"io"
)

// transformIterator applies step to every outcome pulled from src. Outcomes
// for which step reports false are skipped. It is terminal after the first
// non-element outcome it emits.
type transformIterator[T, U any] struct {
	src   Iterator[T]
	step  func(ctx context.Context, o Outcome[T]) (Outcome[U], bool)
	ended bool
}

func (it *transformIterator[T, U]) Next(ctx context.Context) (U, error) {
	var zero U
	for !it.ended {
		v, err := it.src.Next(ctx)
		if interrupted(ctx, err) {
			return zero, err
		}
		out, keep := it.step(ctx, OutcomeOf(v, err))
		if !keep {
			if err == io.EOF {
				it.ended = true
			}
			continue
		}
		if !out.IsElement() {
			it.ended = true
		}
		return out.Get()
	}
	return zero, io.EOF
}

func (it *transformIterator[T, U]) Close() error {
	it.ended = true
	return it.src.Close()
}

func transformed[T, U any](p Producer[T], step func(context.Context, Outcome[T]) (Outcome[U], bool)) Producer[U] {
	return ProducerFunc[U](func(ctx context.Context) Iterator[U] {
		return &transformIterator[T, U]{src: p.Iterator(ctx), step: step}
	})
}

// MapOutcome rewrites every outcome of p with fn, skipping those for which
// fn reports false. It is the general form of the other transforms.
func MapOutcome[T, U any](p Producer[T], fn func(Outcome[T]) (Outcome[U], bool)) Producer[U] {
	if p == nil || fn == nil {
		panic("asyncseq: MapOutcome requires a non-nil producer and function")
	}
	return transformed(p, func(_ context.Context, o Outcome[T]) (Outcome[U], bool) {
		return fn(o)
	})
}

// Map transforms every element of p with fn. An error returned by fn
// becomes the failure of the mapped sequence.
func Map[T, U any](p Producer[T], fn func(context.Context, T) (U, error)) Producer[U] {
	if p == nil || fn == nil {
		panic("asyncseq: Map requires a non-nil producer and function")
	}
	return transformed(p, func(ctx context.Context, o Outcome[T]) (Outcome[U], bool) {
		if !o.IsElement() {
			return Failure[U](o.Err()), true
		}
		return OutcomeOf(fn(ctx, o.Value())), true
	})
}

// MapError transforms every failure of p with fn.
func MapError[T any](p Producer[T], fn func(error) error) Producer[T] {
	if p == nil || fn == nil {
		panic("asyncseq: MapError requires a non-nil producer and function")
	}
	return MapOutcome(p, func(o Outcome[T]) (Outcome[T], bool) {
		if !o.IsFailure() {
			return o, true
		}
		if err := fn(o.Err()); err != nil {
			return Failure[T](err), true
		}
		return End[T](), true
	})
}

// CompactMap transforms every element of p with fn and skips the elements
// for which fn reports false.
func CompactMap[T, U any](p Producer[T], fn func(T) (U, bool)) Producer[U] {
	if p == nil || fn == nil {
		panic("asyncseq: CompactMap requires a non-nil producer and function")
	}
	return MapOutcome(p, func(o Outcome[T]) (Outcome[U], bool) {
		if !o.IsElement() {
			return Failure[U](o.Err()), true
		}
		v, ok := fn(o.Value())
		return Element(v), ok
	})
}

// CompactMapError transforms every failure of p with fn and skips the
// failures for which fn reports false; the sequence then carries on.
func CompactMapError[T any](p Producer[T], fn func(error) (error, bool)) Producer[T] {
	if p == nil || fn == nil {
		panic("asyncseq: CompactMapError requires a non-nil producer and function")
	}
	return MapOutcome(p, func(o Outcome[T]) (Outcome[T], bool) {
		if !o.IsFailure() {
			return o, true
		}
		err, ok := fn(o.Err())
		if !ok {
			return o, false
		}
		if err == nil {
			return End[T](), true
		}
		return Failure[T](err), true
	})
}

// Filter keeps the elements of p for which fn reports true.
func Filter[T any](p Producer[T], fn func(T) bool) Producer[T] {
	if p == nil || fn == nil {
		panic("asyncseq: Filter requires a non-nil producer and function")
	}
	return MapOutcome(p, func(o Outcome[T]) (Outcome[T], bool) {
		return o, !o.IsElement() || fn(o.Value())
	})
}

// Take limits p to its first n elements. The source is not pulled again
// after the n-th element.
func Take[T any](p Producer[T], n int) Producer[T] {
	if p == nil {
		panic("asyncseq: Take requires a non-nil producer")
	}
	return ProducerFunc[T](func(ctx context.Context) Iterator[T] {
		src := p.Iterator(ctx)
		var taken int
		return NewIterator(func(ctx context.Context) (T, error) {
			if taken >= n {
				var zero T
				return zero, io.EOF
			}
			v, err := src.Next(ctx)
			if err != nil {
				return v, err
			}
			taken++
			return v, nil
		}, src.Close)
	})
}
