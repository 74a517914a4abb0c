package asyncseq

import (
	"fmt"
	"io"
)

// Kind tags the variant held by an [Outcome].
type Kind uint8

const (
	// KindElement is a successfully pulled value.
	KindElement Kind = iota

	// KindFailure is an error raised by the source.
	KindFailure

	// KindEnd marks the end of the sequence.
	KindEnd
)

func (k Kind) String() string {
	switch k {
	case KindElement:
		return "element"
	case KindFailure:
		return "failure"
	case KindEnd:
		return "end"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// Outcome holds the result of a single pull: an element, a failure, or end
// of sequence. The zero Outcome is an element holding the zero value.
type Outcome[T any] struct {
	kind Kind
	val  T
	err  error
}

// Element returns an Outcome carrying v.
func Element[T any](v T) Outcome[T] {
	return Outcome[T]{kind: KindElement, val: v}
}

// Failure returns an Outcome carrying err. Failure(io.EOF) is [End] and
// Failure(nil) panics.
func Failure[T any](err error) Outcome[T] {
	if err == nil {
		panic("asyncseq: Failure requires a non-nil error")
	}
	if err == io.EOF {
		return End[T]()
	}
	return Outcome[T]{kind: KindFailure, err: err}
}

// End returns the end-of-sequence Outcome.
func End[T any]() Outcome[T] {
	return Outcome[T]{kind: KindEnd}
}

// OutcomeOf converts the return values of [Iterator.Next] into an Outcome.
func OutcomeOf[T any](v T, err error) Outcome[T] {
	switch {
	case err == nil:
		return Element(v)
	case err == io.EOF:
		return End[T]()
	default:
		return Outcome[T]{kind: KindFailure, err: err}
	}
}

// Kind reports which variant o holds.
func (o Outcome[T]) Kind() Kind { return o.kind }

// IsElement reports whether o carries a value.
func (o Outcome[T]) IsElement() bool { return o.kind == KindElement }

// IsFailure reports whether o carries an error.
func (o Outcome[T]) IsFailure() bool { return o.kind == KindFailure }

// IsEnd reports whether o marks the end of the sequence.
func (o Outcome[T]) IsEnd() bool { return o.kind == KindEnd }

// Value returns the element, or the zero value for failure and end.
func (o Outcome[T]) Value() T { return o.val }

// Err returns the failure, io.EOF for end, or nil for an element.
func (o Outcome[T]) Err() error {
	switch o.kind {
	case KindFailure:
		return o.err
	case KindEnd:
		return io.EOF
	default:
		return nil
	}
}

// Get returns o in the shape of [Iterator.Next].
func (o Outcome[T]) Get() (T, error) {
	if o.kind == KindElement {
		return o.val, nil
	}
	var zero T
	return zero, o.Err()
}

func (o Outcome[T]) String() string {
	switch o.kind {
	case KindElement:
		return fmt.Sprintf("element(%v)", o.val)
	case KindFailure:
		return fmt.Sprintf("failure(%v)", o.err)
	default:
		return "end"
	}
}
