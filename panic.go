package asyncseq

import (
	"context"
	"fmt"
	"runtime"
)

// PanicError wraps a panic recovered from a source while it was being pulled
// on a background goroutine (a forked fetch or a buffer pump), together with
// the stack trace captured at the point of the panic.
//
// The panic is delivered to the consumer as a regular failure.
type PanicError struct {
	// Value is the original value passed to panic().
	Value any

	// Stack is the goroutine stack trace at the point of panic.
	Stack string
}

// Error returns the panic value followed by the stack trace.
func (e *PanicError) Error() string {
	return fmt.Sprintf("asyncseq: source panicked: %v\n\n%s", e.Value, e.Stack)
}

// Unwrap returns the panic value when it is an error.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

func newPanicError(v any) *PanicError {
	// 8 KiB is enough for most stack traces. runtime.Stack truncates
	// gracefully if the buffer is too small.
	buf := make([]byte, 8192)
	n := runtime.Stack(buf, false)
	return &PanicError{
		Value: v,
		Stack: string(buf[:n]),
	}
}

// pullSafely pulls it once, converting a panic into a failure.
func pullSafely[T any](ctx context.Context, it Iterator[T]) (out Outcome[T]) {
	defer func() {
		if r := recover(); r != nil {
			out = Failure[T](newPanicError(r))
		}
	}()
	return Pull(ctx, it)
}
