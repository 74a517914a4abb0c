package asyncseq

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
)

// side names one of the two inputs of a binary combinator.
type side uint8

const (
	sideA side = iota
	sideB
)

func (s side) String() string {
	if s == sideA {
		return "a"
	}
	return "b"
}

// race waits until the first of a and b settles and reports which one it
// was. Neither handle is cancelled: the loser keeps running and the caller
// owns it from here on, either to await it or to race it again.
//
// Handles that have already settled win in argument order, so a call that
// finds both settled always picks a. If ctx is done before either settles,
// race returns ctx.Err() and both handles remain in flight.
func race[A, B any](ctx context.Context, a *fetch[A], b *fetch[B]) (side, error) {
	if a.settled() {
		return sideA, nil
	}
	if b.settled() {
		return sideB, nil
	}
	select {
	case <-a.done:
		return sideA, nil
	case <-b.done:
		return sideB, nil
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}

// settlement is the result of racing two handles over the same element type.
type settlement[T any] struct {
	winner  side
	out     Outcome[T]
	it      Iterator[T]
	pending *fetch[T]
}

// raceFirst races a and b and unwraps the winner: its outcome, its advanced
// iterator, and the other, still unresolved handle.
func raceFirst[T any](ctx context.Context, a, b *fetch[T]) (settlement[T], error) {
	won, err := race(ctx, a, b)
	if err != nil {
		return settlement[T]{}, err
	}
	if won == sideA {
		out, it := a.result()
		return settlement[T]{winner: sideA, out: out, it: it, pending: b}, nil
	}
	out, it := b.result()
	return settlement[T]{winner: sideB, out: out, it: it, pending: a}, nil
}

// deadline is a timer whose firing is remembered. A deadline may be held
// across calls to Next, and a fire observed by one call stays observed by
// the next.
type deadline struct {
	timer clockwork.Timer
	fired bool
	at    time.Time
}

func newDeadline(clk clockwork.Clock, d time.Duration) *deadline {
	return &deadline{timer: clk.NewTimer(d)}
}

// poll reports whether the deadline has fired, without blocking.
func (d *deadline) poll() bool {
	if d.fired {
		return true
	}
	select {
	case at := <-d.timer.Chan():
		d.fired, d.at = true, at
	default:
	}
	return d.fired
}

// wait blocks until the deadline fires or ctx is done.
func (d *deadline) wait(ctx context.Context) error {
	if d.fired {
		return nil
	}
	select {
	case at := <-d.timer.Chan():
		d.fired, d.at = true, at
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *deadline) stop() {
	d.timer.Stop()
}

// raceTimer races f against d. It reports true when the deadline fired
// first. If both have happened by the time raceTimer looks, which is the
// case when a caller stopped waiting and came back later, the one that
// happened earlier on the clock wins, and the deadline wins a tie.
func raceTimer[T any](ctx context.Context, f *fetch[T], d *deadline) (bool, error) {
	for {
		settled, fired := f.settled(), d.poll()
		switch {
		case settled && fired:
			return !f.at.Before(d.at), nil
		case fired:
			return true, nil
		case settled:
			return false, nil
		}

		select {
		case <-f.done:
		case at := <-d.timer.Chan():
			d.fired, d.at = true, at
		case <-ctx.Done():
			return false, ctx.Err()
		}
	}
}

// sleep waits for t to fire or ctx to be done.
func sleep(ctx context.Context, t clockwork.Timer) error {
	select {
	case <-t.Chan():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
