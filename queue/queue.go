package queue

import (
	"context"
	"fmt"
	"sync"

	"github.com/gammazero/deque"
)

type policyKind uint8

const (
	unbounded policyKind = iota
	keepOldest
	keepNewest
)

// Policy decides what a full queue does with an incoming value.
type Policy struct {
	kind  policyKind
	limit int
}

// Unbounded never evicts or drops.
func Unbounded() Policy {
	return Policy{kind: unbounded}
}

// KeepOldest holds at most n values; a value arriving at a full queue is
// dropped. It panics if n is not positive.
func KeepOldest(n int) Policy {
	if n <= 0 {
		panic("queue: KeepOldest requires n > 0")
	}
	return Policy{kind: keepOldest, limit: n}
}

// KeepNewest holds at most n values; a value arriving at a full queue evicts
// the oldest queued value. It panics if n is not positive.
func KeepNewest(n int) Policy {
	if n <= 0 {
		panic("queue: KeepNewest requires n > 0")
	}
	return Policy{kind: keepNewest, limit: n}
}

// Limit returns the capacity of the policy, or 0 when unbounded.
func (p Policy) Limit() int { return p.limit }

func (p Policy) String() string {
	switch p.kind {
	case keepOldest:
		return fmt.Sprintf("keep-oldest(%d)", p.limit)
	case keepNewest:
		return fmt.Sprintf("keep-newest(%d)", p.limit)
	default:
		return "unbounded"
	}
}

// Admission reports what happened to a pushed value.
type Admission uint8

const (
	// Admitted means the value was queued without displacing anything.
	Admitted Admission = iota

	// Evicted means the value was queued and the oldest value was discarded.
	Evicted

	// Dropped means the value was discarded.
	Dropped
)

func (a Admission) String() string {
	switch a {
	case Evicted:
		return "evicted"
	case Dropped:
		return "dropped"
	default:
		return "admitted"
	}
}

// Queue is a FIFO queue with an overflow [Policy].
type Queue[T any] struct {
	policy Policy

	mu       sync.Mutex
	items    *deque.Deque[T]
	final    T
	hasFinal bool
	finished bool

	// Signalled, without blocking, whenever the queue changes.
	ready chan struct{}
}

// New returns an empty queue governed by p.
func New[T any](p Policy) *Queue[T] {
	return &Queue[T]{
		policy: p,
		items:  deque.New[T](),
		ready:  make(chan struct{}, 1),
	}
}

// Push appends v according to the policy. Pushing to a finished or closed
// queue panics.
func (q *Queue[T]) Push(v T) Admission {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.finished {
		panic("queue: push after finish")
	}

	adm := Admitted
	if q.policy.kind != unbounded && q.items.Len() >= q.policy.limit {
		if q.policy.kind == keepOldest {
			return Dropped
		}
		q.items.PopFront()
		adm = Evicted
	}
	q.items.PushBack(v)
	q.signal()
	return adm
}

// Finish appends v as the last value, bypassing the policy, and closes the
// queue to further pushes. Finishing twice is a no-op.
func (q *Queue[T]) Finish(v T) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.finished {
		return
	}
	q.final, q.hasFinal, q.finished = v, true, true
	q.signal()
}

// Close closes the queue without a final value. Pending values can still
// be popped.
func (q *Queue[T]) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.finished = true
	q.signal()
}

func (q *Queue[T]) signal() {
	select {
	case q.ready <- struct{}{}:
	default:
	}
}

func (q *Queue[T]) popLocked() (T, bool) {
	if q.items.Len() > 0 {
		return q.items.PopFront(), true
	}
	if q.hasFinal {
		v := q.final
		var zero T
		q.final, q.hasFinal = zero, false
		return v, true
	}
	var zero T
	return zero, false
}

// Pop removes and returns the oldest value, blocking until one is available.
// It returns false once the queue is finished and drained, or ctx.Err() if
// ctx is done first.
func (q *Queue[T]) Pop(ctx context.Context) (T, bool, error) {
	for {
		q.mu.Lock()
		v, ok := q.popLocked()
		done := q.finished
		q.mu.Unlock()

		if ok {
			return v, true, nil
		}
		if done {
			var zero T
			return zero, false, nil
		}

		select {
		case <-q.ready:
		case <-ctx.Done():
			var zero T
			return zero, false, ctx.Err()
		}
	}
}

// Len returns the number of values waiting, including a final value.
func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	n := q.items.Len()
	if q.hasFinal {
		n++
	}
	return n
}
