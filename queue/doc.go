// Package queue provides the single-producer, single-consumer queue behind
// [github.com/baxromumarov/asyncseq.Buffer].
//
// A [Queue] is bounded or unbounded according to its [Policy]. When a
// bounded queue is full, [KeepOldest] drops the incoming value and
// [KeepNewest] evicts the oldest queued value to admit it. A final value
// pushed with [Queue.Finish] is never subject to the policy: it is appended
// after everything admitted before it and closes the queue.
//
// Push and Pop are safe to call from different goroutines without external
// locking. Pop blocks, honouring context cancellation, until a value is
// available or the queue is finished and drained.
package queue
