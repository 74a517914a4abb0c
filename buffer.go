package asyncseq

import (
	"context"
	"io"

	"github.com/baxromumarov/asyncseq/queue"
)

// BufferPolicy decides what a full [Buffer] does with an incoming element.
type BufferPolicy = queue.Policy

// Unbounded buffers every element.
func Unbounded() BufferPolicy { return queue.Unbounded() }

// KeepOldest buffers at most n elements and drops elements that arrive
// while the buffer is full. It panics if n is not positive.
func KeepOldest(n int) BufferPolicy { return queue.KeepOldest(n) }

// KeepNewest buffers at most n elements and evicts the oldest buffered
// element to admit a new one. It panics if n is not positive.
func KeepNewest(n int) BufferPolicy { return queue.KeepNewest(n) }

// Buffer decouples p's production rate from the consumer's.
//
// Each iterator runs one background pump that pulls p as fast as it
// produces and queues every outcome according to policy, until the end or
// a failure has been queued. The pump starts on the first pull, or as soon
// as the iterator is created with [WithPrefetch]. The end or failure is
// never evicted or dropped: it is delivered after every element admitted
// before it.
//
// Close stops the pump and waits for it to exit.
//
// Buffer panics if p is nil.
func Buffer[T any](p Producer[T], policy BufferPolicy, opts ...Option) Producer[T] {
	if p == nil {
		panic("asyncseq: Buffer requires a non-nil producer")
	}
	cfg := buildConfig(opts)
	return ProducerFunc[T](func(ctx context.Context) Iterator[T] {
		c := newCore(ctx, cfg, "buffer")
		b := &bufferIterator[T]{
			core: c,
			src:  p.Iterator(c.g.ctx),
			q:    queue.New[Outcome[T]](policy),
		}
		c.probe.log.Debug().
			Stringer("policy", policy).
			Int("capacity", policy.Limit()).
			Bool("prefetch", cfg.prefetch).
			Msg("buffer created")
		if cfg.prefetch {
			b.start()
		}
		return b
	})
}

type bufferIterator[T any] struct {
	*core
	src Iterator[T]
	q   *queue.Queue[Outcome[T]]

	started bool
	drained bool
}

func (b *bufferIterator[T]) start() {
	b.started = true
	b.g.fork(b.pump)
}

// pump is the sole writer of the queue and the sole user of src until
// Close has joined it.
func (b *bufferIterator[T]) pump(ctx context.Context) {
	for {
		b.probe.fetchedOne()
		out := pullSafely(ctx, b.src)
		if !out.IsElement() {
			b.q.Finish(out)
			b.probe.pumpDone(out.Kind(), b.q.Len())
			return
		}

		switch b.q.Push(out) {
		case queue.Evicted:
			b.probe.evicted()
		case queue.Dropped:
			b.probe.dropped()
		}
	}
}

func (b *bufferIterator[T]) Next(ctx context.Context) (T, error) {
	b.enter()
	defer b.exit()

	var zero T
	if b.closed || b.drained {
		return zero, io.EOF
	}
	if !b.started {
		b.start()
	}

	out, ok, err := b.q.Pop(ctx)
	if err != nil {
		return zero, err
	}
	if !ok || !out.IsElement() {
		b.drained = true
	}
	if !ok {
		return zero, io.EOF
	}
	return out.Get()
}

func (b *bufferIterator[T]) Close() error {
	if !b.shutdown() {
		return nil
	}
	b.q.Close()
	return b.src.Close()
}
