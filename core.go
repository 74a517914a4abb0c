package asyncseq

import (
	"context"
	"sync/atomic"
)

// core is the state shared by every combinator iterator: the group that owns
// its background goroutines, its probe, and the single-consumer guard.
type core struct {
	g      *group
	probe  *probe
	cfg    config
	busy   atomic.Bool
	closed bool
}

func newCore(ctx context.Context, cfg config, op string) *core {
	return &core{
		g:     newGroup(ctx, cfg.clock),
		probe: newProbe(cfg, op),
		cfg:   cfg,
	}
}

// enter marks the start of a Next call. Two overlapping calls panic.
func (c *core) enter() {
	if !c.busy.CompareAndSwap(false, true) {
		panic("asyncseq: concurrent Next on " + c.probe.op + " iterator")
	}
}

func (c *core) exit() {
	c.busy.Store(false)
}

// shutdown marks the iterator closed and joins its background work. It
// reports false if the iterator was already closed.
func (c *core) shutdown() bool {
	if c.closed {
		return false
	}
	c.closed = true
	c.g.close()
	return true
}

// fetchSide forks a pull of it on behalf of side s.
func fetchSide[T any](c *core, s side, it Iterator[T]) *fetch[T] {
	c.probe.fetched(s)
	return startFetch(c.g, it)
}

// fetchOne forks a pull of it for single-source combinators.
func fetchOne[T any](c *core, it Iterator[T]) *fetch[T] {
	c.probe.fetchedOne()
	return startFetch(c.g, it)
}

// interrupted reports whether err came from the caller giving up on the
// wait rather than from the source.
func interrupted(ctx context.Context, err error) bool {
	return err != nil && ctx.Err() != nil && err == ctx.Err()
}
