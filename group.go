package asyncseq

import (
	"context"
	"errors"
	"sync"

	"github.com/jonboulle/clockwork"
)

// errIteratorClosed is the cancellation cause of a closed iterator's
// background work.
var errIteratorClosed = errors.New("asyncseq: iterator closed")

// group owns every goroutine forked on behalf of one iterator: fetch
// handles, timers that outlive a call, and buffer pumps. Closing the group
// cancels its context and joins all of them, so no work outlives the
// iterator that started it.
type group struct {
	ctx    context.Context
	cancel context.CancelCauseFunc
	wg     sync.WaitGroup

	// Stamps fetch settlement so it can be ordered against timers.
	clock clockwork.Clock

	closeOnce sync.Once
}

func newGroup(parent context.Context, clk clockwork.Clock) *group {
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancelCause(parent)
	return &group{ctx: ctx, cancel: cancel, clock: clk}
}

// fork runs fn on a new goroutine tracked by the group.
func (g *group) fork(fn func(ctx context.Context)) {
	g.wg.Add(1)
	go func() {
		defer g.wg.Done()
		fn(g.ctx)
	}()
}

// close cancels the group context and waits for every forked goroutine.
func (g *group) close() {
	g.closeOnce.Do(func() {
		g.cancel(errIteratorClosed)
		g.wg.Wait()
	})
}
