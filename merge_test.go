package asyncseq

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeYieldsUnionOfBothSides(t *testing.T) {
	got, err := Collect(context.Background(), Merge(FromSlice([]int{1, 2, 3}), FromSlice([]int{10, 20})))
	require.NoError(t, err)
	assert.ElementsMatch(t, []int{1, 2, 3, 10, 20}, got)

	var fromA, fromB []int
	for _, v := range got {
		if v < 10 {
			fromA = append(fromA, v)
		} else {
			fromB = append(fromB, v)
		}
	}
	assert.Equal(t, []int{1, 2, 3}, fromA, "per-side order must be preserved")
	assert.Equal(t, []int{10, 20}, fromB)
}

func TestMergeEmptySide(t *testing.T) {
	got, err := Collect(context.Background(), Merge(Empty[int](), FromSlice([]int{5, 6})))
	require.NoError(t, err)
	assert.Equal(t, []int{5, 6}, got)

	got, err = Collect(context.Background(), Merge(Empty[int](), Empty[int]()))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestMergeFollowsArrivalOrder(t *testing.T) {
	ctx := context.Background()
	pa, pb := newPipe[int](), newPipe[int]()
	it := Merge[int](pa, pb).Iterator(ctx)
	defer it.Close()

	step := func(p *pipe[int], o Outcome[int]) Outcome[int] {
		ch := nextAsync(ctx, it)
		p.send(t, o)
		return receive(t, ch)
	}

	assert.Equal(t, Element(10), step(pb, Element(10)))
	assert.Equal(t, Element(20), step(pb, Element(20)))

	// B ends; the merged sequence carries on with A's pending pull.
	ch := nextAsync(ctx, it)
	pb.send(t, End[int]())
	pa.send(t, Element(1))
	assert.Equal(t, Element(1), receive(t, ch))

	assert.Equal(t, Element(2), step(pa, Element(2)))
	assert.Equal(t, End[int](), step(pa, End[int]()))
	assert.Equal(t, End[int](), Pull(ctx, it))

	assert.Equal(t, int32(3), pa.pulls.Load())
	assert.Equal(t, int32(3), pb.pulls.Load())
}

func TestMergeFailureRetiresSide(t *testing.T) {
	boom := errors.New("boom")
	it := Merge(Fail[int](boom), FromSlice([]int{1, 2})).Iterator(context.Background())
	defer it.Close()

	var (
		items    []int
		failures []error
	)
	for range 10 {
		o := Pull(context.Background(), it)
		if o.IsEnd() {
			break
		}
		if o.IsFailure() {
			failures = append(failures, o.Err())
			continue
		}
		items = append(items, o.Value())
	}

	assert.Equal(t, []int{1, 2}, items)
	require.Len(t, failures, 1)
	assert.ErrorIs(t, failures[0], boom)
	assert.Equal(t, End[int](), Pull(context.Background(), it))
}

func TestMergeCancelledWaitLosesNothing(t *testing.T) {
	pa, pb := newPipe[int](), newPipe[int]()
	it := Merge[int](pa, pb).Iterator(context.Background())
	defer it.Close()

	ctx, cancel := context.WithCancel(context.Background())
	ch := nextAsync(ctx, it)
	require.Eventually(t, func() bool {
		return pa.pulls.Load() == 1 && pb.pulls.Load() == 1
	}, time.Second, time.Millisecond)
	cancel()
	assert.ErrorIs(t, receive(t, ch).Err(), context.Canceled)

	ch = nextAsync(context.Background(), it)
	pa.send(t, Element(1))
	assert.Equal(t, Element(1), receive(t, ch))

	ch = nextAsync(context.Background(), it)
	pb.send(t, Element(2))
	assert.Equal(t, Element(2), receive(t, ch))

	// a was pulled again only after it delivered; b has not been re-pulled.
	assert.Eventually(t, func() bool { return pa.pulls.Load() == 2 }, time.Second, time.Millisecond)
	assert.Equal(t, int32(1), pb.pulls.Load())
}

func TestMergeConcurrentNextPanics(t *testing.T) {
	pa, pb := newPipe[int](), newPipe[int]()
	it := Merge[int](pa, pb).Iterator(context.Background())
	defer it.Close()

	ch := nextAsync(context.Background(), it)
	require.Eventually(t, func() bool { return pa.pulls.Load() == 1 }, time.Second, time.Millisecond)

	mustPanicContains(t, "concurrent Next on merge iterator", func() {
		_, _ = it.Next(context.Background())
	})

	pa.send(t, Element(1))
	assert.Equal(t, Element(1), receive(t, ch))
}

func TestMergeCloseClosesSources(t *testing.T) {
	errA, errB := errors.New("close a"), errors.New("close b")
	src := func(closeErr error) Producer[int] {
		return ProducerFunc[int](func(context.Context) Iterator[int] {
			return NewIterator(func(ctx context.Context) (int, error) {
				<-ctx.Done()
				return 0, ctx.Err()
			}, func() error { return closeErr })
		})
	}

	it := Merge(src(errA), src(errB)).Iterator(context.Background())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err := it.Next(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)

	err = it.Close()
	assert.ErrorIs(t, err, errA)
	assert.ErrorIs(t, err, errB)
	assert.NoError(t, it.Close(), "second close is a no-op")

	_, err = it.Next(context.Background())
	assert.Equal(t, io.EOF, err)
}

func TestMergeSourcePanicBecomesFailure(t *testing.T) {
	panicky := FromFunc(func(context.Context) (int, error) {
		panic("kaboom")
	})
	pb := newPipe[int]()
	it := Merge[int](panicky, pb).Iterator(context.Background())
	defer it.Close()

	_, err := it.Next(context.Background())
	var pe *PanicError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "kaboom", pe.Value)

	ch := nextAsync(context.Background(), it)
	pb.send(t, Element(7))
	assert.Equal(t, Element(7), receive(t, ch))
}

func TestMergeRequiresProducers(t *testing.T) {
	mustPanicContains(t, "non-nil producers", func() {
		Merge[int](nil, Empty[int]())
	})
}
