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

func TestZipPairsByPosition(t *testing.T) {
	a := countPulls(FromSlice([]int{1, 2, 3}))
	b := countPulls(FromSlice([]string{"x", "y"}))

	got, err := Collect(context.Background(), Zip[int, string](a, b))
	require.NoError(t, err)
	assert.Equal(t, []Pair[int, string]{{1, "x"}, {2, "y"}}, got)

	// Both sides are advanced together: two full rounds plus the round
	// that found b's end.
	assert.Equal(t, int32(3), a.pulls.Load())
	assert.Equal(t, int32(3), b.pulls.Load())
}

func TestZipTerminalPriority(t *testing.T) {
	errA, errB := errors.New("a failed"), errors.New("b failed")

	tests := []struct {
		name    string
		a, b    Producer[int]
		wantErr error
	}{
		{name: "a failure beats b failure", a: Fail[int](errA), b: Fail[int](errB), wantErr: errA},
		{name: "b failure beats a end", a: Empty[int](), b: Fail[int](errB), wantErr: errB},
		{name: "a failure beats b end", a: Fail[int](errA), b: Empty[int](), wantErr: errA},
		{name: "end", a: Empty[int](), b: Just(1), wantErr: io.EOF},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			it := Zip(tt.a, tt.b).Iterator(context.Background())
			defer it.Close()

			_, err := it.Next(context.Background())
			assert.ErrorIs(t, err, tt.wantErr)

			_, err = it.Next(context.Background())
			assert.Equal(t, io.EOF, err)
		})
	}
}

func TestZipWaitsForSlowerSide(t *testing.T) {
	ctx := context.Background()
	pa, pb := newPipe[int](), newPipe[int]()
	it := Zip[int, int](pa, pb).Iterator(ctx)
	defer it.Close()

	ch := nextAsync(ctx, it)
	pa.send(t, Element(1))
	assert.Never(t, func() bool { return len(ch) > 0 }, 20*time.Millisecond, time.Millisecond)

	pb.send(t, Element(10))
	assert.Equal(t, Element(Pair[int, int]{1, 10}), receive(t, ch))
}

func TestZipCancelledWaitKeepsRound(t *testing.T) {
	pa, pb := newPipe[int](), newPipe[int]()
	it := Zip[int, int](pa, pb).Iterator(context.Background())
	defer it.Close()

	ctx, cancel := context.WithCancel(context.Background())
	ch := nextAsync(ctx, it)
	pa.send(t, Element(1))
	cancel()
	assert.ErrorIs(t, receive(t, ch).Err(), context.Canceled)

	ch = nextAsync(context.Background(), it)
	pb.send(t, Element(10))
	assert.Equal(t, Element(Pair[int, int]{1, 10}), receive(t, ch))
	assert.Equal(t, int32(1), pa.pulls.Load())
	assert.Equal(t, int32(1), pb.pulls.Load())
}

func TestZipCloseIsIdempotent(t *testing.T) {
	pa, pb := newPipe[int](), newPipe[int]()
	it := Zip[int, int](pa, pb).Iterator(context.Background())

	ch := nextAsync(context.Background(), it)
	pa.send(t, Element(1))
	pb.send(t, Element(2))
	receive(t, ch)

	require.NoError(t, it.Close())
	require.NoError(t, it.Close())
	assert.True(t, pa.closed.Load())
	assert.True(t, pb.closed.Load())

	_, err := it.Next(context.Background())
	assert.Equal(t, io.EOF, err)
}
