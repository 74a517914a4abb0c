package asyncseq

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMap(t *testing.T) {
	got, err := Collect(context.Background(), Map(FromSlice([]int{1, 2, 3}), func(_ context.Context, v int) (string, error) {
		return strconv.Itoa(v * 2), nil
	}))
	require.NoError(t, err)
	assert.Equal(t, []string{"2", "4", "6"}, got)
}

func TestMapErrorFromCallbackIsTerminal(t *testing.T) {
	boom := errors.New("boom")
	src := countPulls(FromSlice([]int{1, 2, 3}))
	it := Map[int](src, func(_ context.Context, v int) (int, error) {
		if v == 2 {
			return 0, boom
		}
		return v, nil
	}).Iterator(context.Background())
	defer it.Close()

	got, err := drain(t, it)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []int{1}, got)

	_, err = it.Next(context.Background())
	assert.Equal(t, io.EOF, err)
	assert.Equal(t, int32(2), src.pulls.Load())
}

func TestMapError(t *testing.T) {
	boom := errors.New("boom")

	_, err := Collect(context.Background(), MapError(Fail[int](boom), func(err error) error {
		return fmt.Errorf("wrapped: %w", err)
	}))
	assert.ErrorIs(t, err, boom)
	assert.EqualError(t, err, "wrapped: boom")

	got, err := Collect(context.Background(), MapError(failAfter([]int{1}, boom), func(error) error {
		return nil
	}))
	require.NoError(t, err, "a nil mapped error ends the sequence")
	assert.Equal(t, []int{1}, got)
}

func TestCompactMap(t *testing.T) {
	got, err := Collect(context.Background(), CompactMap(FromSlice([]int{1, 2, 3, 4}), func(v int) (string, bool) {
		return strconv.Itoa(v), v%2 == 0
	}))
	require.NoError(t, err)
	assert.Equal(t, []string{"2", "4"}, got)
}

func TestCompactMapErrorSkipsFailures(t *testing.T) {
	boom := errors.New("boom")
	src := fromOutcomes(Element(1), Failure[int](boom), Element(2))

	got, err := Collect(context.Background(), CompactMapError(src, func(error) (error, bool) {
		return nil, false
	}))
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, got)
}

func TestMapOutcome(t *testing.T) {
	boom := errors.New("boom")
	src := fromOutcomes(Element(1), Failure[int](boom))

	got, err := Collect(context.Background(), MapOutcome(src, func(o Outcome[int]) (Outcome[string], bool) {
		if o.IsFailure() {
			return Element("recovered"), true
		}
		if o.IsEnd() {
			return End[string](), true
		}
		return Element(strconv.Itoa(o.Value())), true
	}))
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "recovered"}, got)
}

func TestFilter(t *testing.T) {
	got, err := Collect(context.Background(), Filter(FromSlice([]int{1, 2, 3, 4, 5}), func(v int) bool {
		return v > 2
	}))
	require.NoError(t, err)
	assert.Equal(t, []int{3, 4, 5}, got)
}

func TestTake(t *testing.T) {
	src := countPulls(Repeat(-1, 7))
	got, err := Collect(context.Background(), Take[int](src, 3))
	require.NoError(t, err)
	assert.Equal(t, []int{7, 7, 7}, got)
	assert.Equal(t, int32(3), src.pulls.Load())

	got, err = Collect(context.Background(), Take(FromSlice([]int{1}), 0))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestTransformsRequireArguments(t *testing.T) {
	mustPanicContains(t, "Map requires", func() {
		Map[int, int](nil, func(context.Context, int) (int, error) { return 0, nil })
	})
	mustPanicContains(t, "Filter requires", func() { Filter(Empty[int](), nil) })
}
