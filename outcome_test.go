package asyncseq

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutcomeVariants(t *testing.T) {
	sentinel := errors.New("boom")

	tests := []struct {
		name    string
		out     Outcome[int]
		kind    Kind
		wantVal int
		wantErr error
	}{
		{"element", Element(7), KindElement, 7, nil},
		{"failure", Failure[int](sentinel), KindFailure, 0, sentinel},
		{"end", End[int](), KindEnd, 0, io.EOF},
		{"failure of EOF is end", Failure[int](io.EOF), KindEnd, 0, io.EOF},
		{"of value", OutcomeOf(3, nil), KindElement, 3, nil},
		{"of EOF", OutcomeOf(0, io.EOF), KindEnd, 0, io.EOF},
		{"of error", OutcomeOf(0, sentinel), KindFailure, 0, sentinel},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.kind, tt.out.Kind())
			v, err := tt.out.Get()
			assert.Equal(t, tt.wantVal, v)
			assert.Equal(t, tt.wantErr, err)
			assert.Equal(t, tt.wantErr, tt.out.Err())
		})
	}
}

func TestFailureNilPanics(t *testing.T) {
	mustPanicContains(t, "non-nil error", func() {
		Failure[int](nil)
	})
}

func TestOutcomeString(t *testing.T) {
	assert.Equal(t, "element(1)", Element(1).String())
	assert.Equal(t, "failure(x)", Failure[int](errors.New("x")).String())
	assert.Equal(t, "end", End[int]().String())
	assert.Equal(t, "failure", KindFailure.String())
}

func TestPull(t *testing.T) {
	it := FromSlice([]int{1}).Iterator(context.Background())
	defer it.Close()

	require.Equal(t, Element(1), Pull(context.Background(), it))
	require.True(t, Pull(context.Background(), it).IsEnd())
}
