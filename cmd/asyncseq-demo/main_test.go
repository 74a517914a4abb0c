package main

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	o, err := parseFlags(nil)
	require.NoError(t, err)
	assert.Equal(t, "merge", o.op)
	assert.Equal(t, 5, o.count)

	o, err = parseFlags([]string{"--op", "zip", "--count", "2", "--interval", "1ms"})
	require.NoError(t, err)
	assert.Equal(t, "zip", o.op)
	assert.Equal(t, time.Millisecond, o.interval)

	_, err = parseFlags([]string{"--op", "scan"})
	assert.EqualError(t, err, `unknown op "scan"`)

	_, err = parseFlags([]string{"--count", "-1"})
	assert.Error(t, err)
}

func TestRun(t *testing.T) {
	tests := []struct {
		op   string
		want []string
	}{
		{op: "zip", want: []string{"0 100", "1 101", "2 102"}},
		{op: "buffer", want: []string{"0", "1", "2"}},
	}

	for _, tt := range tests {
		t.Run(tt.op, func(t *testing.T) {
			o, err := parseFlags([]string{"--op", tt.op, "--count", "3", "--interval", "0", "--policy", "unbounded"})
			require.NoError(t, err)

			var out bytes.Buffer
			require.NoError(t, run(context.Background(), o, zerolog.Nop(), &out))

			got := strings.Split(strings.TrimSpace(out.String()), "\n")
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("output mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestBufferPolicy(t *testing.T) {
	p, err := bufferPolicy("keep-oldest", 4)
	require.NoError(t, err)
	assert.Equal(t, "keep-oldest(4)", p.String())

	_, err = bufferPolicy("keep-newest", 0)
	assert.Error(t, err)

	_, err = bufferPolicy("lifo", 1)
	assert.EqualError(t, err, `unknown buffer policy "lifo"`)
}
