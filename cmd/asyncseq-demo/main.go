// Command asyncseq-demo runs one combinator over two synthetic tickers and
// prints what comes out.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/samber/lo"
	"github.com/spf13/pflag"

	"github.com/baxromumarov/asyncseq"
)

type options struct {
	op       string
	count    int
	interval time.Duration
	quiet    time.Duration
	timeout  time.Duration
	capacity int
	policy   string
	logLevel string
}

var ops = []string{"merge", "zip", "combine-latest", "debounce", "timeout", "buffer"}

func parseFlags(args []string) (options, error) {
	var o options
	fs := pflag.NewFlagSet("asyncseq-demo", pflag.ContinueOnError)
	fs.StringVar(&o.op, "op", "merge", fmt.Sprintf("combinator to run, one of %v", ops))
	fs.IntVar(&o.count, "count", 5, "elements produced by each ticker")
	fs.DurationVar(&o.interval, "interval", 20*time.Millisecond, "delay between elements of the fast ticker")
	fs.DurationVar(&o.quiet, "quiet", 50*time.Millisecond, "quiet period for debounce")
	fs.DurationVar(&o.timeout, "timeout", 30*time.Millisecond, "per-element deadline for timeout")
	fs.IntVar(&o.capacity, "capacity", 2, "buffer capacity for bounded policies")
	fs.StringVar(&o.policy, "policy", "keep-newest", "buffer policy: unbounded, keep-oldest or keep-newest")
	fs.StringVar(&o.logLevel, "log-level", "info", "log level (debug shows combinator internals)")

	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	if !lo.Contains(ops, o.op) {
		return options{}, fmt.Errorf("unknown op %q", o.op)
	}
	if o.count < 0 {
		return options{}, errors.New("count must not be negative")
	}
	return o, nil
}

func bufferPolicy(name string, capacity int) (asyncseq.BufferPolicy, error) {
	if name != "unbounded" && capacity <= 0 {
		return asyncseq.BufferPolicy{}, fmt.Errorf("policy %s needs a positive capacity", name)
	}
	switch name {
	case "unbounded":
		return asyncseq.Unbounded(), nil
	case "keep-oldest":
		return asyncseq.KeepOldest(capacity), nil
	case "keep-newest":
		return asyncseq.KeepNewest(capacity), nil
	default:
		return asyncseq.BufferPolicy{}, fmt.Errorf("unknown buffer policy %q", name)
	}
}

// ticker yields base, base+1, ... count times, waiting interval before
// each pull.
func ticker(base, count int, interval time.Duration) asyncseq.Producer[int] {
	values := lo.Map(lo.Range(count), func(v, _ int) int { return base + v })
	return asyncseq.DelayRequests(asyncseq.FromSlice(values), interval)
}

func collect[T any](ctx context.Context, p asyncseq.Producer[T], format func(T) string) ([]string, error) {
	items, err := asyncseq.Collect(ctx, p)
	return lo.Map(items, func(v T, _ int) string { return format(v) }), err
}

func formatPair(p asyncseq.Pair[int, int]) string {
	return fmt.Sprintf("%d %d", p.First, p.Second)
}

func run(ctx context.Context, o options, log zerolog.Logger, w io.Writer) error {
	opts := []asyncseq.Option{asyncseq.WithLogger(log)}
	fast := ticker(0, o.count, o.interval)
	slow := ticker(100, o.count, o.interval*3/2)

	var (
		lines []string
		err   error
	)
	switch o.op {
	case "merge":
		lines, err = collect(ctx, asyncseq.Merge(fast, slow, opts...), strconv.Itoa)
	case "zip":
		lines, err = collect(ctx, asyncseq.Zip(fast, slow, opts...), formatPair)
	case "combine-latest":
		lines, err = collect(ctx, asyncseq.CombineLatest(fast, slow, opts...), formatPair)
	case "debounce":
		lines, err = collect(ctx, asyncseq.Debounce(fast, o.quiet, opts...), strconv.Itoa)
	case "timeout":
		lines, err = collect(ctx, asyncseq.Timeout(slow, o.timeout, opts...), strconv.Itoa)
	case "buffer":
		policy, perr := bufferPolicy(o.policy, o.capacity)
		if perr != nil {
			return perr
		}
		opts = append(opts, asyncseq.WithPrefetch())
		lines, err = collect(ctx, asyncseq.Buffer(fast, policy, opts...), strconv.Itoa)
	default:
		return fmt.Errorf("unknown op %q", o.op)
	}

	for _, line := range lines {
		fmt.Fprintln(w, line)
	}
	log.Info().Str("op", o.op).Int("emitted", len(lines)).Msg("done")
	return err
}

func main() {
	o, err := parseFlags(os.Args[1:])
	if errors.Is(err, pflag.ErrHelp) {
		return
	}

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).With().Timestamp().Logger()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid flags")
	}
	level, err := zerolog.ParseLevel(o.logLevel)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid log level")
	}
	log = log.Level(level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, o, log, os.Stdout); err != nil {
		log.Error().Err(err).Msg("demo failed")
		stop()
		os.Exit(1)
	}
}
