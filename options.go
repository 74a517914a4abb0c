package asyncseq

import (
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

type config struct {
	log      zerolog.Logger
	clock    clockwork.Clock
	meter    metric.MeterProvider
	onEvent  func(Event)
	prefetch bool
}

// Option configures a combinator.
type Option func(*config)

func defaultConfig() config {
	return config{
		log:   zerolog.Nop(),
		clock: clockwork.NewRealClock(),
		meter: noop.NewMeterProvider(),
	}
}

func buildConfig(opts []Option) config {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// WithLogger sets the logger that receives debug-level lifecycle events
// (fetches, race winners, timer expiry, evictions). The default discards
// everything.
func WithLogger(l zerolog.Logger) Option {
	return func(c *config) {
		c.log = l
	}
}

// WithClock sets the clock used by time-bounded combinators ([Debounce],
// [Timeout], [Delay]). It panics if clk is nil.
func WithClock(clk clockwork.Clock) Option {
	return func(c *config) {
		if clk == nil {
			panic("asyncseq: WithClock requires a non-nil clock")
		}
		c.clock = clk
	}
}

// WithMeterProvider sets the OpenTelemetry meter provider used to count
// fetches, races, timeouts and buffer evictions. The default is a no-op
// provider.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(c *config) {
		if mp == nil {
			panic("asyncseq: WithMeterProvider requires a non-nil provider")
		}
		c.meter = mp
	}
}

// WithOnEvent registers a hook invoked for every [Event]. The hook runs on
// whichever goroutine produced the event and must not block.
func WithOnEvent(fn func(Event)) Option {
	return func(c *config) {
		c.onEvent = fn
	}
}

// WithPrefetch makes [Buffer] start its pump as soon as the iterator is
// created instead of on the first pull. Other combinators ignore it.
func WithPrefetch() Option {
	return func(c *config) {
		c.prefetch = true
	}
}
