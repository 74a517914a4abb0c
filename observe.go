package asyncseq

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

const instrumentationName = "github.com/baxromumarov/asyncseq"

// EventKind classifies an [Event].
type EventKind int

const (
	// EventFetch is emitted when a pull is forked onto a background goroutine.
	EventFetch EventKind = iota

	// EventRace is emitted when a race between two pulls settles.
	EventRace

	// EventQuiet is emitted when a debounce quiet period elapses.
	EventQuiet

	// EventTimeout is emitted when a timeout truncates its sequence.
	EventTimeout

	// EventEvict is emitted when a full buffer evicts its oldest element.
	EventEvict

	// EventDrop is emitted when a full buffer drops the incoming element.
	EventDrop

	// EventPumpDone is emitted when a buffer pump stops.
	EventPumpDone
)

func (k EventKind) String() string {
	switch k {
	case EventFetch:
		return "fetch"
	case EventRace:
		return "race"
	case EventQuiet:
		return "quiet"
	case EventTimeout:
		return "timeout"
	case EventEvict:
		return "evict"
	case EventDrop:
		return "drop"
	case EventPumpDone:
		return "pump-done"
	default:
		return fmt.Sprintf("EventKind(%d)", int(k))
	}
}

// Event describes a state change inside a combinator iterator.
type Event struct {
	// Op is the combinator name, e.g. "merge" or "buffer".
	Op string

	// Iterator identifies the iterator instance that emitted the event.
	Iterator string

	Kind EventKind

	// Side is "a" or "b" for binary combinators, empty otherwise.
	Side string
}

type instruments struct {
	fetches   metric.Int64Counter
	races     metric.Int64Counter
	timeouts  metric.Int64Counter
	evictions metric.Int64Counter
	drops     metric.Int64Counter
}

func newInstruments(mp metric.MeterProvider, log zerolog.Logger) instruments {
	m := mp.Meter(instrumentationName)
	return instruments{
		fetches:   counter(m, log, "asyncseq.fetches", "Pulls forked onto background goroutines"),
		races:     counter(m, log, "asyncseq.races", "Races settled between two pulls"),
		timeouts:  counter(m, log, "asyncseq.timeouts", "Sequences truncated by a timeout"),
		evictions: counter(m, log, "asyncseq.buffer.evictions", "Oldest buffered elements evicted"),
		drops:     counter(m, log, "asyncseq.buffer.drops", "Incoming elements dropped by a full buffer"),
	}
}

func counter(m metric.Meter, log zerolog.Logger, name, desc string) metric.Int64Counter {
	c, err := m.Int64Counter(name, metric.WithDescription(desc))
	if err != nil {
		log.Warn().Err(err).Str("instrument", name).Msg("falling back to no-op counter")
		return noop.Int64Counter{}
	}
	return c
}

// probe reports the lifecycle of one iterator to the logger, the meter and
// the event hook.
type probe struct {
	op      string
	id      string
	log     zerolog.Logger
	ins     instruments
	attrs   metric.MeasurementOption
	onEvent func(Event)
}

func newProbe(cfg config, op string) *probe {
	id := uuid.NewString()
	log := cfg.log.With().Str("op", op).Str("iter", id).Logger()
	return &probe{
		op:      op,
		id:      id,
		log:     log,
		ins:     newInstruments(cfg.meter, log),
		attrs:   metric.WithAttributes(attribute.String("op", op)),
		onEvent: cfg.onEvent,
	}
}

func (p *probe) emit(kind EventKind, s string) {
	if p.onEvent != nil {
		p.onEvent(Event{Op: p.op, Iterator: p.id, Kind: kind, Side: s})
	}
}

func (p *probe) fetched(s side) {
	p.ins.fetches.Add(context.Background(), 1, p.attrs)
	p.log.Debug().Stringer("side", s).Msg("fetch started")
	p.emit(EventFetch, s.String())
}

// fetchedOne is fetched for single-source combinators.
func (p *probe) fetchedOne() {
	p.ins.fetches.Add(context.Background(), 1, p.attrs)
	p.log.Debug().Msg("fetch started")
	p.emit(EventFetch, "")
}

func (p *probe) raced(winner side) {
	p.ins.races.Add(context.Background(), 1, p.attrs)
	p.log.Debug().Stringer("winner", winner).Msg("race settled")
	p.emit(EventRace, winner.String())
}

func (p *probe) quiet() {
	p.log.Debug().Msg("quiet period elapsed")
	p.emit(EventQuiet, "")
}

func (p *probe) timedOut() {
	p.ins.timeouts.Add(context.Background(), 1, p.attrs)
	p.log.Debug().Msg("timed out, truncating sequence")
	p.emit(EventTimeout, "")
}

func (p *probe) evicted() {
	p.ins.evictions.Add(context.Background(), 1, p.attrs)
	p.log.Debug().Msg("evicted oldest buffered element")
	p.emit(EventEvict, "")
}

func (p *probe) dropped() {
	p.ins.drops.Add(context.Background(), 1, p.attrs)
	p.log.Debug().Msg("dropped incoming element")
	p.emit(EventDrop, "")
}

// pumpDone reports the pump's terminal outcome and how many outcomes,
// including it, were still queued.
func (p *probe) pumpDone(kind Kind, queued int) {
	p.log.Debug().Stringer("outcome", kind).Int("queued", queued).Msg("pump finished")
	p.emit(EventPumpDone, "")
}
