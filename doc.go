// Package asyncseq composes pull-driven asynchronous producers.
//
// A [Producer] describes a sequence; each call to [Producer.Iterator] builds
// an independent [Iterator] whose [Iterator.Next] yields the next element,
// io.EOF at the end, or the failure raised by the source. Combinators take
// producers and return producers, so they compose freely:
//
//	p := asyncseq.Timeout(
//	    asyncseq.Merge(clicks, keys),
//	    5*time.Second,
//	)
//	events, err := asyncseq.Collect(ctx, p)
//
// # Racing Without Losing Work
//
// The combinators that consume two sources, or a source and a clock, fork
// each pull onto its own goroutine and race the pending pulls. The loser of
// a race is never restarted or dropped: its pull stays in flight and is
// carried into the next call to Next. At most one pull is outstanding per
// source, so no element is skipped or pulled twice.
//
// The same holds when the caller gives up: if the ctx passed to Next is
// cancelled while pulls are in flight, Next returns ctx.Err() and the next
// call picks the pending pulls up where they were.
//
// # Combinators
//
//   - [Merge]: interleaves two sources in arrival order.
//   - [CombineLatest]: emits the latest pair whenever either side produces;
//     ends when either side ends.
//   - [Zip]: pairs elements by position, pulling both sides concurrently.
//   - [Debounce]: emits an element only after a quiet period without newer
//     arrivals.
//   - [Timeout]: ends the sequence silently when the next element takes
//     longer than a duration.
//   - [Buffer]: pumps a source in the background into a queue with an
//     [Unbounded], [KeepOldest] or [KeepNewest] policy.
//
// Thin wrappers complete the set: sources ([FromSlice], [FromChan],
// [FromFunc], [Just], [Repeat], [Empty], [Fail]), transforms ([Map],
// [MapError], [CompactMap], [CompactMapError], [MapOutcome], [Filter],
// [Take], [FlatMapOutcome], [FlatMapError]), [Delay], and the PrefixUntil/DropUntil family built on [Merge].
//
// # Lifetimes
//
// The ctx given to [Producer.Iterator] bounds the background work of that
// iterator. [Iterator.Close] cancels it, waits for every forked pull and
// pump to exit, and closes upstream iterators. Always Close iterators you
// build by hand; [Collect], [ForEach] and [Count] do it for you.
//
// Iterators are single-consumer. Calling Next concurrently on one of this
// package's iterators panics.
//
// # Errors
//
// Source failures are forwarded unchanged, so [errors.Is] and [errors.As]
// work on them. Every operator is terminal after forwarding a failure,
// except [Merge], which retires the failed side and continues with the
// other. A panic inside a source pulled on a background goroutine is
// delivered as a [*PanicError].
//
// # Observability
//
// [WithLogger] takes a zerolog logger that receives debug-level lifecycle
// events, [WithMeterProvider] an OpenTelemetry meter provider for counters,
// and [WithOnEvent] a hook receiving every [Event]. [WithClock] swaps the
// clock used by the time-bounded combinators, which makes them testable
// with a fake clock.
package asyncseq
