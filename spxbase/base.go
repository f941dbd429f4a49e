// Package spxbase defines the boundary between the span engine and
// the things that consume spans: the finished-span snapshot types and
// the narrow interfaces granted to registries, stores, and exporters.
// Nothing here mutates a span; the engine pushes data out through
// these types at well-defined points.
package spxbase

import (
	"github.com/spxlog/spx-go/spxtrace"
)

// Exporter receives the snapshot of each sampled span exactly once,
// just after the span ends.  Calls may come from any goroutine but
// never hold the span's internal lock, so an exporter may block
// without stalling other operations on the same span.  The exporter
// may retain the pointer for reading; anything that republishes the
// snapshot should hand out copies.
type Exporter interface {
	ExportSpan(*SpanData)
}

// LiveSpan is the view of a recording span granted to registries and
// test harnesses.  Holders can identify the span and snapshot its
// current state, nothing more.
type LiveSpan interface {
	SpanContext() spxtrace.SpanContext
	Name() string

	// Snapshot is legal on a span that has not ended; the returned
	// data has a zero EndTime in that case.  Each call allocates a
	// fresh SpanData.
	Snapshot() *SpanData
}

// RunningStore indexes spans that are recording and not yet ended.
// Register is called once when a recording span is created and
// Unregister once when it ends.  Both may be called from any
// goroutine.  Implementations must tolerate Unregister for a span
// they never saw.
type RunningStore interface {
	Register(LiveSpan)
	Unregister(LiveSpan)
}

// FinishedStore retains recently-ended sampled spans for local
// inspection.  Record is called at most once per span, after the span
// has ended, with the same snapshot the exporters receive.
type FinishedStore interface {
	Record(*SpanData)
}
