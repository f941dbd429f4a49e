/*
Package spx records spans: timed operations annotated with
attributes, annotations, message events, and links, stitched into
distributed traces by propagated span contexts.

Starting and ending a span:

	span := spx.StartSpan("fetch-user")
	defer span.End()
	span.AddAttribute(spxat.String("user.id", id))

A span handle is a small value and is always safe to use: when the
span is not being recorded every mutator is a no-op.  Whether a span
records is decided once, at creation, by the sampling precedence
described at StartSpan and WithSampler.

Spans cross process boundaries as spxtrace.SpanContext values.  Use
spxprop to write a context into HTTP headers and read it back, and
StartSpanWithRemoteParent to continue a remote trace locally.

When a sampled span ends, its snapshot is delivered to the configured
finished store and to every registered exporter.  spxstore holds the
in-process stores, spxtest captures spans inside tests, and spxotel
bridges snapshots into OpenTelemetry exporters.
*/
package spx

// Version is the version of spx-go in use.
const Version = "0.3.0"
