// Package spxtrace holds the identity values that flow through a trace:
// trace ids, span ids, trace options, tracestate, and the SpanContext
// that bundles them.  Everything in this package is immutable once
// constructed and safe to copy and share between goroutines.
//
// The string form of a SpanContext follows the W3C trace-context header
// layout: version "00", then trace id, span id, and flags, dash
// separated.  See https://www.w3.org/TR/trace-context/
package spxtrace

import "encoding/hex"

// TraceOptions is the flags byte carried alongside the trace id.
// Bit 0 is the sampled bit; the remaining bits are reserved.
type TraceOptions byte

// TraceOptionSampled marks a span (and its context) as chosen for
// export by the sampling decision made at creation.
const TraceOptionSampled TraceOptions = 0x01

func (o TraceOptions) IsSampled() bool { return o&TraceOptionSampled != 0 }

// WithSampled returns a copy of the options with the sampled bit set
// or cleared.
func (o TraceOptions) WithSampled(sampled bool) TraceOptions {
	if sampled {
		return o | TraceOptionSampled
	}
	return o &^ TraceOptionSampled
}

func (o TraceOptions) String() string {
	var h [2]byte
	hex.Encode(h[:], []byte{byte(o)})
	return string(h[:])
}

// SpanContext is the propagatable identity of a span: its trace id,
// span id, trace options, and tracestate.  It is a pure value: no
// mutation after construction, copies are cheap, and it remains
// meaningful after the span it identifies has ended.
//
// A SpanContext is invalid iff the trace id and the span id are both
// zero.  The zero SpanContext is the invalid one.
type SpanContext struct {
	traceID      TraceID
	spanID       SpanID
	options      TraceOptions
	tracestate   Tracestate
	headerString string
}

const zeroHeaderString = "00-00000000000000000000000000000000-0000000000000000-00"

// NewSpanContext builds a SpanContext with an empty tracestate.
func NewSpanContext(traceID TraceID, spanID SpanID, options TraceOptions) SpanContext {
	return NewSpanContextWithTracestate(traceID, spanID, options, Tracestate{})
}

// NewSpanContextWithTracestate builds a SpanContext carrying the given
// tracestate.  The tracestate rides along for propagation; it does not
// participate in validity or equality.
func NewSpanContextWithTracestate(traceID TraceID, spanID SpanID, options TraceOptions, tracestate Tracestate) SpanContext {
	sc := SpanContext{
		traceID:    traceID,
		spanID:     spanID,
		options:    options,
		tracestate: tracestate,
	}
	sc.headerString = buildHeaderString(traceID, spanID, options)
	return sc
}

func buildHeaderString(traceID TraceID, spanID SpanID, options TraceOptions) string {
	// 0         3         36       53
	// version + traceID + spanID + flags
	b := make([]byte, 0, 55)
	b = append(b, '0', '0')
	b = append(b, '-')
	b = append(b, traceID.String()...)
	b = append(b, '-')
	b = append(b, spanID.String()...)
	b = append(b, '-')
	b = append(b, options.String()...)
	return string(b)
}

func (sc SpanContext) TraceID() TraceID           { return sc.traceID }
func (sc SpanContext) SpanID() SpanID             { return sc.spanID }
func (sc SpanContext) TraceOptions() TraceOptions { return sc.options }
func (sc SpanContext) Tracestate() Tracestate     { return sc.tracestate }

// IsValid reports whether the context identifies anything at all: it
// is false only when the trace id and span id are both zero.
func (sc SpanContext) IsValid() bool {
	return !sc.traceID.IsZero() || !sc.spanID.IsZero()
}

func (sc SpanContext) IsSampled() bool { return sc.options.IsSampled() }

// Equal compares trace id, span id, and options.  Tracestate does not
// participate: two contexts naming the same span are the same span
// regardless of what vendor baggage they picked up.
func (sc SpanContext) Equal(other SpanContext) bool {
	return sc.traceID.Array() == other.traceID.Array() &&
		sc.spanID.Array() == other.spanID.Array() &&
		sc.options == other.options
}

func (sc SpanContext) IsZero() bool {
	return sc.String() == zeroHeaderString
}

func (sc SpanContext) String() string {
	if sc.headerString == "" {
		return zeroHeaderString
	}
	return sc.headerString
}
