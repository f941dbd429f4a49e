package spxprop

import (
	"encoding/hex"
	"strings"

	"github.com/pkg/errors"
	"github.com/spxlog/spx-go/spxtrace"
)

// Header names for the W3C trace-context pair.
// https://www.w3.org/TR/trace-context/
const (
	HeaderTraceParent = "traceparent"
	HeaderTracestate  = "tracestate"
)

// TraceParentHeader renders a "traceparent" value.
// Example: 00-0af7651916cd43dd8448eb211c80319c-b7ad6b7169203331-01
func TraceParentHeader(sc spxtrace.SpanContext) string {
	return sc.String()
}

// ParseTraceParent reads a "traceparent" value back into a SpanContext.
// Version 00 must have exactly four fields; later versions may append
// fields we do not understand.  Version ff and all-zero ids are
// rejected.
func ParseTraceParent(h string) (spxtrace.SpanContext, error) {
	var zero spxtrace.SpanContext
	splits := strings.SplitN(strings.TrimSpace(h), "-", 5)
	if len(splits) < 4 {
		return zero, errors.Errorf("traceparent has %d fields, needs 4", len(splits))
	}
	version, err := hex.DecodeString(splits[0])
	if err != nil || len(version) != 1 {
		return zero, errors.Errorf("traceparent version %q is not a hex byte", splits[0])
	}
	if version[0] == 0xff {
		return zero, errors.New("traceparent version ff is forbidden")
	}
	if version[0] == 0 && len(splits) != 4 {
		return zero, errors.Errorf("traceparent version 00 has %d fields, needs 4", len(splits))
	}
	traceID, err := spxtrace.TraceIDFromHex(splits[1])
	if err != nil {
		return zero, errors.Wrap(err, "traceparent trace id")
	}
	if traceID.IsZero() {
		return zero, errors.New("traceparent trace id is all zeros")
	}
	spanID, err := spxtrace.SpanIDFromHex(splits[2])
	if err != nil {
		return zero, errors.Wrap(err, "traceparent span id")
	}
	if spanID.IsZero() {
		return zero, errors.New("traceparent span id is all zeros")
	}
	flags, err := hex.DecodeString(splits[3])
	if err != nil || len(flags) != 1 {
		return zero, errors.Errorf("traceparent flags %q are not a hex byte", splits[3])
	}
	return spxtrace.NewSpanContext(traceID, spanID, spxtrace.TraceOptions(flags[0])), nil
}

// TracestateHeader renders the "tracestate" value carried by sc.
// Empty when sc carries none.
func TracestateHeader(sc spxtrace.SpanContext) string {
	return sc.Tracestate().String()
}

// ParseTracestate validates a "tracestate" value.
func ParseTracestate(h string) (spxtrace.Tracestate, error) {
	return spxtrace.ParseTracestate(h)
}

// Inject writes the W3C header pair through set.  Invalid contexts
// write nothing.
func Inject(sc spxtrace.SpanContext, set func(key, value string)) {
	if !sc.IsValid() {
		return
	}
	set(HeaderTraceParent, TraceParentHeader(sc))
	if ts := sc.Tracestate(); !ts.IsZero() {
		set(HeaderTracestate, ts.String())
	}
}

// Extract reads a remote context through get, trying the W3C pair
// first and falling back to B3.  A malformed tracestate is dropped
// rather than invalidating the traceparent it rode in with.
func Extract(get func(key string) string) (spxtrace.SpanContext, bool) {
	if h := get(HeaderTraceParent); h != "" {
		sc, err := ParseTraceParent(h)
		if err == nil {
			if ts, tsErr := spxtrace.ParseTracestate(get(HeaderTracestate)); tsErr == nil && !ts.IsZero() {
				sc = spxtrace.NewSpanContextWithTracestate(sc.TraceID(), sc.SpanID(), sc.TraceOptions(), ts)
			}
			return sc, true
		}
	}
	return ExtractB3(get)
}
