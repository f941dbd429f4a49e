package spxprop

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/spxlog/spx-go/spxtrace"
)

// B3 header names.
// https://github.com/openzipkin/b3-propagation
const (
	HeaderB3TraceID = "X-B3-TraceId"
	HeaderB3SpanID  = "X-B3-SpanId"
	HeaderB3Sampled = "X-B3-Sampled"
	HeaderB3Single  = "b3"
)

// InjectB3 writes the multi-header B3 form through set.  Invalid
// contexts write nothing.
func InjectB3(sc spxtrace.SpanContext, set func(key, value string)) {
	if !sc.IsValid() {
		return
	}
	set(HeaderB3TraceID, sc.TraceID().String())
	set(HeaderB3SpanID, sc.SpanID().String())
	if sc.IsSampled() {
		set(HeaderB3Sampled, "1")
	} else {
		set(HeaderB3Sampled, "0")
	}
}

// ExtractB3 reads a remote context through get, preferring the single
// "b3" header over the multi-header form.
func ExtractB3(get func(key string) string) (spxtrace.SpanContext, bool) {
	var zero spxtrace.SpanContext
	if h := get(HeaderB3Single); h != "" {
		sc, err := ParseB3Single(h)
		if err != nil {
			return zero, false
		}
		return sc, true
	}
	traceID, err := b3TraceID(get(HeaderB3TraceID))
	if err != nil {
		return zero, false
	}
	spanID, err := spxtrace.SpanIDFromHex(get(HeaderB3SpanID))
	if err != nil || spanID.IsZero() {
		return zero, false
	}
	var options spxtrace.TraceOptions
	options = options.WithSampled(b3Sampled(get(HeaderB3Sampled)))
	return spxtrace.NewSpanContext(traceID, spanID, options), true
}

// B3SingleHeader renders the single-header form:
// {TraceId}-{SpanId}-{SamplingState}
func B3SingleHeader(sc spxtrace.SpanContext) string {
	if !sc.IsValid() {
		return ""
	}
	sampled := "0"
	if sc.IsSampled() {
		sampled = "1"
	}
	return sc.TraceID().String() + "-" + sc.SpanID().String() + "-" + sampled
}

// ParseB3Single reads the single-header form.  A bare sampling decision
// ("0", "1", "d") names no span and is an error here.
func ParseB3Single(h string) (spxtrace.SpanContext, error) {
	var zero spxtrace.SpanContext
	h = strings.TrimSpace(h)
	switch h {
	case "0", "1", "d":
		return zero, errors.Errorf("b3 header %q carries no ids", h)
	}
	splits := strings.SplitN(h, "-", 5)
	if len(splits) < 2 || len(splits) > 4 {
		return zero, errors.Errorf("b3 header has %d fields, needs 2 to 4", len(splits))
	}
	traceID, err := b3TraceID(splits[0])
	if err != nil {
		return zero, errors.Wrap(err, "b3 trace id")
	}
	spanID, err := spxtrace.SpanIDFromHex(splits[1])
	if err != nil {
		return zero, errors.Wrap(err, "b3 span id")
	}
	if spanID.IsZero() {
		return zero, errors.New("b3 span id is all zeros")
	}
	var options spxtrace.TraceOptions
	if len(splits) >= 3 {
		options = options.WithSampled(splits[2] == "1" || splits[2] == "d")
	}
	// splits[3], the caller's parent span id, has no home in a
	// SpanContext and is dropped.
	return spxtrace.NewSpanContext(traceID, spanID, options), nil
}

// b3TraceID accepts both the 128-bit and the legacy 64-bit forms; the
// short form is left-padded with zeros.
func b3TraceID(h string) (spxtrace.TraceID, error) {
	var zero spxtrace.TraceID
	switch len(h) {
	case 32:
	case 16:
		h = strings.Repeat("0", 16) + h
	default:
		return zero, errors.Errorf("b3 trace id must be 16 or 32 hex characters, got %d", len(h))
	}
	traceID, err := spxtrace.TraceIDFromHex(h)
	if err != nil {
		return zero, err
	}
	if traceID.IsZero() {
		return zero, errors.New("b3 trace id is all zeros")
	}
	return traceID, nil
}

func b3Sampled(h string) bool {
	switch strings.ToLower(strings.TrimSpace(h)) {
	case "1", "true", "d":
		return true
	}
	return false
}
