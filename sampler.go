package spx

import (
	"encoding/binary"

	"github.com/spxlog/spx-go/spxtrace"
)

// SamplingParameters is everything a Sampler may consider.  The
// parent context pointer is nil for a root span.
type SamplingParameters struct {
	ParentContext   *spxtrace.SpanContext
	HasRemoteParent bool
	TraceID         spxtrace.TraceID
	SpanID          spxtrace.SpanID
	Name            string
	ParentLinks     []Span
}

// Sampler decides, once per span at creation, whether the span will
// be exported.  ShouldSample must be a pure function of its
// parameters: it is never called again for the same span and must not
// mutate shared state.
type Sampler interface {
	ShouldSample(SamplingParameters) bool
}

type alwaysSampler struct{}

func (alwaysSampler) ShouldSample(SamplingParameters) bool { return true }

// AlwaysSample returns a Sampler that samples every span.  Useful in
// tests and low-traffic services; expensive everywhere else.
func AlwaysSample() Sampler { return alwaysSampler{} }

type neverSampler struct{}

func (neverSampler) ShouldSample(SamplingParameters) bool { return false }

// NeverSample returns a Sampler that samples nothing.
func NeverSample() Sampler { return neverSampler{} }

type probabilitySampler struct {
	traceIDUpperBound uint64
}

// ProbabilitySampler samples a fixed fraction of traces, decided
// deterministically from the trace id so that every span in a trace
// gets the same answer.  A span whose parent is sampled is always
// sampled.  Fractions outside [0, 1] are clamped.
func ProbabilitySampler(fraction float64) Sampler {
	if fraction >= 1 {
		return AlwaysSample()
	}
	if fraction <= 0 {
		fraction = 0
	}
	return probabilitySampler{
		traceIDUpperBound: uint64(fraction * (1 << 63)),
	}
}

func (s probabilitySampler) ShouldSample(p SamplingParameters) bool {
	if p.ParentContext != nil && p.ParentContext.IsSampled() {
		return true
	}
	x := binary.BigEndian.Uint64(p.TraceID.Bytes()[0:8]) >> 1
	return x < s.traceIDUpperBound
}

// samplingDecision applies the fixed precedence: an explicit sampler
// wins; otherwise a sampled parent (context or link) forces sampling;
// otherwise the process default sampler decides.  A missing default
// means "do not sample"; sampling never blocks span creation.
func samplingDecision(parent *spxtrace.SpanContext, hasRemoteParent bool, traceID spxtrace.TraceID, spanID spxtrace.SpanID, name string, o startOptions, defaultSampler Sampler) bool {
	sampler := o.sampler
	if sampler == nil {
		if parent != nil && parent.IsSampled() {
			return true
		}
		for _, link := range o.parentLinks {
			if link.IsSampled() {
				return true
			}
		}
		sampler = defaultSampler
		if sampler == nil {
			return false
		}
	}
	return sampler.ShouldSample(SamplingParameters{
		ParentContext:   parent,
		HasRemoteParent: hasRemoteParent,
		TraceID:         traceID,
		SpanID:          spanID,
		Name:            name,
		ParentLinks:     o.parentLinks,
	})
}
