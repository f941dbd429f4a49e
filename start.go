package spx

import (
	"github.com/spxlog/spx-go/spxnum"
	"github.com/spxlog/spx-go/spxtrace"
)

type startOptions struct {
	parent       Span
	hasParent    bool
	sampler      Sampler
	recordEvents bool
	parentLinks  []Span
	kind         spxnum.SpanKind
}

// StartOption adjusts how StartSpan and StartSpanWithRemoteParent
// create a span.
type StartOption func(*startOptions)

// WithParent makes the new span a child of parent: same trace id,
// parent's span id recorded as the parent, and the parent's sampling
// decision inherited unless a sampler overrides it.  A blank or
// invalid parent is ignored and the span roots a new trace.
func WithParent(parent Span) StartOption {
	return func(o *startOptions) {
		o.parent = parent
		o.hasParent = parent.SpanContext().IsValid()
	}
}

// WithSpanKind marks the span as a server or client span.
func WithSpanKind(kind spxnum.SpanKind) StartOption {
	return func(o *startOptions) { o.kind = kind }
}

// WithSampler makes sampler decide for this one span, overriding both
// the parent's sampled bit and the process default sampler.
func WithSampler(sampler Sampler) StartOption {
	return func(o *startOptions) { o.sampler = sampler }
}

// WithRecordEvents makes the span record attributes, annotations,
// events, and links even when it is not sampled.  The recorded data
// stays in process: an unsampled span is never handed to the
// finished store or the exporters.
func WithRecordEvents(record bool) StartOption {
	return func(o *startOptions) { o.recordEvents = record }
}

// WithParentLinks attaches parent links at creation time.  The links
// are passed to the sampler, and a sampled link forces the span to be
// sampled unless WithSampler decides otherwise.
func WithParentLinks(parents ...Span) StartOption {
	return func(o *startOptions) { o.parentLinks = append(o.parentLinks, parents...) }
}

// StartSpan creates a span named name.  With no options the span
// roots a new trace and the process default sampler decides whether
// it is sampled.  The returned handle is usable immediately; call End
// to finish the span.
func StartSpan(name string, opts ...StartOption) Span {
	var o startOptions
	for _, opt := range opts {
		opt(&o)
	}
	var parent *spxtrace.SpanContext
	if o.hasParent {
		pctx := o.parent.SpanContext()
		parent = &pctx
	}
	s := startSpan(name, parent, false, o)
	if o.hasParent && o.parent.impl != nil {
		o.parent.impl.incrementChildCount()
	}
	return s
}

// StartSpanWithRemoteParent creates a span whose parent arrived from
// another process, typically parsed from request headers by spxprop.
// The remote parent replaces any WithParent option.  An invalid
// parent is ignored and the span roots a new trace.
func StartSpanWithRemoteParent(name string, parent spxtrace.SpanContext, opts ...StartOption) Span {
	var o startOptions
	for _, opt := range opts {
		opt(&o)
	}
	o.parent = Span{}
	o.hasParent = false
	var pctx *spxtrace.SpanContext
	if parent.IsValid() {
		pctx = &parent
	}
	return startSpan(name, pctx, pctx != nil, o)
}

func startSpan(name string, parent *spxtrace.SpanContext, hasRemoteParent bool, o startOptions) Span {
	cfg := loadConfig()

	var traceID spxtrace.TraceID
	var parentSpanID spxtrace.SpanID
	var options spxtrace.TraceOptions
	var tracestate spxtrace.Tracestate
	if parent != nil {
		traceID = parent.TraceID()
		parentSpanID = parent.SpanID()
		options = parent.TraceOptions()
		tracestate = parent.Tracestate()
	} else {
		traceID = spxtrace.NewTraceID()
	}
	spanID := spxtrace.NewSpanID()

	sampled := samplingDecision(parent, hasRemoteParent, traceID, spanID, name, o, cfg.DefaultSampler)
	options = options.WithSampled(sampled)

	ctx := spxtrace.NewSpanContextWithTracestate(traceID, spanID, options, tracestate)
	if !sampled && !o.recordEvents {
		return Span{ctx: ctx}
	}

	impl := newSpan(ctx, name, o, parentSpanID, hasRemoteParent, cfg)
	for _, p := range o.parentLinks {
		pctx := p.SpanContext()
		if pctx.IsValid() {
			impl.addLink(spxnum.LinkTypeParent, pctx, nil)
		}
	}
	if cfg.RunningStore != nil {
		cfg.RunningStore.Register(impl)
	}
	return Span{ctx: ctx, impl: impl}
}
