package spx

import (
	"context"
)

type contextKeyType struct{}

var contextKey = contextKeyType{}

// IntoContext returns a context carrying the span.  Spans started
// from the returned context with StartSpanFromContext become its
// children.
func (s Span) IntoContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, contextKey, s)
}

// FromContext returns the span stored in ctx, if any.
func FromContext(ctx context.Context) (Span, bool) {
	v := ctx.Value(contextKey)
	if v == nil {
		return Span{}, false
	}
	return v.(Span), true
}

// FromContextOrBlank returns the span stored in ctx, or BlankSpan()
// when the context carries none.  Either way the result is safe to
// use.
func FromContextOrBlank(ctx context.Context) Span {
	if s, ok := FromContext(ctx); ok {
		return s
	}
	return BlankSpan()
}

// StartSpanFromContext starts a span as a child of the span in ctx,
// if there is one, and stores the new span in the returned context.
// An explicit WithParent in opts overrides the context parent.
func StartSpanFromContext(ctx context.Context, name string, opts ...StartOption) (context.Context, Span) {
	if parent, ok := FromContext(ctx); ok {
		opts = append([]StartOption{WithParent(parent)}, opts...)
	}
	s := StartSpan(name, opts...)
	return s.IntoContext(ctx), s
}
