/*
Package spxotel provides a gateway into OpenTelemetry: an Exporter
that converts each ended span into an OTEL ReadOnlySpan and forwards
it to any SDK span exporter (stdout, OTLP, an in-memory test
exporter).

OTEL represents less than the engine records in two places.
Annotations and message events both become span events, and the link
relation survives only as a "link.type" attribute because OTEL links
carry no relation of their own.
*/
package spxotel

import (
	"context"
	"sync"

	"github.com/spxlog/spx-go/spxbase"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

var _ spxbase.Exporter = &Exporter{}

type Exporter struct {
	sdk       sdktrace.SpanExporter
	res       *resource.Resource
	onError   func(error)
	batchSize int

	lock    sync.Mutex
	pending []sdktrace.ReadOnlySpan
}

type Option func(*Exporter)

// WithResourceAttributes attaches a resource built from attrs to
// every span this exporter forwards.
func WithResourceAttributes(attrs ...attribute.KeyValue) Option {
	return func(e *Exporter) {
		e.res = resource.NewWithAttributes("", attrs...)
	}
}

// WithBatchSize holds spans back until n have accumulated.  The
// default of 1 forwards every span as it ends; larger batches need a
// Flush or Shutdown to drain the tail.
func WithBatchSize(n int) Option {
	return func(e *Exporter) {
		if n > 0 {
			e.batchSize = n
		}
	}
}

// WithErrorReporter receives errors from the underlying SDK exporter,
// which otherwise have nowhere to go.
func WithErrorReporter(f func(error)) Option {
	return func(e *Exporter) {
		e.onError = f
	}
}

// New wraps an SDK span exporter.  Register the result with
// spx.RegisterExporter to start forwarding.
func New(sdk sdktrace.SpanExporter, opts ...Option) *Exporter {
	e := &Exporter{
		sdk:       sdk,
		batchSize: 1,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Exporter) ExportSpan(sd *spxbase.SpanData) {
	st := stubFromSpanData(sd, e.res)
	e.lock.Lock()
	e.pending = append(e.pending, st.Snapshot())
	var batch []sdktrace.ReadOnlySpan
	if len(e.pending) >= e.batchSize {
		batch = e.pending
		e.pending = nil
	}
	e.lock.Unlock()
	if len(batch) == 0 {
		return
	}
	if err := e.sdk.ExportSpans(context.Background(), batch); err != nil && e.onError != nil {
		e.onError(err)
	}
}

// Flush forwards any spans held back by batching.
func (e *Exporter) Flush(ctx context.Context) error {
	e.lock.Lock()
	batch := e.pending
	e.pending = nil
	e.lock.Unlock()
	if len(batch) == 0 {
		return nil
	}
	return e.sdk.ExportSpans(ctx, batch)
}

// Shutdown flushes and then shuts down the SDK exporter.
func (e *Exporter) Shutdown(ctx context.Context) error {
	if err := e.Flush(ctx); err != nil {
		return err
	}
	return e.sdk.Shutdown(ctx)
}
