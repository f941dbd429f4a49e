package spxotel

import (
	"sort"

	"github.com/spxlog/spx-go/spxat"
	"github.com/spxlog/spx-go/spxbase"
	"github.com/spxlog/spx-go/spxnum"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/sdk/instrumentation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	oteltrace "go.opentelemetry.io/otel/trace"
)

// Attribute keys used on converted message events and links.
const (
	messageIDKey               = attribute.Key("message.id")
	messageUncompressedSizeKey = attribute.Key("message.size.uncompressed")
	messageCompressedSizeKey   = attribute.Key("message.size.compressed")
	linkTypeKey                = attribute.Key("link.type")
)

// Convert turns one snapshot into an OTEL ReadOnlySpan.  Ids carry
// over byte for byte; annotations and message events both become
// events, in time order.
func Convert(sd *spxbase.SpanData) sdktrace.ReadOnlySpan {
	return stubFromSpanData(sd, nil).Snapshot()
}

// BatchConvert converts a batch, preserving order.
func BatchConvert(sds []*spxbase.SpanData) []sdktrace.ReadOnlySpan {
	out := make([]sdktrace.ReadOnlySpan, len(sds))
	for i, sd := range sds {
		out[i] = Convert(sd)
	}
	return out
}

func stubFromSpanData(sd *spxbase.SpanData, res *resource.Resource) tracetest.SpanStub {
	sc := sd.SpanContext
	flags := oteltrace.TraceFlags(byte(sc.TraceOptions()))
	state, _ := oteltrace.ParseTraceState(sc.Tracestate().String())
	otelSC := oteltrace.NewSpanContext(oteltrace.SpanContextConfig{
		TraceID:    oteltrace.TraceID(sc.TraceID().Array()),
		SpanID:     oteltrace.SpanID(sc.SpanID().Array()),
		TraceFlags: flags,
		TraceState: state,
	})
	var parent oteltrace.SpanContext
	if !sd.ParentSpanID.IsZero() {
		// The parent's own sampling flags are not recorded; a
		// recording child implies the parent's flags matched.
		parent = oteltrace.NewSpanContext(oteltrace.SpanContextConfig{
			TraceID:    oteltrace.TraceID(sc.TraceID().Array()),
			SpanID:     oteltrace.SpanID(sd.ParentSpanID.Array()),
			TraceFlags: flags,
			Remote:     sd.HasRemoteParent,
		})
	}

	events := make([]sdktrace.Event, 0, len(sd.Annotations)+len(sd.MessageEvents))
	for _, ann := range sd.Annotations {
		events = append(events, sdktrace.Event{
			Name:                  ann.Description,
			Attributes:            convertAttributeList(ann.Attributes),
			DroppedAttributeCount: int(ann.DroppedAttributeCount),
			Time:                  ann.Time,
		})
	}
	for _, me := range sd.MessageEvents {
		name := "message send"
		if me.Type == spxnum.MessageEventTypeReceived {
			name = "message receive"
		}
		events = append(events, sdktrace.Event{
			Name: name,
			Attributes: []attribute.KeyValue{
				messageIDKey.Int64(me.MessageID),
				messageUncompressedSizeKey.Int64(me.UncompressedByteSize),
				messageCompressedSizeKey.Int64(me.CompressedByteSize),
			},
			Time: me.Time,
		})
	}
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Time.Before(events[j].Time)
	})

	links := make([]sdktrace.Link, 0, len(sd.Links))
	for _, l := range sd.Links {
		attrs := convertAttributeList(l.Attributes)
		attrs = append(attrs, linkTypeKey.String(l.Type.String()))
		links = append(links, sdktrace.Link{
			SpanContext: oteltrace.NewSpanContext(oteltrace.SpanContextConfig{
				TraceID: oteltrace.TraceID(l.TraceID.Array()),
				SpanID:  oteltrace.SpanID(l.SpanID.Array()),
			}),
			Attributes:            attrs,
			DroppedAttributeCount: int(l.DroppedAttributeCount),
		})
	}

	return tracetest.SpanStub{
		Name:                   sd.Name,
		SpanContext:            otelSC,
		Parent:                 parent,
		SpanKind:               convertKind(sd.Kind),
		StartTime:              sd.StartTime,
		EndTime:                sd.EndTime,
		Attributes:             convertAttributeMap(sd.Attributes),
		Events:                 events,
		Links:                  links,
		Status:                 convertStatus(sd.Status),
		DroppedAttributes:      int(sd.DroppedAttributeCount),
		DroppedEvents:          int(sd.DroppedAnnotationCount + sd.DroppedMessageEventCount),
		DroppedLinks:           int(sd.DroppedLinkCount),
		ChildSpanCount:         int(sd.ChildSpanCount),
		Resource:               res,
		InstrumentationLibrary: convertLibrary(sd.Source),
	}
}

// convertAttributeMap sorts by key so converted output is stable.
func convertAttributeMap(m map[string]spxat.Value) []attribute.KeyValue {
	if len(m) == 0 {
		return nil
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]attribute.KeyValue, 0, len(m))
	for _, k := range keys {
		out = append(out, convertValue(k, m[k]))
	}
	return out
}

func convertAttributeList(attrs []spxat.Attribute) []attribute.KeyValue {
	if len(attrs) == 0 {
		return nil
	}
	out := make([]attribute.KeyValue, len(attrs))
	for i, a := range attrs {
		out[i] = convertValue(a.Key, a.Value)
	}
	return out
}

func convertValue(key string, v spxat.Value) attribute.KeyValue {
	switch v.Kind() {
	case spxat.KindBool:
		return attribute.Bool(key, v.AsBool())
	case spxat.KindInt64:
		return attribute.Int64(key, v.AsInt64())
	case spxat.KindFloat64:
		return attribute.Float64(key, v.AsFloat64())
	default:
		return attribute.String(key, v.AsString())
	}
}

func convertStatus(s spxbase.Status) sdktrace.Status {
	if s.IsOK() {
		return sdktrace.Status{Code: codes.Ok}
	}
	return sdktrace.Status{Code: codes.Error, Description: s.String()}
}

func convertKind(k spxnum.SpanKind) oteltrace.SpanKind {
	switch k {
	case spxnum.SpanKindServer:
		return oteltrace.SpanKindServer
	case spxnum.SpanKindClient:
		return oteltrace.SpanKindClient
	}
	return oteltrace.SpanKindInternal
}

func convertLibrary(si spxbase.SourceInfo) instrumentation.Library {
	lib := instrumentation.Library{Name: si.Source}
	if si.SourceVersion != nil {
		lib.Version = si.SourceVersion.String()
	}
	return lib
}
