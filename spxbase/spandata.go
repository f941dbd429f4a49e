package spxbase

import (
	"time"

	"github.com/spxlog/spx-go/internal/util/generic"
	"github.com/spxlog/spx-go/spxat"
	"github.com/spxlog/spx-go/spxnum"
	"github.com/spxlog/spx-go/spxtrace"

	"github.com/Masterminds/semver/v3"
	"github.com/muir/list"
)

// SpanData is the immutable record of one span, captured when the
// span ends (or, for a running span, when a registry asks for a
// snapshot; then EndTime is zero).  The dropped counts say how much
// telemetry the bounded buffers evicted or refused; the retained
// collections never exceed the TraceParams the span was created with.
type SpanData struct {
	SpanContext     spxtrace.SpanContext
	ParentSpanID    spxtrace.SpanID
	HasRemoteParent bool

	Name   string
	Kind   spxnum.SpanKind
	Source SourceInfo

	StartTime time.Time
	EndTime   time.Time

	Status Status

	Attributes            map[string]spxat.Value
	DroppedAttributeCount int32

	Annotations            []Annotation
	DroppedAnnotationCount int32

	MessageEvents            []MessageEvent
	DroppedMessageEventCount int32

	Links            []Link
	DroppedLinkCount int32

	ChildSpanCount int32
}

// Annotation is a timestamped text note with optional attributes.
type Annotation struct {
	Time                  time.Time
	Description           string
	Attributes            []spxat.Attribute
	DroppedAttributeCount int32
}

// MessageEvent records one message sent or received on the span, for
// RPC-style instrumentation.  Sizes are in bytes; CompressedByteSize
// equals UncompressedByteSize when no compression applies.
type MessageEvent struct {
	Time                 time.Time
	Type                 spxnum.MessageEventType
	MessageID            int64
	UncompressedByteSize int64
	CompressedByteSize   int64
}

// Link points at another span's context, in this trace or another
// one, with the relation fixed when the link was appended.
type Link struct {
	TraceID               spxtrace.TraceID
	SpanID                spxtrace.SpanID
	Type                  spxnum.LinkType
	Attributes            []spxat.Attribute
	DroppedAttributeCount int32
}

// Status is the span's final disposition.  The default is OK with an
// empty message.
type Status struct {
	Code    spxnum.StatusCode
	Message string
}

func (s Status) IsOK() bool { return s.Code == spxnum.StatusCodeOK }

func (s Status) String() string {
	if s.Message == "" {
		return s.Code.String()
	}
	return s.Code.String() + ": " + s.Message
}

// SourceInfo names the instrumentation source that produced a span,
// split into a name and a semver.
type SourceInfo struct {
	Source        string
	SourceVersion *semver.Version
}

func (si SourceInfo) String() string {
	if si.SourceVersion == nil {
		return si.Source
	}
	return si.Source + " v" + si.SourceVersion.String()
}

// IsEnded reports whether the snapshot was taken after End.
func (sd *SpanData) IsEnded() bool { return !sd.EndTime.IsZero() }

// Duration is EndTime minus StartTime, or zero for a running span.
func (sd *SpanData) Duration() time.Duration {
	if sd.EndTime.IsZero() {
		return 0
	}
	return sd.EndTime.Sub(sd.StartTime)
}

// Copy returns a deep copy.  Stores that republish snapshots hand out
// copies so that no caller can disturb what another caller reads.
func (sd *SpanData) Copy() *SpanData {
	if sd == nil {
		return nil
	}
	n := *sd
	n.Attributes = generic.CopyMap(sd.Attributes)
	n.Annotations = list.Copy(sd.Annotations)
	for i, ann := range n.Annotations {
		n.Annotations[i].Attributes = list.Copy(ann.Attributes)
	}
	n.MessageEvents = list.Copy(sd.MessageEvents)
	n.Links = list.Copy(sd.Links)
	for i, link := range n.Links {
		n.Links[i].Attributes = list.Copy(link.Attributes)
	}
	return &n
}

func (sd *SpanData) String() string {
	return sd.Name + " [" + sd.SpanContext.String() + "]"
}
