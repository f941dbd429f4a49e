package spx

import (
	"sync"
	"time"

	"github.com/spxlog/spx-go/spxat"
	"github.com/spxlog/spx-go/spxbase"
	"github.com/spxlog/spx-go/spxnum"
	"github.com/spxlog/spx-go/spxtrace"
)

// Span is a handle on one traced operation.  The handle is a small
// value, cheap to copy and safe to share; all methods may be called
// from any goroutine.  A non-recording Span has no engine behind it
// and every mutator is a no-op, so call sites never need to guard on
// the sampling decision.
type Span struct {
	ctx  spxtrace.SpanContext
	impl *span
}

// BlankSpan returns a Span with an invalid context and no engine.
// Use it where an API requires a Span but there is nothing to trace.
func BlankSpan() Span { return Span{} }

// span is the engine behind a recording Span.  Fields above the mutex
// are fixed at creation.  Every mutator takes the lock, returns
// immediately if the span has ended, and otherwise applies its
// change, so data recorded by End can never shift afterwards.
type span struct {
	ctx             spxtrace.SpanContext
	parentSpanID    spxtrace.SpanID
	hasRemoteParent bool
	kind            spxnum.SpanKind
	source          spxbase.SourceInfo
	params          TraceParams
	runningStore    spxbase.RunningStore
	finishedStore   spxbase.FinishedStore
	startTime       time.Time

	mu             sync.Mutex
	name           string
	status         spxbase.Status
	attributes     *attributeSet
	annotations    *evictingQueue[spxbase.Annotation]
	messageEvents  *evictingQueue[spxbase.MessageEvent]
	links          *evictingQueue[spxbase.Link]
	childSpanCount int32
	endTime        time.Time
	ended          bool
}

var _ spxbase.LiveSpan = &span{}

func newSpan(ctx spxtrace.SpanContext, name string, o startOptions, parentSpanID spxtrace.SpanID, hasRemoteParent bool, cfg *activeConfig) *span {
	params := cfg.TraceParams
	return &span{
		ctx:             ctx,
		parentSpanID:    parentSpanID,
		hasRemoteParent: hasRemoteParent,
		kind:            o.kind,
		source:          cfg.sourceInfo,
		params:          params,
		runningStore:    cfg.RunningStore,
		finishedStore:   cfg.FinishedStore,
		startTime:       time.Now(),
		name:            name,
		attributes:      newAttributeSet(params.MaxAttributes),
		annotations:     newEvictingQueue[spxbase.Annotation](params.MaxAnnotations),
		messageEvents:   newEvictingQueue[spxbase.MessageEvent](params.MaxMessageEvents),
		links:           newEvictingQueue[spxbase.Link](params.MaxLinks),
	}
}

// SpanContext returns the span's immutable identity.  It remains
// available after End.
func (s Span) SpanContext() spxtrace.SpanContext { return s.ctx }

// IsSampled reports whether the sampled bit is set in the span's
// context.  A sampled span's snapshot reaches the finished store and
// the registered exporters when it ends.
func (s Span) IsSampled() bool { return s.ctx.IsSampled() }

// IsRecording reports whether the span has an engine collecting
// attributes, annotations, events, and links.  Sampled spans always
// record; unsampled spans record only when started with
// WithRecordEvents(true).
func (s Span) IsRecording() bool { return s.impl != nil }

// Name returns the span's current name, or "" for a non-recording
// span.
func (s Span) Name() string {
	if s.impl == nil {
		return ""
	}
	return s.impl.Name()
}

// SetName renames the span.  Renaming after End has no effect.
func (s Span) SetName(name string) {
	if s.impl == nil {
		return
	}
	s.impl.setName(name)
}

// AddAttribute records one key/value pair, replacing the value in
// place when the key is already present.  At capacity a new key
// evicts the oldest-inserted one.
func (s Span) AddAttribute(attr spxat.Attribute) {
	if s.impl == nil {
		return
	}
	s.impl.upsertAttributes([]spxat.Attribute{attr})
}

// AddAttributes records each attribute in order with the same
// upsert-then-evict behavior as AddAttribute.
func (s Span) AddAttributes(attrs ...spxat.Attribute) {
	if s.impl == nil || len(attrs) == 0 {
		return
	}
	s.impl.upsertAttributes(attrs)
}

// AddAnnotation records a timestamped description.  Attributes beyond
// the per-annotation cap are dropped and counted; the annotation
// itself is always appended, subject to the span's annotation
// capacity.
func (s Span) AddAnnotation(description string, attrs ...spxat.Attribute) {
	if s.impl == nil {
		return
	}
	s.impl.addAnnotation(description, attrs)
}

// AddSentMessageEvent records an outbound message.  Use the same
// messageID in the receiver's AddReceivedMessageEvent so tools can
// pair the two events.  Pass equal sizes when nothing was compressed
// and 0 when a size is unknown.
func (s Span) AddSentMessageEvent(messageID, compressedByteSize, uncompressedByteSize int64) {
	if s.impl == nil {
		return
	}
	s.impl.addMessageEvent(spxnum.MessageEventTypeSent, messageID, compressedByteSize, uncompressedByteSize)
}

// AddReceivedMessageEvent records an inbound message.  See
// AddSentMessageEvent for the meaning of the arguments.
func (s Span) AddReceivedMessageEvent(messageID, compressedByteSize, uncompressedByteSize int64) {
	if s.impl == nil {
		return
	}
	s.impl.addMessageEvent(spxnum.MessageEventTypeReceived, messageID, compressedByteSize, uncompressedByteSize)
}

// AddParentLink links a span that is a parent of this one, such as
// the span that enqueued the work this span performs.
func (s Span) AddParentLink(target spxtrace.SpanContext, attrs ...spxat.Attribute) {
	if s.impl == nil {
		return
	}
	s.impl.addLink(spxnum.LinkTypeParent, target, attrs)
}

// AddChildLink links a span that is a child of this one.
func (s Span) AddChildLink(target spxtrace.SpanContext, attrs ...spxat.Attribute) {
	if s.impl == nil {
		return
	}
	s.impl.addLink(spxnum.LinkTypeChild, target, attrs)
}

// SetStatus overwrites the span's status; the last write before End
// wins.  Codes outside the canonical range are recorded as
// StatusCodeUnknown.
func (s Span) SetStatus(code spxnum.StatusCode, message string) {
	if s.impl == nil {
		return
	}
	s.impl.setStatus(code, message)
}

// End marks the span complete, fixing its end time and turning every
// later mutator into a no-op.  The first End unregisters the span
// from the running store and, when the span is sampled, hands exactly
// one snapshot to the finished store and to each registered exporter.
// Further End calls do nothing.
func (s Span) End() {
	if s.impl == nil {
		return
	}
	s.impl.end()
}

func (s Span) String() string {
	if s.impl == nil {
		return "span " + s.ctx.String()
	}
	return "span " + s.ctx.String() + " " + s.impl.Name()
}

func (s *span) SpanContext() spxtrace.SpanContext { return s.ctx }

func (s *span) Name() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.name
}

// Snapshot copies the span's current state.  On a running span the
// snapshot's EndTime is zero.
func (s *span) Snapshot() *spxbase.SpanData {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *span) setName(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ended {
		return
	}
	s.name = name
}

func (s *span) upsertAttributes(attrs []spxat.Attribute) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ended {
		return
	}
	for _, attr := range attrs {
		s.attributes.upsert(attr)
	}
}

func (s *span) addAnnotation(description string, attrs []spxat.Attribute) {
	now := time.Now()
	kept, dropped := truncateAttributes(attrs, s.params.MaxAttributesPerAnnotation)
	ann := spxbase.Annotation{
		Time:                  now,
		Description:           description,
		Attributes:            kept,
		DroppedAttributeCount: dropped,
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ended {
		return
	}
	s.annotations.append(ann)
}

func (s *span) addMessageEvent(typ spxnum.MessageEventType, messageID, compressed, uncompressed int64) {
	event := spxbase.MessageEvent{
		Time:                 time.Now(),
		Type:                 typ,
		MessageID:            messageID,
		UncompressedByteSize: uncompressed,
		CompressedByteSize:   compressed,
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ended {
		return
	}
	s.messageEvents.append(event)
}

func (s *span) addLink(typ spxnum.LinkType, target spxtrace.SpanContext, attrs []spxat.Attribute) {
	kept, dropped := truncateAttributes(attrs, s.params.MaxAttributesPerLink)
	link := spxbase.Link{
		TraceID:               target.TraceID(),
		SpanID:                target.SpanID(),
		Type:                  typ,
		Attributes:            kept,
		DroppedAttributeCount: dropped,
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ended {
		return
	}
	s.links.append(link)
}

func (s *span) setStatus(code spxnum.StatusCode, message string) {
	if !code.Valid() {
		code = spxnum.StatusCodeUnknown
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ended {
		return
	}
	s.status = spxbase.Status{Code: code, Message: message}
}

func (s *span) incrementChildCount() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ended {
		return
	}
	s.childSpanCount++
}

// end performs the one and only hand-off.  The store and exporter
// calls happen after the lock is released; they may themselves start
// spans without deadlocking.
func (s *span) end() {
	s.mu.Lock()
	if s.ended {
		s.mu.Unlock()
		return
	}
	s.ended = true
	s.endTime = time.Now()
	sd := s.snapshotLocked()
	s.mu.Unlock()

	if s.runningStore != nil {
		s.runningStore.Unregister(s)
	}
	if !s.ctx.IsSampled() {
		return
	}
	if s.finishedStore != nil {
		s.finishedStore.Record(sd)
	}
	for e := range activeExporters() {
		e.ExportSpan(sd)
	}
}

func (s *span) snapshotLocked() *spxbase.SpanData {
	sd := &spxbase.SpanData{
		SpanContext:     s.ctx,
		ParentSpanID:    s.parentSpanID,
		HasRemoteParent: s.hasRemoteParent,
		Name:            s.name,
		Kind:            s.kind,
		Source:          s.source,
		StartTime:       s.startTime,
		EndTime:         s.endTime,
		Status:          s.status,
		ChildSpanCount:  s.childSpanCount,
	}
	sd.Attributes = s.attributes.snapshot()
	sd.DroppedAttributeCount = s.attributes.dropped
	sd.Annotations = s.annotations.snapshot()
	sd.DroppedAnnotationCount = s.annotations.dropped
	sd.MessageEvents = s.messageEvents.snapshot()
	sd.DroppedMessageEventCount = s.messageEvents.dropped
	sd.Links = s.links.snapshot()
	sd.DroppedLinkCount = s.links.dropped
	return sd
}
