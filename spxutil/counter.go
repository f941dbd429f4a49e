package spxutil

import (
	"sync"

	"github.com/spxlog/spx-go/spxtrace"
)

// SpanCounter hands out small sequential numbers for the traces and
// spans a test or store observes, so output can say "T1.S3" instead of
// repeating 48 hex characters.  Numbers are stable: asking about the
// same span twice returns the same pair.
type SpanCounter struct {
	mu       sync.Mutex
	traceSeq int
	traces   map[[16]byte]*traceEntry
}

type traceEntry struct {
	num     int
	spanSeq int
	spans   map[[8]byte]int
}

func NewSpanCounter() *SpanCounter {
	return &SpanCounter{
		traces: make(map[[16]byte]*traceEntry),
	}
}

// GetNumber returns the 1-based trace and span numbers for the span
// context, assigning fresh ones the first time either is seen.
func (c *SpanCounter) GetNumber(sc spxtrace.SpanContext) (traceNum int, spanNum int, isNew bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	traceID := sc.TraceID().Array()
	te, ok := c.traces[traceID]
	if !ok {
		c.traceSeq++
		te = &traceEntry{
			num:   c.traceSeq,
			spans: make(map[[8]byte]int),
		}
		c.traces[traceID] = te
	}
	spanID := sc.SpanID().Array()
	num, ok := te.spans[spanID]
	if !ok {
		te.spanSeq++
		num = te.spanSeq
		te.spans[spanID] = num
	}
	return te.num, num, !ok
}
