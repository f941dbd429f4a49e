/*
Package spxstore provides the in-process span stores.  Running tracks
every recording span between creation and End; Finished keeps a
bounded buffer of ended, sampled spans.  Both are the default stores
wired into the process configuration; tests and debug handlers can
install their own with spx.ApplyConfig.
*/
package spxstore

import (
	"sort"
	"sync"
	"sync/atomic"

	"github.com/spxlog/spx-go/internal/util/generic"
	"github.com/spxlog/spx-go/spxbase"
	"github.com/spxlog/spx-go/spxtrace"
	"github.com/spxlog/spx-go/spxutil"

	"github.com/google/uuid"
)

var _ spxbase.RunningStore = &Running{}

// Running indexes the spans that are currently recording.
type Running struct {
	lock sync.Mutex
	id   string
	peak int64

	// SpanIndex maps span ids to live spans.  Hold the lock (see
	// WithLock) while using it directly.
	SpanIndex map[[8]byte]spxbase.LiveSpan
}

// NewRunning returns an empty running-span store.
func NewRunning() *Running {
	return &Running{
		id:        "spxstore-running-" + uuid.New().String(),
		SpanIndex: make(map[[8]byte]spxbase.LiveSpan),
	}
}

// ID identifies this store instance.
func (r *Running) ID() string { return r.id }

// Register adds a live span.  The engine calls it once per recording
// span, at creation.
func (r *Running) Register(s spxbase.LiveSpan) {
	key := s.SpanContext().SpanID().Array()
	r.lock.Lock()
	r.SpanIndex[key] = s
	count := int64(len(r.SpanIndex))
	r.lock.Unlock()
	spxutil.AtomicMaxInt64(&r.peak, count)
}

// Unregister drops a span.  Spans this store never saw are ignored so
// that a store can be swapped in while spans are in flight.
func (r *Running) Unregister(s spxbase.LiveSpan) {
	key := s.SpanContext().SpanID().Array()
	r.lock.Lock()
	defer r.lock.Unlock()
	delete(r.SpanIndex, key)
}

// Count returns the number of live spans.
func (r *Running) Count() int {
	r.lock.Lock()
	defer r.lock.Unlock()
	return len(r.SpanIndex)
}

// Peak returns the largest number of simultaneously live spans seen
// over the store's lifetime.
func (r *Running) Peak() int64 { return atomic.LoadInt64(&r.peak) }

// Get returns the live span with the given id, or nil.
func (r *Running) Get(id spxtrace.SpanID) spxbase.LiveSpan {
	r.lock.Lock()
	defer r.lock.Unlock()
	return r.SpanIndex[id.Array()]
}

// SpanIDs returns the ids of the live spans in arbitrary order.
func (r *Running) SpanIDs() []spxtrace.SpanID {
	r.lock.Lock()
	keys := generic.Keys(r.SpanIndex)
	r.lock.Unlock()
	ids := make([]spxtrace.SpanID, len(keys))
	for i, key := range keys {
		ids[i], _ = spxtrace.SpanIDFromBytes(key[:])
	}
	return ids
}

// Names returns the sorted names of the live spans.
func (r *Running) Names() []string {
	r.lock.Lock()
	names := make([]string, 0, len(r.SpanIndex))
	for _, s := range r.SpanIndex {
		names = append(names, s.Name())
	}
	r.lock.Unlock()
	sort.Strings(names)
	return names
}

// Snapshots copies the current state of up to max live spans, in no
// particular order.  Pass 0 for all of them.
func (r *Running) Snapshots(max int) []*spxbase.SpanData {
	r.lock.Lock()
	spans := make([]spxbase.LiveSpan, 0, len(r.SpanIndex))
	for _, s := range r.SpanIndex {
		spans = append(spans, s)
		if max > 0 && len(spans) >= max {
			break
		}
	}
	r.lock.Unlock()
	out := make([]*spxbase.SpanData, len(spans))
	for i, s := range spans {
		out[i] = s.Snapshot()
	}
	return out
}

// WithLock runs f with the store locked, for multi-step
// introspection.
func (r *Running) WithLock(f func(*Running) error) error {
	r.lock.Lock()
	defer r.lock.Unlock()
	return f(r)
}
