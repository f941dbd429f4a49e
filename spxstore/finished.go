package spxstore

import (
	"sync"

	"github.com/spxlog/spx-go/spxbase"

	"github.com/google/uuid"
)

var _ spxbase.FinishedStore = &Finished{}

// DefaultFinishedCapacity bounds a Finished store built without
// WithCapacity.
const DefaultFinishedCapacity = 128

// Finished keeps the most recently ended sampled spans in a bounded
// buffer.  Record stores a copy, so the snapshots held here cannot be
// disturbed by other consumers of the same span.
type Finished struct {
	lock     sync.Mutex
	id       string
	capacity int
	onRecord func(*spxbase.SpanData)
	dropped  int64

	// Buffer holds the retained snapshots, oldest first.  Hold the
	// lock (see WithLock) while using it directly.
	Buffer []*spxbase.SpanData
}

type FinishedOpt func(*Finished)

// WithCapacity bounds how many snapshots the store retains.  When the
// buffer is full, recording a new snapshot drops the oldest.
func WithCapacity(n int) FinishedOpt {
	return func(f *Finished) {
		if n > 0 {
			f.capacity = n
		}
	}
}

// WithOnRecord calls fn after every Record, outside the store lock,
// with the snapshot that was recorded.
func WithOnRecord(fn func(*spxbase.SpanData)) FinishedOpt {
	return func(f *Finished) {
		f.onRecord = fn
	}
}

// NewFinished returns a finished-span store.
func NewFinished(opts ...FinishedOpt) *Finished {
	f := &Finished{
		id:       "spxstore-finished-" + uuid.New().String(),
		capacity: DefaultFinishedCapacity,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// ID identifies this store instance.
func (f *Finished) ID() string { return f.id }

// Record stores a copy of sd, evicting the oldest retained snapshot
// when the buffer is at capacity.
func (f *Finished) Record(sd *spxbase.SpanData) {
	kept := sd.Copy()
	f.lock.Lock()
	if len(f.Buffer) >= f.capacity {
		copy(f.Buffer, f.Buffer[1:])
		f.Buffer[len(f.Buffer)-1] = kept
		f.dropped++
	} else {
		f.Buffer = append(f.Buffer, kept)
	}
	f.lock.Unlock()
	if f.onRecord != nil {
		f.onRecord(sd)
	}
}

// Spans returns copies of the retained snapshots, oldest first.
func (f *Finished) Spans() []*spxbase.SpanData {
	f.lock.Lock()
	defer f.lock.Unlock()
	out := make([]*spxbase.SpanData, len(f.Buffer))
	for i, sd := range f.Buffer {
		out[i] = sd.Copy()
	}
	return out
}

// TakeSpans returns the retained snapshots and empties the buffer.
// The returned snapshots are no longer referenced by the store.
func (f *Finished) TakeSpans() []*spxbase.SpanData {
	f.lock.Lock()
	defer f.lock.Unlock()
	out := f.Buffer
	f.Buffer = nil
	return out
}

// Len returns the number of retained snapshots.
func (f *Finished) Len() int {
	f.lock.Lock()
	defer f.lock.Unlock()
	return len(f.Buffer)
}

// Dropped returns how many snapshots have been evicted to stay within
// capacity.
func (f *Finished) Dropped() int64 {
	f.lock.Lock()
	defer f.lock.Unlock()
	return f.dropped
}

// WithLock runs fn with the store locked, for multi-step
// introspection.
func (f *Finished) WithLock(fn func(*Finished) error) error {
	f.lock.Lock()
	defer f.lock.Unlock()
	return fn(f)
}
