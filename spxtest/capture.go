/*
Package spxtest captures spans inside tests.

	func TestSomething(t *testing.T) {
		capture := spxtest.Install(t)
		span := spx.StartSpan("under-test")
		span.AddAttribute(spxat.String("k", "v"))
		span.End()
		sd := capture.Find("under-test")
		...
	}

Install swaps fresh stores into the process configuration, makes
every span sampled, and registers the capture as an exporter; all of
it is undone when the test finishes.  Spans are logged through the
test's Log as they end so a failing test shows its trace activity.
*/
package spxtest

import (
	"fmt"
	"sync"

	"github.com/spxlog/spx-go"
	"github.com/spxlog/spx-go/spxbase"
	"github.com/spxlog/spx-go/spxstore"
	"github.com/spxlog/spx-go/spxutil"

	"github.com/google/uuid"
	"github.com/muir/list"
)

type testingT interface {
	Log(...interface{})
	Name() string
	Cleanup(func())
}

var _ spxbase.Exporter = &Capture{}

// Capture collects every sampled span that ends while it is
// installed, together with fresh running and finished stores.
type Capture struct {
	lock    sync.Mutex
	t       testingT
	id      string
	counter *spxutil.SpanCounter
	quiet   bool
	sampler spx.Sampler

	// Spans holds the captured snapshots in end order.  Hold the
	// lock (see WithLock) while using it directly.
	Spans []*spxbase.SpanData

	Running  *spxstore.Running
	Finished *spxstore.Finished
}

type Opt func(*Capture)

// WithQuiet stops the capture from logging each span as it ends.
func WithQuiet() Opt {
	return func(c *Capture) { c.quiet = true }
}

// WithDefaultSampler overrides the sampler Install applies.  The
// default is AlwaysSample so test spans are never lost to sampling.
func WithDefaultSampler(s spx.Sampler) Opt {
	return func(c *Capture) { c.sampler = s }
}

// New builds a Capture without installing it.  Use it directly as an
// exporter, or call Install instead.
func New(t testingT, opts ...Opt) *Capture {
	c := &Capture{
		t:        t,
		id:       t.Name() + "-spxtest-" + uuid.New().String(),
		counter:  spxutil.NewSpanCounter(),
		sampler:  spx.AlwaysSample(),
		Running:  spxstore.NewRunning(),
		Finished: spxstore.NewFinished(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Install wires a new Capture into the process configuration and
// registers it as an exporter.  The previous configuration comes back
// when the test finishes.
func Install(t testingT, opts ...Opt) *Capture {
	c := New(t, opts...)
	prev := spx.ActiveConfig()
	spx.ApplyConfig(spx.Config{
		DefaultSampler: c.sampler,
		RunningStore:   c.Running,
		FinishedStore:  c.Finished,
	})
	spx.RegisterExporter(c)
	t.Cleanup(func() {
		spx.UnregisterExporter(c)
		spx.ApplyConfig(prev)
		if !c.quiet {
			t.Log(fmt.Sprintf("%s captured %d span(s)", c.id, c.Count()))
		}
	})
	return c
}

// ID identifies this capture instance.
func (c *Capture) ID() string { return c.id }

// ExportSpan is a required method for spxbase.Exporter.  The capture
// stores its own copy, so later assertions cannot be disturbed by
// other exporters.
func (c *Capture) ExportSpan(sd *spxbase.SpanData) {
	kept := sd.Copy()
	traceNum, spanNum, _ := c.counter.GetNumber(sd.SpanContext)
	c.lock.Lock()
	c.Spans = append(c.Spans, kept)
	c.lock.Unlock()
	if !c.quiet {
		c.t.Log(fmt.Sprintf("T%d.%d %s ended %s", traceNum, spanNum, sd.Name, sd.SpanContext.String()))
	}
}

// Count returns how many spans have been captured.
func (c *Capture) Count() int {
	c.lock.Lock()
	defer c.lock.Unlock()
	return len(c.Spans)
}

// All returns the captured snapshots in end order.
func (c *Capture) All() []*spxbase.SpanData {
	c.lock.Lock()
	defer c.lock.Unlock()
	return list.Copy(c.Spans)
}

// Find returns the first captured span with the given name, or nil.
func (c *Capture) Find(name string) *spxbase.SpanData {
	c.lock.Lock()
	defer c.lock.Unlock()
	for _, sd := range c.Spans {
		if sd.Name == name {
			return sd
		}
	}
	return nil
}

// FindAll returns every captured span with the given name, in end
// order.
func (c *Capture) FindAll(name string) []*spxbase.SpanData {
	c.lock.Lock()
	defer c.lock.Unlock()
	var out []*spxbase.SpanData
	for _, sd := range c.Spans {
		if sd.Name == name {
			out = append(out, sd)
		}
	}
	return out
}

// Short returns the capture's compact "T<trace>.<span>" tag for a
// span, stable within one capture.
func (c *Capture) Short(sd *spxbase.SpanData) string {
	traceNum, spanNum, _ := c.counter.GetNumber(sd.SpanContext)
	return fmt.Sprintf("T%d.%d", traceNum, spanNum)
}

// WithLock runs f with the capture locked, for multi-step
// introspection.
func (c *Capture) WithLock(f func(*Capture) error) error {
	c.lock.Lock()
	defer c.lock.Unlock()
	return f(c)
}
