package spx

import (
	"sync"
	"sync/atomic"

	"github.com/spxlog/spx-go/internal/util/version"
	"github.com/spxlog/spx-go/spxbase"
	"github.com/spxlog/spx-go/spxstore"
)

// TraceParams bounds how much telemetry one span retains.  Every span
// snapshots the active params when it is created; changing the
// process-wide params later never affects spans that already exist.
type TraceParams struct {
	MaxAttributes              int
	MaxAnnotations             int
	MaxMessageEvents           int
	MaxLinks                   int
	MaxAttributesPerAnnotation int
	MaxAttributesPerLink       int
}

// DefaultTraceParams returns the bounds used until ApplyConfig says
// otherwise.
func DefaultTraceParams() TraceParams {
	return TraceParams{
		MaxAttributes:              32,
		MaxAnnotations:             32,
		MaxMessageEvents:           128,
		MaxLinks:                   32,
		MaxAttributesPerAnnotation: 4,
		MaxAttributesPerLink:       32,
	}
}

// Config is the process-wide tracing state.  Zero fields in an
// ApplyConfig call mean "keep the current value", so a caller can
// adjust one knob without restating the rest.
type Config struct {
	// DefaultSampler decides sampling for spans started without an
	// explicit sampler and without a sampled parent.
	DefaultSampler Sampler

	TraceParams TraceParams

	// RunningStore is told about every recording span at creation
	// and at end.  FinishedStore receives the snapshot of every
	// sampled span after it ends.
	RunningStore  spxbase.RunningStore
	FinishedStore spxbase.FinishedStore

	// Source names the instrumentation source recorded on every
	// span, in "name v1.2.3" form.
	Source string
}

type activeConfig struct {
	Config
	sourceInfo spxbase.SourceInfo
}

const defaultSamplingProbability = 1e-4

var (
	configMu    sync.Mutex
	configValue = func() *atomic.Value {
		var v atomic.Value
		v.Store(defaultActiveConfig())
		return &v
	}()
)

func defaultActiveConfig() *activeConfig {
	cfg := &activeConfig{
		Config: Config{
			DefaultSampler: ProbabilitySampler(defaultSamplingProbability),
			TraceParams:    DefaultTraceParams(),
			RunningStore:   spxstore.NewRunning(),
			FinishedStore:  spxstore.NewFinished(),
			Source:         "spx-go v" + Version,
		},
	}
	name, ver := version.SplitVersion(cfg.Source)
	cfg.sourceInfo = spxbase.SourceInfo{Source: name, SourceVersion: ver}
	return cfg
}

// ApplyConfig merges the non-zero fields of cfg over the current
// configuration and swaps the result in atomically.  Readers always
// see one coherent configuration: everything from before the swap or
// everything after, never a mix.
func ApplyConfig(cfg Config) {
	configMu.Lock()
	defer configMu.Unlock()
	current := configValue.Load().(*activeConfig)
	next := *current
	if cfg.DefaultSampler != nil {
		next.DefaultSampler = cfg.DefaultSampler
	}
	next.TraceParams = mergeTraceParams(next.TraceParams, cfg.TraceParams)
	if cfg.RunningStore != nil {
		next.RunningStore = cfg.RunningStore
	}
	if cfg.FinishedStore != nil {
		next.FinishedStore = cfg.FinishedStore
	}
	if cfg.Source != "" {
		next.Source = cfg.Source
		name, ver := version.SplitVersion(cfg.Source)
		next.sourceInfo = spxbase.SourceInfo{Source: name, SourceVersion: ver}
	}
	configValue.Store(&next)
}

func mergeTraceParams(current, override TraceParams) TraceParams {
	if override.MaxAttributes > 0 {
		current.MaxAttributes = override.MaxAttributes
	}
	if override.MaxAnnotations > 0 {
		current.MaxAnnotations = override.MaxAnnotations
	}
	if override.MaxMessageEvents > 0 {
		current.MaxMessageEvents = override.MaxMessageEvents
	}
	if override.MaxLinks > 0 {
		current.MaxLinks = override.MaxLinks
	}
	if override.MaxAttributesPerAnnotation > 0 {
		current.MaxAttributesPerAnnotation = override.MaxAttributesPerAnnotation
	}
	if override.MaxAttributesPerLink > 0 {
		current.MaxAttributesPerLink = override.MaxAttributesPerLink
	}
	return current
}

func loadConfig() *activeConfig {
	return configValue.Load().(*activeConfig)
}

// ActiveConfig returns a snapshot of the current configuration.
func ActiveConfig() Config {
	return loadConfig().Config
}

// ActiveTraceParams returns the bounds a span created right now would
// snapshot.
func ActiveTraceParams() TraceParams {
	return loadConfig().TraceParams
}

var (
	exporterMu    sync.Mutex
	exporterValue atomic.Value // map[spxbase.Exporter]struct{}
)

// RegisterExporter adds e to the set that receives every sampled
// span's snapshot after it ends.  Registering the same exporter twice
// is harmless.
func RegisterExporter(e spxbase.Exporter) {
	exporterMu.Lock()
	defer exporterMu.Unlock()
	next := make(map[spxbase.Exporter]struct{})
	if old, ok := exporterValue.Load().(map[spxbase.Exporter]struct{}); ok {
		for k := range old {
			next[k] = struct{}{}
		}
	}
	next[e] = struct{}{}
	exporterValue.Store(next)
}

// UnregisterExporter removes e.  Spans that end afterwards will not
// reach it; spans mid-export may still.
func UnregisterExporter(e spxbase.Exporter) {
	exporterMu.Lock()
	defer exporterMu.Unlock()
	next := make(map[spxbase.Exporter]struct{})
	if old, ok := exporterValue.Load().(map[spxbase.Exporter]struct{}); ok {
		for k := range old {
			next[k] = struct{}{}
		}
	}
	delete(next, e)
	exporterValue.Store(next)
}

func activeExporters() map[spxbase.Exporter]struct{} {
	m, _ := exporterValue.Load().(map[spxbase.Exporter]struct{})
	return m
}
