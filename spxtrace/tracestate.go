package spxtrace

import (
	"strings"

	"github.com/pkg/errors"
)

// Tracestate carries vendor-specific key/value pairs through a trace
// in the W3C "tracestate" header form.  The engine treats it as
// opaque: it is stored, copied, and propagated, never interpreted.
//
// Note that tracestate values may contain PII and should not be logged
// where PII isn't allowed.
type Tracestate struct {
	asString string
}

// TracestateEntry is one key/value pair within a Tracestate.
type TracestateEntry struct {
	Key   string
	Value string
}

const maxTracestateEntries = 32

// NewTracestate validates the entries and renders them into a
// Tracestate.  Keys must be non-empty, free of separators, and unique;
// at most 32 entries are allowed.
func NewTracestate(entries ...TracestateEntry) (Tracestate, error) {
	if len(entries) == 0 {
		return Tracestate{}, nil
	}
	if len(entries) > maxTracestateEntries {
		return Tracestate{}, errors.Errorf("tracestate cannot have more than %d entries, got %d", maxTracestateEntries, len(entries))
	}
	seen := make(map[string]struct{}, len(entries))
	var sb strings.Builder
	for i, entry := range entries {
		if err := validateTracestateEntry(entry); err != nil {
			return Tracestate{}, err
		}
		if _, ok := seen[entry.Key]; ok {
			return Tracestate{}, errors.Errorf("duplicate tracestate key %q", entry.Key)
		}
		seen[entry.Key] = struct{}{}
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(entry.Key)
		sb.WriteByte('=')
		sb.WriteString(entry.Value)
	}
	return Tracestate{asString: sb.String()}, nil
}

// ParseTracestate validates a header-form string ("k1=v1,k2=v2") and
// wraps it.  An empty string is the empty Tracestate.
func ParseTracestate(h string) (Tracestate, error) {
	if h == "" {
		return Tracestate{}, nil
	}
	entries, err := splitTracestate(h)
	if err != nil {
		return Tracestate{}, err
	}
	return NewTracestate(entries...)
}

func splitTracestate(h string) ([]TracestateEntry, error) {
	parts := strings.Split(h, ",")
	entries := make([]TracestateEntry, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		eq := strings.IndexByte(part, '=')
		if eq < 0 {
			return nil, errors.Errorf("tracestate entry %q has no '='", part)
		}
		entries = append(entries, TracestateEntry{
			Key:   part[:eq],
			Value: part[eq+1:],
		})
	}
	return entries, nil
}

func validateTracestateEntry(entry TracestateEntry) error {
	if entry.Key == "" {
		return errors.New("tracestate key cannot be empty")
	}
	if strings.ContainsAny(entry.Key, ", =") {
		return errors.Errorf("tracestate key %q contains a separator", entry.Key)
	}
	if strings.ContainsAny(entry.Value, ",=") {
		return errors.Errorf("tracestate value %q contains a separator", entry.Value)
	}
	return nil
}

// Entries parses the pairs back out.  The returned slice is freshly
// allocated; callers may keep it.
func (ts Tracestate) Entries() []TracestateEntry {
	if ts.asString == "" {
		return nil
	}
	entries, err := splitTracestate(ts.asString)
	if err != nil {
		// Only reachable through the zero value or misuse; a
		// constructed Tracestate always re-splits cleanly.
		return nil
	}
	return entries
}

// Get returns the value for a key and whether it was present.
func (ts Tracestate) Get(key string) (string, bool) {
	for _, entry := range ts.Entries() {
		if entry.Key == key {
			return entry.Value, true
		}
	}
	return "", false
}

func (ts Tracestate) Len() int {
	if ts.asString == "" {
		return 0
	}
	return strings.Count(ts.asString, ",") + 1
}

func (ts Tracestate) IsZero() bool     { return ts.asString == "" }
func (ts Tracestate) String() string   { return ts.asString }
func (ts Tracestate) Copy() Tracestate { return ts }
