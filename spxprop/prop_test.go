package spxprop_test

import (
	"net/http"
	"testing"

	"github.com/spxlog/spx-go/spxprop"
	"github.com/spxlog/spx-go/spxtrace"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustTraceID(t *testing.T, h string) spxtrace.TraceID {
	traceID, err := spxtrace.TraceIDFromHex(h)
	require.NoError(t, err)
	return traceID
}

func mustSpanID(t *testing.T, h string) spxtrace.SpanID {
	spanID, err := spxtrace.SpanIDFromHex(h)
	require.NoError(t, err)
	return spanID
}

func sampledContext(t *testing.T) spxtrace.SpanContext {
	return spxtrace.NewSpanContext(
		mustTraceID(t, "0af7651916cd43dd8448eb211c80319c"),
		mustSpanID(t, "b7ad6b7169203331"),
		spxtrace.TraceOptions(0).WithSampled(true),
	)
}

func TestTraceParentRoundTrip(t *testing.T) {
	sc := sampledContext(t)
	h := spxprop.TraceParentHeader(sc)
	assert.Equal(t, "00-0af7651916cd43dd8448eb211c80319c-b7ad6b7169203331-01", h)
	parsed, err := spxprop.ParseTraceParent(h)
	require.NoError(t, err)
	assert.True(t, parsed.Equal(sc))
	assert.True(t, parsed.IsSampled())
}

func TestParseTraceParentRejects(t *testing.T) {
	cases := []struct {
		name string
		h    string
	}{
		{"empty", ""},
		{"three fields", "00-0af7651916cd43dd8448eb211c80319c-b7ad6b7169203331"},
		{"version ff", "ff-0af7651916cd43dd8448eb211c80319c-b7ad6b7169203331-01"},
		{"version not hex", "zz-0af7651916cd43dd8448eb211c80319c-b7ad6b7169203331-01"},
		{"zero trace id", "00-00000000000000000000000000000000-b7ad6b7169203331-01"},
		{"zero span id", "00-0af7651916cd43dd8448eb211c80319c-0000000000000000-01"},
		{"short trace id", "00-0af7651916cd43dd-b7ad6b7169203331-01"},
		{"flags not hex", "00-0af7651916cd43dd8448eb211c80319c-b7ad6b7169203331-zz"},
		{"version 00 extra field", "00-0af7651916cd43dd8448eb211c80319c-b7ad6b7169203331-01-what"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := spxprop.ParseTraceParent(tc.h)
			assert.Error(t, err)
		})
	}
}

func TestParseTraceParentFutureVersion(t *testing.T) {
	parsed, err := spxprop.ParseTraceParent("01-0af7651916cd43dd8448eb211c80319c-b7ad6b7169203331-01-future-use")
	require.NoError(t, err)
	assert.Equal(t, "0af7651916cd43dd8448eb211c80319c", parsed.TraceID().String())
	assert.True(t, parsed.IsSampled())
}

func TestInjectExtractHeaders(t *testing.T) {
	ts, err := spxtrace.NewTracestate(spxtrace.TracestateEntry{Key: "vendor", Value: "x"})
	require.NoError(t, err)
	sc := spxtrace.NewSpanContextWithTracestate(
		mustTraceID(t, "0af7651916cd43dd8448eb211c80319c"),
		mustSpanID(t, "b7ad6b7169203331"),
		spxtrace.TraceOptions(0).WithSampled(true),
		ts,
	)

	h := make(http.Header)
	spxprop.Inject(sc, h.Set)
	assert.Equal(t, "00-0af7651916cd43dd8448eb211c80319c-b7ad6b7169203331-01", h.Get(spxprop.HeaderTraceParent))
	assert.Equal(t, "vendor=x", h.Get(spxprop.HeaderTracestate))

	got, ok := spxprop.Extract(h.Get)
	require.True(t, ok)
	assert.True(t, got.Equal(sc))
	v, found := got.Tracestate().Get("vendor")
	assert.True(t, found)
	assert.Equal(t, "x", v)
}

func TestInjectSkipsInvalid(t *testing.T) {
	h := make(http.Header)
	spxprop.Inject(spxtrace.SpanContext{}, h.Set)
	assert.Empty(t, h)
}

func TestExtractPrefersTraceParent(t *testing.T) {
	h := make(http.Header)
	h.Set(spxprop.HeaderTraceParent, "00-0af7651916cd43dd8448eb211c80319c-b7ad6b7169203331-00")
	h.Set(spxprop.HeaderB3TraceID, "11111111111111111111111111111111")
	h.Set(spxprop.HeaderB3SpanID, "2222222222222222")
	got, ok := spxprop.Extract(h.Get)
	require.True(t, ok)
	assert.Equal(t, "0af7651916cd43dd8448eb211c80319c", got.TraceID().String())
	assert.False(t, got.IsSampled())
}

func TestExtractFallsBackToB3(t *testing.T) {
	h := make(http.Header)
	h.Set(spxprop.HeaderTraceParent, "not-a-traceparent")
	h.Set(spxprop.HeaderB3TraceID, "0af7651916cd43dd8448eb211c80319c")
	h.Set(spxprop.HeaderB3SpanID, "b7ad6b7169203331")
	h.Set(spxprop.HeaderB3Sampled, "true")
	got, ok := spxprop.Extract(h.Get)
	require.True(t, ok)
	assert.Equal(t, "0af7651916cd43dd8448eb211c80319c", got.TraceID().String())
	assert.True(t, got.IsSampled())
}

func TestExtractNothing(t *testing.T) {
	h := make(http.Header)
	_, ok := spxprop.Extract(h.Get)
	assert.False(t, ok)
}

func TestB3RoundTrip(t *testing.T) {
	sc := sampledContext(t)
	h := make(http.Header)
	spxprop.InjectB3(sc, h.Set)
	assert.Equal(t, "0af7651916cd43dd8448eb211c80319c", h.Get(spxprop.HeaderB3TraceID))
	assert.Equal(t, "b7ad6b7169203331", h.Get(spxprop.HeaderB3SpanID))
	assert.Equal(t, "1", h.Get(spxprop.HeaderB3Sampled))

	got, ok := spxprop.ExtractB3(h.Get)
	require.True(t, ok)
	assert.True(t, got.Equal(sc))
}

func TestB3ShortTraceID(t *testing.T) {
	h := make(http.Header)
	h.Set(spxprop.HeaderB3TraceID, "8448eb211c80319c")
	h.Set(spxprop.HeaderB3SpanID, "b7ad6b7169203331")
	got, ok := spxprop.ExtractB3(h.Get)
	require.True(t, ok)
	assert.Equal(t, "00000000000000008448eb211c80319c", got.TraceID().String())
	assert.False(t, got.IsSampled())
}

func TestB3MissingSpanID(t *testing.T) {
	h := make(http.Header)
	h.Set(spxprop.HeaderB3TraceID, "0af7651916cd43dd8448eb211c80319c")
	_, ok := spxprop.ExtractB3(h.Get)
	assert.False(t, ok)
}

func TestB3SingleHeader(t *testing.T) {
	sc := sampledContext(t)
	h := spxprop.B3SingleHeader(sc)
	assert.Equal(t, "0af7651916cd43dd8448eb211c80319c-b7ad6b7169203331-1", h)

	parsed, err := spxprop.ParseB3Single(h)
	require.NoError(t, err)
	assert.True(t, parsed.Equal(sc))
}

func TestB3SingleHeaderInvalid(t *testing.T) {
	assert.Equal(t, "", spxprop.B3SingleHeader(spxtrace.SpanContext{}))
}

func TestParseB3Single(t *testing.T) {
	t.Run("two fields", func(t *testing.T) {
		parsed, err := spxprop.ParseB3Single("0af7651916cd43dd8448eb211c80319c-b7ad6b7169203331")
		require.NoError(t, err)
		assert.False(t, parsed.IsSampled())
	})
	t.Run("debug flag", func(t *testing.T) {
		parsed, err := spxprop.ParseB3Single("0af7651916cd43dd8448eb211c80319c-b7ad6b7169203331-d")
		require.NoError(t, err)
		assert.True(t, parsed.IsSampled())
	})
	t.Run("parent span id ignored", func(t *testing.T) {
		parsed, err := spxprop.ParseB3Single("0af7651916cd43dd8448eb211c80319c-b7ad6b7169203331-1-05e3ac9a4f6e3b90")
		require.NoError(t, err)
		assert.Equal(t, "b7ad6b7169203331", parsed.SpanID().String())
	})
	t.Run("short trace id", func(t *testing.T) {
		parsed, err := spxprop.ParseB3Single("8448eb211c80319c-b7ad6b7169203331-1")
		require.NoError(t, err)
		assert.Equal(t, "00000000000000008448eb211c80319c", parsed.TraceID().String())
	})
	t.Run("deny only", func(t *testing.T) {
		_, err := spxprop.ParseB3Single("0")
		assert.Error(t, err)
	})
	t.Run("garbage", func(t *testing.T) {
		_, err := spxprop.ParseB3Single("notahexid-b7ad6b7169203331")
		assert.Error(t, err)
	})
}

func TestB3SingleHeaderPreferred(t *testing.T) {
	h := make(http.Header)
	h.Set(spxprop.HeaderB3Single, "0af7651916cd43dd8448eb211c80319c-b7ad6b7169203331-1")
	h.Set(spxprop.HeaderB3TraceID, "11111111111111111111111111111111")
	h.Set(spxprop.HeaderB3SpanID, "2222222222222222")
	got, ok := spxprop.ExtractB3(h.Get)
	require.True(t, ok)
	assert.Equal(t, "0af7651916cd43dd8448eb211c80319c", got.TraceID().String())
	assert.True(t, got.IsSampled())
}
