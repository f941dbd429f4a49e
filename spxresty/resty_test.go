package spxresty_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/spxlog/spx-go"
	"github.com/spxlog/spx-go/spxat"
	"github.com/spxlog/spx-go/spxmiddle"
	"github.com/spxlog/spx-go/spxnum"
	"github.com/spxlog/spx-go/spxresty"
	"github.com/spxlog/spx-go/spxtest"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientServerLoopback(t *testing.T) {
	capture := spxtest.Install(t, spxtest.WithQuiet())

	inbound := spxmiddle.New(func(r *http.Request) string { return r.URL.Path })
	ts := httptest.NewServer(inbound.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("pong"))
	})))
	defer ts.Close()

	client := spxresty.Client(resty.New())
	root := spx.StartSpan("client root")
	ctx := root.IntoContext(context.Background())

	resp, err := client.R().SetContext(ctx).Get(ts.URL + "/ping")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode())
	root.End()

	require.Equal(t, 3, capture.Count(), "server, client, root")
	clientSD := capture.Find("HTTP GET")
	require.NotNil(t, clientSD)
	serverSD := capture.Find("GET /ping")
	require.NotNil(t, serverSD)
	rootSD := capture.Find("client root")
	require.NotNil(t, rootSD)

	assert.Equal(t, rootSD.SpanContext.TraceID(), clientSD.SpanContext.TraceID(), "one trace")
	assert.Equal(t, clientSD.SpanContext.TraceID(), serverSD.SpanContext.TraceID(), "one trace")
	assert.Equal(t, rootSD.SpanContext.SpanID(), clientSD.ParentSpanID, "client under root")
	assert.Equal(t, clientSD.SpanContext.SpanID(), serverSD.ParentSpanID, "server under client")
	assert.True(t, serverSD.HasRemoteParent)
	assert.False(t, clientSD.HasRemoteParent)
	assert.Equal(t, spxnum.SpanKindClient, clientSD.Kind)
	assert.Equal(t, spxnum.SpanKindServer, serverSD.Kind)
	assert.Equal(t, spxat.Int64Value(http.StatusOK), clientSD.Attributes["http.status_code"])
}

func TestClientWithoutParent(t *testing.T) {
	capture := spxtest.Install(t, spxtest.WithQuiet())

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer ts.Close()

	client := spxresty.Client(resty.New())
	_, err := client.R().Get(ts.URL)
	require.NoError(t, err)

	sd := capture.Find("HTTP GET")
	require.NotNil(t, sd)
	assert.True(t, sd.ParentSpanID.IsZero(), "root of its own trace")
	assert.False(t, sd.SpanContext.TraceID().IsZero())
}

func TestClientMessageEvents(t *testing.T) {
	capture := spxtest.Install(t, spxtest.WithQuiet())

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("0123456789"))
	}))
	defer ts.Close()

	client := spxresty.Client(resty.New())
	_, err := client.R().SetBody("hello").Post(ts.URL)
	require.NoError(t, err)

	sd := capture.Find("HTTP POST")
	require.NotNil(t, sd)
	require.Len(t, sd.MessageEvents, 2)
	sent, recv := sd.MessageEvents[0], sd.MessageEvents[1]
	assert.Equal(t, spxnum.MessageEventTypeSent, sent.Type)
	assert.Equal(t, int64(len("hello")), sent.UncompressedByteSize)
	assert.Equal(t, spxnum.MessageEventTypeReceived, recv.Type)
	assert.Equal(t, int64(len("0123456789")), recv.UncompressedByteSize)
	assert.NotEqual(t, sent.MessageID, recv.MessageID)
}

func TestClientB3Injection(t *testing.T) {
	spxtest.Install(t, spxtest.WithQuiet())

	var gotTraceParent, gotB3TraceID, gotB3Sampled string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotTraceParent = r.Header.Get("traceparent")
		gotB3TraceID = r.Header.Get("X-B3-TraceId")
		gotB3Sampled = r.Header.Get("X-B3-Sampled")
	}))
	defer ts.Close()

	client := spxresty.Client(resty.New(), spxresty.WithB3(true))
	_, err := client.R().Get(ts.URL)
	require.NoError(t, err)

	require.NotEmpty(t, gotTraceParent)
	require.NotEmpty(t, gotB3TraceID)
	assert.Contains(t, gotTraceParent, gotB3TraceID, "same trace id both ways")
	assert.Equal(t, "1", gotB3Sampled)
}

func TestClientHTTPErrorStatus(t *testing.T) {
	capture := spxtest.Install(t, spxtest.WithQuiet())

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusServiceUnavailable)
	}))
	defer ts.Close()

	client := spxresty.Client(resty.New())
	resp, err := client.R().Get(ts.URL)
	require.NoError(t, err)
	require.Equal(t, http.StatusServiceUnavailable, resp.StatusCode())

	sd := capture.Find("HTTP GET")
	require.NotNil(t, sd)
	assert.Equal(t, spxnum.StatusCodeUnavailable, sd.Status.Code)
	assert.Equal(t, http.StatusText(http.StatusServiceUnavailable), sd.Status.Message)
}

func TestClientTransportError(t *testing.T) {
	capture := spxtest.Install(t, spxtest.WithQuiet())

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	deadURL := ts.URL
	ts.Close()

	client := spxresty.Client(resty.New(), spxresty.WithNameFromRequest(func(r *resty.Request) string {
		return "doomed call"
	}))
	_, err := client.R().Get(deadURL)
	require.Error(t, err)

	sd := capture.Find("doomed call")
	require.NotNil(t, sd)
	assert.Equal(t, spxnum.StatusCodeUnknown, sd.Status.Code)
	assert.NotEmpty(t, sd.Status.Message)
}
