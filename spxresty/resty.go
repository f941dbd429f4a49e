/*
Package spxresty instruments a resty client.  Every request made
through a wrapped client runs inside a client-kind span that is a
child of whatever span the request context carries, and the outgoing
request carries the matching propagation headers.

The resty package does not provide a clean way to pass a span into an
individual call, so the instrumentation rides on the client's request
hooks and the request context.
*/
package spxresty

import (
	"net/http"

	"github.com/spxlog/spx-go"
	"github.com/spxlog/spx-go/spxat"
	"github.com/spxlog/spx-go/spxmiddle"
	"github.com/spxlog/spx-go/spxnum"
	"github.com/spxlog/spx-go/spxprop"
	"github.com/spxlog/spx-go/spxutil"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
)

type instrumented struct {
	nameFromRequest func(*resty.Request) string
	b3              bool
	startOptions    []spx.StartOption
	messageIDs      spxutil.Counter
}

type Option func(*instrumented)

// WithNameFromRequest overrides how spans are named.  The default is
// "HTTP " plus the request method.
func WithNameFromRequest(f func(*resty.Request) string) Option {
	return func(in *instrumented) {
		in.nameFromRequest = f
	}
}

// WithB3 additionally injects the B3 header set for servers that do
// not speak W3C trace-context.
func WithB3(enabled bool) Option {
	return func(in *instrumented) {
		in.b3 = enabled
	}
}

// WithStartOptions appends start options to every span the client
// starts.
func WithStartOptions(opts ...spx.StartOption) Option {
	return func(in *instrumented) {
		in.startOptions = append(in.startOptions, opts...)
	}
}

// Client registers the instrumentation hooks on client and returns it.
func Client(client *resty.Client, opts ...Option) *resty.Client {
	in := &instrumented{
		nameFromRequest: func(r *resty.Request) string { return "HTTP " + r.Method },
	}
	for _, opt := range opts {
		opt(in)
	}
	return client.
		OnBeforeRequest(in.before).
		OnAfterResponse(in.after).
		OnError(in.onError)
}

func (in *instrumented) before(_ *resty.Client, req *resty.Request) error {
	ctx := req.Context()
	opts := append([]spx.StartOption{
		spx.WithSpanKind(spxnum.SpanKindClient),
		spx.WithParent(spx.FromContextOrBlank(ctx)),
	}, in.startOptions...)
	span := spx.StartSpan(in.nameFromRequest(req), opts...)

	spxprop.Inject(span.SpanContext(), req.Header.Set)
	if in.b3 {
		spxprop.InjectB3(span.SpanContext(), req.Header.Set)
	}
	if size := bodySize(req.Body); size > 0 {
		span.AddSentMessageEvent(in.messageIDs.Next(), size, size)
	}
	req.SetContext(span.IntoContext(ctx))
	return nil
}

func (in *instrumented) after(_ *resty.Client, resp *resty.Response) error {
	span, ok := spx.FromContext(resp.Request.Context())
	if !ok {
		return nil
	}
	if size := resp.Size(); size > 0 {
		span.AddReceivedMessageEvent(in.messageIDs.Next(), size, size)
	}
	code := resp.StatusCode()
	span.AddAttributes(
		spxat.String("http.method", resp.Request.Method),
		spxat.String("http.url", resp.Request.URL),
		spxat.Int64("http.status_code", int64(code)),
	)
	message := ""
	if code >= 400 {
		message = http.StatusText(code)
	}
	span.SetStatus(spxmiddle.StatusFromHTTP(code), message)
	span.End()
	return nil
}

func (in *instrumented) onError(req *resty.Request, err error) {
	span, ok := spx.FromContext(req.Context())
	if !ok {
		return
	}
	if re, ok := err.(*resty.ResponseError); ok && re.Err != nil {
		err = re.Err
	}
	span.SetStatus(spxnum.StatusCodeUnknown, errors.Cause(err).Error())
	span.End()
}

// bodySize is best effort: resty serializes structured bodies after
// the before hooks run, so only literal bodies have a known size here.
func bodySize(body interface{}) int64 {
	switch b := body.(type) {
	case string:
		return int64(len(b))
	case []byte:
		return int64(len(b))
	}
	return 0
}
