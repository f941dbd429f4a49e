package spxmiddle

import (
	"net/http"

	"github.com/spxlog/spx-go"
	"github.com/spxlog/spx-go/spxat"
	"github.com/spxlog/spx-go/spxnum"
	"github.com/spxlog/spx-go/spxprop"
	"github.com/spxlog/spx-go/spxutil"
)

// Inbound wraps HTTP handlers so that every request runs inside a
// server-kind span.  Remote contexts are picked up from the W3C and B3
// request headers.
type Inbound struct {
	requestToName  func(*http.Request) string
	publicEndpoint bool
	traceResponse  bool
	startOptions   []spx.StartOption
	messageIDs     spxutil.Counter
}

type Option func(*Inbound)

// WithPublicEndpoint treats inbound contexts as untrusted: the remote
// span becomes a parent link on a fresh trace instead of the identity
// parent.
func WithPublicEndpoint(public bool) Option {
	return func(i *Inbound) {
		i.publicEndpoint = public
	}
}

// WithTraceResponse controls the "traceresponse" response header.  On
// by default.
func WithTraceResponse(enabled bool) Option {
	return func(i *Inbound) {
		i.traceResponse = enabled
	}
}

// WithStartOptions appends start options to every span the middleware
// starts.
func WithStartOptions(opts ...spx.StartOption) Option {
	return func(i *Inbound) {
		i.startOptions = append(i.startOptions, opts...)
	}
}

// New builds an Inbound.  requestToName turns a request into the
// operation part of the span name; when it returns "" the request URL
// is used instead.  Span names come out as "METHOD name".
func New(requestToName func(*http.Request) string, opts ...Option) *Inbound {
	i := &Inbound{
		requestToName: requestToName,
		traceResponse: true,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

func (i *Inbound) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		span, r, wrote := i.start(w, r)
		defer i.finish(span, r, wrote)
		next.ServeHTTP(wrote, r)
	})
}

func (i *Inbound) HandlerFuncMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		span, r, wrote := i.start(w, r)
		defer i.finish(span, r, wrote)
		next(wrote, r)
	}
}

func (i *Inbound) spanName(r *http.Request) string {
	name := i.requestToName(r)
	if name == "" {
		name = r.URL.String()
	}
	return r.Method + " " + name
}

func (i *Inbound) start(w http.ResponseWriter, r *http.Request) (spx.Span, *http.Request, *countingWriter) {
	opts := append([]spx.StartOption{spx.WithSpanKind(spxnum.SpanKindServer)}, i.startOptions...)

	var span spx.Span
	remote, ok := spxprop.Extract(r.Header.Get)
	if ok && !i.publicEndpoint {
		span = spx.StartSpanWithRemoteParent(i.spanName(r), remote, opts...)
	} else {
		span = spx.StartSpan(i.spanName(r), opts...)
		if ok {
			span.AddParentLink(remote)
		}
	}

	r = r.WithContext(span.IntoContext(r.Context()))
	if i.traceResponse {
		w.Header().Set("traceresponse", span.SpanContext().String())
	}
	return span, r, &countingWriter{ResponseWriter: w}
}

func (i *Inbound) finish(span spx.Span, r *http.Request, wrote *countingWriter) {
	if reqLen := r.ContentLength; reqLen > 0 {
		span.AddReceivedMessageEvent(i.messageIDs.Next(), reqLen, reqLen)
	}
	if wrote.written > 0 {
		span.AddSentMessageEvent(i.messageIDs.Next(), wrote.written, wrote.written)
	}
	code := wrote.statusCode()
	span.AddAttributes(
		spxat.String("http.method", r.Method),
		spxat.String("http.path", r.URL.Path),
		spxat.String("http.host", r.Host),
		spxat.Int64("http.status_code", int64(code)),
		spxat.String("http.user_agent", r.UserAgent()),
	)
	message := ""
	if code >= 400 {
		message = http.StatusText(code)
	}
	span.SetStatus(StatusFromHTTP(code), message)
	span.End()
}

// countingWriter tracks the status code and body size the handler
// produced.  An unset status counts as 200 once anything is written.
type countingWriter struct {
	http.ResponseWriter
	status  int
	written int64
}

func (w *countingWriter) WriteHeader(code int) {
	if w.status == 0 {
		w.status = code
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *countingWriter) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	n, err := w.ResponseWriter.Write(b)
	w.written += int64(n)
	return n, err
}

func (w *countingWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (w *countingWriter) statusCode() int {
	if w.status == 0 {
		return http.StatusOK
	}
	return w.status
}
