// Package spxnum provides the enumerations used across the spx
// ecosystem.
package spxnum

import "github.com/pkg/errors"

// StatusCode mirrors the standard canonical result codes.  A span
// carries exactly one status; the default is StatusCodeOK with an
// empty message.
type StatusCode int32

const (
	StatusCodeOK                 StatusCode = 0
	StatusCodeCancelled          StatusCode = 1
	StatusCodeUnknown            StatusCode = 2
	StatusCodeInvalidArgument    StatusCode = 3
	StatusCodeDeadlineExceeded   StatusCode = 4
	StatusCodeNotFound           StatusCode = 5
	StatusCodeAlreadyExists      StatusCode = 6
	StatusCodePermissionDenied   StatusCode = 7
	StatusCodeResourceExhausted  StatusCode = 8
	StatusCodeFailedPrecondition StatusCode = 9
	StatusCodeAborted            StatusCode = 10
	StatusCodeOutOfRange         StatusCode = 11
	StatusCodeUnimplemented      StatusCode = 12
	StatusCodeInternal           StatusCode = 13
	StatusCodeUnavailable        StatusCode = 14
	StatusCodeDataLoss           StatusCode = 15
	StatusCodeUnauthenticated    StatusCode = 16
)

const MaxStatusCode = StatusCodeUnauthenticated

var statusCodeNames = map[StatusCode]string{
	StatusCodeOK:                 "OK",
	StatusCodeCancelled:          "CANCELLED",
	StatusCodeUnknown:            "UNKNOWN",
	StatusCodeInvalidArgument:    "INVALID_ARGUMENT",
	StatusCodeDeadlineExceeded:   "DEADLINE_EXCEEDED",
	StatusCodeNotFound:           "NOT_FOUND",
	StatusCodeAlreadyExists:      "ALREADY_EXISTS",
	StatusCodePermissionDenied:   "PERMISSION_DENIED",
	StatusCodeResourceExhausted:  "RESOURCE_EXHAUSTED",
	StatusCodeFailedPrecondition: "FAILED_PRECONDITION",
	StatusCodeAborted:            "ABORTED",
	StatusCodeOutOfRange:         "OUT_OF_RANGE",
	StatusCodeUnimplemented:      "UNIMPLEMENTED",
	StatusCodeInternal:           "INTERNAL",
	StatusCodeUnavailable:        "UNAVAILABLE",
	StatusCodeDataLoss:           "DATA_LOSS",
	StatusCodeUnauthenticated:    "UNAUTHENTICATED",
}

var statusCodeValues = func() map[string]StatusCode {
	m := make(map[string]StatusCode, len(statusCodeNames))
	for code, name := range statusCodeNames {
		m[name] = code
	}
	return m
}()

// Valid reports whether the code is one of the canonical codes.
// Invalid codes are clamped to StatusCodeUnknown when a status is set
// on a span.
func (s StatusCode) Valid() bool {
	return s >= StatusCodeOK && s <= MaxStatusCode
}

func (s StatusCode) String() string {
	if name, ok := statusCodeNames[s]; ok {
		return name
	}
	return "UNKNOWN"
}

// StatusCodeString returns the StatusCode whose String() matches s.
func StatusCodeString(s string) (StatusCode, error) {
	if code, ok := statusCodeValues[s]; ok {
		return code, nil
	}
	return StatusCodeUnknown, errors.Errorf("%s does not belong to StatusCode values", s)
}

// StatusCodeStrings lists the canonical code names in code order.
func StatusCodeStrings() []string {
	names := make([]string, 0, len(statusCodeNames))
	for code := StatusCodeOK; code <= MaxStatusCode; code++ {
		names = append(names, code.String())
	}
	return names
}
