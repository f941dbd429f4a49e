package spxmiddle

import (
	"net/http"

	"github.com/spxlog/spx-go/spxnum"
)

// StatusFromHTTP maps an HTTP status code onto the canonical result
// codes carried by span statuses.
func StatusFromHTTP(code int) spxnum.StatusCode {
	switch {
	case code < 200:
		return spxnum.StatusCodeUnknown
	case code < 300:
		return spxnum.StatusCodeOK
	}
	switch code {
	case http.StatusBadRequest:
		return spxnum.StatusCodeInvalidArgument
	case http.StatusUnauthorized:
		return spxnum.StatusCodeUnauthenticated
	case http.StatusForbidden:
		return spxnum.StatusCodePermissionDenied
	case http.StatusNotFound:
		return spxnum.StatusCodeNotFound
	case http.StatusConflict:
		return spxnum.StatusCodeAlreadyExists
	case http.StatusPreconditionFailed:
		return spxnum.StatusCodeFailedPrecondition
	case http.StatusRequestedRangeNotSatisfiable:
		return spxnum.StatusCodeOutOfRange
	case http.StatusTooManyRequests:
		return spxnum.StatusCodeResourceExhausted
	case 499: // client closed request (nginx)
		return spxnum.StatusCodeCancelled
	case http.StatusInternalServerError:
		return spxnum.StatusCodeInternal
	case http.StatusNotImplemented:
		return spxnum.StatusCodeUnimplemented
	case http.StatusServiceUnavailable:
		return spxnum.StatusCodeUnavailable
	case http.StatusGatewayTimeout:
		return spxnum.StatusCodeDeadlineExceeded
	}
	return spxnum.StatusCodeUnknown
}
