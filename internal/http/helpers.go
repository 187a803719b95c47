package http

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"flousi/internal/analytics"
	"flousi/internal/core"
	"flousi/internal/log"
)

// statusClientClosedRequest is the nginx convention for a request the
// client abandoned before the response was ready.
const statusClientClosedRequest = 499

// sanitizeInput removes control characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 || r == 127 {
			return -1
		}
		return r
	}, s)
}

// statusForError maps domain errors to HTTP status codes.
func statusForError(err error) int {
	switch {
	case errors.Is(err, core.ErrEmptyUserID),
		errors.Is(err, core.ErrInvalidKind),
		errors.Is(err, core.ErrInvalidPeriod),
		errors.Is(err, core.ErrInvalidAmount),
		errors.Is(err, errInvalidIndex),
		errors.Is(err, errUserTooLong):
		return http.StatusBadRequest
	case errors.Is(err, analytics.ErrSuperseded):
		return http.StatusConflict
	case errors.Is(err, context.Canceled):
		return statusClientClosedRequest
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusBadGateway
	}
}

// messageForError keeps upstream details out of client responses.
func messageForError(err error) string {
	if statusForError(err) == http.StatusBadGateway {
		return "data source unavailable"
	}
	return err.Error()
}

// errorTypeFor classifies err for the error_type log field.
func errorTypeFor(err error) string {
	switch statusForError(err) {
	case http.StatusBadRequest:
		return log.ErrorTypeValidation
	case http.StatusGatewayTimeout:
		return log.ErrorTypeTimeout
	case http.StatusBadGateway:
		return log.ErrorTypeNetwork
	default:
		return ""
	}
}
