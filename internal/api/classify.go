// Package api implements the resilient dashboard API client: request
// execution with retry and backoff, envelope unwrapping, pagination
// normalization, and the reactive refresh-and-replay path for expired
// sessions.
package api

import (
	"context"
	"errors"
	"net"
	"net/http"

	dErrors "cockpit/pkg/domain-errors"
)

// Classify maps a transport outcome to a domain error code. It is a pure
// function of (transport error, status code): no side effects, no dependence
// on request history.
func Classify(transportErr error, status int) dErrors.Code {
	if transportErr != nil {
		if errors.Is(transportErr, context.DeadlineExceeded) {
			return dErrors.CodeTimeout
		}
		var netErr net.Error
		if errors.As(transportErr, &netErr) && netErr.Timeout() {
			return dErrors.CodeTimeout
		}
		return dErrors.CodeNetwork
	}

	switch {
	case status == http.StatusUnauthorized:
		return dErrors.CodeUnauthorized
	case status == http.StatusForbidden:
		return dErrors.CodeForbidden
	case status == http.StatusBadRequest, status == http.StatusUnprocessableEntity:
		return dErrors.CodeValidation
	case status == http.StatusNotFound:
		return dErrors.CodeNotFound
	case status == http.StatusRequestTimeout:
		return dErrors.CodeTimeout
	case status == http.StatusTooManyRequests:
		return dErrors.CodeRateLimited
	case status >= 500:
		return dErrors.CodeServerError
	default:
		return dErrors.CodeUnknown
	}
}

// IsRetryable reports whether the generic retry policy may re-attempt a
// request that failed with this code. Auth errors are deliberately excluded:
// they go through the one-shot refresh-and-replay path instead.
func IsRetryable(code dErrors.Code) bool {
	switch code {
	case dErrors.CodeNetwork, dErrors.CodeTimeout, dErrors.CodeRateLimited, dErrors.CodeServerError:
		return true
	default:
		return false
	}
}

// IsAuthError reports whether the code is a credential failure. Only the
// refresh coordinator trigger may branch on this; no other component
// special-cases 401.
func IsAuthError(code dErrors.Code) bool {
	return code == dErrors.CodeUnauthorized
}
