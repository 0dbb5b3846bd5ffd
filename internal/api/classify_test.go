package api

import (
	"context"
	"errors"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"

	dErrors "cockpit/pkg/domain-errors"
)

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func TestClassify(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		want   dErrors.Code
	}{
		{"connection refused", errors.New("dial tcp: connection refused"), 0, dErrors.CodeNetwork},
		{"net timeout", net.Error(timeoutErr{}), 0, dErrors.CodeTimeout},
		{"context deadline", context.DeadlineExceeded, 0, dErrors.CodeTimeout},
		{"401", nil, 401, dErrors.CodeUnauthorized},
		{"403", nil, 403, dErrors.CodeForbidden},
		{"400", nil, 400, dErrors.CodeValidation},
		{"422", nil, 422, dErrors.CodeValidation},
		{"404", nil, 404, dErrors.CodeNotFound},
		{"408", nil, 408, dErrors.CodeTimeout},
		{"429", nil, 429, dErrors.CodeRateLimited},
		{"500", nil, 500, dErrors.CodeServerError},
		{"503", nil, 503, dErrors.CodeServerError},
		{"teapot", nil, 418, dErrors.CodeUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.err, tt.status))
		})
	}
}

func TestIsRetryable(t *testing.T) {
	retryable := []dErrors.Code{
		dErrors.CodeNetwork, dErrors.CodeTimeout, dErrors.CodeRateLimited, dErrors.CodeServerError,
	}
	for _, code := range retryable {
		assert.True(t, IsRetryable(code), "code %s", code)
	}

	terminal := []dErrors.Code{
		dErrors.CodeUnauthorized, dErrors.CodeForbidden, dErrors.CodeValidation,
		dErrors.CodeContractViolation, dErrors.CodeUnknown, dErrors.CodeNotFound,
	}
	for _, code := range terminal {
		assert.False(t, IsRetryable(code), "code %s", code)
	}
}

func TestIsAuthError(t *testing.T) {
	assert.True(t, IsAuthError(dErrors.CodeUnauthorized))
	assert.False(t, IsAuthError(dErrors.CodeForbidden))
	assert.False(t, IsAuthError(dErrors.CodeSessionExpired))
}
