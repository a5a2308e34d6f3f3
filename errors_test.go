package pumproom

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAPIError(t *testing.T) {
	err := &APIError{StatusCode: 503, Status: "Service Unavailable", Endpoint: "/auth/authenticate"}
	assert.True(t, err.IsServerError())
	assert.True(t, err.IsRetryable())
	assert.Contains(t, err.Error(), "503")

	withMessage := &APIError{StatusCode: 400, Status: "Bad Request", Message: "bad profile", Endpoint: "/auth/authenticate"}
	assert.False(t, withMessage.IsRetryable())
	assert.Contains(t, withMessage.Error(), "bad profile")

	assert.True(t, (&APIError{StatusCode: http.StatusTooManyRequests}).IsRetryable())
	assert.True(t, (&APIError{StatusCode: http.StatusRequestTimeout}).IsRetryable())
	assert.False(t, (&APIError{StatusCode: http.StatusNotFound}).IsRetryable())
}

func TestNetworkErrorUnwrap(t *testing.T) {
	inner := errors.New("connection refused")
	err := &NetworkError{Op: "POST /auth/verify_token", Err: inner}
	assert.ErrorIs(t, err, inner)
	assert.Contains(t, err.Error(), "POST /auth/verify_token")
}

func TestErrorPredicates(t *testing.T) {
	authErr := fmt.Errorf("wrapped: %w", &AuthenticationError{StatusCode: 401, Status: "Unauthorized"})
	assert.True(t, IsAuthenticationError(authErr))
	assert.False(t, IsAuthenticationError(errors.New("other")))

	valErr := fmt.Errorf("wrapped: %w", &ProviderValidationError{Provider: ProviderGetCourse, Reason: "missing id"})
	assert.True(t, IsProviderValidationError(valErr))
	assert.False(t, IsProviderValidationError(authErr))

	assert.True(t, IsRetryable(&NetworkError{Op: "op", Err: errors.New("timeout")}))
	assert.True(t, IsRetryable(&APIError{StatusCode: 500}))
	assert.False(t, IsRetryable(&APIError{StatusCode: 400}))
	assert.False(t, IsRetryable(nil))
	assert.False(t, IsRetryable(errors.New("plain")))
}
