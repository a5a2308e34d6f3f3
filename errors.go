package pumproom

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors returned by the SDK. Use errors.Is to test for them.
//
// Example:
//
//	user, err := client.Authenticate(ctx, opts)
//	if errors.Is(err, pumproom.ErrNotInitialized) {
//	    // New was never called with a valid config
//	}
var (
	// ErrInvalidConfig is returned when the configuration is invalid.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrNotInitialized is returned when an operation requires a configured
	// client and none is available.
	ErrNotInitialized = errors.New("sdk is not initialized")

	// ErrNotAuthenticated is returned by state operations that require a
	// current user before Authenticate or SetUser has succeeded.
	ErrNotAuthenticated = errors.New("user is not authenticated")

	// ErrClientClosed is returned when the client has been closed.
	ErrClientClosed = errors.New("client is closed")
)

// AuthenticationError is returned when the authenticate endpoint answers with
// a non-2xx status. The previously established user, if any, is left intact.
type AuthenticationError struct {
	// StatusCode is the HTTP status code of the response.
	StatusCode int
	// Status is the HTTP reason phrase.
	Status string
}

// Error implements the error interface.
func (e *AuthenticationError) Error() string {
	return fmt.Sprintf("authentication error: %d %s", e.StatusCode, e.Status)
}

// ProviderValidationError is returned when provider-specific validation of the
// LMS profile fails before any network call is made. For GetCourse this means
// the user identifier is missing or still contains a template placeholder.
type ProviderValidationError struct {
	// Provider is the provider whose validation failed.
	Provider ProviderType
	// Reason describes what was wrong with the input.
	Reason string
}

// Error implements the error interface.
func (e *ProviderValidationError) Error() string {
	return fmt.Sprintf("%s validation error: %s", e.Provider, e.Reason)
}

// APIError is an error response from the PumpRoom API: any non-2xx status.
type APIError struct {
	// StatusCode is the HTTP status code from the response.
	StatusCode int `json:"-"`
	// Status is the HTTP reason phrase.
	Status string `json:"-"`
	// Message is the error message from the server body, when present.
	Message string `json:"error,omitempty"`
	// Endpoint is the path of the failed request.
	Endpoint string `json:"-"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("request error: %d %s (%s): %s", e.StatusCode, e.Status, e.Endpoint, e.Message)
	}
	return fmt.Sprintf("request error: %d %s (%s)", e.StatusCode, e.Status, e.Endpoint)
}

// IsServerError reports whether the error is a 5xx server error.
func (e *APIError) IsServerError() bool {
	return e.StatusCode >= 500
}

// IsRetryable reports whether the request may be retried.
func (e *APIError) IsRetryable() bool {
	if e.IsServerError() {
		return true
	}
	switch e.StatusCode {
	case http.StatusTooManyRequests, http.StatusRequestTimeout:
		return true
	}
	return false
}

// NetworkError is a transport-level failure: connection refused, DNS failure,
// timeout and the like. It wraps the underlying error.
type NetworkError struct {
	// Op is the operation that failed, e.g. "POST /auth/authenticate".
	Op string
	// Err is the underlying transport error.
	Err error
}

// Error implements the error interface.
func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error during %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error.
func (e *NetworkError) Unwrap() error {
	return e.Err
}

// IsAuthenticationError reports whether err is an AuthenticationError.
func IsAuthenticationError(err error) bool {
	var authErr *AuthenticationError
	return errors.As(err, &authErr)
}

// IsProviderValidationError reports whether err is a ProviderValidationError.
func IsProviderValidationError(err error) bool {
	var valErr *ProviderValidationError
	return errors.As(err, &valErr)
}

// IsRetryable reports whether the operation that produced err may be retried.
// Network errors and retryable API statuses (5xx, 408, 429) qualify.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	var netErr *NetworkError
	if errors.As(err, &netErr) {
		return true
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.IsRetryable()
	}
	return false
}
