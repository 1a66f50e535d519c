package domain

import (
	"errors"
	"fmt"
	"net/http"
)

var ErrNotAuthenticated = errors.New("not authenticated")

// APIError is a structured request failure as reported by the backend.
type APIError struct {
	Code       string              `json:"error"`
	Message    string              `json:"message,omitempty"`
	StatusCode int                 `json:"statusCode"`
	Details    map[string][]string `json:"details,omitempty"`
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
	}
	if e.Code != "" {
		return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Code)
	}
	return fmt.Sprintf("api error %d", e.StatusCode)
}

// AuthError is terminal: invalid credentials or a failed/expired refresh.
// Observing one forces the session back to logged-out.
type AuthError struct {
	Reason string
	Err    error
}

func (e *AuthError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("auth: %s: %v", e.Reason, e.Err)
	}
	return "auth: " + e.Reason
}

func (e *AuthError) Unwrap() error { return e.Err }

// NetworkError marks an unreachable host or timed-out request. It never
// triggers the refresh protocol.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network: %s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// ValidationError is a client-side input rejection that never reaches the
// transport.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

func IsNetworkError(err error) bool {
	var netErr *NetworkError
	return errors.As(err, &netErr)
}

func IsAuthError(err error) bool {
	var authErr *AuthError
	return errors.As(err, &authErr)
}

// IsUnauthorized reports whether err is an APIError with status 401.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized
}

// IsAuthorizationFailure reports whether err carries a 401 or 403 status.
// Retrying these cannot succeed without a credential change.
func IsAuthorizationFailure(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return IsAuthError(err)
	}
	return apiErr.StatusCode == http.StatusUnauthorized || apiErr.StatusCode == http.StatusForbidden
}

// StatusCode extracts the HTTP status from an APIError, or 0.
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}
