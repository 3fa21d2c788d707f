package model

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrMissingAdminCredential is returned before any network call when an
	// admin-scoped request is made without a stored admin token.
	ErrMissingAdminCredential = errors.New("admin credential is missing")
	// ErrInvalidCredentials means the server accepted the login call but
	// returned neither a token nor a user.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrMalformedResponse means a response lacked a field it must carry.
	ErrMalformedResponse = errors.New("malformed response")
	// ErrServerUnavailable wraps transport failures.
	ErrServerUnavailable = errors.New("server unavailable")
	// ErrCancelled wraps deadline expiry and caller cancellation.
	ErrCancelled = errors.New("request cancelled")
	// ErrUnauthorized matches HTTP 401 responses.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrValidation marks input rejected locally.
	ErrValidation = errors.New("validation failed")
)

// HTTPError is a non-2xx response from the game server.
type HTTPError struct {
	StatusCode int
	// Message is the server-provided error text, if any.
	Message string
	Method  string
	Path    string
}

func (e *HTTPError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s %s: status %d", e.Method, e.Path, e.StatusCode)
}

// Is makes errors.Is(err, ErrUnauthorized) hold for 401 responses.
func (e *HTTPError) Is(target error) bool {
	return target == ErrUnauthorized && e.StatusCode == http.StatusUnauthorized
}
