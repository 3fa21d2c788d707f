package service

import (
	"errors"

	"github.com/dtroode/townforge-client/internal/model"
)

// Fallback texts shown when the server gives no message of its own.
const (
	msgLoginFailed        = "login failed"
	msgSignupFailed       = "signup failed"
	msgVerifyFailed       = "email verification failed"
	msgSignupPending      = "account created, check your email to verify it before logging in"
	msgEmailVerified      = "email verified, you are now logged in"
	msgInventoryFailed    = "failed to load inventory"
	msgBaseFailed         = "failed to establish base"
	msgAdminLoginFailed   = "admin login failed"
	msgSessionExpired     = "session expired, please log in again"
	msgInvalidCredentials = "invalid email or password"
	msgUnavailable        = "server is unavailable, try again later"
	msgMalformed          = "unexpected response from server"
	msgCancelled          = "request timed out or was cancelled"
	msgAdminRequired      = "admin login required"
)

// errorMessage maps err to the text a store records in its error field.
// Server-provided messages win; fallback covers everything unclassified.
func errorMessage(err error, fallback string) string {
	var httpErr *model.HTTPError
	switch {
	case errors.As(err, &httpErr) && httpErr.Message != "":
		return httpErr.Message
	case errors.Is(err, model.ErrUnauthorized):
		return msgSessionExpired
	case errors.Is(err, model.ErrInvalidCredentials):
		return msgInvalidCredentials
	case errors.Is(err, model.ErrServerUnavailable):
		return msgUnavailable
	case errors.Is(err, model.ErrMalformedResponse):
		return msgMalformed
	case errors.Is(err, model.ErrCancelled):
		return msgCancelled
	case errors.Is(err, model.ErrMissingAdminCredential):
		return msgAdminRequired
	case errors.Is(err, model.ErrValidation):
		return err.Error()
	default:
		return fallback
	}
}
