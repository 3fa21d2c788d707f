package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/dtroode/townforge-client/internal/httpclient"
	"github.com/dtroode/townforge-client/internal/logger"
	"github.com/dtroode/townforge-client/internal/model"
)

// SessionMarkers is the part of the marker manager the session store writes through.
type SessionMarkers interface {
	Snapshot(ctx context.Context) (model.Markers, error)
	SetPlayer(ctx context.Context, token string, user model.User) error
	UpdatePlayerUser(ctx context.Context, user model.User) error
	ClearPlayer(ctx context.Context) error
}

// Session is the player session store.
//
// Operations record failures in the session state and report success with a
// boolean. The provider is called without holding the lock, so a forced
// logout triggered by that call can update the state meanwhile.
type Session struct {
	provider model.AuthProvider
	markers  SessionMarkers
	logger   *logger.Logger

	mu    sync.Mutex
	state model.Session
}

func NewSession(provider model.AuthProvider, markers SessionMarkers, logger *logger.Logger) *Session {
	return &Session{
		provider: provider,
		markers:  markers,
		logger:   logger,
	}
}

// Login authenticates with email and password and persists the session marker.
func (s *Session) Login(ctx context.Context, email, password string) bool {
	s.logger.Debug("Session service: login started", "email", email)
	s.begin()

	result, err := s.provider.Login(ctx, model.Credentials{Email: email, Password: password})
	if err == nil {
		err = s.persist(ctx, result)
	}
	if err != nil {
		s.logger.Info("Session service: login failed",
			"email", email,
			"error", err.Error())
		s.fail(errorMessage(err, msgLoginFailed))
		return false
	}

	s.authenticate(*result.User, "")
	s.logger.Info("Session service: logged in", "user_id", result.User.ID)
	return true
}

// Signup registers a new account. The session stays unauthenticated until
// the email address is verified.
func (s *Session) Signup(ctx context.Context, email, password, name string) bool {
	if name == "" {
		name = model.DefaultName(email)
	}
	s.logger.Debug("Session service: signup started", "email", email)
	s.begin()

	result, err := s.provider.Signup(ctx, model.SignupRequest{Email: email, Password: password, Name: name})
	if err != nil {
		s.logger.Info("Session service: signup failed",
			"email", email,
			"error", err.Error())
		s.fail(errorMessage(err, msgSignupFailed))
		return false
	}

	if result.Token != "" || result.User != nil {
		s.logger.Debug("Session service: ignoring credentials returned by signup", "email", email)
	}

	message := result.Message
	if message == "" {
		message = msgSignupPending
	}

	s.mu.Lock()
	s.state.Loading = false
	s.state.Status = statusFor(s.state.User)
	s.setSuccess(message)
	s.mu.Unlock()

	s.logger.Info("Session service: signup pending verification", "email", email)
	return true
}

// VerifyEmail completes a signup with the token from the verification mail
// and logs the player in.
func (s *Session) VerifyEmail(ctx context.Context, token string) bool {
	s.begin()

	if token == "" {
		s.fail(errorMessage(fmt.Errorf("%w: verification token is required", model.ErrValidation), msgVerifyFailed))
		return false
	}

	result, err := s.provider.VerifyEmail(ctx, token)
	if err == nil {
		err = s.persist(ctx, result)
	}
	if err != nil {
		s.logger.Info("Session service: email verification failed", "error", err.Error())
		s.fail(errorMessage(err, msgVerifyFailed))
		return false
	}

	message := result.Message
	if message == "" {
		message = msgEmailVerified
	}
	s.authenticate(*result.User, message)
	s.logger.Info("Session service: email verified", "user_id", result.User.ID)
	return true
}

// Logout clears the persisted marker and the in-memory session. The in-memory
// session is cleared even when the marker write fails.
func (s *Session) Logout(ctx context.Context) error {
	s.mu.Lock()
	s.state = model.Session{}
	s.mu.Unlock()

	if err := s.markers.ClearPlayer(ctx); err != nil {
		s.logger.Error("Session service: failed to clear session marker", "error", err.Error())
		return fmt.Errorf("failed to clear session marker: %w", err)
	}

	s.logger.Info("Session service: logged out")
	return nil
}

// RestoreSession rehydrates the session from the persisted marker and reports
// whether a player is logged in afterwards. When the provider can refresh
// identities the user is re-read from the server; a failed refresh keeps the
// session.
func (s *Session) RestoreSession(ctx context.Context) bool {
	markers, err := s.markers.Snapshot(ctx)
	if err != nil {
		s.logger.Error("Session service: failed to read session marker", "error", err.Error())
		return false
	}

	if !markers.Player.Present() {
		if markers.Player.Token != "" || markers.Player.User != "" {
			s.logger.Warn("Session service: discarding incomplete session marker")
			s.discardMarker(ctx)
		}
		return false
	}

	user, err := markers.Player.DecodeUser()
	if err != nil {
		s.logger.Warn("Session service: discarding unreadable session marker", "error", err.Error())
		s.discardMarker(ctx)
		return false
	}

	s.mu.Lock()
	s.state.User = &user
	s.state.IsAuthenticated = true
	s.state.Status = model.StateAuthenticated
	s.mu.Unlock()
	s.logger.Debug("Session service: session restored", "user_id", user.ID)

	refresher, ok := s.provider.(model.IdentityRefresher)
	if !ok {
		return true
	}

	fresh, err := refresher.CurrentUser(ctx)
	if err != nil {
		s.logger.Warn("Session service: failed to refresh user, keeping restored session",
			"user_id", user.ID,
			"error", err.Error())
		return s.Snapshot().IsAuthenticated
	}

	s.mu.Lock()
	stillAuthenticated := s.state.User != nil
	if stillAuthenticated {
		s.state.User = &fresh
	}
	s.mu.Unlock()

	if !stillAuthenticated {
		return false
	}
	if err := s.markers.UpdatePlayerUser(ctx, fresh); err != nil {
		s.logger.Warn("Session service: failed to store refreshed user", "error", err.Error())
	}
	return true
}

// HandleUnauthorized drops the in-memory session after the HTTP client
// cleared the persisted marker on a 401 response.
func (s *Session) HandleUnauthorized(ev httpclient.UnauthorizedEvent) {
	s.mu.Lock()
	wasAuthenticated := s.state.User != nil
	s.state.User = nil
	s.state.IsAuthenticated = false
	if !s.state.Loading {
		s.state.Status = model.StateAnonymous
	}
	if wasAuthenticated {
		s.setError(msgSessionExpired)
	}
	s.mu.Unlock()

	s.logger.Info("Session service: forced logout",
		"method", ev.Method,
		"path", ev.Path,
		"request_id", ev.RequestID)
}

// Snapshot returns a copy of the current session state.
func (s *Session) Snapshot() model.Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := s.state
	if s.state.User != nil {
		u := *s.state.User
		out.User = &u
	}
	return out
}

// persist validates an auth result and writes the session marker.
func (s *Session) persist(ctx context.Context, result model.AuthResult) error {
	switch {
	case result.Token == "" && result.User == nil:
		return model.ErrInvalidCredentials
	case result.Token == "":
		return fmt.Errorf("%w: token missing", model.ErrMalformedResponse)
	case result.User == nil:
		return fmt.Errorf("%w: user missing", model.ErrMalformedResponse)
	}

	if err := s.markers.SetPlayer(ctx, result.Token, *result.User); err != nil {
		return fmt.Errorf("failed to store session marker: %w", err)
	}
	return nil
}

func (s *Session) discardMarker(ctx context.Context) {
	if err := s.markers.ClearPlayer(ctx); err != nil {
		s.logger.Error("Session service: failed to clear session marker", "error", err.Error())
	}
}

func (s *Session) begin() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.Loading = true
	s.state.Error = ""
	s.state.SuccessMessage = ""
	s.state.Status = model.StateAuthenticating
}

func (s *Session) authenticate(user model.User, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.User = &user
	s.state.IsAuthenticated = true
	s.state.Loading = false
	s.state.Status = model.StateAuthenticated
	if message != "" {
		s.setSuccess(message)
	}
}

func (s *Session) fail(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.Loading = false
	s.state.Status = statusFor(s.state.User)
	s.setError(message)
}

// setError and setSuccess keep the two messages mutually exclusive. Callers hold mu.
func (s *Session) setError(message string) {
	s.state.Error = message
	s.state.SuccessMessage = ""
}

func (s *Session) setSuccess(message string) {
	s.state.SuccessMessage = message
	s.state.Error = ""
}

func statusFor(user *model.User) model.State {
	if user != nil {
		return model.StateAuthenticated
	}
	return model.StateAnonymous
}
