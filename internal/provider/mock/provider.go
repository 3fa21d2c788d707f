// Package mock provides an offline AuthProvider. It answers after a fixed
// delay with a synthesized identity so the client runs without a game server.
package mock

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dtroode/townforge-client/internal/logger"
	"github.com/dtroode/townforge-client/internal/model"
	"github.com/dtroode/townforge-client/internal/token"
)

// Ensure Provider implements the model.AuthProvider interface.
var _ model.AuthProvider = (*Provider)(nil)

// MockUserID is the identifier of every user produced by Login.
const MockUserID = "1"

// MockUserName is the display name of every user produced by Login.
const MockUserName = "Test User"

type Provider struct {
	delay  time.Duration
	tokens *token.JWT
	logger *logger.Logger
}

func NewProvider(delay time.Duration, tokens *token.JWT, logger *logger.Logger) *Provider {
	return &Provider{delay: delay, tokens: tokens, logger: logger}
}

// Login always succeeds with a fixed user carrying the given email.
func (p *Provider) Login(ctx context.Context, credentials model.Credentials) (model.AuthResult, error) {
	if err := p.wait(ctx); err != nil {
		return model.AuthResult{}, err
	}

	user := model.User{ID: MockUserID, Email: credentials.Email, Name: MockUserName}
	tok, err := p.tokens.GenerateSessionToken(user)
	if err != nil {
		return model.AuthResult{}, err
	}

	p.logger.Debug("Mock auth: login accepted", "email", credentials.Email)
	return model.AuthResult{Token: tok, User: &user}, nil
}

// Signup accepts any registration. The verification token that a real server
// would mail is written to the log instead.
func (p *Provider) Signup(ctx context.Context, req model.SignupRequest) (model.SignupResult, error) {
	if err := p.wait(ctx); err != nil {
		return model.SignupResult{}, err
	}

	verification, err := p.tokens.GenerateVerificationToken(req.Email, req.Name)
	if err != nil {
		return model.SignupResult{}, err
	}

	p.logger.Info("Mock auth: verification mail",
		"email", req.Email,
		"token", verification)

	return model.SignupResult{
		Message: fmt.Sprintf("verification email sent to %s", req.Email),
		Email:   req.Email,
	}, nil
}

// VerifyEmail accepts tokens produced by Signup. The user ID is derived from
// the email so repeated verifications yield the same identity.
func (p *Provider) VerifyEmail(ctx context.Context, verification string) (model.AuthResult, error) {
	if err := p.wait(ctx); err != nil {
		return model.AuthResult{}, err
	}

	email, name, err := p.tokens.ParseVerificationToken(strings.TrimSpace(verification))
	if err != nil {
		return model.AuthResult{}, &model.HTTPError{
			StatusCode: http.StatusNotFound,
			Message:    "invalid or expired verification token",
			Method:     http.MethodGet,
			Path:       "/auth/verify",
		}
	}

	user := model.User{
		ID:    uuid.NewSHA1(uuid.NameSpaceURL, []byte("mailto:"+email)).String(),
		Email: email,
		Name:  name,
	}
	tok, err := p.tokens.GenerateSessionToken(user)
	if err != nil {
		return model.AuthResult{}, err
	}

	return model.AuthResult{Token: tok, User: &user, Message: "email verified"}, nil
}

func (p *Provider) wait(ctx context.Context) error {
	if p.delay <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(p.delay)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("%w: %w", model.ErrCancelled, ctx.Err())
	}
}
