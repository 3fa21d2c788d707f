package model

import (
	"context"
	"strings"
)

// User is the identity of a player as returned by the game server.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Credentials are the email/password pair used to log in.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignupRequest describes a new account registration.
type SignupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

// DefaultName returns the local part of email, used when no display name is given.
func DefaultName(email string) string {
	local, _, _ := strings.Cut(email, "@")
	return local
}

// AuthResult is the outcome of a login or email verification.
// Token and User may be missing when the server misbehaves; callers validate.
type AuthResult struct {
	Token   string
	User    *User
	Message string
}

// SignupResult is the outcome of a registration. Token and User are normally
// absent because the account must be verified before first login.
type SignupResult struct {
	Message string
	Email   string
	Token   string
	User    *User
}

// AuthProvider authenticates players. The session store receives one
// implementation at construction time.
type AuthProvider interface {
	Login(ctx context.Context, credentials Credentials) (AuthResult, error)
	Signup(ctx context.Context, req SignupRequest) (SignupResult, error)
	VerifyEmail(ctx context.Context, token string) (AuthResult, error)
}

// IdentityRefresher is implemented by providers able to re-read the current
// user from the server.
type IdentityRefresher interface {
	CurrentUser(ctx context.Context) (User, error)
}
