// Package live implements AuthProvider against the game server's /auth endpoints.
package live

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/dtroode/townforge-client/internal/httpclient"
	"github.com/dtroode/townforge-client/internal/model"
)

// Ensure Provider implements the auth interfaces.
var (
	_ model.AuthProvider      = (*Provider)(nil)
	_ model.IdentityRefresher = (*Provider)(nil)
)

const (
	endpointLogin       = "/auth/login"
	endpointSignup      = "/auth/signup"
	endpointVerify      = "/auth/verify"
	endpointCurrentUser = "/auth/me"
)

// Requester sends API requests.
type Requester interface {
	Do(ctx context.Context, req httpclient.Request) (*httpclient.Response, error)
}

type Provider struct {
	client Requester
}

func NewProvider(client Requester) *Provider {
	return &Provider{client: client}
}

type authResponse struct {
	Token   string      `json:"token"`
	User    *model.User `json:"user"`
	Message string      `json:"message"`
	Email   string      `json:"email"`
}

func (p *Provider) Login(ctx context.Context, credentials model.Credentials) (model.AuthResult, error) {
	var resp authResponse
	if err := p.call(ctx, http.MethodPost, endpointLogin, nil, credentials, &resp); err != nil {
		return model.AuthResult{}, err
	}
	return model.AuthResult{Token: resp.Token, User: resp.User, Message: resp.Message}, nil
}

func (p *Provider) Signup(ctx context.Context, req model.SignupRequest) (model.SignupResult, error) {
	var resp authResponse
	if err := p.call(ctx, http.MethodPost, endpointSignup, nil, req, &resp); err != nil {
		return model.SignupResult{}, err
	}
	return model.SignupResult{
		Message: resp.Message,
		Email:   resp.Email,
		Token:   resp.Token,
		User:    resp.User,
	}, nil
}

func (p *Provider) VerifyEmail(ctx context.Context, token string) (model.AuthResult, error) {
	var resp authResponse
	if err := p.call(ctx, http.MethodGet, endpointVerify, url.Values{"token": {token}}, nil, &resp); err != nil {
		return model.AuthResult{}, err
	}
	return model.AuthResult{Token: resp.Token, User: resp.User, Message: resp.Message}, nil
}

// CurrentUser re-reads the logged-in user.
func (p *Provider) CurrentUser(ctx context.Context) (model.User, error) {
	var resp authResponse
	if err := p.call(ctx, http.MethodGet, endpointCurrentUser, nil, nil, &resp); err != nil {
		return model.User{}, err
	}
	if resp.User == nil {
		return model.User{}, fmt.Errorf("%w: user missing from %s", model.ErrMalformedResponse, endpointCurrentUser)
	}
	return *resp.User, nil
}

func (p *Provider) call(ctx context.Context, method, path string, query url.Values, body any, out *authResponse) error {
	resp, err := p.client.Do(ctx, httpclient.Request{
		Method: method,
		Path:   path,
		Query:  query,
		Body:   body,
	})
	if err != nil {
		return err
	}
	return resp.Decode(out)
}
