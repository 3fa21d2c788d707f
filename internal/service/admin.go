package service

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/dtroode/townforge-client/internal/httpclient"
	"github.com/dtroode/townforge-client/internal/logger"
	"github.com/dtroode/townforge-client/internal/model"
)

const (
	endpointAdminLogin         = "/admin/login"
	endpointAdminUsers         = "/admin/users"
	endpointAdminPendingUsers  = "/admin/pending-users"
	endpointAdminTowns         = "/admin/towns"
	endpointResendVerification = "/auth/resend-verification"
)

// AdminMarkers is the part of the marker manager the admin store writes through.
type AdminMarkers interface {
	Snapshot(ctx context.Context) (model.Markers, error)
	SetAdmin(ctx context.Context, token string) error
	ClearAdmin(ctx context.Context) error
}

// AdminState is the admin login state.
type AdminState struct {
	Loading bool
	Error   string
}

// Admin is the administrator session and the admin API surface. Its marker
// lives independently of the player session.
type Admin struct {
	client  Requester
	markers AdminMarkers
	logger  *logger.Logger

	mu    sync.Mutex
	state AdminState
}

func NewAdmin(client Requester, markers AdminMarkers, logger *logger.Logger) *Admin {
	return &Admin{
		client:  client,
		markers: markers,
		logger:  logger,
	}
}

// Login exchanges the admin secret for an admin token and stores it.
func (a *Admin) Login(ctx context.Context, secret string) bool {
	a.mu.Lock()
	a.state = AdminState{Loading: true}
	a.mu.Unlock()

	err := a.login(ctx, secret)

	a.mu.Lock()
	defer a.mu.Unlock()
	a.state.Loading = false

	if err != nil {
		a.logger.Info("Admin service: login failed", "error", err.Error())
		a.state.Error = errorMessage(err, msgAdminLoginFailed)
		return false
	}

	a.logger.Info("Admin service: logged in")
	return true
}

func (a *Admin) login(ctx context.Context, secret string) error {
	if strings.TrimSpace(secret) == "" {
		return fmt.Errorf("%w: secret key is required", model.ErrValidation)
	}

	resp, err := a.client.Do(ctx, httpclient.Request{
		Method: http.MethodPost,
		Path:   endpointAdminLogin,
		Body:   map[string]string{"secret_key": secret},
		Scope:  httpclient.ScopeNone,
	})
	if err != nil {
		return err
	}

	var payload struct {
		Token string `json:"token"`
	}
	if err := resp.Decode(&payload); err != nil {
		return err
	}
	if payload.Token == "" {
		return fmt.Errorf("%w: token missing", model.ErrMalformedResponse)
	}

	if err := a.markers.SetAdmin(ctx, payload.Token); err != nil {
		return fmt.Errorf("failed to store admin marker: %w", err)
	}
	return nil
}

// Logout removes the admin marker. The player session is left alone.
func (a *Admin) Logout(ctx context.Context) error {
	a.mu.Lock()
	a.state = AdminState{}
	a.mu.Unlock()

	if err := a.markers.ClearAdmin(ctx); err != nil {
		return fmt.Errorf("failed to clear admin marker: %w", err)
	}
	a.logger.Info("Admin service: logged out")
	return nil
}

// IsAuthenticated reports whether an admin marker is stored.
func (a *Admin) IsAuthenticated(ctx context.Context) (bool, error) {
	markers, err := a.markers.Snapshot(ctx)
	if err != nil {
		return false, err
	}
	return markers.Admin.Present(), nil
}

// State returns the admin login state.
func (a *Admin) State() AdminState {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

func (a *Admin) ListUsers(ctx context.Context) ([]model.AdminUser, error) {
	var payload struct {
		Users []model.AdminUser `json:"users"`
	}
	if err := a.call(ctx, http.MethodGet, endpointAdminUsers, nil, &payload); err != nil {
		return nil, err
	}
	if payload.Users == nil {
		payload.Users = []model.AdminUser{}
	}
	return payload.Users, nil
}

func (a *Admin) GetUser(ctx context.Context, id string) (model.AdminUser, error) {
	var payload struct {
		User *model.AdminUser `json:"user"`
	}
	if err := a.call(ctx, http.MethodGet, endpointAdminUsers+"/"+url.PathEscape(id), nil, &payload); err != nil {
		return model.AdminUser{}, err
	}
	if payload.User == nil {
		return model.AdminUser{}, fmt.Errorf("%w: user missing", model.ErrMalformedResponse)
	}
	return *payload.User, nil
}

func (a *Admin) UpdateUser(ctx context.Context, id string, update model.UserUpdate) error {
	return a.call(ctx, http.MethodPut, endpointAdminUsers+"/"+url.PathEscape(id), update, nil)
}

func (a *Admin) DeleteUser(ctx context.Context, id string) error {
	return a.call(ctx, http.MethodDelete, endpointAdminUsers+"/"+url.PathEscape(id), nil, nil)
}

func (a *Admin) ListPendingUsers(ctx context.Context) ([]model.PendingUser, error) {
	var payload struct {
		PendingUsers []model.PendingUser `json:"pendingUsers"`
	}
	if err := a.call(ctx, http.MethodGet, endpointAdminPendingUsers, nil, &payload); err != nil {
		return nil, err
	}
	if payload.PendingUsers == nil {
		payload.PendingUsers = []model.PendingUser{}
	}
	return payload.PendingUsers, nil
}

// DeletePendingUser drops a registration identified by its verification token.
func (a *Admin) DeletePendingUser(ctx context.Context, token string) error {
	return a.call(ctx, http.MethodDelete, endpointAdminPendingUsers+"/"+url.PathEscape(token), nil, nil)
}

func (a *Admin) ResendVerification(ctx context.Context, email string) error {
	return a.call(ctx, http.MethodPost, endpointResendVerification, map[string]string{"email": email}, nil)
}

func (a *Admin) ListTowns(ctx context.Context) ([]model.Town, error) {
	var payload struct {
		Towns []model.Town `json:"towns"`
	}
	if err := a.call(ctx, http.MethodGet, endpointAdminTowns, nil, &payload); err != nil {
		return nil, err
	}
	if payload.Towns == nil {
		payload.Towns = []model.Town{}
	}
	return payload.Towns, nil
}

func (a *Admin) CreateTown(ctx context.Context, town model.Town) error {
	return a.call(ctx, http.MethodPost, endpointAdminTowns, town, nil)
}

func (a *Admin) UpdateTown(ctx context.Context, id string, town model.Town) error {
	return a.call(ctx, http.MethodPut, endpointAdminTowns+"/"+url.PathEscape(id), town, nil)
}

func (a *Admin) DeleteTown(ctx context.Context, id string) error {
	return a.call(ctx, http.MethodDelete, endpointAdminTowns+"/"+url.PathEscape(id), nil, nil)
}

// call sends an admin-scoped request and decodes the body into out when out is not nil.
func (a *Admin) call(ctx context.Context, method, path string, body, out any) error {
	resp, err := a.client.Do(ctx, httpclient.Request{
		Method: method,
		Path:   path,
		Body:   body,
		Scope:  httpclient.ScopeAdmin,
	})
	if err != nil {
		a.logger.Debug("Admin service: request failed",
			"method", method,
			"path", path,
			"error", err.Error())
		return err
	}
	if out == nil {
		return nil
	}
	return resp.Decode(out)
}
