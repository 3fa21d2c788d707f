package service

import (
	"context"
	"errors"
	"math/rand"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dtroode/townforge-client/internal/httpclient"
	"github.com/dtroode/townforge-client/internal/marker"
	"github.com/dtroode/townforge-client/internal/mocks"
	"github.com/dtroode/townforge-client/internal/model"
	"github.com/dtroode/townforge-client/internal/repository/memory"
	"github.com/dtroode/townforge-client/internal/testutil"
)

func newMarkers() *marker.Manager {
	return marker.NewManager(memory.NewKVRepository(), testutil.MakeNoopLogger())
}

func assertSessionInvariants(t *testing.T, s model.Session) {
	t.Helper()
	assert.Equal(t, s.User != nil, s.IsAuthenticated, "authenticated flag must follow user presence")
	assert.False(t, s.Error != "" && s.SuccessMessage != "", "error and success message are exclusive")
}

func TestSession_LoginSuccess(t *testing.T) {
	ctx := context.Background()
	provider := &mocks.AuthProvider{}
	markers := newMarkers()

	provider.On("Login", mock.Anything, model.Credentials{Email: "a@b.c", Password: "pw"}).
		Return(model.AuthResult{Token: "t1", User: &model.User{ID: "1"}}, nil).Once()

	s := NewSession(provider, markers, testutil.MakeNoopLogger())
	require.True(t, s.Login(ctx, "a@b.c", "pw"))

	state := s.Snapshot()
	assertSessionInvariants(t, state)
	assert.Equal(t, model.StateAuthenticated, state.Status)
	assert.False(t, state.Loading)
	require.NotNil(t, state.User)
	assert.Equal(t, "1", state.User.ID)

	snap, err := markers.Snapshot(ctx)
	require.NoError(t, err)
	assert.True(t, snap.Player.Present())
	assert.Equal(t, "t1", snap.Player.Token)
	stored, err := snap.Player.DecodeUser()
	require.NoError(t, err)
	assert.Equal(t, "1", stored.ID)

	provider.AssertExpectations(t)
}

func TestSession_LoginRejectsIncompleteResults(t *testing.T) {
	tests := []struct {
		name    string
		result  model.AuthResult
		wantErr string
	}{
		{
			name:    "neither token nor user",
			result:  model.AuthResult{},
			wantErr: msgInvalidCredentials,
		},
		{
			name:    "token without user",
			result:  model.AuthResult{Token: "t1"},
			wantErr: msgMalformed,
		},
		{
			name:    "user without token",
			result:  model.AuthResult{User: &model.User{ID: "1"}},
			wantErr: msgMalformed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			provider := &mocks.AuthProvider{}
			markers := newMarkers()
			provider.On("Login", mock.Anything, mock.Anything).Return(tt.result, nil).Once()

			s := NewSession(provider, markers, testutil.MakeNoopLogger())
			assert.False(t, s.Login(ctx, "a@b.c", "pw"))

			state := s.Snapshot()
			assertSessionInvariants(t, state)
			assert.Equal(t, tt.wantErr, state.Error)
			assert.Equal(t, model.StateAnonymous, state.Status)
			assert.False(t, state.IsAuthenticated)

			snap, err := markers.Snapshot(ctx)
			require.NoError(t, err)
			assert.Empty(t, snap.Player.Token)
			assert.Empty(t, snap.Player.User)
		})
	}
}

func TestSession_LoginProviderErrors(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		wantErr string
	}{
		{
			name:    "server message is shown verbatim",
			err:     &model.HTTPError{StatusCode: http.StatusBadRequest, Message: "wrong password"},
			wantErr: "wrong password",
		},
		{
			name:    "status without message",
			err:     &model.HTTPError{StatusCode: http.StatusInternalServerError},
			wantErr: msgLoginFailed,
		},
		{
			name:    "server unavailable",
			err:     errors.Join(model.ErrServerUnavailable, errors.New("dial tcp: refused")),
			wantErr: msgUnavailable,
		},
		{
			name:    "cancelled",
			err:     model.ErrCancelled,
			wantErr: msgCancelled,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := &mocks.AuthProvider{}
			provider.On("Login", mock.Anything, mock.Anything).Return(model.AuthResult{}, tt.err).Once()

			s := NewSession(provider, newMarkers(), testutil.MakeNoopLogger())
			assert.False(t, s.Login(context.Background(), "a@b.c", "pw"))

			state := s.Snapshot()
			assertSessionInvariants(t, state)
			assert.Equal(t, tt.wantErr, state.Error)
			assert.False(t, state.Loading)
		})
	}
}

func TestSession_LoginFailsWhenMarkerWriteFails(t *testing.T) {
	provider := &mocks.AuthProvider{}
	provider.On("Login", mock.Anything, mock.Anything).
		Return(model.AuthResult{Token: "t1", User: &model.User{ID: "1"}}, nil).Once()

	markers := marker.NewManager(failingKV{}, testutil.MakeNoopLogger())
	s := NewSession(provider, markers, testutil.MakeNoopLogger())

	assert.False(t, s.Login(context.Background(), "a@b.c", "pw"))
	state := s.Snapshot()
	assertSessionInvariants(t, state)
	assert.False(t, state.IsAuthenticated)
	assert.Equal(t, msgLoginFailed, state.Error)
}

func TestSession_SignupNeverAuthenticates(t *testing.T) {
	tests := []struct {
		name     string
		email    string
		userName string
		wantName string
		result   model.SignupResult
		wantMsg  string
	}{
		{
			name:     "default name and message",
			email:    "alice@example.com",
			wantName: "alice",
			result:   model.SignupResult{Email: "alice@example.com"},
			wantMsg:  msgSignupPending,
		},
		{
			name:     "explicit name and server message",
			email:    "bob@example.com",
			userName: "Bobby",
			wantName: "Bobby",
			result:   model.SignupResult{Message: "check your inbox"},
			wantMsg:  "check your inbox",
		},
		{
			name:     "credentials in the response are ignored",
			email:    "carol@example.com",
			wantName: "carol",
			result:   model.SignupResult{Token: "t2", User: &model.User{ID: "2"}},
			wantMsg:  msgSignupPending,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			provider := &mocks.AuthProvider{}
			markers := newMarkers()
			provider.On("Signup", mock.Anything, model.SignupRequest{
				Email:    tt.email,
				Password: "pw",
				Name:     tt.wantName,
			}).Return(tt.result, nil).Once()

			s := NewSession(provider, markers, testutil.MakeNoopLogger())
			require.True(t, s.Signup(ctx, tt.email, "pw", tt.userName))

			state := s.Snapshot()
			assertSessionInvariants(t, state)
			assert.False(t, state.IsAuthenticated)
			assert.Equal(t, model.StateAnonymous, state.Status)
			assert.Equal(t, tt.wantMsg, state.SuccessMessage)

			snap, err := markers.Snapshot(ctx)
			require.NoError(t, err)
			assert.False(t, snap.Player.Present())
			provider.AssertExpectations(t)
		})
	}
}

func TestSession_SignupConflict(t *testing.T) {
	provider := &mocks.AuthProvider{}
	provider.On("Signup", mock.Anything, mock.Anything).
		Return(model.SignupResult{}, &model.HTTPError{StatusCode: http.StatusConflict, Message: "email already in use"}).Once()

	s := NewSession(provider, newMarkers(), testutil.MakeNoopLogger())
	assert.False(t, s.Signup(context.Background(), "dup@example.com", "pw", ""))
	assert.Equal(t, "email already in use", s.Snapshot().Error)
}

func TestSession_MessagesAreExclusive(t *testing.T) {
	ctx := context.Background()
	provider := &mocks.AuthProvider{}
	provider.On("Signup", mock.Anything, mock.Anything).Return(model.SignupResult{Message: "sent"}, nil)
	provider.On("Login", mock.Anything, mock.Anything).Return(model.AuthResult{}, nil)

	s := NewSession(provider, newMarkers(), testutil.MakeNoopLogger())

	require.True(t, s.Signup(ctx, "a@b.c", "pw", ""))
	assert.Equal(t, "sent", s.Snapshot().SuccessMessage)

	require.False(t, s.Login(ctx, "a@b.c", "pw"))
	state := s.Snapshot()
	assert.NotEmpty(t, state.Error)
	assert.Empty(t, state.SuccessMessage)

	require.True(t, s.Signup(ctx, "a@b.c", "pw", ""))
	state = s.Snapshot()
	assert.Empty(t, state.Error)
	assert.Equal(t, "sent", state.SuccessMessage)
}

func TestSession_VerifyEmail(t *testing.T) {
	ctx := context.Background()
	provider := &mocks.AuthProvider{}
	markers := newMarkers()
	provider.On("VerifyEmail", mock.Anything, "v-token").
		Return(model.AuthResult{Token: "t9", User: &model.User{ID: "9", Email: "n@b.c"}}, nil).Once()

	s := NewSession(provider, markers, testutil.MakeNoopLogger())
	require.True(t, s.VerifyEmail(ctx, "v-token"))

	state := s.Snapshot()
	assertSessionInvariants(t, state)
	assert.True(t, state.IsAuthenticated)
	assert.Equal(t, msgEmailVerified, state.SuccessMessage)

	snap, err := markers.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, "t9", snap.Player.Token)
}

func TestSession_VerifyEmailRequiresToken(t *testing.T) {
	provider := &mocks.AuthProvider{}
	s := NewSession(provider, newMarkers(), testutil.MakeNoopLogger())

	assert.False(t, s.VerifyEmail(context.Background(), ""))
	assert.Contains(t, s.Snapshot().Error, "verification token is required")
	provider.AssertNotCalled(t, "VerifyEmail", mock.Anything, mock.Anything)
}

func TestSession_LogoutIsIdempotent(t *testing.T) {
	ctx := context.Background()
	provider := &mocks.AuthProvider{}
	markers := newMarkers()
	provider.On("Login", mock.Anything, mock.Anything).
		Return(model.AuthResult{Token: "t1", User: &model.User{ID: "1"}}, nil).Once()

	s := NewSession(provider, markers, testutil.MakeNoopLogger())
	require.True(t, s.Login(ctx, "a@b.c", "pw"))
	require.NoError(t, markers.SetAdmin(ctx, "admin"))

	for range 2 {
		require.NoError(t, s.Logout(ctx))
		state := s.Snapshot()
		assertSessionInvariants(t, state)
		assert.Equal(t, model.Session{}, state)
	}

	snap, err := markers.Snapshot(ctx)
	require.NoError(t, err)
	assert.False(t, snap.Player.Present())
	assert.Equal(t, "admin", snap.Admin.Token)
}

func TestSession_RestoreSession(t *testing.T) {
	ctx := context.Background()

	t.Run("nothing stored", func(t *testing.T) {
		s := NewSession(&mocks.AuthProvider{}, newMarkers(), testutil.MakeNoopLogger())
		assert.False(t, s.RestoreSession(ctx))
		assert.Equal(t, model.StateAnonymous, s.Snapshot().Status)
	})

	t.Run("stored marker without refresh capability", func(t *testing.T) {
		markers := newMarkers()
		require.NoError(t, markers.SetPlayer(ctx, "t1", model.User{ID: "1", Name: "old"}))

		s := NewSession(&mocks.AuthProvider{}, markers, testutil.MakeNoopLogger())
		assert.True(t, s.RestoreSession(ctx))

		state := s.Snapshot()
		assertSessionInvariants(t, state)
		assert.Equal(t, model.StateAuthenticated, state.Status)
		assert.Equal(t, "old", state.User.Name)
	})

	t.Run("refresh updates user and marker", func(t *testing.T) {
		markers := newMarkers()
		require.NoError(t, markers.SetPlayer(ctx, "t1", model.User{ID: "1", Name: "old"}))

		provider := &mocks.RefreshingAuthProvider{}
		provider.On("CurrentUser", mock.Anything).Return(model.User{ID: "1", Name: "new"}, nil).Once()

		s := NewSession(provider, markers, testutil.MakeNoopLogger())
		assert.True(t, s.RestoreSession(ctx))
		assert.Equal(t, "new", s.Snapshot().User.Name)

		snap, err := markers.Snapshot(ctx)
		require.NoError(t, err)
		stored, err := snap.Player.DecodeUser()
		require.NoError(t, err)
		assert.Equal(t, "new", stored.Name)
		assert.Equal(t, "t1", snap.Player.Token)
	})

	t.Run("refresh failure keeps the session", func(t *testing.T) {
		markers := newMarkers()
		require.NoError(t, markers.SetPlayer(ctx, "t1", model.User{ID: "1", Name: "old"}))

		provider := &mocks.RefreshingAuthProvider{}
		provider.On("CurrentUser", mock.Anything).Return(model.User{}, model.ErrServerUnavailable).Once()

		s := NewSession(provider, markers, testutil.MakeNoopLogger())
		assert.True(t, s.RestoreSession(ctx))

		state := s.Snapshot()
		assertSessionInvariants(t, state)
		assert.True(t, state.IsAuthenticated)
		assert.Equal(t, "old", state.User.Name)
	})

	t.Run("unreadable user snapshot is discarded", func(t *testing.T) {
		kv := memory.NewKVRepository()
		require.NoError(t, kv.SetMany(ctx, map[string]string{model.KeyToken: "t1", model.KeyUser: "{not json"}))
		markers := marker.NewManager(kv, testutil.MakeNoopLogger())

		s := NewSession(&mocks.AuthProvider{}, markers, testutil.MakeNoopLogger())
		assert.False(t, s.RestoreSession(ctx))

		values, err := kv.GetMany(ctx, model.KeyToken, model.KeyUser)
		require.NoError(t, err)
		assert.Empty(t, values)
	})

	t.Run("incomplete marker is discarded", func(t *testing.T) {
		kv := memory.NewKVRepository()
		require.NoError(t, kv.SetMany(ctx, map[string]string{model.KeyToken: "t1"}))
		markers := marker.NewManager(kv, testutil.MakeNoopLogger())

		s := NewSession(&mocks.AuthProvider{}, markers, testutil.MakeNoopLogger())
		assert.False(t, s.RestoreSession(ctx))

		values, err := kv.GetMany(ctx, model.KeyToken)
		require.NoError(t, err)
		assert.Empty(t, values)
	})
}

func TestSession_HandleUnauthorized(t *testing.T) {
	ctx := context.Background()
	provider := &mocks.AuthProvider{}
	provider.On("Login", mock.Anything, mock.Anything).
		Return(model.AuthResult{Token: "t1", User: &model.User{ID: "1"}}, nil).Once()

	s := NewSession(provider, newMarkers(), testutil.MakeNoopLogger())
	require.True(t, s.Login(ctx, "a@b.c", "pw"))

	s.HandleUnauthorized(httpclient.UnauthorizedEvent{Method: http.MethodGet, Path: "/game/my/inventory"})

	state := s.Snapshot()
	assertSessionInvariants(t, state)
	assert.False(t, state.IsAuthenticated)
	assert.Equal(t, model.StateAnonymous, state.Status)
	assert.Equal(t, msgSessionExpired, state.Error)
}

func TestSession_InvariantsHoldForRandomSequences(t *testing.T) {
	ctx := context.Background()
	provider := &mocks.AuthProvider{}
	provider.On("Login", mock.Anything, model.Credentials{Email: "ok@b.c", Password: "pw"}).
		Return(model.AuthResult{Token: "t1", User: &model.User{ID: "1"}}, nil)
	provider.On("Login", mock.Anything, model.Credentials{Email: "empty@b.c", Password: "pw"}).
		Return(model.AuthResult{}, nil)
	provider.On("Login", mock.Anything, model.Credentials{Email: "down@b.c", Password: "pw"}).
		Return(model.AuthResult{}, model.ErrServerUnavailable)
	provider.On("Signup", mock.Anything, mock.Anything).
		Return(model.SignupResult{}, nil)

	markers := newMarkers()
	s := NewSession(provider, markers, testutil.MakeNoopLogger())
	rng := rand.New(rand.NewSource(42))

	for step := range 500 {
		switch rng.Intn(6) {
		case 0:
			s.Login(ctx, "ok@b.c", "pw")
		case 1:
			s.Login(ctx, "empty@b.c", "pw")
		case 2:
			s.Login(ctx, "down@b.c", "pw")
		case 3:
			s.Signup(ctx, "new@b.c", "pw", "")
		case 4:
			require.NoError(t, s.Logout(ctx))
		case 5:
			require.NoError(t, markers.ClearPlayer(ctx))
			s.HandleUnauthorized(httpclient.UnauthorizedEvent{})
		}

		state := s.Snapshot()
		assertSessionInvariants(t, state)
		assert.False(t, state.Loading, "step %d", step)

		snap, err := markers.Snapshot(ctx)
		require.NoError(t, err)
		assert.Equal(t, snap.Player.Present(), state.IsAuthenticated, "step %d", step)
	}
}

type failingKV struct{}

func (failingKV) GetMany(context.Context, ...string) (map[string]string, error) {
	return nil, errors.New("storage offline")
}

func (failingKV) SetMany(context.Context, map[string]string) error {
	return errors.New("storage offline")
}

func (failingKV) DeleteMany(context.Context, ...string) error {
	return errors.New("storage offline")
}
