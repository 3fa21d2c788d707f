package mock

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dtroode/townforge-client/internal/model"
	"github.com/dtroode/townforge-client/internal/testutil"
	"github.com/dtroode/townforge-client/internal/token"
)

func newProvider(delay time.Duration) (*Provider, *token.JWT) {
	tokens := token.NewJWT("devsecret")
	return NewProvider(delay, tokens, testutil.MakeNoopLogger()), tokens
}

func TestProvider_LoginIsDeterministic(t *testing.T) {
	p, tokens := newProvider(0)

	for _, email := range []string{"a@b.c", "other@b.c"} {
		res, err := p.Login(context.Background(), model.Credentials{Email: email, Password: "whatever"})
		require.NoError(t, err)
		require.NotNil(t, res.User)
		assert.Equal(t, model.User{ID: MockUserID, Email: email, Name: MockUserName}, *res.User)

		user, err := tokens.ParseSessionToken(res.Token)
		require.NoError(t, err)
		assert.Equal(t, *res.User, user)
	}
}

func TestProvider_LoginWaitsForDelay(t *testing.T) {
	p, _ := newProvider(30 * time.Millisecond)

	start := time.Now()
	_, err := p.Login(context.Background(), model.Credentials{Email: "a@b.c"})
	require.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)
}

func TestProvider_CancelledDuringDelay(t *testing.T) {
	p, _ := newProvider(time.Minute)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := p.Login(ctx, model.Credentials{Email: "a@b.c"})
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrCancelled)
}

func TestProvider_SignupDoesNotAuthenticate(t *testing.T) {
	p, _ := newProvider(0)

	res, err := p.Signup(context.Background(), model.SignupRequest{Email: "new@b.c", Password: "pw", Name: "new"})
	require.NoError(t, err)
	assert.Empty(t, res.Token)
	assert.Nil(t, res.User)
	assert.Equal(t, "new@b.c", res.Email)
	assert.Contains(t, res.Message, "new@b.c")
}

func TestProvider_VerifyEmail(t *testing.T) {
	p, tokens := newProvider(0)
	verification, err := tokens.GenerateVerificationToken("new@b.c", "new")
	require.NoError(t, err)

	first, err := p.VerifyEmail(context.Background(), verification)
	require.NoError(t, err)
	require.NotNil(t, first.User)
	assert.Equal(t, "new@b.c", first.User.Email)
	assert.Equal(t, "new", first.User.Name)
	assert.NotEmpty(t, first.Token)

	second, err := p.VerifyEmail(context.Background(), verification)
	require.NoError(t, err)
	assert.Equal(t, first.User.ID, second.User.ID)
}

func TestProvider_VerifyEmailRejectsGarbage(t *testing.T) {
	p, _ := newProvider(0)

	_, err := p.VerifyEmail(context.Background(), "garbage")
	var httpErr *model.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, 404, httpErr.StatusCode)
}
