package navigation

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dtroode/townforge-client/internal/httpclient"
	"github.com/dtroode/townforge-client/internal/marker"
	"github.com/dtroode/townforge-client/internal/model"
	"github.com/dtroode/townforge-client/internal/repository/memory"
	"github.com/dtroode/townforge-client/internal/testutil"
)

type brokenMarkers struct{}

func (brokenMarkers) Snapshot(context.Context) (model.Markers, error) {
	return model.Markers{}, errors.New("storage offline")
}

func newManager() *marker.Manager {
	return marker.NewManager(memory.NewKVRepository(), testutil.MakeNoopLogger())
}

func TestNavigator_Navigate(t *testing.T) {
	ctx := context.Background()
	markers := newManager()
	nav := NewNavigator(markers, testutil.MakeNoopLogger())
	assert.Equal(t, PathEntry, nav.Current().Path)

	reached, err := nav.Navigate(ctx, "/base")
	require.NoError(t, err)
	assert.Equal(t, PathEntry, reached.Path)

	require.NoError(t, markers.SetPlayer(ctx, "t1", model.User{ID: "1"}))
	reached, err = nav.Navigate(ctx, "/base")
	require.NoError(t, err)
	assert.Equal(t, "/base", reached.Path)
	assert.Equal(t, "/base", nav.Current().Path)

	reached, err = nav.Navigate(ctx, "/admin/towns")
	require.NoError(t, err)
	assert.Equal(t, PathAdminLogin, reached.Path)
}

func TestNavigator_NavigateErrors(t *testing.T) {
	nav := NewNavigator(newManager(), testutil.MakeNoopLogger())
	_, err := nav.Navigate(context.Background(), "/nowhere")
	assert.ErrorIs(t, err, ErrUnknownRoute)
	assert.Equal(t, PathEntry, nav.Current().Path)

	nav = NewNavigator(brokenMarkers{}, testutil.MakeNoopLogger())
	_, err = nav.Navigate(context.Background(), "/base")
	assert.Error(t, err)
	assert.Equal(t, PathEntry, nav.Current().Path)
}

func TestNavigator_UnauthorizedResponseReturnsToEntry(t *testing.T) {
	ctx := context.Background()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	t.Cleanup(srv.Close)

	markers := newManager()
	client, err := httpclient.New(srv.URL, time.Second, srv.Client().Transport, markers, testutil.MakeNoopLogger())
	require.NoError(t, err)

	nav := NewNavigator(markers, testutil.MakeNoopLogger())
	unsubscribe := client.OnUnauthorized(nav.HandleUnauthorized)
	t.Cleanup(unsubscribe)

	require.NoError(t, markers.SetPlayer(ctx, "t1", model.User{ID: "1"}))
	_, err = nav.Navigate(ctx, "/market")
	require.NoError(t, err)

	paths := []string{"/game/my/inventory", "/game/bases", "/auth/me"}
	for _, p := range paths {
		require.NoError(t, markers.SetPlayer(ctx, "t1", model.User{ID: "1"}))
		_, err = nav.Navigate(ctx, "/market")
		require.NoError(t, err)

		_, err = client.Do(ctx, httpclient.Request{Path: p})
		require.ErrorIs(t, err, model.ErrUnauthorized)

		assert.Equal(t, PathEntry, nav.Current().Path, p)
		snap, err := markers.Snapshot(ctx)
		require.NoError(t, err)
		assert.Empty(t, snap.Player.Token, p)
		assert.Empty(t, snap.Player.User, p)
	}

	// Already at the entry route: stays there.
	_, err = client.Do(ctx, httpclient.Request{Path: "/game/my/inventory"})
	require.Error(t, err)
	assert.Equal(t, PathEntry, nav.Current().Path)
}

func TestNavigator_LoginScenario(t *testing.T) {
	ctx := context.Background()
	markers := newManager()
	nav := NewNavigator(markers, testutil.MakeNoopLogger())

	require.NoError(t, markers.SetPlayer(ctx, "t1", model.User{ID: "1"}))
	snap, err := markers.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, "t1", snap.Player.Token)

	reached, err := nav.Navigate(ctx, "/world-map")
	require.NoError(t, err)
	assert.Equal(t, "/world-map", reached.Path)
}
