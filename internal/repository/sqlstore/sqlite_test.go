package sqlstore

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dtroode/townforge-client/internal/config"
	"github.com/dtroode/townforge-client/internal/testutil"
)

func TestNewConnection_SQLiteRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "markers.db")

	conn, err := NewConnection(ctx, config.DriverSQLite, path, testutil.MakeNoopLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	assert.Equal(t, DialectSQLite, conn.Dialect())

	repo := NewKVRepository(conn)
	require.NoError(t, repo.SetMany(ctx, map[string]string{"token": "t1", "user": `{"id":"1"}`}))
	require.NoError(t, repo.SetMany(ctx, map[string]string{"token": "t2"}))

	got, err := repo.GetMany(ctx, "token", "user", "adminToken")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"token": "t2", "user": `{"id":"1"}`}, got)

	require.NoError(t, repo.DeleteMany(ctx, "token", "user"))
	got, err = repo.GetMany(ctx, "token", "user")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestNewConnection_ReopenKeepsMarkers(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "markers.db")

	conn, err := NewConnection(ctx, config.DriverSQLite, path, testutil.MakeNoopLogger())
	require.NoError(t, err)
	require.NoError(t, NewKVRepository(conn).SetMany(ctx, map[string]string{"adminToken": "secret"}))
	require.NoError(t, conn.Close())

	conn, err = NewConnection(ctx, config.DriverSQLite, path, testutil.MakeNoopLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	got, err := NewKVRepository(conn).GetMany(ctx, "adminToken")
	require.NoError(t, err)
	assert.Equal(t, "secret", got["adminToken"])
}

func TestNewConnection_UnsupportedDriver(t *testing.T) {
	conn, err := NewConnection(context.Background(), "mongo", "x", testutil.MakeNoopLogger())
	require.Error(t, err)
	assert.Nil(t, conn)
}
