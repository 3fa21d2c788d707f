package model

import (
	"context"
	"encoding/json"
	"fmt"
)

// Persisted marker keys.
const (
	KeyToken      = "token"
	KeyUser       = "user"
	KeyAdminToken = "adminToken"
)

// PlayerMarker is the persisted proof of a player login.
type PlayerMarker struct {
	Token string
	// User is the serialized user snapshot.
	User string
}

// Present reports whether both the token and the user snapshot are stored.
func (m PlayerMarker) Present() bool {
	return m.Token != "" && m.User != ""
}

// DecodeUser parses the stored user snapshot.
func (m PlayerMarker) DecodeUser() (User, error) {
	var u User
	if err := json.Unmarshal([]byte(m.User), &u); err != nil {
		return User{}, fmt.Errorf("failed to decode stored user: %w", err)
	}
	return u, nil
}

// AdminMarker is the persisted proof of an administrator login.
type AdminMarker struct {
	Token string
}

// Present reports whether the admin token is stored.
func (m AdminMarker) Present() bool {
	return m.Token != ""
}

// Markers is a consistent snapshot of every persisted marker.
type Markers struct {
	Player PlayerMarker
	Admin  AdminMarker
}

// MarkerChange describes a completed marker write.
type MarkerChange struct {
	Keys    []string
	Cleared bool
}

// KVStore is the persistent key/value storage behind the markers.
// SetMany and DeleteMany apply all keys atomically.
type KVStore interface {
	GetMany(ctx context.Context, keys ...string) (map[string]string, error)
	SetMany(ctx context.Context, values map[string]string) error
	DeleteMany(ctx context.Context, keys ...string) error
}

// MarkerStore reads and writes the persisted session markers.
type MarkerStore interface {
	Snapshot(ctx context.Context) (Markers, error)
	SetPlayer(ctx context.Context, token string, user User) error
	ClearPlayer(ctx context.Context) error
	SetAdmin(ctx context.Context, token string) error
	ClearAdmin(ctx context.Context) error
}
