// Package marker owns the persisted session markers. Every write to the
// token, user and adminToken keys goes through a Manager.
package marker

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/dtroode/townforge-client/internal/logger"
	"github.com/dtroode/townforge-client/internal/model"
)

// Ensure Manager implements the model.MarkerStore interface.
var _ model.MarkerStore = (*Manager)(nil)

// Manager serializes marker writes; the last writer wins.
type Manager struct {
	store  model.KVStore
	logger *logger.Logger

	writeMu sync.Mutex

	subMu  sync.Mutex
	nextID int
	subs   map[int]func(model.MarkerChange)
}

// NewManager creates a Manager over store.
func NewManager(store model.KVStore, logger *logger.Logger) *Manager {
	return &Manager{
		store:  store,
		logger: logger,
		subs:   make(map[int]func(model.MarkerChange)),
	}
}

// Snapshot reads all markers in one call.
func (m *Manager) Snapshot(ctx context.Context) (model.Markers, error) {
	values, err := m.store.GetMany(ctx, model.KeyToken, model.KeyUser, model.KeyAdminToken)
	if err != nil {
		return model.Markers{}, fmt.Errorf("failed to read markers: %w", err)
	}

	return model.Markers{
		Player: model.PlayerMarker{Token: values[model.KeyToken], User: values[model.KeyUser]},
		Admin:  model.AdminMarker{Token: values[model.KeyAdminToken]},
	}, nil
}

// SetPlayer stores the token and the user snapshot together.
func (m *Manager) SetPlayer(ctx context.Context, token string, user model.User) error {
	if token == "" {
		return fmt.Errorf("%w: empty player token", model.ErrValidation)
	}
	raw, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to encode user snapshot: %w", err)
	}

	return m.write(ctx, model.MarkerChange{Keys: []string{model.KeyToken, model.KeyUser}}, func() error {
		return m.store.SetMany(ctx, map[string]string{
			model.KeyToken: token,
			model.KeyUser:  string(raw),
		})
	})
}

// UpdatePlayerUser replaces the stored user snapshot, keeping the token.
func (m *Manager) UpdatePlayerUser(ctx context.Context, user model.User) error {
	raw, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to encode user snapshot: %w", err)
	}

	return m.write(ctx, model.MarkerChange{Keys: []string{model.KeyUser}}, func() error {
		return m.store.SetMany(ctx, map[string]string{model.KeyUser: string(raw)})
	})
}

// ClearPlayer removes the token and the user snapshot. Clearing absent markers is not an error.
func (m *Manager) ClearPlayer(ctx context.Context) error {
	return m.write(ctx, model.MarkerChange{Keys: []string{model.KeyToken, model.KeyUser}, Cleared: true}, func() error {
		return m.store.DeleteMany(ctx, model.KeyToken, model.KeyUser)
	})
}

// SetAdmin stores the admin token.
func (m *Manager) SetAdmin(ctx context.Context, token string) error {
	if token == "" {
		return fmt.Errorf("%w: empty admin token", model.ErrValidation)
	}
	return m.write(ctx, model.MarkerChange{Keys: []string{model.KeyAdminToken}}, func() error {
		return m.store.SetMany(ctx, map[string]string{model.KeyAdminToken: token})
	})
}

// ClearAdmin removes the admin token.
func (m *Manager) ClearAdmin(ctx context.Context) error {
	return m.write(ctx, model.MarkerChange{Keys: []string{model.KeyAdminToken}, Cleared: true}, func() error {
		return m.store.DeleteMany(ctx, model.KeyAdminToken)
	})
}

// Subscribe registers fn to be called after every successful write.
// The returned function removes the subscription.
func (m *Manager) Subscribe(fn func(model.MarkerChange)) func() {
	m.subMu.Lock()
	defer m.subMu.Unlock()

	id := m.nextID
	m.nextID++
	m.subs[id] = fn

	return func() {
		m.subMu.Lock()
		defer m.subMu.Unlock()
		delete(m.subs, id)
	}
}

func (m *Manager) write(ctx context.Context, change model.MarkerChange, apply func() error) error {
	m.writeMu.Lock()
	err := apply()
	m.writeMu.Unlock()

	if err != nil {
		m.logger.Error("Marker manager: write failed",
			"keys", change.Keys,
			"cleared", change.Cleared,
			"error", err.Error())
		return fmt.Errorf("failed to write markers: %w", err)
	}

	m.logger.Debug("Marker manager: markers written",
		"keys", change.Keys,
		"cleared", change.Cleared)
	m.notify(change)
	return nil
}

func (m *Manager) notify(change model.MarkerChange) {
	m.subMu.Lock()
	subs := make([]func(model.MarkerChange), 0, len(m.subs))
	for _, fn := range m.subs {
		subs = append(subs, fn)
	}
	m.subMu.Unlock()

	for _, fn := range subs {
		fn(change)
	}
}
