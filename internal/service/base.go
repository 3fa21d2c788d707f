package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/dtroode/townforge-client/internal/httpclient"
	"github.com/dtroode/townforge-client/internal/logger"
	"github.com/dtroode/townforge-client/internal/model"
)

const endpointBases = "/game/bases"

// BaseState is the base sub-store state. Base is nil until a creation succeeds.
type BaseState struct {
	Base    *model.Base
	Loading bool
	Error   string
}

// Base establishes player bases. The one-base-per-player rule is enforced by the server.
type Base struct {
	client Requester
	logger *logger.Logger

	mu    sync.Mutex
	state BaseState
}

func NewBase(client Requester, logger *logger.Logger) *Base {
	return &Base{client: client, logger: logger}
}

type basePayload struct {
	ID     flexString `json:"id"`
	UserID flexString `json:"user_id"`
	TownID flexString `json:"town_id"`
	Level  flexInt    `json:"level"`
}

// Create establishes a base in the town.
func (b *Base) Create(ctx context.Context, townID string) bool {
	b.mu.Lock()
	b.state.Loading = true
	b.state.Error = ""
	b.mu.Unlock()

	base, err := b.create(ctx, strings.TrimSpace(townID))

	b.mu.Lock()
	defer b.mu.Unlock()
	b.state.Loading = false

	if err != nil {
		b.logger.Warn("Base service: creation failed",
			"town_id", townID,
			"error", err.Error())
		b.state.Error = errorMessage(err, msgBaseFailed)
		return false
	}

	b.state.Base = &base
	b.logger.Info("Base service: base established",
		"base_id", base.ID,
		"town_id", base.TownID)
	return true
}

// Snapshot returns a copy of the current state.
func (b *Base) Snapshot() BaseState {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := b.state
	if b.state.Base != nil {
		base := *b.state.Base
		out.Base = &base
	}
	return out
}

func (b *Base) create(ctx context.Context, townID string) (model.Base, error) {
	if townID == "" {
		return model.Base{}, fmt.Errorf("%w: town id is required", model.ErrValidation)
	}

	resp, err := b.client.Do(ctx, httpclient.Request{
		Method: http.MethodPost,
		Path:   endpointBases,
		Body:   map[string]string{"town_id": townID},
	})
	if err != nil {
		return model.Base{}, err
	}

	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := resp.Decode(&envelope); err != nil {
		return model.Base{}, err
	}

	raw := envelope.Data
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		raw = resp.Body
	}

	var payload basePayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return model.Base{}, fmt.Errorf("%w: %w", model.ErrMalformedResponse, err)
	}

	base := model.Base{
		ID:     string(payload.ID),
		UserID: string(payload.UserID),
		TownID: string(payload.TownID),
		Level:  int(payload.Level),
		Raw:    append(json.RawMessage{}, raw...),
	}
	if base.TownID == "" {
		base.TownID = townID
	}
	return base, nil
}
