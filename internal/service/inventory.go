package service

import (
	"context"
	"net/http"
	"sync"

	"github.com/dtroode/townforge-client/internal/httpclient"
	"github.com/dtroode/townforge-client/internal/logger"
	"github.com/dtroode/townforge-client/internal/model"
)

const endpointInventory = "/game/my/inventory"

// Requester sends API requests.
type Requester interface {
	Do(ctx context.Context, req httpclient.Request) (*httpclient.Response, error)
}

// InventoryState is the inventory sub-store state.
type InventoryState struct {
	Inventory model.Inventory
	Loading   bool
	Error     string
}

// Inventory caches the player's resources.
type Inventory struct {
	client Requester
	logger *logger.Logger

	mu    sync.Mutex
	state InventoryState
}

func NewInventory(client Requester, logger *logger.Logger) *Inventory {
	return &Inventory{
		client: client,
		logger: logger,
		state:  InventoryState{Inventory: emptyInventory()},
	}
}

type inventoryPayload struct {
	Inventory *struct {
		Gold flexInt `json:"gold"`
	} `json:"inventory"`
	Ores  []stackPayload `json:"ores"`
	Items []stackPayload `json:"items"`
}

// stackPayload is an ore or item row. Names arrive either flat or inside the
// joined ore/item record.
type stackPayload struct {
	OreID    flexString   `json:"ore_id"`
	ItemID   flexString   `json:"item_id"`
	Name     string       `json:"name"`
	Quantity flexInt      `json:"quantity"`
	Ore      *namePayload `json:"ore"`
	Item     *namePayload `json:"item"`
}

type namePayload struct {
	Name string `json:"name"`
}

func (p stackPayload) name() string {
	switch {
	case p.Name != "":
		return p.Name
	case p.Ore != nil && p.Ore.Name != "":
		return p.Ore.Name
	case p.Item != nil && p.Item.Name != "":
		return p.Item.Name
	default:
		return ""
	}
}

// Fetch replaces the cached inventory with the server's snapshot. Missing
// fields default to zero values. On failure the previous snapshot is kept.
func (i *Inventory) Fetch(ctx context.Context) bool {
	i.mu.Lock()
	i.state.Loading = true
	i.state.Error = ""
	i.mu.Unlock()

	inv, err := i.fetch(ctx)

	i.mu.Lock()
	defer i.mu.Unlock()
	i.state.Loading = false

	if err != nil {
		i.logger.Warn("Inventory service: fetch failed", "error", err.Error())
		i.state.Error = errorMessage(err, msgInventoryFailed)
		return false
	}

	i.state.Inventory = inv
	i.logger.Debug("Inventory service: inventory loaded",
		"gold", inv.Gold,
		"ores", len(inv.Ores),
		"items", len(inv.Items))
	return true
}

// Snapshot returns a copy of the current state.
func (i *Inventory) Snapshot() InventoryState {
	i.mu.Lock()
	defer i.mu.Unlock()

	out := i.state
	out.Inventory.Ores = append([]model.Ore{}, i.state.Inventory.Ores...)
	out.Inventory.Items = append([]model.Item{}, i.state.Inventory.Items...)
	return out
}

func (i *Inventory) fetch(ctx context.Context) (model.Inventory, error) {
	resp, err := i.client.Do(ctx, httpclient.Request{Method: http.MethodGet, Path: endpointInventory})
	if err != nil {
		return model.Inventory{}, err
	}

	var payload inventoryPayload
	if err := resp.Decode(&payload); err != nil {
		return model.Inventory{}, err
	}

	inv := emptyInventory()
	if payload.Inventory != nil {
		inv.Gold = nonNegative(payload.Inventory.Gold)
	}
	for _, o := range payload.Ores {
		inv.Ores = append(inv.Ores, model.Ore{
			OreID:    string(o.OreID),
			Name:     o.name(),
			Quantity: nonNegative(o.Quantity),
		})
	}
	for _, it := range payload.Items {
		inv.Items = append(inv.Items, model.Item{
			ItemID:   string(it.ItemID),
			Name:     it.name(),
			Quantity: nonNegative(it.Quantity),
		})
	}
	return inv, nil
}

func emptyInventory() model.Inventory {
	return model.Inventory{Ores: []model.Ore{}, Items: []model.Item{}}
}
