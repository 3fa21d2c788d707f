package model

import "encoding/json"

// Base is a player's base in a town as returned by the server.
// Raw keeps the full server record.
type Base struct {
	ID     string          `json:"id"`
	UserID string          `json:"user_id"`
	TownID string          `json:"town_id"`
	Level  int             `json:"level"`
	Raw    json.RawMessage `json:"-"`
}
