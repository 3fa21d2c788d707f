package model

// Ore is a quantity of one ore kind owned by the player.
type Ore struct {
	OreID    string
	Name     string
	Quantity int
}

// Item is a quantity of one item kind owned by the player.
type Item struct {
	ItemID   string
	Name     string
	Quantity int
}

// Inventory is the player's resource snapshot.
type Inventory struct {
	Gold  int
	Ores  []Ore
	Items []Item
}
