// Package cart implements the shopping cart collaborator. The cart persists
// under its own storage key and follows the same soft-fail contract as the
// booking store: corrupt or unavailable storage reads as an empty cart.
package cart

import (
	"encoding/json"

	"github.com/rs/zerolog"

	"smokyloft/internal/models"
	"smokyloft/internal/storage"
)

// StorageKey is the persisted cart key.
const StorageKey = "cart"

type Cart struct {
	port   storage.Port
	logger *zerolog.Logger
}

func New(port storage.Port, logger *zerolog.Logger) *Cart {
	return &Cart{port: port, logger: logger}
}

// Items returns the cart contents. Never fails: storage trouble means an
// empty cart.
func (c *Cart) Items() []models.CartItem {
	raw, ok, err := c.port.Get(StorageKey)
	if err != nil {
		c.logger.Warn().Err(err).Msg("cart storage unavailable, treating as empty")
		return []models.CartItem{}
	}
	if !ok || raw == "" {
		return []models.CartItem{}
	}

	var items []models.CartItem
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		c.logger.Warn().Err(err).Msg("cart storage corrupt, treating as empty")
		return []models.CartItem{}
	}
	return items
}

// Add appends an item and persists. Duplicates are allowed: ordering two
// identical hookahs is a normal order.
func (c *Cart) Add(item models.CartItem) error {
	items := append(c.Items(), item)
	return c.save(items)
}

// Total sums item prices.
func (c *Cart) Total() int {
	total := 0
	for _, item := range c.Items() {
		total += item.Price
	}
	return total
}

// Len returns the number of items.
func (c *Cart) Len() int {
	return len(c.Items())
}

// Clear removes the persisted cart.
func (c *Cart) Clear() error {
	return c.port.Remove(StorageKey)
}

func (c *Cart) save(items []models.CartItem) error {
	data, err := json.Marshal(items)
	if err != nil {
		return err
	}
	return c.port.Set(StorageKey, string(data))
}
