// Package cart holds tracks picked from search results before they become a playlist.
package cart

import (
	"sync"

	"github.com/desertthunder/listify/internal/models"
)

// Cart is an ordered set of tracks keyed by source URL.
type Cart struct {
	mu    sync.RWMutex
	items []models.Track
}

// New returns an empty cart.
func New() *Cart {
	return &Cart{}
}

// Toggle removes the track if present, otherwise appends it.
// It reports whether the track is in the cart afterwards.
func (c *Cart) Toggle(t models.Track) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if i := c.indexOf(t.Key()); i >= 0 {
		c.items = append(c.items[:i], c.items[i+1:]...)
		return false
	}
	c.items = append(c.items, t)
	return true
}

// Add appends the track unless one with the same key is present.
func (c *Cart) Add(t models.Track) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.indexOf(t.Key()) < 0 {
		c.items = append(c.items, t)
	}
}

// Remove drops the track with sourceURL, if any.
func (c *Cart) Remove(sourceURL string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if i := c.indexOf(sourceURL); i >= 0 {
		c.items = append(c.items[:i], c.items[i+1:]...)
	}
}

// Clear empties the cart.
func (c *Cart) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = nil
}

func (c *Cart) Contains(sourceURL string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.indexOf(sourceURL) >= 0
}

func (c *Cart) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Items returns a snapshot of the cart in insertion order.
func (c *Cart) Items() []models.Track {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]models.Track, len(c.items))
	copy(out, c.items)
	return out
}

func (c *Cart) indexOf(key string) int {
	for i, t := range c.items {
		if t.Key() == key {
			return i
		}
	}
	return -1
}
