package catalog

import (
	"sync"

	"github.com/raphaelgruber/pokerub/internal/models"
)

// Cache accumulates fetched entities in first-seen order. Merging an id
// that is already present overwrites the entity in place.
type Cache struct {
	mu    sync.RWMutex
	order []string
	byID  map[string]models.Entity
}

func NewCache() *Cache {
	return &Cache{byID: make(map[string]models.Entity)}
}

// Merge adds or overwrites entities by id.
func (c *Cache) Merge(entities []models.Entity) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, e := range entities {
		if _, ok := c.byID[e.ID]; !ok {
			c.order = append(c.order, e.ID)
		}
		c.byID[e.ID] = e
	}
}

// Entities returns every cached entity in first-seen order.
func (c *Cache) Entities() []models.Entity {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]models.Entity, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.byID[id])
	}
	return out
}

func (c *Cache) Get(id string) (models.Entity, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.byID[id]
	return e, ok
}

func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.order)
}
