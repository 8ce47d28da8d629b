// Package state owns the two pieces of user state that outlive a screen:
// the favorites list and the evolution map (original id -> evolved id).
//
// Reads are served from memory. Every mutation updates memory first and then
// hands a snapshot to a background writer; storage failures are logged and
// never reach the caller.
package state

import (
	"context"
	"encoding/json"
	"log/slog"
	"maps"
	"slices"
	"sync"

	"github.com/raphaelgruber/pokerub/internal/models"
	"github.com/raphaelgruber/pokerub/internal/store"
)

// Persisted keys. The favorites key is shared with earlier releases.
const (
	FavoritesKey  = "@pokerub_favorites"
	EvolutionsKey = "@pokerub_evolutions"
)

// Manager is safe for concurrent use.
type Manager struct {
	mu         sync.RWMutex
	favorites  []models.Favorite
	evolutions map[string]string

	writer *writer
	logger *slog.Logger
}

// Open loads persisted state from kv and starts the background writer.
// Unreadable or corrupt state is logged and treated as empty.
func Open(ctx context.Context, kv store.KV, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	m := &Manager{
		favorites:  []models.Favorite{},
		evolutions: map[string]string{},
		logger:     logger,
	}
	m.loadFavorites(ctx, kv)
	m.loadEvolutions(ctx, kv)
	m.writer = newWriter(kv, logger)
	return m
}

func (m *Manager) loadFavorites(ctx context.Context, kv store.KV) {
	raw, ok, err := kv.Get(ctx, FavoritesKey)
	if err != nil {
		m.logger.Error("error loading favorites", "error", err)
		return
	}
	if !ok {
		return
	}
	favorites, err := upgradeFavorites(raw)
	if err != nil {
		m.logger.Error("error loading favorites", "error", err)
		return
	}
	m.favorites = dedupeFavorites(favorites)
	m.logger.Debug("favorites loaded", "count", len(m.favorites))
}

func (m *Manager) loadEvolutions(ctx context.Context, kv store.KV) {
	raw, ok, err := kv.Get(ctx, EvolutionsKey)
	if err != nil {
		m.logger.Error("error loading evolutions", "error", err)
		return
	}
	if !ok {
		return
	}
	var evolutions map[string]string
	if err := json.Unmarshal(raw, &evolutions); err != nil {
		m.logger.Error("error loading evolutions", "error", err)
		return
	}
	if evolutions != nil {
		m.evolutions = evolutions
	}
	m.logger.Debug("evolutions loaded", "count", len(m.evolutions))
}

// AddFavorite stores a snapshot of f. Adding an id that is already a
// favorite replaces its snapshot and keeps its position.
func (m *Manager) AddFavorite(f models.Favorite) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if i := m.indexLocked(f.ID); i >= 0 {
		m.favorites[i] = f
	} else {
		m.favorites = append(m.favorites, f)
	}
	m.logger.Debug("favorite added", "id", f.ID, "name", f.Name)
	m.saveFavoritesLocked()
}

// RemoveFavorite drops every entry with id. Unknown ids are ignored.
func (m *Manager) RemoveFavorite(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := len(m.favorites)
	m.favorites = slices.DeleteFunc(m.favorites, func(f models.Favorite) bool {
		return f.ID == id
	})
	if len(m.favorites) == n {
		return
	}
	m.logger.Debug("favorite removed", "id", id)
	m.saveFavoritesLocked()
}

// ToggleFavorite removes f.ID if it is a favorite and stores f otherwise,
// under one lock. It reports whether f.ID is now a favorite.
func (m *Manager) ToggleFavorite(f models.Favorite) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if i := m.indexLocked(f.ID); i >= 0 {
		m.favorites = slices.Delete(m.favorites, i, i+1)
		m.logger.Debug("favorite removed", "id", f.ID)
		m.saveFavoritesLocked()
		return false
	}
	m.favorites = append(m.favorites, f)
	m.logger.Debug("favorite added", "id", f.ID, "name", f.Name)
	m.saveFavoritesLocked()
	return true
}

func (m *Manager) IsFavorite(id string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.indexLocked(id) >= 0
}

// Favorites returns a copy of the list in insertion order.
func (m *Manager) Favorites() []models.Favorite {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.favorites)
}

// ClearFavorites empties the list and deletes the persisted key.
func (m *Manager) ClearFavorites() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.favorites = []models.Favorite{}
	m.logger.Debug("favorites cleared")
	m.writer.enqueue(writeOp{key: FavoritesKey, remove: true})
}

// EvolvePokemon records that originalID now displays as evolvedID.
// A later call for the same originalID wins.
func (m *Manager) EvolvePokemon(originalID, evolvedID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.evolutions[originalID] = evolvedID
	m.logger.Debug("pokemon evolved", "from", originalID, "to", evolvedID)
	m.saveEvolutionsLocked()
}

func (m *Manager) HasEvolved(id string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.evolutions[id]
	return ok
}

// ResolveDisplayID returns the evolved id for id, or id itself.
func (m *Manager) ResolveDisplayID(id string) string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if evolved, ok := m.evolutions[id]; ok {
		return evolved
	}
	return id
}

// EvolvedFrom is the reverse lookup: the original id that evolved into id.
// When several originals map to id the smallest key is returned.
func (m *Manager) EvolvedFrom(id string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, original := range slices.Sorted(maps.Keys(m.evolutions)) {
		if m.evolutions[original] == id {
			return original, true
		}
	}
	return "", false
}

// Evolutions returns a copy of the evolution map.
func (m *Manager) Evolutions() map[string]string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return maps.Clone(m.evolutions)
}

// ResetEvolutions forgets every evolution and deletes the persisted key.
func (m *Manager) ResetEvolutions() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.evolutions = map[string]string{}
	m.logger.Debug("evolutions reset")
	m.writer.enqueue(writeOp{key: EvolutionsKey, remove: true})
}

// Flush blocks until every write issued before the call reached the store.
func (m *Manager) Flush(ctx context.Context) error {
	return m.writer.flush(ctx)
}

// Close drains pending writes. It does not close the underlying store.
func (m *Manager) Close() error {
	m.writer.close()
	return nil
}

func (m *Manager) indexLocked(id string) int {
	return slices.IndexFunc(m.favorites, func(f models.Favorite) bool {
		return f.ID == id
	})
}

// saveFavoritesLocked enqueues the current list. Called with mu held so
// writes reach the store in mutation order.
func (m *Manager) saveFavoritesLocked() {
	raw, err := json.Marshal(m.favorites)
	if err != nil {
		m.logger.Error("error saving favorites", "error", err)
		return
	}
	m.writer.enqueue(writeOp{key: FavoritesKey, value: raw})
}

func (m *Manager) saveEvolutionsLocked() {
	raw, err := json.Marshal(m.evolutions)
	if err != nil {
		m.logger.Error("error saving evolutions", "error", err)
		return
	}
	m.writer.enqueue(writeOp{key: EvolutionsKey, value: raw})
}
