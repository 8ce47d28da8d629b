// Package service composes the remote catalog, the page cache and the
// favorites/evolution state into the operations screens and commands use.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/raphaelgruber/pokerub/internal/catalog"
	"github.com/raphaelgruber/pokerub/internal/models"
	"github.com/raphaelgruber/pokerub/internal/state"
)

var (
	// ErrStalePage is returned by ApplyPage when a newer fetch was issued.
	ErrStalePage = errors.New("stale page response")
	// ErrNotEvolvable is returned when an entity has no evolution to confirm.
	ErrNotEvolvable = errors.New("pokemon cannot evolve")
	// ErrInvalidEvolution is returned for a target outside the entity's
	// direct evolutions.
	ErrInvalidEvolution = errors.New("invalid evolution target")
)

// Catalog is the remote data source.
type Catalog interface {
	ListPokemons(ctx context.Context, limit, offset int) ([]models.Entity, error)
	GetPokemon(ctx context.Context, id string) (*models.Detail, error)
}

// PokedexService handles browsing, favoriting and evolving.
type PokedexService struct {
	catalog     Catalog
	state       *state.Manager
	cache       *catalog.Cache
	pages       catalog.Pagination
	seq         catalog.Sequencer
	concurrency int
	logger      *slog.Logger
}

// NewPokedexService creates a new pokedex service. concurrency bounds
// PrefetchPages.
func NewPokedexService(src Catalog, st *state.Manager, pages catalog.Pagination, concurrency int, logger *slog.Logger) *PokedexService {
	if logger == nil {
		logger = slog.Default()
	}
	return &PokedexService{
		catalog:     src,
		state:       st,
		cache:       catalog.NewCache(),
		pages:       pages,
		concurrency: max(concurrency, 1),
		logger:      logger,
	}
}

// State returns the favorites/evolution manager.
func (s *PokedexService) State() *state.Manager { return s.state }

// Pagination returns the paging parameters.
func (s *PokedexService) Pagination() catalog.Pagination { return s.pages }

// Cached returns every entity fetched so far, in first-seen order.
func (s *PokedexService) Cached() []models.Entity { return s.cache.Entities() }

// Search filters the accumulated cache by name. It never fetches.
func (s *PokedexService) Search(query string) []models.Entity {
	return catalog.Filter(s.cache.Entities(), query)
}

// Entity returns id from the cache, fetching it when it was never seen.
func (s *PokedexService) Entity(ctx context.Context, id string) (models.Entity, error) {
	if e, ok := s.cache.Get(id); ok {
		return e, nil
	}
	d, err := s.catalog.GetPokemon(ctx, id)
	if err != nil {
		return models.Entity{}, err
	}
	return d.Entity, nil
}

// Item is an entity as a list renders it: favorite and evolution status are
// derived from the state manager at render time.
type Item struct {
	Entity models.Entity

	// DisplayID and DisplayName describe the current form, which differs
	// from Entity after an evolution.
	DisplayID   string
	DisplayName string
	// Types belong to the current form. They are nil for an evolved form
	// that was never fetched.
	Types []models.PokemonType

	Favorite  bool
	Evolved   bool
	Evolvable bool
}

// Items renders entities against the current favorites and evolutions.
func (s *PokedexService) Items(entities []models.Entity) []Item {
	items := make([]Item, 0, len(entities))
	for _, e := range entities {
		items = append(items, s.item(e))
	}
	return items
}

// TypeNames lists the names of the current form's types.
func (it Item) TypeNames() []string {
	return models.Entity{Types: it.Types}.TypeNames()
}

func (s *PokedexService) item(e models.Entity) Item {
	displayID := s.state.ResolveDisplayID(e.ID)
	evolved := s.state.HasEvolved(e.ID)
	types := e.Types
	if displayID != e.ID {
		types = nil
		if cached, ok := s.cache.Get(displayID); ok {
			types = cached.Types
		}
	}
	return Item{
		Entity:      e,
		DisplayID:   displayID,
		DisplayName: displayName(e, displayID),
		Types:       types,
		Favorite:    s.state.IsFavorite(displayID),
		Evolved:     evolved,
		Evolvable:   !evolved && e.IsEvolvable(),
	}
}

func displayName(e models.Entity, displayID string) string {
	if displayID == e.ID {
		return e.Name
	}
	if node, ok := e.ChainNode(displayID); ok {
		return node.Name
	}
	return e.Name
}

// ToggleFavorite flips the favorite status of e's current form and reports
// whether it is now a favorite. It is safe to call from several goroutines:
// the snapshot is built first and the flip itself is atomic.
func (s *PokedexService) ToggleFavorite(ctx context.Context, e models.Entity) bool {
	displayID := s.state.ResolveDisplayID(e.ID)
	f := models.NewFavorite(displayID, displayName(e, displayID), nil)
	if !s.state.IsFavorite(displayID) {
		f = s.snapshot(ctx, e, displayID)
	}
	return s.state.ToggleFavorite(f)
}

// ToggleRecord flips the favorite status of e exactly as given, without
// resolving evolutions. Detail records are already the form on screen.
func (s *PokedexService) ToggleRecord(e models.Entity) bool {
	return s.state.ToggleFavorite(models.NewFavorite(e.ID, e.Name, e.Types))
}

// RemoveFavorite removes id as given when it is a favorite, else its
// current form. It reports the id removed.
func (s *PokedexService) RemoveFavorite(id string) (string, bool) {
	for _, candidate := range []string{id, s.state.ResolveDisplayID(id)} {
		if s.state.IsFavorite(candidate) {
			s.state.RemoveFavorite(candidate)
			return candidate, true
		}
	}
	return "", false
}

// AddFavorite favorites the current form of id.
func (s *PokedexService) AddFavorite(ctx context.Context, id string) (models.Favorite, error) {
	e, err := s.Entity(ctx, id)
	if err != nil {
		return models.Favorite{}, fmt.Errorf("add favorite %s: %w", id, err)
	}
	f := s.snapshot(ctx, e, s.state.ResolveDisplayID(e.ID))
	s.state.AddFavorite(f)
	return f, nil
}

// snapshot builds the favorite record for displayID, the current form of e.
// An evolved form is looked up in the cache, then fetched; if both fail the
// snapshot carries the chain name and no types.
func (s *PokedexService) snapshot(ctx context.Context, e models.Entity, displayID string) models.Favorite {
	if displayID == e.ID {
		return models.NewFavorite(e.ID, e.Name, e.Types)
	}
	if cached, ok := s.cache.Get(displayID); ok {
		return models.NewFavorite(cached.ID, cached.Name, cached.Types)
	}
	d, err := s.catalog.GetPokemon(ctx, displayID)
	if err == nil {
		return models.NewFavorite(d.ID, d.Name, d.Types)
	}
	s.logger.Warn("favoriting evolved form without details", "id", displayID, "error", err)
	return models.NewFavorite(displayID, displayName(e, displayID), nil)
}

// Evolve confirms the evolution of e into targetID, or into its first
// direct evolution when targetID is empty.
func (s *PokedexService) Evolve(e models.Entity, targetID string) (models.Evolution, error) {
	if s.state.HasEvolved(e.ID) {
		return models.Evolution{}, fmt.Errorf("%w: %s already evolved into %s", ErrNotEvolvable, e.Name, s.state.ResolveDisplayID(e.ID))
	}
	targets := e.EvolutionTargets()
	if len(targets) == 0 {
		return models.Evolution{}, fmt.Errorf("%w: %s", ErrNotEvolvable, e.Name)
	}

	target := targets[0]
	if targetID != "" {
		found := false
		for _, t := range targets {
			if t.ID == targetID {
				target, found = t, true
				break
			}
		}
		if !found {
			return models.Evolution{}, fmt.Errorf("%w: %s does not evolve into %s", ErrInvalidEvolution, e.Name, targetID)
		}
	}

	s.state.EvolvePokemon(e.ID, target.ID)
	s.logger.Info("evolution confirmed", "from", e.ID, "to", target.ID, "name", target.Name)
	return target, nil
}

// EvolveByID is Evolve for an id that may not be cached.
func (s *PokedexService) EvolveByID(ctx context.Context, id, targetID string) (models.Entity, models.Evolution, error) {
	e, err := s.Entity(ctx, id)
	if err != nil {
		return models.Entity{}, models.Evolution{}, fmt.Errorf("evolve %s: %w", id, err)
	}
	target, err := s.Evolve(e, targetID)
	return e, target, err
}

// DetailView is a detail record plus its favorite and evolution status.
type DetailView struct {
	*models.Detail

	Favorite bool
	// EvolvedFrom is the original id when this record is an evolution
	// target in the evolution map.
	EvolvedFrom string
}

// Evolved reports whether the record was reached through an evolution.
func (v DetailView) Evolved() bool { return v.EvolvedFrom != "" }

// Details fetches the full record for id.
func (s *PokedexService) Details(ctx context.Context, id string) (*DetailView, error) {
	d, err := s.catalog.GetPokemon(ctx, id)
	if err != nil {
		return nil, err
	}
	view := &DetailView{Detail: d, Favorite: s.state.IsFavorite(d.ID)}
	if original, ok := s.state.EvolvedFrom(d.ID); ok {
		view.EvolvedFrom = original
	}
	return view, nil
}
