package service

import (
	"context"
	"fmt"

	"github.com/raphaelgruber/pokerub/internal/models"
	"golang.org/x/sync/errgroup"
)

// PageRequest is one numbered page fetch.
type PageRequest struct {
	Seq    uint64
	Number int
	Limit  int
	Offset int
}

// Page is a fetched page of the catalog.
type Page struct {
	Number     int
	TotalPages int
	Entities   []models.Entity
}

// BeginFetch issues a request for page (clamped to the valid range). Any
// request issued earlier becomes stale.
func (s *PokedexService) BeginFetch(page int) PageRequest {
	n := s.pages.Clamp(page)
	return PageRequest{
		Seq:    s.seq.Next(),
		Number: n,
		Limit:  s.pages.Limit(n),
		Offset: s.pages.Offset(n),
	}
}

// Fetch runs req against the remote catalog. It does not touch the cache.
func (s *PokedexService) Fetch(ctx context.Context, req PageRequest) ([]models.Entity, error) {
	entities, err := s.catalog.ListPokemons(ctx, req.Limit, req.Offset)
	if err != nil {
		return nil, fmt.Errorf("fetch page %d: %w", req.Number, err)
	}
	return entities, nil
}

// IsCurrent reports whether req is the most recently issued request.
func (s *PokedexService) IsCurrent(req PageRequest) bool {
	return s.seq.IsLatest(req.Seq)
}

// ApplyPage merges a fetched page into the cache unless a newer request
// was issued since, in which case it returns ErrStalePage.
func (s *PokedexService) ApplyPage(req PageRequest, entities []models.Entity) (Page, error) {
	if !s.seq.IsLatest(req.Seq) {
		s.logger.Debug("discarding stale page", "page", req.Number, "seq", req.Seq)
		return Page{}, fmt.Errorf("%w: page %d", ErrStalePage, req.Number)
	}
	s.cache.Merge(entities)
	return Page{
		Number:     req.Number,
		TotalPages: s.pages.TotalPages(),
		Entities:   entities,
	}, nil
}

// FetchPage is BeginFetch, Fetch and ApplyPage in one call.
func (s *PokedexService) FetchPage(ctx context.Context, page int) (Page, error) {
	req := s.BeginFetch(page)
	entities, err := s.Fetch(ctx, req)
	if err != nil {
		return Page{}, err
	}
	return s.ApplyPage(req, entities)
}

// PrefetchPages fetches count pages starting at first concurrently and
// merges them into the cache in page order. Prefetches do not take part in
// sequencing.
func (s *PokedexService) PrefetchPages(ctx context.Context, first, count int) error {
	first = s.pages.Clamp(first)
	last := min(first+count-1, s.pages.TotalPages())
	if count <= 0 || last < first {
		return nil
	}

	results := make([][]models.Entity, last-first+1)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for page := first; page <= last; page++ {
		g.Go(func() error {
			entities, err := s.catalog.ListPokemons(gctx, s.pages.Limit(page), s.pages.Offset(page))
			if err != nil {
				return fmt.Errorf("prefetch page %d: %w", page, err)
			}
			results[page-first] = entities
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for _, entities := range results {
		s.cache.Merge(entities)
	}
	s.logger.Debug("prefetched pages", "first", first, "last", last, "cached", s.cache.Len())
	return nil
}
