package client

import (
	"context"
	"fmt"
	"strconv"

	"github.com/raphaelgruber/pokerub/internal/models"
)

const listPokemonsQuery = `
	query ListPokemons($limit: Int, $offset: Int) {
		pokemon_v2_pokemon(limit: $limit, offset: $offset, order_by: [{id: asc}]) {
			id
			name
			pokemon_v2_pokemontypes {
				pokemon_v2_type { name }
			}
			pokemon_v2_pokemonspecy {
				pokemon_v2_evolutionchain {
					pokemon_v2_pokemonspecies(order_by: [{id: asc}]) {
						id name evolves_from_species_id
					}
				}
			}
		}
	}
`

const getPokemonQuery = `
	query GetPokemon($id: Int!) {
		pokemon_v2_pokemon_by_pk(id: $id) {
			id
			name
			height
			weight
			pokemon_v2_pokemontypes {
				pokemon_v2_type { name }
			}
			pokemon_v2_pokemonabilities {
				pokemon_v2_ability { name }
			}
			pokemon_v2_pokemonstats {
				base_stat
				pokemon_v2_stat { name }
			}
			pokemon_v2_pokemonspecy {
				pokemon_v2_evolutionchain {
					pokemon_v2_pokemonspecies(order_by: [{id: asc}]) {
						id name evolves_from_species_id
					}
				}
			}
		}
	}
`

// operations lists every query the client sends, for validation in New.
var operations = map[string]string{
	"ListPokemons": listPokemonsQuery,
	"GetPokemon":   getPokemonQuery,
}

// =============================================================================
// WIRE TYPES (matching the PokeAPI GraphQL schema)
// =============================================================================

type named struct {
	Name string `json:"name"`
}

type wireSpecies struct {
	ID            int    `json:"id"`
	Name          string `json:"name"`
	EvolvesFromID *int   `json:"evolves_from_species_id"`
}

type wirePokemon struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	Height int    `json:"height"`
	Weight int    `json:"weight"`

	Types []struct {
		Type *named `json:"pokemon_v2_type"`
	} `json:"pokemon_v2_pokemontypes"`

	Abilities []struct {
		Ability *named `json:"pokemon_v2_ability"`
	} `json:"pokemon_v2_pokemonabilities"`

	Stats []struct {
		BaseStat int    `json:"base_stat"`
		Stat     *named `json:"pokemon_v2_stat"`
	} `json:"pokemon_v2_pokemonstats"`

	Species *struct {
		Chain *struct {
			Species []wireSpecies `json:"pokemon_v2_pokemonspecies"`
		} `json:"pokemon_v2_evolutionchain"`
	} `json:"pokemon_v2_pokemonspecy"`
}

func (p wirePokemon) entity() models.Entity {
	e := models.Entity{
		ID:   strconv.Itoa(p.ID),
		Name: p.Name,
	}
	for _, t := range p.Types {
		if t.Type != nil {
			e.Types = append(e.Types, models.PokemonType{Name: t.Type.Name})
		}
	}
	if p.Species != nil && p.Species.Chain != nil {
		for _, s := range p.Species.Chain.Species {
			evo := models.Evolution{ID: strconv.Itoa(s.ID), Name: s.Name}
			if s.EvolvesFromID != nil {
				from := strconv.Itoa(*s.EvolvesFromID)
				evo.EvolvesFromID = &from
			}
			e.EvolutionChain = append(e.EvolutionChain, evo)
		}
	}
	return e
}

func (p wirePokemon) detail() *models.Detail {
	d := &models.Detail{
		Entity: p.entity(),
		Height: p.Height,
		Weight: p.Weight,
	}
	for _, a := range p.Abilities {
		if a.Ability != nil {
			d.Abilities = append(d.Abilities, a.Ability.Name)
		}
	}
	for _, s := range p.Stats {
		name := "stat"
		if s.Stat != nil {
			name = s.Stat.Name
		}
		d.Stats = append(d.Stats, models.Stat{Name: name, BaseStat: s.BaseStat})
	}
	return d
}

// =============================================================================
// QUERIES
// =============================================================================

// ListPokemons returns up to limit entities starting at offset, ordered by
// id ascending.
func (c *Client) ListPokemons(ctx context.Context, limit, offset int) ([]models.Entity, error) {
	var result struct {
		Pokemon []wirePokemon `json:"pokemon_v2_pokemon"`
	}
	vars := map[string]any{"limit": limit, "offset": offset}
	if err := c.Execute(ctx, listPokemonsQuery, vars, &result); err != nil {
		return nil, fmt.Errorf("list pokemons: %w", err)
	}

	entities := make([]models.Entity, 0, len(result.Pokemon))
	for _, p := range result.Pokemon {
		entities = append(entities, p.entity())
	}
	return entities, nil
}

// GetPokemon returns the full detail record for id. It returns ErrNotFound
// when the id is unknown or not numeric.
func (c *Client) GetPokemon(ctx context.Context, id string) (*models.Detail, error) {
	n, err := strconv.Atoi(id)
	if err != nil || n <= 0 {
		return nil, fmt.Errorf("%w: invalid id %q", ErrNotFound, id)
	}

	var result struct {
		Pokemon *wirePokemon `json:"pokemon_v2_pokemon_by_pk"`
	}
	if err := c.Execute(ctx, getPokemonQuery, map[string]any{"id": n}, &result); err != nil {
		return nil, fmt.Errorf("get pokemon %s: %w", id, err)
	}
	if result.Pokemon == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return result.Pokemon.detail(), nil
}
