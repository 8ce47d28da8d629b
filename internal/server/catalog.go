package server

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"slices"
)

//go:embed fixtures.json
var fixturesJSON []byte

// statNames is the order of the six base stats in a fixture.
var statNames = [...]string{"hp", "attack", "defense", "special-attack", "special-defense", "speed"}

type fixture struct {
	ID          int      `json:"id"`
	Name        string   `json:"name"`
	Height      int      `json:"height"`
	Weight      int      `json:"weight"`
	Types       []string `json:"types"`
	Abilities   []string `json:"abilities"`
	Stats       []int    `json:"stats"`
	Chain       int      `json:"chain"`
	EvolvesFrom *int     `json:"evolves_from"`
}

// Catalog is the data set the mock serves, pre-shaped as the PokeAPI
// GraphQL schema nests it.
type Catalog struct {
	rows []map[string]any // sorted by id
	byID map[int]map[string]any
}

// DefaultCatalog returns the embedded fixture catalog.
func DefaultCatalog() (*Catalog, error) {
	return LoadCatalog(fixturesJSON)
}

// LoadCatalog builds a catalog from a JSON array of fixtures.
func LoadCatalog(data []byte) (*Catalog, error) {
	var fixtures []fixture
	if err := json.Unmarshal(data, &fixtures); err != nil {
		return nil, fmt.Errorf("decode fixtures: %w", err)
	}
	slices.SortFunc(fixtures, func(a, b fixture) int { return a.ID - b.ID })

	ids := newIDs()
	chains := make(map[int]map[string]any)
	for _, f := range fixtures {
		chain, ok := chains[f.Chain]
		if !ok {
			chain = map[string]any{"id": f.Chain, "pokemon_v2_pokemonspecies": []any{}}
			chains[f.Chain] = chain
		}
		chain["pokemon_v2_pokemonspecies"] = append(chain["pokemon_v2_pokemonspecies"].([]any), species(f, nil))
	}

	c := &Catalog{byID: make(map[int]map[string]any, len(fixtures))}
	for _, f := range fixtures {
		if _, dup := c.byID[f.ID]; dup {
			return nil, fmt.Errorf("duplicate fixture id %d", f.ID)
		}
		if len(f.Stats) != len(statNames) {
			return nil, fmt.Errorf("fixture %d: want %d stats, got %d", f.ID, len(statNames), len(f.Stats))
		}
		row := map[string]any{
			"id":                          f.ID,
			"name":                        f.Name,
			"height":                      f.Height,
			"weight":                      f.Weight,
			"pokemon_v2_pokemontypes":     slotted(f.Types, "pokemon_v2_type", ids.types),
			"pokemon_v2_pokemonabilities": slotted(f.Abilities, "pokemon_v2_ability", ids.abilities),
			"pokemon_v2_pokemonstats":     stats(f.Stats),
			"pokemon_v2_pokemonspecy":     species(f, chains[f.Chain]),
		}
		c.rows = append(c.rows, row)
		c.byID[f.ID] = row
	}
	return c, nil
}

// Len is the number of entities in the catalog.
func (c *Catalog) Len() int { return len(c.rows) }

// Page returns rows [offset, offset+limit) in id order. A negative limit
// means no limit.
func (c *Catalog) Page(limit, offset int) []map[string]any {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(c.rows) {
		return nil
	}
	end := len(c.rows)
	if limit >= 0 && offset+limit < end {
		end = offset + limit
	}
	return c.rows[offset:end]
}

// ByID returns the row for id, or nil.
func (c *Catalog) ByID(id int) map[string]any {
	return c.byID[id]
}

func species(f fixture, chain map[string]any) map[string]any {
	s := map[string]any{
		"id":                      f.ID,
		"name":                    f.Name,
		"evolves_from_species_id": nil,
	}
	if f.EvolvesFrom != nil {
		s["evolves_from_species_id"] = *f.EvolvesFrom
	}
	if chain != nil {
		s["pokemon_v2_evolutionchain"] = chain
	}
	return s
}

func slotted(names []string, field string, registry map[string]int) []any {
	out := make([]any, 0, len(names))
	for i, name := range names {
		id, ok := registry[name]
		if !ok {
			id = len(registry) + 1
			registry[name] = id
		}
		out = append(out, map[string]any{
			"slot": i + 1,
			field:  map[string]any{"id": id, "name": name},
		})
	}
	return out
}

func stats(values []int) []any {
	out := make([]any, 0, len(values))
	for i, v := range values {
		out = append(out, map[string]any{
			"base_stat":       v,
			"pokemon_v2_stat": map[string]any{"id": i + 1, "name": statNames[i]},
		})
	}
	return out
}

type idRegistry struct {
	types     map[string]int
	abilities map[string]int
}

func newIDs() idRegistry {
	return idRegistry{types: map[string]int{}, abilities: map[string]int{}}
}
