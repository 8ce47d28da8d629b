package models

// PokemonType is a single elemental type of a Pokémon.
type PokemonType struct {
	Name string `json:"name"`
}

// Evolution is one node of an evolution family.
// EvolvesFromID is nil for the base form.
type Evolution struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	EvolvesFromID *string `json:"evolvesFromId"`
}

// Entity is a catalog item as returned by a page fetch.
// ID is assigned by the remote source and is globally unique.
type Entity struct {
	ID             string        `json:"id"`
	Name           string        `json:"name"`
	Types          []PokemonType `json:"types"`
	EvolutionChain []Evolution   `json:"evolutionChain"`
}

// EvolutionTargets returns the chain nodes that evolve directly from this
// entity, in chain order. Branching families (eevee) yield several.
func (e Entity) EvolutionTargets() []Evolution {
	var targets []Evolution
	for _, evo := range e.EvolutionChain {
		if evo.EvolvesFromID != nil && *evo.EvolvesFromID == e.ID {
			targets = append(targets, evo)
		}
	}
	return targets
}

// IsEvolvable reports whether at least one chain node evolves from this entity.
func (e Entity) IsEvolvable() bool {
	return len(e.EvolutionTargets()) > 0
}

// ChainNode looks up a node of the evolution family by id.
func (e Entity) ChainNode(id string) (Evolution, bool) {
	for _, evo := range e.EvolutionChain {
		if evo.ID == id {
			return evo, true
		}
	}
	return Evolution{}, false
}

// TypeNames returns the type names in order.
func (e Entity) TypeNames() []string {
	return typeNames(e.Types)
}

// Stat is a base stat of a Pokémon ("hp", "attack", ...).
type Stat struct {
	Name     string `json:"name"`
	BaseStat int    `json:"baseStat"`
}

// Detail is the full by-id record shown on the details screen.
type Detail struct {
	Entity
	Height    int      `json:"height"` // decimetres
	Weight    int      `json:"weight"` // hectograms
	Abilities []string `json:"abilities"`
	Stats     []Stat   `json:"stats"`
}

// HeightMeters converts the API height to metres.
func (d Detail) HeightMeters() float64 {
	return float64(d.Height) / 10
}

// WeightKilograms converts the API weight to kilograms.
func (d Detail) WeightKilograms() float64 {
	return float64(d.Weight) / 10
}

func typeNames(types []PokemonType) []string {
	names := make([]string, 0, len(types))
	for _, t := range types {
		names = append(names, t.Name)
	}
	return names
}
