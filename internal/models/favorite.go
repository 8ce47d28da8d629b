package models

// Favorite is a denormalized snapshot of an entity taken when it was
// favorited. It lives independently of the catalog.
//
// LegacyType is the singular "type" field written by old releases. It is
// kept on load so a re-saved payload still carries it.
type Favorite struct {
	ID         string        `json:"id"`
	Name       string        `json:"name"`
	ImageURL   string        `json:"imageUrl,omitempty"`
	Types      []PokemonType `json:"types,omitempty"`
	LegacyType string        `json:"type,omitempty"`
}

// NewFavorite builds a snapshot with the artwork URL for id.
func NewFavorite(id, name string, types []PokemonType) Favorite {
	return Favorite{
		ID:       id,
		Name:     name,
		ImageURL: ArtworkURL(id),
		Types:    append([]PokemonType(nil), types...),
	}
}

// Image returns the stored image URL, falling back to the artwork template.
func (f Favorite) Image() string {
	if f.ImageURL != "" {
		return f.ImageURL
	}
	return ArtworkURL(f.ID)
}

// TypeNames returns the type names in order.
func (f Favorite) TypeNames() []string {
	return typeNames(f.Types)
}
