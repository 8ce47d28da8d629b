package state

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/raphaelgruber/pokerub/internal/models"
)

// currentFavoriteVersion is the record shape written by this release.
//
//	v0: {id, name, imageUrl?, type: "fire"}
//	v1: {id, name, imageUrl?, types: [{name: "fire"}]}
const currentFavoriteVersion = 1

// favoriteUpgrades[v] lifts a record from version v to v+1.
var favoriteUpgrades = []func(rec map[string]any) map[string]any{
	upgradeSingularType,
}

// favoriteVersion detects the shape of a stored record. A non-empty string
// "type" without a "types" field (absent or null) is v0.
func favoriteVersion(rec map[string]any) int {
	if t, ok := rec["type"].(string); ok && t != "" {
		if types, ok := rec["types"]; !ok || types == nil {
			return 0
		}
	}
	return currentFavoriteVersion
}

// upgradeSingularType adds types: [{name: type}]. Every other field,
// "type" included, is kept.
func upgradeSingularType(rec map[string]any) map[string]any {
	out := make(map[string]any, len(rec)+1)
	for k, v := range rec {
		out[k] = v
	}
	out["types"] = []any{map[string]any{"name": rec["type"]}}
	return out
}

// upgradeFavorites decodes a persisted favorites payload, bringing every
// record up to currentFavoriteVersion.
func upgradeFavorites(raw []byte) ([]models.Favorite, error) {
	var records []map[string]any
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("decode favorites: %w", err)
	}

	favorites := make([]models.Favorite, 0, len(records))
	for i, rec := range records {
		if rec == nil {
			continue
		}
		for v := favoriteVersion(rec); v < currentFavoriteVersion; v++ {
			rec = favoriteUpgrades[v](rec)
		}
		normalizeID(rec)

		b, err := json.Marshal(rec)
		if err != nil {
			return nil, fmt.Errorf("re-encode favorite %d: %w", i, err)
		}
		var f models.Favorite
		if err := json.Unmarshal(b, &f); err != nil {
			return nil, fmt.Errorf("decode favorite %d: %w", i, err)
		}
		favorites = append(favorites, f)
	}
	return favorites, nil
}

// normalizeID turns numeric ids into their decimal string form.
func normalizeID(rec map[string]any) {
	if n, ok := rec["id"].(float64); ok {
		rec["id"] = strconv.FormatFloat(n, 'f', -1, 64)
	}
}

// dedupeFavorites collapses repeated ids: the first position wins, the last
// snapshot wins.
func dedupeFavorites(favorites []models.Favorite) []models.Favorite {
	index := make(map[string]int, len(favorites))
	out := make([]models.Favorite, 0, len(favorites))
	for _, f := range favorites {
		if i, ok := index[f.ID]; ok {
			out[i] = f
			continue
		}
		index[f.ID] = len(out)
		out = append(out, f)
	}
	return out
}
