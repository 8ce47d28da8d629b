// Package models defines the data structures shared by the pokerub client,
// state manager and screens.
package models

import (
	"fmt"
	"strconv"
	"strings"
)

// artworkURLTemplate is the official-artwork sprite location used for every id.
const artworkURLTemplate = "https://raw.githubusercontent.com/PokeAPI/sprites/master/sprites/pokemon/other/official-artwork/%s.png"

// MaxBaseStat is the highest base stat any Pokémon can have; stat bars are
// drawn relative to it.
const MaxBaseStat = 255

// ArtworkURL returns the official artwork URL for an id.
func ArtworkURL(id string) string {
	return fmt.Sprintf(artworkURLTemplate, id)
}

// FormatID renders an id as "#001". Non-numeric ids are returned with a
// leading "#" and no padding.
func FormatID(id string) string {
	if n, err := strconv.Atoi(id); err == nil && n >= 0 {
		return fmt.Sprintf("#%03d", n)
	}
	return "#" + id
}

var statLabels = map[string]string{
	"hp":              "HP",
	"attack":          "Attack",
	"defense":         "Defense",
	"special-attack":  "Sp. Attack",
	"special-defense": "Sp. Defense",
	"speed":           "Speed",
}

// StatLabel returns a display label for an API stat name.
// Unknown names are returned unchanged.
func StatLabel(name string) string {
	if label, ok := statLabels[name]; ok {
		return label
	}
	return name
}

// Capitalize upper-cases the first letter of each dash-separated word
// ("mr-mime" -> "Mr-Mime").
func Capitalize(name string) string {
	parts := strings.Split(name, "-")
	for i, p := range parts {
		if p == "" {
			continue
		}
		parts[i] = strings.ToUpper(p[:1]) + p[1:]
	}
	return strings.Join(parts, "-")
}
