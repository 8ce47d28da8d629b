package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Theme holds the color scheme for all screens.
type Theme struct {
	Title    lipgloss.Color
	Accent   lipgloss.Color
	Favorite lipgloss.Color
	Evolved  lipgloss.Color
	Error    lipgloss.Color
	Hint     lipgloss.Color
	Selected lipgloss.Color
}

var defaultTheme = Theme{
	Title:    lipgloss.Color("#FF5F5F"), // pokedex red
	Accent:   lipgloss.Color("#5FAFD7"), // light blue
	Favorite: lipgloss.Color("#FFD700"), // gold
	Evolved:  lipgloss.Color("#AF87FF"), // violet
	Error:    lipgloss.Color("#FF005F"),
	Hint:     lipgloss.Color("#6C6C6C"),
	Selected: lipgloss.Color("#3A3A3A"),
}

// typeColors follows the in-game type palette.
var typeColors = map[string]lipgloss.Color{
	"normal":   "#A8A77A",
	"fire":     "#EE8130",
	"water":    "#6390F0",
	"electric": "#F7D02C",
	"grass":    "#7AC74C",
	"ice":      "#96D9D6",
	"fighting": "#C22E28",
	"poison":   "#A33EA1",
	"ground":   "#E2BF65",
	"flying":   "#A98FF3",
	"psychic":  "#F95587",
	"bug":      "#A6B91A",
	"rock":     "#B6A136",
	"ghost":    "#735797",
	"dragon":   "#6F35FC",
	"dark":     "#705746",
	"steel":    "#B7B7CE",
	"fairy":    "#D685AD",
}

func (t Theme) titleStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Title).Bold(true)
}

func (t Theme) accentStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Accent)
}

func (t Theme) favoriteStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Favorite)
}

func (t Theme) evolvedStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Evolved).Bold(true)
}

func (t Theme) errorStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Error).Bold(true)
}

func (t Theme) hintStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Hint).Italic(true)
}

func (t Theme) selectedStyle() lipgloss.Style {
	return lipgloss.NewStyle().Background(t.Selected).Bold(true)
}

// typeBadges renders type names as colored labels.
func (t Theme) typeBadges(names []string) string {
	badges := make([]string, 0, len(names))
	for _, name := range names {
		color, ok := typeColors[name]
		if !ok {
			color = t.Hint
		}
		badges = append(badges, lipgloss.NewStyle().Foreground(color).Render(name))
	}
	return strings.Join(badges, " ")
}
