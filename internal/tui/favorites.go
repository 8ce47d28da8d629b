package tui

import (
	"fmt"
	"strings"

	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"
	"github.com/raphaelgruber/pokerub/internal/models"
	"github.com/raphaelgruber/pokerub/internal/service"
)

// favoritesScreen lists the stored snapshots. It reads the state manager on
// every render, so changes made on other screens show up immediately.
type favoritesScreen struct {
	svc    *service.PokedexService
	cursor int
}

func newFavoritesScreen(svc *service.PokedexService) *favoritesScreen {
	return &favoritesScreen{svc: svc}
}

func (s *favoritesScreen) Init() tea.Cmd { return nil }

func (s *favoritesScreen) Update(msg tea.Msg) tea.Cmd {
	km, ok := msg.(tea.KeyPressMsg)
	if !ok {
		return nil
	}
	favs := s.svc.State().Favorites()

	switch {
	case key.Matches(km, keys.Quit):
		return tea.Quit
	case key.Matches(km, keys.Back):
		return back
	case key.Matches(km, keys.Up):
		if s.cursor > 0 {
			s.cursor--
		}
	case key.Matches(km, keys.Down):
		if s.cursor < len(favs)-1 {
			s.cursor++
		}
	case key.Matches(km, keys.Open):
		if s.cursor < len(favs) {
			f := favs[s.cursor]
			return navigate(DetailsRoute{PokemonID: f.ID, PokemonName: f.Name})
		}
	case key.Matches(km, keys.Remove):
		if s.cursor < len(favs) {
			s.svc.State().RemoveFavorite(favs[s.cursor].ID)
			s.cursor = max(min(s.cursor, len(favs)-2), 0)
		}
	}
	return nil
}

func (s *favoritesScreen) View(f frame) string {
	t := f.theme
	favs := s.svc.State().Favorites()

	var b strings.Builder
	b.WriteString(t.titleStyle().Render("Favorites"))
	b.WriteString(t.hintStyle().Render(fmt.Sprintf("  %d saved", len(favs))) + "\n\n")

	if len(favs) == 0 {
		b.WriteString(t.hintStyle().Render("No favorites yet. Press f on the list to add one.") + "\n")
	}
	for i, fav := range favs {
		line := fmt.Sprintf("%s %s %-12s %s", t.favoriteStyle().Render("★"), models.FormatID(fav.ID), models.Capitalize(fav.Name), t.typeBadges(fav.TypeNames()))
		if i == s.cursor {
			b.WriteString(t.selectedStyle().Render("> "+line) + "\n")
			b.WriteString("    " + t.hintStyle().Render(fav.Image()) + "\n")
			continue
		}
		b.WriteString("  " + line + "\n")
	}

	b.WriteString("\n" + f.help.ShortHelpView([]key.Binding{keys.Up, keys.Down, keys.Open, keys.Remove, keys.Back, keys.Quit}))
	return b.String()
}
