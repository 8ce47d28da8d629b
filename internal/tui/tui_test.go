package tui

import (
	"context"
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/raphaelgruber/pokerub/internal/catalog"
	"github.com/raphaelgruber/pokerub/internal/client"
	"github.com/raphaelgruber/pokerub/internal/server"
	"github.com/raphaelgruber/pokerub/internal/service"
	"github.com/raphaelgruber/pokerub/internal/state"
	"github.com/raphaelgruber/pokerub/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestService(t *testing.T) *service.PokedexService {
	t.Helper()
	srv, err := server.New(discard())
	require.NoError(t, err)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	c, err := client.New(ts.URL+"/graphql", client.WithLogger(discard()))
	require.NoError(t, err)

	st := state.Open(context.Background(), store.NewMemoryStore(), discard())
	t.Cleanup(func() { _ = st.Close() })
	return service.NewPokedexService(c, st, catalog.NewPagination(10, 28), 2, discard())
}

// newTestApp returns an app with the first page loaded.
func newTestApp(t *testing.T) App {
	t.Helper()
	a := NewApp(context.Background(), newTestService(t))
	return drive(a, a.home.Init()())
}

func press(s string) tea.KeyPressMsg {
	switch s {
	case "enter":
		return tea.KeyPressMsg{Code: tea.KeyEnter}
	case "esc":
		return tea.KeyPressMsg{Code: tea.KeyEsc}
	case "tab":
		return tea.KeyPressMsg{Code: tea.KeyTab}
	case "down":
		return tea.KeyPressMsg{Code: tea.KeyDown}
	}
	r := []rune(s)[0]
	return tea.KeyPressMsg{Code: r, Text: s}
}

// drive feeds msg to the app and keeps running returned commands while they
// produce app messages. Timer-based commands (spinner, cursor blink) are
// dropped.
func drive(a App, msg tea.Msg) App {
	for i := 0; msg != nil && i < 10; i++ {
		m, cmd := a.Update(msg)
		a = m.(App)
		msg = nil
		if cmd == nil {
			break
		}
		switch out := cmd().(type) {
		case pageMsg, favoriteMsg, detailMsg, navigateMsg, backMsg:
			msg = out
		}
	}
	return a
}

// typeText sends key presses without running commands.
func typeText(a App, text string) App {
	for _, r := range text {
		m, _ := a.Update(press(string(r)))
		a = m.(App)
	}
	return a
}

func render(a App) string {
	return a.top().View(frame{width: 80, theme: a.theme, help: a.help})
}

func TestHomeLoadsFirstPage(t *testing.T) {
	a := newTestApp(t)

	view := render(a)
	assert.Contains(t, view, "page 1/3")
	assert.Contains(t, view, "#001 Bulbasaur")
	assert.Contains(t, view, "#010 Caterpie")
	assert.NotContains(t, view, "Metapod")
	assert.Contains(t, view, "can evolve")
}

func TestHomePaging(t *testing.T) {
	a := newTestApp(t)

	a = drive(a, press("l"))
	view := render(a)
	assert.Contains(t, view, "page 2/3")
	assert.Contains(t, view, "#011 Metapod")
	assert.NotContains(t, view, "Bulbasaur")

	a = drive(a, press("h"))
	assert.Contains(t, render(a), "page 1/3")

	// No page before the first.
	a = drive(a, press("h"))
	assert.Equal(t, 1, a.home.page)
}

func TestHomeDiscardsStalePage(t *testing.T) {
	a := newTestApp(t)
	h := a.home

	slow := h.fetch(2)
	fast := h.fetch(3)
	a = drive(a, fast())
	a = drive(a, slow())

	assert.Equal(t, 3, a.home.page)
	assert.Contains(t, render(a), "#172 Pichu")
	assert.NotContains(t, render(a), "Metapod")
}

func TestHomeFavoriteAndEvolve(t *testing.T) {
	a := newTestApp(t)
	svc := a.svc

	a = drive(a, press("f"))
	assert.True(t, svc.State().IsFavorite("1"))
	assert.Contains(t, render(a), "Added Bulbasaur to favorites")

	a = drive(a, press("f"))
	assert.False(t, svc.State().IsFavorite("1"))

	a = drive(a, press("e"))
	assert.Contains(t, render(a), "Evolve Bulbasaur into Ivysaur? (y/n)")
	a = drive(a, press("y"))
	assert.Equal(t, "2", svc.State().ResolveDisplayID("1"))
	assert.Contains(t, render(a), "Bulbasaur evolved into Ivysaur!")

	// The evolved form is what gets favorited.
	a = drive(a, press("f"))
	assert.True(t, svc.State().IsFavorite("2"))
	assert.False(t, svc.State().IsFavorite("1"))

	a = drive(a, press("e"))
	assert.Contains(t, render(a), "Ivysaur cannot evolve")
}

func TestHomeEvolveCancel(t *testing.T) {
	a := newTestApp(t)

	a = drive(a, press("e"))
	a = drive(a, press("n"))
	assert.False(t, a.svc.State().HasEvolved("1"))
	assert.NotContains(t, render(a), "Evolve Bulbasaur")
}

func TestHomeSearch(t *testing.T) {
	a := newTestApp(t)
	a = drive(a, press("l"))

	m, _ := a.Update(press("/"))
	a = typeText(m.(App), "pie")
	view := render(a)
	assert.Contains(t, view, "Caterpie", "earlier pages stay searchable")
	assert.NotContains(t, view, "Metapod")

	a = typeText(a, "zzz")
	assert.Contains(t, render(a), `No Pokémon match "piezzz"`)

	m, _ = a.Update(press("esc"))
	a = m.(App)
	assert.Contains(t, render(a), "Metapod")
}

func TestNavigateToDetailsAndBack(t *testing.T) {
	a := newTestApp(t)

	a = drive(a, press("e"))
	a = drive(a, press("y"))
	a = drive(a, press("enter"))

	require.Equal(t, DetailsRoute{PokemonID: "2", PokemonName: "ivysaur"}, a.Route())
	view := render(a)
	assert.Contains(t, view, "#002")
	assert.Contains(t, view, "Ivysaur")
	assert.Contains(t, view, "Evolved from #001")
	assert.Contains(t, view, "1.0 m")
	assert.Contains(t, view, "13.0 kg")
	assert.Contains(t, view, "Sp. Attack")
	assert.Contains(t, view, "Evolves into Venusaur")

	a = drive(a, press("f"))
	assert.True(t, a.svc.State().IsFavorite("2"))
	assert.Contains(t, render(a), "Added to favorites")

	a = drive(a, press("esc"))
	assert.Equal(t, HomeRoute{}, a.Route())
	assert.Equal(t, 1, a.stack.Depth())
}

func TestDetailsNotFound(t *testing.T) {
	a := newTestApp(t)
	a = drive(a, navigateMsg{to: DetailsRoute{PokemonID: "9999"}})

	d, ok := a.top().(*detailsScreen)
	require.True(t, ok)
	assert.Equal(t, "Details", d.Title())
	assert.Contains(t, render(a), "Pokémon not found")
}

func TestDetailsTitleFallsBackToRouteName(t *testing.T) {
	d := newDetailsScreen(context.Background(), nil, DetailsRoute{PokemonID: "4", PokemonName: "charmander"})
	assert.Equal(t, "Charmander", d.Title())
}

func TestFavoritesScreen(t *testing.T) {
	a := newTestApp(t)

	a = drive(a, press("F"))
	require.Equal(t, FavoritesRoute{}, a.Route())
	assert.Contains(t, render(a), "No favorites yet")

	a = drive(a, press("esc"))
	a = drive(a, press("f"))
	a = drive(a, press("down"))
	a = drive(a, press("down"))
	a = drive(a, press("down"))
	a = drive(a, press("f"))
	a = drive(a, press("F"))

	view := render(a)
	assert.Contains(t, view, "2 saved")
	assert.Contains(t, view, "#001 Bulbasaur")
	assert.Contains(t, view, "#004 Charmander")
	assert.Contains(t, view, "official-artwork/1.png")

	a = drive(a, press("x"))
	assert.Equal(t, []string{"4"}, favoriteIDs(a.svc))

	a = drive(a, press("enter"))
	assert.Equal(t, DetailsRoute{PokemonID: "4", PokemonName: "charmander"}, a.Route())
	assert.Equal(t, 3, a.stack.Depth())
}

func TestDetailsToggleRemovesFavoriteOfEarlierForm(t *testing.T) {
	a := newTestApp(t)

	// Favorite Bulbasaur, then evolve it into Ivysaur.
	a = drive(a, press("f"))
	a = drive(a, press("e"))
	a = drive(a, press("y"))
	require.Equal(t, []string{"1"}, favoriteIDs(a.svc))

	a = drive(a, press("F"))
	a = drive(a, press("enter"))
	require.Equal(t, DetailsRoute{PokemonID: "1", PokemonName: "bulbasaur"}, a.Route())
	assert.Contains(t, render(a), "★")

	a = drive(a, press("f"))
	assert.Empty(t, favoriteIDs(a.svc), "the record on screen is removed")
	assert.False(t, a.svc.State().IsFavorite("2"), "the evolved form is not added")
	view := render(a)
	assert.Contains(t, view, "Removed from favorites")
	assert.NotContains(t, view, "★")
}

func TestHomeRowShowsEvolvedFormTypes(t *testing.T) {
	a := newTestApp(t)

	// Eevee (normal) is on page 3 with its evolutions.
	a = drive(a, press("l"))
	a = drive(a, press("l"))
	for range a.home.visible() {
		if it, ok := a.home.selected(); ok && it.Entity.ID == "133" {
			break
		}
		a = drive(a, press("down"))
	}
	it, ok := a.home.selected()
	require.True(t, ok)
	require.Equal(t, "133", it.Entity.ID)

	a = drive(a, press("e"))
	a = drive(a, press("y"))

	it, _ = a.home.selected()
	assert.Equal(t, "134", it.DisplayID)
	assert.Equal(t, []string{"water"}, it.TypeNames())
}

func TestQuit(t *testing.T) {
	a := newTestApp(t)
	_, cmd := a.Update(press("q"))
	require.NotNil(t, cmd)
	_, ok := cmd().(tea.QuitMsg)
	assert.True(t, ok)
}

func TestStack(t *testing.T) {
	s := NewStack(HomeRoute{})
	assert.False(t, s.Pop(), "root stays")

	s.Push(FavoritesRoute{})
	s.Push(DetailsRoute{PokemonID: "1"})
	assert.Equal(t, 3, s.Depth())
	assert.Equal(t, DetailsRoute{PokemonID: "1"}, s.Current())

	assert.True(t, s.Pop())
	assert.Equal(t, FavoritesRoute{}, s.Current())
}

func favoriteIDs(svc *service.PokedexService) []string {
	var ids []string
	for _, f := range svc.State().Favorites() {
		ids = append(ids, f.ID)
	}
	return ids
}
