package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"charm.land/bubbles/v2/key"
	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"github.com/raphaelgruber/pokerub/internal/models"
	"github.com/raphaelgruber/pokerub/internal/service"
)

// pageMsg carries a page response back to the list screen.
type pageMsg struct {
	req      service.PageRequest
	entities []models.Entity
	err      error
}

// favoriteMsg reports a finished favorite toggle.
type favoriteMsg struct {
	name string
	on   bool
}

// evolveConfirm is a pending evolution awaiting y/n.
type evolveConfirm struct {
	entity  models.Entity
	targets []models.Evolution
	index   int
}

func (c evolveConfirm) target() models.Evolution {
	return c.targets[c.index]
}

// homeScreen is the paged list with name search.
type homeScreen struct {
	ctx context.Context
	svc *service.PokedexService

	page       int
	totalPages int
	entities   []models.Entity
	cursor     int
	loading    bool
	err        error

	search    textinput.Model
	searching bool

	confirm *evolveConfirm
	status  string
}

func newHomeScreen(ctx context.Context, svc *service.PokedexService) *homeScreen {
	search := textinput.New()
	search.Prompt = "/ "
	search.Placeholder = "search by name"
	search.CharLimit = 32

	return &homeScreen{
		ctx:        ctx,
		svc:        svc,
		page:       1,
		totalPages: svc.Pagination().TotalPages(),
		search:     search,
	}
}

func (h *homeScreen) Init() tea.Cmd {
	return h.fetch(h.page)
}

// fetch issues the request synchronously so the sequence number is taken
// before any later fetch, then runs it in the background.
func (h *homeScreen) fetch(page int) tea.Cmd {
	req := h.svc.BeginFetch(page)
	h.page = req.Number
	h.loading = true
	h.err = nil
	ctx, svc := h.ctx, h.svc
	return func() tea.Msg {
		entities, err := svc.Fetch(ctx, req)
		return pageMsg{req: req, entities: entities, err: err}
	}
}

// visible is the current page, or the cache filtered by name while a
// search query is set.
func (h *homeScreen) visible() []service.Item {
	if q := strings.TrimSpace(h.search.Value()); q != "" {
		return h.svc.Items(h.svc.Search(q))
	}
	return h.svc.Items(h.entities)
}

func (h *homeScreen) selected() (service.Item, bool) {
	items := h.visible()
	if h.cursor < 0 || h.cursor >= len(items) {
		return service.Item{}, false
	}
	return items[h.cursor], true
}

func (h *homeScreen) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case pageMsg:
		h.applyPage(msg)
		return nil

	case favoriteMsg:
		if msg.on {
			h.status = fmt.Sprintf("Added %s to favorites", models.Capitalize(msg.name))
		} else {
			h.status = fmt.Sprintf("Removed %s from favorites", models.Capitalize(msg.name))
		}
		return nil

	case tea.KeyPressMsg:
		switch {
		case h.confirm != nil:
			return h.updateConfirm(msg)
		case h.searching:
			return h.updateSearch(msg)
		default:
			return h.updateList(msg)
		}
	}

	if h.searching {
		var cmd tea.Cmd
		h.search, cmd = h.search.Update(msg)
		return cmd
	}
	return nil
}

func (h *homeScreen) applyPage(msg pageMsg) {
	if !h.svc.IsCurrent(msg.req) {
		return
	}
	h.loading = false
	if msg.err != nil {
		h.err = msg.err
		return
	}
	page, err := h.svc.ApplyPage(msg.req, msg.entities)
	if errors.Is(err, service.ErrStalePage) {
		return
	}
	h.entities = page.Entities
	h.totalPages = page.TotalPages
	h.cursor = 0
}

func (h *homeScreen) updateConfirm(msg tea.KeyPressMsg) tea.Cmd {
	c := h.confirm
	switch {
	case key.Matches(msg, keys.Confirm):
		h.confirm = nil
		target, err := h.svc.Evolve(c.entity, c.target().ID)
		if err != nil {
			h.status = err.Error()
			return nil
		}
		h.status = fmt.Sprintf("%s evolved into %s!", models.Capitalize(c.entity.Name), models.Capitalize(target.Name))
	case key.Matches(msg, keys.Cancel):
		h.confirm = nil
	case key.Matches(msg, keys.Cycle):
		c.index = (c.index + 1) % len(c.targets)
	}
	return nil
}

func (h *homeScreen) updateSearch(msg tea.KeyPressMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		h.searching = false
		h.search.Blur()
		h.search.SetValue("")
		h.cursor = 0
		return nil
	case "enter":
		h.searching = false
		h.search.Blur()
		return nil
	}
	var cmd tea.Cmd
	h.search, cmd = h.search.Update(msg)
	h.cursor = 0
	return cmd
}

func (h *homeScreen) updateList(msg tea.KeyPressMsg) tea.Cmd {
	pages := h.svc.Pagination()
	switch {
	case key.Matches(msg, keys.Quit):
		return tea.Quit
	case key.Matches(msg, keys.Up):
		if h.cursor > 0 {
			h.cursor--
		}
	case key.Matches(msg, keys.Down):
		if h.cursor < len(h.visible())-1 {
			h.cursor++
		}
	case key.Matches(msg, keys.PrevPage):
		if pages.HasPrev(h.page) {
			return h.fetch(h.page - 1)
		}
	case key.Matches(msg, keys.NextPage):
		if pages.HasNext(h.page) {
			return h.fetch(h.page + 1)
		}
	case key.Matches(msg, keys.Retry):
		if h.err != nil {
			return h.fetch(h.page)
		}
	case key.Matches(msg, keys.Search):
		h.searching = true
		h.status = ""
		return h.search.Focus()
	case key.Matches(msg, keys.Back):
		if h.search.Value() != "" {
			h.search.SetValue("")
			h.cursor = 0
		}
	case key.Matches(msg, keys.Favorites):
		return navigate(FavoritesRoute{})
	case key.Matches(msg, keys.Open):
		if it, ok := h.selected(); ok {
			return navigate(DetailsRoute{PokemonID: it.DisplayID, PokemonName: it.DisplayName})
		}
	case key.Matches(msg, keys.Favorite):
		if it, ok := h.selected(); ok {
			ctx, svc := h.ctx, h.svc
			return func() tea.Msg {
				on := svc.ToggleFavorite(ctx, it.Entity)
				return favoriteMsg{name: it.DisplayName, on: on}
			}
		}
	case key.Matches(msg, keys.Evolve):
		it, ok := h.selected()
		if !ok {
			return nil
		}
		if !it.Evolvable {
			h.status = fmt.Sprintf("%s cannot evolve", models.Capitalize(it.DisplayName))
			return nil
		}
		h.confirm = &evolveConfirm{entity: it.Entity, targets: it.Entity.EvolutionTargets()}
	}
	return nil
}

func (h *homeScreen) View(f frame) string {
	t := f.theme
	var b strings.Builder

	b.WriteString(t.titleStyle().Render("Pokédex"))
	if h.totalPages > 0 {
		b.WriteString(t.hintStyle().Render(fmt.Sprintf("  page %d/%d", h.page, h.totalPages)))
	}
	if h.loading {
		b.WriteString(" " + f.spinner)
	}
	b.WriteString("\n")

	if h.searching || h.search.Value() != "" {
		b.WriteString(h.search.View() + "\n")
	}
	b.WriteString("\n")

	if h.err != nil {
		b.WriteString(t.errorStyle().Render("Failed to load page: "+h.err.Error()) + "\n")
		b.WriteString(t.hintStyle().Render("press r to retry") + "\n")
	}

	items := h.visible()
	switch {
	case len(items) == 0 && h.search.Value() != "":
		b.WriteString(t.hintStyle().Render(fmt.Sprintf("No Pokémon match %q", h.search.Value())) + "\n")
	case len(items) == 0 && h.loading:
		b.WriteString("Loading...\n")
	}
	for i, it := range items {
		b.WriteString(h.renderItem(t, it, i == h.cursor) + "\n")
	}

	if h.confirm != nil {
		c := h.confirm
		prompt := fmt.Sprintf("Evolve %s into %s? (y/n)", models.Capitalize(c.entity.Name), models.Capitalize(c.target().Name))
		if len(c.targets) > 1 {
			prompt += fmt.Sprintf(" [%d/%d, tab for next]", c.index+1, len(c.targets))
		}
		b.WriteString("\n" + t.evolvedStyle().Render(prompt) + "\n")
	}
	if h.status != "" {
		b.WriteString("\n" + t.accentStyle().Render(h.status) + "\n")
	}

	b.WriteString("\n" + f.help.ShortHelpView([]key.Binding{
		keys.Up, keys.Down, keys.PrevPage, keys.NextPage, keys.Open,
		keys.Favorite, keys.Evolve, keys.Search, keys.Favorites, keys.Quit,
	}))
	return b.String()
}

func (h *homeScreen) renderItem(t Theme, it service.Item, selected bool) string {
	star := " "
	if it.Favorite {
		star = t.favoriteStyle().Render("★")
	}
	line := fmt.Sprintf("%s %s %-12s %s", star, models.FormatID(it.DisplayID), models.Capitalize(it.DisplayName), t.typeBadges(it.TypeNames()))
	switch {
	case it.Evolved:
		line += " " + t.evolvedStyle().Render("evolved")
	case it.Evolvable:
		line += " " + t.hintStyle().Render("can evolve")
	}
	if selected {
		return t.selectedStyle().Render("> " + line)
	}
	return "  " + line
}
