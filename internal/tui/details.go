package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"charm.land/bubbles/v2/key"
	"charm.land/bubbles/v2/progress"
	tea "charm.land/bubbletea/v2"
	"github.com/raphaelgruber/pokerub/internal/client"
	"github.com/raphaelgruber/pokerub/internal/models"
	"github.com/raphaelgruber/pokerub/internal/service"
)

// detailMsg carries a details response. id guards against a response for a
// screen that was already replaced.
type detailMsg struct {
	id   string
	view *service.DetailView
	err  error
}

type detailsScreen struct {
	ctx   context.Context
	svc   *service.PokedexService
	route DetailsRoute

	view    *service.DetailView
	err     error
	loading bool
	bar     progress.Model
	status  string
}

func newDetailsScreen(ctx context.Context, svc *service.PokedexService, r DetailsRoute) *detailsScreen {
	return &detailsScreen{
		ctx:     ctx,
		svc:     svc,
		route:   r,
		loading: true,
		bar: progress.New(
			progress.WithDefaultBlend(),
			progress.WithWidth(30),
			progress.WithoutPercentage(),
		),
	}
}

func (d *detailsScreen) Init() tea.Cmd {
	ctx, svc, id := d.ctx, d.svc, d.route.PokemonID
	return func() tea.Msg {
		view, err := svc.Details(ctx, id)
		return detailMsg{id: id, view: view, err: err}
	}
}

// Title is the route name until the record loads, then the record name.
func (d *detailsScreen) Title() string {
	switch {
	case d.view != nil:
		return models.Capitalize(d.view.Name)
	case d.route.PokemonName != "":
		return models.Capitalize(d.route.PokemonName)
	default:
		return "Details"
	}
}

func (d *detailsScreen) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case detailMsg:
		if msg.id != d.route.PokemonID {
			return nil
		}
		d.loading = false
		d.view, d.err = msg.view, msg.err
		return nil

	case tea.KeyPressMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			return tea.Quit
		case key.Matches(msg, keys.Back):
			return back
		case key.Matches(msg, keys.Retry):
			if d.err != nil {
				d.loading, d.err = true, nil
				return d.Init()
			}
		case key.Matches(msg, keys.Favorite):
			if d.view == nil {
				return nil
			}
			on := d.svc.ToggleRecord(d.view.Entity)
			d.view.Favorite = on
			if on {
				d.status = "Added to favorites"
			} else {
				d.status = "Removed from favorites"
			}
		}
	}
	return nil
}

func (d *detailsScreen) View(f frame) string {
	t := f.theme
	var b strings.Builder

	header := t.titleStyle().Render(d.Title())
	if d.view != nil {
		header = t.hintStyle().Render(models.FormatID(d.view.ID)) + " " + header
		if d.view.Favorite {
			header += " " + t.favoriteStyle().Render("★")
		}
		if d.view.Evolved() {
			header += " " + t.evolvedStyle().Render("Evolved")
		}
	}
	b.WriteString(header + "\n\n")

	switch {
	case d.loading:
		b.WriteString(f.spinner + " Loading...\n")
	case errors.Is(d.err, client.ErrNotFound):
		b.WriteString(t.errorStyle().Render("Pokémon not found") + "\n")
	case d.err != nil:
		b.WriteString(t.errorStyle().Render("Failed to load details: "+d.err.Error()) + "\n")
		b.WriteString(t.hintStyle().Render("press r to retry") + "\n")
	default:
		d.renderRecord(&b, t)
	}

	if d.status != "" {
		b.WriteString("\n" + t.accentStyle().Render(d.status) + "\n")
	}
	b.WriteString("\n" + f.help.ShortHelpView([]key.Binding{keys.Favorite, keys.Back, keys.Quit}))
	return b.String()
}

func (d *detailsScreen) renderRecord(b *strings.Builder, t Theme) {
	v := d.view
	if v.Evolved() {
		b.WriteString(t.evolvedStyle().Render("Evolved from "+models.FormatID(v.EvolvedFrom)) + "\n\n")
	}

	fmt.Fprintf(b, "%-11s %s\n", "Types", t.typeBadges(v.TypeNames()))
	fmt.Fprintf(b, "%-11s %.1f m\n", "Height", v.HeightMeters())
	fmt.Fprintf(b, "%-11s %.1f kg\n", "Weight", v.WeightKilograms())
	if len(v.Abilities) > 0 {
		names := make([]string, 0, len(v.Abilities))
		for _, a := range v.Abilities {
			names = append(names, models.Capitalize(a))
		}
		fmt.Fprintf(b, "%-11s %s\n", "Abilities", strings.Join(names, ", "))
	}
	fmt.Fprintf(b, "%-11s %s\n", "Artwork", t.hintStyle().Render(models.ArtworkURL(v.ID)))

	if len(v.Stats) > 0 {
		b.WriteString("\n" + t.accentStyle().Render("Base stats") + "\n")
		for _, s := range v.Stats {
			pct := min(float64(s.BaseStat)/models.MaxBaseStat, 1)
			fmt.Fprintf(b, "%-11s %3d %s\n", models.StatLabel(s.Name), s.BaseStat, d.bar.ViewAs(pct))
		}
	}

	if targets := v.EvolutionTargets(); len(targets) > 0 {
		names := make([]string, 0, len(targets))
		for _, e := range targets {
			names = append(names, models.Capitalize(e.Name))
		}
		b.WriteString("\n" + t.hintStyle().Render("Evolves into "+strings.Join(names, ", ")) + "\n")
	}
}
