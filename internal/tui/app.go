// Package tui implements the interactive terminal screens: the paged list,
// the details view and the favorites list, behind a navigation stack.
package tui

import (
	"context"
	"errors"
	"fmt"

	"charm.land/bubbles/v2/help"
	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"
	"github.com/raphaelgruber/pokerub/internal/service"
)

// screen is one entry of the navigation stack. Screens are pointers and
// mutate in place.
type screen interface {
	Init() tea.Cmd
	Update(msg tea.Msg) tea.Cmd
	View(f frame) string
}

// frame carries what every screen needs to render.
type frame struct {
	width   int
	theme   Theme
	spinner string
	help    help.Model
}

// App is the root bubbletea model.
type App struct {
	ctx     context.Context
	svc     *service.PokedexService
	stack   *Stack
	screens []screen
	home    *homeScreen
	spinner spinner.Model
	help    help.Model
	width   int
	theme   Theme
}

// NewApp creates the root model with the list screen on top.
func NewApp(ctx context.Context, svc *service.PokedexService) App {
	home := newHomeScreen(ctx, svc)
	return App{
		ctx:     ctx,
		svc:     svc,
		stack:   NewStack(HomeRoute{}),
		screens: []screen{home},
		home:    home,
		spinner: spinner.New(spinner.WithSpinner(spinner.MiniDot)),
		help:    help.New(),
		width:   80,
		theme:   defaultTheme,
	}
}

// Init loads the first page.
func (a App) Init() tea.Cmd {
	return tea.Batch(a.home.Init(), a.spinner.Tick)
}

// Update handles navigation and forwards everything else to the screen on
// top. Page results always go to the list screen.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.help.SetWidth(msg.Width)
		return a, nil

	case tea.KeyPressMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case navigateMsg:
		a.stack.Push(msg.to)
		s := a.screenFor(msg.to)
		a.screens = append(a.screens, s)
		return a, s.Init()

	case backMsg:
		if a.stack.Pop() {
			a.screens = a.screens[:len(a.screens)-1]
		}
		return a, nil

	case pageMsg:
		return a, a.home.Update(msg)
	}

	return a, a.top().Update(msg)
}

// View renders the screen on top.
func (a App) View() tea.View {
	v := tea.NewView(a.top().View(frame{
		width:   a.width,
		theme:   a.theme,
		spinner: a.spinner.View(),
		help:    a.help,
	}))
	v.AltScreen = true
	v.WindowTitle = "pokerub"
	return v
}

// Route returns the route on top of the stack.
func (a App) Route() Route {
	return a.stack.Current()
}

func (a App) top() screen {
	return a.screens[len(a.screens)-1]
}

func (a App) screenFor(r Route) screen {
	switch r := r.(type) {
	case DetailsRoute:
		return newDetailsScreen(a.ctx, a.svc, r)
	case FavoritesRoute:
		return newFavoritesScreen(a.svc)
	default:
		return a.home
	}
}

// Run starts the interactive browser and blocks until the user quits or
// ctx is cancelled.
func Run(ctx context.Context, svc *service.PokedexService) error {
	p := tea.NewProgram(NewApp(ctx, svc), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("browse UI error: %w", err)
	}
	return nil
}
