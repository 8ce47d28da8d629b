package tui

import tea "charm.land/bubbletea/v2"

// Route names a screen and its parameters.
type Route interface {
	route()
}

// HomeRoute is the paged list.
type HomeRoute struct{}

// DetailsRoute shows one record. PokemonName is optional and only used as
// the title until the record is loaded.
type DetailsRoute struct {
	PokemonID   string
	PokemonName string
}

// FavoritesRoute lists the favorite snapshots.
type FavoritesRoute struct{}

func (HomeRoute) route()      {}
func (DetailsRoute) route()   {}
func (FavoritesRoute) route() {}

// navigateMsg pushes a route.
type navigateMsg struct{ to Route }

// backMsg pops the current route.
type backMsg struct{}

func navigate(to Route) tea.Cmd {
	return func() tea.Msg { return navigateMsg{to: to} }
}

func back() tea.Msg { return backMsg{} }

// Stack is the navigation history. The bottom entry is never popped.
type Stack struct {
	routes []Route
}

// NewStack starts a stack at root.
func NewStack(root Route) *Stack {
	return &Stack{routes: []Route{root}}
}

func (s *Stack) Push(r Route) {
	s.routes = append(s.routes, r)
}

// Pop removes the top route and reports whether anything was removed.
func (s *Stack) Pop() bool {
	if len(s.routes) <= 1 {
		return false
	}
	s.routes = s.routes[:len(s.routes)-1]
	return true
}

func (s *Stack) Current() Route {
	return s.routes[len(s.routes)-1]
}

func (s *Stack) Depth() int {
	return len(s.routes)
}
