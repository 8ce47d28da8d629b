package cli

import (
	"errors"
	"os"

	"github.com/raphaelgruber/pokerub/internal/tui"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// ErrNoTerminal is returned by browse when stdin or stdout is not a terminal.
var ErrNoTerminal = errors.New("browse needs an interactive terminal; use list, search or show instead")

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse the catalog interactively",
	Long: `Open the interactive browser: a paged list with name search, a details
view and your favorites.

Keys:
  ←/→ or h/l   previous/next page
  /            search fetched pages by name
  enter        details
  f            toggle favorite
  e            evolve (y to confirm, tab for the next candidate)
  F            favorites
  esc          back
  q            quit

Logs go to the log file only while the browser is open.`,
	Args: cobra.NoArgs,
	RunE: runBrowse,
}

// isTerminal is replaced in tests.
var isTerminal = func(fd uintptr) bool {
	return term.IsTerminal(int(fd)) //nolint:gosec // fd fits in int
}

func runBrowse(cmd *cobra.Command, args []string) error {
	if !isTerminal(os.Stdin.Fd()) || !isTerminal(os.Stdout.Fd()) {
		return ErrNoTerminal
	}
	return tui.Run(cmd.Context(), pokedex)
}
