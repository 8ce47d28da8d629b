package cli

import (
	"fmt"

	"github.com/raphaelgruber/pokerub/internal/service"
	"github.com/spf13/cobra"
)

var (
	listPage   int
	listSearch string
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List one page of the catalog",
	Long: `List one page of the catalog, ordered by id.

Favorites are marked with ★. Pokémon you have evolved are shown in their
evolved form.

Examples:
  pokerub list
  pokerub list --page 3
  pokerub list --page 2 --search saur`,
	Args: cobra.NoArgs,
	RunE: runList,
}

func init() {
	listCmd.Flags().IntVarP(&listPage, "page", "p", 1, "page number (1-based)")
	listCmd.Flags().StringVarP(&listSearch, "search", "s", "", "filter fetched pages by name")
}

func runList(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	page, err := pokedex.FetchPage(cmd.Context(), listPage)
	if err != nil {
		return fmt.Errorf("list pokemon: %w", err)
	}

	fmt.Fprintf(out, "Page %d/%d\n\n", page.Number, page.TotalPages)

	entities := page.Entities
	if listSearch != "" {
		entities = pokedex.Search(listSearch)
		if len(entities) == 0 {
			fmt.Fprintf(out, "No Pokémon match %q.\n", listSearch)
			return nil
		}
	}

	printItems(out, pokedex.Items(entities))
	return nil
}

// itemNote describes the evolution status shown after a list row.
func itemNote(it service.Item) string {
	switch {
	case it.Evolved:
		return " (evolved)"
	case it.Evolvable:
		return " (can evolve)"
	default:
		return ""
	}
}
