package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var searchPages int

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search Pokémon by name",
	Long: `Fetch the first pages of the catalog concurrently and filter them by name.

Matching is case-insensitive and looks for the query anywhere in the name.
Only fetched pages are searched; raise --pages to search further.

Examples:
  pokerub search saur
  pokerub search pika --pages 5`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchPages, "pages", "n", 3, "number of pages to fetch before filtering")
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := args[0]
	out := cmd.OutOrStdout()

	if err := pokedex.PrefetchPages(cmd.Context(), 1, searchPages); err != nil {
		return fmt.Errorf("search: %w", err)
	}

	results := pokedex.Search(query)
	if len(results) == 0 {
		fmt.Fprintf(out, "No Pokémon match %q in the first %d pages.\n", query, searchPages)
		return nil
	}

	fmt.Fprintf(out, "Found %d Pokémon matching %q:\n\n", len(results), query)
	printItems(out, pokedex.Items(results))
	return nil
}
