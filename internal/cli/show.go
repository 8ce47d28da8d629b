package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show the details of a Pokémon",
	Long: `Show height, weight, types, abilities and base stats of a Pokémon.

Examples:
  pokerub show 25
  pokerub show 133`,
	Args: cobra.ExactArgs(1),
	RunE: runShow,
}

func runShow(cmd *cobra.Command, args []string) error {
	view, err := pokedex.Details(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("show %s: %w", args[0], err)
	}
	printDetail(cmd.OutOrStdout(), view)
	return nil
}
