package cli

import (
	"fmt"

	"github.com/raphaelgruber/pokerub/internal/models"
	"github.com/spf13/cobra"
)

var evolveResetForce bool

var evolveCmd = &cobra.Command{
	Use:   "evolve <id> [target-id]",
	Short: "Evolve a Pokémon",
	Long: `Confirm the evolution of a Pokémon into one of its direct evolutions.

Without a target the first evolution in the chain is used. Branching
families (eevee) accept any direct evolution as target. Each Pokémon can
be evolved once; use "evolve reset" to start over.

Examples:
  pokerub evolve 1
  pokerub evolve 133 135
  pokerub evolve reset --force`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runEvolve,
}

var evolveResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Forget all evolutions",
	Args:  cobra.NoArgs,
	RunE:  runEvolveReset,
}

func init() {
	evolveResetCmd.Flags().BoolVarP(&evolveResetForce, "force", "f", false, "skip confirmation")
	evolveCmd.AddCommand(evolveResetCmd)
}

func runEvolve(cmd *cobra.Command, args []string) error {
	var target string
	if len(args) == 2 {
		target = args[1]
	}

	e, evo, err := pokedex.EvolveByID(cmd.Context(), args[0], target)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s evolved into %s (%s)!\n",
		models.Capitalize(e.Name), models.Capitalize(evo.Name), models.FormatID(evo.ID))
	return nil
}

func runEvolveReset(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	n := len(manager.Evolutions())
	if n == 0 {
		fmt.Fprintln(out, "No evolutions to reset.")
		return nil
	}

	if !evolveResetForce {
		ok, err := confirm(cmd.InOrStdin(), out, fmt.Sprintf("About to forget %d evolutions.", n))
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(out, "Cancelled.")
			return nil
		}
	}

	manager.ResetEvolutions()
	fmt.Fprintf(out, "Reset %d evolutions.\n", n)
	return nil
}
