package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/raphaelgruber/pokerub/internal/models"
	"github.com/spf13/cobra"
)

var favoritesClearForce bool

var favoritesCmd = &cobra.Command{
	Use:     "favorites",
	Aliases: []string{"fav"},
	Short:   "Manage favorite Pokémon",
	Long: `Manage favorite Pokémon.

Subcommands:
  list    List favorites (default)
  add     Favorite the current form of a Pokémon
  remove  Remove a favorite
  clear   Remove all favorites

Examples:
  pokerub favorites
  pokerub favorites add 25
  pokerub favorites remove 25
  pokerub favorites clear --force`,
	Args: cobra.NoArgs,
	RunE: runFavoritesList,
}

var favoritesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List favorites",
	Args:  cobra.NoArgs,
	RunE:  runFavoritesList,
}

var favoritesAddCmd = &cobra.Command{
	Use:   "add <id>",
	Short: "Favorite the current form of a Pokémon",
	Long: `Favorite the current form of a Pokémon. If it was evolved, the evolved
form is stored.`,
	Args: cobra.ExactArgs(1),
	RunE: runFavoritesAdd,
}

var favoritesRemoveCmd = &cobra.Command{
	Use:   "remove <id>",
	Short: "Remove a favorite",
	Args:  cobra.ExactArgs(1),
	RunE:  runFavoritesRemove,
}

var favoritesClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all favorites",
	Long:  `Remove all favorites. Requires confirmation unless --force is used.`,
	Args:  cobra.NoArgs,
	RunE:  runFavoritesClear,
}

func init() {
	favoritesClearCmd.Flags().BoolVarP(&favoritesClearForce, "force", "f", false, "skip confirmation")

	favoritesCmd.AddCommand(favoritesListCmd)
	favoritesCmd.AddCommand(favoritesAddCmd)
	favoritesCmd.AddCommand(favoritesRemoveCmd)
	favoritesCmd.AddCommand(favoritesClearCmd)
}

func runFavoritesList(cmd *cobra.Command, args []string) error {
	printFavorites(cmd.OutOrStdout(), manager.Favorites())
	return nil
}

func runFavoritesAdd(cmd *cobra.Command, args []string) error {
	f, err := pokedex.AddFavorite(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Added %s %s to favorites.\n", models.FormatID(f.ID), models.Capitalize(f.Name))
	return nil
}

func runFavoritesRemove(cmd *cobra.Command, args []string) error {
	id, ok := pokedex.RemoveFavorite(args[0])
	if !ok {
		return fmt.Errorf("%s is not a favorite", models.FormatID(args[0]))
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Removed %s from favorites.\n", models.FormatID(id))
	return nil
}

func runFavoritesClear(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	n := len(manager.Favorites())
	if n == 0 {
		fmt.Fprintln(out, "No favorites to clear.")
		return nil
	}

	if !favoritesClearForce {
		ok, err := confirm(cmd.InOrStdin(), out, fmt.Sprintf("About to remove %d favorites.", n))
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(out, "Cancelled.")
			return nil
		}
	}

	manager.ClearFavorites()
	fmt.Fprintf(out, "Cleared %d favorites.\n", n)
	return nil
}

// confirm asks a yes/no question; anything but y or yes is a no.
func confirm(in io.Reader, out io.Writer, prompt string) (bool, error) {
	fmt.Fprintln(out, prompt)
	fmt.Fprint(out, "\nContinue? [y/N]: ")

	response, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return false, fmt.Errorf("read input: %w", err)
	}
	response = strings.TrimSpace(strings.ToLower(response))
	return response == "y" || response == "yes", nil
}
