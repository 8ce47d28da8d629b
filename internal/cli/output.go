package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/raphaelgruber/pokerub/internal/metrics"
	"github.com/raphaelgruber/pokerub/internal/models"
	"github.com/raphaelgruber/pokerub/internal/service"
)

// printItems writes one row per list item.
func printItems(w io.Writer, items []service.Item) {
	for _, it := range items {
		star := " "
		if it.Favorite {
			star = "★"
		}
		fmt.Fprintf(w, "%s %s %-12s %s%s\n",
			star,
			models.FormatID(it.DisplayID),
			models.Capitalize(it.DisplayName),
			strings.Join(it.TypeNames(), ", "),
			itemNote(it))
	}
}

// printDetail writes the full record.
func printDetail(w io.Writer, v *service.DetailView) {
	title := fmt.Sprintf("%s %s", models.FormatID(v.ID), models.Capitalize(v.Name))
	if v.Favorite {
		title += " ★"
	}
	if v.Evolved() {
		title += " [Evolved]"
	}
	fmt.Fprintln(w, title)
	fmt.Fprintln(w, strings.Repeat("═", 39))
	if v.Evolved() {
		fmt.Fprintf(w, "Evolved from %s\n", models.FormatID(v.EvolvedFrom))
	}

	fmt.Fprintf(w, "%-11s %s\n", "Types:", strings.Join(v.TypeNames(), ", "))
	fmt.Fprintf(w, "%-11s %.1f m\n", "Height:", v.HeightMeters())
	fmt.Fprintf(w, "%-11s %.1f kg\n", "Weight:", v.WeightKilograms())
	if len(v.Abilities) > 0 {
		fmt.Fprintf(w, "%-11s %s\n", "Abilities:", strings.Join(v.Abilities, ", "))
	}
	fmt.Fprintf(w, "%-11s %s\n", "Artwork:", models.ArtworkURL(v.ID))

	if len(v.Stats) > 0 {
		fmt.Fprintf(w, "\nBase stats:\n")
		for _, s := range v.Stats {
			fmt.Fprintf(w, "  %-11s %3d %s\n", models.StatLabel(s.Name), s.BaseStat, statBar(s.BaseStat, 20))
		}
	}

	if targets := v.EvolutionTargets(); len(targets) > 0 {
		names := make([]string, 0, len(targets))
		for _, t := range targets {
			names = append(names, fmt.Sprintf("%s (%s)", models.Capitalize(t.Name), models.FormatID(t.ID)))
		}
		fmt.Fprintf(w, "\nEvolves into: %s\n", strings.Join(names, ", "))
	}
}

// statBar draws value relative to the highest possible base stat.
func statBar(value, width int) string {
	filled := min(max(value*width/models.MaxBaseStat, 0), width)
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

// printFavorites writes the favorites list.
func printFavorites(w io.Writer, favs []models.Favorite) {
	if len(favs) == 0 {
		fmt.Fprintln(w, "No favorites yet.")
		return
	}
	fmt.Fprintf(w, "Favorites (%d):\n\n", len(favs))
	for _, f := range favs {
		fmt.Fprintf(w, "★ %s %-12s %s\n", models.FormatID(f.ID), models.Capitalize(f.Name), strings.Join(f.TypeNames(), ", "))
		if verbose {
			fmt.Fprintf(w, "  %s\n", f.Image())
		}
	}
}

// printStats displays process runtime statistics.
func printStats(w io.Writer, snap metrics.Snapshot) {
	fmt.Fprintf(w, "\nRuntime Statistics\n")
	fmt.Fprintf(w, "═══════════════════════════════════════\n")
	fmt.Fprintf(w, "Uptime: %.1f seconds\n", snap.UptimeSeconds)

	for _, op := range snap.Ops {
		fmt.Fprintf(w, "\n%s:\n", op.Op)
		printOpStats(w, op)
	}
}

// printOpStats displays timing statistics for an operation.
func printOpStats(w io.Writer, op metrics.OperationSnapshot) {
	fmt.Fprintf(w, "  Calls: %d, Errors: %d, Total: %dms\n", op.Count, op.Errors, op.TotalTimeMs)
	fmt.Fprintf(w, "  Time: avg %.1fms, min %dms, max %dms\n",
		op.AvgTimeMs, op.MinTimeMs, op.MaxTimeMs)
}
