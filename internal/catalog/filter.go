package catalog

import (
	"slices"
	"strings"

	"github.com/raphaelgruber/pokerub/internal/models"
	"golang.org/x/text/cases"
)

// Filter keeps the entities whose name contains query, ignoring case.
// An empty query keeps everything.
func Filter(entities []models.Entity, query string) []models.Entity {
	if query == "" {
		return slices.Clone(entities)
	}

	// Casers are stateful; one per call.
	fold := cases.Fold()
	needle := fold.String(query)

	var out []models.Entity
	for _, e := range entities {
		if strings.Contains(fold.String(e.Name), needle) {
			out = append(out, e)
		}
	}
	return out
}
