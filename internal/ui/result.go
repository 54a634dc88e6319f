package ui

import (
	"fmt"
	"io"

	"github.com/thomas-vilte/prbuddy/internal/i18n"
	"github.com/thomas-vilte/prbuddy/internal/models"
)

// PrintResult shows a generated description, with its title when there is one.
func PrintResult(w io.Writer, res models.GenerationResult, t *i18n.Translations) {
	PrintSectionBanner(w, t.GetMessage("ui.generated_for", 0, map[string]interface{}{
		"PR": res.PRDetails.Path(),
	}))
	if res.Title != "" {
		PrintKeyValue(w, t.GetMessage("ui.title", 0, nil), res.Title)
		_, _ = fmt.Fprintln(w)
	}
	_, _ = fmt.Fprintln(w, res.Description)
}
