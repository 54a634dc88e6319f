package ai

import (
	"context"
	"strings"

	"github.com/thomas-vilte/prbuddy/internal/logger"
)

var titleQuotes = []string{`"`, `'`, "`"}

// CleanTitle trims the raw completion down to a single line and strips one
// matching pair of surrounding quotes or backticks.
func CleanTitle(raw string) string {
	title := strings.TrimSpace(raw)
	if i := strings.IndexAny(title, "\r\n"); i >= 0 {
		title = strings.TrimSpace(title[:i])
	}

	for _, q := range titleQuotes {
		if len(title) >= 2*len(q) && strings.HasPrefix(title, q) && strings.HasSuffix(title, q) {
			title = strings.TrimSpace(title[len(q) : len(title)-len(q)])
			break
		}
	}
	return title
}

// GenerateTitle runs the title prompt and never fails: any error is logged and
// reported as an empty title so the description still goes through.
func GenerateTitle(ctx context.Context, completer Completer, modelID string, prompt Prompt) string {
	raw, err := completer.Complete(ctx, modelID, prompt)
	if err != nil {
		logger.Warn(ctx, "title generation failed, continuing without title",
			"error", err,
			"model", modelID)
		return ""
	}
	return CleanTitle(raw)
}
