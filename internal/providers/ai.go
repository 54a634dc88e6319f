package providers

import (
	"context"

	"github.com/thomas-vilte/prbuddy/internal/ai"
	"github.com/thomas-vilte/prbuddy/internal/ai/gemini"
	"github.com/thomas-vilte/prbuddy/internal/ai/openrouter"
	"github.com/thomas-vilte/prbuddy/internal/config"
	domainErrors "github.com/thomas-vilte/prbuddy/internal/errors"
	"github.com/thomas-vilte/prbuddy/internal/models"
)

// NewCompleter creates the completion client serving model.
func NewCompleter(ctx context.Context, model models.AIModel, creds models.Credentials, cfg *config.Config) (ai.Completer, error) {
	switch model.ProviderOrDefault() {
	case models.ProviderOpenRouter:
		opts := openrouter.Options{}
		if cfg != nil {
			opts.BaseURL = cfg.OpenRouter.BaseURL
			opts.Referer = cfg.OpenRouter.Referer
			opts.Title = cfg.OpenRouter.Title
		}
		c, err := openrouter.NewCompleter(creds.OpenRouterKey, opts)
		if err != nil {
			return nil, err
		}
		return c, nil
	case models.ProviderGemini:
		c, err := gemini.NewGeminiCompleter(ctx, creds.GeminiKey)
		if err != nil {
			return nil, err
		}
		return c, nil
	default:
		return nil, domainErrors.ErrUnknownProvider.WithContext("provider", string(model.Provider))
	}
}

// RequiredKeyPresent reports whether creds hold the AI key model needs.
func RequiredKeyPresent(model models.AIModel, creds models.Credentials) bool {
	switch model.ProviderOrDefault() {
	case models.ProviderGemini:
		return creds.GeminiKey != ""
	default:
		return creds.OpenRouterKey != ""
	}
}
