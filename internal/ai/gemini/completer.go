package gemini

import (
	"context"
	"strings"

	"github.com/thomas-vilte/prbuddy/internal/ai"
	domainErrors "github.com/thomas-vilte/prbuddy/internal/errors"
	"github.com/thomas-vilte/prbuddy/internal/logger"
	"google.golang.org/genai"
)

var _ ai.Completer = (*GeminiCompleter)(nil)

type generateFunc func(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)

// GeminiCompleter serves models configured with the gemini provider.
type GeminiCompleter struct {
	generateFn generateFunc
}

func NewGeminiCompleter(ctx context.Context, apiKey string) (*GeminiCompleter, error) {
	if apiKey == "" {
		return nil, domainErrors.ErrGeminiKeyMissing
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, domainErrors.NewAppError(domainErrors.TypeAI, "error creating AI client", err)
	}

	return &GeminiCompleter{generateFn: client.Models.GenerateContent}, nil
}

func (g *GeminiCompleter) GetProviderName() string {
	return "gemini"
}

func (g *GeminiCompleter) Complete(ctx context.Context, modelID string, prompt ai.Prompt) (string, error) {
	log := logger.FromContext(ctx)

	log.Debug("calling gemini API",
		"model", modelID,
		"prompt_length", len(prompt.System)+len(prompt.User))

	resp, err := g.generateFn(ctx, modelID, genai.Text(prompt.User), GetGenerateConfig(prompt.System))
	if err != nil {
		log.Error("gemini API call failed",
			"error", err,
			"model", modelID)
		return "", domainErrors.ErrAIGeneration.
			WithError(err).
			WithContext("detail", errorDetail(err)).
			WithContext("model", modelID)
	}

	text := formatResponse(resp)
	if strings.TrimSpace(text) == "" {
		return "", domainErrors.ErrInvalidAIOutput.
			WithContext("detail", "empty response from AI").
			WithContext("model", modelID)
	}

	return text, nil
}

func errorDetail(err error) string {
	errMsg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(errMsg, "quota"),
		strings.Contains(errMsg, "rate limit"),
		strings.Contains(errMsg, "resource exhausted"):
		return "quota exceeded"
	case strings.Contains(errMsg, "api key"),
		strings.Contains(errMsg, "unauthorized"):
		return "invalid API key"
	}
	return err.Error()
}
