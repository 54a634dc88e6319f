package openrouter

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/sashabaranov/go-openai"
	"github.com/thomas-vilte/prbuddy/internal/ai"
	domainErrors "github.com/thomas-vilte/prbuddy/internal/errors"
	"github.com/thomas-vilte/prbuddy/internal/logger"
)

var _ ai.Completer = (*Completer)(nil)

const (
	DefaultBaseURL = "https://openrouter.ai/api/v1"
	DefaultReferer = "https://github.com/pr-buddy-extension"
	DefaultTitle   = "PR Buddy"
)

// Options configure the OpenRouter endpoint and its attribution headers.
type Options struct {
	BaseURL    string
	Referer    string
	Title      string
	HTTPClient *http.Client
}

// Completer talks to OpenRouter's OpenAI compatible chat completions API.
type Completer struct {
	client *openai.Client
}

func NewCompleter(apiKey string, opts Options) (*Completer, error) {
	if apiKey == "" {
		return nil, domainErrors.ErrCredentialsMissing
	}

	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = strings.TrimRight(firstNonEmpty(opts.BaseURL, DefaultBaseURL), "/")

	base := opts.HTTPClient
	if base == nil {
		base = &http.Client{}
	}
	transport := base.Transport
	if transport == nil {
		transport = http.DefaultTransport
	}
	cfg.HTTPClient = &http.Client{
		Transport: &attributionTransport{
			base:    transport,
			referer: firstNonEmpty(opts.Referer, DefaultReferer),
			title:   firstNonEmpty(opts.Title, DefaultTitle),
		},
		Timeout: base.Timeout,
	}

	return &Completer{client: openai.NewClientWithConfig(cfg)}, nil
}

func (c *Completer) GetProviderName() string {
	return "openrouter"
}

// Complete returns choices[0].message.content of a single chat completion.
func (c *Completer) Complete(ctx context.Context, modelID string, prompt ai.Prompt) (string, error) {
	log := logger.FromContext(ctx)

	messages := make([]openai.ChatCompletionMessage, 0, 2)
	for _, m := range prompt.Messages() {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    string(m.Role),
			Content: m.Content,
		})
	}

	log.Debug("calling openrouter",
		"model", modelID,
		"prompt_length", len(prompt.System)+len(prompt.User))

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    modelID,
		Messages: messages,
	})
	if err != nil {
		log.Error("openrouter call failed",
			"error", err,
			"model", modelID)
		return "", domainErrors.ErrAIGeneration.
			WithError(err).
			WithContext("detail", errorDetail(err)).
			WithContext("model", modelID)
	}

	if len(resp.Choices) == 0 {
		return "", domainErrors.ErrInvalidAIOutput.
			WithContext("detail", "no choices in response").
			WithContext("model", modelID)
	}

	log.Debug("openrouter completion received",
		"model", modelID,
		"finish_reason", resp.Choices[0].FinishReason)

	return resp.Choices[0].Message.Content, nil
}

// errorDetail prefers error.message from the response body and falls back to
// the HTTP status text.
func errorDetail(err error) string {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		if apiErr.Message != "" {
			return apiErr.Message
		}
		if text := http.StatusText(apiErr.HTTPStatusCode); text != "" {
			return text
		}
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		if text := http.StatusText(reqErr.HTTPStatusCode); text != "" {
			return text
		}
	}
	return err.Error()
}

// attributionTransport adds the headers OpenRouter uses to attribute traffic
// to an app.
type attributionTransport struct {
	base    http.RoundTripper
	referer string
	title   string
}

func (t *attributionTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	r := req.Clone(req.Context())
	r.Header.Set("HTTP-Referer", t.referer)
	r.Header.Set("X-Title", t.title)
	return t.base.RoundTrip(r)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
