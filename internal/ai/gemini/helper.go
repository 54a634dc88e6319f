package gemini

import (
	"strings"

	"github.com/thomas-vilte/prbuddy/internal/ai"
	"google.golang.org/genai"
)

// GetGenerateConfig builds the request config, carrying the system prompt as
// a system instruction.
func GetGenerateConfig(system string) *genai.GenerateContentConfig {
	config := &genai.GenerateContentConfig{
		Temperature:     float32Ptr(0.3),
		MaxOutputTokens: int32(8192),
	}

	if system != "" {
		config.SystemInstruction = &genai.Content{
			Role:  string(ai.RoleUser),
			Parts: []*genai.Part{{Text: system}},
		}
	}

	return config
}

func float32Ptr(f float32) *float32 {
	return &f
}

// formatResponse concatenates the text parts of the first candidate,
// skipping thinking parts.
func formatResponse(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}

	var formattedContent strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part == nil || part.Thought {
			continue
		}
		formattedContent.WriteString(part.Text)
	}
	return formattedContent.String()
}
