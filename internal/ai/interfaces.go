package ai

import "context"

// Completer sends one chat completion and returns the assistant text.
type Completer interface {
	// Complete runs the prompt against modelID. Implementations return an
	// ErrAIGeneration AppError carrying the provider message as detail.
	Complete(ctx context.Context, modelID string, prompt Prompt) (string, error)

	// GetProviderName returns the provider name (e.g.: "openrouter", "gemini")
	GetProviderName() string
}

// Role of a chat message.
type Role string

const (
	RoleSystem Role = "system"
	RoleUser   Role = "user"
)

// Message is one entry of a chat completion request.
type Message struct {
	Role    Role
	Content string
}

// Prompt is a system/user pair sent as a single completion.
type Prompt struct {
	System string
	User   string
}

// Messages returns the chat messages in the order the providers expect:
// system first, then user.
func (p Prompt) Messages() []Message {
	return []Message{
		{Role: RoleSystem, Content: p.System},
		{Role: RoleUser, Content: p.User},
	}
}
