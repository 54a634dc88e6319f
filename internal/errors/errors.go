package errors

import (
	"errors"
	"fmt"
)

// ErrorType defines the category of the error
type ErrorType string

const (
	TypeConfiguration ErrorType = "CONFIGURATION"
	TypeInput         ErrorType = "INPUT"
	TypeAI            ErrorType = "AI"
	TypeVCS           ErrorType = "VCS"
	TypePage          ErrorType = "PAGE"
	TypeStorage       ErrorType = "STORAGE"
	TypeInternal      ErrorType = "INTERNAL"
)

// AppError represents a domain-level error with a type and an underlying error
type AppError struct {
	Type       ErrorType
	Message    string
	Context    map[string]interface{}
	Err        error
	Suggestion string
}

func (e *AppError) Error() string {
	var msg string
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %s (%v)", e.Type, e.Message, e.Err)
	} else {
		msg = fmt.Sprintf("%s: %s", e.Type, e.Message)
	}

	if e.Context != nil {
		if detail, ok := e.Context["detail"].(string); ok && detail != "" {
			msg += fmt.Sprintf(" - %s", detail)
		}
	}

	return msg
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is matches AppErrors derived from the same sentinel, so errors.Is keeps
// working after WithError/WithContext copies.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Type == t.Type && e.Message == t.Message
}

// WithError creates a new AppError with an underlying error
func (e *AppError) WithError(err error) *AppError {
	return &AppError{
		Type:       e.Type,
		Message:    e.Message,
		Context:    e.Context,
		Err:        err,
		Suggestion: e.Suggestion,
	}
}

// WithContext creates a new AppError with additional context
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	ctx := make(map[string]interface{})
	for k, v := range e.Context {
		ctx[k] = v
	}
	ctx[key] = value
	return &AppError{
		Type:       e.Type,
		Message:    e.Message,
		Context:    ctx,
		Err:        e.Err,
		Suggestion: e.Suggestion,
	}
}

func (e *AppError) WithSuggestion(suggestion string) *AppError {
	return &AppError{
		Type:       e.Type,
		Message:    e.Message,
		Context:    e.Context,
		Err:        e.Err,
		Suggestion: suggestion,
	}
}

// NewAppError creates a new AppError
func NewAppError(t ErrorType, msg string, err error) *AppError {
	return &AppError{
		Type:    t,
		Message: msg,
		Err:     err,
	}
}

// UserMessage returns the single human-readable line shown for a failed action.
// Upstream errors carry the provider message in the "detail" context key.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		if detail, ok := appErr.Context["detail"].(string); ok && detail != "" {
			return fmt.Sprintf("%s: %s", appErr.Message, detail)
		}
		return appErr.Message
	}
	return err.Error()
}

// Configuration errors
var (
	ErrCredentialsMissing = NewAppError(TypeConfiguration, "Missing API Keys. Please configure them in Settings.", nil).
				WithSuggestion("Run: prbuddy config set-key github <token> and prbuddy config set-key openrouter <key>")

	ErrGitHubTokenMissing = NewAppError(TypeConfiguration, "Missing GitHub Token. Please configure it in Settings.", nil).
				WithSuggestion("Run: prbuddy config set-key github <token>")

	ErrGeminiKeyMissing = NewAppError(TypeConfiguration, "Missing Gemini API Key. Please configure it in Settings.", nil).
				WithSuggestion("Run: prbuddy config set-key gemini <key>")

	ErrConfigInvalid = NewAppError(TypeConfiguration, "Configuration is invalid", nil).
				WithSuggestion("Inspect it with: prbuddy config show")

	ErrUnknownProvider = NewAppError(TypeConfiguration, "AI provider not supported", nil).
				WithSuggestion("Supported providers: openrouter, gemini")
)

// Input errors
var (
	ErrInvalidPRURL = NewAppError(TypeInput, "Invalid GitHub PR URL. Please navigate to a PR page like: github.com/owner/repo/pull/123", nil).
			WithSuggestion("Pass a URL of the form https://github.com/<owner>/<repo>/pull/<number>")

	ErrEmptyDescription = NewAppError(TypeInput, "Description is empty", nil)

	ErrUnknownAction = NewAppError(TypeInput, "Unknown message action", nil)

	ErrGitRepository = NewAppError(TypeInput, "Could not read the local git repository", nil).
				WithSuggestion("Run inside a clone whose origin is on GitHub, or pass --url")

	ErrUnsupportedMediaType = NewAppError(TypeInput, "Messages must be sent as application/json", nil)
)

// Server access errors
var (
	ErrOriginNotAllowed = NewAppError(TypeConfiguration, "Origin not allowed", nil).
				WithSuggestion("Add it with: prbuddy config set server-origins <origin>,...")

	ErrServerUnauthorized = NewAppError(TypeConfiguration, "Missing or invalid server token", nil).
				WithSuggestion("Send 'Authorization: Bearer <token>' with server.token from the config file")
)

// VCS errors
var (
	ErrFetchMetadata = NewAppError(TypeVCS, "Failed to fetch PR metadata", nil)

	ErrFetchDiff = NewAppError(TypeVCS, "Failed to fetch PR diff", nil)

	ErrUpdatePR = NewAppError(TypeVCS, "Failed to update PR", nil)

	ErrGitHubTokenInvalid = NewAppError(TypeVCS, "GitHub token is invalid or expired", nil).
				WithSuggestion("Generate a new token at: https://github.com/settings/tokens\nThen run: prbuddy config set-key github <token>")

	ErrGitHubInsufficientPerms = NewAppError(TypeVCS, "GitHub token has insufficient permissions", nil).
					WithSuggestion("Token needs the 'repo' scope.\nRegenerate at: https://github.com/settings/tokens")

	ErrGitHubRateLimit = NewAppError(TypeVCS, "GitHub API rate limit exceeded", nil).
				WithSuggestion("Wait a few minutes or use a personal access token for higher limits")

	ErrNoOpenPR = NewAppError(TypeVCS, "No open pull request for the current branch", nil).
			WithSuggestion("Push the branch and open the PR first, or pass --url")

	ErrPullRequestNotFound = NewAppError(TypeVCS, "Pull request not found", nil).
				WithSuggestion("Check the URL and that your token can read the repository")
)

// AI errors
var (
	ErrAIGeneration = NewAppError(TypeAI, "AI Generation failed", nil).
			WithSuggestion("Try again or check your API key and active model")

	ErrInvalidAIOutput = NewAppError(TypeAI, "invalid AI output format", nil).
				WithSuggestion("This is likely a temporary issue, please try again")
)

// Page errors
var (
	ErrEditModeRequired = NewAppError(TypePage, "Could not find the description field. Please make sure you are in 'Edit' mode for the PR description.", nil).
		WithSuggestion("Open the PR, click 'Edit' on the description and try again")
)

// Settings errors
var (
	ErrLastTemplate = NewAppError(TypeStorage, "Cannot delete the last template", nil)

	ErrLastModel = NewAppError(TypeStorage, "Cannot delete the last model", nil)

	ErrTemplateNotFound = NewAppError(TypeStorage, "Template not found", nil)

	ErrModelNotFound = NewAppError(TypeStorage, "Model not found", nil)

	ErrStorage = NewAppError(TypeStorage, "Failed to access local storage", nil)

	ErrDecryptCredential = NewAppError(TypeStorage, "Failed to decrypt stored credential", nil).
				WithSuggestion("Store the key again with: prbuddy config set-key <name> <value>")
)
