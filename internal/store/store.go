package store

import "context"

// Store is the flat key/value store holding settings and credentials. Each
// call stands alone: there is no transaction or compare-and-swap.
type Store interface {
	// Get returns the raw value for key; ok is false when the key is absent.
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// Keys used by the settings manager.
const (
	KeyGitHubToken    = "githubToken"
	KeyOpenRouterKey  = "openRouterKey"
	KeyGeminiKey      = "geminiKey"
	KeyEncryptionSalt = "encryptionSalt"
	KeyTemplates      = "templates"
	KeyAIModels       = "aiModels"
	KeyPRTemplate     = "prTemplate"
	KeyCustomContext  = "customContext"
	KeyIncludeTickets = "includeTickets"
	KeyTone           = "descriptionTone"
	KeyGenerateTitle  = "generateTitle"
	KeyTitleContext   = "titleContext"
	KeyDevMode        = "devMode"
	KeyDevPRURL       = "devPrUrl"
)
