package models

// Tone controls the register of the generated description.
type Tone string

const (
	ToneProfessional Tone = "professional"
	ToneCasual       Tone = "casual"
	ToneConcise      Tone = "concise"
	ToneAuto         Tone = "auto"
)

// Tones lists the tones offered to users.
func Tones() []Tone {
	return []Tone{ToneProfessional, ToneCasual, ToneConcise, ToneAuto}
}

// Provider names the completion backend an AIModel is served by.
type Provider string

const (
	ProviderOpenRouter Provider = "openrouter"
	ProviderGemini     Provider = "gemini"
)

type (
	// GeneratorSettings are the user choices for a single generation call.
	GeneratorSettings struct {
		TemplateID     string `json:"templateId" yaml:"templateId"`
		Tone           Tone   `json:"tone" yaml:"tone"`
		Context        string `json:"context" yaml:"context"`
		IncludeTickets bool   `json:"includeTickets" yaml:"includeTickets"`
		GenerateTitle  bool   `json:"generateTitle,omitempty" yaml:"generateTitle,omitempty"`
		TitleContext   string `json:"titleContext,omitempty" yaml:"titleContext,omitempty"`
	}

	// PRTemplate is a markdown skeleton the description must follow.
	PRTemplate struct {
		ID        string `json:"id" yaml:"id"`
		Title     string `json:"title" yaml:"title"`
		Structure string `json:"structure" yaml:"structure"`
	}

	// AIModel is a configured completion model. Exactly one is active.
	AIModel struct {
		ID       string   `json:"id"`
		Name     string   `json:"name"`
		ModelID  string   `json:"modelId"`
		Provider Provider `json:"provider,omitempty"`
		IsActive bool     `json:"isActive"`
	}

	// Credentials are the decrypted API keys.
	Credentials struct {
		GitHubToken   string
		OpenRouterKey string
		GeminiKey     string
	}
)

// ProviderOrDefault treats an empty provider as OpenRouter, which is how models
// stored before providers existed are read.
func (m AIModel) ProviderOrDefault() Provider {
	if m.Provider == "" {
		return ProviderOpenRouter
	}
	return m.Provider
}

// Preferences are the generator choices remembered between runs.
type Preferences GeneratorSettings

// Settings returns the preferences as the settings of a generation call.
func (p Preferences) Settings() GeneratorSettings {
	return GeneratorSettings(p)
}
