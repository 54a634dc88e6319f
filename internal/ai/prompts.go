package ai

import (
	"bytes"
	"fmt"
	"strconv"
	"text/template"
	"unicode/utf8"

	"github.com/thomas-vilte/prbuddy/internal/models"
)

// MaxTitleDiffChars bounds the diff sent with a title request.
const MaxTitleDiffChars = 10000

const fence = "```"

// ToneDescriptions maps each tone to the writing-style clause of the system prompt.
var ToneDescriptions = map[models.Tone]string{
	models.ToneProfessional: "Professional, formal, and detailed. Use clear technical language.",
	models.ToneCasual:       "Friendly and conversational, while still being informative.",
	models.ToneConcise:      "Brief and to the point. Focus on key changes only.",
}

// ToneClause returns the writing style for tone. Unknown tones, auto
// included, read as professional.
func ToneClause(tone models.Tone) string {
	if clause, ok := ToneDescriptions[tone]; ok {
		return clause
	}
	return ToneDescriptions[models.ToneProfessional]
}

const descriptionSystemTemplate = `You are an expert software engineer assistant. Your task is to write a high-quality Pull Request description based on the provided code diffs and context.

Output Format: Markdown.

Writing Style: {{.Style}}

Structure the description following this template format:
{{.Structure}}

Important guidelines:
- Be specific about what changed
- Reference file names when relevant
- Keep it readable and scannable
- Don't include the diff in your response
- Don't make up information not present in the diff`

const descriptionUserTemplate = `
PR Title: {{.Title}}
Branch: {{.Head}} -> {{.Base}}
{{if .Context}}
Additional Context from User:
{{.Context}}{{end}}
{{if .IncludeTickets}}
Ticket Detection: Look for ticket IDs (like JIRA IDs) in the branch name "{{.Head}}" and include them in the description.{{end}}

File Changes Summary:
- {{.ChangedFiles}} files changed
- +{{.Additions}} additions, -{{.Deletions}} deletions

Diff:
{{.Fence}}diff
{{.Diff}}
{{.Fence}}

Please generate the PR description now based on the above information.`

const titleSystemTemplate = `You are an expert software engineer assistant. Your task is to write a concise, descriptive title for a Pull Request based on the provided code diff and context.

Rules:
- Use the imperative mood (e.g. "Add", "Fix", "Refactor")
- Aim for 60 characters or fewer, never exceed 80
- Describe the main change, not every detail
- Output plain text only: no quotes, no markdown, no trailing period
- Respond with the title and nothing else`

const titleUserTemplate = `
Current PR Title: {{.Title}}
Branch: {{.Head}} -> {{.Base}}
{{if .TitleContext}}
Title Instructions from User:
{{.TitleContext}}{{end}}

Diff:
{{.Fence}}diff
{{.Diff}}
{{.Fence}}

Please generate the PR title now.`

// PromptData holds the parameters for template rendering
type PromptData struct {
	Style          string
	Structure      string
	Title          string
	Head           string
	Base           string
	Context        string
	IncludeTickets bool
	TitleContext   string
	ChangedFiles   string
	Additions      int
	Deletions      int
	Diff           string
	Fence          string
}

// RenderPrompt renders a prompt template with the provided data
func RenderPrompt(name, tmplStr string, data interface{}) (string, error) {
	tmpl, err := template.New(name).Parse(tmplStr)
	if err != nil {
		return "", fmt.Errorf("error parsing template %s: %w", name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("error executing template %s: %w", name, err)
	}

	return buf.String(), nil
}

// BuildDescriptionPrompt composes the description request. It is pure: the
// same inputs always give the same prompt.
func BuildDescriptionPrompt(diff string, meta models.PRMetadata, settings models.GeneratorSettings, tmpl models.PRTemplate) (Prompt, error) {
	data := newPromptData(diff, meta)
	data.Style = ToneClause(settings.Tone)
	data.Structure = tmpl.Structure
	data.Context = settings.Context
	data.IncludeTickets = settings.IncludeTickets

	system, err := RenderPrompt("description_system", descriptionSystemTemplate, data)
	if err != nil {
		return Prompt{}, err
	}
	user, err := RenderPrompt("description_user", descriptionUserTemplate, data)
	if err != nil {
		return Prompt{}, err
	}
	return Prompt{System: system, User: user}, nil
}

// BuildTitlePrompt composes the title request over the first
// MaxTitleDiffChars characters of the diff.
func BuildTitlePrompt(diff string, meta models.PRMetadata, settings models.GeneratorSettings) (Prompt, error) {
	data := newPromptData(truncateChars(diff, MaxTitleDiffChars), meta)
	data.TitleContext = settings.TitleContext

	system, err := RenderPrompt("title_system", titleSystemTemplate, data)
	if err != nil {
		return Prompt{}, err
	}
	user, err := RenderPrompt("title_user", titleUserTemplate, data)
	if err != nil {
		return Prompt{}, err
	}
	return Prompt{System: system, User: user}, nil
}

func newPromptData(diff string, meta models.PRMetadata) PromptData {
	// zero changed files renders as N/A, same as an absent counter
	changed := "N/A"
	if meta.ChangedFiles != nil && *meta.ChangedFiles != 0 {
		changed = strconv.Itoa(*meta.ChangedFiles)
	}

	return PromptData{
		Title:        meta.Title,
		Head:         meta.Head.Ref,
		Base:         meta.Base.Ref,
		ChangedFiles: changed,
		Additions:    valueOrZero(meta.Additions),
		Deletions:    valueOrZero(meta.Deletions),
		Diff:         diff,
		Fence:        fence,
	}
}

func valueOrZero(n *int) int {
	if n == nil {
		return 0
	}
	return *n
}

func truncateChars(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	count := 0
	for i := range s {
		if count == limit {
			return s[:i]
		}
		count++
	}
	return s
}
