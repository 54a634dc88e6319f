package settings

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	domainErrors "github.com/thomas-vilte/prbuddy/internal/errors"
	"github.com/thomas-vilte/prbuddy/internal/models"
	"github.com/thomas-vilte/prbuddy/internal/store"
)

func newTestManager() (*Manager, *store.Memory) {
	mem := store.NewMemory()
	return NewManager(mem), mem
}

func TestManager_Templates(t *testing.T) {
	ctx := context.Background()

	t.Run("should fall back to the default templates", func(t *testing.T) {
		m, _ := newTestManager()

		list, err := m.ListTemplates(ctx)

		require.NoError(t, err)
		require.Len(t, list, 5)
		ids := []string{list[0].ID, list[1].ID, list[2].ID, list[3].ID, list[4].ID}
		assert.Equal(t, []string{"default", "bug", "feature", "refactor", "hotfix"}, ids)
		assert.True(t, strings.HasPrefix(list[1].Structure, "## Bug Description"))
	})

	t.Run("should add, update and delete", func(t *testing.T) {
		m, _ := newTestManager()

		added, err := m.AddTemplate(ctx, " Docs ", "## Docs")
		require.NoError(t, err)
		assert.NotEmpty(t, added.ID)
		assert.Equal(t, "Docs", added.Title)

		added.Structure = "## Documentation"
		require.NoError(t, m.UpdateTemplate(ctx, added))

		list, err := m.ListTemplates(ctx)
		require.NoError(t, err)
		require.Len(t, list, 6)
		assert.Equal(t, "## Documentation", list[5].Structure)

		require.NoError(t, m.DeleteTemplate(ctx, added.ID))
		list, err = m.ListTemplates(ctx)
		require.NoError(t, err)
		assert.Len(t, list, 5)
	})

	t.Run("should refuse to delete the last template", func(t *testing.T) {
		m, _ := newTestManager()
		for _, id := range []string{"default", "bug", "feature", "refactor"} {
			require.NoError(t, m.DeleteTemplate(ctx, id))
		}

		err := m.DeleteTemplate(ctx, "hotfix")

		assert.True(t, errors.Is(err, domainErrors.ErrLastTemplate))
		list, err := m.ListTemplates(ctx)
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, "hotfix", list[0].ID)
	})

	t.Run("should report unknown templates", func(t *testing.T) {
		m, _ := newTestManager()

		assert.True(t, errors.Is(m.DeleteTemplate(ctx, "nope"), domainErrors.ErrTemplateNotFound))
		assert.True(t, errors.Is(m.UpdateTemplate(ctx, models.PRTemplate{ID: "nope", Title: "x", Structure: "y"}), domainErrors.ErrTemplateNotFound))
	})

	t.Run("should validate input", func(t *testing.T) {
		m, _ := newTestManager()

		_, err := m.AddTemplate(ctx, "", "## x")
		assert.Error(t, err)
		_, err = m.AddTemplate(ctx, "x", "  ")
		assert.Error(t, err)
	})

	t.Run("should export and import yaml", func(t *testing.T) {
		src, _ := newTestManager()
		_, err := src.AddTemplate(ctx, "Docs", "## Docs\nWhat changed?")
		require.NoError(t, err)

		var buf bytes.Buffer
		require.NoError(t, src.ExportTemplates(ctx, &buf))
		assert.Contains(t, buf.String(), "templates:")

		dst, _ := newTestManager()
		n, err := dst.ImportTemplates(ctx, &buf, true)
		require.NoError(t, err)
		assert.Equal(t, 6, n)

		want, _ := src.ListTemplates(ctx)
		got, _ := dst.ListTemplates(ctx)
		assert.Equal(t, want, got)
	})

	t.Run("should merge imports by id", func(t *testing.T) {
		m, _ := newTestManager()
		doc := `templates:
  - id: bug
    title: Bug
    structure: "## What broke"
  - title: Release
    structure: "## Release notes"
`
		n, err := m.ImportTemplates(ctx, strings.NewReader(doc), false)
		require.NoError(t, err)
		assert.Equal(t, 2, n)

		list, err := m.ListTemplates(ctx)
		require.NoError(t, err)
		require.Len(t, list, 6)
		assert.Equal(t, "## What broke", list[1].Structure)
		assert.Equal(t, "Release", list[5].Title)
		assert.NotEmpty(t, list[5].ID)
	})

	t.Run("should refuse an empty replacing import", func(t *testing.T) {
		m, _ := newTestManager()

		_, err := m.ImportTemplates(ctx, strings.NewReader("templates: []\n"), true)

		assert.True(t, errors.Is(err, domainErrors.ErrLastTemplate))
	})

	t.Run("should reject malformed yaml", func(t *testing.T) {
		m, _ := newTestManager()

		_, err := m.ImportTemplates(ctx, strings.NewReader("templates: [oops"), false)

		assert.Error(t, err)
	})
}

func TestManager_Models(t *testing.T) {
	ctx := context.Background()

	countActive := func(list []models.AIModel) int {
		n := 0
		for _, m := range list {
			if m.IsActive {
				n++
			}
		}
		return n
	}

	t.Run("should fall back to the default model", func(t *testing.T) {
		m, _ := newTestManager()

		active, err := m.ActiveModel(ctx)

		require.NoError(t, err)
		assert.Equal(t, "xiaomi/mimo-v2-flash:free", active.ModelID)
		assert.True(t, active.IsActive)
	})

	t.Run("should add inactive models next to an active one", func(t *testing.T) {
		m, _ := newTestManager()

		added, err := m.AddModel(ctx, "Claude", "anthropic/claude-3.5-sonnet", models.ProviderOpenRouter)

		require.NoError(t, err)
		assert.False(t, added.IsActive)
		list, _ := m.ListModels(ctx)
		assert.Len(t, list, 2)
		assert.Equal(t, 1, countActive(list))
	})

	t.Run("should keep exactly one active model", func(t *testing.T) {
		m, _ := newTestManager()
		added, err := m.AddModel(ctx, "Gemini", "gemini-2.5-flash", models.ProviderGemini)
		require.NoError(t, err)

		require.NoError(t, m.SetActiveModel(ctx, added.ID))

		list, _ := m.ListModels(ctx)
		assert.Equal(t, 1, countActive(list))
		active, _ := m.ActiveModel(ctx)
		assert.Equal(t, added.ID, active.ID)
		assert.Equal(t, models.ProviderGemini, active.Provider)
	})

	t.Run("should promote the first model when the active one is deleted", func(t *testing.T) {
		m, _ := newTestManager()
		a, _ := m.AddModel(ctx, "A", "a/a", "")
		b, _ := m.AddModel(ctx, "B", "b/b", "")
		require.NoError(t, m.SetActiveModel(ctx, b.ID))

		require.NoError(t, m.DeleteModel(ctx, b.ID))

		list, _ := m.ListModels(ctx)
		require.Len(t, list, 2)
		assert.Equal(t, 1, countActive(list))
		assert.True(t, list[0].IsActive)
		assert.Equal(t, DefaultModelID, list[0].ID)
		assert.Equal(t, a.ID, list[1].ID)
	})

	t.Run("should refuse to delete the last model", func(t *testing.T) {
		m, _ := newTestManager()

		err := m.DeleteModel(ctx, DefaultModelID)

		assert.True(t, errors.Is(err, domainErrors.ErrLastModel))
		list, _ := m.ListModels(ctx)
		assert.Len(t, list, 1)
	})

	t.Run("should update models and report unknown ids", func(t *testing.T) {
		m, _ := newTestManager()
		added, _ := m.AddModel(ctx, "A", "a/a", "")
		added.Name = "Renamed"

		require.NoError(t, m.UpdateModel(ctx, added))
		list, _ := m.ListModels(ctx)
		assert.Equal(t, "Renamed", list[1].Name)

		assert.True(t, errors.Is(m.SetActiveModel(ctx, "nope"), domainErrors.ErrModelNotFound))
		assert.True(t, errors.Is(m.DeleteModel(ctx, "nope"), domainErrors.ErrModelNotFound))
	})

	t.Run("should reject unknown providers", func(t *testing.T) {
		m, _ := newTestManager()

		_, err := m.AddModel(ctx, "X", "x", "bedrock")

		assert.True(t, errors.Is(err, domainErrors.ErrUnknownProvider))
	})
}

func TestManager_Credentials(t *testing.T) {
	ctx := context.Background()

	t.Run("should encrypt at rest and decrypt on read", func(t *testing.T) {
		m, mem := newTestManager()

		require.NoError(t, m.SetCredential(ctx, CredentialGitHub, "ghp_secret"))
		require.NoError(t, m.SetCredential(ctx, CredentialOpenRouter, "sk-or-secret"))

		raw, ok, err := mem.Get(ctx, store.KeyGitHubToken)
		require.NoError(t, err)
		require.True(t, ok)
		assert.NotContains(t, string(raw), "ghp_secret")
		assert.Contains(t, string(raw), `"v":"encrypted"`)

		_, ok, _ = mem.Get(ctx, store.KeyEncryptionSalt)
		assert.True(t, ok)

		creds, err := m.Credentials(ctx)
		require.NoError(t, err)
		assert.Equal(t, models.Credentials{GitHubToken: "ghp_secret", OpenRouterKey: "sk-or-secret"}, creds)
	})

	t.Run("should read legacy plaintext values", func(t *testing.T) {
		m, mem := newTestManager()
		require.NoError(t, mem.Set(ctx, store.KeyOpenRouterKey, []byte(`"sk-or-legacy"`)))

		creds, err := m.Credentials(ctx)

		require.NoError(t, err)
		assert.Equal(t, "sk-or-legacy", creds.OpenRouterKey)
	})

	t.Run("should fail when the salt is lost", func(t *testing.T) {
		m, mem := newTestManager()
		require.NoError(t, m.SetCredential(ctx, CredentialGitHub, "ghp_secret"))
		require.NoError(t, mem.Delete(ctx, store.KeyEncryptionSalt))

		_, err := m.Credentials(ctx)

		assert.True(t, errors.Is(err, domainErrors.ErrDecryptCredential))
	})

	t.Run("should remove a credential set to empty", func(t *testing.T) {
		m, _ := newTestManager()
		require.NoError(t, m.SetCredential(ctx, CredentialGemini, "g"))

		require.NoError(t, m.SetCredential(ctx, CredentialGemini, ""))

		creds, err := m.Credentials(ctx)
		require.NoError(t, err)
		assert.Empty(t, creds.GeminiKey)
	})

	t.Run("should reject unknown credential names", func(t *testing.T) {
		m, _ := newTestManager()

		assert.Error(t, m.SetCredential(ctx, "jira", "x"))
	})
}

func TestManager_Preferences(t *testing.T) {
	ctx := context.Background()

	t.Run("should default and round trip", func(t *testing.T) {
		m, _ := newTestManager()

		p, err := m.Preferences(ctx)
		require.NoError(t, err)
		assert.Equal(t, DefaultPreferences(), p)

		p = models.Preferences{TemplateID: "bug", Tone: models.ToneCasual, Context: "ctx", IncludeTickets: true, GenerateTitle: true, TitleContext: "short"}
		require.NoError(t, m.SavePreferences(ctx, p))

		got, err := m.Preferences(ctx)
		require.NoError(t, err)
		assert.Equal(t, p, got)
	})

	t.Run("should store dev mode", func(t *testing.T) {
		m, _ := newTestManager()

		require.NoError(t, m.SetDevMode(ctx, true, "https://github.com/acme/widgets/pull/42"))
		enabled, url, err := m.DevMode(ctx)

		require.NoError(t, err)
		assert.True(t, enabled)
		assert.Equal(t, "https://github.com/acme/widgets/pull/42", url)
	})

	t.Run("should reject dev mode with a bad url", func(t *testing.T) {
		m, _ := newTestManager()

		err := m.SetDevMode(ctx, true, "https://example.com")

		assert.True(t, errors.Is(err, domainErrors.ErrInvalidPRURL))
	})
}

func TestManager_Snapshot(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestManager()
	require.NoError(t, m.SetCredential(ctx, CredentialGitHub, "ghp"))

	snap, err := m.Snapshot(ctx)

	require.NoError(t, err)
	assert.Equal(t, "ghp", snap.Credentials.GitHubToken)
	assert.Equal(t, "bug", snap.Template("bug").ID)
	assert.Equal(t, "default", snap.Template("unknown").ID)
	assert.Equal(t, DefaultModelID, snap.ActiveModel().ID)

	require.NoError(t, m.SetCredential(ctx, CredentialGitHub, "changed"))
	assert.Equal(t, "ghp", snap.Credentials.GitHubToken)
}
