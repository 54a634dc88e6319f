package models

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thomas-vilte/prbuddy/internal/config"
	domainErrors "github.com/thomas-vilte/prbuddy/internal/errors"
	"github.com/thomas-vilte/prbuddy/internal/i18n"
	"github.com/thomas-vilte/prbuddy/internal/models"
	"github.com/thomas-vilte/prbuddy/internal/settings"
	"github.com/thomas-vilte/prbuddy/internal/store"
)

func init() {
	color.NoColor = true
}

func runModels(t *testing.T, manager *settings.Manager, args ...string) (string, error) {
	t.Helper()
	translations, err := i18n.NewTranslations("en", "")
	require.NoError(t, err)
	cmd := NewModelsCommandFactory(manager).CreateCommand(translations, &config.Config{})
	var out bytes.Buffer
	cmd.Writer = &out
	err = cmd.Run(context.Background(), append([]string{"models"}, args...))
	return out.String(), err
}

func activeID(t *testing.T, manager *settings.Manager) string {
	t.Helper()
	mdl, err := manager.ActiveModel(context.Background())
	require.NoError(t, err)
	return mdl.ID
}

func TestModelsCommand(t *testing.T) {
	ctx := context.Background()

	t.Run("should mark the active model", func(t *testing.T) {
		manager := settings.NewManager(store.NewMemory())

		out, err := runModels(t, manager, "list")

		require.NoError(t, err)
		assert.Contains(t, out, "* "+settings.DefaultModelID)
	})

	t.Run("should add an inactive model", func(t *testing.T) {
		manager := settings.NewManager(store.NewMemory())

		_, err := runModels(t, manager, "add", "--name", "Flash", "--model-id", "gemini-2.0-flash", "--provider", "gemini")

		require.NoError(t, err)
		list, err := manager.ListModels(ctx)
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, models.ProviderGemini, list[1].Provider)
		assert.False(t, list[1].IsActive)
		assert.Equal(t, settings.DefaultModelID, activeID(t, manager))
	})

	t.Run("should activate with --use", func(t *testing.T) {
		manager := settings.NewManager(store.NewMemory())

		_, err := runModels(t, manager, "add", "--name", "Claude", "--model-id", "anthropic/claude-3.5-sonnet", "--use")

		require.NoError(t, err)
		list, err := manager.ListModels(ctx)
		require.NoError(t, err)
		assert.Equal(t, list[1].ID, activeID(t, manager))
	})

	t.Run("should reject unknown providers", func(t *testing.T) {
		manager := settings.NewManager(store.NewMemory())

		_, err := runModels(t, manager, "add", "--name", "X", "--model-id", "x", "--provider", "bedrock")

		assert.True(t, errors.Is(err, domainErrors.ErrUnknownProvider))
	})

	t.Run("should switch the active model", func(t *testing.T) {
		manager := settings.NewManager(store.NewMemory())
		added, err := manager.AddModel(ctx, "Other", "openai/gpt-4o-mini", models.ProviderOpenRouter)
		require.NoError(t, err)

		_, err = runModels(t, manager, "use", added.ID)

		require.NoError(t, err)
		assert.Equal(t, added.ID, activeID(t, manager))
	})

	t.Run("should edit only the given fields", func(t *testing.T) {
		manager := settings.NewManager(store.NewMemory())

		_, err := runModels(t, manager, "edit", "--name", "Mimo", settings.DefaultModelID)

		require.NoError(t, err)
		list, err := manager.ListModels(ctx)
		require.NoError(t, err)
		assert.Equal(t, "Mimo", list[0].Name)
		assert.Equal(t, settings.DefaultModels()[0].ModelID, list[0].ModelID)
	})

	t.Run("should refuse to delete the last model", func(t *testing.T) {
		manager := settings.NewManager(store.NewMemory())

		_, err := runModels(t, manager, "delete", settings.DefaultModelID)

		assert.True(t, errors.Is(err, domainErrors.ErrLastModel))
	})

	t.Run("should report unknown models", func(t *testing.T) {
		manager := settings.NewManager(store.NewMemory())

		_, err := runModels(t, manager, "use", "nope")

		assert.True(t, errors.Is(err, domainErrors.ErrModelNotFound))
	})
}
