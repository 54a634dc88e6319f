package config

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thomas-vilte/prbuddy/internal/config"
	domainErrors "github.com/thomas-vilte/prbuddy/internal/errors"
	"github.com/thomas-vilte/prbuddy/internal/i18n"
	"github.com/thomas-vilte/prbuddy/internal/settings"
	"github.com/thomas-vilte/prbuddy/internal/store"
)

func init() {
	color.NoColor = true
}

const prURL = "https://github.com/acme/widgets/pull/42"

type configFixture struct {
	cfg     *config.Config
	manager *settings.Manager
	trans   *i18n.Translations
	cfgPath string
	factory *ConfigCommandFactory
}

func setupConfigTest(t *testing.T) *configFixture {
	t.Helper()
	cfgPath := filepath.Join(t.TempDir(), "config.json")
	cfg, err := config.LoadConfig(cfgPath)
	require.NoError(t, err)

	translations, err := i18n.NewTranslations("en", "")
	require.NoError(t, err)

	manager := settings.NewManager(store.NewMemory())
	return &configFixture{
		cfg:     cfg,
		manager: manager,
		trans:   translations,
		cfgPath: cfgPath,
		factory: NewConfigCommandFactory(manager),
	}
}

func (f *configFixture) run(t *testing.T, input string, args ...string) (string, error) {
	t.Helper()
	cmd := f.factory.CreateCommand(f.trans, f.cfg)
	var out bytes.Buffer
	cmd.Writer = &out
	cmd.Reader = strings.NewReader(input)
	err := cmd.Run(context.Background(), append([]string{"config"}, args...))
	return out.String(), err
}

func TestShowCommand(t *testing.T) {
	t.Run("should mask stored keys", func(t *testing.T) {
		f := setupConfigTest(t)
		ctx := context.Background()
		require.NoError(t, f.manager.SetCredential(ctx, settings.CredentialGitHub, "ghp_abcdefghijklmnop1234"))

		out, err := f.run(t, "", "show")

		require.NoError(t, err)
		assert.Contains(t, out, "ghp_********1234")
		assert.NotContains(t, out, "ghp_abcdefghijklmnop1234")
		assert.Contains(t, out, f.cfgPath)
	})

	t.Run("should list origins and mask the server token", func(t *testing.T) {
		f := setupConfigTest(t)
		f.cfg.Server.Token = "0123456789abcdef0123"

		out, err := f.run(t, "", "show")

		require.NoError(t, err)
		assert.Contains(t, out, "chrome-extension://*, moz-extension://*")
		assert.Contains(t, out, "0123********0123")
		assert.NotContains(t, out, "0123456789abcdef0123")
	})

	t.Run("should mask short keys entirely", func(t *testing.T) {
		assert.Equal(t, "********", maskKey("short", "-"))
		assert.Equal(t, "-", maskKey("", "-"))
	})
}

func TestSetCommand(t *testing.T) {
	t.Run("should persist a setting", func(t *testing.T) {
		f := setupConfigTest(t)

		_, err := f.run(t, "", "set", "language", "es")

		require.NoError(t, err)
		reloaded, err := config.LoadConfig(f.cfgPath)
		require.NoError(t, err)
		assert.Equal(t, "es", reloaded.Language)
	})

	t.Run("should reject invalid values and keep the previous config", func(t *testing.T) {
		f := setupConfigTest(t)

		_, err := f.run(t, "", "set", "storage", "postgres")

		assert.True(t, errors.Is(err, domainErrors.ErrConfigInvalid))
		assert.Equal(t, config.StorageFile, f.cfg.Storage.Driver)
	})

	t.Run("should persist server access settings", func(t *testing.T) {
		f := setupConfigTest(t)

		_, err := f.run(t, "", "set", "server-origins", "chrome-extension://abc, ,http://localhost:3000")
		require.NoError(t, err)
		_, err = f.run(t, "", "set", "server-token", "s3cret-token-value")
		require.NoError(t, err)

		reloaded, err := config.LoadConfig(f.cfgPath)
		require.NoError(t, err)
		assert.Equal(t, []string{"chrome-extension://abc", "http://localhost:3000"}, reloaded.Server.AllowedOrigins)
		assert.Equal(t, "s3cret-token-value", reloaded.Server.Token)
	})

	t.Run("should reject unknown keys", func(t *testing.T) {
		f := setupConfigTest(t)

		_, err := f.run(t, "", "set", "emoji", "true")

		assert.True(t, errors.Is(err, domainErrors.ErrConfigInvalid))
	})

	t.Run("should require two arguments", func(t *testing.T) {
		f := setupConfigTest(t)

		_, err := f.run(t, "", "set", "language")

		assert.Error(t, err)
	})
}

func TestSetKeyCommand(t *testing.T) {
	t.Run("should store a key from the arguments", func(t *testing.T) {
		f := setupConfigTest(t)

		_, err := f.run(t, "", "set-key", "openrouter", "sk-or-123")

		require.NoError(t, err)
		creds, err := f.manager.Credentials(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "sk-or-123", creds.OpenRouterKey)
	})

	t.Run("should read the key from input", func(t *testing.T) {
		f := setupConfigTest(t)

		_, err := f.run(t, "ghp_secret\n", "set-key", "github")

		require.NoError(t, err)
		creds, err := f.manager.Credentials(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "ghp_secret", creds.GitHubToken)
	})

	t.Run("should remove a key given an empty value", func(t *testing.T) {
		f := setupConfigTest(t)
		ctx := context.Background()
		require.NoError(t, f.manager.SetCredential(ctx, settings.CredentialGemini, "AIza"))

		_, err := f.run(t, "", "set-key", "gemini", "")

		require.NoError(t, err)
		creds, err := f.manager.Credentials(ctx)
		require.NoError(t, err)
		assert.Empty(t, creds.GeminiKey)
	})

	t.Run("should reject unknown credentials", func(t *testing.T) {
		f := setupConfigTest(t)

		_, err := f.run(t, "", "set-key", "jira", "x")

		assert.True(t, errors.Is(err, domainErrors.ErrConfigInvalid))
	})
}

type brokenDevMode struct {
	*settings.Manager
	err error
}

func (b *brokenDevMode) DevMode(context.Context) (bool, string, error) {
	return false, "", b.err
}

func TestDevCommand(t *testing.T) {
	t.Run("should enable and disable dev mode", func(t *testing.T) {
		f := setupConfigTest(t)
		ctx := context.Background()

		_, err := f.run(t, "", "dev", prURL)
		require.NoError(t, err)
		enabled, url, err := f.manager.DevMode(ctx)
		require.NoError(t, err)
		assert.True(t, enabled)
		assert.Equal(t, prURL, url)

		_, err = f.run(t, "", "dev", "--off")
		require.NoError(t, err)
		enabled, url, err = f.manager.DevMode(ctx)
		require.NoError(t, err)
		assert.False(t, enabled)
		assert.Equal(t, prURL, url)
	})

	t.Run("should surface a failure to read the stored url", func(t *testing.T) {
		f := setupConfigTest(t)
		f.factory = NewConfigCommandFactory(&brokenDevMode{Manager: f.manager, err: domainErrors.ErrDecryptCredential})

		_, err := f.run(t, "", "dev")

		assert.True(t, errors.Is(err, domainErrors.ErrDecryptCredential))
		enabled, _, err := f.manager.DevMode(context.Background())
		require.NoError(t, err)
		assert.False(t, enabled)
	})

	t.Run("should refuse an invalid url", func(t *testing.T) {
		f := setupConfigTest(t)

		_, err := f.run(t, "", "dev", "https://gitlab.com/a/b/-/merge_requests/1")

		assert.True(t, errors.Is(err, domainErrors.ErrInvalidPRURL))
	})
}

func TestInitCommand(t *testing.T) {
	t.Run("should store language and keys", func(t *testing.T) {
		// Arrange
		f := setupConfigTest(t)
		input := "es\nghp_token\nsk-or-key\n\n"

		// Act
		out, err := f.run(t, input, "init")

		// Assert
		require.NoError(t, err)
		reloaded, err := config.LoadConfig(f.cfgPath)
		require.NoError(t, err)
		assert.Equal(t, "es", reloaded.Language)

		creds, err := f.manager.Credentials(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "ghp_token", creds.GitHubToken)
		assert.Equal(t, "sk-or-key", creds.OpenRouterKey)
		assert.Empty(t, creds.GeminiKey)
		assert.Contains(t, out, "✅")
	})

	t.Run("should keep everything on blank answers", func(t *testing.T) {
		f := setupConfigTest(t)

		_, err := f.run(t, "", "init")

		require.NoError(t, err)
		assert.Equal(t, "en", f.cfg.Language)
	})
}
