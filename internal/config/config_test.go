package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	domainErrors "github.com/thomas-vilte/prbuddy/internal/errors"
)

func TestLoadConfig(t *testing.T) {
	t.Run("should create the default config when absent", func(t *testing.T) {
		// Arrange
		dir := t.TempDir()

		// Act
		cfg, err := LoadConfig(dir)

		// Assert
		require.NoError(t, err)
		assert.Equal(t, LangEN, cfg.Language)
		assert.Equal(t, StorageFile, cfg.Storage.Driver)
		assert.Equal(t, "https://openrouter.ai/api/v1", cfg.OpenRouter.BaseURL)
		assert.Equal(t, "https://github.com/pr-buddy-extension", cfg.OpenRouter.Referer)
		assert.Equal(t, "PR Buddy", cfg.OpenRouter.Title)
		assert.Equal(t, filepath.Join(dir, ".prbuddy", "config.json"), cfg.PathFile)

		info, err := os.Stat(cfg.PathFile)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
	})

	t.Run("should read an explicit json file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "custom.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"language":"es","storage":{"driver":"sqlite"}}`), 0o600))

		cfg, err := LoadConfig(path)

		require.NoError(t, err)
		assert.Equal(t, LangES, cfg.Language)
		assert.Equal(t, StorageSQLite, cfg.Storage.Driver)
		assert.Equal(t, defaultServerAddr, cfg.Server.Addr)
	})

	t.Run("should let environment variables override the file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"language":"en"}`), 0o600))
		t.Setenv("PRBUDDY_LANGUAGE", "es")
		t.Setenv("PRBUDDY_GITHUB_API_URL", "https://ghe.example.com/api/v3/")

		cfg, err := LoadConfig(path)

		require.NoError(t, err)
		assert.Equal(t, LangES, cfg.Language)
		assert.Equal(t, "https://ghe.example.com/api/v3/", cfg.GitHub.APIURL)
	})

	t.Run("should reject an invalid config", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"language":"fr"}`), 0o600))

		_, err := LoadConfig(path)

		require.Error(t, err)
		assert.True(t, errors.Is(err, domainErrors.ErrConfigInvalid))
	})

	t.Run("should fail on malformed json", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.json")
		require.NoError(t, os.WriteFile(path, []byte(`{not json`), 0o600))

		_, err := LoadConfig(path)

		assert.Error(t, err)
	})
}

func TestSaveConfig(t *testing.T) {
	t.Run("should persist and reload", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.json")
		cfg := Default(path)
		cfg.Language = LangES
		cfg.Server.Addr = "127.0.0.1:9999"

		require.NoError(t, SaveConfig(cfg))
		loaded, err := LoadConfig(path)

		require.NoError(t, err)
		assert.Equal(t, LangES, loaded.Language)
		assert.Equal(t, "127.0.0.1:9999", loaded.Server.Addr)
	})

	t.Run("should fail without a path", func(t *testing.T) {
		cfg := Default("")

		err := SaveConfig(cfg)

		assert.True(t, errors.Is(err, domainErrors.ErrConfigInvalid))
	})

	t.Run("should refuse an unsupported storage driver", func(t *testing.T) {
		cfg := Default(filepath.Join(t.TempDir(), "config.json"))
		cfg.Storage.Driver = "redis"

		assert.Error(t, SaveConfig(cfg))
	})
}

func TestServerConfig(t *testing.T) {
	t.Run("should default to extension origins without a token", func(t *testing.T) {
		cfg, err := LoadConfig(t.TempDir())

		require.NoError(t, err)
		assert.Equal(t, DefaultAllowedOrigins, cfg.Server.AllowedOrigins)
		assert.Empty(t, cfg.Server.Token)
	})

	t.Run("should read allowed origins from the environment", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"language":"en"}`), 0o600))
		t.Setenv("PRBUDDY_SERVER_ALLOWED_ORIGINS", "chrome-extension://abc,http://localhost:3000")

		cfg, err := LoadConfig(path)

		require.NoError(t, err)
		assert.Equal(t, []string{"chrome-extension://abc", "http://localhost:3000"}, cfg.Server.AllowedOrigins)
	})

	t.Run("should generate and persist a token once", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.json")
		cfg := Default(path)

		token, err := EnsureServerToken(cfg)
		require.NoError(t, err)
		again, err := EnsureServerToken(cfg)
		require.NoError(t, err)
		loaded, err := LoadConfig(path)

		require.NoError(t, err)
		assert.Len(t, token, 32)
		assert.Equal(t, token, again)
		assert.Equal(t, token, loaded.Server.Token)
	})

	t.Run("should not keep a token it could not save", func(t *testing.T) {
		cfg := Default("")

		_, err := EnsureServerToken(cfg)

		assert.True(t, errors.Is(err, domainErrors.ErrConfigInvalid))
		assert.Empty(t, cfg.Server.Token)
	})
}

func TestConfig_StoragePath(t *testing.T) {
	cfg := Default("/home/u/.prbuddy/config.json")
	assert.Equal(t, "/home/u/.prbuddy/store.json", cfg.StoragePath())

	cfg.Storage.Driver = StorageSQLite
	assert.Equal(t, "/home/u/.prbuddy/prbuddy.db", cfg.StoragePath())

	cfg.Storage.Path = "/tmp/x.db"
	assert.Equal(t, "/tmp/x.db", cfg.StoragePath())
}

func TestGetLocaleConfig(t *testing.T) {
	assert.Equal(t, LangES, GetLocaleConfig("es"))
	assert.Equal(t, LangEN, GetLocaleConfig("de"))
}
