package services

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thomas-vilte/prbuddy/internal/i18n"
)

func newTestChecker(t *testing.T, current string, latest LatestReleaseFunc) (*VersionChecker, *bytes.Buffer) {
	t.Helper()
	trans, err := i18n.NewTranslations("en", "")
	require.NoError(t, err)

	var out bytes.Buffer
	c := NewVersionChecker(current, t.TempDir(), trans)
	c.latest = latest
	c.out = &out
	return c, &out
}

func TestIsUpdateAvailable(t *testing.T) {
	tests := []struct {
		name     string
		current  string
		latest   string
		expected bool
	}{
		{name: "patch update available", current: "v1.0.0", latest: "v1.0.1", expected: true},
		{name: "minor update available", current: "v1.0.0", latest: "v1.1.0", expected: true},
		{name: "major update available", current: "v1.0.0", latest: "v2.0.0", expected: true},
		{name: "same version", current: "v1.0.0", latest: "v1.0.0", expected: false},
		{name: "current is newer", current: "v1.5.0", latest: "v1.4.9", expected: false},
		{name: "without v prefix", current: "1.0.0", latest: "1.0.1", expected: true},
		{name: "prerelease to release", current: "v1.0.0-beta.1", latest: "v1.0.0", expected: true},
		{name: "release to prerelease", current: "v1.0.0", latest: "v1.0.0-rc.1", expected: false},
		{name: "dev build", current: "dev", latest: "v1.0.0", expected: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, isUpdateAvailable(tt.current, tt.latest))
		})
	}
}

func TestVersionChecker_CheckForUpdates(t *testing.T) {
	t.Run("should print a notice and cache the release", func(t *testing.T) {
		calls := 0
		c, out := newTestChecker(t, "v1.0.0", func(context.Context) (string, error) {
			calls++
			return "v1.2.0", nil
		})

		c.CheckForUpdates(context.Background())
		c.CheckForUpdates(context.Background())

		assert.Equal(t, 1, calls)
		assert.Contains(t, out.String(), "v1.2.0")
		cache, err := c.loadCache()
		require.NoError(t, err)
		assert.Equal(t, "v1.2.0", cache.LatestKnown)
	})

	t.Run("should stay quiet when up to date", func(t *testing.T) {
		c, out := newTestChecker(t, "v1.2.0", func(context.Context) (string, error) {
			return "v1.2.0", nil
		})

		c.CheckForUpdates(context.Background())

		assert.Empty(t, out.String())
	})

	t.Run("should refresh an expired cache", func(t *testing.T) {
		calls := 0
		c, _ := newTestChecker(t, "v1.0.0", func(context.Context) (string, error) {
			calls++
			return "v1.0.1", nil
		})
		require.NoError(t, c.saveCache(UpdateCache{LastCheck: time.Now().Add(-48 * time.Hour), LatestKnown: "v1.0.0"}))

		c.CheckForUpdates(context.Background())

		assert.Equal(t, 1, calls)
	})

	t.Run("should swallow lookup errors", func(t *testing.T) {
		c, out := newTestChecker(t, "v1.0.0", func(context.Context) (string, error) {
			return "", errors.New("offline")
		})

		c.CheckForUpdates(context.Background())

		assert.Empty(t, out.String())
		_, err := c.loadCache()
		assert.Error(t, err)
	})

	t.Run("should skip when disabled", func(t *testing.T) {
		t.Setenv("PRBUDDY_DISABLE_UPDATE_CHECK", "1")
		c, _ := newTestChecker(t, "v1.0.0", func(context.Context) (string, error) {
			t.Fatal("lookup must not run")
			return "", nil
		})

		c.CheckForUpdates(context.Background())
	})
}

func TestVersionChecker_LoadCache_InvalidJSON(t *testing.T) {
	c, _ := newTestChecker(t, "v1.0.0", nil)
	require.NoError(t, os.MkdirAll(filepath.Dir(c.cachePath), 0700))
	require.NoError(t, os.WriteFile(c.cachePath, []byte("invalid json"), 0600))

	_, err := c.loadCache()

	assert.Error(t, err)
}
