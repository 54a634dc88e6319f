package completion

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thomas-vilte/prbuddy/internal/i18n"
)

func TestCompletionCommand(t *testing.T) {
	translations, err := i18n.NewTranslations("en", "")
	require.NoError(t, err)

	for _, shell := range []string{"bash", "zsh"} {
		t.Run("should print the "+shell+" script", func(t *testing.T) {
			cmd := NewCompletionCommand(translations)
			var out bytes.Buffer
			cmd.Writer = &out

			require.NoError(t, cmd.Run(context.Background(), []string{"completion", shell}))
			assert.Contains(t, out.String(), "--generate-shell-completion")
			assert.Contains(t, out.String(), "prbuddy")
		})
	}
}

func TestInstall(t *testing.T) {
	t.Run("should append the hook once", func(t *testing.T) {
		home := t.TempDir()

		file, added, err := install("/bin/zsh", home)
		require.NoError(t, err)
		assert.True(t, added)
		assert.Equal(t, filepath.Join(home, ".zshrc"), file)

		_, added, err = install("/bin/zsh", home)
		require.NoError(t, err)
		assert.False(t, added)

		data, err := os.ReadFile(file)
		require.NoError(t, err)
		assert.Equal(t, 1, strings.Count(string(data), installMarker))
		assert.Contains(t, string(data), "prbuddy completion zsh")
	})

	t.Run("should reject other shells", func(t *testing.T) {
		_, _, err := install("/usr/bin/fish", t.TempDir())

		assert.Error(t, err)
	})
}
