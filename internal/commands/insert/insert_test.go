package insert

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thomas-vilte/prbuddy/internal/config"
	domainErrors "github.com/thomas-vilte/prbuddy/internal/errors"
	"github.com/thomas-vilte/prbuddy/internal/i18n"
)

const editPage = `<html><body><form><textarea id="pull_request_body">old</textarea></form></body></html>`

func runInsert(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	translations, err := i18n.NewTranslations("en", "")
	require.NoError(t, err)

	cmd := NewInsertCommandFactory().CreateCommand(translations, &config.Config{})
	var out bytes.Buffer
	cmd.Writer = &out
	cmd.Reader = strings.NewReader(stdin)
	err = cmd.Run(context.Background(), append([]string{"insert"}, args...))
	return out.String(), err
}

func writePage(t *testing.T, html string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "edit.html")
	require.NoError(t, os.WriteFile(path, []byte(html), 0600))
	return path
}

func TestInsertCommand(t *testing.T) {
	t.Run("should print the updated page", func(t *testing.T) {
		path := writePage(t, editPage)

		out, err := runInsert(t, "new body\n", "--page", path)

		require.NoError(t, err)
		assert.Contains(t, out, `<textarea id="pull_request_body">new body</textarea>`)
	})

	t.Run("should write the updated page to a file", func(t *testing.T) {
		path := writePage(t, editPage)
		desc := filepath.Join(t.TempDir(), "desc.md")
		require.NoError(t, os.WriteFile(desc, []byte("from file"), 0600))
		out := filepath.Join(t.TempDir(), "out.html")

		_, err := runInsert(t, "", "--page", path, "--file", desc, "--out", out)

		require.NoError(t, err)
		data, err := os.ReadFile(out)
		require.NoError(t, err)
		assert.Contains(t, string(data), ">from file</textarea>")
	})

	t.Run("should require edit mode", func(t *testing.T) {
		path := writePage(t, `<html><body><p>read only</p></body></html>`)

		_, err := runInsert(t, "body", "--page", path)

		assert.True(t, errors.Is(err, domainErrors.ErrEditModeRequired))
	})

	t.Run("should fail on a missing page", func(t *testing.T) {
		_, err := runInsert(t, "body", "--page", filepath.Join(t.TempDir(), "nope.html"))

		assert.Error(t, err)
	})
}
