package i18n

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestNewTranslations(t *testing.T) {
	t.Run("should load the embedded catalogs without a directory", func(t *testing.T) {
		trans, err := NewTranslations("en", "")

		require.NoError(t, err)
		assert.Equal(t, "Generating description...", trans.GetMessage("generating_description", 0, nil))
	})

	t.Run("should serve spanish messages", func(t *testing.T) {
		trans, err := NewTranslations("es", "")

		require.NoError(t, err)
		assert.Equal(t, "Generando descripción...", trans.GetMessage("generating_description", 0, nil))
	})

	t.Run("should let files on disk override embedded messages", func(t *testing.T) {
		dir := t.TempDir()
		createTestFile(t, dir, "active.en.toml", `
		[generating_description]
		other = "Working on it"`)

		trans, err := NewTranslations("en", dir)

		require.NoError(t, err)
		assert.Equal(t, "Working on it", trans.GetMessage("generating_description", 0, nil))
	})

	t.Run("should fail with empty language", func(t *testing.T) {
		trans, err := NewTranslations("", t.TempDir())

		assert.Error(t, err)
		assert.Nil(t, trans)
	})

	t.Run("should fail on a malformed locale file", func(t *testing.T) {
		dir := t.TempDir()
		createTestFile(t, dir, "active.en.toml", `[broken`)

		_, err := NewTranslations("en", dir)

		assert.Error(t, err)
	})
}

func TestSetLanguage(t *testing.T) {
	t.Run("should change to a valid language", func(t *testing.T) {
		trans, err := NewTranslations("en", "")
		require.NoError(t, err)

		err = trans.SetLanguage("es")

		assert.NoError(t, err)
		assert.Equal(t, "Generando descripción...", trans.GetMessage("generating_description", 0, nil))
	})

	t.Run("should fail with unsupported language", func(t *testing.T) {
		trans, err := NewTranslations("es", "")
		require.NoError(t, err)

		assert.Error(t, trans.SetLanguage("fr"))
	})
}

func TestGetMessage(t *testing.T) {
	dir := t.TempDir()
	createTestFile(t, dir, "active.es.toml", `
	[Welcome]
	one = "Bienvenido"
	other = "Bienvenidos"

	[HelloName]
	other = "¡Hola {{.Name}}!"`)

	trans, err := NewTranslations("es", dir)
	require.NoError(t, err)

	t.Run("should pick the singular form", func(t *testing.T) {
		assert.Equal(t, "Bienvenido", trans.GetMessage("Welcome", 1, nil))
	})

	t.Run("should pick the plural form", func(t *testing.T) {
		assert.Equal(t, "Bienvenidos", trans.GetMessage("Welcome", 2, nil))
	})

	t.Run("should render template data", func(t *testing.T) {
		assert.Equal(t, "¡Hola Juan!", trans.GetMessage("HelloName", 0, map[string]interface{}{"Name": "Juan"}))
	})

	t.Run("should flag missing messages", func(t *testing.T) {
		assert.Equal(t, "Translation missing: NonExistent", trans.GetMessage("NonExistent", 1, nil))
	})
}
