package update

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/thomas-vilte/prbuddy/internal/config"
	domainErrors "github.com/thomas-vilte/prbuddy/internal/errors"
	"github.com/thomas-vilte/prbuddy/internal/i18n"
)

const prURL = "https://github.com/acme/widgets/pull/42"

type MockUpdater struct {
	mock.Mock
}

func (m *MockUpdater) UpdatePRDescription(ctx context.Context, rawURL, description, title string) error {
	args := m.Called(ctx, rawURL, description, title)
	return args.Error(0)
}

func runUpdate(t *testing.T, updater PRUpdater, stdin string, args ...string) (string, error) {
	t.Helper()
	translations, err := i18n.NewTranslations("en", "")
	require.NoError(t, err)

	cmd := NewUpdateCommandFactory(func(context.Context) (PRUpdater, error) {
		return updater, nil
	}).CreateCommand(translations, &config.Config{})
	var out bytes.Buffer
	cmd.Writer = &out
	cmd.Reader = strings.NewReader(stdin)
	err = cmd.Run(context.Background(), append([]string{"update"}, args...))
	return out.String(), err
}

func TestUpdateCommand(t *testing.T) {
	t.Run("should read the description from stdin", func(t *testing.T) {
		updater := new(MockUpdater)
		updater.On("UpdatePRDescription", mock.Anything, prURL, "## Body", "").Return(nil)

		_, err := runUpdate(t, updater, "## Body\n", "--url", prURL)

		require.NoError(t, err)
		updater.AssertExpectations(t)
	})

	t.Run("should read a file and send the title", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "desc.md")
		require.NoError(t, os.WriteFile(path, []byte("from file\n\n"), 0600))
		updater := new(MockUpdater)
		updater.On("UpdatePRDescription", mock.Anything, prURL, "from file", "New title").Return(nil)

		_, err := runUpdate(t, updater, "", "--url", prURL, "--file", path, "--title", " New title ")

		require.NoError(t, err)
		updater.AssertExpectations(t)
	})

	t.Run("should refuse an empty description", func(t *testing.T) {
		updater := new(MockUpdater)

		_, err := runUpdate(t, updater, "\n", "--url", prURL)

		assert.True(t, errors.Is(err, domainErrors.ErrEmptyDescription))
		updater.AssertNotCalled(t, "UpdatePRDescription", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("should surface update errors", func(t *testing.T) {
		updater := new(MockUpdater)
		updater.On("UpdatePRDescription", mock.Anything, prURL, "body", "").
			Return(domainErrors.ErrGitHubTokenMissing)

		_, err := runUpdate(t, updater, "body", "--url", prURL)

		assert.True(t, errors.Is(err, domainErrors.ErrGitHubTokenMissing))
	})

	t.Run("should require a url", func(t *testing.T) {
		_, err := runUpdate(t, new(MockUpdater), "body")

		assert.Error(t, err)
	})
}
