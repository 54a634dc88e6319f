package update

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/thomas-vilte/prbuddy/internal/commands/completion_helper"
	cfg "github.com/thomas-vilte/prbuddy/internal/config"
	domainErrors "github.com/thomas-vilte/prbuddy/internal/errors"
	"github.com/thomas-vilte/prbuddy/internal/i18n"
	"github.com/thomas-vilte/prbuddy/internal/logger"
	"github.com/thomas-vilte/prbuddy/internal/ui"
	"github.com/urfave/cli/v3"
)

type PRUpdater interface {
	UpdatePRDescription(ctx context.Context, rawURL, description, title string) error
}

// PRUpdaterProvider returns a PRUpdater on demand
type PRUpdaterProvider func(ctx context.Context) (PRUpdater, error)

type UpdateCommandFactory struct {
	provider PRUpdaterProvider
}

func NewUpdateCommandFactory(provider PRUpdaterProvider) *UpdateCommandFactory {
	return &UpdateCommandFactory{provider: provider}
}

func (f *UpdateCommandFactory) CreateCommand(t *i18n.Translations, _ *cfg.Config) *cli.Command {
	return &cli.Command{
		Name:  "update",
		Usage: t.GetMessage("update.usage", 0, nil),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "url",
				Aliases:  []string{"u"},
				Usage:    t.GetMessage("update.url_usage", 0, nil),
				Required: true,
			},
			&cli.StringFlag{
				Name:    "file",
				Aliases: []string{"f"},
				Usage:   t.GetMessage("update.file_usage", 0, nil),
				Value:   "-",
			},
			&cli.StringFlag{
				Name:  "title",
				Usage: t.GetMessage("update.title_usage", 0, nil),
			},
		},
		ShellComplete: completion_helper.DefaultFlagComplete,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			log := logger.FromContext(ctx)

			body, err := readDescription(cmd.String("file"), cmd.Root().Reader)
			if err != nil {
				return err
			}

			updater, err := f.provider(ctx)
			if err != nil {
				return err
			}

			rawURL := cmd.String("url")
			title := strings.TrimSpace(cmd.String("title"))
			log.Info("executing update command", "url", rawURL, "with_title", title != "")

			spinner := ui.NewSmartSpinner(t.GetMessage("update.updating", 0, nil))
			spinner.Start()
			if err := updater.UpdatePRDescription(ctx, rawURL, body, title); err != nil {
				spinner.Error(t.GetMessage("update.failed", 0, nil))
				return err
			}
			spinner.Stop()
			ui.PrintSuccess(cmd.Root().Writer, t.GetMessage("update.success", 0, map[string]interface{}{
				"PR": rawURL,
			}))
			return nil
		},
	}
}

// readDescription reads path, or stdin when path is "-".
func readDescription(path string, stdin io.Reader) (string, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", domainErrors.NewAppError(domainErrors.TypeInput, "Failed to read description", err)
	}
	body := strings.TrimRight(string(data), "\n")
	if strings.TrimSpace(body) == "" {
		return "", domainErrors.ErrEmptyDescription
	}
	return body, nil
}
