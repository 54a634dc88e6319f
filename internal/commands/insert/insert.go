package insert

import (
	"bytes"
	"context"
	"io"
	"os"
	"strings"

	"github.com/thomas-vilte/prbuddy/internal/commands/completion_helper"
	cfg "github.com/thomas-vilte/prbuddy/internal/config"
	domainErrors "github.com/thomas-vilte/prbuddy/internal/errors"
	"github.com/thomas-vilte/prbuddy/internal/i18n"
	"github.com/thomas-vilte/prbuddy/internal/logger"
	"github.com/thomas-vilte/prbuddy/internal/page"
	"github.com/thomas-vilte/prbuddy/internal/protocol"
	"github.com/thomas-vilte/prbuddy/internal/ui"
	"github.com/urfave/cli/v3"
)

type InsertCommandFactory struct{}

func NewInsertCommandFactory() *InsertCommandFactory {
	return &InsertCommandFactory{}
}

// CreateCommand builds insert, which writes a description into a saved PR
// edit page through the page router, the same way the page handles
// UPDATE_DESCRIPTION.
func (f *InsertCommandFactory) CreateCommand(t *i18n.Translations, _ *cfg.Config) *cli.Command {
	return &cli.Command{
		Name:  "insert",
		Usage: t.GetMessage("insert.usage", 0, nil),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "page",
				Aliases:  []string{"p"},
				Usage:    t.GetMessage("insert.page_usage", 0, nil),
				Required: true,
			},
			&cli.StringFlag{
				Name:    "file",
				Aliases: []string{"f"},
				Usage:   t.GetMessage("insert.file_usage", 0, nil),
				Value:   "-",
			},
			&cli.StringFlag{
				Name:    "out",
				Aliases: []string{"o"},
				Usage:   t.GetMessage("insert.out_usage", 0, nil),
			},
		},
		ShellComplete: completion_helper.DefaultFlagComplete,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			pagePath := cmd.String("page")

			text, err := readText(cmd.String("file"), cmd.Root().Reader)
			if err != nil {
				return err
			}

			src, err := os.ReadFile(pagePath)
			if err != nil {
				return domainErrors.NewAppError(domainErrors.TypePage, "Failed to read page", err)
			}
			doc, err := page.ParseHTML(bytes.NewReader(src))
			if err != nil {
				return err
			}
			doc.AddEventListener(page.DescriptionFieldID, page.EventInput, func(ev page.Event) {
				logger.Debug(ctx, "event dispatched", "type", ev.Type, "target", ev.TargetID)
			})
			doc.AddEventListener(page.DescriptionFieldID, page.EventChange, func(ev page.Event) {
				logger.Debug(ctx, "event dispatched", "type", ev.Type, "target", ev.TargetID)
			})

			resp := page.NewRouter(doc).Dispatch(ctx, protocol.Request{
				Action:      protocol.ActionUpdateDescription,
				Description: text,
			})
			if !resp.Success {
				return domainErrors.ErrEditModeRequired.WithContext("page", pagePath)
			}

			var buf bytes.Buffer
			if err := doc.Render(&buf); err != nil {
				return domainErrors.NewAppError(domainErrors.TypePage, "Failed to render page", err)
			}

			out := cmd.String("out")
			if out == "" {
				_, err = cmd.Root().Writer.Write(buf.Bytes())
				return err
			}
			if err := os.WriteFile(out, buf.Bytes(), 0644); err != nil {
				return domainErrors.NewAppError(domainErrors.TypePage, "Failed to write page", err)
			}
			ui.PrintSuccess(os.Stderr, t.GetMessage("insert.success", 0, map[string]interface{}{"Path": out}))
			return nil
		},
	}
}

func readText(path string, stdin io.Reader) (string, error) {
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
	return strings.TrimRight(string(data), "\n"), nil
}
