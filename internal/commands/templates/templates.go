package templates

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/thomas-vilte/prbuddy/internal/commands/completion_helper"
	"github.com/thomas-vilte/prbuddy/internal/config"
	domainErrors "github.com/thomas-vilte/prbuddy/internal/errors"
	"github.com/thomas-vilte/prbuddy/internal/i18n"
	"github.com/thomas-vilte/prbuddy/internal/models"
	"github.com/thomas-vilte/prbuddy/internal/ui"
	"github.com/urfave/cli/v3"
)

// TemplateStore manages the PR description templates.
type TemplateStore interface {
	ListTemplates(ctx context.Context) ([]models.PRTemplate, error)
	AddTemplate(ctx context.Context, title, structure string) (models.PRTemplate, error)
	UpdateTemplate(ctx context.Context, t models.PRTemplate) error
	DeleteTemplate(ctx context.Context, id string) error
	ExportTemplates(ctx context.Context, w io.Writer) error
	ImportTemplates(ctx context.Context, r io.Reader, replace bool) (int, error)
}

// EditFunc lets the user edit text, normally through $EDITOR.
type EditFunc func(initial, errMsg string) (string, error)

type TemplatesCommandFactory struct {
	store TemplateStore
	edit  EditFunc
}

func NewTemplatesCommandFactory(store TemplateStore) *TemplatesCommandFactory {
	return &TemplatesCommandFactory{store: store, edit: ui.EditText}
}

func (f *TemplatesCommandFactory) CreateCommand(t *i18n.Translations, _ *config.Config) *cli.Command {
	return &cli.Command{
		Name:    "templates",
		Aliases: []string{"template", "t"},
		Usage:   t.GetMessage("templates.usage", 0, nil),
		Commands: []*cli.Command{
			f.newListCommand(t),
			f.newShowCommand(t),
			f.newAddCommand(t),
			f.newEditCommand(t),
			f.newDeleteCommand(t),
			f.newExportCommand(t),
			f.newImportCommand(t),
		},
	}
}

func (f *TemplatesCommandFactory) newListCommand(t *i18n.Translations) *cli.Command {
	return &cli.Command{
		Name:    "list",
		Aliases: []string{"ls", "l"},
		Usage:   t.GetMessage("templates.list_usage", 0, nil),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			list, err := f.store.ListTemplates(ctx)
			if err != nil {
				return err
			}
			w := cmd.Root().Writer
			ui.PrintSectionBanner(w, t.GetMessage("templates.list_banner", 0, map[string]interface{}{"Count": len(list)}))
			for _, tmpl := range list {
				ui.PrintKeyValue(w, tmpl.ID, tmpl.Title)
			}
			return nil
		},
	}
}

func (f *TemplatesCommandFactory) newShowCommand(t *i18n.Translations) *cli.Command {
	return &cli.Command{
		Name:      "show",
		Usage:     t.GetMessage("templates.show_usage", 0, nil),
		ArgsUsage: "<id>",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			tmpl, err := f.find(ctx, cmd.Args().First())
			if err != nil {
				return err
			}
			w := cmd.Root().Writer
			ui.PrintSectionBanner(w, tmpl.Title)
			_, err = fmt.Fprintln(w, tmpl.Structure)
			return err
		},
	}
}

func (f *TemplatesCommandFactory) newAddCommand(t *i18n.Translations) *cli.Command {
	return &cli.Command{
		Name:  "add",
		Usage: t.GetMessage("templates.add_usage", 0, nil),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "title",
				Usage:    t.GetMessage("templates.title_usage", 0, nil),
				Required: true,
			},
			&cli.StringFlag{
				Name:    "file",
				Aliases: []string{"f"},
				Usage:   t.GetMessage("templates.file_usage", 0, nil),
			},
		},
		ShellComplete: completion_helper.DefaultFlagComplete,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			structure, err := f.readStructure(cmd.String("file"), "", t)
			if err != nil {
				return err
			}
			tmpl, err := f.store.AddTemplate(ctx, cmd.String("title"), structure)
			if err != nil {
				return err
			}
			ui.PrintSuccess(cmd.Root().Writer, t.GetMessage("templates.added", 0, map[string]interface{}{
				"Title": tmpl.Title,
				"ID":    tmpl.ID,
			}))
			return nil
		},
	}
}

func (f *TemplatesCommandFactory) newEditCommand(t *i18n.Translations) *cli.Command {
	return &cli.Command{
		Name:      "edit",
		Usage:     t.GetMessage("templates.edit_usage", 0, nil),
		ArgsUsage: "<id>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "title",
				Usage: t.GetMessage("templates.title_usage", 0, nil),
			},
			&cli.StringFlag{
				Name:    "file",
				Aliases: []string{"f"},
				Usage:   t.GetMessage("templates.file_usage", 0, nil),
			},
		},
		ShellComplete: completion_helper.DefaultFlagComplete,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			tmpl, err := f.find(ctx, cmd.Args().First())
			if err != nil {
				return err
			}
			if cmd.IsSet("title") {
				tmpl.Title = cmd.String("title")
			}
			// without --file and --title the structure goes through the editor
			if cmd.IsSet("file") || !cmd.IsSet("title") {
				if tmpl.Structure, err = f.readStructure(cmd.String("file"), tmpl.Structure, t); err != nil {
					return err
				}
			}
			if err := f.store.UpdateTemplate(ctx, tmpl); err != nil {
				return err
			}
			ui.PrintSuccess(cmd.Root().Writer, t.GetMessage("templates.updated", 0, map[string]interface{}{"Title": tmpl.Title}))
			return nil
		},
	}
}

func (f *TemplatesCommandFactory) newDeleteCommand(t *i18n.Translations) *cli.Command {
	return &cli.Command{
		Name:      "delete",
		Aliases:   []string{"rm"},
		Usage:     t.GetMessage("templates.delete_usage", 0, nil),
		ArgsUsage: "<id>",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "yes",
				Aliases: []string{"y"},
				Usage:   t.GetMessage("templates.yes_usage", 0, nil),
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			tmpl, err := f.find(ctx, cmd.Args().First())
			if err != nil {
				return err
			}
			w := cmd.Root().Writer
			if !cmd.Bool("yes") && !ui.AskConfirmation(cmd.Root().Reader, w,
				t.GetMessage("templates.confirm_delete", 0, map[string]interface{}{"Title": tmpl.Title})) {
				return nil
			}
			if err := f.store.DeleteTemplate(ctx, tmpl.ID); err != nil {
				return err
			}
			ui.PrintSuccess(w, t.GetMessage("templates.deleted", 0, map[string]interface{}{"Title": tmpl.Title}))
			return nil
		},
	}
}

func (f *TemplatesCommandFactory) newExportCommand(t *i18n.Translations) *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: t.GetMessage("templates.export_usage", 0, nil),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "out",
				Aliases: []string{"o"},
				Usage:   t.GetMessage("templates.out_usage", 0, nil),
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			out := cmd.String("out")
			if out == "" {
				return f.store.ExportTemplates(ctx, cmd.Root().Writer)
			}
			file, err := os.Create(out)
			if err != nil {
				return domainErrors.ErrStorage.WithError(err).WithContext("path", out)
			}
			if err := f.store.ExportTemplates(ctx, file); err != nil {
				_ = file.Close()
				return err
			}
			if err := file.Close(); err != nil {
				return domainErrors.ErrStorage.WithError(err).WithContext("path", out)
			}
			ui.PrintSuccess(cmd.Root().Writer, t.GetMessage("templates.exported", 0, map[string]interface{}{"Path": out}))
			return nil
		},
	}
}

func (f *TemplatesCommandFactory) newImportCommand(t *i18n.Translations) *cli.Command {
	return &cli.Command{
		Name:      "import",
		Usage:     t.GetMessage("templates.import_usage", 0, nil),
		ArgsUsage: "<file|->",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "replace",
				Usage: t.GetMessage("templates.replace_usage", 0, nil),
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			path := cmd.Args().First()
			var r io.Reader = cmd.Root().Reader
			if path != "" && path != "-" {
				file, err := os.Open(path)
				if err != nil {
					return domainErrors.NewAppError(domainErrors.TypeInput, "Failed to read templates file", err)
				}
				defer func() { _ = file.Close() }()
				r = file
			}
			n, err := f.store.ImportTemplates(ctx, r, cmd.Bool("replace"))
			if err != nil {
				return err
			}
			ui.PrintSuccess(cmd.Root().Writer, t.GetMessage("templates.imported", n, map[string]interface{}{"Count": n}))
			return nil
		},
	}
}

func (f *TemplatesCommandFactory) find(ctx context.Context, id string) (models.PRTemplate, error) {
	list, err := f.store.ListTemplates(ctx)
	if err != nil {
		return models.PRTemplate{}, err
	}
	for _, tmpl := range list {
		if tmpl.ID == id {
			return tmpl, nil
		}
	}
	return models.PRTemplate{}, domainErrors.ErrTemplateNotFound.WithContext("detail", id)
}

// readStructure loads the template body from path, or from the editor when
// path is empty.
func (f *TemplatesCommandFactory) readStructure(path, current string, t *i18n.Translations) (string, error) {
	if path == "" {
		return f.edit(current, t.GetMessage("templates.editor_failed", 0, nil))
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", domainErrors.NewAppError(domainErrors.TypeInput, "Failed to read template file", err)
	}
	return strings.TrimRight(string(data), "\n"), nil
}
