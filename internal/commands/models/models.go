package models

import (
	"context"
	"fmt"
	"slices"

	"github.com/thomas-vilte/prbuddy/internal/commands/completion_helper"
	"github.com/thomas-vilte/prbuddy/internal/config"
	domainErrors "github.com/thomas-vilte/prbuddy/internal/errors"
	"github.com/thomas-vilte/prbuddy/internal/i18n"
	"github.com/thomas-vilte/prbuddy/internal/models"
	"github.com/thomas-vilte/prbuddy/internal/ui"
	"github.com/urfave/cli/v3"
)

// ModelStore manages the configured AI models.
type ModelStore interface {
	ListModels(ctx context.Context) ([]models.AIModel, error)
	AddModel(ctx context.Context, name, modelID string, provider models.Provider) (models.AIModel, error)
	UpdateModel(ctx context.Context, mdl models.AIModel) error
	DeleteModel(ctx context.Context, id string) error
	SetActiveModel(ctx context.Context, id string) error
}

type ModelsCommandFactory struct {
	store ModelStore
}

func NewModelsCommandFactory(store ModelStore) *ModelsCommandFactory {
	return &ModelsCommandFactory{store: store}
}

func (f *ModelsCommandFactory) CreateCommand(t *i18n.Translations, _ *config.Config) *cli.Command {
	return &cli.Command{
		Name:    "models",
		Aliases: []string{"model", "m"},
		Usage:   t.GetMessage("models.usage", 0, nil),
		Commands: []*cli.Command{
			f.newListCommand(t),
			f.newAddCommand(t),
			f.newEditCommand(t),
			f.newDeleteCommand(t),
			f.newUseCommand(t),
		},
	}
}

func providerFlag(t *i18n.Translations) *cli.StringFlag {
	return &cli.StringFlag{
		Name:  "provider",
		Usage: t.GetMessage("models.provider_usage", 0, nil),
		Value: string(models.ProviderOpenRouter),
	}
}

func (f *ModelsCommandFactory) newListCommand(t *i18n.Translations) *cli.Command {
	return &cli.Command{
		Name:    "list",
		Aliases: []string{"ls", "l"},
		Usage:   t.GetMessage("models.list_usage", 0, nil),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			list, err := f.store.ListModels(ctx)
			if err != nil {
				return err
			}
			w := cmd.Root().Writer
			ui.PrintSectionBanner(w, t.GetMessage("models.list_banner", 0, nil))
			for _, mdl := range list {
				marker := " "
				if mdl.IsActive {
					marker = "*"
				}
				ui.PrintKeyValue(w, marker+" "+mdl.ID, fmt.Sprintf("%s (%s, %s)", mdl.Name, mdl.ModelID, mdl.ProviderOrDefault()))
			}
			return nil
		},
	}
}

func (f *ModelsCommandFactory) newAddCommand(t *i18n.Translations) *cli.Command {
	return &cli.Command{
		Name:  "add",
		Usage: t.GetMessage("models.add_usage", 0, nil),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "name",
				Usage:    t.GetMessage("models.name_usage", 0, nil),
				Required: true,
			},
			&cli.StringFlag{
				Name:     "model-id",
				Usage:    t.GetMessage("models.model_id_usage", 0, nil),
				Required: true,
			},
			providerFlag(t),
			&cli.BoolFlag{
				Name:  "use",
				Usage: t.GetMessage("models.use_flag_usage", 0, nil),
			},
		},
		ShellComplete: completion_helper.DefaultFlagComplete,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			provider, err := parseProvider(cmd.String("provider"))
			if err != nil {
				return err
			}
			mdl, err := f.store.AddModel(ctx, cmd.String("name"), cmd.String("model-id"), provider)
			if err != nil {
				return err
			}
			if cmd.Bool("use") && !mdl.IsActive {
				if err := f.store.SetActiveModel(ctx, mdl.ID); err != nil {
					return err
				}
			}
			ui.PrintSuccess(cmd.Root().Writer, t.GetMessage("models.added", 0, map[string]interface{}{
				"Name": mdl.Name,
				"ID":   mdl.ID,
			}))
			return nil
		},
	}
}

func (f *ModelsCommandFactory) newEditCommand(t *i18n.Translations) *cli.Command {
	return &cli.Command{
		Name:      "edit",
		Usage:     t.GetMessage("models.edit_usage", 0, nil),
		ArgsUsage: "<id>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "name",
				Usage: t.GetMessage("models.name_usage", 0, nil),
			},
			&cli.StringFlag{
				Name:  "model-id",
				Usage: t.GetMessage("models.model_id_usage", 0, nil),
			},
			providerFlag(t),
		},
		ShellComplete: completion_helper.DefaultFlagComplete,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			mdl, err := f.find(ctx, cmd.Args().First())
			if err != nil {
				return err
			}
			if cmd.IsSet("name") {
				mdl.Name = cmd.String("name")
			}
			if cmd.IsSet("model-id") {
				mdl.ModelID = cmd.String("model-id")
			}
			if cmd.IsSet("provider") {
				if mdl.Provider, err = parseProvider(cmd.String("provider")); err != nil {
					return err
				}
			}
			if err := f.store.UpdateModel(ctx, mdl); err != nil {
				return err
			}
			ui.PrintSuccess(cmd.Root().Writer, t.GetMessage("models.updated", 0, map[string]interface{}{"Name": mdl.Name}))
			return nil
		},
	}
}

func (f *ModelsCommandFactory) newDeleteCommand(t *i18n.Translations) *cli.Command {
	return &cli.Command{
		Name:      "delete",
		Aliases:   []string{"rm"},
		Usage:     t.GetMessage("models.delete_usage", 0, nil),
		ArgsUsage: "<id>",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			mdl, err := f.find(ctx, cmd.Args().First())
			if err != nil {
				return err
			}
			if err := f.store.DeleteModel(ctx, mdl.ID); err != nil {
				return err
			}
			ui.PrintSuccess(cmd.Root().Writer, t.GetMessage("models.deleted", 0, map[string]interface{}{"Name": mdl.Name}))
			return nil
		},
	}
}

func (f *ModelsCommandFactory) newUseCommand(t *i18n.Translations) *cli.Command {
	return &cli.Command{
		Name:      "use",
		Usage:     t.GetMessage("models.use_usage", 0, nil),
		ArgsUsage: "<id>",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			mdl, err := f.find(ctx, cmd.Args().First())
			if err != nil {
				return err
			}
			if err := f.store.SetActiveModel(ctx, mdl.ID); err != nil {
				return err
			}
			ui.PrintSuccess(cmd.Root().Writer, t.GetMessage("models.activated", 0, map[string]interface{}{"Name": mdl.Name}))
			return nil
		},
	}
}

func (f *ModelsCommandFactory) find(ctx context.Context, id string) (models.AIModel, error) {
	list, err := f.store.ListModels(ctx)
	if err != nil {
		return models.AIModel{}, err
	}
	for _, mdl := range list {
		if mdl.ID == id {
			return mdl, nil
		}
	}
	return models.AIModel{}, domainErrors.ErrModelNotFound.WithContext("detail", id)
}

func parseProvider(s string) (models.Provider, error) {
	p := models.Provider(s)
	if !slices.Contains([]models.Provider{models.ProviderOpenRouter, models.ProviderGemini}, p) {
		return "", domainErrors.ErrUnknownProvider.WithContext("detail", s)
	}
	return p, nil
}
