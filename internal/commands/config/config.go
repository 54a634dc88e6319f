package config

import (
	"context"

	"github.com/thomas-vilte/prbuddy/internal/config"
	"github.com/thomas-vilte/prbuddy/internal/i18n"
	"github.com/thomas-vilte/prbuddy/internal/models"
	"github.com/urfave/cli/v3"
)

// SettingsStore is the part of the settings manager config needs.
type SettingsStore interface {
	Credentials(ctx context.Context) (models.Credentials, error)
	SetCredential(ctx context.Context, name, value string) error
	DevMode(ctx context.Context) (bool, string, error)
	SetDevMode(ctx context.Context, enabled bool, url string) error
	ActiveModel(ctx context.Context) (models.AIModel, error)
}

type ConfigCommandFactory struct {
	settings SettingsStore
}

func NewConfigCommandFactory(settings SettingsStore) *ConfigCommandFactory {
	return &ConfigCommandFactory{settings: settings}
}

func (c *ConfigCommandFactory) CreateCommand(t *i18n.Translations, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: t.GetMessage("config.usage", 0, nil),
		Commands: []*cli.Command{
			c.newInitCommand(t, cfg),
			c.newShowCommand(t, cfg),
			c.newSetCommand(t, cfg),
			c.newSetKeyCommand(t),
			c.newDevCommand(t),
			c.newEditCommand(t, cfg),
		},
	}
}
