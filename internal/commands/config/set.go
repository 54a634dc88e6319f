package config

import (
	"context"
	"fmt"
	"strings"

	"github.com/thomas-vilte/prbuddy/internal/config"
	domainErrors "github.com/thomas-vilte/prbuddy/internal/errors"
	"github.com/thomas-vilte/prbuddy/internal/i18n"
	"github.com/thomas-vilte/prbuddy/internal/ui"
	"github.com/urfave/cli/v3"
)

func (c *ConfigCommandFactory) newSetCommand(t *i18n.Translations, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:      "set",
		Usage:     t.GetMessage("config.set_usage", 0, nil),
		ArgsUsage: "<key> <value>",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.Args().Len() < 2 {
				return domainErrors.ErrConfigInvalid.WithContext("detail", t.GetMessage("config.set_error_args", 0, nil))
			}
			key := strings.ToLower(cmd.Args().Get(0))
			value := cmd.Args().Get(1)

			// validated by SaveConfig, restored if it refuses
			previous := *cfg
			if err := applySetting(cfg, key, value); err != nil {
				return err
			}
			if err := config.SaveConfig(cfg); err != nil {
				*cfg = previous
				return err
			}

			ui.PrintSuccess(cmd.Root().Writer, t.GetMessage("config.set_success", 0, map[string]interface{}{
				"Key":   key,
				"Value": value,
			}))
			return nil
		},
	}
}

func applySetting(cfg *config.Config, key, value string) error {
	switch key {
	case "lang", "language":
		cfg.Language = strings.ToLower(value)
	case "log-level", "log_level":
		cfg.LogLevel = strings.ToLower(value)
	case "log-format", "log_format":
		cfg.LogFormat = strings.ToLower(value)
	case "storage", "storage-driver":
		cfg.Storage.Driver = strings.ToLower(value)
	case "storage-path":
		cfg.Storage.Path = value
	case "github-api-url":
		cfg.GitHub.APIURL = value
	case "openrouter-url":
		cfg.OpenRouter.BaseURL = value
	case "openrouter-referer":
		cfg.OpenRouter.Referer = value
	case "openrouter-title":
		cfg.OpenRouter.Title = value
	case "server-addr", "addr":
		cfg.Server.Addr = value
	case "server-origins":
		cfg.Server.AllowedOrigins = splitList(value)
	case "server-token":
		cfg.Server.Token = strings.TrimSpace(value)
	default:
		return domainErrors.ErrConfigInvalid.WithContext("detail", fmt.Sprintf("unknown configuration key %q", key))
	}
	return nil
}

// splitList reads a comma separated value, dropping empty entries.
func splitList(value string) []string {
	list := []string{}
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			list = append(list, item)
		}
	}
	return list
}
