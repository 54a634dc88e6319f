package config

import (
	"context"
	"strings"

	"github.com/thomas-vilte/prbuddy/internal/config"
	"github.com/thomas-vilte/prbuddy/internal/i18n"
	"github.com/thomas-vilte/prbuddy/internal/ui"
	"github.com/urfave/cli/v3"
)

func (c *ConfigCommandFactory) newShowCommand(t *i18n.Translations, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "show",
		Usage: t.GetMessage("config.show_usage", 0, nil),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			w := cmd.Root().Writer

			creds, err := c.settings.Credentials(ctx)
			if err != nil {
				return err
			}
			devMode, devURL, err := c.settings.DevMode(ctx)
			if err != nil {
				return err
			}
			model, err := c.settings.ActiveModel(ctx)
			if err != nil {
				return err
			}

			ui.PrintSectionBanner(w, t.GetMessage("config.section_general", 0, nil))
			ui.PrintKeyValue(w, t.GetMessage("config.label_path", 0, nil), cfg.PathFile)
			ui.PrintKeyValue(w, t.GetMessage("config.label_language", 0, nil), cfg.Language)
			ui.PrintKeyValue(w, t.GetMessage("config.label_log", 0, nil), cfg.LogLevel+" ("+cfg.LogFormat+")")
			ui.PrintKeyValue(w, t.GetMessage("config.label_storage", 0, nil), cfg.Storage.Driver+" "+cfg.StoragePath())
			ui.PrintKeyValue(w, t.GetMessage("config.label_openrouter", 0, nil), cfg.OpenRouter.BaseURL)
			if cfg.GitHub.APIURL != "" {
				ui.PrintKeyValue(w, t.GetMessage("config.label_github", 0, nil), cfg.GitHub.APIURL)
			}
			ui.PrintKeyValue(w, t.GetMessage("config.label_server", 0, nil), cfg.Server.Addr)
			ui.PrintKeyValue(w, t.GetMessage("config.label_server_origins", 0, nil), strings.Join(cfg.Server.AllowedOrigins, ", "))
			ui.PrintKeyValue(w, t.GetMessage("config.label_server_token", 0, nil), maskKey(cfg.Server.Token, t.GetMessage("config.not_set", 0, nil)))

			ui.PrintSectionBanner(w, t.GetMessage("config.section_credentials", 0, nil))
			notSet := t.GetMessage("config.not_set", 0, nil)
			ui.PrintKeyValue(w, "github", maskKey(creds.GitHubToken, notSet))
			ui.PrintKeyValue(w, "openrouter", maskKey(creds.OpenRouterKey, notSet))
			ui.PrintKeyValue(w, "gemini", maskKey(creds.GeminiKey, notSet))

			ui.PrintSectionBanner(w, t.GetMessage("config.section_generator", 0, nil))
			ui.PrintKeyValue(w, t.GetMessage("config.label_model", 0, nil), model.Name+" ("+model.ModelID+")")
			dev := t.GetMessage("config.disabled", 0, nil)
			if devMode {
				dev = devURL
			}
			ui.PrintKeyValue(w, t.GetMessage("config.label_dev_mode", 0, nil), dev)
			return nil
		},
	}
}

// maskKey keeps the first and last four characters of long keys.
func maskKey(key, empty string) string {
	if key == "" {
		return empty
	}
	if len(key) <= 12 {
		return strings.Repeat("*", 8)
	}
	return key[:4] + strings.Repeat("*", 8) + key[len(key)-4:]
}
