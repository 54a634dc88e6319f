package config

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/thomas-vilte/prbuddy/internal/commands/completion_helper"
	"github.com/thomas-vilte/prbuddy/internal/config"
	"github.com/thomas-vilte/prbuddy/internal/i18n"
	"github.com/thomas-vilte/prbuddy/internal/settings"
	"github.com/thomas-vilte/prbuddy/internal/ui"
	"github.com/urfave/cli/v3"
)

func (c *ConfigCommandFactory) newInitCommand(t *i18n.Translations, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:          "init",
		Usage:         t.GetMessage("config.init_usage", 0, nil),
		ShellComplete: completion_helper.DefaultFlagComplete,
		Action:        c.initConfigAction(cfg, t),
	}
}

func (c *ConfigCommandFactory) initConfigAction(cfg *config.Config, t *i18n.Translations) cli.ActionFunc {
	return func(ctx context.Context, command *cli.Command) error {
		reader := bufio.NewReader(command.Root().Reader)
		w := command.Root().Writer

		ui.PrintSectionBanner(w, t.GetMessage("init.section_welcome", 0, nil))
		_, _ = fmt.Fprintln(w, t.GetMessage("init.welcome", 0, nil))

		if err := configureLanguage(reader, w, cfg, t); err != nil {
			return err
		}
		if err := config.SaveConfig(cfg); err != nil {
			return err
		}

		ui.PrintSectionBanner(w, t.GetMessage("init.section_keys", 0, nil))
		keys := []struct {
			name string
			url  string
		}{
			{settings.CredentialGitHub, "https://github.com/settings/tokens"},
			{settings.CredentialOpenRouter, "https://openrouter.ai/keys"},
			{settings.CredentialGemini, "https://aistudio.google.com/app/apikey"},
		}
		for _, k := range keys {
			if err := c.configureKey(ctx, reader, w, k.name, k.url, t); err != nil {
				return err
			}
		}

		return c.printSummary(ctx, w, cfg, t)
	}
}

func configureLanguage(reader *bufio.Reader, w io.Writer, cfg *config.Config, t *i18n.Translations) error {
	_, _ = fmt.Fprint(w, t.GetMessage("init.prompt_language", 0, map[string]interface{}{"Current": cfg.Language}))

	lang, err := reader.ReadString('\n')
	if err != nil && err != io.EOF {
		return fmt.Errorf("error reading language: %w", err)
	}
	lang = strings.TrimSpace(strings.ToLower(lang))

	if lang != "" {
		if config.IsSupportedLanguage(lang) {
			cfg.Language = lang
		} else {
			ui.PrintWarning(t.GetMessage("init.error_invalid_language", 0, nil))
		}
	}
	return nil
}

// configureKey asks for one credential. A blank answer keeps what is stored.
func (c *ConfigCommandFactory) configureKey(ctx context.Context, reader *bufio.Reader, w io.Writer, name, url string, t *i18n.Translations) error {
	_, _ = fmt.Fprintln(w, t.GetMessage("init.get_key_at", 0, map[string]interface{}{"Name": name, "URL": url}))
	_, _ = fmt.Fprint(w, t.GetMessage("config.prompt_key", 0, map[string]interface{}{"Name": name}))

	key, err := reader.ReadString('\n')
	if err != nil && err != io.EOF {
		return fmt.Errorf("error reading %s key: %w", name, err)
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return nil
	}
	return c.settings.SetCredential(ctx, name, key)
}

func (c *ConfigCommandFactory) printSummary(ctx context.Context, w io.Writer, cfg *config.Config, t *i18n.Translations) error {
	creds, err := c.settings.Credentials(ctx)
	if err != nil {
		return err
	}

	ui.PrintSectionBanner(w, t.GetMessage("init.section_finish", 0, nil))
	ui.PrintKeyValue(w, t.GetMessage("config.label_language", 0, nil), cfg.Language)
	for _, k := range []struct {
		name string
		set  bool
	}{
		{settings.CredentialGitHub, creds.GitHubToken != ""},
		{settings.CredentialOpenRouter, creds.OpenRouterKey != ""},
		{settings.CredentialGemini, creds.GeminiKey != ""},
	} {
		mark := "❌"
		if k.set {
			mark = "✅"
		}
		ui.PrintKeyValue(w, k.name, mark)
	}
	ui.PrintSuccess(w, t.GetMessage("init.saved_ok", 0, nil))
	return nil
}
