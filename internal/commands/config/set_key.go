package config

import (
	"bufio"
	"context"
	"fmt"
	"slices"
	"strings"

	domainErrors "github.com/thomas-vilte/prbuddy/internal/errors"
	"github.com/thomas-vilte/prbuddy/internal/i18n"
	"github.com/thomas-vilte/prbuddy/internal/settings"
	"github.com/thomas-vilte/prbuddy/internal/ui"
	"github.com/urfave/cli/v3"
)

func (c *ConfigCommandFactory) newSetKeyCommand(t *i18n.Translations) *cli.Command {
	return &cli.Command{
		Name:      "set-key",
		Usage:     t.GetMessage("config.set_key_usage", 0, nil),
		ArgsUsage: "<" + strings.Join(settings.CredentialNames(), "|") + "> [value]",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			name := strings.ToLower(cmd.Args().First())
			if !slices.Contains(settings.CredentialNames(), name) {
				return domainErrors.ErrConfigInvalid.WithContext("detail", fmt.Sprintf("unknown credential %q", name))
			}

			// reading from stdin keeps the key out of shell history
			value := cmd.Args().Get(1)
			if cmd.Args().Len() < 2 {
				_, _ = fmt.Fprint(cmd.Root().Writer, t.GetMessage("config.prompt_key", 0, map[string]interface{}{"Name": name}))
				line, err := bufio.NewReader(cmd.Root().Reader).ReadString('\n')
				if err != nil && line == "" {
					return domainErrors.NewAppError(domainErrors.TypeInput, "Failed to read key", err)
				}
				value = line
			}
			value = strings.TrimSpace(value)

			if err := c.settings.SetCredential(ctx, name, value); err != nil {
				return err
			}

			msg := "config.key_saved"
			if value == "" {
				msg = "config.key_removed"
			}
			ui.PrintSuccess(cmd.Root().Writer, t.GetMessage(msg, 0, map[string]interface{}{"Name": name}))
			return nil
		},
	}
}
