package config

import (
	"context"

	"github.com/thomas-vilte/prbuddy/internal/i18n"
	"github.com/thomas-vilte/prbuddy/internal/ui"
	"github.com/urfave/cli/v3"
)

func (c *ConfigCommandFactory) newDevCommand(t *i18n.Translations) *cli.Command {
	return &cli.Command{
		Name:      "dev",
		Usage:     t.GetMessage("config.dev_usage", 0, nil),
		ArgsUsage: "[pr-url]",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "off",
				Usage: t.GetMessage("config.dev_off_usage", 0, nil),
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.Bool("off") {
				_, url, err := c.settings.DevMode(ctx)
				if err != nil {
					return err
				}
				if err := c.settings.SetDevMode(ctx, false, url); err != nil {
					return err
				}
				ui.PrintSuccess(cmd.Root().Writer, t.GetMessage("config.dev_disabled", 0, nil))
				return nil
			}

			url := cmd.Args().First()
			if url == "" {
				var err error
				if _, url, err = c.settings.DevMode(ctx); err != nil {
					return err
				}
			}
			if err := c.settings.SetDevMode(ctx, true, url); err != nil {
				return err
			}
			ui.PrintSuccess(cmd.Root().Writer, t.GetMessage("config.dev_enabled", 0, map[string]interface{}{"URL": url}))
			return nil
		},
	}
}
