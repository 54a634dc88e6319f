package serve

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/thomas-vilte/prbuddy/internal/commands/completion_helper"
	cfg "github.com/thomas-vilte/prbuddy/internal/config"
	"github.com/thomas-vilte/prbuddy/internal/i18n"
	"github.com/thomas-vilte/prbuddy/internal/logger"
	"github.com/thomas-vilte/prbuddy/internal/protocol"
	"github.com/thomas-vilte/prbuddy/internal/server"
	"github.com/thomas-vilte/prbuddy/internal/ui"
	"github.com/urfave/cli/v3"
)

type ServeCommandFactory struct {
	gen protocol.Generator
}

func NewServeCommandFactory(gen protocol.Generator) *ServeCommandFactory {
	return &ServeCommandFactory{gen: gen}
}

// CreateCommand builds serve, which answers the background actions over
// HTTP until interrupted. Only the configured origins may call it, and every
// message must carry the server token, generated on first use.
func (f *ServeCommandFactory) CreateCommand(t *i18n.Translations, config *cfg.Config) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: t.GetMessage("serve.usage", 0, nil),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "addr",
				Usage: t.GetMessage("serve.addr_usage", 0, nil),
				Value: config.Server.Addr,
			},
		},
		ShellComplete: completion_helper.DefaultFlagComplete,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()

			token, err := cfg.EnsureServerToken(config)
			if err != nil {
				return err
			}
			ui.PrintInfo(t.GetMessage("serve.token_hint", 0, map[string]interface{}{"Path": config.PathFile}))

			addr := cmd.String("addr")
			logger.Info(ctx, "starting background server",
				"addr", addr,
				"allowed_origins", config.Server.AllowedOrigins)
			return server.New(addr, protocol.NewBackgroundRouter(f.gen), logger.FromContext(ctx),
				server.WithAllowedOrigins(config.Server.AllowedOrigins...),
				server.WithToken(token),
			).Run(ctx)
		},
	}
}
