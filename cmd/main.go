package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/thomas-vilte/prbuddy/internal/ai"
	"github.com/thomas-vilte/prbuddy/internal/commands/completion"
	"github.com/thomas-vilte/prbuddy/internal/commands/config"
	"github.com/thomas-vilte/prbuddy/internal/commands/generate"
	"github.com/thomas-vilte/prbuddy/internal/commands/insert"
	"github.com/thomas-vilte/prbuddy/internal/commands/models"
	"github.com/thomas-vilte/prbuddy/internal/commands/registry"
	"github.com/thomas-vilte/prbuddy/internal/commands/serve"
	"github.com/thomas-vilte/prbuddy/internal/commands/templates"
	"github.com/thomas-vilte/prbuddy/internal/commands/update"
	cfg "github.com/thomas-vilte/prbuddy/internal/config"
	"github.com/thomas-vilte/prbuddy/internal/i18n"
	"github.com/thomas-vilte/prbuddy/internal/logger"
	domainModels "github.com/thomas-vilte/prbuddy/internal/models"
	"github.com/thomas-vilte/prbuddy/internal/providers"
	"github.com/thomas-vilte/prbuddy/internal/services"
	"github.com/thomas-vilte/prbuddy/internal/settings"
	"github.com/thomas-vilte/prbuddy/internal/store"
	"github.com/thomas-vilte/prbuddy/internal/ui"
	"github.com/thomas-vilte/prbuddy/internal/vcs"
	"github.com/thomas-vilte/prbuddy/internal/version"
	"github.com/urfave/cli/v3"
)

func main() {
	// a missing .env is fine, it only helps during development
	_ = godotenv.Load()

	app, translations, closeStore, err := initializeApp()
	if err != nil {
		log.Fatalf("Error starting prbuddy: %v", err)
	}

	err = app.Run(context.Background(), os.Args)
	if cerr := closeStore(); cerr != nil {
		slog.Warn("failed to close settings store", "error", cerr)
	}
	if err != nil {
		ui.HandleAppError(err, translations)
		os.Exit(1)
	}
}

func initializeApp() (*cli.Command, *i18n.Translations, func() error, error) {
	cfgApp, err := cfg.LoadConfig(os.Getenv("PRBUDDY_CONFIG"))
	if err != nil {
		return nil, nil, nil, err
	}
	slog.SetDefault(logger.New(os.Stderr, logger.Options{
		Level:  logger.ParseLevel(cfgApp.LogLevel),
		Format: logger.Format(cfgApp.LogFormat),
	}))

	translations, err := i18n.NewTranslations(cfg.GetLocaleConfig(cfgApp.Language), "")
	if err != nil {
		return nil, nil, nil, fmt.Errorf("error loading translations: %w", err)
	}

	settingsStore, closeStore, err := openStore(cfgApp)
	if err != nil {
		return nil, nil, nil, err
	}
	manager := settings.NewManager(settingsStore)

	generator := services.NewGeneratorService(
		services.WithSettings(manager),
		services.WithVCSFactory(func(token string) (vcs.PRClient, error) {
			return providers.NewVCSClient(token, cfgApp)
		}),
		services.WithCompleterFactory(func(ctx context.Context, model domainModels.AIModel, creds domainModels.Credentials) (ai.Completer, error) {
			return providers.NewCompleter(ctx, model, creds, cfgApp)
		}),
	)

	registerCommand := registry.NewRegistry(cfgApp, translations)
	factories := []struct {
		name    string
		factory registry.CommandFactory
	}{
		{"generate", generate.NewGenerateCommandFactory(func(context.Context) (generate.Generator, error) {
			return generator, nil
		}, manager).WithBranchLookup(generator)},
		{"update", update.NewUpdateCommandFactory(func(context.Context) (update.PRUpdater, error) {
			return generator, nil
		})},
		{"templates", templates.NewTemplatesCommandFactory(manager)},
		{"models", models.NewModelsCommandFactory(manager)},
		{"config", config.NewConfigCommandFactory(manager)},
		{"insert", insert.NewInsertCommandFactory()},
		{"serve", serve.NewServeCommandFactory(generator)},
	}
	for _, f := range factories {
		if err := registerCommand.Register(f.name, f.factory); err != nil {
			return nil, nil, nil, fmt.Errorf("error registering command '%s': %w", f.name, err)
		}
	}

	commands := registerCommand.CreateCommands()
	commands = append(commands, completion.NewCompletionCommand(translations))

	app := &cli.Command{
		Name:                  "prbuddy",
		Usage:                 translations.GetMessage("app_usage", 0, nil),
		Version:               version.FullVersion(),
		Description:           translations.GetMessage("app_description", 0, nil),
		Commands:              commands,
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "debug",
				Usage: translations.GetMessage("flags.debug", 0, nil),
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   translations.GetMessage("flags.verbose", 0, nil),
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			if cmd.Bool("debug") || cmd.Bool("verbose") {
				logger.Initialize(cmd.Bool("debug"), cmd.Bool("verbose"))
			}
			checker := services.NewVersionChecker(version.FullVersion(), filepath.Dir(cfgApp.PathFile), translations)
			go checker.CheckForUpdates(context.WithoutCancel(ctx))
			return logger.WithLogger(ctx, slog.Default()), nil
		},
	}
	return app, translations, closeStore, nil
}

// openStore opens the settings store selected by storage.driver.
func openStore(c *cfg.Config) (store.Store, func() error, error) {
	path := c.StoragePath()
	if c.Storage.Driver == cfg.StorageSQLite {
		s, err := store.OpenSQLite(path)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	}
	s, err := store.NewFileStore(path)
	if err != nil {
		return nil, nil, err
	}
	return s, func() error { return nil }, nil
}
