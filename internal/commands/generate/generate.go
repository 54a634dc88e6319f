package generate

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/thomas-vilte/prbuddy/internal/commands/completion_helper"
	cfg "github.com/thomas-vilte/prbuddy/internal/config"
	domainErrors "github.com/thomas-vilte/prbuddy/internal/errors"
	"github.com/thomas-vilte/prbuddy/internal/i18n"
	"github.com/thomas-vilte/prbuddy/internal/logger"
	"github.com/thomas-vilte/prbuddy/internal/models"
	"github.com/thomas-vilte/prbuddy/internal/services"
	"github.com/thomas-vilte/prbuddy/internal/ui"
	"github.com/urfave/cli/v3"
)

// Generator is the pipeline behind generate.
type Generator interface {
	GenerateDescription(ctx context.Context, rawURL string, gs models.GeneratorSettings) (models.GenerationResult, error)
	UpdatePRDescription(ctx context.Context, rawURL, description, title string) error
}

// GeneratorProvider returns a Generator on demand
type GeneratorProvider func(ctx context.Context) (Generator, error)

// PreferenceStore remembers generator choices between runs.
type PreferenceStore interface {
	Preferences(ctx context.Context) (models.Preferences, error)
	SavePreferences(ctx context.Context, p models.Preferences) error
	DevMode(ctx context.Context) (bool, string, error)
}

// BranchLocator finds the open PR of the branch checked out around dir.
type BranchLocator interface {
	PRURLForBranch(ctx context.Context, dir string) (string, error)
}

// EditFunc lets the user edit text, normally through $EDITOR.
type EditFunc func(initial, errMsg string) (string, error)

type GenerateCommandFactory struct {
	provider GeneratorProvider
	prefs    PreferenceStore
	edit     EditFunc
	branches BranchLocator
}

func NewGenerateCommandFactory(provider GeneratorProvider, prefs PreferenceStore) *GenerateCommandFactory {
	return &GenerateCommandFactory{
		provider: provider,
		prefs:    prefs,
		edit:     ui.EditText,
	}
}

// WithBranchLookup lets generate fall back to the PR of the current branch
// when no URL is given.
func (f *GenerateCommandFactory) WithBranchLookup(l BranchLocator) *GenerateCommandFactory {
	f.branches = l
	return f
}

func (f *GenerateCommandFactory) CreateCommand(t *i18n.Translations, _ *cfg.Config) *cli.Command {
	return &cli.Command{
		Name:      "generate",
		Aliases:   []string{"g"},
		Usage:     t.GetMessage("generate.usage", 0, nil),
		ArgsUsage: "[pr-url]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "url",
				Aliases: []string{"u"},
				Usage:   t.GetMessage("generate.url_usage", 0, nil),
			},
			&cli.StringFlag{
				Name:    "template",
				Aliases: []string{"T"},
				Usage:   t.GetMessage("generate.template_usage", 0, nil),
			},
			&cli.StringFlag{
				Name:  "tone",
				Usage: t.GetMessage("generate.tone_usage", 0, nil),
			},
			&cli.StringFlag{
				Name:    "context",
				Aliases: []string{"c"},
				Usage:   t.GetMessage("generate.context_usage", 0, nil),
			},
			&cli.BoolFlag{
				Name:  "tickets",
				Usage: t.GetMessage("generate.tickets_usage", 0, nil),
			},
			&cli.BoolFlag{
				Name:  "title",
				Usage: t.GetMessage("generate.title_usage", 0, nil),
			},
			&cli.StringFlag{
				Name:  "title-context",
				Usage: t.GetMessage("generate.title_context_usage", 0, nil),
			},
			&cli.BoolFlag{
				Name:  "update",
				Usage: t.GetMessage("generate.update_usage", 0, nil),
			},
			&cli.BoolFlag{
				Name:    "interactive",
				Aliases: []string{"i"},
				Usage:   t.GetMessage("generate.interactive_usage", 0, nil),
			},
			&cli.StringFlag{
				Name:    "out",
				Aliases: []string{"o"},
				Usage:   t.GetMessage("generate.out_usage", 0, nil),
			},
		},
		ShellComplete: completion_helper.DefaultFlagComplete,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			log := logger.FromContext(ctx)
			start := time.Now()

			prefs, err := f.prefs.Preferences(ctx)
			if err != nil {
				return err
			}
			gs, err := applyFlags(cmd, prefs)
			if err != nil {
				return err
			}
			if err := f.prefs.SavePreferences(ctx, models.Preferences(gs)); err != nil {
				log.Warn("failed to save preferences", "error", err)
			}

			rawURL, err := f.resolveURL(ctx, cmd)
			if err != nil {
				return err
			}

			gen, err := f.provider(ctx)
			if err != nil {
				return fmt.Errorf("%s: %w", t.GetMessage("error.generator_creation", 0, nil), err)
			}

			log.Info("executing generate command",
				"url", rawURL,
				"template", gs.TemplateID,
				"tone", gs.Tone,
				"with_title", gs.GenerateTitle)

			session := services.NewSession(gen)
			res, err := generateWithSpinner(ctx, t, func(ctx context.Context) (models.GenerationResult, error) {
				return session.Generate(ctx, rawURL, gs)
			})
			if err != nil {
				log.Error("generation failed",
					"error", err,
					"duration_ms", time.Since(start).Milliseconds())
				return err
			}
			log.Info("description generated", "duration_ms", time.Since(start).Milliseconds())

			w := cmd.Root().Writer
			if out := cmd.String("out"); out != "" {
				if err := os.WriteFile(out, []byte(res.Description+"\n"), 0644); err != nil {
					return domainErrors.NewAppError(domainErrors.TypeInternal, "Failed to write output file", err)
				}
				ui.PrintSuccess(w, t.GetMessage("generate.saved_to", 0, map[string]interface{}{"Path": out}))
			} else {
				ui.PrintResult(w, res, t)
			}

			if cmd.Bool("interactive") {
				return f.runInteractive(ctx, cmd, t, gen, session)
			}
			if cmd.Bool("update") {
				return updatePR(ctx, cmd, t, gen, rawURL, res)
			}
			return nil
		},
	}
}

// applyFlags overrides the remembered preferences with the flags given.
func applyFlags(cmd *cli.Command, prefs models.Preferences) (models.GeneratorSettings, error) {
	gs := prefs.Settings()
	if cmd.IsSet("template") {
		gs.TemplateID = cmd.String("template")
	}
	if cmd.IsSet("tone") {
		tone := models.Tone(strings.ToLower(cmd.String("tone")))
		if !slices.Contains(models.Tones(), tone) {
			return gs, domainErrors.NewAppError(domainErrors.TypeInput, "Unknown tone", nil).
				WithContext("detail", string(tone)).
				WithSuggestion("Use one of: professional, casual, concise, auto")
		}
		gs.Tone = tone
	}
	if cmd.IsSet("context") {
		gs.Context = cmd.String("context")
	}
	if cmd.IsSet("tickets") {
		gs.IncludeTickets = cmd.Bool("tickets")
	}
	if cmd.IsSet("title") {
		gs.GenerateTitle = cmd.Bool("title")
	}
	if cmd.IsSet("title-context") {
		gs.TitleContext = cmd.String("title-context")
	}
	return gs, nil
}

// resolveURL takes --url, then the first argument, then the dev PR URL when
// dev mode is on, then the open PR of the local branch.
func (f *GenerateCommandFactory) resolveURL(ctx context.Context, cmd *cli.Command) (string, error) {
	if u := cmd.String("url"); u != "" {
		return u, nil
	}
	if u := cmd.Args().First(); u != "" {
		return u, nil
	}
	enabled, devURL, err := f.prefs.DevMode(ctx)
	if err != nil {
		return "", err
	}
	if enabled && devURL != "" {
		logger.Debug(ctx, "using dev PR URL", "url", devURL)
		return devURL, nil
	}
	if f.branches == nil {
		return "", domainErrors.ErrInvalidPRURL
	}

	dir, err := os.Getwd()
	if err != nil {
		return "", domainErrors.ErrInvalidPRURL
	}
	u, err := f.branches.PRURLForBranch(ctx, dir)
	if errors.Is(err, domainErrors.ErrGitRepository) {
		logger.Debug(ctx, "no PR URL and no usable git repository", "error", err)
		return "", domainErrors.ErrInvalidPRURL
	}
	if err != nil {
		return "", err
	}
	logger.Debug(ctx, "using PR of the current branch", "url", u)
	return u, nil
}

func generateWithSpinner(ctx context.Context, t *i18n.Translations, fn func(context.Context) (models.GenerationResult, error)) (models.GenerationResult, error) {
	spinner := ui.NewSmartSpinner(t.GetMessage("generating_description", 0, nil))
	spinner.Start()
	res, err := fn(ctx)
	if err != nil {
		spinner.Error(t.GetMessage("generate.failed", 0, nil))
		return res, err
	}
	spinner.Success(t.GetMessage("generate.done", 0, nil))
	return res, nil
}

func updatePR(ctx context.Context, cmd *cli.Command, t *i18n.Translations, gen Generator, rawURL string, res models.GenerationResult) error {
	spinner := ui.NewSmartSpinner(t.GetMessage("update.updating", 0, nil))
	spinner.Start()
	if err := gen.UpdatePRDescription(ctx, rawURL, res.Description, res.Title); err != nil {
		spinner.Error(t.GetMessage("update.failed", 0, nil))
		return err
	}
	spinner.Stop()
	ui.PrintSuccess(cmd.Root().Writer, t.GetMessage("update.success", 0, map[string]interface{}{
		"PR": res.PRDetails.Path(),
	}))
	return nil
}

// runInteractive loops over the result view: update the PR, regenerate,
// edit the text, or go back and leave without updating.
func (f *GenerateCommandFactory) runInteractive(ctx context.Context, cmd *cli.Command, t *i18n.Translations, gen Generator, session *services.Session) error {
	r := bufio.NewReader(cmd.Root().Reader)
	w := cmd.Root().Writer
	options := []string{
		t.GetMessage("interactive.update", 0, nil),
		t.GetMessage("interactive.regenerate", 0, nil),
		t.GetMessage("interactive.edit", 0, nil),
		t.GetMessage("interactive.back", 0, nil),
	}

	for {
		state := session.State()
		choice, err := ui.AskChoice(r, w, t.GetMessage("interactive.question", 0, nil), options)
		if err != nil {
			// closed input leaves the result unapplied
			session.Back()
			return nil
		}
		switch choice {
		case 0:
			return updatePR(ctx, cmd, t, gen, state.URL, state.Result)
		case 1:
			res, err := generateWithSpinner(ctx, t, session.Regenerate)
			if err != nil {
				// the previous result stays usable
				ui.HandleAppError(err, t)
				continue
			}
			ui.PrintResult(w, res, t)
		case 2:
			edited, err := f.edit(state.Result.Description, t.GetMessage("interactive.edit_failed", 0, nil))
			if err != nil {
				ui.PrintError(w, err.Error())
				continue
			}
			session.EditDescription(edited)
			ui.PrintResult(w, session.State().Result, t)
		case 3:
			session.Back()
			ui.PrintInfo(t.GetMessage("interactive.discarded", 0, nil))
			return nil
		default:
			ui.PrintWarning(t.GetMessage("interactive.invalid_choice", 0, nil))
		}
	}
}
