package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/thomas-vilte/prbuddy/internal/ai"
	domainErrors "github.com/thomas-vilte/prbuddy/internal/errors"
	"github.com/thomas-vilte/prbuddy/internal/git"
	"github.com/thomas-vilte/prbuddy/internal/logger"
	"github.com/thomas-vilte/prbuddy/internal/models"
	"github.com/thomas-vilte/prbuddy/internal/providers"
	"github.com/thomas-vilte/prbuddy/internal/settings"
	"github.com/thomas-vilte/prbuddy/internal/vcs"
	"golang.org/x/sync/errgroup"
)

// snapshotSource is the part of settings.Manager the generator reads.
type snapshotSource interface {
	Snapshot(ctx context.Context) (settings.Snapshot, error)
}

// VCSFactory builds a PR client authenticated with token.
type VCSFactory func(token string) (vcs.PRClient, error)

// CompleterFactory builds the completion client serving model.
type CompleterFactory func(ctx context.Context, model models.AIModel, creds models.Credentials) (ai.Completer, error)

// BranchResolver reads the checked out branch of the repository around dir.
type BranchResolver func(dir string) (git.Branch, error)

type GeneratorService struct {
	settings      snapshotSource
	newVCS        VCSFactory
	newCompleter  CompleterFactory
	currentBranch BranchResolver
}

type GeneratorOption func(*GeneratorService)

func WithSettings(s snapshotSource) GeneratorOption {
	return func(g *GeneratorService) {
		g.settings = s
	}
}

func WithVCSFactory(f VCSFactory) GeneratorOption {
	return func(g *GeneratorService) {
		g.newVCS = f
	}
}

func WithCompleterFactory(f CompleterFactory) GeneratorOption {
	return func(g *GeneratorService) {
		g.newCompleter = f
	}
}

func WithBranchResolver(r BranchResolver) GeneratorOption {
	return func(g *GeneratorService) {
		g.currentBranch = r
	}
}

func NewGeneratorService(opts ...GeneratorOption) *GeneratorService {
	g := &GeneratorService{
		newVCS: func(token string) (vcs.PRClient, error) {
			return providers.NewVCSClient(token, nil)
		},
		newCompleter: func(ctx context.Context, model models.AIModel, creds models.Credentials) (ai.Completer, error) {
			return providers.NewCompleter(ctx, model, creds, nil)
		},
		currentBranch: git.CurrentBranch,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// GenerateDescription fetches the PR behind rawURL and asks the active model
// for a description, plus a title when gs.GenerateTitle is set. A failed title
// leaves the title empty; a failed description fails the call.
func (g *GeneratorService) GenerateDescription(ctx context.Context, rawURL string, gs models.GeneratorSettings) (models.GenerationResult, error) {
	log := logger.FromContext(ctx)

	snap, err := g.settings.Snapshot(ctx)
	if err != nil {
		return models.GenerationResult{}, err
	}
	model := snap.ActiveModel()
	if snap.Credentials.GitHubToken == "" {
		return models.GenerationResult{}, domainErrors.ErrCredentialsMissing
	}
	if !providers.RequiredKeyPresent(model, snap.Credentials) {
		if model.ProviderOrDefault() == models.ProviderGemini {
			return models.GenerationResult{}, domainErrors.ErrGeminiKeyMissing
		}
		return models.GenerationResult{}, domainErrors.ErrCredentialsMissing
	}

	pr, err := vcs.ParsePRURL(rawURL)
	if err != nil {
		return models.GenerationResult{}, err
	}
	log = log.With("pr", pr.Path(), "model", model.ModelID)
	ctx = logger.WithLogger(ctx, log)

	client, err := g.newVCS(snap.Credentials.GitHubToken)
	if err != nil {
		return models.GenerationResult{}, err
	}
	completer, err := g.newCompleter(ctx, model, snap.Credentials)
	if err != nil {
		return models.GenerationResult{}, err
	}

	log.Info("fetching PR data")
	data, err := client.FetchPR(ctx, pr)
	if err != nil {
		log.Error("failed to fetch PR", "error", err)
		return models.GenerationResult{}, err
	}
	log.Debug("PR data fetched",
		"diff_size", len(data.Diff),
		"truncated", data.Truncated)

	tmpl := snap.Template(gs.TemplateID)
	descPrompt, err := ai.BuildDescriptionPrompt(data.Diff, data.Metadata, gs, tmpl)
	if err != nil {
		return models.GenerationResult{}, err
	}
	var titlePrompt ai.Prompt
	if gs.GenerateTitle {
		if titlePrompt, err = ai.BuildTitlePrompt(data.Diff, data.Metadata, gs); err != nil {
			return models.GenerationResult{}, err
		}
	}

	var description, title string
	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		out, err := completer.Complete(egCtx, model.ModelID, descPrompt)
		if err != nil {
			return err
		}
		description = out
		return nil
	})
	if gs.GenerateTitle {
		// GenerateTitle never errors, so a title failure cannot cancel egCtx.
		eg.Go(func() error {
			title = ai.GenerateTitle(egCtx, completer, model.ModelID, titlePrompt)
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		log.Error("description generation failed", "error", err)
		return models.GenerationResult{}, err
	}

	log.Info("description generated",
		"template", tmpl.ID,
		"has_title", title != "")

	return models.GenerationResult{
		Description: description,
		Title:       title,
		PRDetails:   pr,
	}, nil
}

// UpdatePRDescription writes description (and title, when non-empty) to the PR.
func (g *GeneratorService) UpdatePRDescription(ctx context.Context, rawURL, description, title string) error {
	log := logger.FromContext(ctx)

	snap, err := g.settings.Snapshot(ctx)
	if err != nil {
		return err
	}
	if snap.Credentials.GitHubToken == "" {
		return domainErrors.ErrGitHubTokenMissing
	}
	pr, err := vcs.ParsePRURL(rawURL)
	if err != nil {
		return err
	}
	if strings.TrimSpace(description) == "" {
		return domainErrors.ErrEmptyDescription
	}

	client, err := g.newVCS(snap.Credentials.GitHubToken)
	if err != nil {
		return err
	}
	if err := client.UpdatePR(ctx, pr, description, title); err != nil {
		log.Error("failed to update PR", "pr", pr.Path(), "error", err)
		return err
	}
	log.Info("PR description updated", "pr", pr.Path(), "with_title", title != "")
	return nil
}

// PRURLForBranch returns the URL of the open PR for the branch checked out in
// the repository around dir.
func (g *GeneratorService) PRURLForBranch(ctx context.Context, dir string) (string, error) {
	branch, err := g.currentBranch(dir)
	if err != nil {
		return "", err
	}

	snap, err := g.settings.Snapshot(ctx)
	if err != nil {
		return "", err
	}
	if snap.Credentials.GitHubToken == "" {
		return "", domainErrors.ErrGitHubTokenMissing
	}

	client, err := g.newVCS(snap.Credentials.GitHubToken)
	if err != nil {
		return "", err
	}
	pr, err := client.FindOpenPR(ctx, branch.Owner, branch.Repo, branch.Name)
	if err != nil {
		return "", err
	}

	logger.Debug(ctx, "resolved PR from local branch", "branch", branch.Name, "pr", pr.Path())
	return fmt.Sprintf("https://github.com/%s/%s/pull/%s", pr.Owner, pr.Repo, pr.Number), nil
}
