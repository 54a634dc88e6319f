package vcs

import (
	"context"

	"github.com/thomas-vilte/prbuddy/internal/models"
)

// PRFetcher reads a pull request's metadata and diff.
type PRFetcher interface {
	// FetchPR returns the metadata and the diff, truncated to a safe prompt size.
	FetchPR(ctx context.Context, pr models.PRDetails) (models.PRData, error)
}

// PRUpdater writes a generated description (and optional title) back to the PR.
type PRUpdater interface {
	// UpdatePR patches the PR body, and the title only when title is non-empty.
	UpdatePR(ctx context.Context, pr models.PRDetails, body, title string) error
}

// PRFinder locates the open pull request of a branch.
type PRFinder interface {
	FindOpenPR(ctx context.Context, owner, repo, branch string) (models.PRDetails, error)
}

// PRClient is implemented by providers that can read, find and update PRs.
type PRClient interface {
	PRFetcher
	PRUpdater
	PRFinder
}
