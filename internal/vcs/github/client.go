package github

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/google/go-github/v80/github"
	domainErrors "github.com/thomas-vilte/prbuddy/internal/errors"
	"github.com/thomas-vilte/prbuddy/internal/logger"
	"github.com/thomas-vilte/prbuddy/internal/models"
	"github.com/thomas-vilte/prbuddy/internal/vcs"
	"golang.org/x/oauth2"
)

var _ vcs.PRClient = (*GitHubClient)(nil)

const (
	// MaxDiffChars is the largest diff, in characters, sent to the model.
	MaxDiffChars = 50000
	// DiffTruncatedMarker is appended to a diff cut at MaxDiffChars.
	DiffTruncatedMarker = "\n...[Diff Truncated - showing first 50k characters]..."
)

type PullRequestsService interface {
	Get(ctx context.Context, owner, repo string, number int) (*github.PullRequest, *github.Response, error)
	GetRaw(ctx context.Context, owner, repo string, number int, opts github.RawOptions) (string, *github.Response, error)
	Edit(ctx context.Context, owner, repo string, number int, pr *github.PullRequest) (*github.PullRequest, *github.Response, error)
	List(ctx context.Context, owner, repo string, opts *github.PullRequestListOptions) ([]*github.PullRequest, *github.Response, error)
}

type GitHubClient struct {
	prService PullRequestsService
}

// NewGitHubClient builds a client authenticated with a personal access token.
// An empty apiURL talks to api.github.com; anything else is treated as a
// GitHub Enterprise (or test) base URL.
func NewGitHubClient(token, apiURL string) (*GitHubClient, error) {
	var httpClient *http.Client
	if token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "token"})
		httpClient = oauth2.NewClient(context.Background(), ts)
	}

	client := github.NewClient(httpClient)
	if apiURL != "" {
		var err error
		client, err = client.WithEnterpriseURLs(apiURL, apiURL)
		if err != nil {
			return nil, domainErrors.ErrConfigInvalid.
				WithError(err).
				WithContext("github_api_url", apiURL)
		}
	}

	return NewGitHubClientWithServices(client.PullRequests), nil
}

func NewGitHubClientWithServices(prService PullRequestsService) *GitHubClient {
	return &GitHubClient{prService: prService}
}

// FetchPR reads the PR metadata and then its diff. The diff is truncated to
// MaxDiffChars before being returned.
func (ghc *GitHubClient) FetchPR(ctx context.Context, details models.PRDetails) (models.PRData, error) {
	log := logger.FromContext(ctx)

	number, err := strconv.Atoi(details.Number)
	if err != nil || !vcs.Valid(details) {
		return models.PRData{}, domainErrors.ErrInvalidPRURL.WithContext("pr", details.Path())
	}

	log.Debug("fetching github pull request", "pr", details.Path())

	pr, resp, err := ghc.prService.Get(ctx, details.Owner, details.Repo, number)
	if err != nil {
		log.Error("failed to fetch github PR metadata",
			"error", err,
			"pr", details.Path())
		return models.PRData{}, wrapGitHubError(domainErrors.ErrFetchMetadata, resp, err).
			WithContext("pr", details.Path())
	}

	diff, resp, err := ghc.prService.GetRaw(ctx, details.Owner, details.Repo, number, github.RawOptions{Type: github.Diff})
	if err != nil {
		log.Error("failed to fetch github PR diff",
			"error", err,
			"pr", details.Path())
		// the diff endpoint does not return a useful message, keep it generic
		appErr := domainErrors.ErrFetchDiff.WithContext("pr", details.Path())
		if cause := statusError(resp); cause != nil {
			return models.PRData{}, appErr.WithError(cause)
		}
		return models.PRData{}, appErr.WithError(err)
	}

	truncated, cut := TruncateDiff(diff)
	if cut {
		log.Warn("PR diff truncated",
			"pr", details.Path(),
			"max_chars", MaxDiffChars)
	}

	data := models.PRData{
		Metadata:  toMetadata(pr),
		Diff:      truncated,
		Truncated: cut,
	}

	log.Debug("github PR fetched successfully",
		"pr", details.Path(),
		"title", data.Metadata.Title,
		"diff_size", len(diff))

	return data, nil
}

// UpdatePR patches the PR body. The title is only sent when non-empty so an
// absent title never blanks the existing one.
func (ghc *GitHubClient) UpdatePR(ctx context.Context, details models.PRDetails, body, title string) error {
	log := logger.FromContext(ctx)

	number, err := strconv.Atoi(details.Number)
	if err != nil || !vcs.Valid(details) {
		return domainErrors.ErrInvalidPRURL.WithContext("pr", details.Path())
	}

	pr := &github.PullRequest{Body: github.Ptr(body)}
	if title != "" {
		pr.Title = github.Ptr(title)
	}

	_, resp, err := ghc.prService.Edit(ctx, details.Owner, details.Repo, number, pr)
	if err != nil {
		log.Error("failed to update github PR",
			"error", err,
			"pr", details.Path())
		return wrapGitHubError(domainErrors.ErrUpdatePR, resp, err).
			WithContext("pr", details.Path())
	}

	log.Info("github PR updated",
		"pr", details.Path(),
		"title_updated", title != "")

	return nil
}

// FindOpenPR returns the open PR whose head is branch in owner/repo.
func (ghc *GitHubClient) FindOpenPR(ctx context.Context, owner, repo, branch string) (models.PRDetails, error) {
	log := logger.FromContext(ctx)

	prs, resp, err := ghc.prService.List(ctx, owner, repo, &github.PullRequestListOptions{
		State:       "open",
		Head:        owner + ":" + branch,
		ListOptions: github.ListOptions{PerPage: 1},
	})
	if err != nil {
		log.Error("failed to list github PRs",
			"error", err,
			"repo", owner+"/"+repo,
			"branch", branch)
		return models.PRDetails{}, wrapGitHubError(domainErrors.ErrFetchMetadata, resp, err).
			WithContext("branch", branch)
	}
	if len(prs) == 0 {
		return models.PRDetails{}, domainErrors.ErrNoOpenPR.WithContext("detail", owner+"/"+repo+":"+branch)
	}

	details := models.PRDetails{Owner: owner, Repo: repo, Number: strconv.Itoa(prs[0].GetNumber())}
	log.Debug("found open PR for branch", "branch", branch, "pr", details.Path())
	return details, nil
}

// TruncateDiff cuts diff to MaxDiffChars characters and appends
// DiffTruncatedMarker. It reports whether anything was cut.
func TruncateDiff(diff string) (string, bool) {
	if utf8.RuneCountInString(diff) <= MaxDiffChars {
		return diff, false
	}

	count := 0
	for i := range diff {
		if count == MaxDiffChars {
			return diff[:i] + DiffTruncatedMarker, true
		}
		count++
	}
	return diff, false
}

func toMetadata(pr *github.PullRequest) models.PRMetadata {
	return models.PRMetadata{
		Title:        pr.GetTitle(),
		Head:         models.BranchRef{Ref: pr.GetHead().GetRef()},
		Base:         models.BranchRef{Ref: pr.GetBase().GetRef()},
		ChangedFiles: pr.ChangedFiles,
		Additions:    pr.Additions,
		Deletions:    pr.Deletions,
	}
}

// wrapGitHubError builds base with the GitHub error message as detail and the
// status specific sentinel (if any) as cause.
func wrapGitHubError(base *domainErrors.AppError, resp *github.Response, err error) *domainErrors.AppError {
	appErr := base.WithContext("detail", errorDetail(resp, err))
	if cause := statusError(resp); cause != nil {
		appErr = appErr.WithError(cause.WithError(err))
		if cause.Suggestion != "" {
			appErr = appErr.WithSuggestion(cause.Suggestion)
		}
		return appErr
	}
	return appErr.WithError(err)
}

// errorDetail prefers the message GitHub put in the response body and falls
// back to the HTTP status text.
func errorDetail(resp *github.Response, err error) string {
	var ghErr *github.ErrorResponse
	if errors.As(err, &ghErr) && ghErr.Message != "" {
		return ghErr.Message
	}
	var rateErr *github.RateLimitError
	if errors.As(err, &rateErr) && rateErr.Message != "" {
		return rateErr.Message
	}
	if resp != nil && resp.Response != nil {
		if text := http.StatusText(resp.StatusCode); text != "" {
			return text
		}
		return strings.TrimSpace(resp.Status)
	}
	return err.Error()
}

func statusError(resp *github.Response) *domainErrors.AppError {
	if resp == nil || resp.Response == nil {
		return nil
	}
	switch resp.StatusCode {
	case http.StatusUnauthorized:
		return domainErrors.ErrGitHubTokenInvalid
	case http.StatusForbidden:
		if resp.Rate.Remaining == 0 && resp.Rate.Limit > 0 {
			return domainErrors.ErrGitHubRateLimit
		}
		return domainErrors.ErrGitHubInsufficientPerms
	case http.StatusNotFound:
		return domainErrors.ErrPullRequestNotFound
	case http.StatusTooManyRequests:
		return domainErrors.ErrGitHubRateLimit.WithContext("retry_after", resp.Header.Get("Retry-After"))
	}
	return nil
}
