package providers

import (
	"github.com/thomas-vilte/prbuddy/internal/config"
	"github.com/thomas-vilte/prbuddy/internal/vcs"
	"github.com/thomas-vilte/prbuddy/internal/vcs/github"
)

// NewVCSClient creates the GitHub client for token, honoring a configured
// GitHub Enterprise API URL.
func NewVCSClient(token string, cfg *config.Config) (vcs.PRClient, error) {
	apiURL := ""
	if cfg != nil {
		apiURL = cfg.GitHub.APIURL
	}
	client, err := github.NewGitHubClient(token, apiURL)
	if err != nil {
		return nil, err
	}
	return client, nil
}
