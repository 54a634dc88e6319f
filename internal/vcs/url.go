package vcs

import (
	"strings"

	domainErrors "github.com/thomas-vilte/prbuddy/internal/errors"
	"github.com/thomas-vilte/prbuddy/internal/models"
	"github.com/thomas-vilte/prbuddy/internal/regex"
)

// ParsePRURL extracts owner, repo and number from a GitHub pull request URL.
func ParsePRURL(raw string) (models.PRDetails, error) {
	match := regex.GitHubPRURL.FindStringSubmatch(strings.TrimSpace(raw))
	if match == nil {
		return models.PRDetails{}, domainErrors.ErrInvalidPRURL.WithContext("url", raw)
	}

	details := models.PRDetails{Owner: match[1], Repo: match[2], Number: match[3]}
	if !Valid(details) {
		return models.PRDetails{}, domainErrors.ErrInvalidPRURL.WithContext("url", raw)
	}
	return details, nil
}

// Valid reports whether details can address a PR endpoint.
func Valid(d models.PRDetails) bool {
	if d.Owner == "" || d.Repo == "" {
		return false
	}
	if strings.Contains(d.Owner, "/") || strings.Contains(d.Repo, "/") {
		return false
	}
	return regex.Digits.MatchString(d.Number)
}
