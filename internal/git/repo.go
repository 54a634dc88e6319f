package git

import (
	"fmt"
	"regexp"
	"strings"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	domainErrors "github.com/thomas-vilte/prbuddy/internal/errors"
)

// Branch is the checked out branch of a local clone and the GitHub
// repository its origin points to.
type Branch struct {
	Owner string
	Repo  string
	Name  string
}

var (
	sshRemote   = regexp.MustCompile(`^(?:ssh://)?git@([^:/]+)[:/]([^/]+)/(.+?)(?:\.git)?/?$`)
	httpsRemote = regexp.MustCompile(`^https?://(?:[^@/]+@)?([^/]+)/([^/]+)/(.+?)(?:\.git)?/?$`)
)

// CurrentBranch opens the repository containing dir and reads HEAD and the
// origin remote. A branch without commits yet is still reported.
func CurrentBranch(dir string) (Branch, error) {
	repo, err := gogit.PlainOpenWithOptions(dir, &gogit.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return Branch{}, domainErrors.ErrGitRepository.WithError(err).WithContext("dir", dir)
	}

	head, err := repo.Reference(plumbing.HEAD, false)
	if err != nil {
		return Branch{}, domainErrors.ErrGitRepository.WithError(err)
	}
	if head.Type() != plumbing.SymbolicReference || !head.Target().IsBranch() {
		return Branch{}, domainErrors.ErrGitRepository.WithContext("detail", "HEAD is detached")
	}

	remote, err := repo.Remote("origin")
	if err != nil {
		return Branch{}, domainErrors.ErrGitRepository.WithError(err).WithContext("detail", "no origin remote")
	}
	urls := remote.Config().URLs
	if len(urls) == 0 {
		return Branch{}, domainErrors.ErrGitRepository.WithContext("detail", "origin has no URL")
	}

	owner, name, err := parseRemoteURL(urls[0])
	if err != nil {
		return Branch{}, err
	}
	return Branch{Owner: owner, Repo: name, Name: head.Target().Short()}, nil
}

func parseRemoteURL(url string) (string, string, error) {
	url = strings.TrimSpace(url)

	var matches []string
	if m := sshRemote.FindStringSubmatch(url); m != nil {
		matches = m
	} else if m := httpsRemote.FindStringSubmatch(url); m != nil {
		matches = m
	}

	if len(matches) < 4 || strings.Contains(matches[3], "/") {
		return "", "", domainErrors.ErrGitRepository.WithContext("detail", fmt.Sprintf("unrecognized remote %q", url))
	}
	if !strings.Contains(matches[1], "github") {
		return "", "", domainErrors.ErrGitRepository.WithContext("detail", fmt.Sprintf("origin is not on GitHub: %s", matches[1]))
	}
	return matches[2], matches[3], nil
}
