package models

import "fmt"

type (
	// PRDetails identifies a pull request parsed from its URL. Number stays a
	// string because it is used as an opaque path segment.
	PRDetails struct {
		Owner  string `json:"owner"`
		Repo   string `json:"repo"`
		Number string `json:"number"`
	}

	// BranchRef is the subset of a GitHub branch object the prompts read.
	BranchRef struct {
		Ref string `json:"ref"`
	}

	// PRMetadata is the subset of the GitHub pull request object used to build
	// prompts. Counters are nil when GitHub omitted them.
	PRMetadata struct {
		Title        string    `json:"title"`
		Head         BranchRef `json:"head"`
		Base         BranchRef `json:"base"`
		ChangedFiles *int      `json:"changed_files,omitempty"`
		Additions    *int      `json:"additions,omitempty"`
		Deletions    *int      `json:"deletions,omitempty"`
	}

	// PRData bundles the metadata with the (possibly truncated) diff.
	PRData struct {
		Metadata  PRMetadata
		Diff      string
		Truncated bool
	}

	// GenerationResult is what a successful generation hands back to the caller.
	GenerationResult struct {
		Description string    `json:"description"`
		Title       string    `json:"title,omitempty"`
		PRDetails   PRDetails `json:"prDetails"`
	}
)

// Path renders the PR as owner/repo#number for logs and messages.
func (d PRDetails) Path() string {
	return fmt.Sprintf("%s/%s#%s", d.Owner, d.Repo, d.Number)
}
