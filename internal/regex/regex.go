package regex

import "regexp"

var (
	// GitHub pull request page: github.com/<owner>/<repo>/pull/<number>, anywhere
	// in the text. The host must not be glued to a longer name and the number
	// must end at a non word character.
	GitHubPRURL = regexp.MustCompile(`(?:^|[^\w-])github\.com/([^/]+)/([^/]+)/pull/(\d+)(?:\W|$)`)

	// Digits only, used to validate a PR number segment.
	Digits = regexp.MustCompile(`^\d+$`)
)
