package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/google/go-github/v80/github"
	"github.com/thomas-vilte/prbuddy/internal/i18n"
	"github.com/thomas-vilte/prbuddy/internal/logger"
	"golang.org/x/mod/semver"
)

const (
	releaseOwner = "thomas-vilte"
	releaseRepo  = "prbuddy"
	checkEvery   = 24 * time.Hour
)

// LatestReleaseFunc returns the tag of the newest published release.
type LatestReleaseFunc func(ctx context.Context) (string, error)

type UpdateCache struct {
	LastCheck   time.Time `json:"last_check"`
	LatestKnown string    `json:"latest_known"`
}

// VersionChecker tells the user when a newer release exists. Lookups are
// cached for a day next to the config file.
type VersionChecker struct {
	currentVersion string
	cachePath      string
	latest         LatestReleaseFunc
	trans          *i18n.Translations
	out            io.Writer
}

func NewVersionChecker(version, cacheDir string, trans *i18n.Translations) *VersionChecker {
	client := github.NewClient(nil)
	return &VersionChecker{
		currentVersion: version,
		cachePath:      filepath.Join(cacheDir, "last_update_check.json"),
		trans:          trans,
		out:            os.Stderr,
		latest: func(ctx context.Context) (string, error) {
			release, _, err := client.Repositories.GetLatestRelease(ctx, releaseOwner, releaseRepo)
			if err != nil {
				return "", err
			}
			return release.GetTagName(), nil
		},
	}
}

// CheckForUpdates prints a notice when a newer release is known. Errors are
// logged and swallowed.
func (v *VersionChecker) CheckForUpdates(ctx context.Context) {
	if os.Getenv("PRBUDDY_DISABLE_UPDATE_CHECK") != "" {
		return
	}
	log := logger.FromContext(ctx)

	cache, err := v.loadCache()
	if err == nil && time.Since(cache.LastCheck) < checkEvery {
		if cache.LatestKnown != "" && isUpdateAvailable(v.currentVersion, cache.LatestKnown) {
			v.printUpdateNotification(cache.LatestKnown)
		}
		return
	}

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	latest, err := v.latest(ctx)
	if err != nil {
		log.Debug("update check failed", "error", err)
		return
	}
	if err := v.saveCache(UpdateCache{LastCheck: time.Now(), LatestKnown: latest}); err != nil {
		log.Debug("failed to save update cache", "error", err)
	}

	if isUpdateAvailable(v.currentVersion, latest) {
		v.printUpdateNotification(latest)
	}
}

func isUpdateAvailable(current, latest string) bool {
	if !strings.HasPrefix(current, "v") {
		current = "v" + current
	}
	if !strings.HasPrefix(latest, "v") {
		latest = "v" + latest
	}

	if !semver.IsValid(current) || !semver.IsValid(latest) {
		return current != latest
	}

	return semver.Compare(latest, current) > 0
}

func (v *VersionChecker) printUpdateNotification(latest string) {
	yellow := color.New(color.FgYellow, color.Bold).SprintFunc()
	green := color.New(color.FgGreen, color.Bold).SprintFunc()

	msg := v.trans.GetMessage("update.available", 0, map[string]interface{}{
		"Current": v.currentVersion,
		"Latest":  green(latest),
	})
	cmd := v.trans.GetMessage("update.command", 0, map[string]interface{}{
		"Command": green(fmt.Sprintf("go install github.com/%s/%s/cmd@latest", releaseOwner, releaseRepo)),
	})
	_, _ = fmt.Fprintf(v.out, "\n%s %s\n%s %s\n\n", yellow("!"), msg, yellow("!"), cmd)
}

func (v *VersionChecker) loadCache() (UpdateCache, error) {
	data, err := os.ReadFile(v.cachePath)
	if err != nil {
		return UpdateCache{}, err
	}

	var cache UpdateCache
	if err := json.Unmarshal(data, &cache); err != nil {
		return UpdateCache{}, err
	}
	return cache, nil
}

func (v *VersionChecker) saveCache(cache UpdateCache) error {
	if err := os.MkdirAll(filepath.Dir(v.cachePath), 0700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(cache, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(v.cachePath, data, 0600)
}
