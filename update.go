package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/blang/semver"
	"github.com/rhysd/go-github-selfupdate/selfupdate"
)

const (
	githubSlug         = "afittestide/skillprompt"
	updateCheckTimeout = 5 * time.Second
)

// parseVersion parses a version string, handling "v" prefix
func parseVersion(v string) (semver.Version, error) {
	return semver.Parse(strings.TrimPrefix(strings.TrimSpace(v), "v"))
}

// isNewer reports whether latest is a later release than current
func isNewer(latest, current semver.Version) bool {
	return latest.GT(current)
}

// CheckForUpdates looks up the latest GitHub release. The bool is true when
// it is newer than currentVersion.
func CheckForUpdates(ctx context.Context, currentVersion string) (*selfupdate.Release, bool, error) {
	current, err := parseVersion(currentVersion)
	if err != nil {
		return nil, false, fmt.Errorf("invalid current version: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, updateCheckTimeout)
	defer cancel()

	type result struct {
		release *selfupdate.Release
		found   bool
		err     error
	}
	done := make(chan result, 1)
	go func() {
		release, found, err := selfupdate.DetectLatest(githubSlug)
		done <- result{release, found, err}
	}()

	select {
	case <-ctx.Done():
		return nil, false, fmt.Errorf("update check timed out: %w", ctx.Err())
	case r := <-done:
		if r.err != nil {
			return nil, false, fmt.Errorf("failed to detect latest version: %w", r.err)
		}
		if !r.found {
			return nil, false, fmt.Errorf("no release found for %s", githubSlug)
		}
		if !isNewer(r.release.Version, current) {
			slog.Debug("current version is up to date", "current", currentVersion, "latest", r.release.Version)
			return r.release, false, nil
		}
		return r.release, true, nil
	}
}

// SelfUpdate replaces the running binary with the latest release
func SelfUpdate(currentVersion string) (semver.Version, error) {
	current, err := parseVersion(currentVersion)
	if err != nil {
		return semver.Version{}, fmt.Errorf("invalid current version: %w", err)
	}

	latest, err := selfupdate.UpdateSelf(current, githubSlug)
	if err != nil {
		return semver.Version{}, fmt.Errorf("failed to update: %w", err)
	}

	if latest.Version.Equals(current) {
		slog.Info("already up to date", "version", currentVersion)
	} else {
		slog.Info("successfully updated", "from", currentVersion, "to", latest.Version)
	}
	return latest.Version, nil
}
