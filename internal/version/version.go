// Package version provides build version information.
package version

import (
	"fmt"

	"github.com/Masterminds/semver/v3"
)

var (
	// Version is the semantic version (injected at build time via -ldflags)
	version = "dev"
	// Commit is the git commit hash (injected at build time via -ldflags)
	commit = "none"
	// Date is the build date (injected at build time via -ldflags)
	date = "unknown"
)

// GetVersion returns the full version string
func GetVersion() string {
	return version
}

// GetCommit returns the git commit hash.
func GetCommit() string {
	return commit
}

// GetDate returns the build date.
func GetDate() string {
	return date
}

// GetFullVersion returns version with commit and date info
func GetFullVersion() string {
	return version + " (commit: " + commit + ", built: " + date + ")"
}

// Semver parses the injected version. Development builds do not carry one.
func Semver() (*semver.Version, error) {
	return Parse(version)
}

// Parse parses v as a semantic version, accepting an optional leading "v".
func Parse(v string) (*semver.Version, error) {
	sv, err := semver.NewVersion(v)
	if err != nil {
		return nil, fmt.Errorf("invalid version %q: %w", v, err)
	}

	return sv, nil
}

// IsRelease reports whether the binary was built from a tagged release
// (a valid version without a prerelease suffix).
func IsRelease() bool {
	sv, err := Semver()
	if err != nil {
		return false
	}

	return sv.Prerelease() == ""
}
