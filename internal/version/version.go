// Package version provides build-time version information.
package version

import "fmt"

// These variables are set at build time via ldflags:
//
//	-X github.com/open-cli-collective/footnote-cli/internal/version.Version=v1.2.3
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

// String returns the one-line version banner printed by fnote --version.
func String() string {
	return fmt.Sprintf("fnote version %s (commit: %s, built: %s)", Version, Commit, Date)
}
