// Package version holds build metadata stamped in by the linker.
package version

import "fmt"

// Version is set with
// go build -ldflags "-X git.home.luguber.info/inful/lotbuilder/internal/version.Version=v1.0.0".
var Version = "unknown"

// BuildInfo contains additional build metadata.
var (
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// String renders the version line printed by --version.
func String() string {
	return fmt.Sprintf("lotbuilder %s (commit %s, built %s)", Version, GitCommit, BuildTime)
}
