// Package version holds build metadata stamped in via ldflags.
package version

//nolint:revive // Overwritten by the build.
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)
