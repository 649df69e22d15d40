// Package version holds build metadata, set with -ldflags at release time.
package version

var (
	Version   = "0.1.0-dev"
	BuildDate = "unknown"
	GitCommit = "unknown"
)
