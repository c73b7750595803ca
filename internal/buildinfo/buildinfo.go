// Package buildinfo exposes version metadata injected at build time via -ldflags.
package buildinfo

var (
	// Version is the semantic version of the binary, "dev" for local builds.
	Version = "dev"
	// Commit is the git commit the binary was built from.
	Commit = "none"
	// BuildDate is the RFC3339 build timestamp.
	BuildDate = "unknown"
)
