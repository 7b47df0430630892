// Package build provides information about the current build of the binary.
package build

// These values are injected at build time through ldflags.
var (
	// ProjectName is used to prefix metric and env namespaces.
	ProjectName = "circlevis"

	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)
