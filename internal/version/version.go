// Package version carries build identification, overridden at link time via
// -ldflags "-X github.com/ridewatch/sentinel/internal/version.Version=...".
package version

var (
	// Version is the current firmware version
	Version = "dev"
	// GitSHA is the git commit SHA
	GitSHA = "unknown"
	// BuildTime is the build timestamp
	BuildTime = "unknown"
)
