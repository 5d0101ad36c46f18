// Package device holds the process-wide mutable state shared between the
// control loop and the alert dispatcher. The state is owned by the control
// loop and passed explicitly into component calls; there are no ambient
// globals.
package device

import "time"

// State is initialized zeroed at process start. The control loop runs on a
// single goroutine, so no locking is required; any future concurrent access
// must go through a single mutual-exclusion boundary.
type State struct {
	// WifiConnected mirrors the last association result.
	WifiConnected bool

	// SessionStart is the trusted timestamp captured when connectivity was
	// first established. Zero means the capture failed; alerts omit it.
	SessionStart time.Time

	// FallReported latches true on the first detected event and is never
	// cleared for the life of the process, so at most one alert fires per
	// device lifetime.
	FallReported bool
}
