package alert

import (
	"fmt"
	"strings"
	"time"

	"github.com/ridewatch/sentinel/internal/fusion"
	"github.com/ridewatch/sentinel/internal/gps"
	"github.com/ridewatch/sentinel/internal/timesync"
)

// UnknownLocation is the placeholder used when no fix was acquired in time.
const UnknownLocation = "Unknown"

// MessageParams collects everything that goes into one alert message. The
// session-start and fall times and the fix are independently optional and
// never block composition when absent.
type MessageParams struct {
	SessionStart time.Time // zero = omit
	FallTime     time.Time // zero = omit
	Fix          gps.Fix
	HaveFix      bool
	Result       fusion.Result
}

// ComposeMessage builds the alert text: fixed header, the optional
// timestamps, a map link (or placeholder), and the fusion magnitudes with
// accel/gyro formatted to two decimals.
func ComposeMessage(p MessageParams) string {
	var b strings.Builder

	b.WriteString("Helmet Fall Detected!\n")
	if !p.SessionStart.IsZero() {
		fmt.Fprintf(&b, "Bike Start Time: %s\n", timesync.FormatTime(p.SessionStart))
	}
	if !p.FallTime.IsZero() {
		fmt.Fprintf(&b, "Fall Detected Time: %s\n", timesync.FormatTime(p.FallTime))
	}

	location := UnknownLocation
	if p.HaveFix {
		location = fmt.Sprintf("http://maps.google.com/?q=%.6f,%.6f", p.Fix.Latitude, p.Fix.Longitude)
	}
	fmt.Fprintf(&b, "Location: %s\n", location)

	fmt.Fprintf(&b, "Acceleration: %.2f m/s^2\n", p.Result.AccelMag)
	fmt.Fprintf(&b, "Gyroscope: %.2f deg/s\n", p.Result.GyroMag)
	fmt.Fprintf(&b, "Sound: %d\n", p.Result.Sound)

	return b.String()
}
