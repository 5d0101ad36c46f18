package gps

import (
	"fmt"
	"strconv"
	"strings"
)

// Fix is a single resolved position in decimal degrees, signed by hemisphere.
type Fix struct {
	Latitude  float64
	Longitude float64
}

// convertToDegrees converts an NMEA DDMM.MMMM coordinate field into decimal
// degrees (degrees + minutes/60).
func convertToDegrees(raw string) (float64, error) {
	if len(raw) < 5 {
		return 0, fmt.Errorf("coordinate field too short: %q", raw)
	}
	degrees, err := strconv.Atoi(raw[:2])
	if err != nil {
		return 0, fmt.Errorf("parsing degrees of %q: %w", raw, err)
	}
	minutes, err := strconv.ParseFloat(raw[2:], 64)
	if err != nil {
		return 0, fmt.Errorf("parsing minutes of %q: %w", raw, err)
	}
	return float64(degrees) + minutes/60.0, nil
}

// parseGGA extracts a fix from a GGA sentence. Sentences without both
// coordinate fields populated do not qualify.
func parseGGA(line string) (Fix, error) {
	parts := strings.Split(strings.TrimSpace(line), ",")
	if len(parts) <= 5 || parts[2] == "" || parts[4] == "" {
		return Fix{}, fmt.Errorf("sentence missing coordinate fields")
	}

	lat, err := convertToDegrees(parts[2])
	if err != nil {
		return Fix{}, err
	}
	lon, err := convertToDegrees(parts[4])
	if err != nil {
		return Fix{}, err
	}

	if parts[3] == "S" {
		lat = -lat
	}
	if parts[5] == "W" {
		lon = -lon
	}

	return Fix{Latitude: lat, Longitude: lon}, nil
}
