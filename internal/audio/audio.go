// Package audio exposes the microphone level as an analog capability. The
// fusion layer treats a read failure as a zero level, which on its own can
// never trigger an event.
package audio

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// LevelReader reads one unsigned sample magnitude from the audio sensor.
type LevelReader interface {
	ReadLevel() (uint16, error)
}

// IIOReader reads the raw ADC value from a Linux industrial-IO sysfs file,
// e.g. /sys/bus/iio/devices/iio:device0/in_voltage0_raw.
type IIOReader struct {
	Path string
}

// ReadLevel reads and parses the sysfs raw value, clamped to 16 bits.
func (r *IIOReader) ReadLevel() (uint16, error) {
	data, err := os.ReadFile(r.Path)
	if err != nil {
		return 0, fmt.Errorf("reading adc %s: %w", r.Path, err)
	}
	val, err := strconv.ParseUint(strings.TrimSpace(string(data)), 10, 32)
	if err != nil {
		return 0, fmt.Errorf("parsing adc value %q: %w", strings.TrimSpace(string(data)), err)
	}
	if val > 0xFFFF {
		val = 0xFFFF
	}
	return uint16(val), nil
}

// MockReader implements LevelReader for testing.
type MockReader struct {
	Level uint16
	Err   error
}

// ReadLevel returns the configured level or error.
func (m *MockReader) ReadLevel() (uint16, error) {
	if m.Err != nil {
		return 0, m.Err
	}
	return m.Level, nil
}
