// Package buzzer drives the audible alarm through a digital output pin.
package buzzer

import (
	"fmt"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ridewatch/sentinel/internal/timeutil"
)

// Cycles is the fixed number of on/off pulses per alarm.
const Cycles = 10

// OutputPin is the digital output capability for the alarm.
type OutputPin interface {
	Set(high bool) error
}

// Buzzer runs the alarm pulse pattern. Sound blocks for the full pattern by
// design; there is nothing else for the control loop to do mid-alarm.
type Buzzer struct {
	pin    OutputPin
	clock  timeutil.Clock
	logger *zap.Logger
	pulse  time.Duration
}

// New creates a Buzzer with the given pulse duration (both the on and the off
// half of each cycle).
func New(pin OutputPin, pulse time.Duration, clock timeutil.Clock, logger *zap.Logger) *Buzzer {
	return &Buzzer{pin: pin, clock: clock, logger: logger, pulse: pulse}
}

// Sound runs ten on/off cycles synchronously. Pin faults are logged and the
// pattern continues; a stuck pin must not stall alert handling. The pin is
// always left low.
func (b *Buzzer) Sound() {
	for i := 0; i < Cycles; i++ {
		if err := b.pin.Set(true); err != nil {
			b.logger.Warn("buzzer pin write failed", zap.Error(err))
		}
		b.clock.Sleep(b.pulse)
		if err := b.pin.Set(false); err != nil {
			b.logger.Warn("buzzer pin write failed", zap.Error(err))
		}
		b.clock.Sleep(b.pulse)
	}
}

// Duration returns how long one full alarm pattern blocks.
func (b *Buzzer) Duration() time.Duration {
	return time.Duration(2*Cycles) * b.pulse
}

// SysfsPin is an OutputPin backed by a /sys/class/gpio value file.
type SysfsPin struct {
	Path string
}

// Set writes the pin level.
func (p *SysfsPin) Set(high bool) error {
	val := "0"
	if high {
		val = "1"
	}
	if err := os.WriteFile(p.Path, []byte(val), 0o644); err != nil {
		return fmt.Errorf("writing gpio %s: %w", p.Path, err)
	}
	return nil
}

// MockPin records pin transitions for testing.
type MockPin struct {
	mu     sync.Mutex
	Err    error
	States []bool
}

// Set records the requested level.
func (p *MockPin) Set(high bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Err != nil {
		return p.Err
	}
	p.States = append(p.States, high)
	return nil
}

// Transitions returns all recorded levels.
func (p *MockPin) Transitions() []bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]bool, len(p.States))
	copy(out, p.States)
	return out
}
