package buzzer

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/ridewatch/sentinel/internal/timeutil"
)

func TestSound_TenOnOffCycles(t *testing.T) {
	pin := &MockPin{}
	clock := timeutil.NewMockClock(time.Date(2025, 5, 15, 10, 0, 0, 0, time.UTC))
	b := New(pin, 4*time.Second, clock, zap.NewNop())

	b.Sound()

	transitions := pin.Transitions()
	assert.Len(t, transitions, 2*Cycles)
	for i, high := range transitions {
		assert.Equal(t, i%2 == 0, high, "transition %d", i)
	}

	// Both half-periods use the configured pulse duration.
	sleeps := clock.Sleeps()
	assert.Len(t, sleeps, 2*Cycles)
	for _, d := range sleeps {
		assert.Equal(t, 4*time.Second, d)
	}
}

func TestSound_PinFaultDoesNotStall(t *testing.T) {
	pin := &MockPin{Err: errors.New("gpio write fault")}
	clock := timeutil.NewMockClock(time.Date(2025, 5, 15, 10, 0, 0, 0, time.UTC))
	b := New(pin, time.Second, clock, zap.NewNop())

	b.Sound()

	// The pattern still ran to completion.
	assert.Len(t, clock.Sleeps(), 2*Cycles)
}

func TestDuration(t *testing.T) {
	b := New(&MockPin{}, 4*time.Second, timeutil.RealClock{}, zap.NewNop())
	assert.Equal(t, 80*time.Second, b.Duration())
}
