package timeutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRealClock_Now(t *testing.T) {
	c := RealClock{}
	before := time.Now()
	got := c.Now()
	after := time.Now()

	assert.False(t, got.Before(before))
	assert.False(t, got.After(after))
}

func TestMockClock_SetAndAdvance(t *testing.T) {
	start := time.Date(2025, 5, 15, 10, 0, 0, 0, time.UTC)
	c := NewMockClock(start)

	assert.Equal(t, start, c.Now())

	c.Advance(2 * time.Second)
	assert.Equal(t, start.Add(2*time.Second), c.Now())

	c.Set(start)
	assert.Equal(t, start, c.Now())
}

func TestMockClock_SleepRecordsAndAdvances(t *testing.T) {
	start := time.Date(2025, 5, 15, 10, 0, 0, 0, time.UTC)
	c := NewMockClock(start)

	c.Sleep(500 * time.Millisecond)
	c.Sleep(2 * time.Second)

	assert.Equal(t, []time.Duration{500 * time.Millisecond, 2 * time.Second}, c.Sleeps())
	assert.Equal(t, start.Add(2500*time.Millisecond), c.Now())
}

func TestMockClock_Since(t *testing.T) {
	start := time.Date(2025, 5, 15, 10, 0, 0, 0, time.UTC)
	c := NewMockClock(start)
	c.Advance(10 * time.Second)

	assert.Equal(t, 10*time.Second, c.Since(start))
}
