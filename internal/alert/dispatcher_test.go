package alert

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ridewatch/sentinel/internal/device"
	"github.com/ridewatch/sentinel/internal/fusion"
	"github.com/ridewatch/sentinel/internal/gps"
)

type fakeFixProvider struct {
	fix   gps.Fix
	ok    bool
	calls int
}

func (f *fakeFixProvider) AcquireFix(ctx context.Context, timeout time.Duration) (gps.Fix, bool) {
	f.calls++
	return f.fix, f.ok
}

type fakeTimeSource struct {
	t  time.Time
	ok bool
}

func (f *fakeTimeSource) Fetch() (time.Time, bool) {
	return f.t, f.ok
}

type fakeNotifier struct {
	messages []string
	err      error
}

func (f *fakeNotifier) Notify(ctx context.Context, message string) error {
	if f.err != nil {
		return f.err
	}
	f.messages = append(f.messages, message)
	return nil
}

type fakeAlarm struct {
	sounded int
}

func (f *fakeAlarm) Sound() {
	f.sounded++
}

func eventResult() fusion.Result {
	return fusion.Result{Detected: true, AccelMag: 12.0, GyroMag: 5.0, Sound: 1500}
}

func TestDispatchIfNewEvent_FullSequence(t *testing.T) {
	fixes := &fakeFixProvider{fix: gps.Fix{Latitude: 11.0, Longitude: 77.0}, ok: true}
	timeSource := &fakeTimeSource{t: time.Date(2025, 5, 15, 15, 55, 39, 0, time.UTC), ok: true}
	notifier := &fakeNotifier{}
	alarm := &fakeAlarm{}

	d := NewDispatcher(fixes, timeSource, []Notifier{notifier}, alarm, nil, 10*time.Second, zap.NewNop())

	state := &device.State{SessionStart: time.Date(2025, 5, 15, 15, 30, 0, 0, time.UTC)}
	d.DispatchIfNewEvent(context.Background(), state, eventResult())

	assert.True(t, state.FallReported)
	assert.Equal(t, 1, fixes.calls)
	assert.Equal(t, 1, alarm.sounded)

	require.Len(t, notifier.messages, 1)
	msg := notifier.messages[0]
	assert.Contains(t, msg, "Helmet Fall Detected!")
	assert.Contains(t, msg, "Acceleration: 12.00 m/s^2")
	assert.Contains(t, msg, "maps.google.com")
	assert.Contains(t, msg, "Bike Start Time: 2025-05-15 15:30:00")
	assert.Contains(t, msg, "Fall Detected Time: 2025-05-15 15:55:39")
}

func TestDispatchIfNewEvent_NoOpAfterFirstReport(t *testing.T) {
	fixes := &fakeFixProvider{ok: true}
	notifier := &fakeNotifier{}
	alarm := &fakeAlarm{}

	d := NewDispatcher(fixes, &fakeTimeSource{}, []Notifier{notifier}, alarm, nil, time.Second, zap.NewNop())

	state := &device.State{FallReported: true}
	d.DispatchIfNewEvent(context.Background(), state, eventResult())

	// Sends nothing, acquires nothing, sounds nothing, sets no new state.
	assert.Empty(t, notifier.messages)
	assert.Zero(t, fixes.calls)
	assert.Zero(t, alarm.sounded)
	assert.True(t, state.FallReported)
}

func TestDispatchIfNewEvent_SecondEventIgnored(t *testing.T) {
	fixes := &fakeFixProvider{ok: true}
	notifier := &fakeNotifier{}
	alarm := &fakeAlarm{}

	d := NewDispatcher(fixes, &fakeTimeSource{}, []Notifier{notifier}, alarm, nil, time.Second, zap.NewNop())

	state := &device.State{}
	d.DispatchIfNewEvent(context.Background(), state, eventResult())
	d.DispatchIfNewEvent(context.Background(), state, eventResult())

	assert.Len(t, notifier.messages, 1)
	assert.Equal(t, 1, alarm.sounded)
}

func TestDispatchIfNewEvent_MissingFixAndTime(t *testing.T) {
	// Neither the fix nor the timestamp is available; the alert still goes
	// out with placeholders.
	d := NewDispatcher(&fakeFixProvider{}, &fakeTimeSource{}, nil, &fakeAlarm{}, nil, time.Second, zap.NewNop())
	notifier := &fakeNotifier{}
	d.notifiers = []Notifier{notifier}

	state := &device.State{}
	d.DispatchIfNewEvent(context.Background(), state, eventResult())

	require.Len(t, notifier.messages, 1)
	msg := notifier.messages[0]
	assert.Contains(t, msg, "Location: Unknown")
	assert.NotContains(t, msg, "Fall Detected Time")
	assert.NotContains(t, msg, "Bike Start Time")
}

func TestDispatchIfNewEvent_SendFailureStillSoundsAlarm(t *testing.T) {
	notifier := &fakeNotifier{err: errors.New("api unreachable")}
	alarm := &fakeAlarm{}

	d := NewDispatcher(&fakeFixProvider{}, &fakeTimeSource{}, []Notifier{notifier}, alarm, nil, time.Second, zap.NewNop())

	state := &device.State{}
	d.DispatchIfNewEvent(context.Background(), state, eventResult())

	// Send failure is log-only; the alarm and the latched flag are unaffected.
	assert.Equal(t, 1, alarm.sounded)
	assert.True(t, state.FallReported)
}

func TestDispatchIfNewEvent_AllNotifiersReceive(t *testing.T) {
	first := &fakeNotifier{}
	second := &fakeNotifier{}

	d := NewDispatcher(&fakeFixProvider{}, &fakeTimeSource{}, []Notifier{first, second}, &fakeAlarm{}, nil, time.Second, zap.NewNop())

	state := &device.State{}
	d.DispatchIfNewEvent(context.Background(), state, eventResult())

	assert.Len(t, first.messages, 1)
	assert.Len(t, second.messages, 1)
}
