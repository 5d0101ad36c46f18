// Package controller ties the sensors, connectivity, fusion, and alert
// dispatch together as the process-wide cyclic controller.
package controller

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/ridewatch/sentinel/internal/audio"
	"github.com/ridewatch/sentinel/internal/device"
	"github.com/ridewatch/sentinel/internal/fusion"
	"github.com/ridewatch/sentinel/internal/telemetry"
	"github.com/ridewatch/sentinel/internal/timesync"
	"github.com/ridewatch/sentinel/internal/timeutil"
)

// MotionSampler produces one motion sample per tick. A faulted sensor yields
// zeroed samples, never errors.
type MotionSampler interface {
	ReadSample() fusion.MotionSample
}

// Connectivity gates all features requiring network.
type Connectivity interface {
	EnsureConnected(ctx context.Context) bool
}

// EventDispatcher handles a detected event exactly once per process lifetime.
type EventDispatcher interface {
	DispatchIfNewEvent(ctx context.Context, state *device.State, result fusion.Result)
}

// TimeSource fetches a trusted timestamp.
type TimeSource interface {
	Fetch() (time.Time, bool)
}

// Intervals are the loop pacing constants.
type Intervals struct {
	// Cycle is the inter-cycle sleep (default 2s).
	Cycle time.Duration
	// Cooldown is the pause after handling an event (default 15s).
	Cooldown time.Duration
}

// Controller runs the detection-and-response cycle on a single goroutine. All
// I/O inside a cycle is synchronous; the only suspension points are the WiFi
// retry waits, HTTP round trips, the GPS window, and the alarm pattern.
type Controller struct {
	wifi       Connectivity
	motion     MotionSampler
	audio      audio.LevelReader
	engine     *fusion.Engine
	dispatcher EventDispatcher
	timeSource TimeSource
	recorder   telemetry.Recorder
	clock      timeutil.Clock
	logger     *zap.Logger
	intervals  Intervals

	state          device.State
	sessionStarted bool
}

// New wires a Controller. Zero intervals take the defaults.
func New(
	wifi Connectivity,
	motion MotionSampler,
	audioReader audio.LevelReader,
	engine *fusion.Engine,
	dispatcher EventDispatcher,
	timeSource TimeSource,
	recorder telemetry.Recorder,
	clock timeutil.Clock,
	logger *zap.Logger,
	intervals Intervals,
) *Controller {
	if intervals.Cycle <= 0 {
		intervals.Cycle = 2 * time.Second
	}
	if intervals.Cooldown <= 0 {
		intervals.Cooldown = 15 * time.Second
	}
	if recorder == nil {
		recorder = telemetry.NopRecorder{}
	}
	return &Controller{
		wifi:       wifi,
		motion:     motion,
		audio:      audioReader,
		engine:     engine,
		dispatcher: dispatcher,
		timeSource: timeSource,
		recorder:   recorder,
		clock:      clock,
		logger:     logger,
		intervals:  intervals,
	}
}

// State returns a snapshot of the device state.
func (c *Controller) State() device.State {
	return c.state
}

// Run cycles until the context is cancelled. Failures inside a cycle never
// terminate the loop; they surface only as log lines.
func (c *Controller) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		c.cycle(ctx)
		c.clock.Sleep(c.intervals.Cycle)
	}
}

// cycle is one iteration of the control loop.
func (c *Controller) cycle(ctx context.Context) {
	// Detection is entirely connectivity-gated: losing the network suspends
	// sensing, not just alerting.
	if !c.ensureSession(ctx) {
		return
	}

	sample := c.motion.ReadSample()
	level, err := c.audio.ReadLevel()
	if err != nil {
		// Fail-safe: a dead microphone reads as silence and can never
		// trigger on its own.
		c.logger.Warn("audio read failed", zap.Error(err))
		level = 0
	}

	result := c.engine.Evaluate(sample, level)
	c.logger.Info("fusion tick",
		zap.Float64("accel_mag", result.AccelMag),
		zap.Float64("gyro_mag", result.GyroMag),
		zap.Uint16("sound", result.Sound),
		zap.Bool("detected", result.Detected),
	)
	c.recorder.RecordTick(ctx, result)

	if result.Detected {
		c.dispatcher.DispatchIfNewEvent(ctx, &c.state, result)
		c.clock.Sleep(c.intervals.Cooldown)
		return
	}

	// Observability: surface the trusted time while idle. Absence is fine.
	if now, ok := c.timeSource.Fetch(); ok {
		c.logger.Info("current time", zap.String("time", timesync.FormatTime(now)))
	}
}

// ensureSession establishes connectivity and, on the first success, captures
// the session-start timestamp best-effort. Returns false when the device has
// no network this cycle.
func (c *Controller) ensureSession(ctx context.Context) bool {
	if c.sessionStarted && c.state.WifiConnected {
		return true
	}

	if !c.wifi.EnsureConnected(ctx) {
		c.state.WifiConnected = false
		c.logger.Info("connect the fall detector to WiFi to start the ride")
		return false
	}
	c.state.WifiConnected = true

	if !c.sessionStarted {
		c.sessionStarted = true
		if start, ok := c.timeSource.Fetch(); ok {
			c.state.SessionStart = start
		} else {
			c.logger.Warn("failed to get time at ride start, start time will be absent")
		}
	}
	return true
}
