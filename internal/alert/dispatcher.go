package alert

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ridewatch/sentinel/internal/device"
	"github.com/ridewatch/sentinel/internal/fusion"
	"github.com/ridewatch/sentinel/internal/gps"
	"github.com/ridewatch/sentinel/internal/telemetry"
)

// FixProvider acquires a position fix within a bounded window.
type FixProvider interface {
	AcquireFix(ctx context.Context, timeout time.Duration) (gps.Fix, bool)
}

// TimeSource fetches a trusted timestamp; ok=false means sync failed.
type TimeSource interface {
	Fetch() (time.Time, bool)
}

// Alarm drives the local audible alarm to completion.
type Alarm interface {
	Sound()
}

// Dispatcher orchestrates the response to a detected fall: location fix,
// trusted event time, message composition, remote notification, and the local
// alarm, in that order.
type Dispatcher struct {
	fixes      FixProvider
	timeSource TimeSource
	notifiers  []Notifier
	alarm      Alarm
	recorder   telemetry.Recorder
	gpsTimeout time.Duration
	logger     *zap.Logger
}

// NewDispatcher wires a dispatcher. Multiple notifiers all receive every
// alert; each failure is logged independently.
func NewDispatcher(fixes FixProvider, timeSource TimeSource, notifiers []Notifier, alarm Alarm, recorder telemetry.Recorder, gpsTimeout time.Duration, logger *zap.Logger) *Dispatcher {
	if recorder == nil {
		recorder = telemetry.NopRecorder{}
	}
	return &Dispatcher{
		fixes:      fixes,
		timeSource: timeSource,
		notifiers:  notifiers,
		alarm:      alarm,
		recorder:   recorder,
		gpsTimeout: gpsTimeout,
		logger:     logger,
	}
}

// DispatchIfNewEvent handles one detected event. It is a no-op once
// state.FallReported latched; only the first event in a process lifetime is
// reported. The flag is set before any I/O so a slow dispatch can never
// double-fire. Location and event time are independently optional and never
// block composition. The alarm pattern runs synchronously at the end,
// blocking the caller for its full duration.
func (d *Dispatcher) DispatchIfNewEvent(ctx context.Context, state *device.State, result fusion.Result) {
	if state.FallReported {
		return
	}
	state.FallReported = true

	eventID := uuid.NewString()
	d.logger.Info("fall detected, dispatching alert",
		zap.String("event_id", eventID),
		zap.Float64("accel_mag", result.AccelMag),
		zap.Float64("gyro_mag", result.GyroMag),
		zap.Uint16("sound", result.Sound),
	)

	fix, haveFix := d.fixes.AcquireFix(ctx, d.gpsTimeout)
	if !haveFix {
		d.logger.Warn("no location fix for alert", zap.String("event_id", eventID))
	}

	fallTime, haveTime := d.timeSource.Fetch()
	if !haveTime {
		d.logger.Warn("failed to get time at fall", zap.String("event_id", eventID))
		fallTime = time.Time{}
	}

	msg := ComposeMessage(MessageParams{
		SessionStart: state.SessionStart,
		FallTime:     fallTime,
		Fix:          fix,
		HaveFix:      haveFix,
		Result:       result,
	})

	for _, n := range d.notifiers {
		if err := n.Notify(ctx, msg); err != nil {
			d.logger.Error("alert send failed",
				zap.String("event_id", eventID),
				zap.Error(err),
			)
		}
	}

	d.recorder.RecordAlert(ctx, eventID, result, fix, haveFix)

	d.alarm.Sound()
}
