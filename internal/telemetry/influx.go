// Package telemetry streams per-tick fusion readings and alert events to an
// InfluxDB instance for observability. The sink is optional and best-effort;
// write failures are logged and never influence the control loop.
package telemetry

import (
	"context"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"go.uber.org/zap"

	"github.com/ridewatch/sentinel/internal/fusion"
	"github.com/ridewatch/sentinel/internal/gps"
)

// Recorder receives fusion readings and alert events.
type Recorder interface {
	// RecordTick records one fusion evaluation.
	RecordTick(ctx context.Context, result fusion.Result)
	// RecordAlert records one dispatched alert with its event id and, when
	// acquired, the fix.
	RecordAlert(ctx context.Context, eventID string, result fusion.Result, fix gps.Fix, haveFix bool)
}

// InfluxRecorder writes points through the blocking write API, one point per
// tick or alert.
type InfluxRecorder struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	deviceID string
	logger   *zap.Logger
}

// NewInfluxRecorder connects to the given InfluxDB instance.
func NewInfluxRecorder(url, token, org, bucket, deviceID string, logger *zap.Logger) *InfluxRecorder {
	client := influxdb2.NewClient(url, token)
	return &InfluxRecorder{
		client:   client,
		writeAPI: client.WriteAPIBlocking(org, bucket),
		deviceID: deviceID,
		logger:   logger,
	}
}

// RecordTick writes the fusion magnitudes for one cycle.
func (r *InfluxRecorder) RecordTick(ctx context.Context, result fusion.Result) {
	p := influxdb2.NewPoint(
		"fusion",
		map[string]string{"device": r.deviceID},
		map[string]interface{}{
			"accel_mag": result.AccelMag,
			"gyro_mag":  result.GyroMag,
			"sound":     int(result.Sound),
			"detected":  result.Detected,
		},
		time.Now(),
	)
	if err := r.writeAPI.WritePoint(ctx, p); err != nil {
		r.logger.Warn("telemetry tick write failed", zap.Error(err))
	}
}

// RecordAlert writes one alert event point.
func (r *InfluxRecorder) RecordAlert(ctx context.Context, eventID string, result fusion.Result, fix gps.Fix, haveFix bool) {
	fields := map[string]interface{}{
		"accel_mag": result.AccelMag,
		"gyro_mag":  result.GyroMag,
		"sound":     int(result.Sound),
		"have_fix":  haveFix,
	}
	if haveFix {
		fields["latitude"] = fix.Latitude
		fields["longitude"] = fix.Longitude
	}
	p := influxdb2.NewPoint(
		"alert",
		map[string]string{"device": r.deviceID, "event_id": eventID},
		fields,
		time.Now(),
	)
	if err := r.writeAPI.WritePoint(ctx, p); err != nil {
		r.logger.Warn("telemetry alert write failed", zap.Error(err))
	}
}

// Close shuts down the underlying client.
func (r *InfluxRecorder) Close() {
	r.client.Close()
}

// NopRecorder discards everything; used when no telemetry URL is configured.
type NopRecorder struct{}

func (NopRecorder) RecordTick(context.Context, fusion.Result) {}
func (NopRecorder) RecordAlert(context.Context, string, fusion.Result, gps.Fix, bool) {
}
