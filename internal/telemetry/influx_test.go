package telemetry

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/ridewatch/sentinel/internal/fusion"
	"github.com/ridewatch/sentinel/internal/gps"
)

// captureServer accepts line-protocol writes and records the bodies. Writes
// through the blocking API are synchronous, so no coordination is needed.
func captureServer(t *testing.T, bodies *[]string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		b, err := io.ReadAll(req.Body)
		require.NoError(t, err)
		*bodies = append(*bodies, string(b))
		w.WriteHeader(http.StatusNoContent)
	}))
}

func TestRecordTick_WritesFusionPoint(t *testing.T) {
	var bodies []string
	srv := captureServer(t, &bodies)
	defer srv.Close()

	rec := NewInfluxRecorder(srv.URL, "token", "org", "bucket", "sentinel-test", zap.NewNop())
	defer rec.Close()

	rec.RecordTick(context.Background(), fusion.Result{
		Detected: true,
		AccelMag: 12.4,
		GyroMag:  5.1,
		Sound:    1500,
	})

	require.Len(t, bodies, 1)
	assert.Contains(t, bodies[0], "fusion,device=sentinel-test")
	assert.Contains(t, bodies[0], "sound=1500i")
	assert.Contains(t, bodies[0], "detected=true")
}

func TestRecordAlert_WritesEventPoint(t *testing.T) {
	var bodies []string
	srv := captureServer(t, &bodies)
	defer srv.Close()

	rec := NewInfluxRecorder(srv.URL, "token", "org", "bucket", "sentinel-test", zap.NewNop())
	defer rec.Close()

	fix := gps.Fix{Latitude: 11.035833, Longitude: 77.000250}
	rec.RecordAlert(context.Background(), "evt-1", fusion.Result{Sound: 1500}, fix, true)

	require.Len(t, bodies, 1)
	assert.Contains(t, bodies[0], "alert,device=sentinel-test,event_id=evt-1")
	assert.Contains(t, bodies[0], "latitude=11.035833")
	assert.Contains(t, bodies[0], "have_fix=true")
}

func TestRecordAlert_OmitsCoordinatesWithoutFix(t *testing.T) {
	var bodies []string
	srv := captureServer(t, &bodies)
	defer srv.Close()

	rec := NewInfluxRecorder(srv.URL, "token", "org", "bucket", "sentinel-test", zap.NewNop())
	defer rec.Close()

	rec.RecordAlert(context.Background(), "evt-2", fusion.Result{}, gps.Fix{}, false)

	require.Len(t, bodies, 1)
	assert.Contains(t, bodies[0], "have_fix=false")
	assert.NotContains(t, bodies[0], "latitude")
}

func TestWriteFailure_LogsAndReturns(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		http.Error(w, `{"message":"bucket not found"}`, http.StatusInternalServerError)
	}))
	defer srv.Close()

	core, logs := observer.New(zap.WarnLevel)
	rec := NewInfluxRecorder(srv.URL, "token", "org", "bucket", "sentinel-test", zap.New(core))
	defer rec.Close()

	rec.RecordTick(context.Background(), fusion.Result{})
	rec.RecordAlert(context.Background(), "evt-3", fusion.Result{}, gps.Fix{}, false)

	assert.Equal(t, 1, logs.FilterMessage("telemetry tick write failed").Len())
	assert.Equal(t, 1, logs.FilterMessage("telemetry alert write failed").Len())
}
