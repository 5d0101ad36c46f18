// Package fusion combines motion and sound readings into a single fall
// decision per tick. All three thresholds must be exceeded simultaneously; a
// single loud noise or a single jolt is never enough on its own.
package fusion

import (
	"gonum.org/v1/gonum/floats"
)

// GravityMS2 converts acceleration magnitudes from g to m/s².
const GravityMS2 = 9.8

// MotionSample is one accelerometer/gyroscope reading. Accel is in g, Gyro in
// deg/s.
type MotionSample struct {
	Accel [3]float64
	Gyro  [3]float64
}

// Thresholds are the per-axis-magnitude trigger levels. Accel is in m/s²,
// Gyro in deg/s, Sound is a raw 16-bit sample level.
type Thresholds struct {
	Accel float64
	Gyro  float64
	Sound uint16
}

// Result carries the per-tick decision along with the magnitudes that
// produced it, so callers can log and report them.
type Result struct {
	Detected bool
	AccelMag float64
	GyroMag  float64
	Sound    uint16
}

// Engine evaluates motion samples against fixed thresholds.
type Engine struct {
	thresholds Thresholds
}

// NewEngine creates an Engine with the given thresholds.
func NewEngine(t Thresholds) *Engine {
	return &Engine{thresholds: t}
}

// Evaluate computes the acceleration magnitude (in m/s²) and angular-rate
// magnitude (in deg/s) of the sample and tests all three thresholds with
// strict greater-than. A zeroed sample or zero sound level can never trigger.
func (e *Engine) Evaluate(sample MotionSample, sound uint16) Result {
	accelMag := floats.Norm(sample.Accel[:], 2) * GravityMS2
	gyroMag := floats.Norm(sample.Gyro[:], 2)

	detected := accelMag > e.thresholds.Accel &&
		gyroMag > e.thresholds.Gyro &&
		sound > e.thresholds.Sound

	return Result{
		Detected: detected,
		AccelMag: accelMag,
		GyroMag:  gyroMag,
		Sound:    sound,
	}
}
