package imu

import (
	"encoding/binary"
	"fmt"

	"go.uber.org/zap"

	"github.com/ridewatch/sentinel/internal/fusion"
)

// MPU-6050 register map and scale factors.
const (
	DefaultAddress = 0x68

	regPowerMgmt1 = 0x6B
	regAccelXHigh = 0x3B
	regAccelYHigh = 0x3D
	regAccelZHigh = 0x3F
	regGyroXHigh  = 0x43
	regGyroYHigh  = 0x45
	regGyroZHigh  = 0x47

	accelLSBPerG   = 16384.0 // ±2g full scale
	gyroLSBPerDegS = 131.0   // ±250 deg/s full scale
)

// MPU6050 reads acceleration and angular rate from the sensor. If the wake
// command failed at startup the driver stays in a degraded mode where every
// sample reads as zero, so fusion downstream sees "no event" instead of an
// error.
type MPU6050 struct {
	bus         I2CBus
	addr        byte
	initialized bool
	logger      *zap.Logger
}

// NewMPU6050 wakes the sensor out of sleep mode. A wake failure is reported
// in the return error but still yields a usable (degraded) driver.
func NewMPU6050(bus I2CBus, addr byte, logger *zap.Logger) (*MPU6050, error) {
	m := &MPU6050{bus: bus, addr: addr, logger: logger}

	if err := bus.WriteReg(addr, regPowerMgmt1, []byte{0x00}); err != nil {
		logger.Error("failed to wake MPU-6050, motion samples will read zero",
			zap.Error(err),
		)
		return m, fmt.Errorf("waking MPU-6050 at 0x%02x: %w", addr, err)
	}

	m.initialized = true
	return m, nil
}

// Initialized reports whether the wake command succeeded.
func (m *MPU6050) Initialized() bool {
	return m.initialized
}

// ReadSample returns one accelerometer/gyroscope sample. Accel axes are in g,
// gyro axes in deg/s. When the sensor never initialized, or any register read
// fails, the sample degrades to all zeros without an error so the control
// loop keeps cycling.
func (m *MPU6050) ReadSample() fusion.MotionSample {
	if !m.initialized {
		return fusion.MotionSample{}
	}

	var sample fusion.MotionSample
	accelRegs := [3]byte{regAccelXHigh, regAccelYHigh, regAccelZHigh}
	gyroRegs := [3]byte{regGyroXHigh, regGyroYHigh, regGyroZHigh}

	for i, reg := range accelRegs {
		raw, err := m.readWord(reg)
		if err != nil {
			m.logger.Warn("accelerometer read failed", zap.Error(err))
			return fusion.MotionSample{}
		}
		sample.Accel[i] = float64(raw) / accelLSBPerG
	}

	for i, reg := range gyroRegs {
		raw, err := m.readWord(reg)
		if err != nil {
			m.logger.Warn("gyroscope read failed", zap.Error(err))
			return fusion.MotionSample{}
		}
		sample.Gyro[i] = float64(raw) / gyroLSBPerDegS
	}

	return sample
}

// readWord reads a 16-bit big-endian signed value starting at reg.
func (m *MPU6050) readWord(reg byte) (int16, error) {
	data, err := m.bus.ReadReg(m.addr, reg, 2)
	if err != nil {
		return 0, fmt.Errorf("reading register 0x%02x: %w", reg, err)
	}
	if len(data) < 2 {
		return 0, fmt.Errorf("short read at register 0x%02x: got %d bytes", reg, len(data))
	}
	return int16(binary.BigEndian.Uint16(data)), nil
}
