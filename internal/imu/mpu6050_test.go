package imu

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ridewatch/sentinel/internal/fusion"
)

func TestNewMPU6050_Wake(t *testing.T) {
	bus := NewMockBus()

	m, err := NewMPU6050(bus, DefaultAddress, zap.NewNop())
	require.NoError(t, err)
	assert.True(t, m.Initialized())

	// Wake writes 0x00 to the power management register.
	assert.Equal(t, []byte{0x00}, bus.Writes[regPowerMgmt1])
}

func TestNewMPU6050_WakeFailureDegrades(t *testing.T) {
	bus := NewMockBus()
	bus.WriteErr = errors.New("i2c bus fault")

	m, err := NewMPU6050(bus, DefaultAddress, zap.NewNop())
	require.Error(t, err)
	assert.False(t, m.Initialized())

	// Degraded driver reads zeros, never errors.
	assert.Equal(t, fusion.MotionSample{}, m.ReadSample())
}

func TestReadSample_ScalesRawValues(t *testing.T) {
	bus := NewMockBus()

	// 16384 LSB = 1 g; 131 LSB = 1 deg/s.
	bus.SetWord(regAccelXHigh, 16384)
	bus.SetWord(regAccelYHigh, -16384)
	bus.SetWord(regAccelZHigh, 8192)
	bus.SetWord(regGyroXHigh, 131)
	bus.SetWord(regGyroYHigh, -262)
	bus.SetWord(regGyroZHigh, 0)

	m, err := NewMPU6050(bus, DefaultAddress, zap.NewNop())
	require.NoError(t, err)

	sample := m.ReadSample()
	assert.InDelta(t, 1.0, sample.Accel[0], 1e-9)
	assert.InDelta(t, -1.0, sample.Accel[1], 1e-9)
	assert.InDelta(t, 0.5, sample.Accel[2], 1e-9)
	assert.InDelta(t, 1.0, sample.Gyro[0], 1e-9)
	assert.InDelta(t, -2.0, sample.Gyro[1], 1e-9)
	assert.InDelta(t, 0.0, sample.Gyro[2], 1e-9)
}

func TestReadSample_ReadFaultDegradesToZero(t *testing.T) {
	bus := NewMockBus()
	m, err := NewMPU6050(bus, DefaultAddress, zap.NewNop())
	require.NoError(t, err)

	bus.ReadErr = errors.New("register read fault")
	assert.Equal(t, fusion.MotionSample{}, m.ReadSample())
}
