// Package imu drives the MPU-6050 inertial sensor over an I2C capability
// interface and converts raw register values into engineering units.
package imu

import (
	"sync"
)

// I2CBus is the minimal register-level interface the driver needs. Production
// code uses the /dev/i2c device implementation; tests use MockBus.
type I2CBus interface {
	// WriteReg writes data to a register on the device at addr.
	WriteReg(addr, reg byte, data []byte) error
	// ReadReg reads n bytes starting at a register on the device at addr.
	ReadReg(addr, reg byte, n int) ([]byte, error)
	// Close releases the bus.
	Close() error
}

// MockBus implements I2CBus for testing. Register contents are keyed by
// register address; reads of unset registers return zeros.
type MockBus struct {
	mu        sync.Mutex
	Registers map[byte][]byte
	Writes    map[byte][]byte
	WriteErr  error
	ReadErr   error
	Closed    bool
}

// NewMockBus creates an empty MockBus.
func NewMockBus() *MockBus {
	return &MockBus{
		Registers: make(map[byte][]byte),
		Writes:    make(map[byte][]byte),
	}
}

// SetWord stores a 16-bit big-endian value at the given register, matching
// the MPU-6050 register layout.
func (m *MockBus) SetWord(reg byte, val int16) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u := uint16(val)
	m.Registers[reg] = []byte{byte(u >> 8), byte(u & 0xFF)}
}

// WriteReg records the write.
func (m *MockBus) WriteReg(addr, reg byte, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.WriteErr != nil {
		return m.WriteErr
	}
	m.Writes[reg] = append([]byte(nil), data...)
	return nil
}

// ReadReg returns the stored register contents, zero-padded to n bytes.
func (m *MockBus) ReadReg(addr, reg byte, n int) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ReadErr != nil {
		return nil, m.ReadErr
	}
	out := make([]byte, n)
	copy(out, m.Registers[reg])
	return out, nil
}

// Close marks the bus closed.
func (m *MockBus) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Closed = true
	return nil
}
