// Package gps acquires position fixes from a streaming NMEA receiver on a
// serial port.
package gps

import (
	"io"
	"time"

	"go.bug.st/serial"
)

// SerialPorter defines the minimal interface needed for the receiver's serial
// port.
type SerialPorter interface {
	io.Reader
	io.Closer
}

// OpenPort opens the GPS serial port at the given path with the standard
// receiver settings (9600 8N1).
func OpenPort(path string) (serial.Port, error) {
	mode := &serial.Mode{
		BaudRate: 9600,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: 1,
	}
	return serial.Open(path, mode)
}

// MockSerialPort implements SerialPorter for testing. Reads drain ReadData;
// an optional per-read delay simulates a slow receiver.
type MockSerialPort struct {
	ReadData  []byte
	ReadError error
	ReadDelay time.Duration
	Closed    bool
}

func (m *MockSerialPort) Read(p []byte) (n int, err error) {
	if m.ReadError != nil {
		return 0, m.ReadError
	}

	if m.ReadDelay > 0 {
		time.Sleep(m.ReadDelay)
	}

	if len(m.ReadData) == 0 {
		return 0, io.EOF
	}

	n = copy(p, m.ReadData)
	m.ReadData = m.ReadData[n:]
	return n, nil
}

func (m *MockSerialPort) Close() error {
	m.Closed = true
	return nil
}
