//go:build linux

package imu

import (
	"fmt"
	"os"
	"sync"

	"golang.org/x/sys/unix"
)

// ioctl request to bind the fd to a slave address, from linux/i2c-dev.h.
const i2cSlave = 0x0703

// DevBus is an I2CBus backed by a Linux /dev/i2c-* character device.
type DevBus struct {
	mu   sync.Mutex
	file *os.File
	addr int
}

// OpenDevBus opens the given i2c-dev device, e.g. "/dev/i2c-0".
func OpenDevBus(path string) (*DevBus, error) {
	file, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("opening i2c device %s: %w", path, err)
	}
	return &DevBus{file: file, addr: -1}, nil
}

func (b *DevBus) setAddr(addr byte) error {
	if b.addr == int(addr) {
		return nil
	}
	if err := unix.IoctlSetInt(int(b.file.Fd()), i2cSlave, int(addr)); err != nil {
		return fmt.Errorf("selecting i2c slave 0x%02x: %w", addr, err)
	}
	b.addr = int(addr)
	return nil
}

// WriteReg writes data to a register on the device at addr.
func (b *DevBus) WriteReg(addr, reg byte, data []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.setAddr(addr); err != nil {
		return err
	}
	buf := append([]byte{reg}, data...)
	if _, err := b.file.Write(buf); err != nil {
		return fmt.Errorf("writing register 0x%02x: %w", reg, err)
	}
	return nil
}

// ReadReg reads n bytes starting at a register on the device at addr.
func (b *DevBus) ReadReg(addr, reg byte, n int) ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.setAddr(addr); err != nil {
		return nil, err
	}
	if _, err := b.file.Write([]byte{reg}); err != nil {
		return nil, fmt.Errorf("selecting register 0x%02x: %w", reg, err)
	}
	buf := make([]byte, n)
	if _, err := b.file.Read(buf); err != nil {
		return nil, fmt.Errorf("reading register 0x%02x: %w", reg, err)
	}
	return buf, nil
}

// Close closes the underlying device file.
func (b *DevBus) Close() error {
	return b.file.Close()
}
