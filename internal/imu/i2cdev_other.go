//go:build !linux

package imu

import "fmt"

// OpenDevBus is only available on Linux, where the i2c-dev interface lives.
func OpenDevBus(path string) (I2CBus, error) {
	return nil, fmt.Errorf("i2c device %s: i2c-dev is not supported on this platform", path)
}
