//go:build !linux

package hardware

import "errors"

func newGPIODevice(cfg DeviceConfig) (Device, error) {
	return nil, errors.New("gpio devices are only supported on linux")
}
