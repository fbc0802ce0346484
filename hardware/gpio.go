//go:build linux

package hardware

import (
	"fmt"

	"github.com/warthog618/go-gpiocdev"
)

// gpioDevice drives a single requested GPIO line.
type gpioDevice struct {
	line *gpiocdev.Line
}

func newGPIODevice(cfg DeviceConfig) (Device, error) {
	chip := cfg.Chip
	if chip == "" {
		chip = "gpiochip0"
	}
	line, err := gpiocdev.RequestLine(chip, cfg.Pin, gpiocdev.AsOutput(0))
	if err != nil {
		return nil, fmt.Errorf("request line %s:%d: %w", chip, cfg.Pin, err)
	}
	return &gpioDevice{line: line}, nil
}

func (d *gpioDevice) TurnOn() error {
	return d.line.SetValue(1)
}

func (d *gpioDevice) TurnOff() error {
	return d.line.SetValue(0)
}

func (d *gpioDevice) Release() error {
	return d.line.Close()
}
