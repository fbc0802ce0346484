// Package hardware resolves named feedback devices (LEDs, buzzers) into
// on/off-capable handles. Devices are declared in the application
// configuration and opened once at start-up; looking up a name that was
// never declared yields nil, which callers treat as "no device".
package hardware

import "fmt"

// Device is an on/off-capable output device.
type Device interface {
	TurnOn() error
	TurnOff() error

	// Release releases the underlying hardware resource.
	Release() error
}

// DeviceConfig describes a single GPIO-backed device.
type DeviceConfig struct {
	// Chip is the gpiochip device name. Defaults to "gpiochip0".
	Chip string `yaml:"chip"`

	// Pin is the line offset on the chip.
	Pin int `yaml:"pin"`
}

// Manager resolves device names to live handles.
type Manager interface {
	// GetDevice returns the named device, or nil when the name is empty
	// or not configured.
	GetDevice(name string) Device

	// Release releases every managed device.
	Release() error
}

type manager struct {
	devices map[string]Device
}

// NewManager opens every configured device. If any single device fails
// to open, the ones already opened are released and the error is
// returned; a partially working feedback setup is worse than a loud
// failure at start-up.
func NewManager(cfgs map[string]DeviceConfig) (Manager, error) {
	m := &manager{devices: make(map[string]Device, len(cfgs))}
	for name, dc := range cfgs {
		d, err := newGPIODevice(dc)
		if err != nil {
			m.Release()
			return nil, fmt.Errorf("device %q: %w", name, err)
		}
		m.devices[name] = d
	}
	return m, nil
}

func (m *manager) GetDevice(name string) Device {
	if name == "" {
		return nil
	}
	return m.devices[name]
}

func (m *manager) Release() error {
	var firstErr error
	for _, d := range m.devices {
		d.TurnOff()
		if err := d.Release(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
