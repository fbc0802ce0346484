package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"

	"rplethub/hardware"
)

// config is the whole application configuration, immutable after load.
type config struct {
	// Port the Rpleth TCP server listens on.
	Port int `yaml:"port"`

	// Names of the feedback devices, resolved through the hardware
	// manager at start-up. Either may be empty.
	GreenLed string `yaml:"green_led"`
	Buzzer   string `yaml:"buzzer"`

	// Listening port of the HTTP and websocket monitor.
	HTTPPort string `yaml:"http_port"`

	// Loggo configuration string.
	LogLevels string `yaml:"log_levels"`

	// GPIO-backed devices available for lookup by name.
	Devices map[string]hardware.DeviceConfig `yaml:"devices"`

	// MQTT event publishing; disabled when host is empty.
	MQTT mqttConfig `yaml:"mqtt"`
}

func defaultConfig() *config {
	return &config{
		Port:      4242,
		HTTPPort:  "8899",
		LogLevels: "<root>=WARNING;tcp=INFO;rpleth=INFO;queue=INFO;ws=INFO;mqtt=INFO;main=INFO",
	}
}

// fromFile loads the configuration from a yaml file.
func (c *config) fromFile(file string) error {
	f, err := os.Open(file)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := yaml.NewDecoder(f).Decode(c); err != nil {
		return fmt.Errorf("decode %s: %w", file, err)
	}
	if c.Port == 0 {
		c.Port = 4242
	}
	return nil
}
