// Package actuator drives the steering servo and the ESC through whatever PWM
// hardware the vehicle carries.
package actuator

import (
	"fmt"

	"teleop-logger/utils"
)

// Driver is a PWM output stage. Pulse values are raw pulse-width codes as
// understood by the hardware (PCA9685 ticks at the configured frequency).
type Driver interface {
	Configure(freqHz int) error
	SetPulse(channel, value int) error
}

// Closer is implemented by drivers that hold a device handle.
type Closer interface {
	Close() error
}

// Open builds the driver named in cfg.Driver and configures its frequency.
func Open(cfg utils.ActuatorConfig) (Driver, error) {
	var (
		d   Driver
		err error
	)
	switch cfg.Driver {
	case "pca9685":
		d, err = OpenPCA9685(cfg.I2CBus, cfg.I2CAddress)
	case "serial":
		d, err = OpenSerialBridge(cfg.Serial)
	case "dry":
		d = NewDry()
	default:
		return nil, fmt.Errorf("unknown actuator driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, err
	}

	if err := d.Configure(cfg.FrequencyHz); err != nil {
		if c, ok := d.(Closer); ok {
			c.Close()
		}
		return nil, fmt.Errorf("configure %s at %d Hz: %w", cfg.Driver, cfg.FrequencyHz, err)
	}
	utils.L().Info("actuator %s ready at %d Hz", cfg.Driver, cfg.FrequencyHz)
	return d, nil
}
