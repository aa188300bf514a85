package actuator

import (
	"fmt"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/devices/v3/pca9685"
	"periph.io/x/host/v3"
)

// PCA9685 drives a 16-channel PCA9685 over I2C. A pulse value is the
// "off" tick count out of 4096 with the "on" edge at tick 0.
type PCA9685 struct {
	bus i2c.BusCloser
	dev *pca9685.Dev
}

// OpenPCA9685 initialises the host drivers and opens the chip on the given
// bus ("" picks the first bus). address 0 means the chip default 0x40.
func OpenPCA9685(busName string, address uint16) (*PCA9685, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("init periph host: %w", err)
	}
	bus, err := i2creg.Open(busName)
	if err != nil {
		return nil, fmt.Errorf("open i2c bus %q: %w", busName, err)
	}
	if address == 0 {
		address = pca9685.I2CAddr
	}
	dev, err := pca9685.NewI2C(bus, address)
	if err != nil {
		bus.Close()
		return nil, fmt.Errorf("pca9685 at 0x%02x: %w", address, err)
	}
	return &PCA9685{bus: bus, dev: dev}, nil
}

func (p *PCA9685) Configure(freqHz int) error {
	return p.dev.SetPwmFreq(physic.Frequency(freqHz) * physic.Hertz)
}

func (p *PCA9685) SetPulse(channel, value int) error {
	return p.dev.SetPwm(channel, 0, gpio.Duty(value))
}

// Close releases the I2C bus.
func (p *PCA9685) Close() error {
	return p.bus.Close()
}
