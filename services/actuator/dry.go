package actuator

import (
	"sync"

	"teleop-logger/utils"
)

// Dry logs commands instead of driving hardware and remembers the last pulse
// per channel.
type Dry struct {
	mu     sync.Mutex
	freq   int
	pulses map[int]int
}

func NewDry() *Dry {
	return &Dry{pulses: make(map[int]int)}
}

func (d *Dry) Configure(freqHz int) error {
	d.mu.Lock()
	d.freq = freqHz
	d.mu.Unlock()
	utils.L().Debug("dry actuator: frequency=%d Hz", freqHz)
	return nil
}

func (d *Dry) SetPulse(channel, value int) error {
	d.mu.Lock()
	d.pulses[channel] = value
	d.mu.Unlock()
	utils.L().Debug("dry actuator: ch%d=%d", channel, value)
	return nil
}

// Pulse returns the last value sent to channel.
func (d *Dry) Pulse(channel int) (int, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	v, ok := d.pulses[channel]
	return v, ok
}
