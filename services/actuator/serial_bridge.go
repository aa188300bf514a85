package actuator

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"sync"

	"go.bug.st/serial"

	"teleop-logger/utils"
)

// SerialBridge drives a microcontroller that generates the PWM signals and
// listens on a serial line for one ASCII command per line:
//
//	F <hz>              set output frequency
//	P <channel> <value> set pulse-width code on a channel
//
// Repeated pulses on a channel are not resent.
type SerialBridge struct {
	mu    sync.Mutex
	port  io.WriteCloser
	w     *bufio.Writer
	cache map[int]int
}

// OpenSerialBridge opens the configured serial port.
func OpenSerialBridge(cfg utils.SerialConfig) (*SerialBridge, error) {
	mode, err := SerialMode(cfg)
	if err != nil {
		return nil, err
	}
	port, err := serial.Open(cfg.Port, mode)
	if err != nil {
		return nil, fmt.Errorf("open serial %s: %w", cfg.Port, err)
	}
	return NewSerialBridge(port), nil
}

// NewSerialBridge wraps an already open port.
func NewSerialBridge(port io.WriteCloser) *SerialBridge {
	return &SerialBridge{
		port:  port,
		w:     bufio.NewWriter(port),
		cache: make(map[int]int),
	}
}

// SerialMode converts the serial section of the config into the mode
// go.bug.st/serial expects, applying 8N1 defaults.
func SerialMode(cfg utils.SerialConfig) (*serial.Mode, error) {
	mode := &serial.Mode{
		BaudRate: cfg.BaudRate,
		DataBits: cfg.DataBits,
		StopBits: serial.OneStopBit,
		Parity:   serial.NoParity,
	}
	if mode.BaudRate <= 0 {
		mode.BaudRate = 115200
	}
	if mode.DataBits == 0 {
		mode.DataBits = 8
	}
	if mode.DataBits < 5 || mode.DataBits > 8 {
		return nil, fmt.Errorf("invalid data bits %d: must be between 5 and 8", cfg.DataBits)
	}

	switch cfg.StopBits {
	case 0, 1:
	case 2:
		mode.StopBits = serial.TwoStopBits
	default:
		return nil, fmt.Errorf("invalid stop bits %d: supported values are 1 or 2", cfg.StopBits)
	}

	switch strings.ToUpper(strings.TrimSpace(cfg.Parity)) {
	case "", "N", "NONE":
	case "E", "EVEN":
		mode.Parity = serial.EvenParity
	case "O", "ODD":
		mode.Parity = serial.OddParity
	default:
		return nil, fmt.Errorf("unsupported parity %q: expected N, E, or O", cfg.Parity)
	}
	return mode, nil
}

func (b *SerialBridge) Configure(freqHz int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.send("F %d\n", freqHz)
}

func (b *SerialBridge) SetPulse(channel, value int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if old, ok := b.cache[channel]; ok && old == value {
		return nil
	}
	if err := b.send("P %d %d\n", channel, value); err != nil {
		return err
	}
	b.cache[channel] = value
	return nil
}

func (b *SerialBridge) send(format string, args ...any) error {
	if _, err := fmt.Fprintf(b.w, format, args...); err != nil {
		return fmt.Errorf("serial write: %w", err)
	}
	if err := b.w.Flush(); err != nil {
		// bufio errors are sticky; drop the failed command so the next one goes out.
		b.w.Reset(b.port)
		return fmt.Errorf("serial flush: %w", err)
	}
	return nil
}

// Close closes the serial port.
func (b *SerialBridge) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.port.Close()
}
