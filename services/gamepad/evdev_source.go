// Package gamepad turns a Linux input device into a stream of decoded
// button/axis events.
package gamepad

import (
	"errors"
	"fmt"
	"sync"

	"github.com/holoplot/go-evdev"

	"teleop-logger/models"
	"teleop-logger/utils"
)

// ErrNotFound is returned by Find when no device carries the requested name.
var ErrNotFound = errors.New("no matching input device")

// Source reads events from one evdev device.
type Source struct {
	dev   *evdev.InputDevice
	names nameTable

	closeOnce sync.Once
	closeErr  error
}

// Find opens the first input device whose name matches exactly. bindings are
// the code names the caller cares about; events for those codes are reported
// under exactly those names, even where the kernel has aliases
// (BTN_WEST is also BTN_Y).
func Find(name string, bindings ...string) (*Source, error) {
	paths, err := evdev.ListDevicePaths()
	if err != nil {
		return nil, fmt.Errorf("list input devices: %w", err)
	}
	for _, p := range paths {
		if p.Name != name {
			continue
		}
		dev, err := evdev.Open(p.Path)
		if err != nil {
			return nil, fmt.Errorf("open %s (%s): %w", p.Path, p.Name, err)
		}
		utils.L().Info("gamepad %q opened at %s", p.Name, p.Path)
		return &Source{dev: dev, names: newNameTable(bindings)}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
}

// Next blocks until the next button or axis event. Sync and other event
// types are skipped. After Close it returns an error.
func (s *Source) Next() (models.InputEvent, error) {
	for {
		ev, err := s.dev.ReadOne()
		if err != nil {
			return models.InputEvent{}, fmt.Errorf("read input event: %w", err)
		}
		if e, ok := s.names.translate(ev.Type, ev.Code, ev.Value); ok {
			return e, nil
		}
	}
}

// Close releases the device. It is safe to call more than once and unblocks
// a concurrent Next.
func (s *Source) Close() error {
	s.closeOnce.Do(func() {
		s.closeErr = s.dev.Close()
	})
	return s.closeErr
}

// nameTable resolves event codes to the names the bindings use.
type nameTable struct {
	keys map[evdev.EvCode]string
	abs  map[evdev.EvCode]string
}

func newNameTable(bindings []string) nameTable {
	t := nameTable{
		keys: make(map[evdev.EvCode]string),
		abs:  make(map[evdev.EvCode]string),
	}
	for _, b := range bindings {
		if code, ok := evdev.KEYFromString[b]; ok {
			t.keys[code] = b
		}
		if code, ok := evdev.ABSFromString[b]; ok {
			t.abs[code] = b
		}
	}
	return t
}

// translate decodes one raw event. Key autorepeat (value 2) is dropped.
func (t nameTable) translate(typ evdev.EvType, code evdev.EvCode, value int32) (models.InputEvent, bool) {
	switch typ {
	case evdev.EV_KEY:
		if value != 0 && value != 1 {
			return models.InputEvent{}, false
		}
		name, ok := t.keys[code]
		if !ok {
			name = evdev.CodeName(typ, code)
		}
		return models.Button(name, value == 1), true
	case evdev.EV_ABS:
		name, ok := t.abs[code]
		if !ok {
			name = evdev.CodeName(typ, code)
		}
		return models.Axis(name, int(value)), true
	default:
		return models.InputEvent{}, false
	}
}
