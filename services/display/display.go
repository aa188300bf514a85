// Package display defines the preview sink the rig renders frames into.
package display

import (
	"time"

	"teleop-logger/models"
)

// Display renders frames and reports key presses. Implementations may be
// tied to the OS thread that created them; callers open, use and close a
// Display from a single goroutine.
type Display interface {
	Show(f models.Frame) error
	// PollKey waits up to timeout for a key press.
	PollKey(timeout time.Duration) (byte, bool)
	Close() error
}

// Opener creates a Display on the calling goroutine.
type Opener func() (Display, error)

// Headless discards frames and never reports a key. PollKey still waits for
// the timeout so a preview loop keeps its cadence.
type Headless struct{}

func (Headless) Show(models.Frame) error { return nil }

func (Headless) PollKey(timeout time.Duration) (byte, bool) {
	time.Sleep(timeout)
	return 0, false
}

func (Headless) Close() error { return nil }

// OpenHeadless is an Opener for Headless.
func OpenHeadless() (Display, error) {
	return Headless{}, nil
}
