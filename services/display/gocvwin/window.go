// Package gocvwin shows the preview in an OpenCV window.
package gocvwin

import (
	"fmt"
	"time"

	"gocv.io/x/gocv"

	"teleop-logger/models"
	"teleop-logger/services/display"
)

// Window is an OpenCV highgui window. HighGUI is not thread safe: create,
// use and close a Window from one goroutine locked to its OS thread.
type Window struct {
	win *gocv.Window
}

// Opener returns a display.Opener that creates a window named name.
func Opener(name string) display.Opener {
	return func() (display.Display, error) {
		return Open(name), nil
	}
}

// Open creates the window.
func Open(name string) *Window {
	return &Window{win: gocv.NewWindow(name)}
}

// Show decodes the JPEG frame and draws it.
func (w *Window) Show(f models.Frame) error {
	mat, err := gocv.IMDecode(f.Data, gocv.IMReadColor)
	if err != nil {
		return fmt.Errorf("decode frame %d: %w", f.Seq, err)
	}
	defer mat.Close()
	if mat.Empty() {
		return fmt.Errorf("decode frame %d: empty image", f.Seq)
	}
	w.win.IMShow(mat)
	return nil
}

// PollKey waits up to timeout (at least 1 ms, HighGUI's resolution) for a key.
func (w *Window) PollKey(timeout time.Duration) (byte, bool) {
	ms := int(timeout / time.Millisecond)
	if ms < 1 {
		ms = 1
	}
	key := w.win.WaitKey(ms)
	if key < 0 {
		return 0, false
	}
	return byte(key & 0xFF), true
}

func (w *Window) Close() error {
	return w.win.Close()
}
