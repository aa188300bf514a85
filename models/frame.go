package models

import "time"

// Frame holds one captured camera image with its metadata.
// Data is the encoded image (MJPEG cameras hand back a complete JPEG per
// frame). A Frame that has been published to a store must not be mutated;
// use Clone to get an independent copy.
type Frame struct {
	Seq        uint64    `json:"seq"`
	CapturedAt time.Time `json:"captured_at"`
	Width      int       `json:"width"`
	Height     int       `json:"height"`
	Format     string    `json:"format"` // MJPEG, JPEG …
	Data       []byte    `json:"-"`
}

// Clone returns a deep copy of f. The pixel buffer is never shared.
func (f Frame) Clone() Frame {
	c := f
	if f.Data != nil {
		c.Data = make([]byte, len(f.Data))
		copy(c.Data, f.Data)
	}
	return c
}

// Empty reports whether the frame carries no image data.
func (f Frame) Empty() bool {
	return len(f.Data) == 0
}
