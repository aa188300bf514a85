package ingest

import (
	"bytes"
	"image"
	"image/jpeg"
	"time"

	"teleop-logger/models"
	"teleop-logger/utils"
)

// SimCamera produces synthetic JPEG frames at a fixed rate so the rig can run
// without a capture device. Each frame is a gradient that scrolls with the
// sequence number, which makes dropped or repeated frames visible in the
// preview.
type SimCamera struct {
	width    int
	height   int
	interval time.Duration
	next     time.Time
	seq      uint64
}

// NewSimCamera builds a simulated camera from the camera section of the
// config.
func NewSimCamera(cfg utils.CameraConfig) *SimCamera {
	fps := cfg.FPS
	if fps <= 0 {
		fps = 30
	}
	w, h := cfg.Resolution.Width, cfg.Resolution.Height
	if w <= 0 || h <= 0 {
		w, h = 320, 240
	}
	return &SimCamera{
		width:    w,
		height:   h,
		interval: time.Second / time.Duration(fps),
	}
}

// Read blocks until the next frame is due, then renders it.
func (c *SimCamera) Read() (models.Frame, bool) {
	now := time.Now()
	if c.next.After(now) {
		time.Sleep(c.next.Sub(now))
	}
	c.next = time.Now().Add(c.interval)

	c.seq++
	img := image.NewRGBA(image.Rect(0, 0, c.width, c.height))
	shift := int(c.seq)
	for y := 0; y < c.height; y++ {
		row := img.Pix[y*img.Stride:]
		for x := 0; x < c.width; x++ {
			px := row[x*4 : x*4+4]
			px[0] = uint8((x + shift) % 256)
			px[1] = uint8(y % 256)
			px[2] = uint8(shift % 256)
			px[3] = 0xFF
		}
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 75}); err != nil {
		return models.Frame{}, false
	}
	return models.Frame{
		Seq:        c.seq,
		CapturedAt: time.Now(),
		Width:      c.width,
		Height:     c.height,
		Format:     "JPEG",
		Data:       buf.Bytes(),
	}, true
}

// Release is a no-op.
func (c *SimCamera) Release() error {
	return nil
}
