package ingest

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/blackjack/webcam"

	"teleop-logger/models"
	"teleop-logger/utils"
)

// V4L2Camera reads MJPEG frames from a Video4Linux device. Every frame the
// driver hands back is already a complete JPEG, so frames can be saved and
// decoded without a conversion step.
type V4L2Camera struct {
	cam     *webcam.Webcam
	timeout uint32
	width   int
	height  int
	format  string
	seq     uint64
}

// fourcc packs a four letter pixel format code.
func fourcc(code string) webcam.PixelFormat {
	if len(code) != 4 {
		panic(fmt.Errorf("four letter code is not four letters (got %d)", len(code)))
	}
	return webcam.PixelFormat(
		uint32(code[0]) |
			(uint32(code[1]) << 8) |
			(uint32(code[2]) << 16) |
			(uint32(code[3]) << 24),
	)
}

// ErrNoJPEGFormat is returned when a device offers no MJPEG/JPEG output.
var ErrNoJPEGFormat = errors.New("camera supports neither MJPG nor JPEG")

// OpenV4L2Camera opens the device, selects an MJPEG format at the closest
// supported size to the configured resolution and starts streaming.
func OpenV4L2Camera(cfg utils.CameraConfig) (*V4L2Camera, error) {
	cam, err := webcam.Open(cfg.DevicePath)
	if err != nil {
		return nil, fmt.Errorf("open camera %s: %w", cfg.DevicePath, err)
	}

	formats := cam.GetSupportedFormats()
	var pxfmt webcam.PixelFormat
	var name string
	for _, code := range []string{"MJPG", "JPEG"} {
		if f := fourcc(code); formats[f] != "" {
			pxfmt, name = f, code
			break
		}
	}
	if pxfmt == 0 {
		cam.Close()
		return nil, fmt.Errorf("camera %s: %w", cfg.DevicePath, ErrNoJPEGFormat)
	}

	w, h := closestFrameSize(cam.GetSupportedFrameSizes(pxfmt), cfg.Resolution.Width, cfg.Resolution.Height)
	_, gotW, gotH, err := cam.SetImageFormat(pxfmt, w, h)
	if err != nil {
		cam.Close()
		return nil, fmt.Errorf("set camera format: %w", err)
	}
	if err := cam.StartStreaming(); err != nil {
		cam.Close()
		return nil, fmt.Errorf("start camera streaming: %w", err)
	}

	timeout := cfg.WaitTimeoutSec
	if timeout <= 0 {
		timeout = 1
	}
	utils.L().Info("camera %s streaming %s %dx%d", cfg.DevicePath, name, gotW, gotH)
	return &V4L2Camera{
		cam:     cam,
		timeout: uint32(timeout),
		width:   int(gotW),
		height:  int(gotH),
		format:  "MJPEG",
	}, nil
}

// closestFrameSize picks the supported size whose area is nearest the
// requested one. Stepwise ranges are clamped to the request.
func closestFrameSize(sizes []webcam.FrameSize, width, height int) (uint32, uint32) {
	if len(sizes) == 0 {
		return uint32(width), uint32(height)
	}
	want := int64(width) * int64(height)
	dist := func(fs webcam.FrameSize) int64 {
		w, h := clampDim(fs.MinWidth, fs.MaxWidth, width), clampDim(fs.MinHeight, fs.MaxHeight, height)
		d := int64(w)*int64(h) - want
		if d < 0 {
			d = -d
		}
		return d
	}
	sort.SliceStable(sizes, func(i, j int) bool { return dist(sizes[i]) < dist(sizes[j]) })
	best := sizes[0]
	return clampDim(best.MinWidth, best.MaxWidth, width), clampDim(best.MinHeight, best.MaxHeight, height)
}

func clampDim(lo, hi uint32, v int) uint32 {
	switch {
	case v < int(lo):
		return lo
	case v > int(hi):
		return hi
	default:
		return uint32(v)
	}
}

// Read waits for the next frame. Timeouts and read errors are misses.
func (c *V4L2Camera) Read() (models.Frame, bool) {
	err := c.cam.WaitForFrame(c.timeout)
	var timeout *webcam.Timeout
	if errors.As(err, &timeout) {
		return models.Frame{}, false
	}
	if err != nil {
		utils.L().Debug("camera wait: %v", err)
		return models.Frame{}, false
	}

	data, err := c.cam.ReadFrame()
	if err != nil || len(data) == 0 {
		return models.Frame{}, false
	}
	c.seq++
	return models.Frame{
		Seq:        c.seq,
		CapturedAt: time.Now(),
		Width:      c.width,
		Height:     c.height,
		Format:     c.format,
		Data:       data,
	}, true
}

// Release stops streaming and closes the device.
func (c *V4L2Camera) Release() error {
	stopErr := c.cam.StopStreaming()
	return errors.Join(stopErr, c.cam.Close())
}
