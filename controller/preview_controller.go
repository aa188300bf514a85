package controller

import (
	"context"
	"runtime"
	"time"

	"teleop-logger/services/display"
	"teleop-logger/services/framestore"
	"teleop-logger/utils"
)

// PreviewController is the preview loop: it shows the newest frame and
// watches for the quit key, which stops the whole rig.
type PreviewController struct {
	frames   *framestore.Store
	open     display.Opener
	quitKey  byte
	interval time.Duration
	quit     func()

	shown uint64
}

// NewPreviewController builds a preview loop. interval is how long each
// iteration waits for a key; it is also the loop's frame cadence, so shorter
// means lower quit latency and higher CPU use. quit is called once when the
// quit key is seen.
func NewPreviewController(frames *framestore.Store, open display.Opener, quitKey byte, interval time.Duration, quit func()) *PreviewController {
	if interval <= 0 {
		interval = time.Millisecond
	}
	return &PreviewController{
		frames:   frames,
		open:     open,
		quitKey:  quitKey,
		interval: interval,
		quit:     quit,
	}
}

// Run renders until ctx is cancelled or the quit key is pressed. The display
// is opened and closed on this goroutine, which stays on one OS thread.
func (p *PreviewController) Run(ctx context.Context) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	disp, err := p.open()
	if err != nil {
		utils.L().Warn("preview unavailable: %v", err)
		return
	}
	defer func() {
		if err := disp.Close(); err != nil {
			utils.L().Warn("close preview: %v", err)
		}
		utils.L().Info("preview stopped  (frames_shown=%d)", p.shown)
	}()
	utils.L().Info("preview started (press %q to quit)", p.quitKey)

	var lastSeq uint64
	for ctx.Err() == nil {
		if f, ok := p.frames.Snapshot(); ok && f.Seq != lastSeq {
			if err := disp.Show(f); err != nil {
				utils.L().Debug("preview: %v", err)
			} else {
				p.shown++
			}
			lastSeq = f.Seq
		}

		if key, ok := disp.PollKey(p.interval); ok && key == p.quitKey {
			utils.L().Info("quit key pressed, stopping")
			p.quit()
			return
		}
	}
}
