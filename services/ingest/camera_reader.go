package ingest

import (
	"context"
	"sync/atomic"

	"teleop-logger/models"
	"teleop-logger/services/framestore"
	"teleop-logger/utils"
)

// Camera is a frame source. Read blocks until a frame is available or the
// device gives up; false means "no frame this time" and is never fatal.
type Camera interface {
	Read() (models.Frame, bool)
	Release() error
}

// CameraReader is the capture loop: it pulls frames from a Camera and
// publishes each one into the frame store, overwriting the previous frame.
type CameraReader struct {
	cam   Camera
	store *framestore.Store

	captured uint64
	missed   uint64
}

// NewCameraReader wires a camera to the store it feeds.
func NewCameraReader(cam Camera, store *framestore.Store) *CameraReader {
	return &CameraReader{cam: cam, store: store}
}

// Run captures until ctx is cancelled, then releases the camera. The stop
// check happens between reads; a read in progress always completes first.
func (r *CameraReader) Run(ctx context.Context) {
	defer r.release()
	utils.L().Info("camera reader started")

	for ctx.Err() == nil {
		frame, ok := r.cam.Read()
		if !ok {
			atomic.AddUint64(&r.missed, 1)
			continue
		}
		if ctx.Err() != nil {
			// Stop arrived during the read; nothing may be published after it.
			break
		}
		r.store.Publish(frame)
		atomic.AddUint64(&r.captured, 1)
	}
}

func (r *CameraReader) release() {
	if err := r.cam.Release(); err != nil {
		utils.L().Warn("camera release: %v", err)
	}
	utils.L().Info("camera reader stopped  (captured=%d, missed=%d)",
		atomic.LoadUint64(&r.captured), atomic.LoadUint64(&r.missed))
}

// Stats returns (captured, missed) counts atomically.
func (r *CameraReader) Stats() (uint64, uint64) {
	return atomic.LoadUint64(&r.captured), atomic.LoadUint64(&r.missed)
}
