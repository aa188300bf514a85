package controller

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"teleop-logger/services/actuator"
	"teleop-logger/services/display"
	"teleop-logger/services/framestore"
	"teleop-logger/services/ingest"
	"teleop-logger/utils"
)

// ErrControllerNotFound is returned by Run when the gamepad cannot be opened.
var ErrControllerNotFound = errors.New("controller not found")

var (
	errQuitKey  = errors.New("quit key pressed")
	errShutdown = errors.New("rig shutting down")
)

// InputOpener opens the gamepad; bindings are the event names the control
// loop needs.
type InputOpener func(bindings ...string) (EventSource, error)

// RigDeps are the hardware-facing collaborators of a rig.
type RigDeps struct {
	Camera    ingest.Camera
	Display   display.Opener // nil disables the preview loop
	Driver    actuator.Driver
	Sink      Persister
	OpenInput InputOpener
}

// RigStats is a point-in-time view of every counter in the pipeline.
type RigStats struct {
	FramesCaptured uint64
	FramesMissed   uint64
	SamplesQueued  uint64
	SamplesDropped uint64
	RowsWritten    uint64
	NoFrame        uint64
	PersistFailed  uint64
}

// RigController owns the capture, preview and logging goroutines and runs
// the control loop on the calling goroutine.
//
//	camera ──► CameraReader ──► framestore ──┬──► PreviewController ──► window
//	                                         │
//	gamepad ──► ControlController ──► LogQueue ──► RecordingController ──► CSV + JPEG
//	                     │
//	                     └──► actuator
type RigController struct {
	store    *framestore.Store
	queue    *LogQueue
	camera   *ingest.CameraReader
	recorder *RecordingController
	control  *ControlController

	openDisplay   display.Opener
	quitKey       byte
	pollInterval  time.Duration
	openInput     InputOpener
	statsInterval time.Duration
}

// NewRigController assembles the pipeline. Nothing runs until Run.
func NewRigController(cfg *utils.RigConfig, deps RigDeps) *RigController {
	store := framestore.New()
	queue := NewLogQueue(cfg.Recording.QueueCapacity)

	r := &RigController{
		store:         store,
		queue:         queue,
		camera:        ingest.NewCameraReader(deps.Camera, store),
		recorder:      NewRecordingController(queue, store, deps.Sink),
		control:       NewControlController(cfg, deps.Driver, queue),
		openDisplay:   deps.Display,
		pollInterval:  time.Duration(cfg.Preview.PollIntervalMs) * time.Millisecond,
		openInput:     deps.OpenInput,
		statsInterval: time.Duration(cfg.Recording.StatsInterval) * time.Second,
	}
	if len(cfg.Preview.QuitKey) > 0 {
		r.quitKey = cfg.Preview.QuitKey[0]
	}
	return r
}

// Store exposes the shared frame store.
func (r *RigController) Store() *framestore.Store {
	return r.store
}

// Run starts the background loops, opens the gamepad and runs the control
// loop until ctx is cancelled, the quit key is pressed or the input device
// fails. Whatever the exit path, every goroutine started here has finished
// and the logging queue has been drained when Run returns.
func (r *RigController) Run(parent context.Context) error {
	ctx, cancel := context.WithCancelCause(parent)
	defer cancel(nil)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		r.camera.Run(ctx)
	}()

	if r.openDisplay != nil {
		preview := NewPreviewController(r.store, r.openDisplay, r.quitKey, r.pollInterval,
			func() { cancel(errQuitKey) })
		wg.Add(1)
		go func() {
			defer wg.Done()
			preview.Run(ctx)
		}()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		r.recorder.Run()
	}()

	if r.statsInterval > 0 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.reportStats(ctx)
		}()
	}

	defer func() {
		utils.L().Info("shutting down: stopping loops and draining log queue…")
		cancel(errShutdown)
		r.queue.Close()
		wg.Wait()
		utils.L().Info("all loops stopped")
	}()

	src, err := r.openInput(r.control.Bindings()...)
	if err != nil {
		utils.L().Error("no controller found: %v", err)
		return fmt.Errorf("%w: %w", ErrControllerNotFound, err)
	}
	return r.control.Run(ctx, src)
}

func (r *RigController) reportStats(ctx context.Context) {
	ticker := time.NewTicker(r.statsInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s := r.Stats()
			utils.L().Info("── stats ─────────────────────────")
			utils.L().Info("  camera   captured=%d  missed=%d", s.FramesCaptured, s.FramesMissed)
			utils.L().Info("  queue    queued=%d  dropped=%d  resident=%d/%d", s.SamplesQueued, s.SamplesDropped, r.queue.Len(), r.queue.Cap())
			utils.L().Info("  logger   written=%d  no_frame=%d  failed=%d", s.RowsWritten, s.NoFrame, s.PersistFailed)
			utils.L().Info("──────────────────────────────────")
		}
	}
}

// Stats collects the pipeline counters.
func (r *RigController) Stats() RigStats {
	var s RigStats
	s.FramesCaptured, s.FramesMissed = r.camera.Stats()
	s.SamplesQueued, s.SamplesDropped = r.queue.Stats()
	s.RowsWritten, s.NoFrame, s.PersistFailed = r.recorder.Stats()
	return s
}
