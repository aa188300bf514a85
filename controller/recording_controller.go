package controller

import (
	"sync/atomic"

	"teleop-logger/models"
	"teleop-logger/services/framestore"
	"teleop-logger/utils"
)

// Persister saves one (frame, sample) pair and returns the record it wrote.
type Persister interface {
	Persist(f models.Frame, s models.Sample) (models.LogRecord, error)
}

// RecordingController is the logging worker. It takes samples off the log
// queue in order, pairs each with the newest frame in the store and hands the
// pair to the persister.
//
// A sample that arrives before any frame exists is dropped: a row without an
// image is useless for training. Persist errors are logged and counted but
// never stop the worker, so the queue keeps draining and shutdown cannot
// stall on it.
type RecordingController struct {
	queue  *LogQueue
	frames *framestore.Store
	sink   Persister

	written uint64
	noFrame uint64
	failed  uint64
}

// NewRecordingController wires the worker to its queue, frame store and sink.
func NewRecordingController(queue *LogQueue, frames *framestore.Store, sink Persister) *RecordingController {
	return &RecordingController{queue: queue, frames: frames, sink: sink}
}

// Run consumes samples until the queue's sentinel. Everything queued before
// the sentinel is processed.
func (rc *RecordingController) Run() {
	utils.L().Info("recording controller started")
	for {
		s, ok := rc.queue.Pop()
		if !ok {
			break
		}
		rc.process(s)
	}
	w, nf, f := rc.Stats()
	utils.L().Info("recording controller stopped  (rows_written=%d, no_frame=%d, failed=%d)", w, nf, f)
}

func (rc *RecordingController) process(s models.Sample) {
	frame, ok := rc.frames.Snapshot()
	if !ok {
		atomic.AddUint64(&rc.noFrame, 1)
		return
	}
	rec, err := rc.sink.Persist(frame, s)
	if err != nil {
		atomic.AddUint64(&rc.failed, 1)
		utils.L().Error("persist sample steer=%d thr=%d: %v", s.Steer, s.Throttle, err)
		return
	}
	atomic.AddUint64(&rc.written, 1)
	utils.L().Debug("[LOG] %s steer=%d thr=%d", rec.ImagePath, rec.SteeringPulse, rec.ThrottlePulse)
}

// Stats returns (written, noFrame, failed) counts atomically.
func (rc *RecordingController) Stats() (uint64, uint64, uint64) {
	return atomic.LoadUint64(&rc.written), atomic.LoadUint64(&rc.noFrame), atomic.LoadUint64(&rc.failed)
}
