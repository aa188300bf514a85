package controller

import (
	"sync/atomic"

	"teleop-logger/models"
)

// LogQueue is the bounded FIFO between the control loop and the logging
// worker. Producers never block: TryPush drops the sample when the queue is
// full. Dropping only ever omits samples, it never reorders them.
type LogQueue struct {
	ch chan models.Sample

	enqueued uint64
	dropped  uint64
}

// NewLogQueue creates a queue holding at most capacity samples.
func NewLogQueue(capacity int) *LogQueue {
	if capacity <= 0 {
		capacity = 256
	}
	return &LogQueue{ch: make(chan models.Sample, capacity)}
}

// TryPush enqueues s without blocking and reports whether it was accepted.
func (q *LogQueue) TryPush(s models.Sample) bool {
	select {
	case q.ch <- s:
		atomic.AddUint64(&q.enqueued, 1)
		return true
	default:
		atomic.AddUint64(&q.dropped, 1)
		return false
	}
}

// Drain discards every sample currently queued and returns how many there
// were.
func (q *LogQueue) Drain() int {
	n := 0
	for {
		select {
		case <-q.ch:
			n++
		default:
			return n
		}
	}
}

// Close queues the sentinel. Unlike TryPush it waits for room, which the
// consumer always makes; no sample may be pushed afterwards.
func (q *LogQueue) Close() {
	q.ch <- models.SentinelSample()
}

// Pop blocks for the next sample. It returns false once the sentinel is
// reached.
func (q *LogQueue) Pop() (models.Sample, bool) {
	s := <-q.ch
	if s.IsSentinel() {
		return models.Sample{}, false
	}
	return s, true
}

// Len returns the number of queued items.
func (q *LogQueue) Len() int {
	return len(q.ch)
}

// Cap returns the queue capacity.
func (q *LogQueue) Cap() int {
	return cap(q.ch)
}

// Stats returns (enqueued, dropped) counts atomically.
func (q *LogQueue) Stats() (uint64, uint64) {
	return atomic.LoadUint64(&q.enqueued), atomic.LoadUint64(&q.dropped)
}
