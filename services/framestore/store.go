// Package framestore holds the most recent camera frame for every loop that
// wants to look at it.
package framestore

import (
	"sync"
	"sync/atomic"

	"teleop-logger/models"
)

// Store is a single-slot, latest-value container. Each Publish replaces the
// previous frame; readers never see a history, only the newest complete
// frame. Frames go in and come out as deep copies, so nothing a caller holds
// can be changed by another goroutine.
type Store struct {
	mu      sync.Mutex
	frame   models.Frame
	present bool

	published uint64
}

// New returns an empty store.
func New() *Store {
	return &Store{}
}

// Publish stores a copy of f, replacing any earlier frame.
func (s *Store) Publish(f models.Frame) {
	c := f.Clone()
	s.mu.Lock()
	s.frame = c
	s.present = true
	s.mu.Unlock()
	atomic.AddUint64(&s.published, 1)
}

// Snapshot returns a copy of the latest frame, or false if nothing has been
// published yet.
func (s *Store) Snapshot() (models.Frame, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.present {
		return models.Frame{}, false
	}
	return s.frame.Clone(), true
}

// Published returns how many frames have been published so far.
func (s *Store) Published() uint64 {
	return atomic.LoadUint64(&s.published)
}
