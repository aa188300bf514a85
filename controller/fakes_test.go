package controller

import (
	"errors"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"teleop-logger/models"
	"teleop-logger/services/display"
	"teleop-logger/utils"
)

var errClosed = errors.New("source closed")

// fakeDriver remembers every pulse it was sent.
type fakeDriver struct {
	mu     sync.Mutex
	freq   int
	pulses map[int][]int
	err    error
}

func newFakeDriver() *fakeDriver {
	return &fakeDriver{pulses: make(map[int][]int)}
}

func (d *fakeDriver) Configure(freqHz int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.freq = freqHz
	return nil
}

func (d *fakeDriver) SetPulse(channel, value int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.pulses[channel] = append(d.pulses[channel], value)
	return d.err
}

func (d *fakeDriver) last(channel int) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	p := d.pulses[channel]
	if len(p) == 0 {
		return -1
	}
	return p[len(p)-1]
}

// scriptSource replays events, then either returns io.EOF or blocks until
// closed.
type scriptSource struct {
	events   []models.InputEvent
	block    bool
	before   func() // runs before the first event is returned
	started  sync.Once
	closed   chan struct{}
	closeCnt int32
	pos      int
}

func newScriptSource(block bool, events ...models.InputEvent) *scriptSource {
	return &scriptSource{events: events, block: block, closed: make(chan struct{})}
}

func (s *scriptSource) Next() (models.InputEvent, error) {
	s.started.Do(func() {
		if s.before != nil {
			s.before()
		}
	})
	select {
	case <-s.closed:
		return models.InputEvent{}, errClosed
	default:
	}
	if s.pos < len(s.events) {
		ev := s.events[s.pos]
		s.pos++
		return ev, nil
	}
	if !s.block {
		return models.InputEvent{}, io.EOF
	}
	<-s.closed
	return models.InputEvent{}, errClosed
}

func (s *scriptSource) Close() error {
	if atomic.AddInt32(&s.closeCnt, 1) == 1 {
		close(s.closed)
	}
	return nil
}

// fakeCamera hands out numbered frames.
type fakeCamera struct {
	seq      uint64
	released int32
}

func (c *fakeCamera) Read() (models.Frame, bool) {
	time.Sleep(time.Millisecond)
	n := atomic.AddUint64(&c.seq, 1)
	return models.Frame{Seq: n, Data: []byte{0xFF, 0xD8, byte(n)}}, true
}

func (c *fakeCamera) Release() error {
	atomic.AddInt32(&c.released, 1)
	return nil
}

// fakeDisplay presses keys from a script, one per poll, once it has shown
// at least minShown frames.
type fakeDisplay struct {
	mu       sync.Mutex
	keys     []byte
	minShown int
	shown    int
	polls    int
	closed   int
}

func (d *fakeDisplay) Show(models.Frame) error {
	d.mu.Lock()
	d.shown++
	d.mu.Unlock()
	return nil
}

func (d *fakeDisplay) PollKey(timeout time.Duration) (byte, bool) {
	time.Sleep(timeout)
	d.mu.Lock()
	defer d.mu.Unlock()
	d.polls++
	if d.shown < d.minShown || len(d.keys) == 0 {
		return 0, false
	}
	k := d.keys[0]
	d.keys = d.keys[1:]
	return k, true
}

func (d *fakeDisplay) Close() error {
	d.mu.Lock()
	d.closed++
	d.mu.Unlock()
	return nil
}

func (d *fakeDisplay) closeCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.closed
}

func (d *fakeDisplay) opener() display.Opener {
	return func() (display.Display, error) { return d, nil }
}

// memSink records persisted samples in order.
type memSink struct {
	mu      sync.Mutex
	samples []models.Sample
	frames  []uint64
	err     error
	delay   time.Duration
}

func (s *memSink) Persist(f models.Frame, smp models.Sample) (models.LogRecord, error) {
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return models.LogRecord{}, s.err
	}
	s.samples = append(s.samples, smp)
	s.frames = append(s.frames, f.Seq)
	return models.LogRecord{SteeringPulse: smp.Steer, ThrottlePulse: smp.Throttle}, nil
}

func (s *memSink) persisted() []models.Sample {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Sample(nil), s.samples...)
}

func testConfig() *utils.RigConfig {
	cfg := utils.DefaultRigConfig()
	cfg.Recording.StatsInterval = 0
	return cfg
}

func init() {
	// Keep test output readable.
	utils.SetLogger(utils.NewLogger(utils.WARN, io.Discard))
}
