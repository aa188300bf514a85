package controller

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"teleop-logger/models"
	"teleop-logger/services/display"
	"teleop-logger/services/framestore"
)

func runPreview(t *testing.T, p *PreviewController, ctx context.Context) {
	t.Helper()
	done := make(chan struct{})
	go func() {
		defer close(done)
		p.Run(ctx)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("preview did not stop")
	}
}

func TestPreviewQuitKey(t *testing.T) {
	store := framestore.New()
	store.Publish(models.Frame{Seq: 1, Data: []byte{1}})
	disp := &fakeDisplay{keys: []byte{'x', 'q', 'q'}, minShown: 1}

	var quits int32
	p := NewPreviewController(store, disp.opener(), 'q', time.Millisecond,
		func() { atomic.AddInt32(&quits, 1) })
	runPreview(t, p, context.Background())

	assert.Equal(t, int32(1), atomic.LoadInt32(&quits))
	assert.Equal(t, 1, disp.closeCount())
	assert.Equal(t, []byte{'q'}, disp.keys, "loop stops at the first quit key")
}

func TestPreviewStopsOnCancel(t *testing.T) {
	store := framestore.New()
	disp := &fakeDisplay{}
	p := NewPreviewController(store, disp.opener(), 'q', time.Millisecond, func() {
		t.Error("quit must not be called on cancel")
	})

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(20*time.Millisecond, cancel)
	runPreview(t, p, ctx)

	assert.Equal(t, 1, disp.closeCount())
}

func TestPreviewShowsEachFrameOnce(t *testing.T) {
	store := framestore.New()
	store.Publish(models.Frame{Seq: 1, Data: []byte{1}})
	disp := &fakeDisplay{}
	p := NewPreviewController(store, disp.opener(), 'q', time.Millisecond, func() {})

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		for {
			disp.mu.Lock()
			polls := disp.polls
			disp.mu.Unlock()
			if polls >= 10 {
				cancel()
				return
			}
			time.Sleep(time.Millisecond)
		}
	}()
	runPreview(t, p, ctx)

	disp.mu.Lock()
	defer disp.mu.Unlock()
	assert.Equal(t, 1, disp.shown)
	assert.GreaterOrEqual(t, disp.polls, 10)
}

func TestPreviewOpenFailureLeavesRigRunning(t *testing.T) {
	var quits int32
	open := func() (display.Display, error) { return nil, errors.New("no X server") }
	p := NewPreviewController(framestore.New(), open, 'q', time.Millisecond,
		func() { atomic.AddInt32(&quits, 1) })

	runPreview(t, p, context.Background())
	assert.Zero(t, atomic.LoadInt32(&quits))
}
