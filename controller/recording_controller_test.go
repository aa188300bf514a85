package controller

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"teleop-logger/models"
	"teleop-logger/services/framestore"
)

func TestRecordingSkipsSamplesWithoutFrame(t *testing.T) {
	q := NewLogQueue(8)
	sink := &memSink{}
	rc := NewRecordingController(q, framestore.New(), sink)

	q.TryPush(models.NewSample(375, 307))
	q.TryPush(models.NewSample(375, 410))
	q.Close()
	rc.Run()

	written, noFrame, failed := rc.Stats()
	assert.Equal(t, uint64(0), written)
	assert.Equal(t, uint64(2), noFrame)
	assert.Equal(t, uint64(0), failed)
	assert.Empty(t, sink.persisted())
}

func TestRecordingPersistsInQueueOrder(t *testing.T) {
	q := NewLogQueue(16)
	store := framestore.New()
	store.Publish(models.Frame{Seq: 9, Data: []byte{1}})
	sink := &memSink{}
	rc := NewRecordingController(q, store, sink)

	var want []models.Sample
	for i := 0; i < 10; i++ {
		s := models.NewSample(300+i, 200+i)
		want = append(want, s)
		q.TryPush(s)
	}
	q.Close()
	rc.Run()

	assert.Equal(t, want, sink.persisted())
	assert.Equal(t, []uint64{9, 9, 9, 9, 9, 9, 9, 9, 9, 9}, sink.frames)
	written, _, _ := rc.Stats()
	assert.Equal(t, uint64(10), written)
}

func TestRecordingCountsFailuresAndKeepsGoing(t *testing.T) {
	q := NewLogQueue(8)
	store := framestore.New()
	store.Publish(models.Frame{Seq: 1, Data: []byte{1}})
	sink := &memSink{err: errors.New("disk full")}
	rc := NewRecordingController(q, store, sink)

	for i := 0; i < 3; i++ {
		q.TryPush(models.NewSample(i, i))
	}
	q.Close()
	rc.Run()

	written, noFrame, failed := rc.Stats()
	assert.Equal(t, uint64(0), written)
	assert.Equal(t, uint64(0), noFrame)
	assert.Equal(t, uint64(3), failed)
}
