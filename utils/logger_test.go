package utils

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoggerFiltersBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(WARN, &buf)

	l.Debug("steer=%d", 375)
	l.Info("recording ON")
	l.Warn("set pulse ch%d: %v", 1, "nack")
	l.Error("persist failed")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if assert.Len(t, lines, 2) {
		assert.True(t, strings.HasPrefix(lines[0], "[WARN] "))
		assert.True(t, strings.HasSuffix(lines[0], "set pulse ch1: nack"))
		assert.True(t, strings.HasPrefix(lines[1], "[ERROR] "))
	}
}

func TestSetLoggerReplacesGlobal(t *testing.T) {
	prev := L()
	defer SetLogger(prev)

	var buf bytes.Buffer
	SetLogger(NewLogger(DEBUG, &buf))
	L().Info("hello %s", "rig")
	assert.Contains(t, buf.String(), "[INFO] ")
	assert.Contains(t, buf.String(), "hello rig")
}

func TestImageName(t *testing.T) {
	ts := time.Unix(1700000000, 123456789)
	assert.Equal(t, "1700000000123456789.jpg", ImageName(ts))
	assert.True(t, NanoToTime(ts.UnixNano()).Equal(ts))
}
