package models

import (
	"fmt"
	"time"
)

// LogRecord is one persisted driving-log row. ImagePath points at the JPEG
// saved for the same sample.
type LogRecord struct {
	Timestamp     time.Time `json:"timestamp"`
	ImagePath     string    `json:"image_path"`
	SteeringPulse int       `json:"steering_pulse"`
	ThrottlePulse int       `json:"throttle_pulse"`
}

// CSVHeader returns the ordered column names for the driving log.
func (LogRecord) CSVHeader() []string {
	return []string{
		"timestamp", "image_path", "steering_pulse", "throttle_pulse",
	}
}

// CSVRow serialises the record. Timestamps are Unix seconds with
// microsecond precision.
func (r *LogRecord) CSVRow() []string {
	return []string{
		unixSeconds(r.Timestamp),
		r.ImagePath,
		itoa(r.SteeringPulse),
		itoa(r.ThrottlePulse),
	}
}

// unixSeconds formats t as seconds since the Unix epoch with six decimals.
func unixSeconds(t time.Time) string {
	us := t.UnixMicro()
	return fmt.Sprintf("%d.%06d", us/1e6, us%1e6)
}

var _ CSVRowWriter = (*LogRecord)(nil)
