package utils

import (
	"fmt"
	"time"
)

// NanoToTime converts a nanosecond Unix timestamp back to time.Time.
func NanoToTime(ns int64) time.Time {
	return time.Unix(0, ns)
}

// FormatTimestamp converts ns-epoch to a human-friendly string.
func FormatTimestamp(ns int64) string {
	return NanoToTime(ns).Format("2006-01-02_15-04-05.000000000")
}

// ImageName returns the file name used for a frame saved at t:
//
//	<unix-nanos>.jpg
func ImageName(t time.Time) string {
	return fmt.Sprintf("%d.jpg", t.UnixNano())
}
