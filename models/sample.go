package models

// Sample is one (steering, throttle) pair queued for the logging worker.
// The zero value is a real sample; the shutdown marker is built with
// SentinelSample and recognised with IsSentinel.
type Sample struct {
	Steer    int
	Throttle int

	sentinel bool
}

// NewSample builds a real logging sample.
func NewSample(steer, throttle int) Sample {
	return Sample{Steer: steer, Throttle: throttle}
}

// SentinelSample returns the marker that tells the logging worker there is no
// more work.
func SentinelSample() Sample {
	return Sample{sentinel: true}
}

// IsSentinel reports whether s is the shutdown marker.
func (s Sample) IsSentinel() bool {
	return s.sentinel
}
