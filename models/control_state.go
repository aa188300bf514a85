package models

// ControlState is the control loop's private state. It is only ever touched
// by the goroutine running the control loop.
type ControlState struct {
	Steer       int  `json:"steer_pulse"`
	Throttle    int  `json:"throttle_pulse"`
	Trim        int  `json:"trim"`
	Recording   bool `json:"recording"`
	PrevTrigger int  `json:"prev_trigger"`
}
