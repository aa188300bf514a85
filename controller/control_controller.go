package controller

import (
	"context"
	"errors"
	"fmt"
	"io"

	"teleop-logger/models"
	"teleop-logger/services/actuator"
	"teleop-logger/utils"
)

// EventSource is a blocking stream of gamepad events. Close must unblock a
// pending Next.
type EventSource interface {
	Next() (models.InputEvent, error)
	Close() error
}

// ControlController is the control loop. It turns gamepad events into
// steering and throttle pulses, sends them straight to the actuator and,
// while recording, hands (steer, throttle) samples to the logging queue.
//
// All state is owned by the goroutine calling HandleEvent / Run.
type ControlController struct {
	steer    utils.SteeringConfig
	throttle utils.ThrottleConfig
	pad      utils.GamepadConfig
	steerCh  int
	thrCh    int

	driver actuator.Driver
	queue  *LogQueue

	state models.ControlState
}

// NewControlController builds a control loop with the wheels centred and the
// throttle at stop.
func NewControlController(cfg *utils.RigConfig, driver actuator.Driver, queue *LogQueue) *ControlController {
	return &ControlController{
		steer:    cfg.Steering,
		throttle: cfg.Throttle,
		pad:      cfg.Gamepad,
		steerCh:  cfg.Actuator.SteerChannel,
		thrCh:    cfg.Actuator.ThrottleChannel,
		driver:   driver,
		queue:    queue,
		state: models.ControlState{
			Steer:    cfg.Steering.Center(),
			Throttle: cfg.Throttle.Stop,
		},
	}
}

// Bindings lists the event names the control loop reacts to.
func (c *ControlController) Bindings() []string {
	return []string{
		c.pad.TrimLeftButton, c.pad.TrimRightButton,
		c.pad.SteerAxis, c.pad.ThrottleAxis, c.pad.TriggerAxis,
	}
}

// State returns a copy of the current control state.
func (c *ControlController) State() models.ControlState {
	return c.state
}

// Run feeds events from src into HandleEvent until ctx is cancelled or src
// fails. A source returning io.EOF ends the loop without error. src is read
// on a helper goroutine so cancellation is seen even while no events arrive;
// Run closes src and waits for that goroutine before returning.
func (c *ControlController) Run(ctx context.Context, src EventSource) error {
	events := make(chan models.InputEvent)
	readErr := make(chan error, 1)
	stop := make(chan struct{})
	pumpDone := make(chan struct{})

	go func() {
		defer close(pumpDone)
		for {
			ev, err := src.Next()
			if err != nil {
				readErr <- err
				return
			}
			select {
			case events <- ev:
			case <-stop:
				return
			}
		}
	}()

	defer func() {
		close(stop)
		if err := src.Close(); err != nil {
			utils.L().Warn("close input device: %v", err)
		}
		<-pumpDone
	}()

	utils.L().Info("control loop started")
	for {
		select {
		case <-ctx.Done():
			utils.L().Info("control loop stopping: %v", context.Cause(ctx))
			return nil
		case err := <-readErr:
			if errors.Is(err, io.EOF) {
				utils.L().Info("control loop stopping: input exhausted")
				return nil
			}
			return fmt.Errorf("input device: %w", err)
		case ev := <-events:
			c.HandleEvent(ev)
		}
	}
}

// HandleEvent applies one event to the control state.
func (c *ControlController) HandleEvent(ev models.InputEvent) {
	switch ev.Kind {
	case models.ButtonEvent:
		if ev.Pressed {
			c.handleButton(ev.Name)
		}
	case models.AxisEvent:
		switch ev.Name {
		case c.pad.TriggerAxis:
			c.handleTrigger(ev.Value)
		case c.pad.SteerAxis:
			c.handleSteer(ev.Value)
		case c.pad.ThrottleAxis:
			c.handleThrottle(ev.Value)
		}
	}
}

func (c *ControlController) handleButton(name string) {
	center := c.steer.Center()
	switch name {
	case c.pad.TrimLeftButton:
		c.state.Trim = max(c.state.Trim-c.steer.TrimStep, c.steer.Min-center)
		utils.L().Info("[TRIM] steering_trim=%d (left)", c.state.Trim)
	case c.pad.TrimRightButton:
		c.state.Trim = min(c.state.Trim+c.steer.TrimStep, c.steer.Max-center)
		utils.L().Info("[TRIM] steering_trim=%d (right)", c.state.Trim)
	}
}

// handleTrigger toggles recording on a rising edge through the threshold.
// PrevTrigger is updated on every trigger event, so holding the trigger down
// (or wobbling above the threshold) never toggles twice.
func (c *ControlController) handleTrigger(value int) {
	th := c.pad.TriggerThreshold
	if value > th && c.state.PrevTrigger <= th {
		c.state.Recording = !c.state.Recording
		if c.state.Recording {
			utils.L().Info("[REC] recording ON")
		} else {
			n := c.queue.Drain()
			utils.L().Info("[REC] recording OFF  (flushed %d queued samples)", n)
		}
	}
	c.state.PrevTrigger = value
}

func (c *ControlController) handleSteer(value int) {
	raw := MapRange(value, c.pad.AxisMin, c.pad.AxisMax, c.steer.Min, c.steer.Max)
	c.state.Steer = Clamp(raw+c.state.Trim, c.steer.Min, c.steer.Max)
	c.send(c.steerCh, c.state.Steer)
}

func (c *ControlController) handleThrottle(value int) {
	c.state.Throttle = c.ThrottlePulse(c.pad.AxisMidpoint - value)
	c.send(c.thrCh, c.state.Throttle)
	utils.L().Debug("[CTRL] steer=%d thr=%d", c.state.Steer, c.state.Throttle)

	if c.state.Recording {
		c.queue.TryPush(models.NewSample(c.state.Steer, c.state.Throttle))
	}
}

// ThrottlePulse converts a signed stick offset from neutral (positive is
// forward) into a throttle pulse.
func (c *ControlController) ThrottlePulse(offset int) int {
	span := c.pad.AxisMidpoint - c.pad.AxisMin
	switch {
	case abs(offset) < c.throttle.DeadZone:
		return c.throttle.Stop
	case offset > 0:
		return MapRange(offset, 0, span, c.throttle.Stop, c.throttle.Forward)
	default:
		return MapRange(-offset, 0, span, c.throttle.Stop, c.throttle.Reverse)
	}
}

func (c *ControlController) send(channel, pulse int) {
	if err := c.driver.SetPulse(channel, pulse); err != nil {
		utils.L().Warn("set pulse ch%d=%d: %v", channel, pulse, err)
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
