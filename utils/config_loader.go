package utils

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// ─── Section configs ────────────────────────────────────────────────────

type LogConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
	File  string `yaml:"file"`
}

type SerialConfig struct {
	Port     string `yaml:"port"`
	BaudRate int    `yaml:"baud_rate"`
	DataBits int    `yaml:"data_bits"`
	StopBits int    `yaml:"stop_bits"`
	Parity   string `yaml:"parity"`
}

type ActuatorConfig struct {
	Driver          string       `yaml:"driver"` // "pca9685", "serial" or "dry"
	I2CBus          string       `yaml:"i2c_bus"`
	I2CAddress      uint16       `yaml:"i2c_address"`
	Serial          SerialConfig `yaml:"serial"`
	FrequencyHz     int          `yaml:"frequency_hz"`
	SteerChannel    int          `yaml:"steer_channel"`
	ThrottleChannel int          `yaml:"throttle_channel"`
}

type SteeringConfig struct {
	Min      int `yaml:"min"`
	Max      int `yaml:"max"`
	TrimStep int `yaml:"trim_step"`
}

// Center is the pulse that points the wheels straight ahead.
func (s SteeringConfig) Center() int {
	return (s.Min + s.Max) / 2
}

type ThrottleConfig struct {
	Reverse  int `yaml:"reverse"`
	Stop     int `yaml:"stop"`
	Forward  int `yaml:"forward"`
	DeadZone int `yaml:"dead_zone"`
}

type GamepadConfig struct {
	DeviceName       string `yaml:"device_name"`
	TrimLeftButton   string `yaml:"trim_left_button"`
	TrimRightButton  string `yaml:"trim_right_button"`
	SteerAxis        string `yaml:"steer_axis"`
	ThrottleAxis     string `yaml:"throttle_axis"`
	TriggerAxis      string `yaml:"trigger_axis"`
	TriggerThreshold int    `yaml:"trigger_threshold"`
	AxisMin          int    `yaml:"axis_min"`
	AxisMax          int    `yaml:"axis_max"`
	AxisMidpoint     int    `yaml:"axis_midpoint"`
}

type CameraConfig struct {
	Driver     string `yaml:"driver"` // "v4l2" or "sim"
	DevicePath string `yaml:"device_path"`
	Resolution struct {
		Width  int `yaml:"width"`
		Height int `yaml:"height"`
	} `yaml:"resolution"`
	Format         string `yaml:"format"`
	WaitTimeoutSec int    `yaml:"wait_timeout_sec"`
	FPS            int    `yaml:"fps"` // sim only
}

type PreviewConfig struct {
	Enabled        bool   `yaml:"enabled"`
	WindowName     string `yaml:"window_name"`
	QuitKey        string `yaml:"quit_key"`
	PollIntervalMs int    `yaml:"poll_interval_ms"`
}

type RecordingConfig struct {
	CSVPath       string `yaml:"csv_path"`
	ImageDir      string `yaml:"image_dir"`
	QueueCapacity int    `yaml:"queue_capacity"`
	CatalogPath   string `yaml:"catalog_path"` // empty disables the SQLite catalog
	StatsInterval int    `yaml:"stats_interval_sec"`
}

// RigConfig is the top-level structure for rig.yaml.
type RigConfig struct {
	Log       LogConfig       `yaml:"log"`
	Actuator  ActuatorConfig  `yaml:"actuator"`
	Steering  SteeringConfig  `yaml:"steering"`
	Throttle  ThrottleConfig  `yaml:"throttle"`
	Gamepad   GamepadConfig   `yaml:"gamepad"`
	Camera    CameraConfig    `yaml:"camera"`
	Preview   PreviewConfig   `yaml:"preview"`
	Recording RecordingConfig `yaml:"recording"`
}

// DefaultRigConfig returns the settings of the reference vehicle: a PCA9685
// at 50 Hz driving a steering servo on channel 1 and an ESC on channel 0,
// with a DualShock-style "Wireless Controller".
func DefaultRigConfig() *RigConfig {
	cfg := &RigConfig{
		Log: LogConfig{Level: "debug"},
		Actuator: ActuatorConfig{
			Driver:          "pca9685",
			I2CAddress:      0x40,
			FrequencyHz:     50,
			SteerChannel:    1,
			ThrottleChannel: 0,
			Serial: SerialConfig{
				Port:     "/dev/ttyACM0",
				BaudRate: 115200,
			},
		},
		Steering: SteeringConfig{Min: 150, Max: 600, TrimStep: 10},
		Throttle: ThrottleConfig{Reverse: 205, Stop: 307, Forward: 410, DeadZone: 10},
		Gamepad: GamepadConfig{
			DeviceName:       "Wireless Controller",
			TrimLeftButton:   "BTN_WEST",
			TrimRightButton:  "BTN_EAST",
			SteerAxis:        "ABS_X",
			ThrottleAxis:     "ABS_RY",
			TriggerAxis:      "ABS_RZ",
			TriggerThreshold: 10,
			AxisMin:          0,
			AxisMax:          255,
			AxisMidpoint:     128,
		},
		Camera: CameraConfig{
			Driver:         "v4l2",
			DevicePath:     "/dev/video0",
			Format:         "MJPEG",
			WaitTimeoutSec: 1,
			FPS:            30,
		},
		Preview: PreviewConfig{
			Enabled:        true,
			WindowName:     "Stream",
			QuitKey:        "q",
			PollIntervalMs: 1,
		},
		Recording: RecordingConfig{
			CSVPath:       "driving_log.csv",
			ImageDir:      "images",
			QueueCapacity: 256,
			StatsInterval: 5,
		},
	}
	cfg.Camera.Resolution.Width = 1280
	cfg.Camera.Resolution.Height = 720
	return cfg
}

// ─── Loaders ────────────────────────────────────────────────────────────

// LoadRigConfig reads rig.yaml on top of DefaultRigConfig. A missing file is
// not an error: the defaults are returned as-is.
func LoadRigConfig(path string) (*RigConfig, error) {
	cfg := DefaultRigConfig()
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read rig config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse rig config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid rig config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects settings the control loop cannot work with.
func (c *RigConfig) Validate() error {
	var errs []error

	if c.Steering.Min >= c.Steering.Max {
		errs = append(errs, fmt.Errorf("steering.min (%d) must be below steering.max (%d)", c.Steering.Min, c.Steering.Max))
	}
	if c.Steering.TrimStep <= 0 {
		errs = append(errs, fmt.Errorf("steering.trim_step must be positive"))
	}
	t := c.Throttle
	if !(t.Reverse < t.Stop && t.Stop < t.Forward) && !(t.Forward < t.Stop && t.Stop < t.Reverse) {
		errs = append(errs, fmt.Errorf("throttle.stop (%d) must lie between reverse (%d) and forward (%d)", t.Stop, t.Reverse, t.Forward))
	}
	if t.DeadZone < 0 {
		errs = append(errs, fmt.Errorf("throttle.dead_zone must not be negative"))
	}
	g := c.Gamepad
	if g.AxisMin >= g.AxisMax {
		errs = append(errs, fmt.Errorf("gamepad.axis_min (%d) must be below axis_max (%d)", g.AxisMin, g.AxisMax))
	}
	if g.AxisMidpoint <= g.AxisMin || g.AxisMidpoint >= g.AxisMax {
		errs = append(errs, fmt.Errorf("gamepad.axis_midpoint (%d) must lie inside the axis range", g.AxisMidpoint))
	}
	if c.Recording.QueueCapacity <= 0 {
		errs = append(errs, fmt.Errorf("recording.queue_capacity must be positive"))
	}
	if c.Recording.CSVPath == "" || c.Recording.ImageDir == "" {
		errs = append(errs, fmt.Errorf("recording.csv_path and recording.image_dir are required"))
	}
	switch c.Actuator.Driver {
	case "pca9685", "serial", "dry":
	default:
		errs = append(errs, fmt.Errorf("unknown actuator.driver %q", c.Actuator.Driver))
	}
	switch c.Camera.Driver {
	case "v4l2", "sim":
	default:
		errs = append(errs, fmt.Errorf("unknown camera.driver %q", c.Camera.Driver))
	}
	if c.Preview.Enabled && len(c.Preview.QuitKey) != 1 {
		errs = append(errs, fmt.Errorf("preview.quit_key must be a single character"))
	}
	if _, err := ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

// ParseLevel maps a config string onto a LogLevel.
func ParseLevel(s string) (LogLevel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return DEBUG, nil
	case "", "info":
		return INFO, nil
	case "warn", "warning":
		return WARN, nil
	case "error":
		return ERROR, nil
	default:
		return INFO, fmt.Errorf("unknown log level %q", s)
	}
}
