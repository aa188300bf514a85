package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rig.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestDefaultsAreValid(t *testing.T) {
	cfg := DefaultRigConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 375, cfg.Steering.Center())
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := LoadRigConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	if diff := cmp.Diff(DefaultRigConfig(), cfg); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadOverridesOnlyGivenKeys(t *testing.T) {
	path := writeConfig(t, `
actuator:
  driver: dry
throttle:
  dead_zone: 4
camera:
  driver: sim
  resolution:
    width: 320
    height: 240
`)
	cfg, err := LoadRigConfig(path)
	require.NoError(t, err)

	want := DefaultRigConfig()
	want.Actuator.Driver = "dry"
	want.Throttle.DeadZone = 4
	want.Camera.Driver = "sim"
	want.Camera.Resolution.Width = 320
	want.Camera.Resolution.Height = 240
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestShippedRigConfigMatchesDefaults(t *testing.T) {
	cfg, err := LoadRigConfig(filepath.Join("..", "config", "rig.yaml"))
	require.NoError(t, err)

	want := DefaultRigConfig()
	want.Recording.CatalogPath = "catalog/sessions.db"
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("config/rig.yaml drifted from defaults (-want +got):\n%s", diff)
	}
}

func TestLoadRejectsBadYAML(t *testing.T) {
	_, err := LoadRigConfig(writeConfig(t, "steering: [1, 2"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse rig config")
}

func TestValidateReportsEveryProblem(t *testing.T) {
	cfg := DefaultRigConfig()
	cfg.Steering.Min, cfg.Steering.Max = 600, 150
	cfg.Throttle.Stop = 500
	cfg.Recording.QueueCapacity = 0
	cfg.Actuator.Driver = "gpio"
	cfg.Preview.QuitKey = "esc"

	err := cfg.Validate()
	require.Error(t, err)
	for _, frag := range []string{
		"steering.min",
		"throttle.stop",
		"queue_capacity",
		`unknown actuator.driver "gpio"`,
		"quit_key",
	} {
		assert.Contains(t, err.Error(), frag)
	}
}

func TestValidateAcceptsInvertedThrottle(t *testing.T) {
	cfg := DefaultRigConfig()
	cfg.Throttle.Reverse, cfg.Throttle.Forward = 410, 205
	assert.NoError(t, cfg.Validate())
}

func TestParseLevel(t *testing.T) {
	cases := map[string]LogLevel{
		"debug":   DEBUG,
		"INFO":    INFO,
		"":        INFO,
		" warn ":  WARN,
		"warning": WARN,
		"error":   ERROR,
	}
	for in, want := range cases {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseLevel("verbose")
	assert.Error(t, err)
}
