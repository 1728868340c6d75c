package main

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valerio/go-rngtimer/rngtimer"
	"github.com/valerio/go-rngtimer/rngtimer/device"
	"github.com/valerio/go-rngtimer/rngtimer/timing"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	app := newApp(&out)
	err := app.Run(append([]string{"rngtimer"}, args...))
	return out.String(), err
}

func TestCompute_Text(t *testing.T) {
	out, err := run(t,
		"--calibrated-delay", "0",
		"--calibrated-second", "10",
		"--target-delay", "598",
		"--target-second", "20",
		"--target-clock", "12:30")
	require.NoError(t, err)

	assert.Contains(t, out, "Boot time:   60.204 s")
	assert.Contains(t, out, "Load time:   19.996 s")
	assert.Contains(t, out, "Offset:      1 min")
	assert.Contains(t, out, "Set clock:   12:29")
}

func TestCompute_JSON(t *testing.T) {
	out, err := run(t,
		"--device", "gba",
		"--format", "json",
		"--calibrated-delay", "600",
		"--calibrated-second", "15",
		"--target-delay", "1200",
		"--target-second", "45")
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, "gba", decoded["device"])

	expected, err := device.Default().TimeData(600, 15, 1200, 45)
	require.NoError(t, err)
	assert.NotEqual(t, expected.LoadTime, decoded["load_time"], "gba must not use the DS frame rate")

	gba, err := device.Lookup("gba")
	require.NoError(t, err)
	expected, err = gba.TimeData(600, 15, 1200, 45)
	require.NoError(t, err)
	assert.Equal(t, expected.LoadTime, decoded["load_time"])
	assert.Equal(t, expected.BootTime, decoded["boot_time"])
}

func TestCompute_Overrides(t *testing.T) {
	out, err := run(t,
		"--fps", "60",
		"--latency", "0",
		"--min-boot", "0",
		"--format", "json",
		"--calibrated-delay", "0",
		"--calibrated-second", "10",
		"--target-delay", "600",
		"--target-second", "30")
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, float64(60), decoded["frame_rate"])
	assert.Equal(t, float64(20), decoded["load_time"])
	assert.Equal(t, float64(10), decoded["boot_time"])
	assert.Equal(t, float64(0), decoded["offset"])
}

func TestCompute_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		err  error
	}{
		{
			name: "invalid calibration",
			args: []string{"--calibrated-delay", "1000", "--calibrated-second", "0", "--target-delay", "0", "--target-second", "0"},
			err:  timing.ErrInvalidCalibration,
		},
		{
			name: "second out of range",
			args: []string{"--calibrated-delay", "0", "--calibrated-second", "300", "--target-delay", "0", "--target-second", "0"},
			err:  rngtimer.ErrSecondRange,
		},
		{
			name: "unknown device",
			args: []string{"--device", "psp", "--calibrated-delay", "0", "--calibrated-second", "1", "--target-delay", "0", "--target-second", "0"},
			err:  device.ErrUnknownDevice,
		},
		{
			name: "invalid frame rate",
			args: []string{"--fps=-1", "--calibrated-delay", "0", "--calibrated-second", "1", "--target-delay", "0", "--target-second", "0"},
			err:  timing.ErrInvalidDevice,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, tt.args...)
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestCompute_MissingFlag(t *testing.T) {
	_, err := run(t, "--calibrated-delay", "0", "--calibrated-second", "10", "--target-delay", "598")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--target-second")
}

func TestCompute_DelayTooLarge(t *testing.T) {
	_, err := run(t, "--calibrated-delay", "4294967296", "--calibrated-second", "10", "--target-delay", "598", "--target-second", "20")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "32 bits")
}

func TestDevices(t *testing.T) {
	out, err := run(t, "devices")
	require.NoError(t, err)
	for _, name := range device.Names() {
		assert.Contains(t, out, name)
	}
	assert.Contains(t, out, "59.8261 fps")
}

func TestConvert(t *testing.T) {
	out, err := run(t, "convert", "--frames", "598")
	require.NoError(t, err)
	assert.Contains(t, out, "598 frames = 9.995637 s")

	out, err = run(t, "convert", "--seconds", "10")
	require.NoError(t, err)
	assert.Contains(t, out, "10.000000 s = 598 frames")

	_, err = run(t, "convert")
	assert.Error(t, err)

	_, err = run(t, "convert", "--frames", "1", "--seconds", "1")
	assert.Error(t, err)
}
