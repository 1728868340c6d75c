// Package device provides the timing profiles of the consoles supported by
// the calculator.
package device

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/valerio/go-rngtimer/rngtimer/timing"
)

// ErrUnknownDevice is returned by Lookup for names with no profile.
var ErrUnknownDevice = errors.New("unknown device")

// Game Boy Advance timing, also used by GBA titles on the DS slot-2.
const (
	GBACPUFrequency   = 16777216
	GBACyclesPerFrame = 280896
)

// GBAFrameRate calculates the exact Game Boy Advance frame rate.
func GBAFrameRate() float64 {
	return float64(GBACPUFrequency) / float64(GBACyclesPerFrame)
}

var profiles = map[string]timing.Device{
	"nds": timing.NDS(),
	"dsi": withName(timing.NDS(), "dsi"),
	"3ds": withName(timing.NDS(), "3ds"),
	"gba": {
		Name:            "gba",
		FrameRate:       GBAFrameRate(),
		MinBootTime:     timing.DefaultMinBootTime,
		ResponseLatency: timing.DefaultResponseLatency,
	},
}

func withName(d timing.Device, name string) timing.Device {
	d.Name = name
	return d
}

// Default returns the Nintendo DS profile.
func Default() timing.Device {
	return profiles["nds"]
}

// Lookup returns the profile with the given name, ignoring case.
func Lookup(name string) (timing.Device, error) {
	d, ok := profiles[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return timing.Device{}, fmt.Errorf("%w %q (available: %s)", ErrUnknownDevice, name, strings.Join(Names(), ", "))
	}
	return d, nil
}

// Names returns the sorted profile names.
func Names() []string {
	names := make([]string, 0, len(profiles))
	for name := range profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

type Option func(*timing.Device)

// WithFrameRate overrides the frames per second of a profile.
func WithFrameRate(fps float64) Option {
	return func(d *timing.Device) { d.FrameRate = fps }
}

// WithMinBootTime overrides the minimum boot time, in seconds.
func WithMinBootTime(seconds float64) Option {
	return func(d *timing.Device) { d.MinBootTime = seconds }
}

// WithResponseLatency overrides the latency added to every boot time.
func WithResponseLatency(seconds float64) Option {
	return func(d *timing.Device) { d.ResponseLatency = seconds }
}

// Customize applies opts to a copy of d and validates the result.
func Customize(d timing.Device, opts ...Option) (timing.Device, error) {
	for _, opt := range opts {
		opt(&d)
	}
	if err := d.Validate(); err != nil {
		return timing.Device{}, err
	}
	return d, nil
}
