package timing

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// Constants for Nintendo DS timing
const (
	SecondsPerMinute = 60.0

	// DefaultFrameRate is the Nintendo DS refresh rate in frames per second.
	DefaultFrameRate = 59.8261
	// DefaultMinBootTime is the shortest time, in seconds, the console needs
	// after power-on before the game can be controlled.
	DefaultMinBootTime = 14.0
	// DefaultResponseLatency is added to every boot time to account for the
	// delay between the button press and the console reacting to it.
	DefaultResponseLatency = 0.2

	// MaxMinBootTime bounds the configurable minimum boot time to one hour.
	MaxMinBootTime = 3600.0

	// boot time correction never needs more than MaxMinBootTime/60 + 2 passes
	maxBootCorrections = 64
)

var (
	// ErrInvalidCalibration is returned when the calibration and target pair
	// produce a load time that is not strictly positive.
	ErrInvalidCalibration = errors.New("load time must be positive: calibration does not reach target")
	// ErrOffsetOverflow is returned when the minute offset does not fit in 8 bits.
	ErrOffsetOverflow = errors.New("minute offset exceeds 255")
	// ErrNonFinite is returned when a computed time is NaN or infinite.
	ErrNonFinite = errors.New("non-finite time value")
	// ErrInvalidDevice is returned by Device.Validate.
	ErrInvalidDevice = errors.New("invalid device timing")
)

// Device holds the timing characteristics of a console.
type Device struct {
	Name            string
	FrameRate       float64 // frames per second
	MinBootTime     float64 // seconds
	ResponseLatency float64 // seconds
}

// NDS returns the Nintendo DS timing, used by DelayToSecond, SecondToDelay
// and GetTimeData.
func NDS() Device {
	return Device{
		Name:            "nds",
		FrameRate:       DefaultFrameRate,
		MinBootTime:     DefaultMinBootTime,
		ResponseLatency: DefaultResponseLatency,
	}
}

// Validate checks that every field is finite and in range.
func (d Device) Validate() error {
	if !isFinite(d.FrameRate) || d.FrameRate <= 0 {
		return fmt.Errorf("%w: frame rate %v", ErrInvalidDevice, d.FrameRate)
	}
	if !isFinite(d.MinBootTime) || d.MinBootTime < 0 || d.MinBootTime > MaxMinBootTime {
		return fmt.Errorf("%w: minimum boot time %v", ErrInvalidDevice, d.MinBootTime)
	}
	if !isFinite(d.ResponseLatency) || d.ResponseLatency < 0 {
		return fmt.Errorf("%w: response latency %v", ErrInvalidDevice, d.ResponseLatency)
	}
	return nil
}

// FrameDuration returns the duration of a single frame.
func (d Device) FrameDuration() time.Duration {
	return time.Duration(float64(time.Second) / d.FrameRate)
}

// DelayToSecond converts a frame count, possibly negative, to seconds.
func (d Device) DelayToSecond(delay int64) float64 {
	return float64(delay) / d.FrameRate
}

// SecondToDelay converts seconds to a frame count, truncating toward zero.
// Results outside the uint32 range are clamped.
func (d Device) SecondToDelay(seconds float64) uint32 {
	frames := seconds * d.FrameRate
	switch {
	case math.IsNaN(frames) || frames <= 0:
		return 0
	case frames >= math.MaxUint32:
		return math.MaxUint32
	}
	return uint32(frames)
}

// TimeData computes the boot time, load time and minute offset needed to hit
// targetDelay at targetSecond, given that calibratedDelay was observed to
// land at calibratedSecond.
func (d Device) TimeData(calibratedDelay uint32, calibratedSecond uint8, targetDelay uint32, targetSecond uint8) (TimeData, error) {
	if err := d.Validate(); err != nil {
		return TimeData{}, err
	}

	diff := int64(targetDelay) - int64(calibratedDelay)
	load := d.DelayToSecond(diff) + float64(calibratedSecond)
	if !isFinite(load) {
		return TimeData{}, fmt.Errorf("%w: load time %v", ErrNonFinite, load)
	}
	if load <= 0 {
		return TimeData{}, fmt.Errorf("%w (load time %.3fs)", ErrInvalidCalibration, load)
	}

	// math.Mod keeps the sign of the dividend, so boot may start negative.
	boot := math.Mod(float64(targetSecond)-load, SecondsPerMinute) + d.ResponseLatency
	if !isFinite(boot) {
		return TimeData{}, fmt.Errorf("%w: boot time %v", ErrNonFinite, boot)
	}
	for i := 0; boot < d.MinBootTime; i++ {
		if i == maxBootCorrections {
			return TimeData{}, fmt.Errorf("%w: boot time correction did not converge", ErrInvalidDevice)
		}
		boot += SecondsPerMinute
	}

	minutes := math.Floor((boot + load) / SecondsPerMinute)
	if minutes > math.MaxUint8 {
		return TimeData{}, fmt.Errorf("%w (%v minutes)", ErrOffsetOverflow, minutes)
	}

	return TimeData{
		BootTime: boot,
		LoadTime: load,
		Offset:   uint8(minutes),
	}, nil
}

// DelayToSecond converts a frame count to seconds at the DS frame rate.
func DelayToSecond(delay int64) float64 {
	return NDS().DelayToSecond(delay)
}

// SecondToDelay converts seconds to a frame count at the DS frame rate.
func SecondToDelay(seconds float64) uint32 {
	return NDS().SecondToDelay(seconds)
}

// GetTimeData is Device.TimeData using the DS timing.
func GetTimeData(calibratedDelay uint32, calibratedSecond uint8, targetDelay uint32, targetSecond uint8) (TimeData, error) {
	return NDS().TimeData(calibratedDelay, calibratedSecond, targetDelay, targetSecond)
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
