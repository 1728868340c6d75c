package rngtimer

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/valerio/go-rngtimer/rngtimer/timing"
)

// ErrSecondRange is returned when a clock second is not in 0-59.
var ErrSecondRange = errors.New("second out of range 0-59")

// Request is a calibration measurement and the target to hit with it.
type Request struct {
	Device timing.Device

	CalibratedDelay  uint32
	CalibratedSecond uint8
	TargetDelay      uint32
	TargetSecond     uint8
}

// Schedule is the result of a Request.
type Schedule struct {
	Request Request
	timing.TimeData
}

// Validate checks the seconds range and the device profile.
func (r Request) Validate() error {
	if r.CalibratedSecond > 59 {
		return fmt.Errorf("calibrated %w: %d", ErrSecondRange, r.CalibratedSecond)
	}
	if r.TargetSecond > 59 {
		return fmt.Errorf("target %w: %d", ErrSecondRange, r.TargetSecond)
	}
	return r.Device.Validate()
}

// Compute validates the request and computes its schedule.
func Compute(r Request) (Schedule, error) {
	if err := r.Validate(); err != nil {
		return Schedule{}, err
	}

	data, err := r.Device.TimeData(r.CalibratedDelay, r.CalibratedSecond, r.TargetDelay, r.TargetSecond)
	if err != nil {
		return Schedule{}, fmt.Errorf("failed to compute time data for %s: %w", r.Device.Name, err)
	}

	slog.Debug("Computed schedule",
		"device", r.Device.Name,
		"calibrated_delay", r.CalibratedDelay,
		"calibrated_second", r.CalibratedSecond,
		"target_delay", r.TargetDelay,
		"target_second", r.TargetSecond,
		"boot_time", data.BootTime,
		"load_time", data.LoadTime,
		"offset", data.Offset)

	return Schedule{Request: r, TimeData: data}, nil
}

// ClockFor returns the clock value to set on the console for a target on
// the given day at the given hour and minute. The target second is taken
// from the request.
func (s Schedule) ClockFor(day time.Time, hour, minute int) time.Time {
	target := time.Date(day.Year(), day.Month(), day.Day(), hour, minute, int(s.Request.TargetSecond), 0, day.Location())
	return s.ClockSetting(target)
}
