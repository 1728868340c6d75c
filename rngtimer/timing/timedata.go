package timing

import (
	"math"
	"time"
)

// TimeData is the schedule needed to set the clock, boot the game and load
// the save file at the right moment.
type TimeData struct {
	// BootTime is the time between setting the clock and booting the game, in seconds.
	BootTime float64
	// LoadTime is the time between booting the game and loading the save file, in seconds.
	LoadTime float64
	// Offset is the number of whole minutes between setting the clock and
	// loading the save file, i.e. the minutes to set the clock before the target.
	Offset uint8
}

// Total returns the seconds between setting the clock and loading the save.
func (t TimeData) Total() float64 {
	return t.BootTime + t.LoadTime
}

func (t TimeData) BootDuration() time.Duration { return secondsToDuration(t.BootTime) }
func (t TimeData) LoadDuration() time.Duration { return secondsToDuration(t.LoadTime) }
func (t TimeData) TotalDuration() time.Duration { return secondsToDuration(t.Total()) }

// ClockSetting returns the wall clock value to program into the console so
// that the save is loaded during the minute and second of target. Seconds
// below one minute are dropped, since the console clock is set to the minute.
func (t TimeData) ClockSetting(target time.Time) time.Time {
	return target.Truncate(time.Minute).Add(-time.Duration(t.Offset) * time.Minute)
}

func secondsToDuration(s float64) time.Duration {
	return time.Duration(math.Round(s * float64(time.Second)))
}
