// Package report renders computed schedules for the command line.
package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/valerio/go-rngtimer/rngtimer"
	"gopkg.in/yaml.v3"
)

type Format int

const (
	Text Format = iota
	JSON
	YAML
)

var ErrUnknownFormat = errors.New("unknown output format")

var formatNames = map[Format]string{
	Text: "text",
	JSON: "json",
	YAML: "yaml",
}

func (f Format) String() string {
	if name, ok := formatNames[f]; ok {
		return name
	}
	return fmt.Sprintf("Format(%d)", int(f))
}

// ParseFormat parses text, json or yaml, ignoring case.
func ParseFormat(s string) (Format, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for f, name := range formatNames {
		if name == s {
			return f, nil
		}
	}
	return Text, fmt.Errorf("%w %q", ErrUnknownFormat, s)
}

// Output is the serialized form of a schedule.
type Output struct {
	Device           string  `json:"device" yaml:"device"`
	FrameRate        float64 `json:"frame_rate" yaml:"frame_rate"`
	CalibratedDelay  uint32  `json:"calibrated_delay" yaml:"calibrated_delay"`
	CalibratedSecond uint8   `json:"calibrated_second" yaml:"calibrated_second"`
	TargetDelay      uint32  `json:"target_delay" yaml:"target_delay"`
	TargetSecond     uint8   `json:"target_second" yaml:"target_second"`
	BootTime         float64 `json:"boot_time" yaml:"boot_time"`
	LoadTime         float64 `json:"load_time" yaml:"load_time"`
	Offset           uint8   `json:"offset" yaml:"offset"`
	ClockSetting     string  `json:"clock_setting,omitempty" yaml:"clock_setting,omitempty"`
}

// NewOutput builds the serialized form of s. clock is the value to set on
// the console; pass the zero time to leave it out.
func NewOutput(s rngtimer.Schedule, clock time.Time) Output {
	out := Output{
		Device:           s.Request.Device.Name,
		FrameRate:        s.Request.Device.FrameRate,
		CalibratedDelay:  s.Request.CalibratedDelay,
		CalibratedSecond: s.Request.CalibratedSecond,
		TargetDelay:      s.Request.TargetDelay,
		TargetSecond:     s.Request.TargetSecond,
		BootTime:         s.BootTime,
		LoadTime:         s.LoadTime,
		Offset:           s.Offset,
	}
	if !clock.IsZero() {
		out.ClockSetting = clock.Format("15:04")
	}
	return out
}

// Write renders out to w in the given format.
func Write(w io.Writer, out Output, f Format) error {
	switch f {
	case JSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	case YAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(out); err != nil {
			return fmt.Errorf("failed to encode yaml: %w", err)
		}
		return enc.Close()
	case Text:
		return writeText(w, out)
	default:
		return fmt.Errorf("%w %v", ErrUnknownFormat, f)
	}
}

func writeText(w io.Writer, out Output) error {
	var b strings.Builder
	fmt.Fprintf(&b, "Device:      %s (%.4f fps)\n", out.Device, out.FrameRate)
	fmt.Fprintf(&b, "Calibration: delay %d at second %d\n", out.CalibratedDelay, out.CalibratedSecond)
	fmt.Fprintf(&b, "Target:      delay %d at second %d\n", out.TargetDelay, out.TargetSecond)
	fmt.Fprintf(&b, "Boot time:   %.3f s\n", out.BootTime)
	fmt.Fprintf(&b, "Load time:   %.3f s\n", out.LoadTime)
	fmt.Fprintf(&b, "Offset:      %d min\n", out.Offset)
	if out.ClockSetting != "" {
		fmt.Fprintf(&b, "Set clock:   %s\n", out.ClockSetting)
	}
	_, err := io.WriteString(w, b.String())
	return err
}
