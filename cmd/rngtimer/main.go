package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"time"

	"github.com/urfave/cli"
	"github.com/valerio/go-rngtimer/rngtimer"
	"github.com/valerio/go-rngtimer/rngtimer/device"
	"github.com/valerio/go-rngtimer/rngtimer/report"
	"github.com/valerio/go-rngtimer/rngtimer/timing"
)

func main() {
	app := newApp(os.Stdout)

	err := app.Run(os.Args)
	if err != nil {
		slog.Error("Error running rngtimer", "error", err)
		os.Exit(1)
	}
}

func newApp(stdout io.Writer) *cli.App {
	app := cli.NewApp()
	app.Name = "rngtimer"
	app.Description = "Computes the clock, boot and load timings needed to hit an RNG delay"
	app.Usage = "rngtimer --calibrated-delay N --calibrated-second S --target-delay N --target-second S"
	app.Version = "1.0.0"
	app.Writer = stdout
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:   "device",
			Usage:  "Timing profile of the console",
			Value:  "nds",
			EnvVar: "RNGTIMER_DEVICE",
		},
		cli.Float64Flag{
			Name:   "fps",
			Usage:  "Override the frame rate of the device profile",
			EnvVar: "RNGTIMER_FPS",
		},
		cli.Float64Flag{
			Name:   "min-boot",
			Usage:  "Override the minimum boot time, in seconds",
			EnvVar: "RNGTIMER_MIN_BOOT",
		},
		cli.Float64Flag{
			Name:   "latency",
			Usage:  "Override the response latency added to the boot time, in seconds",
			EnvVar: "RNGTIMER_LATENCY",
		},
		cli.BoolFlag{
			Name:   "verbose",
			Usage:  "Enable debug logging",
			EnvVar: "RNGTIMER_VERBOSE",
		},
	}
	computeFlags := []cli.Flag{
		cli.UintFlag{
			Name:   "calibrated-delay",
			Usage:  "Delay, in frames, that was hit during calibration",
			EnvVar: "RNGTIMER_CALIBRATED_DELAY",
		},
		cli.UintFlag{
			Name:   "calibrated-second",
			Usage:  "Clock second at which the calibrated delay was hit",
			EnvVar: "RNGTIMER_CALIBRATED_SECOND",
		},
		cli.UintFlag{
			Name:   "target-delay",
			Usage:  "Delay, in frames, to hit",
			EnvVar: "RNGTIMER_TARGET_DELAY",
		},
		cli.UintFlag{
			Name:   "target-second",
			Usage:  "Clock second at which to hit the target delay",
			EnvVar: "RNGTIMER_TARGET_SECOND",
		},
		cli.StringFlag{
			Name:   "target-clock",
			Usage:  "Wall clock (HH:MM) of the target, prints the clock to set on the console",
			EnvVar: "RNGTIMER_TARGET_CLOCK",
		},
		cli.StringFlag{
			Name:   "format",
			Usage:  "Output format: text, json or yaml",
			Value:  "text",
			EnvVar: "RNGTIMER_FORMAT",
		},
	}
	app.Flags = append(app.Flags, computeFlags...)
	app.Before = setupLogging
	app.Action = runCompute
	app.Commands = []cli.Command{
		{
			Name:   "devices",
			Usage:  "List the available device profiles",
			Action: runDevices,
		},
		{
			Name:  "convert",
			Usage: "Convert frames to seconds or seconds to frames",
			Flags: []cli.Flag{
				cli.Int64Flag{
					Name:  "frames",
					Usage: "Frame count to convert to seconds",
				},
				cli.Float64Flag{
					Name:  "seconds",
					Usage: "Seconds to convert to a frame count",
				},
			},
			Action: runConvert,
		},
	}
	return app
}

func setupLogging(c *cli.Context) error {
	level := slog.LevelInfo
	if c.GlobalBool("verbose") {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	slog.SetDefault(slog.New(handler))
	return nil
}

// deviceFromFlags resolves the profile and applies any overrides.
func deviceFromFlags(c *cli.Context) (timing.Device, error) {
	d, err := device.Lookup(c.GlobalString("device"))
	if err != nil {
		return timing.Device{}, err
	}

	var opts []device.Option
	if c.GlobalIsSet("fps") {
		opts = append(opts, device.WithFrameRate(c.GlobalFloat64("fps")))
	}
	if c.GlobalIsSet("min-boot") {
		opts = append(opts, device.WithMinBootTime(c.GlobalFloat64("min-boot")))
	}
	if c.GlobalIsSet("latency") {
		opts = append(opts, device.WithResponseLatency(c.GlobalFloat64("latency")))
	}
	return device.Customize(d, opts...)
}

func delayFlag(c *cli.Context, name string) (uint32, error) {
	if !c.IsSet(name) {
		return 0, fmt.Errorf("missing --%s", name)
	}
	v := c.Uint(name)
	if v > math.MaxUint32 {
		return 0, fmt.Errorf("--%s %d does not fit in 32 bits", name, v)
	}
	return uint32(v), nil
}

func secondFlag(c *cli.Context, name string) (uint8, error) {
	if !c.IsSet(name) {
		return 0, fmt.Errorf("missing --%s", name)
	}
	v := c.Uint(name)
	if v > 59 {
		return 0, fmt.Errorf("--%s: %w: %d", name, rngtimer.ErrSecondRange, v)
	}
	return uint8(v), nil
}

func requestFromFlags(c *cli.Context) (rngtimer.Request, error) {
	var (
		req rngtimer.Request
		err error
	)
	if req.Device, err = deviceFromFlags(c); err != nil {
		return req, err
	}
	if req.CalibratedDelay, err = delayFlag(c, "calibrated-delay"); err != nil {
		return req, err
	}
	if req.CalibratedSecond, err = secondFlag(c, "calibrated-second"); err != nil {
		return req, err
	}
	if req.TargetDelay, err = delayFlag(c, "target-delay"); err != nil {
		return req, err
	}
	if req.TargetSecond, err = secondFlag(c, "target-second"); err != nil {
		return req, err
	}
	return req, nil
}

func runCompute(c *cli.Context) error {
	format, err := report.ParseFormat(c.String("format"))
	if err != nil {
		return err
	}

	req, err := requestFromFlags(c)
	if err != nil {
		cli.ShowAppHelp(c)
		return err
	}

	schedule, err := rngtimer.Compute(req)
	if err != nil {
		return err
	}

	var clock time.Time
	if s := c.String("target-clock"); s != "" {
		hm, err := time.Parse("15:04", s)
		if err != nil {
			return fmt.Errorf("invalid --target-clock %q: %w", s, err)
		}
		clock = schedule.ClockFor(time.Now(), hm.Hour(), hm.Minute())
	}

	return report.Write(c.App.Writer, report.NewOutput(schedule, clock), format)
}

func runDevices(c *cli.Context) error {
	for _, name := range device.Names() {
		d, err := device.Lookup(name)
		if err != nil {
			return err
		}
		fmt.Fprintf(c.App.Writer, "%-4s %.4f fps, min boot %.1f s, latency %.1f s\n",
			d.Name, d.FrameRate, d.MinBootTime, d.ResponseLatency)
	}
	return nil
}

func runConvert(c *cli.Context) error {
	d, err := deviceFromFlags(c)
	if err != nil {
		return err
	}

	switch {
	case c.IsSet("frames") && c.IsSet("seconds"):
		return errors.New("use only one of --frames and --seconds")
	case c.IsSet("frames"):
		frames := c.Int64("frames")
		fmt.Fprintf(c.App.Writer, "%d frames = %.6f s\n", frames, d.DelayToSecond(frames))
	case c.IsSet("seconds"):
		seconds := c.Float64("seconds")
		fmt.Fprintf(c.App.Writer, "%.6f s = %d frames\n", seconds, d.SecondToDelay(seconds))
	default:
		return errors.New("convert requires --frames or --seconds")
	}
	return nil
}
