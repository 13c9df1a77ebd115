//go:build linux && (amd64 || arm64)

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	flag "github.com/spf13/pflag"
	"golang.org/x/term"
)

var version = "0.1.0"

// Config holds all command-line configuration
type Config struct {
	DevicePath string
	Limit      int
	Quiet      bool

	Help    bool
	Version bool
}

func main() {
	cfg, err := parseFlags(os.Args[1:])
	if err != nil {
		if err == flag.ErrHelp {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	if cfg.Version {
		fmt.Printf("evlag %s\n", version)
		os.Exit(0)
	}

	if cfg.DevicePath == "" {
		fmt.Fprintln(os.Stderr, "evlag: measure input event latency")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "error: no device specified")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Usage: evlag [flags] <device-path>")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Quick examples:")
		fmt.Fprintln(os.Stderr, "  sudo evlag /dev/input/event3              # measure until Ctrl-C")
		fmt.Fprintln(os.Stderr, "  sudo evlag /dev/input/event3 --limit 500  # stop after 500 samples")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Run 'evlag --help' for full options.")
		os.Exit(1)
	}

	os.Exit(run(cfg))
}

func parseFlags(args []string) (*Config, error) {
	cfg := &Config{}

	fs := flag.NewFlagSet("evlag", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.SortFlags = false // Preserve definition order in help

	fs.IntVarP(&cfg.Limit, "limit", "n", 0, "Stop after N measured samples (0=unlimited)")
	fs.BoolVarP(&cfg.Quiet, "quiet", "q", false, "Only print the final summary and counters")
	fs.BoolVarP(&cfg.Help, "help", "h", false, "Show help")
	fs.BoolVarP(&cfg.Version, "version", "V", false, "Show version")

	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "evlag - measure input event latency")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Reads a Linux evdev device and reports the delay between the")
		fmt.Fprintln(os.Stderr, "kernel timestamp on each event and the moment user space reads")
		fmt.Fprintln(os.Stderr, "it, with rolling and final percentile summaries.")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Usage: evlag [flags] <device-path>")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Examples:")
		fmt.Fprintln(os.Stderr, "  sudo evlag /dev/input/event3")
		fmt.Fprintln(os.Stderr, "  sudo evlag /dev/input/event3 --limit 500 --quiet")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Flags:")
		fs.PrintDefaults()
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Reading /dev/input usually needs root or membership in the")
		fmt.Fprintln(os.Stderr, "'input' group. Use the bundled listdev tool to find a device.")
	}

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if cfg.Help {
		fs.Usage()
		return cfg, flag.ErrHelp
	}

	if cfg.Limit < 0 {
		return nil, fmt.Errorf("invalid --limit: %d (must be >= 0)", cfg.Limit)
	}

	rest := fs.Args()
	if len(rest) > 1 {
		return nil, fmt.Errorf("unexpected argument: %s", rest[1])
	}
	if len(rest) == 1 {
		cfg.DevicePath = rest[0]
	}

	return cfg, nil
}

func run(cfg *Config) int {
	dev, err := OpenDevice(cfg.DevicePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	defer dev.Close()

	// Best-effort: align the device's event timestamps with the clock
	// the sampler reads. Refusal is reported, not fatal.
	switch dev.RequestMonotonicClock() {
	case ClockApplied:
	case ClockUnsupported:
		if !cfg.Quiet {
			fmt.Fprintln(os.Stderr, "[info] EVIOCSCLOCKID not available on this system.")
		}
	case ClockFailed:
		if !cfg.Quiet {
			fmt.Fprintln(os.Stderr, "[warn] EVIOCSCLOCKID failed; continuing with device default clock.")
		}
	}

	if !cfg.Quiet {
		fmt.Printf("Device: %s  (%q)\n", cfg.DevicePath, dev.Name())
		if term.IsTerminal(int(os.Stdin.Fd())) {
			fmt.Println("Collecting input events… Press Ctrl-C to stop.")
		}
	}

	// Stop flag for the loop: checked once per iteration, so shutdown
	// lags a signal by at most one poll timeout.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sampler := NewSampler(SamplerConfig{
		Limit: cfg.Limit,
		Quiet: cfg.Quiet,
		Now:   monotonicNow,
	}, os.Stdout, os.Stderr)

	runErr := sampler.Run(ctx, dev)

	// Summary and counters print on every exit path, errors included.
	sampler.PrintSummary()

	if runErr != nil {
		return 1
	}
	return 0
}
