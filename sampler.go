package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"
)

// Loop timing
const (
	defaultPollTimeout = 5 * time.Second // Bounded wait so idle devices still report and Ctrl-C is noticed
	rollingInterval    = 50              // Measured events between rolling summaries
)

// Transient conditions from a Source. Neither is an error to the read
// loop; both just mean "try again on the next iteration".
var (
	errWouldBlock  = errors.New("no data available")
	errInterrupted = errors.New("wait interrupted")
)

// Source yields timestamped input events. *Device is the real
// implementation; tests substitute synthetic streams.
type Source interface {
	// Wait blocks until the source is readable or the timeout elapses.
	// ready=false with a nil error means the timeout expired. An
	// errInterrupted error means the wait was cut short by a signal and
	// the caller should re-check its stop condition.
	Wait(timeout time.Duration) (ready bool, err error)

	// ReadBatch returns zero or more buffered events from a single
	// read. errWouldBlock means no data was available after all.
	ReadBatch() ([]Event, error)
}

// SamplerConfig configures one measurement run.
type SamplerConfig struct {
	Limit       int           // Stop after this many samples (0 = unlimited)
	Quiet       bool          // Suppress per-event, idle, and rolling output
	PollTimeout time.Duration // Bounded wait per iteration (0 = default 5s)
	Now         func() uint64 // Monotonic clock, nanoseconds
}

// Sampler drives the poll/read/measure loop and owns the latency
// sample collection and run counters.
type Sampler struct {
	cfg    SamplerConfig
	stats  *LatencyStats
	out    io.Writer
	errOut io.Writer

	// Run counters: every decoded event vs. events that produced a
	// latency sample. Measured never exceeds Total.
	TotalEvents    uint64
	MeasuredEvents uint64
}

// NewSampler returns a Sampler writing measurements to out and
// diagnostics to errOut. cfg.Now must be set; run wires the monotonic
// clock, tests inject fakes.
func NewSampler(cfg SamplerConfig, out, errOut io.Writer) *Sampler {
	if cfg.PollTimeout == 0 {
		cfg.PollTimeout = defaultPollTimeout
	}
	return &Sampler{
		cfg:    cfg,
		stats:  NewLatencyStats(cfg.Limit),
		out:    out,
		errOut: errOut,
	}
}

// Run loops until ctx is cancelled, the sample limit is reached, or the
// source fails hard. Transient wait/read conditions are retried by the
// next iteration. A non-nil return is a hard poll or read failure,
// already reported to errOut; the caller still prints the summary.
func (s *Sampler) Run(ctx context.Context, src Source) error {
	for {
		if ctx.Err() != nil {
			return nil
		}
		if s.limitReached() {
			return nil
		}

		ready, err := src.Wait(s.cfg.PollTimeout)
		if err != nil {
			if errors.Is(err, errInterrupted) {
				continue
			}
			fmt.Fprintf(s.errOut, "poll: %v\n", err)
			return err
		}
		if !ready {
			if !s.cfg.Quiet {
				fmt.Fprintln(s.out, "(idle…)")
			}
			continue
		}

		events, err := src.ReadBatch()
		if err != nil {
			if errors.Is(err, errWouldBlock) || errors.Is(err, errInterrupted) {
				continue
			}
			fmt.Fprintf(s.errOut, "read: %v\n", err)
			return err
		}
		s.measure(events)
	}
}

// measure classifies and times one batch of events.
func (s *Sampler) measure(events []Event) {
	for _, ev := range events {
		s.TotalEvents++

		if !ev.Measurable() {
			continue
		}
		// Past the cap, keep draining the batch but record nothing.
		if s.limitReached() {
			continue
		}

		// ev.Time is the device->kernel boundary, now is the
		// kernel->user boundary. A negative delta means the device
		// clock domain never got aligned; skip rather than record
		// garbage.
		now := s.cfg.Now()
		if now < ev.Time {
			continue
		}
		deltaUS := float64(now-ev.Time) / 1000
		s.stats.Record(deltaUS)
		s.MeasuredEvents++

		if s.cfg.Quiet {
			continue
		}
		fmt.Fprintf(s.out, "[%s] code=%d val=%d  latency=%.2f us\n", ev.TypeName(), ev.Code, ev.Value, deltaUS)
		if s.MeasuredEvents%rollingInterval == 0 {
			if snap, ok := s.stats.Snapshot(); ok {
				snap.Print(s.out, false)
			}
		}
	}
}

func (s *Sampler) limitReached() bool {
	return s.cfg.Limit > 0 && s.stats.Count() >= s.cfg.Limit
}

// PrintSummary emits the final statistics block, or a hint when nothing
// measurable arrived, followed by the run counters. Called exactly once
// after Run returns; never suppressed by quiet mode.
func (s *Sampler) PrintSummary() {
	if snap, ok := s.stats.Snapshot(); ok {
		snap.Print(s.out, true)
	} else {
		fmt.Fprintln(s.out, "No measurable input events captured. Try another device (e.g., a keyboard/touchscreen) or remove --quiet.")
	}
	fmt.Fprintf(s.out, "Total events seen: %d | Latencies measured: %d\n", s.TotalEvents, s.MeasuredEvents)
}
