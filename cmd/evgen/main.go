//go:build linux && (amd64 || arm64)

// evgen writes synthetic evdev-format input events at a fixed pace.
//
// Usage:
//
//	mkfifo /tmp/fake-events
//	go run ./cmd/evgen --count 200 --rate 50 /tmp/fake-events &
//	evlag /tmp/fake-events
//
// Each record carries the current CLOCK_MONOTONIC time (plus an
// optional skew), so evlag measures the FIFO transit latency. This is a
// manual verification tool, not an automated test.
package main

import (
	"context"
	"encoding/binary"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	flag "github.com/spf13/pflag"
	"golang.org/x/sys/unix"
	"golang.org/x/time/rate"
)

// Wire size of struct input_event on 64-bit Linux
const eventSize = 24

// eventStamp shifts the current monotonic time by the configured skew,
// floored at zero: CLOCK_MONOTONIC counts from boot, so a negative
// skew larger than the uptime would otherwise wrap the unsigned wire
// fields into far-future timestamps.
func eventStamp(nowNS int64, skew time.Duration) time.Duration {
	stamp := time.Duration(nowNS) + skew
	if stamp < 0 {
		stamp = 0
	}
	return stamp
}

func main() {
	count := flag.Int("count", 100, "Number of events to emit")
	eps := flag.Float64("rate", 50, "Events per second")
	skew := flag.Duration("skew", 0, "Offset added to event timestamps (simulates clock skew)")
	evType := flag.Uint16("type", 1, "Event type code (1=EV_KEY)")
	evCode := flag.Uint16("code", 30, "Event code (30=KEY_A)")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Usage: evgen [flags] <output-path>")
		fmt.Fprintln(os.Stderr, "")
		flag.PrintDefaults()
		os.Exit(1)
	}

	// Opening a FIFO for writing blocks until the reader side opens,
	// which is exactly the synchronization we want.
	out, err := os.OpenFile(flag.Arg(0), os.O_WRONLY|os.O_CREATE, 0o644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	defer out.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	limiter := rate.NewLimiter(rate.Limit(*eps), 1)
	buf := make([]byte, eventSize)

	for i := 0; i < *count; i++ {
		if err := limiter.Wait(ctx); err != nil {
			break
		}

		var ts unix.Timespec
		if err := unix.ClockGettime(unix.CLOCK_MONOTONIC, &ts); err != nil {
			fmt.Fprintf(os.Stderr, "error: clock_gettime: %v\n", err)
			os.Exit(1)
		}
		stamp := eventStamp(ts.Nano(), *skew)

		binary.NativeEndian.PutUint64(buf[0:8], uint64(stamp/time.Second))
		binary.NativeEndian.PutUint64(buf[8:16], uint64(stamp%time.Second)/1000)
		binary.NativeEndian.PutUint16(buf[16:18], *evType)
		binary.NativeEndian.PutUint16(buf[18:20], *evCode)
		binary.NativeEndian.PutUint32(buf[20:24], uint32(i%2)) // alternate press/release

		if _, err := out.Write(buf); err != nil {
			fmt.Fprintf(os.Stderr, "error: write: %v\n", err)
			os.Exit(1)
		}
	}
}
