//go:build linux && (amd64 || arm64)

package main

import (
	"errors"
	"fmt"
	"time"
	"unsafe"

	"golang.org/x/sys/unix"
)

// Read buffer: the kernel may queue several events between wakeups, so
// one read drains up to a full batch at once.
const readBatchEvents = 64

// evdev ioctl request numbers (linux/input.h)
const (
	eviocsClockID = 0x400445a0 // _IOW('E', 0xa0, int): set event timestamp clock
	eviocgNameNr  = 0x06       // _IOC(_IOC_READ, 'E', 0x06, len): get device name
)

func eviocgName(n int) uint {
	return uint(2<<30 | n<<16 | 'E'<<8 | eviocgNameNr)
}

// ClockStatus is the outcome of the best-effort clock alignment request.
// It only feeds a diagnostic line; the measurement loop runs the same
// way regardless.
type ClockStatus int

const (
	ClockApplied ClockStatus = iota
	ClockUnsupported
	ClockFailed
)

// Device is an open evdev character device. It owns the file descriptor
// from OpenDevice until Close.
type Device struct {
	fd   int
	path string
	buf  []byte
}

// OpenDevice opens an evdev node in non-blocking mode, so reads never
// stall: waiting for data is Wait's job.
func OpenDevice(path string) (*Device, error) {
	fd, err := unix.Open(path, unix.O_RDONLY|unix.O_NONBLOCK|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return &Device{
		fd:   fd,
		path: path,
		buf:  make([]byte, readBatchEvents*eventSize),
	}, nil
}

// RequestMonotonicClock asks the kernel to timestamp this device's
// future events with CLOCK_MONOTONIC, the same clock the sampler reads
// for "now". Without it some devices default to CLOCK_REALTIME and the
// deltas absorb NTP steps and other wall-clock jumps. Advisory: a
// refusal degrades the numbers, not the run.
func (d *Device) RequestMonotonicClock() ClockStatus {
	err := unix.IoctlSetPointerInt(d.fd, eviocsClockID, unix.CLOCK_MONOTONIC)
	switch {
	case err == nil:
		return ClockApplied
	case errors.Is(err, unix.ENOTTY), errors.Is(err, unix.EINVAL):
		return ClockUnsupported
	}
	return ClockFailed
}

// Name returns the device's self-reported name, or "unknown" when the
// query fails (non-evdev sources such as FIFOs have no name to give).
func (d *Device) Name() string {
	var raw [256]byte
	_, _, errno := unix.Syscall(unix.SYS_IOCTL,
		uintptr(d.fd), uintptr(eviocgName(len(raw))), uintptr(unsafe.Pointer(&raw[0])))
	if errno != 0 {
		return "unknown"
	}
	for i, b := range raw {
		if b == 0 {
			return string(raw[:i])
		}
	}
	return string(raw[:])
}

// Wait blocks until the device is readable or the timeout expires.
// A wakeup with hangup or error status and no data (the device was
// unplugged, or a FIFO's writer closed) is a hard error: poll would
// return it instantly forever, so treating it as a timeout would turn
// the bounded wait into a busy spin.
func (d *Device) Wait(timeout time.Duration) (bool, error) {
	fds := []unix.PollFd{{Fd: int32(d.fd), Events: unix.POLLIN}}
	n, err := unix.Poll(fds, int(timeout.Milliseconds()))
	if err != nil {
		if errors.Is(err, unix.EINTR) {
			return false, errInterrupted
		}
		return false, err
	}
	if n == 0 {
		return false, nil
	}
	revents := fds[0].Revents
	if revents&unix.POLLIN != 0 {
		return true, nil
	}
	if revents&(unix.POLLHUP|unix.POLLERR|unix.POLLNVAL) != 0 {
		return false, fmt.Errorf("%s: source hung up (revents %#x)", d.path, revents)
	}
	return false, nil
}

// ReadBatch performs one read and decodes whatever complete records it
// returned. The buffer is reused across calls; decoded events do not
// alias it.
func (d *Device) ReadBatch() ([]Event, error) {
	n, err := unix.Read(d.fd, d.buf)
	if err != nil {
		if errors.Is(err, unix.EAGAIN) {
			return nil, errWouldBlock
		}
		if errors.Is(err, unix.EINTR) {
			return nil, errInterrupted
		}
		return nil, err
	}
	if n <= 0 {
		return nil, nil
	}
	return decodeEvents(d.buf[:n]), nil
}

// Close releases the descriptor.
func (d *Device) Close() error {
	return unix.Close(d.fd)
}

// monotonicNow reads CLOCK_MONOTONIC in nanoseconds, matching the
// domain RequestMonotonicClock asks the device to stamp events with.
func monotonicNow() uint64 {
	var ts unix.Timespec
	if err := unix.ClockGettime(unix.CLOCK_MONOTONIC, &ts); err != nil {
		return 0
	}
	return uint64(ts.Nano())
}
