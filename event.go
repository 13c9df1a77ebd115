package main

import "encoding/binary"

// Event type codes from the evdev interface (linux/input-event-codes.h)
const (
	evSyn      = 0x00
	evKey      = 0x01
	evRel      = 0x02
	evAbs      = 0x03
	evMsc      = 0x04
	evSw       = 0x05
	evLed      = 0x11
	evSnd      = 0x12
	evRep      = 0x14
	evFF       = 0x15
	evPwr      = 0x16
	evFFStatus = 0x17
)

// eventSize is the wire size of one input_event record on 64-bit Linux:
// struct timeval (two int64 fields) + type + code + value. 32-bit
// targets lay timeval out differently, so the device layer and the
// binary are gated to 64-bit Linux builds.
const eventSize = 24

// Event is one decoded input event with its kernel timestamp normalized
// to nanoseconds. The clock domain of Time is whatever the device was
// configured with (CLOCK_MONOTONIC after a successful EVIOCSCLOCKID).
type Event struct {
	Time  uint64 // kernel timestamp, nanoseconds
	Type  uint16
	Code  uint16
	Value int32
}

// Measurable reports whether the event represents user-perceivable input
// worth timing. Synchronization and other control-plane records (SYN,
// LED, SND, ...) are excluded.
func (e Event) Measurable() bool {
	switch e.Type {
	case evKey, evAbs, evRel, evMsc:
		return true
	}
	return false
}

// TypeName returns the short evdev name for the event's type code.
func (e Event) TypeName() string {
	switch e.Type {
	case evSyn:
		return "SYN"
	case evKey:
		return "KEY"
	case evRel:
		return "REL"
	case evAbs:
		return "ABS"
	case evMsc:
		return "MSC"
	case evSw:
		return "SW"
	case evLed:
		return "LED"
	case evSnd:
		return "SND"
	case evRep:
		return "REP"
	case evFF:
		return "FF"
	case evPwr:
		return "PWR"
	case evFFStatus:
		return "FF_STATUS"
	}
	return "UNK"
}

// decodeEvents parses as many complete input_event records as buf holds.
// A short trailing fragment is discarded; the kernel writes whole records
// so a fragment only appears on a torn read.
func decodeEvents(buf []byte) []Event {
	n := len(buf) / eventSize
	if n == 0 {
		return nil
	}
	events := make([]Event, 0, n)
	for i := 0; i < n; i++ {
		rec := buf[i*eventSize : (i+1)*eventSize]
		sec := binary.NativeEndian.Uint64(rec[0:8])
		usec := binary.NativeEndian.Uint64(rec[8:16])
		events = append(events, Event{
			Time:  sec*1_000_000_000 + usec*1_000,
			Type:  binary.NativeEndian.Uint16(rec[16:18]),
			Code:  binary.NativeEndian.Uint16(rec[18:20]),
			Value: int32(binary.NativeEndian.Uint32(rec[20:24])),
		})
	}
	return events
}

// encodeEvent writes one input_event record into a 24-byte buffer.
// Inverse of decodeEvents; used by the synthetic stream tooling and tests.
func encodeEvent(buf []byte, ev Event) {
	binary.NativeEndian.PutUint64(buf[0:8], ev.Time/1_000_000_000)
	binary.NativeEndian.PutUint64(buf[8:16], (ev.Time%1_000_000_000)/1_000)
	binary.NativeEndian.PutUint16(buf[16:18], ev.Type)
	binary.NativeEndian.PutUint16(buf[18:20], ev.Code)
	binary.NativeEndian.PutUint32(buf[20:24], uint32(ev.Value))
}
