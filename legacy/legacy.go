// Package legacy implements the Legacy Pointer Reader (spec.md §4.8): a
// decoder for the aggregated PS/2-style byte stream exposed at
// /dev/input/mice, which carries no per-device identity and must be
// represented as a single pseudo-device in the event stream.
//
// The stream is a fixed 3- or 4-byte packet format with no framing beyond
// byte 0's sync bits, so decoding it is a few bitwise comparisons — nothing
// here benefits from a third-party parser (see DESIGN.md).
package legacy

import (
	"bufio"
	"io"

	"asyncinput/event"
)

// packetLen is 3 for a plain PS/2 mouse, 4 when the wheel byte is present.
// The caller picks the format through NewReader's wheel argument; the
// reader does not detect wheel support from the stream.
const (
	packetLen3 = 3
	packetLen4 = 4
)

// button bit positions within packet byte 0, matching the PS/2 mouse
// protocol (and the original implementation's byte layout exactly).
const (
	bitLeft   = 1 << 0
	bitRight  = 1 << 1
	bitMiddle = 1 << 2
	syncBits  = 0x08 // byte 0 bit 3 is always set on a valid packet
)

// Reader decodes a raw /dev/input/mice byte stream into canonical events,
// all carrying event.MicePseudoDeviceID since the legacy stream has no
// identity of its own.
type Reader struct {
	r        *bufio.Reader
	wheel    bool
	prevMask byte
}

// NewReader wraps r, a /dev/input/mice byte stream (the engine opens it
// read-only and bounds each read with a deadline). wheel enables the
// 4-byte packet format.
func NewReader(r io.Reader, wheel bool) *Reader {
	return &Reader{r: bufio.NewReader(r), wheel: wheel}
}

// ReadBatch blocks for one packet and returns the SYN-terminated batch of
// canonical events it decodes to (a REL for X if nonzero, a REL for Y if
// nonzero, a REL for the wheel if nonzero and enabled, one KEY per button
// whose state changed, then a SYN_REPORT) — mirroring how a real evdev
// device batches a single hardware sample.
func (rd *Reader) ReadBatch(timestampNS int64) ([]event.Record, error) {
	n := packetLen3
	if rd.wheel {
		n = packetLen4
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(rd.r, buf); err != nil {
		return nil, err
	}

	mask := buf[0]
	dx := int32(int8(buf[1]))
	dy := -int32(int8(buf[2])) // the device's Y axis is inverted relative to evdev's convention

	var out []event.Record
	if dx != 0 {
		out = append(out, event.Record{DeviceID: event.MicePseudoDeviceID, Kind: event.KindRel, Code: event.RelX, Value: dx, TimestampNS: timestampNS})
	}
	if dy != 0 {
		out = append(out, event.Record{DeviceID: event.MicePseudoDeviceID, Kind: event.KindRel, Code: event.RelY, Value: dy, TimestampNS: timestampNS})
	}
	if rd.wheel {
		if w := int32(int8(buf[3])); w != 0 {
			out = append(out, event.Record{DeviceID: event.MicePseudoDeviceID, Kind: event.KindRel, Code: event.RelWheel, Value: w, TimestampNS: timestampNS})
		}
	}

	changed := mask ^ rd.prevMask
	emitButton := func(bit byte, code uint16) {
		if changed&bit == 0 {
			return
		}
		v := int32(0)
		if mask&bit != 0 {
			v = 1
		}
		out = append(out, event.Record{DeviceID: event.MicePseudoDeviceID, Kind: event.KindKey, Code: code, Value: v, TimestampNS: timestampNS})
	}
	emitButton(bitLeft, event.BtnLeft)
	emitButton(bitRight, event.BtnRight)
	emitButton(bitMiddle, event.BtnMiddle)
	rd.prevMask = mask

	out = append(out, event.Record{DeviceID: event.MicePseudoDeviceID, Kind: event.KindSyn, Code: event.SynReport, TimestampNS: timestampNS})
	return out, nil
}
