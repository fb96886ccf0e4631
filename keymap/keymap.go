// Package keymap implements the Keymap Interpreter (spec.md §4.7): it turns
// raw evdev (code, down) pairs into keysyms, modifier state, and UTF-8 text,
// using a fixed US QWERTY table rather than a live xkbcommon binding (see
// DESIGN.md for why no third-party keymap compiler from the examples pack
// fits here).
package keymap

import (
	"sync/atomic"

	"asyncinput/event"
)

// XkbKeycodeOffset is the fixed evdev-to-xkb keycode offset the original
// implementation hard-codes (spec.md §4.7): xkb reserves the first 8
// keycodes, so every evdev code is shifted up by 8 before table lookup.
const XkbKeycodeOffset = 8

func toXkbKeycode(evdevCode uint16) uint32 { return uint32(evdevCode) + XkbKeycodeOffset }

// Names identifies a keyboard layout the way xkbcommon's RMLVO tuple does.
// The defaults match spec.md §4.7 exactly: evdev/pc105/us with no variant or
// options, i.e. a plain US QWERTY layout.
type Names struct {
	Rules   string
	Model   string
	Layout  string
	Variant string
	Options string
}

// DefaultNames is the layout used until SetNames is called.
var DefaultNames = Names{Rules: "evdev", Model: "pc105", Layout: "us"}

type level struct {
	rune1     rune // unshifted
	rune2     rune // shifted
	keysym    uint32
	printable bool
}

// table maps xkb keycode -> level entry. Only US QWERTY is populated; other
// Layout names fall back to this same table (there is nowhere else to get
// one without xkbcommon), which SetNames documents.
type table map[uint32]level

// Interpreter holds the active layout and modifier state. Safe for
// concurrent use: table swaps are atomic, and State is owned by a single
// caller (the engine's dispatch goroutine) per spec.md §5.
type Interpreter struct {
	names atomic.Pointer[Names]
	tbl   atomic.Pointer[table]
}

func New() *Interpreter {
	ip := &Interpreter{}
	n := DefaultNames
	ip.names.Store(&n)
	tbl := buildUSTable()
	ip.tbl.Store(&tbl)
	return ip
}

// SetNames attempts to rebuild the table for the requested layout. Only the
// US QWERTY table exists, so every Names value builds that table; Names()
// still reports the value that was set. On failure the previously active
// table is preserved untouched (spec.md §4.7: "rebuild-or-preserve"), and
// SetNames reports the failure.
func (ip *Interpreter) SetNames(n Names) error {
	tbl, err := buildTable(n)
	if err != nil {
		return err
	}
	ip.tbl.Store(&tbl)
	nn := n
	ip.names.Store(&nn)
	return nil
}

func (ip *Interpreter) Names() Names { return *ip.names.Load() }

// State tracks which modifiers are currently held down, consolidating
// left/right variants into a single bit per spec.md §3.
type State struct {
	shift, ctrl, alt, super bool
}

func (s *State) mods() event.Mods {
	var m event.Mods
	if s.shift {
		m |= event.ModShift
	}
	if s.ctrl {
		m |= event.ModCtrl
	}
	if s.alt {
		m |= event.ModAlt
	}
	if s.super {
		m |= event.ModSuper
	}
	return m
}

func (s *State) update(code uint16, down bool) bool {
	switch code {
	case event.KeyLeftShift, event.KeyRightShift:
		s.shift = down
	case event.KeyLeftCtrl, event.KeyRightCtrl:
		s.ctrl = down
	case event.KeyLeftAlt, event.KeyRightAlt:
		s.alt = down
	case event.KeyLeftMeta, event.KeyRightMeta:
		s.super = down
	default:
		return false
	}
	return true
}

// Interpret consumes one raw key transition, updating st in place, and
// returns the corresponding KeyRecord. Every KEY transition, modifiers
// included, yields a record (spec.md §4.7, §8: "for every KEY Event Record
// ... a Key Record is emitted"; the original implementation's
// maybe_emit_key_event runs unconditionally for every NI_EV_KEY event). A
// modifier transition still updates st before building its own record, so
// Mods on that record reflects the state including this transition; it
// simply carries no text, the same as any other non-printable key.
func (ip *Interpreter) Interpret(deviceID int32, code uint16, down bool, timestampNS int64, st *State) (event.KeyRecord, bool) {
	st.update(code, down)

	tbl := *ip.tbl.Load()
	lv, known := tbl[toXkbKeycode(code)]

	rec := event.KeyRecord{
		DeviceID:    deviceID,
		TimestampNS: timestampNS,
		Down:        down,
		Mods:        st.mods(),
	}
	if known {
		rec.Keysym = lv.keysym
	} else {
		rec.Keysym = 0
	}

	// Text is only produced on press, and only for printable keys
	// unaffected by Ctrl/Super (spec.md §4.7).
	if down && known && lv.printable && !st.ctrl && !st.super {
		r := lv.rune1
		if st.shift {
			r = lv.rune2
		}
		if r != 0 {
			rec.SetText(string(r))
		}
	}
	return rec, true
}
