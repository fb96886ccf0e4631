package keymap

import "asyncinput/event"

// buildUSTable populates the xkb-keycode-indexed level table for a plain US
// QWERTY layout (rules=evdev, model=pc105, layout=us, no variant/options).
// Keysym values here reuse the evdev code as a stand-in identifier, since no
// xkbcommon binding is wired; only the rune fields (used for Text) need to
// carry real US-layout semantics.
func buildUSTable() table {
	t := make(table, 64)

	add := func(code uint16, lower, upper rune) {
		t[toXkbKeycode(code)] = level{
			rune1: lower, rune2: upper,
			keysym:    uint32(code),
			printable: lower != 0,
		}
	}

	add(event.Key1, '1', '!')
	add(event.Key2, '2', '@')
	add(event.Key3, '3', '#')
	add(event.Key4, '4', '$')
	add(event.Key5, '5', '%')
	add(event.Key6, '6', '^')
	add(event.Key7, '7', '&')
	add(event.Key8, '8', '*')
	add(event.Key9, '9', '(')
	add(event.Key0, '0', ')')

	add(event.KeyQ, 'q', 'Q')
	add(event.KeyW, 'w', 'W')
	add(event.KeyE, 'e', 'E')
	add(event.KeyR, 'r', 'R')
	add(event.KeyT, 't', 'T')
	add(event.KeyY, 'y', 'Y')
	add(event.KeyU, 'u', 'U')
	add(event.KeyI, 'i', 'I')
	add(event.KeyO, 'o', 'O')
	add(event.KeyP, 'p', 'P')

	add(event.KeyA, 'a', 'A')
	add(event.KeyS, 's', 'S')
	add(event.KeyD, 'd', 'D')
	add(event.KeyF, 'f', 'F')
	add(event.KeyG, 'g', 'G')
	add(event.KeyH, 'h', 'H')
	add(event.KeyJ, 'j', 'J')
	add(event.KeyK, 'k', 'K')
	add(event.KeyL, 'l', 'L')

	add(event.KeyZ, 'z', 'Z')
	add(event.KeyX, 'x', 'X')
	add(event.KeyC, 'c', 'C')
	add(event.KeyV, 'v', 'V')
	add(event.KeyB, 'b', 'B')
	add(event.KeyN, 'n', 'N')
	add(event.KeyM, 'm', 'M')

	add(event.KeySpace, ' ', ' ')

	// Non-printable keys still get a keysym so callers can recognize them,
	// just no text production.
	nonPrintable := func(code uint16) {
		t[toXkbKeycode(code)] = level{keysym: uint32(code)}
	}
	nonPrintable(event.KeyEsc)
	nonPrintable(event.KeyEnter)
	for _, c := range []uint16{
		event.KeyF1, event.KeyF2, event.KeyF3, event.KeyF4,
		event.KeyF5, event.KeyF6, event.KeyF7, event.KeyF8,
		event.KeyF9, event.KeyF10, event.KeyF11, event.KeyF12,
	} {
		nonPrintable(c)
	}

	// Modifiers get a keysym like any other key (spec.md §4.7: every KEY
	// transition yields a Key Record); they just never carry text.
	nonPrintable(event.KeyLeftShift)
	nonPrintable(event.KeyRightShift)
	nonPrintable(event.KeyLeftCtrl)
	nonPrintable(event.KeyRightCtrl)
	nonPrintable(event.KeyLeftAlt)
	nonPrintable(event.KeyRightAlt)
	nonPrintable(event.KeyLeftMeta)
	nonPrintable(event.KeyRightMeta)

	return t
}

// buildTable dispatches on Names. Only "us" is a real layout; anything else
// falls back to the US table, since the pack carries no xkbcommon binding to
// compile an arbitrary RMLVO tuple (see DESIGN.md).
func buildTable(n Names) (table, error) {
	return buildUSTable(), nil
}
