package engine

import (
	"asyncinput/event"
	"asyncinput/keymap"
)

// EnableKeymap turns the keymap stream on or off. Disabling clears any
// per-device modifier state, so re-enabling starts from a clean slate
// rather than replaying stale modifier bits.
func EnableKeymap(on bool) error {
	e, err := current()
	if err != nil {
		return err
	}
	e.kmOn.set(on)
	if !on {
		e.kmStates.Range(func(k, _ interface{}) bool {
			e.kmStates.Delete(k)
			return true
		})
	}
	return nil
}

// SetKeymapNames rebuilds the active layout. On failure the previous layout
// is preserved (spec.md §4.7's rebuild-or-preserve semantics, carried
// through by keymap.Interpreter.SetNames).
func SetKeymapNames(rules, model, layout, variant, options string) error {
	e, err := current()
	if err != nil {
		return err
	}
	return e.km.SetNames(keymap.Names{Rules: rules, Model: model, Layout: layout, Variant: variant, Options: options})
}

// dispatchKeymap feeds one raw KEY record through the keymap interpreter, if
// enabled, tracking modifier state per device id.
func (e *Engine) dispatchKeymap(rec event.Record) {
	if !e.kmOn.get() {
		return
	}
	stAny, _ := e.kmStates.LoadOrStore(rec.DeviceID, &keymap.State{})
	st := stAny.(*keymap.State)

	krec, ok := e.km.Interpret(rec.DeviceID, rec.Code, rec.Value != 0, rec.TimestampNS, st)
	if !ok {
		return
	}
	e.dispatchKey(krec)
}
