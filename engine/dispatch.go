package engine

import (
	"sync/atomic"

	"asyncinput/device"
	"asyncinput/event"
)

// Callback is the raw-stream sink signature (spec.md §6's register_callback).
// Runs on the worker goroutine; calling back into the engine from inside it
// is undefined behavior (spec.md §9).
type Callback func(rec event.Record, ctx interface{})

// KeyCallback is the keymap-stream sink signature.
type KeyCallback func(rec event.KeyRecord, ctx interface{})

type sinkEntry struct {
	cb  Callback
	ctx interface{}
}

// sinkBox publishes a sink pointer with release semantics on write and
// acquire semantics on read (spec.md §5), so the worker never needs a mutex
// to consult it.
type sinkBox struct {
	p atomic.Pointer[sinkEntry]
}

func (b *sinkBox) store(cb Callback, ctx interface{}) {
	b.p.Store(&sinkEntry{cb: cb, ctx: ctx})
}
func (b *sinkBox) clear()            { b.p.Store(nil) }
func (b *sinkBox) load() *sinkEntry  { return b.p.Load() }

type keySinkEntry struct {
	cb  KeyCallback
	ctx interface{}
}

type keySinkBox struct {
	p atomic.Pointer[keySinkEntry]
}

func (b *keySinkBox) store(cb KeyCallback, ctx interface{}) {
	b.p.Store(&keySinkEntry{cb: cb, ctx: ctx})
}
func (b *keySinkBox) clear()           { b.p.Store(nil) }
func (b *keySinkBox) load() *keySinkEntry { return b.p.Load() }

type filterEntry struct {
	pred device.Filter
	ctx  interface{}
}

type filterBox struct {
	p atomic.Pointer[filterEntry]
}

func (b *filterBox) store(pred device.Filter, ctx interface{}) {
	b.p.Store(&filterEntry{pred: pred, ctx: ctx})
}
func (b *filterBox) load() *filterEntry { return b.p.Load() }

func (b *filterBox) accepts(info device.Info) bool {
	e := b.p.Load()
	if e == nil || e.pred == nil {
		return true
	}
	return e.pred(info, e.ctx)
}

// boolFlag is a tiny atomic.Bool wrapper kept for naming symmetry with the
// rest of this file's boxes.
type boolFlag struct{ v atomic.Bool }

func (f *boolFlag) set(b bool) { f.v.Store(b) }
func (f *boolFlag) get() bool  { return f.v.Load() }

// dispatchRecord delivers rec through the sink if one is installed,
// otherwise enqueues it on the ring — the two are mutually exclusive per
// spec.md §6.
func (e *Engine) dispatchRecord(rec event.Record) {
	if s := e.sink.load(); s != nil {
		s.cb(rec, s.ctx)
		return
	}
	e.ring.Push(rec)
}

func (e *Engine) dispatchKey(rec event.KeyRecord) {
	if s := e.keySink.load(); s != nil {
		s.cb(rec, s.ctx)
		return
	}
	e.keyRing.Push(rec)
}

// RegisterCallback installs or clears the raw-stream sink. A nil cb reverts
// to ring delivery.
func RegisterCallback(cb Callback, ctx interface{}) error {
	e, err := current()
	if err != nil {
		return err
	}
	if cb == nil {
		e.sink.clear()
	} else {
		e.sink.store(cb, ctx)
	}
	return nil
}

// Poll copies up to len(out) queued events into out, returning the count
// copied. Returns a negative-equivalent error if the engine is not
// initialized, matching spec.md §6 (Go surfaces this as an error rather
// than a sentinel negative int).
func Poll(out []event.Record) (int, error) {
	e, err := current()
	if err != nil {
		return 0, err
	}
	return e.ring.PopMany(out), nil
}

// RegisterKeyCallback installs or clears the keymap-stream sink.
func RegisterKeyCallback(cb KeyCallback, ctx interface{}) error {
	e, err := current()
	if err != nil {
		return err
	}
	if cb == nil {
		e.keySink.clear()
	} else {
		e.keySink.store(cb, ctx)
	}
	return nil
}

// PollKeyEvents copies up to len(out) queued key records into out.
func PollKeyEvents(out []event.KeyRecord) (int, error) {
	e, err := current()
	if err != nil {
		return 0, err
	}
	return e.keyRing.PopMany(out), nil
}
