package engine

import (
	"os"
	"path/filepath"
	"strings"

	inputevent "github.com/temoto/inputevent-go"
	"golang.org/x/sys/unix"

	"asyncinput/device"
	"asyncinput/event"
	"asyncinput/hotplug"
)

// scan opens every acceptable /dev/input/eventN node not already registered
// and adds it to the registry, the poller, and assigns it a stable id, then
// removes any registered evdev descriptor whose node has since disappeared
// (spec.md §4.4: "on hotplug delete of a recognizable node, the matching
// descriptor is removed"). It reports whether any candidate node failed to
// open, so the caller can decide whether to arm a retry window (§4.4/§4.5).
func (e *Engine) scan() (failed bool, err error) {
	entries, err := os.ReadDir(e.devDir)
	if err != nil {
		return false, err
	}
	present := make(map[string]bool, len(entries))
	for _, ent := range entries {
		if !strings.HasPrefix(ent.Name(), "event") {
			continue
		}
		present[ent.Name()] = true
		path := filepath.Join(e.devDir, ent.Name())
		id := e.ids.assign(ent.Name())
		if e.registry.HasID(id) {
			continue
		}
		if err := e.openAndRegister(path, id); err != nil {
			e.log.Debugf("engine: skip %s: %s", path, err)
			failed = true
		}
	}
	e.pruneDeleted(present)
	return failed, nil
}

// pruneDeleted removes every registered evdev descriptor whose backing node
// name is not in present. GPIO-sourced descriptors (§4.9) are untouched;
// they have no corresponding node in devDir.
func (e *Engine) pruneDeleted(present map[string]bool) {
	var gone []int32
	e.registry.Iterate(func(_ int, d *device.Descriptor) {
		if d.Kind != device.KindEvdev {
			return
		}
		if !present[filepath.Base(d.Path)] {
			gone = append(gone, d.ID)
		}
	})
	for _, id := range gone {
		if d := e.registry.Remove(id); d != nil && d.Handle != nil {
			e.poller.Unregister(int(d.Handle.Fd()))
			d.Handle.Close()
		}
	}
}

func (e *Engine) openAndRegister(path string, id int32) error {
	f, err := os.OpenFile(path, os.O_RDONLY|unix.O_NONBLOCK|unix.O_CLOEXEC, 0)
	if err != nil {
		return err
	}

	idf, name, _ := device.QueryIdentity(f.Fd())
	desc := &device.Descriptor{
		ID: id, Handle: f, Path: path, Name: name,
		Bus: idf.Bustype, Vendor: idf.Vendor, Product: idf.Product, Version: idf.Version,
		Kind: device.KindEvdev,
	}

	if !e.filter.accepts(desc.Info()) {
		f.Close()
		return nil
	}

	slot, err := e.registry.Add(desc)
	if err != nil {
		f.Close()
		return err
	}
	if err := e.poller.Register(int(f.Fd()), uint64(slot)); err != nil {
		e.registry.RemoveSlot(slot)
		f.Close()
		return err
	}
	return nil
}

// reevaluateFilter drops every currently-registered device the installed
// filter now rejects (spec.md §4.4: "replacing the predicate... reduces
// device_count to 0 before set_filter returns").
func (e *Engine) reevaluateFilter() {
	var toRemove []int32
	e.registry.Iterate(func(_ int, d *device.Descriptor) {
		if !e.filter.accepts(d.Info()) {
			toRemove = append(toRemove, d.ID)
		}
	})
	for _, id := range toRemove {
		if d := e.registry.Remove(id); d != nil && d.Handle != nil {
			e.poller.Unregister(int(d.Handle.Fd()))
			d.Handle.Close()
		}
	}
}

// workerLoop is the Acquisition Worker (spec.md §4.5): it suspends
// exclusively inside the readiness multiplexer wait, drains every ready
// device by O(1) slot lookup, attempts discovery immediately on a hotplug
// notification, and keeps retrying discovery on every subsequent wake while
// a rescan-retry window from a failed open is still armed.
func (e *Engine) workerLoop() {
	defer e.alive.Done()

	for e.alive.IsRunning() {
		tags, err := e.poller.Wait()
		if err != nil {
			e.log.Errorf("engine: poller wait: %s", err)
			continue
		}
		if !e.alive.IsRunning() {
			return
		}
		for _, tag := range tags {
			e.drainDevice(int(tag))
		}
		e.drainHotplugSignal()
		e.retryPendingScan()
	}
}

// drainHotplugSignal attempts discovery immediately on a filesystem
// notification — the common, non-racy case needs no delay at all (spec.md
// §1's lowest-achievable-latency goal, §4.4's "immediate open" path).
func (e *Engine) drainHotplugSignal() {
	select {
	case <-e.hotplug.Signal():
		e.attemptScan()
	default:
	}
}

// retryPendingScan re-attempts discovery on every worker wake while a
// rescan-retry window is still armed, matching spec.md §4.5's "reattempt
// until the node opens, or the window elapses." A failed retry does not
// extend the window; only a fresh hotplug notification re-arms it.
func (e *Engine) retryPendingScan() {
	deadline := e.retryUntilNS.Load()
	if deadline == 0 {
		return
	}
	if nowNS() >= deadline {
		e.retryUntilNS.Store(0)
		return
	}
	failed, err := e.scan()
	if err != nil {
		e.log.Errorf("engine: rescan: %s", err)
		return
	}
	if !failed {
		e.retryUntilNS.Store(0)
	}
}

// attemptScan runs one discovery pass, arming (or clearing) the
// rescan-retry window depending on whether every candidate node opened.
func (e *Engine) attemptScan() {
	failed, err := e.scan()
	if err != nil {
		e.log.Errorf("engine: rescan: %s", err)
		return
	}
	if failed {
		e.retryUntilNS.Store(nowNS() + hotplug.RescanWindow.Nanoseconds())
	} else {
		e.retryUntilNS.Store(0)
	}
}

func (e *Engine) drainDevice(slot int) {
	d := e.registry.Get(slot)
	if d == nil || d.Handle == nil {
		return
	}
	for {
		ie, err := inputevent.ReadOne(d.Handle)
		if err != nil {
			// spec.md §4.5/§7: a read error (short of would-block) ends this
			// device's read loop for the current wake only; the descriptor is
			// retained and reattempted on the next readiness. Removal happens
			// only on a hotplug delete (pruneDeleted) or a filter change
			// (reevaluateFilter), never here.
			if !isAgain(err) {
				e.log.Debugf("engine: read %s: %s", d.Path, err)
			}
			return
		}
		rec := event.Record{
			DeviceID:    d.ID,
			Kind:        event.Kind(ie.Type),
			Code:        ie.Code,
			Value:       ie.Value,
			TimestampNS: int64(ie.Time.Sec)*1e9 + int64(ie.Time.Usec)*1e3,
		}
		e.dispatchRecord(rec)
		if rec.Kind == event.KindKey {
			e.dispatchKeymap(rec)
		}
	}
}

func isAgain(err error) bool {
	if pe, ok := err.(*os.PathError); ok {
		return pe.Err == unix.EAGAIN
	}
	return false
}
