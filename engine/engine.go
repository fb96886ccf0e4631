// Package engine implements the Acquisition Worker, Dispatch Policy, and
// Public Surface (spec.md §4.5, §4.6, §6): the process-wide singleton that
// ties the device registry, readiness multiplexer, hotplug watcher, and
// optional keymap/legacy-pointer/GPIO sources into one event stream.
package engine

import (
	"sync"
	"sync/atomic"

	"github.com/juju/errors"
	alive "github.com/temoto/alive/v2"

	"asyncinput/device"
	"asyncinput/event"
	"asyncinput/hotplug"
	"asyncinput/internal/logx"
	"asyncinput/keymap"
	"asyncinput/poller"
	"asyncinput/ring"
)

// Flags is reserved for future Init options, matching spec.md §6's
// `init(flags=0)`.
type Flags uint32

var (
	mu  sync.Mutex
	eng *Engine
)

// Engine holds every piece of process-wide state. There is exactly one,
// reached only through the package-level functions below (spec.md §9's
// process-singleton option).
type Engine struct {
	devDir string

	registry *device.Registry
	ring     *ring.Ring[event.Record]
	keyRing  *ring.Ring[event.KeyRecord]

	poller  poller.Poller
	hotplug *hotplug.Watcher

	// retryUntilNS is the deadline (UnixNano), or 0 if unarmed, up to which
	// the worker keeps retrying discovery after a newly-seen node failed to
	// open on its first attempt (spec.md §4.4/§4.5's rescan-retry window).
	retryUntilNS atomic.Int64

	alive *alive.Alive

	filter   filterBox
	sink     sinkBox
	keySink  keySinkBox
	km       *keymap.Interpreter
	kmStates sync.Map // device id int32 -> *keymap.State
	kmOn     boolFlag

	legacy legacyState

	ids *stableIDTable

	log *logx.Log
}

// Init starts the engine if it is not already running. A second Init call
// before Shutdown is a no-op success, matching spec.md §6. idDir, if
// non-empty, durably persists the OS-name-to-stable-id table across
// restarts (SPEC_FULL.md §3); an empty idDir keeps the table in memory only.
func Init(devDir string, ringCapacity int, idDir string, log *logx.Log) error {
	mu.Lock()
	defer mu.Unlock()
	if eng != nil {
		return nil
	}
	if log == nil {
		log = logx.NewNop()
	}

	ids := newStableIDTable()
	if idDir != "" {
		persisted, err := openStableIDTable(idDir)
		if err != nil {
			return errors.Annotate(err, "engine: init stable id table")
		}
		ids = persisted
	}

	e := &Engine{
		devDir:   devDir,
		registry: device.NewRegistry(),
		ring:     ring.New[event.Record](ringCapacity, ring.DropNewest),
		keyRing:  ring.New[event.KeyRecord](ringCapacity, ring.DropNewest),
		alive:    alive.NewAlive(),
		km:       keymap.New(),
		ids:      ids,
		log:      log,
	}

	p, err := poller.New()
	if err != nil {
		return errors.Annotate(err, "engine: init poller")
	}
	e.poller = p

	hp, err := hotplug.New(devDir)
	if err != nil {
		p.Close()
		return errors.Annotate(err, "engine: init hotplug watcher")
	}
	e.hotplug = hp

	failed, err := e.scan()
	if err != nil {
		hp.Close()
		p.Close()
		return errors.Annotate(err, "engine: initial scan")
	}
	if failed {
		e.retryUntilNS.Store(nowNS() + hotplug.RescanWindow.Nanoseconds())
	}

	e.alive.Add(1)
	go e.workerLoop()

	eng = e
	return nil
}

// Shutdown stops the worker and legacy reader, closes every device handle,
// the hotplug watcher, and the poller, then clears the singleton. A second
// Shutdown call is a no-op success, matching spec.md §6.
func Shutdown() error {
	mu.Lock()
	e := eng
	eng = nil
	mu.Unlock()
	if e == nil {
		return nil
	}

	e.alive.Stop()
	e.stopAllGPIOButtons()
	e.stopLegacy()
	e.alive.Wait()

	e.registry.Iterate(func(_ int, d *device.Descriptor) {
		if d.Handle != nil {
			d.Handle.Close()
		}
	})
	e.hotplug.Close()
	e.poller.Close()
	return nil
}

// current returns the active engine, or a not-initialized error matching
// spec.md §6's "negative status" convention for calls made before Init or
// after Shutdown.
func current() (*Engine, error) {
	mu.Lock()
	defer mu.Unlock()
	if eng == nil {
		return nil, errNotInitialized
	}
	return eng, nil
}

var errNotInitialized = errors.New("engine: not initialized")

// DeviceCount returns the number of currently-registered devices.
func DeviceCount() (int, error) {
	e, err := current()
	if err != nil {
		return 0, err
	}
	return e.registry.Count(), nil
}

// ForEachDevice calls fn with the Info of every currently-registered device,
// in registry order. Intended for inspection tools (cmd/asyncinputctl), not
// the hot path.
func ForEachDevice(fn func(device.Info)) error {
	e, err := current()
	if err != nil {
		return err
	}
	e.registry.Iterate(func(_ int, d *device.Descriptor) { fn(d.Info()) })
	return nil
}

// SetFilter installs pred, re-evaluating every currently-registered device
// on the caller's thread (spec.md §6: "invoked on the caller thread during
// set_filter, and on the worker thread during discovery").
func SetFilter(pred device.Filter, ctx interface{}) error {
	e, err := current()
	if err != nil {
		return err
	}
	e.filter.store(pred, ctx)
	e.reevaluateFilter()
	return nil
}
