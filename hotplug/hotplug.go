// Package hotplug implements the Hotplug Watcher (spec.md §4.5): it watches
// a device directory for filesystem events and signals the worker to
// attempt discovery immediately. The worker, not this package, owns the
// udev permission-fixup race: it opens a newly-seen node right away and
// only falls back to retrying for RescanWindow if that first open fails
// (matching the original implementation's handle_inotify_event, which
// calls scan_devices() immediately and arms rescan_until_ns only on
// failure, never unconditionally).
package hotplug

import (
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/juju/errors"
)

// RescanWindow is how long the worker keeps retrying a node that failed to
// open on first attempt, so that udev's chown/chmod following device
// creation has time to land (spec.md §4.5, matching the original
// implementation's fixed 3s window exactly).
const RescanWindow = 3 * time.Second

// Watcher observes a directory of device nodes and emits a signal on
// Signal() as soon as a relevant filesystem event arrives, with no delay of
// its own: the caller decides whether to retry.
type Watcher struct {
	fsw    *fsnotify.Watcher
	signal chan struct{}
	errs   chan error
	done   chan struct{}
}

// New starts watching dir. Call Close to release the underlying inotify fd.
func New(dir string) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Annotate(err, "hotplug: fsnotify.NewWatcher")
	}
	if err := fsw.Add(dir); err != nil {
		fsw.Close()
		return nil, errors.Annotatef(err, "hotplug: watch %s", dir)
	}
	w := &Watcher{
		fsw:    fsw,
		signal: make(chan struct{}, 1),
		errs:   make(chan error, 1),
		done:   make(chan struct{}),
	}
	go w.loop()
	return w, nil
}

// Signal receives a value as soon as the watched directory changes. The
// channel is buffered by one, so a burst of events collapses into a single
// pending signal rather than queuing — the worker's subsequent scan picks
// up every node that appeared during the burst in one pass.
func (w *Watcher) Signal() <-chan struct{} { return w.signal }

// Errors receives fsnotify's own internal errors, buffered by one; further
// errors are dropped while the buffer is full. They never stop the watch
// loop.
func (w *Watcher) Errors() <-chan error { return w.errs }

func (w *Watcher) Close() error {
	close(w.done)
	return w.fsw.Close()
}

func (w *Watcher) loop() {
	for {
		select {
		case <-w.done:
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Create|fsnotify.Remove|fsnotify.Rename|fsnotify.Write) == 0 {
				continue
			}
			select {
			case w.signal <- struct{}{}:
			default:
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			select {
			case w.errs <- err:
			default:
			}
		}
	}
}
