// Package synthtest builds FIFO-backed synthetic /dev/input-shaped device
// nodes so tests can drive the real scan -> epoll_wait -> decode -> dispatch
// path without real evdev hardware — the "synthetic device creation for
// self-test" collaborator spec.md §1 names as out of scope for the engine
// itself, and the "given a synthetic device..." setup spec.md §8 assumes.
//
// A synthetic device is a named pipe, not a character device. epoll_wait
// treats it exactly like a real evdev node (readiness-based, no polling); a
// regular file would not do, since epoll_ctl(ADD) on one returns EPERM. The
// tradeoff is that the evdev identity ioctls (EVIOCGID/EVIOCGNAME) fail on a
// FIFO, so every synthetic Device reports an empty Name; tests that need to
// pick one out of a directory filter on Path instead.
package synthtest

import (
	"fmt"
	"os"
	"path/filepath"
	"syscall"
	"testing"
	"time"
	"unsafe"

	inputevent "github.com/temoto/inputevent-go"
	"golang.org/x/sys/unix"

	"asyncinput/event"
)

// Dir wraps a temp directory shaped like /dev/input, handing out
// auto-numbered eventN nodes.
type Dir struct {
	t    testing.TB
	path string
	next int
}

// NewDir creates a temp directory that testing.TB removes on cleanup.
func NewDir(t testing.TB) *Dir {
	return &Dir{t: t, path: t.TempDir()}
}

func (d *Dir) Path() string { return d.path }

// AddDevice creates a new synthetic node named eventN, N being the next
// unused index handed out by this Dir.
func (d *Dir) AddDevice() *Device {
	name := fmt.Sprintf("event%d", d.next)
	d.next++
	return d.AddNamedDevice(name)
}

// AddNamedDevice creates a synthetic node with an explicit name. The name
// must start with "event" or the worker's scan ignores it.
func (d *Dir) AddNamedDevice(name string) *Device {
	d.t.Helper()
	path := filepath.Join(d.path, name)
	if err := syscall.Mkfifo(path, 0600); err != nil {
		d.t.Fatalf("synthtest: mkfifo %s: %s", path, err)
	}
	f, err := os.OpenFile(path, os.O_RDWR|unix.O_NONBLOCK, 0)
	if err != nil {
		d.t.Fatalf("synthtest: open %s: %s", path, err)
	}
	dv := &Device{path: path, f: f}
	d.t.Cleanup(func() { dv.close() })
	return dv
}

// Device is one synthetic input node: a named pipe this end holds open for
// writing, so the worker's own read end sees a live device until the test
// removes it.
type Device struct {
	path string
	f    *os.File
}

func (dv *Device) Path() string { return dv.path }

// Emit writes one raw input event in the exact wire layout
// github.com/temoto/inputevent-go decodes — the same fixed-size struct cast
// its own ReadOne uses on the way in, just run in reverse.
func (dv *Device) Emit(kind event.Kind, code uint16, value int32, ts time.Time) error {
	ie := inputevent.InputEvent{
		Time:  syscall.NsecToTimeval(ts.UnixNano()),
		Type:  uint16(kind),
		Code:  code,
		Value: value,
	}
	buf := (*[inputevent.EventSizeof]byte)(unsafe.Pointer(&ie))[:]
	_, err := dv.f.Write(buf)
	return err
}

// EmitAt is Emit with the timestamp given directly as nanoseconds since the
// Unix epoch, so tests can assert exact TimestampNS round-tripping.
func (dv *Device) EmitAt(kind event.Kind, code uint16, value int32, timestampNS int64) error {
	return dv.Emit(kind, code, value, time.Unix(0, timestampNS))
}

// Remove unlinks the underlying node and closes this end, simulating a
// hotplug delete: the next scan sees the node gone.
func (dv *Device) Remove() error {
	if err := os.Remove(dv.path); err != nil {
		return err
	}
	return dv.close()
}

func (dv *Device) close() error {
	if dv.f == nil {
		return nil
	}
	err := dv.f.Close()
	dv.f = nil
	return err
}
