// Package device implements the Device Registry (spec.md §4.2): a flat,
// mutex-guarded collection of open device handles keyed by stable id,
// bounded at MaxDevices entries.
package device

import (
	"os"
	"sync"

	"github.com/juju/errors"
)

// MaxDevices is the implementation-chosen registry ceiling, matching the
// original C reference's MAX_DEVICES.
const MaxDevices = 128

// Kind distinguishes the origin of a Descriptor: a real evdev node or a
// supplementary source (GPIO button, §4.9) registered through the same
// pipeline.
type Kind int

const (
	KindEvdev Kind = iota
	KindGPIO
)

// Descriptor is the in-memory record of an open OS input device.
type Descriptor struct {
	ID      int32
	Handle  *os.File
	Path    string
	Name    string
	Bus     uint16
	Vendor  uint16
	Product uint16
	Version uint16
	Kind    Kind
}

// Info is the read-only view passed to an acceptance predicate (spec.md
// §4.4): the descriptor fields plus the OS path, with no ability to mutate
// engine state from inside the predicate.
type Info struct {
	ID      int32
	Path    string
	Name    string
	Bus     uint16
	Vendor  uint16
	Product uint16
	Version uint16
}

func (d *Descriptor) Info() Info {
	return Info{
		ID: d.ID, Path: d.Path, Name: d.Name,
		Bus: d.Bus, Vendor: d.Vendor, Product: d.Product, Version: d.Version,
	}
}

// Filter is the caller-installed acceptance predicate plus its opaque
// context (spec.md §4.4).
type Filter func(info Info, ctx interface{}) bool

var errFull = errors.New("device: registry full")

// Registry holds every currently-registered Descriptor, indexed by slot so
// the Readiness Multiplexer can carry a stable slot index as its O(1)
// dispatch tag (spec.md §4.3, §9) instead of a raw pointer.
type Registry struct {
	mu   sync.Mutex
	slot [MaxDevices]*Descriptor
	n    int
}

func NewRegistry() *Registry { return &Registry{} }

// Add inserts d into the first free slot, returning that slot index.
func (r *Registry) Add(d *Descriptor) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.slot {
		if r.slot[i] == nil {
			r.slot[i] = d
			r.n++
			return i, nil
		}
	}
	return -1, errFull
}

// Remove clears the slot holding the descriptor with the given stable id, if
// any. It does not close the handle; the caller does that. Returns the
// removed descriptor, or nil if no such id is registered.
func (r *Registry) Remove(id int32) *Descriptor {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.slot {
		if d := r.slot[i]; d != nil && d.ID == id {
			r.slot[i] = nil
			r.n--
			return d
		}
	}
	return nil
}

// RemoveSlot clears the slot by index directly — used by the worker, which
// already holds the slot index from the readiness tag and must not scan.
func (r *Registry) RemoveSlot(slot int) *Descriptor {
	r.mu.Lock()
	defer r.mu.Unlock()
	d := r.slot[slot]
	r.slot[slot] = nil
	if d != nil {
		r.n--
	}
	return d
}

func (r *Registry) Get(slot int) *Descriptor {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.slot[slot]
}

func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.n
}

// HasID reports whether id is currently registered.
func (r *Registry) HasID(id int32) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, d := range r.slot {
		if d != nil && d.ID == id {
			return true
		}
	}
	return false
}

// Iterate calls fn for every occupied slot, in slot order. fn must not call
// back into the registry.
func (r *Registry) Iterate(fn func(slot int, d *Descriptor)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, d := range r.slot {
		if d != nil {
			fn(i, d)
		}
	}
}
