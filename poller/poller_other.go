//go:build !linux

package poller

import "github.com/juju/errors"

// New fails on non-Linux platforms: the engine's acquisition model is
// evdev/epoll-specific (spec.md §1, Non-goals).
func New() (Poller, error) {
	return nil, errors.New("poller: unsupported platform")
}
