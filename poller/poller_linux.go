//go:build linux

package poller

import (
	"sync"

	"github.com/juju/errors"
	"golang.org/x/sys/unix"
)

// epoller is the Linux epoll(7)-backed Poller. The kernel's epoll_data union
// is exposed by golang.org/x/sys/unix as two int32 fields (Fd, Pad); together
// they carry our opaque uint64 tag unchanged, so Wait never has to consult
// the device registry to resolve a ready fd back to a slot.
type epoller struct {
	mu   sync.Mutex
	fd   int
	tags map[int]uint64 // fd -> tag, kept only so Unregister is legal mid-epoll
}

func New() (Poller, error) {
	fd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return nil, errors.Annotate(err, "poller: epoll_create1")
	}
	return &epoller{fd: fd, tags: make(map[int]uint64)}, nil
}

func packTag(tag uint64) unix.EpollEvent {
	return unix.EpollEvent{
		Events: unix.EPOLLIN,
		Fd:     int32(uint32(tag)),
		Pad:    int32(uint32(tag >> 32)),
	}
}

func unpackTag(ev *unix.EpollEvent) uint64 {
	return uint64(uint32(ev.Fd)) | uint64(uint32(ev.Pad))<<32
}

func (p *epoller) Register(fd int, tag uint64) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	ev := packTag(tag)
	if err := unix.EpollCtl(p.fd, unix.EPOLL_CTL_ADD, fd, &ev); err != nil {
		return errors.Annotatef(err, "poller: epoll_ctl add fd=%d", fd)
	}
	p.tags[fd] = tag
	return nil
}

func (p *epoller) Unregister(fd int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.tags[fd]; !ok {
		return nil
	}
	delete(p.tags, fd)
	if err := unix.EpollCtl(p.fd, unix.EPOLL_CTL_DEL, fd, nil); err != nil {
		if err == unix.EBADF || err == unix.ENOENT {
			return nil
		}
		return errors.Annotatef(err, "poller: epoll_ctl del fd=%d", fd)
	}
	return nil
}

const maxEpollEvents = 16

func (p *epoller) Wait() ([]uint64, error) {
	var raw [maxEpollEvents]unix.EpollEvent
	n, err := unix.EpollWait(p.fd, raw[:], int(WaitTimeout.Milliseconds()))
	if err != nil {
		if err == unix.EINTR {
			return nil, nil
		}
		return nil, errors.Annotate(err, "poller: epoll_wait")
	}
	tags := make([]uint64, n)
	for i := 0; i < n; i++ {
		tags[i] = unpackTag(&raw[i])
	}
	return tags, nil
}

func (p *epoller) Close() error {
	return unix.Close(p.fd)
}
