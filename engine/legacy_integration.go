package engine

import (
	"errors"
	"os"
	"sync"
	"time"

	"asyncinput/legacy"
)

// legacyReadDeadline bounds each blocking read against /dev/input/mice so the
// reader goroutine re-checks stop promptly instead of blocking indefinitely
// waiting on pointer motion that may never come (spec.md §5's "shutdown must
// complete within a small multiple of the multiplexer's wait timeout" — the
// original reference achieves the same responsiveness by opening the node
// O_NONBLOCK and sleeping 1ms between EAGAIN retries; a read deadline is the
// idiomatic Go equivalent for an *os.File).
const legacyReadDeadline = 100 * time.Millisecond

// legacyPointerPath is the aggregated PS/2-style device node spec.md §4.8
// reads from.
const legacyPointerPath = "/dev/input/mice"

type legacyState struct {
	mu      sync.Mutex
	running bool
	stop    chan struct{}
}

// EnableLegacyPointer starts or stops the legacy pointer reader goroutine.
// Safe to call while the worker is running (spec.md §6).
func EnableLegacyPointer(on bool) error {
	e, err := current()
	if err != nil {
		return err
	}
	e.legacy.mu.Lock()
	defer e.legacy.mu.Unlock()

	if on == e.legacy.running {
		return nil
	}
	if !on {
		close(e.legacy.stop)
		e.legacy.running = false
		return nil
	}

	f, openErr := os.OpenFile(legacyPointerPath, os.O_RDONLY, 0)
	if openErr != nil {
		return openErr
	}

	stop := make(chan struct{})
	e.legacy.stop = stop
	e.legacy.running = true
	e.alive.Add(1)
	go e.legacyLoop(f, stop)
	return nil
}

func (e *Engine) legacyLoop(f *os.File, stop chan struct{}) {
	defer e.alive.Done()
	defer f.Close()

	r := legacy.NewReader(f, false)
	for {
		select {
		case <-stop:
			return
		default:
		}
		f.SetReadDeadline(time.Now().Add(legacyReadDeadline))
		recs, err := r.ReadBatch(nowNS())
		if err != nil {
			if errors.Is(err, os.ErrDeadlineExceeded) {
				continue
			}
			return
		}
		for _, rec := range recs {
			e.dispatchRecord(rec)
		}
	}
}

func (e *Engine) stopLegacy() {
	e.legacy.mu.Lock()
	defer e.legacy.mu.Unlock()
	if e.legacy.running {
		close(e.legacy.stop)
		e.legacy.running = false
	}
}
