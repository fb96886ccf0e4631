package engine

import (
	"fmt"
	"sync"

	"github.com/juju/errors"

	"asyncinput/device"
	"asyncinput/event"
	"asyncinput/gpiobutton"
)

// gpioHandle tracks a running button source so RemoveGPIOButton can stop it
// cleanly.
type gpioHandle struct {
	src  *gpiobutton.Source
	id   int32
	stop chan struct{}
}

var (
	gpioMu      sync.Mutex
	gpioHandles = map[string]*gpioHandle{}
)

func gpioKey(chipPath string, line uint32) string { return fmt.Sprintf("%s:%d", chipPath, line) }

// AddGPIOButton opens line on the gpiochip at chipPath and starts feeding
// its edge transitions into the engine's raw stream tagged with code
// (spec.md §4.9, an addition over spec.md). Its synthetic path
// "gpio:<chip>:<line>" participates in the same Device Registry and Filter
// as any evdev node.
func AddGPIOButton(chipPath string, line uint32, code uint16, activeLow bool) error {
	e, err := current()
	if err != nil {
		return err
	}

	key := gpioKey(chipPath, line)
	gpioMu.Lock()
	defer gpioMu.Unlock()
	if _, exists := gpioHandles[key]; exists {
		return nil
	}

	src, openErr := gpiobutton.Open(chipPath, line, code, activeLow, "asyncinput")
	if openErr != nil {
		return errors.Annotate(openErr, "engine: open gpio button")
	}

	path := "gpio:" + key
	id := e.ids.assign(path)
	desc := &device.Descriptor{ID: id, Path: path, Kind: device.KindGPIO}
	if !e.filter.accepts(desc.Info()) {
		src.Close()
		return nil
	}
	if _, addErr := e.registry.Add(desc); addErr != nil {
		src.Close()
		return errors.Annotate(addErr, "engine: register gpio button")
	}

	stop := make(chan struct{})
	ch := make(chan event.Record, 16)
	e.alive.Add(1)
	go func() {
		defer e.alive.Done()
		src.Run(id, ch, stop)
	}()
	e.alive.Add(1)
	go func() {
		defer e.alive.Done()
		for {
			select {
			case rec := <-ch:
				e.dispatchRecord(rec)
			case <-stop:
				return
			}
		}
	}()

	gpioHandles[key] = &gpioHandle{src: src, id: id, stop: stop}
	return nil
}

// stopAllGPIOButtons is called from Shutdown to stop every button goroutine,
// so that the engine's alive.Wait() can join them.
func (e *Engine) stopAllGPIOButtons() {
	gpioMu.Lock()
	defer gpioMu.Unlock()
	for key, h := range gpioHandles {
		close(h.stop)
		h.src.Close()
		e.registry.Remove(h.id)
		delete(gpioHandles, key)
	}
}

// RemoveGPIOButton stops and closes a previously-added button line.
func RemoveGPIOButton(chipPath string, line uint32) error {
	e, err := current()
	if err != nil {
		return err
	}
	key := gpioKey(chipPath, line)
	gpioMu.Lock()
	h, ok := gpioHandles[key]
	if ok {
		delete(gpioHandles, key)
	}
	gpioMu.Unlock()
	if !ok {
		return nil
	}
	close(h.stop)
	e.registry.Remove(h.id)
	return h.src.Close()
}
