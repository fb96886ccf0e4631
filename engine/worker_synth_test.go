package engine

import (
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"asyncinput/device"
	"asyncinput/event"
	"asyncinput/event/synthtest"
)

// spec.md §8 scenario 1: five key presses polled with no sink installed.
func TestWorkerPollFivePresses(t *testing.T) {
	dir := synthtest.NewDir(t)
	dev := dir.AddDevice()

	require.NoError(t, Init(dir.Path(), 1024, "", nil))
	defer Shutdown()

	for i := int64(1); i <= 5; i++ {
		require.NoError(t, dev.EmitAt(event.KindKey, event.KeyA, 1, i*100*1000))
	}

	e, err := current()
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		return e.ring.Len() >= 5
	}, 2*time.Second, 10*time.Millisecond, "worker never drained the synthetic device")

	out := make([]event.Record, 10)
	n, err := Poll(out)
	require.NoError(t, err)
	require.Equal(t, 5, n)
	for i := 0; i < n; i++ {
		assert.EqualValues(t, 1, out[i].Value)
		if i > 0 {
			assert.Greater(t, out[i].TimestampNS, out[i-1].TimestampNS)
		}
	}
}

// spec.md §8 scenario 2: a burst of relative-motion packets delivered through
// an installed sink, with the cumulative value equal to the sum injected.
func TestWorkerSinkObservesRelBurst(t *testing.T) {
	dir := synthtest.NewDir(t)
	dev := dir.AddDevice()

	require.NoError(t, Init(dir.Path(), 1024, "", nil))
	defer Shutdown()

	var count int32
	var sum int64
	require.NoError(t, RegisterCallback(func(rec event.Record, ctx interface{}) {
		if rec.Kind == event.KindRel && rec.Code == event.RelX {
			atomic.AddInt32(&count, 1)
			atomic.AddInt64(&sum, int64(rec.Value))
		}
	}, nil))

	const n = 2000
	var wantSum int64
	for i := 0; i < n; i++ {
		delta := int32(1)
		if i%2 == 0 {
			delta = -1
		}
		wantSum += int64(delta)
		require.NoError(t, dev.EmitAt(event.KindRel, event.RelX, delta, int64(i+1)*1000))
	}

	require.Eventually(t, func() bool {
		return atomic.LoadInt32(&count) == n
	}, 5*time.Second, 10*time.Millisecond, "sink did not observe the full burst")
	assert.EqualValues(t, wantSum, atomic.LoadInt64(&sum))
}

// spec.md §8 scenario 3: a Q press then release through the real device path
// (not the unit-level dispatchKeymap shortcut) yields exactly two key
// records, "q" on press and no text on release.
func TestWorkerKeymapPressRelease(t *testing.T) {
	dir := synthtest.NewDir(t)
	dev := dir.AddDevice()

	require.NoError(t, Init(dir.Path(), 1024, "", nil))
	defer Shutdown()
	require.NoError(t, EnableKeymap(true))

	var mu sync.Mutex
	var recs []event.KeyRecord
	require.NoError(t, RegisterKeyCallback(func(rec event.KeyRecord, ctx interface{}) {
		mu.Lock()
		recs = append(recs, rec)
		mu.Unlock()
	}, nil))

	require.NoError(t, dev.EmitAt(event.KindKey, event.KeyQ, 1, 1000))
	require.NoError(t, dev.EmitAt(event.KindKey, event.KeyQ, 0, 2000))

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(recs) >= 2
	}, 2*time.Second, 10*time.Millisecond, "keymap stream never delivered both records")

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, recs, 2)
	assert.True(t, recs[0].Down)
	assert.Equal(t, "q", recs[0].TextString())
	assert.False(t, recs[1].Down)
	assert.Equal(t, "", recs[1].TextString())
}

// spec.md §8 scenario 4: installing a filter drops device_count to 0, and a
// hotplug attach matching the filter is admitted within the rescan window,
// after which motion from it is delivered. A synthetic node's identity
// ioctls always fail (it is a FIFO, not a real evdev char device), so unlike
// real hardware it never has a Name; the filter matches on Path instead,
// which device.Info exposes the same way (spec.md §4.4).
func TestWorkerFilterAdmitsMatchingHotplugAttach(t *testing.T) {
	dir := synthtest.NewDir(t)
	dir.AddDevice() // event0: a node the filter below must drop

	require.NoError(t, Init(dir.Path(), 1024, "", nil))
	defer Shutdown()

	require.NoError(t, SetFilter(func(info device.Info, ctx interface{}) bool {
		return strings.Contains(info.Path, "mouse")
	}, nil))

	n, err := DeviceCount()
	require.NoError(t, err)
	require.Equal(t, 0, n)

	dev := dir.AddNamedDevice("eventmouse0")

	require.Eventually(t, func() bool {
		n, _ := DeviceCount()
		return n == 1
	}, 3*time.Second, 20*time.Millisecond, "matching hotplug attach was never admitted")

	var got event.Record
	require.NoError(t, RegisterCallback(func(rec event.Record, ctx interface{}) { got = rec }, nil))
	require.NoError(t, dev.EmitAt(event.KindRel, event.RelX, 5, 1000))

	require.Eventually(t, func() bool {
		return got.Code == event.RelX
	}, 2*time.Second, 10*time.Millisecond, "motion from the admitted device was never dispatched")
	assert.EqualValues(t, 5, got.Value)
}

// spec.md §8 scenario 6: Shutdown mid-drain stops delivery; nothing reaches
// the sink after Shutdown returns, even if the writer keeps producing.
func TestShutdownStopsSinkMidDrain(t *testing.T) {
	dir := synthtest.NewDir(t)
	dev := dir.AddDevice()

	require.NoError(t, Init(dir.Path(), 1024, "", nil))
	defer Shutdown()

	var count int32
	require.NoError(t, RegisterCallback(func(rec event.Record, ctx interface{}) {
		atomic.AddInt32(&count, 1)
	}, nil))

	stopWriting := make(chan struct{})
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		i := int64(1)
		for {
			select {
			case <-stopWriting:
				return
			default:
			}
			_ = dev.EmitAt(event.KindRel, event.RelX, 1, i*1000)
			i++
			time.Sleep(time.Millisecond)
		}
	}()

	require.Eventually(t, func() bool {
		return atomic.LoadInt32(&count) > 0
	}, 2*time.Second, 5*time.Millisecond, "sink never observed any event before shutdown")

	require.NoError(t, Shutdown())
	close(stopWriting)
	<-writerDone

	after := atomic.LoadInt32(&count)
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, after, atomic.LoadInt32(&count), "sink was called after Shutdown returned")
}
