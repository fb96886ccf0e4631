package hotplug

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestWatcherSignalsImmediatelyAfterCreate(t *testing.T) {
	dir := t.TempDir()
	w, err := New(dir)
	require.NoError(t, err)
	defer w.Close()

	f, err := os.Create(filepath.Join(dir, "event7"))
	require.NoError(t, err)
	f.Close()

	select {
	case <-w.Signal():
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for signal; it must not wait for RescanWindow")
	}
}

func TestWatcherCoalescesBurst(t *testing.T) {
	dir := t.TempDir()
	w, err := New(dir)
	require.NoError(t, err)
	defer w.Close()

	for i := 0; i < 5; i++ {
		f, err := os.Create(filepath.Join(dir, "event"+string(rune('0'+i))))
		require.NoError(t, err)
		f.Close()
		time.Sleep(50 * time.Millisecond)
	}

	select {
	case <-w.Signal():
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for signal")
	}

	select {
	case <-w.Signal():
		t.Fatal("expected burst to coalesce into a single pending signal")
	case <-time.After(200 * time.Millisecond):
	}
}
