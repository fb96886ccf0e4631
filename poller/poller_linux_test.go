//go:build linux

package poller

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterWaitUnregister(t *testing.T) {
	p, err := New()
	require.NoError(t, err)
	defer p.Close()

	r, w, err := os.Pipe()
	require.NoError(t, err)
	defer r.Close()
	defer w.Close()

	require.NoError(t, p.Register(int(r.Fd()), 0xABCD))

	_, werr := w.Write([]byte("x"))
	require.NoError(t, werr)

	tags, err := p.Wait()
	require.NoError(t, err)
	require.Contains(t, tags, uint64(0xABCD))

	require.NoError(t, p.Unregister(int(r.Fd())))
}

func TestWaitTimesOutWithNothingReady(t *testing.T) {
	p, err := New()
	require.NoError(t, err)
	defer p.Close()

	tags, err := p.Wait()
	require.NoError(t, err)
	assert.Empty(t, tags)
}
