package legacy

import (
	"bytes"
	"testing"

	"asyncinput/event"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadBatchMotionOnly(t *testing.T) {
	// sync bit set, no buttons, dx=5, dy=-3 (raw byte, so decoded dy becomes +3)
	buf := bytes.NewReader([]byte{syncBits, 5, 0xFD})
	r := NewReader(buf, false)

	recs, err := r.ReadBatch(1000)
	require.NoError(t, err)

	require.Len(t, recs, 3) // relX, relY, syn
	assert.Equal(t, event.RelX, recs[0].Code)
	assert.EqualValues(t, 5, recs[0].Value)
	assert.Equal(t, event.RelY, recs[1].Code)
	assert.EqualValues(t, 3, recs[1].Value)
	assert.Equal(t, event.KindSyn, recs[2].Kind)
	for _, rec := range recs {
		assert.Equal(t, event.MicePseudoDeviceID, rec.DeviceID)
	}
}

func TestReadBatchButtonPress(t *testing.T) {
	buf := bytes.NewReader([]byte{syncBits | bitLeft, 0, 0})
	r := NewReader(buf, false)

	recs, err := r.ReadBatch(1)
	require.NoError(t, err)
	require.Len(t, recs, 2) // left button down, syn
	assert.Equal(t, event.KindKey, recs[0].Kind)
	assert.Equal(t, event.BtnLeft, recs[0].Code)
	assert.EqualValues(t, 1, recs[0].Value)
}

func TestReadBatchWheel(t *testing.T) {
	buf := bytes.NewReader([]byte{syncBits, 0, 0, 0xFF}) // wheel byte -1
	r := NewReader(buf, true)

	recs, err := r.ReadBatch(1)
	require.NoError(t, err)
	require.Len(t, recs, 2) // wheel, syn
	assert.Equal(t, event.RelWheel, recs[0].Code)
	assert.EqualValues(t, -1, recs[0].Value)
}
