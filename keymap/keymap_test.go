package keymap

import (
	"testing"

	"asyncinput/event"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInterpretLowercase(t *testing.T) {
	ip := New()
	var st State
	rec, ok := ip.Interpret(1, event.KeyA, true, 100, &st)
	require.True(t, ok)
	assert.Equal(t, "a", rec.TextString())
	assert.True(t, rec.Down)
}

func TestInterpretShiftUppercase(t *testing.T) {
	ip := New()
	var st State
	shiftRec, ok := ip.Interpret(1, event.KeyLeftShift, true, 1, &st)
	require.True(t, ok, "modifier transitions still yield a key record")
	assert.True(t, shiftRec.Down)
	assert.Equal(t, "", shiftRec.TextString(), "modifiers carry no text")
	assert.NotZero(t, shiftRec.Keysym, "modifiers still resolve to a keysym")

	rec, ok := ip.Interpret(1, event.KeyA, true, 2, &st)
	require.True(t, ok)
	assert.Equal(t, "A", rec.TextString())
	assert.NotZero(t, rec.Mods&event.ModShift)
}

func TestInterpretCtrlSuppressesText(t *testing.T) {
	ip := New()
	var st State
	ip.Interpret(1, event.KeyLeftCtrl, true, 1, &st)
	rec, ok := ip.Interpret(1, event.KeyC, true, 2, &st)
	require.True(t, ok)
	assert.Equal(t, "", rec.TextString())
}

func TestInterpretReleaseProducesNoText(t *testing.T) {
	ip := New()
	var st State
	rec, ok := ip.Interpret(1, event.KeyA, false, 1, &st)
	require.True(t, ok)
	assert.Equal(t, "", rec.TextString())
	assert.False(t, rec.Down)
}

func TestSetNamesRoundTripsNames(t *testing.T) {
	ip := New()
	err := ip.SetNames(Names{Rules: "evdev", Model: "pc105", Layout: "us"})
	require.NoError(t, err)
	assert.Equal(t, "us", ip.Names().Layout)
}
