package event

// Code space constants for the common subset of keys, pointer buttons, and
// relative axes spec.md §6 requires to be published. These are the literal
// Linux evdev numeric values (linux/input-event-codes.h); on the reference
// platform they alias the kernel's own KEY_*/BTN_*/REL_* definitions exactly.
const (
	KeyEsc   uint16 = 1
	Key1     uint16 = 2
	Key2     uint16 = 3
	Key3     uint16 = 4
	Key4     uint16 = 5
	Key5     uint16 = 6
	Key6     uint16 = 7
	Key7     uint16 = 8
	Key8     uint16 = 9
	Key9     uint16 = 10
	Key0     uint16 = 11
	KeyQ     uint16 = 16
	KeyW     uint16 = 17
	KeyE     uint16 = 18
	KeyR     uint16 = 19
	KeyT     uint16 = 20
	KeyY     uint16 = 21
	KeyU     uint16 = 22
	KeyI     uint16 = 23
	KeyO     uint16 = 24
	KeyP     uint16 = 25
	KeyEnter uint16 = 28
	KeyLeftCtrl uint16 = 29
	KeyA     uint16 = 30
	KeyS     uint16 = 31
	KeyD     uint16 = 32
	KeyF     uint16 = 33
	KeyG     uint16 = 34
	KeyH     uint16 = 35
	KeyJ     uint16 = 36
	KeyK     uint16 = 37
	KeyL     uint16 = 38
	KeyLeftShift uint16 = 42
	KeyZ     uint16 = 44
	KeyX     uint16 = 45
	KeyC     uint16 = 46
	KeyV     uint16 = 47
	KeyB     uint16 = 48
	KeyN     uint16 = 49
	KeyM     uint16 = 50
	KeyRightShift uint16 = 54
	KeyLeftAlt    uint16 = 56
	KeySpace uint16 = 57
	KeyRightCtrl  uint16 = 97
	KeyRightAlt   uint16 = 100
	KeyLeftMeta   uint16 = 125
	KeyRightMeta  uint16 = 126
	KeyF1    uint16 = 59
	KeyF2    uint16 = 60
	KeyF3    uint16 = 61
	KeyF4    uint16 = 62
	KeyF5    uint16 = 63
	KeyF6    uint16 = 64
	KeyF7    uint16 = 65
	KeyF8    uint16 = 66
	KeyF9    uint16 = 67
	KeyF10   uint16 = 68
	KeyF11   uint16 = 87
	KeyF12   uint16 = 88
)

const (
	BtnLeft   uint16 = 0x110
	BtnRight  uint16 = 0x111
	BtnMiddle uint16 = 0x112
	BtnSide   uint16 = 0x113
	BtnExtra  uint16 = 0x114
)

const (
	RelX      uint16 = 0x00
	RelY      uint16 = 0x01
	RelHWheel uint16 = 0x06
	RelWheel  uint16 = 0x08
)

const (
	SynReport uint16 = 0
	MscScan   uint16 = 4
)
