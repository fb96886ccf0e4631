package main

import (
	"os"

	"github.com/hashicorp/hcl"
	"github.com/juju/errors"
)

// Config mirrors the teacher's HCL-tagged configuration struct idiom
// (state/config.go's nested `hcl:"..."` sections), scoped to this daemon's
// needs instead of a vending machine's.
type Config struct {
	DeviceDir string `hcl:"device_dir"`
	StateDir  string `hcl:"state_dir"`
	Ring      struct {
		Capacity int `hcl:"capacity"`
	}
	Keymap struct {
		Enable  bool   `hcl:"enable"`
		Rules   string `hcl:"rules"`
		Model   string `hcl:"model"`
		Layout  string `hcl:"layout"`
		Variant string `hcl:"variant"`
		Options string `hcl:"options"`
	}
	LegacyPointer struct {
		Enable bool `hcl:"enable"`
	} `hcl:"legacy_pointer"`
	GPIO struct {
		Buttons []GPIOButtonConfig `hcl:"button"`
	}
	MQTT struct {
		Enable   bool   `hcl:"enable"`
		Broker   string `hcl:"broker"`
		ClientID string `hcl:"client_id"`
		Topic    string `hcl:"topic"`
	}
	Systemd struct {
		Watchdog bool `hcl:"watchdog"`
	}
}

type GPIOButtonConfig struct {
	Chip      string `hcl:"chip,key"`
	Line      uint32 `hcl:"line"`
	Code      uint16 `hcl:"code"`
	ActiveLow bool   `hcl:"active_low"`
}

func defaultConfig() *Config {
	c := &Config{DeviceDir: "/dev/input", StateDir: "/var/lib/asyncinputd"}
	c.Ring.Capacity = 1024
	c.Keymap.Rules, c.Keymap.Model, c.Keymap.Layout = "evdev", "pc105", "us"
	return c
}

func readConfig(path string) (*Config, error) {
	c := defaultConfig()
	if path == "" {
		return c, nil
	}
	bs, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Annotatef(err, "read config %s", path)
	}
	if err := hcl.Unmarshal(bs, c); err != nil {
		return nil, errors.Annotatef(err, "parse config %s", path)
	}
	return c, nil
}
