// Command asyncinputd runs the acquisition engine as a standalone daemon:
// it reads an HCL config, starts the engine, optionally reports readiness
// and a watchdog heartbeat to systemd, and optionally publishes a periodic
// health message (timestamp and polled event count) over MQTT.
package main

import (
	"flag"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/coreos/go-systemd/daemon"
	mqtt "github.com/eclipse/paho.mqtt.golang"

	"asyncinput/engine"
	"asyncinput/event"
	"asyncinput/internal/logx"
)

func main() {
	configPath := flag.String("config", "", "path to HCL config file")
	flag.Parse()

	log := logx.NewStderr(logx.LInfo)

	cfg, err := readConfig(*configPath)
	if err != nil {
		log.Errorf("%s", err)
		os.Exit(1)
	}

	if err := engine.Init(cfg.DeviceDir, cfg.Ring.Capacity, cfg.StateDir, log); err != nil {
		log.Errorf("engine init: %s", err)
		os.Exit(1)
	}
	defer engine.Shutdown()

	if cfg.Keymap.Enable {
		engine.EnableKeymap(true)
		engine.SetKeymapNames(cfg.Keymap.Rules, cfg.Keymap.Model, cfg.Keymap.Layout, cfg.Keymap.Variant, cfg.Keymap.Options)
	}
	if cfg.LegacyPointer.Enable {
		if err := engine.EnableLegacyPointer(true); err != nil {
			log.Errorf("legacy pointer: %s", err)
		}
	}
	for _, b := range cfg.GPIO.Buttons {
		if err := engine.AddGPIOButton(b.Chip, b.Line, b.Code, b.ActiveLow); err != nil {
			log.Errorf("gpio button %s:%d: %s", b.Chip, b.Line, err)
		}
	}

	var mqttClient mqtt.Client
	if cfg.MQTT.Enable {
		mqttClient = startMQTT(cfg, log)
	}

	sdNotifyReady(log)
	stopWatchdog := make(chan struct{})
	if cfg.Systemd.Watchdog {
		go watchdogLoop(stopWatchdog, log)
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	out := make([]event.Record, 256)
	for {
		select {
		case <-sig:
			close(stopWatchdog)
			if mqttClient != nil {
				mqttClient.Disconnect(250)
			}
			return
		case <-ticker.C:
			n, _ := engine.Poll(out)
			if n > 0 && mqttClient != nil {
				publishHealth(mqttClient, cfg.MQTT.Topic, n)
			}
		}
	}
}

func sdNotifyReady(log *logx.Log) {
	if ok, err := daemon.SdNotify(false, daemon.SdNotifyReady); err != nil {
		log.Debugf("sd_notify ready: %s", err)
	} else if !ok {
		log.Debugf("sd_notify: not running under systemd")
	}
}

func watchdogLoop(stop <-chan struct{}, log *logx.Log) {
	interval, err := daemon.SdWatchdogEnabled(false)
	if err != nil || interval == 0 {
		return
	}
	t := time.NewTicker(interval / 2)
	defer t.Stop()
	for {
		select {
		case <-stop:
			return
		case <-t.C:
			if _, err := daemon.SdNotify(false, daemon.SdNotifyWatchdog); err != nil {
				log.Debugf("sd_notify watchdog: %s", err)
			}
		}
	}
}

func startMQTT(cfg *Config, log *logx.Log) mqtt.Client {
	opts := mqtt.NewClientOptions().AddBroker(cfg.MQTT.Broker).SetClientID(cfg.MQTT.ClientID).SetAutoReconnect(true)
	client := mqtt.NewClient(opts)
	if tok := client.Connect(); tok.Wait() && tok.Error() != nil {
		log.Errorf("mqtt connect: %s", tok.Error())
		return nil
	}
	return client
}

func publishHealth(client mqtt.Client, topic string, polled int) {
	payload := []byte(time.Now().UTC().Format(time.RFC3339) + " events=" + strconv.Itoa(polled))
	client.Publish(topic, 0, false, payload)
}
