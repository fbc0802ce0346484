package main

import (
	"bytes"
	"fmt"
	"time"

	"github.com/juju/loggo"

	"rplethub/hardware"
)

var moduleLogger = loggo.GetLogger("rpleth")

// Core is the narrow surface of the host authorization core this module
// talks back to.
type Core interface {
	// ReportAuthorization reports the outcome of one authorization
	// request. This module reports every scan as granted; actual gating
	// is the core's responsibility.
	ReportAuthorization(requestID uint64, granted bool)

	// RequestReset asks the host to restart the whole application.
	RequestReset()
}

// Shape of the test-card diagnostic melody.
const (
	melodyToggles  = 5
	melodyInterval = 100 * time.Millisecond
)

// RplethModule bridges badge readers speaking the Rpleth protocol to
// the host authorization core. Readers connect to the TCP server;
// scans reported by the host through authenticate are queued and
// broadcast back to every connected reader on the next tick.
type RplethModule struct {
	core     Core
	greenLed hardware.Device
	buzzer   hardware.Device
	queue    *cardQueue
	srv      *RplethServer
	notify   *notifier
	stopped  bool
}

// newRplethModule resolves the configured feedback devices and prepares
// the TCP server. A missing or unknown device name leaves the handle
// nil; feedback through it is then a no-op. notify may be nil.
func newRplethModule(cfg *config, core Core, hw hardware.Manager, notify *notifier) *RplethModule {
	m := &RplethModule{
		core:   core,
		queue:  &cardQueue{},
		notify: notify,
	}
	if hw != nil {
		m.greenLed = hw.GetDevice(cfg.GreenLed)
		m.buzzer = hw.GetDevice(cfg.Buzzer)
	}
	m.srv = newRplethServer(fmt.Sprintf(":%d", cfg.Port), m.queue)
	m.srv.greenLed = m.greenLed
	m.srv.buzzer = m.buzzer
	m.srv.notify = notify
	return m
}

// start launches the network loop.
func (m *RplethModule) start() error {
	return m.srv.start()
}

// shutdown stops the network loop and waits for it. Every reader and
// the listening socket are closed when it returns. Idempotent.
func (m *RplethModule) shutdown() {
	if m.stopped {
		return
	}
	m.stopped = true
	m.srv.stop()
}

// authenticate reports a badge scan into the module. payload is the
// colon-delimited hex form of the card identity, e.g. "40:61:81:80".
// Safe to call from any goroutine; the call never waits on network I/O.
func (m *RplethModule) authenticate(requestID uint64, payload string) {
	cid := parseCardID(payload)
	if bytes.Equal(cid, testCard) {
		moduleLogger.Infof("test card scanned")
		go m.playTestCardMelody()
	}
	if bytes.Equal(cid, resetCard) {
		moduleLogger.Infof("reset card scanned")
		m.core.RequestReset()
	}
	m.core.ReportAuthorization(requestID, true)
	m.queue.push(cid)
	appStatus.CardsQueued.Inc(1)
	m.notify.event("card_scan", scanEvent{Card: cid.String()})
}

// playTestCardMelody drives the diagnostic LED/buzzer pattern. Runs
// detached so a scan never waits on hardware; best effort, lost on
// abrupt process exit.
func (m *RplethModule) playTestCardMelody() {
	for i := 0; i < melodyToggles; i++ {
		time.Sleep(melodyInterval)
		deviceOn(m.greenLed)
		deviceOn(m.buzzer)
		time.Sleep(melodyInterval)
		deviceOff(m.greenLed)
		deviceOff(m.buzzer)
	}
}

func deviceOn(d hardware.Device) {
	if d != nil {
		d.TurnOn()
	}
}

func deviceOff(d hardware.Device) {
	if d != nil {
		d.TurnOff()
	}
}
