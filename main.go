package main

import (
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/juju/loggo"

	"rplethub/hardware"

	_ "net/http/pprof"
)

// APPLICATION STATE

var (
	cfg    = &config{}
	module *RplethModule
	uiHub  *wsHub

	logger = loggo.GetLogger("main")
)

// hostCore is the process-level stand-in for the host authorization
// core. A real deployment embeds RplethModule next to an actual core;
// standalone, every scan is logged as granted and a reset request makes
// the process exit non-zero so a supervisor restarts it.
type hostCore struct {
	resets chan struct{}
}

func (h *hostCore) ReportAuthorization(requestID uint64, granted bool) {
	logger.Infof("authorization request %d: granted=%v", requestID, granted)
}

func (h *hostCore) RequestReset() {
	select {
	case h.resets <- struct{}{}:
	default:
	}
}

// APPLICATION ENTRY POINT

func main() {
	// SETUP
	err := cfg.fromFile("config.yaml")
	if err != nil {
		cfg = defaultConfig()
		logger.Warningf("no config.yaml file found, using standard values")
	}
	loggo.ConfigureLoggers(cfg.LogLevels)

	hw, err := hardware.NewManager(cfg.Devices)
	if err != nil {
		logger.Errorf("hardware init: %v", err)
		os.Exit(1)
	}

	mq, err := newMQTTClient(cfg.MQTT)
	if err != nil {
		logger.Errorf("mqtt init: %v", err)
		hw.Release()
		os.Exit(1)
	}

	uiHub = newWsHub()
	go uiHub.run()

	core := &hostCore{resets: make(chan struct{}, 1)}
	module = newRplethModule(cfg, core, hw, &notifier{hub: uiHub, mqtt: mq})
	if err := module.start(); err != nil {
		logger.Errorf("start: %v", err)
		mq.disconnect()
		hw.Release()
		os.Exit(1)
	}
	logger.Infof("listening for readers on port %d", cfg.Port)

	http.HandleFunc("/ws", wsHandler)
	http.HandleFunc("/.status", statusHandler)
	go func() {
		if err := http.ListenAndServe(":"+cfg.HTTPPort, nil); err != nil {
			logger.Errorf("http: %v", err)
		}
	}()

	// RUN UNTIL TOLD OTHERWISE
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

	exitCode := 0
	select {
	case <-sig:
		logger.Infof("shutting down")
	case <-core.resets:
		logger.Warningf("application reset requested; shutting down")
		exitCode = 1
	case err := <-module.srv.Errs:
		logger.Errorf("network loop failed: %v", err)
		exitCode = 1
	}
	module.shutdown()
	mq.disconnect()
	hw.Release()
	os.Exit(exitCode)
}
