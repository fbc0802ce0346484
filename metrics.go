package main

import (
	"os"
	"time"

	"github.com/rcrowley/go-metrics"
)

type appMetrics struct {
	StartTime        time.Time
	PID              int
	ClientsConnected metrics.Counter
	CommandsHandled  metrics.Counter
	CardsQueued      metrics.Counter
	BadgesBroadcast  metrics.Counter
}

type exportMetrics struct {
	UpTime           string
	PID              int
	ClientsConnected int64
	CommandsHandled  int64
	CardsQueued      int64
	BadgesBroadcast  int64
}

var appStatus = registerMetrics()

func registerMetrics() *appMetrics {
	var m appMetrics

	m.StartTime = time.Now()
	m.PID = os.Getpid()
	m.ClientsConnected = metrics.NewCounter()
	m.CommandsHandled = metrics.NewCounter()
	m.CardsQueued = metrics.NewCounter()
	m.BadgesBroadcast = metrics.NewCounter()
	metrics.Register("ClientsConnected", m.ClientsConnected)
	metrics.Register("CommandsHandled", m.CommandsHandled)
	metrics.Register("CardsQueued", m.CardsQueued)
	metrics.Register("BadgesBroadcast", m.BadgesBroadcast)

	return &m
}

func (m *appMetrics) Export() *exportMetrics {
	uptime := time.Since(m.StartTime)

	return &exportMetrics{
		UpTime:           uptime.String(),
		PID:              m.PID,
		ClientsConnected: m.ClientsConnected.Count(),
		CommandsHandled:  m.CommandsHandled.Count(),
		CardsQueued:      m.CardsQueued.Count(),
		BadgesBroadcast:  m.BadgesBroadcast.Count(),
	}
}
