package main

// notifier fans module events out to the monitor hub and the MQTT
// publisher. Both surfaces are optional and best effort; a nil notifier
// drops everything.
type notifier struct {
	hub  *wsHub
	mqtt *mqttClient
}

// readerEvent describes reader connection churn.
type readerEvent struct {
	Addr string `json:"addr"`
}

// scanEvent describes one badge scan.
type scanEvent struct {
	Card string `json:"card"`
}

// event pushes one notification. Never blocks the caller.
func (n *notifier) event(typ string, content interface{}) {
	if n == nil {
		return
	}
	if n.hub != nil {
		n.hub.notify(typ, content)
	}
	n.mqtt.publishEvent(typ, content)
}
