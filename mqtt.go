package main

import (
	"encoding/json"
	"fmt"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/juju/loggo"
)

var mqttLogger = loggo.GetLogger("mqtt")

// mqttConfig holds broker connection settings. Publishing is disabled
// when Host is empty.
type mqttConfig struct {
	Host        string `yaml:"host"`
	Port        int    `yaml:"port"`
	ClientID    string `yaml:"client_id"`
	TopicPrefix string `yaml:"topic_prefix"`
}

// mqttClient publishes module events to a broker, best effort. A
// disabled client swallows everything.
type mqttClient struct {
	client  paho.Client
	prefix  string
	enabled bool
}

func newMQTTClient(cfg mqttConfig) (*mqttClient, error) {
	c := &mqttClient{prefix: cfg.TopicPrefix}
	if c.prefix == "" {
		c.prefix = "rpleth"
	}

	if cfg.Host == "" {
		mqttLogger.Infof("publishing disabled (no host configured)")
		return c, nil
	}
	c.enabled = true

	if cfg.Port == 0 {
		cfg.Port = 1883
	}
	clientID := cfg.ClientID
	if clientID == "" {
		clientID = "rplethub"
	}

	opts := paho.NewClientOptions().
		AddBroker(fmt.Sprintf("tcp://%s:%d", cfg.Host, cfg.Port)).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetKeepAlive(60 * time.Second)

	c.client = paho.NewClient(opts)
	if token := c.client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("connect: %w", token.Error())
	}
	mqttLogger.Infof("connected to %s:%d", cfg.Host, cfg.Port)
	return c, nil
}

func (c *mqttClient) publishEvent(typ string, content interface{}) {
	if c == nil || !c.enabled {
		return
	}
	payload, err := json.Marshal(content)
	if err != nil {
		mqttLogger.Errorf("marshal %s: %v", typ, err)
		return
	}
	c.client.Publish(c.prefix+"/"+typ, 0, false, payload)
}

func (c *mqttClient) disconnect() {
	if c == nil || !c.enabled {
		return
	}
	c.client.Disconnect(250)
}
