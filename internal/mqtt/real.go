package mqtt

import (
	"fmt"
	"time"

	"water_tank/internal/models"

	paho "github.com/eclipse/paho.mqtt.golang"
)

const (
	connectTimeout = 10 * time.Second
	publishTimeout = 5 * time.Second
)

// RealPublisher publishes to an actual MQTT broker.
type RealPublisher struct {
	client      paho.Client
	node        string
	topic       string
	systemTopic string
}

// NewRealPublisher connects to broker. An empty topic selects DefaultTopic(node).
func NewRealPublisher(broker, clientID, node, topic string) (*RealPublisher, error) {
	if topic == "" {
		topic = DefaultTopic(node)
	}
	if clientID == "" {
		clientID = "water-tank-" + node
	}
	systemTopic := SystemTopic(topic)

	lwt, err := FormatSystemPayload(node, SystemEvent{Timestamp: time.Now(), Event: EventShutdown, Reason: "CONNECTION_LOST"})
	if err != nil {
		return nil, fmt.Errorf("format will payload: %w", err)
	}

	opts := paho.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5*time.Second).
		SetBinaryWill(systemTopic, lwt, 1, false)

	client := paho.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(connectTimeout) {
		return nil, fmt.Errorf("connection timeout")
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("connect to broker: %w", err)
	}

	return &RealPublisher{
		client:      client,
		node:        node,
		topic:       topic,
		systemTopic: systemTopic,
	}, nil
}

// Publish sends a reading, QoS 0, not retained.
func (p *RealPublisher) Publish(r models.TankReading) error {
	payload, err := FormatPayload(r)
	if err != nil {
		return fmt.Errorf("format payload: %w", err)
	}
	return p.send(p.topic, 0, payload)
}

// PublishSystem sends a lifecycle event with QoS 1.
func (p *RealPublisher) PublishSystem(event SystemEvent) error {
	payload, err := FormatSystemPayload(p.node, event)
	if err != nil {
		return fmt.Errorf("format system payload: %w", err)
	}
	return p.send(p.systemTopic, 1, payload)
}

func (p *RealPublisher) send(topic string, qos byte, payload []byte) error {
	token := p.client.Publish(topic, qos, false, payload)
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("publish to %s timeout", topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish to %s: %w", topic, err)
	}
	return nil
}

// IsConnected reports whether the client currently holds a connection.
func (p *RealPublisher) IsConnected() bool {
	return p.client.IsConnected()
}

// Close disconnects from the broker.
func (p *RealPublisher) Close() error {
	p.client.Disconnect(1000)
	return nil
}
