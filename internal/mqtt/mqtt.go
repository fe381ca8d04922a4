// Package mqtt publishes tank telemetry to an MQTT broker.
package mqtt

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"water_tank/internal/models"
)

// Lifecycle events sent on the system topic.
const (
	EventStartup  = "STARTUP"
	EventShutdown = "SHUTDOWN"
)

// DefaultTopic returns the state topic for a node.
func DefaultTopic(node string) string {
	return fmt.Sprintf("water/tank/%s/state", node)
}

// SystemTopic derives the lifecycle topic from a state topic by replacing
// its last segment with "system".
func SystemTopic(stateTopic string) string {
	if i := strings.LastIndex(stateTopic, "/"); i >= 0 {
		return stateTopic[:i] + "/system"
	}
	return stateTopic + "/system"
}

// Publisher publishes readings to MQTT.
type Publisher interface {
	// Publish sends one tank reading. Errors must not stop the caller.
	Publish(r models.TankReading) error

	// PublishSystem sends a lifecycle event.
	PublishSystem(event SystemEvent) error

	Close() error
}

// SystemEvent is a process lifecycle event.
type SystemEvent struct {
	Timestamp time.Time
	Event     string
	Reason    string
}

// Payload is the state message body.
type Payload struct {
	Tank TankPayload `json:"tank"`
}

type TankPayload struct {
	Timestamp         string  `json:"timestamp"`
	Seq               uint64  `json:"seq"`
	Level             float64 `json:"level"`
	Liters            float64 `json:"liters"`
	Status            string  `json:"status"`
	PumpOn            bool    `json:"pump_on"`
	AutoCutoffEnabled bool    `json:"auto_cutoff_enabled"`
	NightLimitEnabled bool    `json:"night_limit_enabled"`
	CriticalThreshold float64 `json:"critical_threshold"`
}

// FormatPayload creates the JSON payload for a reading.
func FormatPayload(r models.TankReading) ([]byte, error) {
	return json.Marshal(Payload{
		Tank: TankPayload{
			Timestamp:         r.UpdatedAt.UTC().Format(time.RFC3339),
			Seq:               r.Seq,
			Level:             r.Level,
			Liters:            r.Liters,
			Status:            string(r.Status),
			PumpOn:            r.PumpOn,
			AutoCutoffEnabled: r.AutoCutoffEnabled,
			NightLimitEnabled: r.NightLimitEnabled,
			CriticalThreshold: r.CriticalThreshold,
		},
	})
}

type SystemPayload struct {
	System SystemPayloadInner `json:"system"`
}

type SystemPayloadInner struct {
	Timestamp string `json:"timestamp"`
	Node      string `json:"node,omitempty"`
	Event     string `json:"event"`
	Reason    string `json:"reason,omitempty"`
}

// FormatSystemPayload creates the JSON payload for a lifecycle event.
func FormatSystemPayload(node string, event SystemEvent) ([]byte, error) {
	return json.Marshal(SystemPayload{
		System: SystemPayloadInner{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Node:      node,
			Event:     event.Event,
			Reason:    event.Reason,
		},
	})
}
