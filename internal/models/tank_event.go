package models

import "time"

// Event types written to the audit log.
const (
	EventPumpOn        = "PUMP_ON"
	EventPumpOff       = "PUMP_OFF"
	EventConfigChange  = "CONFIG_CHANGE"
	EventNightLockout  = "NIGHT_LOCKOUT"
	EventAutoCutoff    = "AUTO_CUTOFF"
	EventCriticalLevel = "CRITICAL_LEVEL"
	EventSimStart      = "SIM_START"
	EventSimStop       = "SIM_STOP"
)

// EventTypes lists every audit event type in the order they are documented.
var EventTypes = []string{
	EventPumpOn,
	EventPumpOff,
	EventConfigChange,
	EventNightLockout,
	EventAutoCutoff,
	EventCriticalLevel,
	EventSimStart,
	EventSimStop,
}

// IsEventType reports whether t is one of the Event* constants.
func IsEventType(t string) bool {
	for _, et := range EventTypes {
		if t == et {
			return true
		}
	}
	return false
}

// TankEvent is a single audit log entry.
type TankEvent struct {
	EventID     string    `json:"event_id"`
	OccurredAt  time.Time `json:"occurred_at"`
	Type        string    `json:"type"`        // one of the Event* constants
	Description string    `json:"description"` // human-readable
	Metadata    any       `json:"metadata,omitempty"`
}
