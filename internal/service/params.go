package service

import (
	"time"

	"water_tank/internal/engine"
)

// ConfigParams carries optional configuration changes; nil fields are kept.
type ConfigParams struct {
	AutoCutoff *bool
	NightLimit *bool
	Threshold  *float64 // percent, [5,40]
}

func (p ConfigParams) patch() engine.ConfigPatch {
	return engine.ConfigPatch{
		AutoCutoff: p.AutoCutoff,
		NightLimit: p.NightLimit,
		Threshold:  p.Threshold,
	}
}

// LogFilter supports history filtering by time range and type.
type LogFilter struct {
	From time.Time // inclusive; zero means no lower bound
	To   time.Time // inclusive; zero means no upper bound
	Type string    // "" or one of the models.Event* constants
}

// SimulationStatus describes the tick driver lifecycle.
type SimulationStatus struct {
	Running    bool       `json:"running"`
	Seq        uint64     `json:"seq"`
	PeriodMs   int64      `json:"period_ms"`
	StartedAt  *time.Time `json:"started_at,omitempty"`
	Uptime     string     `json:"uptime,omitempty"`
	LastTickAt *time.Time `json:"last_tick_at,omitempty"`
}
