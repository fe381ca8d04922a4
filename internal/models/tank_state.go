package models

import "time"

// TankState is the single aggregate owned by the tick driver.
type TankState struct {
	Level             float64 `json:"level"` // percent full, [0,100]
	PumpOn            bool    `json:"pump_on"`
	AutoCutoffEnabled bool    `json:"auto_cutoff_enabled"`
	NightLimitEnabled bool    `json:"night_limit_enabled"`
	CriticalThreshold float64 `json:"critical_threshold"` // percent, [5,40]
}

// Status is the coarse level classification shown to operators.
type Status string

const (
	StatusNormal   Status = "NORMAL"
	StatusLow      Status = "LOW"
	StatusCritical Status = "CRITICAL"
)

// TankReading is a published view of a TankState.
type TankReading struct {
	TankState
	Status    Status    `json:"status"`
	Liters    float64   `json:"liters"`
	Hour      int       `json:"hour"`
	Seq       uint64    `json:"seq"` // 0 until the first tick
	UpdatedAt time.Time `json:"updated_at"`
}
