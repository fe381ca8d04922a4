package engine

import "water_tank/internal/models"

// Classify maps a level to an operator status. Levels at or below the
// critical threshold are critical; at or below lowLevel they are low.
func Classify(level, threshold, lowLevel float64) models.Status {
	switch {
	case level <= threshold:
		return models.StatusCritical
	case level <= lowLevel:
		return models.StatusLow
	default:
		return models.StatusNormal
	}
}

// Reading builds the published view of st.
func (e *Engine) Reading(st TankState) models.TankReading {
	return models.TankReading{
		TankState: st,
		Status:    Classify(st.Level, st.CriticalThreshold, e.cfg.LowLevel),
		Liters:    st.Level / 100 * e.cfg.CapacityLiters,
	}
}
