package engine

import (
	"fmt"
	"math"
)

// Defaults for the simulation constants.
const (
	DefaultDrainRate      = 0.05 // percent per tick
	DefaultFillRate       = 0.55 // percent per tick
	DefaultCutoffLevel    = 95.0
	DefaultLowLevel       = 30.0
	DefaultCapacityLiters = 1000.0

	DefaultInitialLevel      = 72.4
	DefaultCriticalThreshold = 20.0

	MinCriticalThreshold = 5.0
	MaxCriticalThreshold = 40.0
)

// Window is an hour-of-day range [Start, End). A window with Start > End
// wraps midnight; Start == End is empty.
type Window struct {
	Start int
	End   int
}

// Contains reports whether hour falls inside the window.
func (w Window) Contains(hour int) bool {
	switch {
	case w.Start == w.End:
		return false
	case w.Start < w.End:
		return hour >= w.Start && hour < w.End
	default:
		return hour >= w.Start || hour < w.End
	}
}

func (w Window) validate(name string) error {
	if !validHour(w.Start) || !validHour(w.End) {
		return fmt.Errorf("%w: %s window %d-%d has hour outside [0,23]", ErrInvalidConfig, name, w.Start, w.End)
	}
	return nil
}

// Config holds the engine constants. It is owned by the caller and fixed
// for the lifetime of an Engine.
type Config struct {
	DrainRate   float64
	FillRate    float64
	CutoffLevel float64
	NightWindow Window

	// PeakDrainRate replaces DrainRate for hours inside PeakWindow.
	// Zero disables time-of-day drain.
	PeakDrainRate float64
	PeakWindow    Window

	LowLevel       float64
	CapacityLiters float64
}

// DefaultConfig returns the documented defaults: drain 0.05, fill 0.55,
// cutoff 95 and a 23:00-05:00 night window.
func DefaultConfig() Config {
	return Config{
		DrainRate:      DefaultDrainRate,
		FillRate:       DefaultFillRate,
		CutoffLevel:    DefaultCutoffLevel,
		NightWindow:    Window{Start: 23, End: 5},
		PeakWindow:     Window{Start: 6, End: 9},
		LowLevel:       DefaultLowLevel,
		CapacityLiters: DefaultCapacityLiters,
	}
}

// Validate checks that the constants describe a tank that drains when idle
// and fills when pumping.
func (c Config) Validate() error {
	if !finite(c.DrainRate) || c.DrainRate <= 0 {
		return fmt.Errorf("%w: drain rate %v must be > 0", ErrInvalidConfig, c.DrainRate)
	}
	if !finite(c.PeakDrainRate) || c.PeakDrainRate < 0 {
		return fmt.Errorf("%w: peak drain rate %v must be >= 0", ErrInvalidConfig, c.PeakDrainRate)
	}
	if !finite(c.FillRate) || c.FillRate <= c.DrainRate || c.FillRate <= c.PeakDrainRate {
		return fmt.Errorf("%w: fill rate %v must exceed every drain rate", ErrInvalidConfig, c.FillRate)
	}
	if !finite(c.CutoffLevel) || c.CutoffLevel <= 0 || c.CutoffLevel > 100 {
		return fmt.Errorf("%w: cutoff level %v outside (0,100]", ErrInvalidConfig, c.CutoffLevel)
	}
	if !finite(c.LowLevel) || c.LowLevel < 0 || c.LowLevel > 100 {
		return fmt.Errorf("%w: low level %v outside [0,100]", ErrInvalidConfig, c.LowLevel)
	}
	if !finite(c.CapacityLiters) || c.CapacityLiters <= 0 {
		return fmt.Errorf("%w: capacity %v must be > 0", ErrInvalidConfig, c.CapacityLiters)
	}
	if err := c.NightWindow.validate("night"); err != nil {
		return err
	}
	return c.PeakWindow.validate("peak")
}

// drain returns the depletion applied at hour.
func (c Config) drain(hour int) float64 {
	if c.PeakDrainRate > 0 && c.PeakWindow.Contains(hour) {
		return c.PeakDrainRate
	}
	return c.DrainRate
}

// DefaultState returns a tank at the default initial level with both
// safety rules armed.
func DefaultState() TankState {
	return TankState{
		Level:             DefaultInitialLevel,
		AutoCutoffEnabled: true,
		NightLimitEnabled: true,
		CriticalThreshold: DefaultCriticalThreshold,
	}
}

// ValidateThreshold checks a critical threshold against [5,40].
func ValidateThreshold(v float64) error {
	if math.IsNaN(v) || v < MinCriticalThreshold || v > MaxCriticalThreshold {
		return fmt.Errorf("%w: threshold %v outside [%v,%v]", ErrInvalidConfig, v, MinCriticalThreshold, MaxCriticalThreshold)
	}
	return nil
}

func validHour(h int) bool { return h >= 0 && h <= 23 }

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }
