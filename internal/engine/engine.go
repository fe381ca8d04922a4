// Package engine implements the tank-level simulation and safety
// interlocks as pure state transitions. It owns no timers and never reads
// the wall clock; callers supply the hour of day.
package engine

import (
	"fmt"
	"math"

	"water_tank/internal/models"
)

// TankState is the engine's input and output.
type TankState = models.TankState

// Trip records which interlock fired during a tick.
type Trip uint8

const (
	// TripNightLockout means the pump was forced off inside the night window.
	TripNightLockout Trip = 1 << iota
	// TripAutoCutoff means the level reached the cutoff and the pump stopped.
	TripAutoCutoff
)

// Has reports whether t includes flag.
func (t Trip) Has(flag Trip) bool { return t&flag != 0 }

// Names lists the fired trips in evaluation order.
func (t Trip) Names() []string {
	var out []string
	if t.Has(TripNightLockout) {
		out = append(out, "night_lockout")
	}
	if t.Has(TripAutoCutoff) {
		out = append(out, "auto_cutoff")
	}
	return out
}

// Result is the outcome of one tick.
type Result struct {
	State  TankState
	Change float64 // delta applied to the level before cutoff and clamp
	Trips  Trip
}

// Engine applies a fixed Config. It is safe for concurrent use since it
// holds no mutable state.
type Engine struct {
	cfg Config
}

// New validates cfg and returns an Engine.
func New(cfg Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Engine{cfg: cfg}, nil
}

// Config returns the constants the engine was built with.
func (e *Engine) Config() Config { return e.cfg }

// Advance computes the state one tick later at the given hour.
func (e *Engine) Advance(st TankState, hour int) (TankState, error) {
	res, err := e.Step(st, hour)
	if err != nil {
		return st, err
	}
	return res.State, nil
}

// Step is Advance with the applied change and fired trips reported.
// The order of the checks is significant: night lockout is applied before
// the delta so a pump forced off contributes no fill in the same tick, and
// auto-cutoff overrides the computed level.
func (e *Engine) Step(st TankState, hour int) (Result, error) {
	if math.IsNaN(st.Level) || st.Level < 0 || st.Level > 100 {
		return Result{State: st}, fmt.Errorf("%w: level %v outside [0,100]", ErrInvalidState, st.Level)
	}
	if !validHour(hour) {
		return Result{State: st}, fmt.Errorf("%w: hour %d outside [0,23]", ErrInvalidState, hour)
	}

	var trips Trip
	next := st

	if next.NightLimitEnabled && next.PumpOn && e.cfg.NightWindow.Contains(hour) {
		next.PumpOn = false
		trips |= TripNightLockout
	}

	change := -e.cfg.drain(hour)
	if next.PumpOn {
		change += e.cfg.FillRate
	}
	level := next.Level + change

	if next.AutoCutoffEnabled && next.PumpOn && level >= e.cfg.CutoffLevel {
		level = e.cfg.CutoffLevel
		next.PumpOn = false
		trips |= TripAutoCutoff
	}

	next.Level = clamp(level, 0, 100)
	return Result{State: next, Change: change, Trips: trips}, nil
}

// SetPump sets the pump flag unconditionally. Lockout and cutoff are only
// enforced by the next Advance, so a command issued inside the night
// window takes effect and is overridden on the following tick.
func SetPump(st TankState, on bool) TankState {
	st.PumpOn = on
	return st
}

// ConfigPatch carries optional configuration changes; nil fields are kept.
type ConfigPatch struct {
	AutoCutoff *bool    `json:"auto_cutoff,omitempty"`
	NightLimit *bool    `json:"night_limit,omitempty"`
	Threshold  *float64 `json:"threshold,omitempty"`
}

// Empty reports whether the patch changes nothing.
func (p ConfigPatch) Empty() bool {
	return p.AutoCutoff == nil && p.NightLimit == nil && p.Threshold == nil
}

// SetConfig applies p to st. It is all-or-nothing: on error the original
// state is returned unchanged.
func SetConfig(st TankState, p ConfigPatch) (TankState, error) {
	if p.Threshold != nil {
		if err := ValidateThreshold(*p.Threshold); err != nil {
			return st, err
		}
	}
	next := st
	if p.AutoCutoff != nil {
		next.AutoCutoffEnabled = *p.AutoCutoff
	}
	if p.NightLimit != nil {
		next.NightLimitEnabled = *p.NightLimit
	}
	if p.Threshold != nil {
		next.CriticalThreshold = *p.Threshold
	}
	return next, nil
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
