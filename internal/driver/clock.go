package driver

import "time"

// Clock provides wall-clock time so tests can control the hour of day.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to Clock.
type ClockFunc func() time.Time

// Now implements Clock.
func (f ClockFunc) Now() time.Time { return f() }

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// Ticker is the periodic tick source.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// TickerFunc builds a Ticker for a period.
type TickerFunc func(period time.Duration) Ticker

type stdTicker struct {
	t *time.Ticker
}

func newStdTicker(period time.Duration) Ticker {
	return stdTicker{t: time.NewTicker(period)}
}

func (s stdTicker) C() <-chan time.Time { return s.t.C }
func (s stdTicker) Stop()               { s.t.Stop() }
