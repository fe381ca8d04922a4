// Package driver runs the interlock engine on a fixed period and publishes
// every resulting state to observers.
//
// A Driver exclusively owns its TankState. Ticks and commands are
// serialized through one mutex; observers are called after the mutex is
// released, from the single tick goroutine, in tick order.
package driver

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"water_tank/internal/engine"
	"water_tank/internal/logger"
	"water_tank/internal/models"
)

// DefaultPeriod matches the observed dashboard cadence.
const DefaultPeriod = time.Second

// Update is published once per tick.
type Update struct {
	Seq      uint64
	At       time.Time
	Hour     int
	Previous models.TankState
	State    models.TankState
	Change   float64
	Trips    engine.Trip
}

// Observer receives updates. Implementations must not block and must not
// call Stop on the driver that is notifying them.
type Observer interface {
	Observe(u Update)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(u Update)

// Observe implements Observer.
func (f ObserverFunc) Observe(u Update) { f(u) }

// Snapshot is a consistent view of the driver at one instant.
type Snapshot struct {
	State     models.TankState
	Seq       uint64
	At        time.Time // time of the last tick, zero before the first
	Hour      int       // hour of the last tick, or of construction before it
	Running   bool
	StartedAt time.Time
}

type run struct {
	ctx       context.Context
	cancel    context.CancelFunc
	done      chan struct{}
	startedAt time.Time
}

// Driver is the Stopped/Running tick loop for one tank.
type Driver struct {
	engine    *engine.Engine
	period    time.Duration
	clock     Clock
	loc       *time.Location
	newTicker TickerFunc
	log       *logger.Logger

	// lifeMu serializes Start and Stop so a new run never overlaps the
	// tail of the previous one.
	lifeMu sync.Mutex

	mu        sync.Mutex
	state     models.TankState
	seq       uint64
	lastAt    time.Time
	lastHour  int
	observers []Observer
	run       *run
}

// Option configures a Driver.
type Option func(*Driver)

// WithPeriod sets the tick period.
func WithPeriod(d time.Duration) Option {
	return func(dr *Driver) { dr.period = d }
}

// WithClock sets the wall clock sampled once per tick.
func WithClock(c Clock) Option {
	return func(dr *Driver) { dr.clock = c }
}

// WithLocation sets the time zone used to derive the hour of day.
func WithLocation(loc *time.Location) Option {
	return func(dr *Driver) {
		if loc != nil {
			dr.loc = loc
		}
	}
}

// WithTicker replaces the tick source.
func WithTicker(f TickerFunc) Option {
	return func(dr *Driver) { dr.newTicker = f }
}

// WithObserver registers an observer at construction.
func WithObserver(o Observer) Option {
	return func(dr *Driver) { dr.observers = append(dr.observers, o) }
}

// WithLogger sets the logger.
func WithLogger(l *logger.Logger) Option {
	return func(dr *Driver) { dr.log = l }
}

// New builds a stopped driver around eng starting from initial.
func New(eng *engine.Engine, initial models.TankState, opts ...Option) (*Driver, error) {
	if eng == nil {
		return nil, fmt.Errorf("driver: nil engine")
	}
	if math.IsNaN(initial.Level) || initial.Level < 0 || initial.Level > 100 {
		return nil, fmt.Errorf("%w: initial level %v outside [0,100]", engine.ErrInvalidState, initial.Level)
	}
	if err := engine.ValidateThreshold(initial.CriticalThreshold); err != nil {
		return nil, err
	}

	d := &Driver{
		engine:    eng,
		period:    DefaultPeriod,
		clock:     realClock{},
		loc:       time.Local,
		newTicker: newStdTicker,
		state:     initial,
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.period <= 0 {
		return nil, fmt.Errorf("driver: period %v must be > 0", d.period)
	}
	if d.log == nil {
		d.log = logger.Nop()
	}
	d.lastHour = d.clock.Now().In(d.loc).Hour()
	return d, nil
}

// Engine returns the engine the driver advances.
func (d *Driver) Engine() *engine.Engine { return d.engine }

// Period returns the tick period.
func (d *Driver) Period() time.Duration { return d.period }

// AddObserver registers o for all following ticks.
func (d *Driver) AddObserver(o Observer) {
	d.mu.Lock()
	d.observers = append(d.observers, o)
	d.mu.Unlock()
}

// Start begins ticking. Cancelling ctx has the same effect as Stop.
func (d *Driver) Start(ctx context.Context) error {
	d.lifeMu.Lock()
	defer d.lifeMu.Unlock()

	d.mu.Lock()
	if d.run != nil {
		d.mu.Unlock()
		return ErrAlreadyRunning
	}
	rctx, cancel := context.WithCancel(ctx)
	r := &run{
		ctx:       rctx,
		cancel:    cancel,
		done:      make(chan struct{}),
		startedAt: d.clock.Now(),
	}
	d.run = r
	d.mu.Unlock()

	go d.loop(r, d.newTicker(d.period))
	d.log.Infow("tick_driver_started", "period", d.period)
	return nil
}

// Stop halts future ticks and waits for the loop to exit. Once it returns
// no further mutation or publication happens. Stopping a stopped driver is
// a no-op.
func (d *Driver) Stop() error {
	d.lifeMu.Lock()
	defer d.lifeMu.Unlock()

	d.mu.Lock()
	r := d.run
	if r == nil {
		d.mu.Unlock()
		return nil
	}
	d.run = nil
	r.cancel()
	d.mu.Unlock()

	<-r.done
	d.log.Infow("tick_driver_stopped", "seq", d.Seq())
	return nil
}

// Running reports whether the driver is ticking.
func (d *Driver) Running() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.run != nil
}

// StartedAt returns when the current run began.
func (d *Driver) StartedAt() (time.Time, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.run == nil {
		return time.Time{}, ErrNotRunning
	}
	return d.run.startedAt, nil
}

// State returns the current tank state.
func (d *Driver) State() models.TankState {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// Seq returns the number of ticks applied so far.
func (d *Driver) Seq() uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.seq
}

// Snapshot returns state and lifecycle information atomically.
func (d *Driver) Snapshot() Snapshot {
	d.mu.Lock()
	defer d.mu.Unlock()
	s := Snapshot{
		State:   d.state,
		Seq:     d.seq,
		At:      d.lastAt,
		Hour:    d.lastHour,
		Running: d.run != nil,
	}
	if d.run != nil {
		s.StartedAt = d.run.startedAt
	}
	return s
}

// SetPump sets the pump flag and returns the state before and after the
// change. Interlocks apply on the next tick.
func (d *Driver) SetPump(on bool) (prev, next models.TankState) {
	d.mu.Lock()
	defer d.mu.Unlock()
	prev = d.state
	d.state = engine.SetPump(d.state, on)
	return prev, d.state
}

// SetConfig applies p atomically; on error the state is untouched.
func (d *Driver) SetConfig(p engine.ConfigPatch) (models.TankState, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	next, err := engine.SetConfig(d.state, p)
	if err != nil {
		return d.state, err
	}
	d.state = next
	return d.state, nil
}

func (d *Driver) loop(r *run, t Ticker) {
	defer close(r.done)
	defer t.Stop()

	for {
		select {
		case <-r.ctx.Done():
			d.mu.Lock()
			if d.run == r {
				d.run = nil
			}
			d.mu.Unlock()
			return
		case <-t.C():
			d.tick(r)
		}
	}
}

// tick samples the clock once, advances the state and publishes.
func (d *Driver) tick(r *run) {
	now := d.clock.Now()
	hour := now.In(d.loc).Hour()

	d.mu.Lock()
	if d.run != r || r.ctx.Err() != nil {
		d.mu.Unlock()
		return
	}
	prev := d.state
	res, err := d.engine.Step(prev, hour)
	if err != nil {
		d.mu.Unlock()
		d.log.Errorw("tick_failed", "err", err, "level", prev.Level, "hour", hour)
		return
	}
	d.state = res.State
	d.seq++
	d.lastAt = now
	d.lastHour = hour
	u := Update{
		Seq:      d.seq,
		At:       now,
		Hour:     hour,
		Previous: prev,
		State:    res.State,
		Change:   res.Change,
		Trips:    res.Trips,
	}
	observers := d.observers
	d.mu.Unlock()

	if u.Trips != 0 {
		d.log.Infow("interlock_tripped", "trips", u.Trips.Names(), "level", u.State.Level, "hour", hour, "seq", u.Seq)
	}
	for _, o := range observers {
		o.Observe(u)
	}
}
