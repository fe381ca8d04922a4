package service

import (
	"context"
	"sync"
	"time"

	"water_tank/internal/driver"
	"water_tank/internal/engine"
	"water_tank/internal/models"
)

// fakeEventRepo satisfies repository.EventRepo and records calls.
type fakeEventRepo struct {
	mu sync.Mutex

	gotCtx  context.Context
	gotFrom time.Time
	gotTo   time.Time
	gotType string

	events []models.TankEvent
	err    error
	calls  int

	appended  []models.TankEvent
	appendErr error
}

func (f *fakeEventRepo) List(ctx context.Context, from, to time.Time, typ string) ([]models.TankEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.gotCtx = ctx
	f.gotFrom = from
	f.gotTo = to
	f.gotType = typ
	return f.events, f.err
}

func (f *fakeEventRepo) Append(ctx context.Context, e models.TankEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.appended = append(f.appended, e)
	return f.appendErr
}

func (f *fakeEventRepo) appendedTypes() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.appended))
	for _, e := range f.appended {
		out = append(out, e.Type)
	}
	return out
}

// fakeDriver satisfies TankDriver without a tick loop.
type fakeDriver struct {
	eng      *engine.Engine
	snap     driver.Snapshot
	startErr error
	starts   int
	stops    int
	startCtx context.Context
}

func newFakeDriver() *fakeDriver {
	eng, err := engine.New(engine.DefaultConfig())
	if err != nil {
		panic(err)
	}
	return &fakeDriver{eng: eng, snap: driver.Snapshot{State: engine.DefaultState(), Hour: 12}}
}

func (f *fakeDriver) Start(ctx context.Context) error {
	f.starts++
	f.startCtx = ctx
	if f.startErr != nil {
		return f.startErr
	}
	if f.snap.Running {
		return driver.ErrAlreadyRunning
	}
	f.snap.Running = true
	f.snap.StartedAt = time.Now().Add(-3 * time.Minute)
	return nil
}

func (f *fakeDriver) Stop() error {
	f.stops++
	f.snap.Running = false
	f.snap.StartedAt = time.Time{}
	return nil
}

func (f *fakeDriver) Snapshot() driver.Snapshot { return f.snap }

func (f *fakeDriver) SetPump(on bool) (models.TankState, models.TankState) {
	prev := f.snap.State
	f.snap.State = engine.SetPump(f.snap.State, on)
	return prev, f.snap.State
}

func (f *fakeDriver) SetConfig(p engine.ConfigPatch) (models.TankState, error) {
	next, err := engine.SetConfig(f.snap.State, p)
	if err != nil {
		return f.snap.State, err
	}
	f.snap.State = next
	return next, nil
}

func (f *fakeDriver) Engine() *engine.Engine { return f.eng }

func (f *fakeDriver) Period() time.Duration { return time.Second }

func boolPtr(b bool) *bool { return &b }

func floatPtr(v float64) *float64 { return &v }
