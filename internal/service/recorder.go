package service

import (
	"context"
	"fmt"
	"time"

	"water_tank/internal/driver"
	"water_tank/internal/engine"
	"water_tank/internal/logger"
	"water_tank/internal/models"
	"water_tank/internal/repository"

	"github.com/google/uuid"
)

const (
	recorderBuffer        = 256
	recorderAppendTimeout = 5 * time.Second
)

// Recorder turns interlock trips and critical-level crossings into audit
// events. Observe only enqueues; Run performs the database writes so the
// tick goroutine never waits on SQLite.
type Recorder struct {
	eventRepo repository.EventRepo
	log       *logger.Logger
	queue     chan models.TankEvent
}

func NewRecorder(eventRepo repository.EventRepo, log *logger.Logger) *Recorder {
	if log == nil {
		log = logger.Nop()
	}
	return &Recorder{
		eventRepo: eventRepo,
		log:       log,
		queue:     make(chan models.TankEvent, recorderBuffer),
	}
}

// Observe implements driver.Observer.
func (r *Recorder) Observe(u driver.Update) {
	for _, e := range eventsFor(u) {
		select {
		case r.queue <- e:
		default:
			r.log.Warnw("event_dropped", "type", e.Type, "seq", u.Seq)
		}
	}
}

// Run writes queued events until ctx is cancelled, then flushes what is
// already queued.
func (r *Recorder) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			r.flush()
			return
		case e := <-r.queue:
			r.write(e)
		}
	}
}

func (r *Recorder) flush() {
	for {
		select {
		case e := <-r.queue:
			r.write(e)
		default:
			return
		}
	}
}

func (r *Recorder) write(e models.TankEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), recorderAppendTimeout)
	defer cancel()
	if err := r.eventRepo.Append(ctx, e); err != nil {
		r.log.Errorw("event_append_failed", "err", err, "type", e.Type)
	}
}

// eventsFor derives the audit events of one tick.
func eventsFor(u driver.Update) []models.TankEvent {
	var out []models.TankEvent
	at := u.At.UTC()
	meta := func() map[string]any {
		return map[string]any{"level": u.State.Level, "hour": u.Hour, "seq": u.Seq}
	}

	if u.Trips.Has(engine.TripNightLockout) {
		out = append(out, models.TankEvent{
			EventID:     uuid.NewString(),
			OccurredAt:  at,
			Type:        models.EventNightLockout,
			Description: fmt.Sprintf("Pump forced off by night lockout at hour %d", u.Hour),
			Metadata:    meta(),
		})
	}
	if u.Trips.Has(engine.TripAutoCutoff) {
		out = append(out, models.TankEvent{
			EventID:     uuid.NewString(),
			OccurredAt:  at,
			Type:        models.EventAutoCutoff,
			Description: fmt.Sprintf("Auto cut-off at %.1f%%", u.State.Level),
			Metadata:    meta(),
		})
	}

	thr := u.State.CriticalThreshold
	if u.Previous.Level > thr && u.State.Level <= thr {
		m := meta()
		m["threshold"] = thr
		out = append(out, models.TankEvent{
			EventID:     uuid.NewString(),
			OccurredAt:  at,
			Type:        models.EventCriticalLevel,
			Description: fmt.Sprintf("Level fell to critical threshold %.0f%%", thr),
			Metadata:    m,
		})
	}
	return out
}
