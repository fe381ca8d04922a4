package service

import (
	"context"
	"strings"
	"time"

	"water_tank/internal/logger"
	"water_tank/internal/models"
	"water_tank/internal/repository"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
)

type SimulationService struct {
	base      context.Context
	drv       TankDriver
	eventRepo repository.EventRepo
	log       *logger.Logger
	period    time.Duration
}

// NewSimulationService ties driver runs to base rather than to the
// request that starts them.
func NewSimulationService(base context.Context, drv TankDriver, eventRepo repository.EventRepo, log *logger.Logger) *SimulationService {
	if log == nil {
		log = logger.Nop()
	}
	return &SimulationService{base: base, drv: drv, eventRepo: eventRepo, log: log, period: drv.Period()}
}

// Start begins ticking; driver.ErrAlreadyRunning is returned unchanged.
func (s *SimulationService) Start(ctx context.Context) error {
	if err := s.drv.Start(s.base); err != nil {
		return err
	}
	s.append(ctx, models.EventSimStart, "Simulation started")
	return nil
}

// Stop halts ticking. Stopping a stopped simulation succeeds without an event.
func (s *SimulationService) Stop(ctx context.Context) error {
	wasRunning := s.drv.Snapshot().Running
	if err := s.drv.Stop(); err != nil {
		return err
	}
	if wasRunning {
		s.append(ctx, models.EventSimStop, "Simulation stopped")
	}
	return nil
}

func (s *SimulationService) Status(ctx context.Context) (SimulationStatus, error) {
	if err := ctx.Err(); err != nil {
		return SimulationStatus{}, err
	}
	snap := s.drv.Snapshot()
	st := SimulationStatus{
		Running:  snap.Running,
		Seq:      snap.Seq,
		PeriodMs: s.period.Milliseconds(),
	}
	if snap.Running {
		started := snap.StartedAt.UTC()
		st.StartedAt = &started
		st.Uptime = strings.TrimSpace(humanize.RelTime(started, time.Now(), "", ""))
	}
	if !snap.At.IsZero() {
		last := snap.At.UTC()
		st.LastTickAt = &last
	}
	return st, nil
}

func (s *SimulationService) append(ctx context.Context, typ, desc string) {
	err := s.eventRepo.Append(ctx, models.TankEvent{
		EventID:     uuid.NewString(),
		OccurredAt:  time.Now().UTC(),
		Type:        typ,
		Description: desc,
	})
	if err != nil {
		s.log.Errorw("event_append_failed", "err", err, "type", typ)
	}
}
