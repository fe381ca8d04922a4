package service

import (
	"context"
	"fmt"
	"time"

	"water_tank/internal/engine"
	"water_tank/internal/logger"
	"water_tank/internal/models"
	"water_tank/internal/repository"

	"github.com/google/uuid"
)

type TankService struct {
	drv       TankDriver
	eventRepo repository.EventRepo
	log       *logger.Logger
}

func NewTankService(drv TankDriver, eventRepo repository.EventRepo, log *logger.Logger) *TankService {
	if log == nil {
		log = logger.Nop()
	}
	return &TankService{drv: drv, eventRepo: eventRepo, log: log}
}

var errEmptyConfig = fmt.Errorf("%w: no configuration fields given", engine.ErrInvalidConfig)

// SetPump switches the pump. The command is accepted even inside the night
// window; the next tick enforces the lockout.
func (s *TankService) SetPump(ctx context.Context, on bool) (models.TankReading, error) {
	prev, st := s.drv.SetPump(on)

	typ, desc := models.EventPumpOff, "Pump switched off"
	if on {
		typ, desc = models.EventPumpOn, "Pump switched on"
	}
	s.audit(ctx, models.TankEvent{
		Type:        typ,
		Description: desc,
		Metadata: map[string]any{
			"level":       st.Level,
			"was_running": prev.PumpOn,
		},
	})
	return readingFrom(s.drv.Engine(), s.drv.Snapshot()), nil
}

// SetConfig applies the optional flags and threshold atomically.
func (s *TankService) SetConfig(ctx context.Context, p ConfigParams) (models.TankReading, error) {
	patch := p.patch()
	if patch.Empty() {
		return models.TankReading{}, errEmptyConfig
	}
	st, err := s.drv.SetConfig(patch)
	if err != nil {
		return models.TankReading{}, err
	}

	s.audit(ctx, models.TankEvent{
		Type:        models.EventConfigChange,
		Description: "Configuration updated",
		Metadata: map[string]any{
			"auto_cutoff_enabled": st.AutoCutoffEnabled,
			"night_limit_enabled": st.NightLimitEnabled,
			"critical_threshold":  st.CriticalThreshold,
		},
	})
	return readingFrom(s.drv.Engine(), s.drv.Snapshot()), nil
}

// audit appends e; a failed append never undoes the command.
func (s *TankService) audit(ctx context.Context, e models.TankEvent) {
	e.EventID = uuid.NewString()
	e.OccurredAt = time.Now().UTC()
	if err := s.eventRepo.Append(ctx, e); err != nil {
		s.log.Errorw("event_append_failed", "err", err, "type", e.Type)
	}
}
