package service

import (
	"context"
	"time"

	"water_tank/internal/driver"
	"water_tank/internal/engine"
	"water_tank/internal/models"
)

type MonitoringService struct {
	drv TankDriver
}

func NewMonitoringService(drv TankDriver) *MonitoringService {
	return &MonitoringService{drv: drv}
}

// GetState returns the latest reading held by the driver.
func (s *MonitoringService) GetState(ctx context.Context) (models.TankReading, error) {
	if err := ctx.Err(); err != nil {
		return models.TankReading{}, err
	}
	return readingFrom(s.drv.Engine(), s.drv.Snapshot()), nil
}

// readingFrom builds the published view; before the first tick the
// timestamp is the time of the call.
func readingFrom(eng *engine.Engine, snap driver.Snapshot) models.TankReading {
	r := eng.Reading(snap.State)
	r.Seq = snap.Seq
	r.Hour = snap.Hour
	r.UpdatedAt = toUTC(snap.At)
	if r.UpdatedAt.IsZero() {
		r.UpdatedAt = time.Now().UTC()
	}
	return r
}

// ReadingFromUpdate builds the published view of a tick update.
func ReadingFromUpdate(eng *engine.Engine, u driver.Update) models.TankReading {
	r := eng.Reading(u.State)
	r.Seq = u.Seq
	r.Hour = u.Hour
	r.UpdatedAt = toUTC(u.At)
	return r
}

// toUTC normalizes non-zero time to UTC, preserving zero values.
func toUTC(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return t.UTC()
}
