package service

import (
	"context"
	"time"

	"water_tank/internal/driver"
	"water_tank/internal/engine"
	"water_tank/internal/logger"
	"water_tank/internal/models"
	"water_tank/internal/repository"
)

// Tank exposes operator commands against the tank state.
type Tank interface {
	SetPump(ctx context.Context, on bool) (models.TankReading, error)
	SetConfig(ctx context.Context, p ConfigParams) (models.TankReading, error)
}

// Monitoring exposes the current reading.
type Monitoring interface {
	GetState(ctx context.Context) (models.TankReading, error)
}

// EventLog exposes the append-only audit log with filtering.
type EventLog interface {
	List(ctx context.Context, f LogFilter) ([]models.TankEvent, error)
}

// Simulation controls the tick driver lifecycle.
type Simulation interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	Status(ctx context.Context) (SimulationStatus, error)
}

// TankDriver is the part of *driver.Driver the services use.
type TankDriver interface {
	Start(ctx context.Context) error
	Stop() error
	Snapshot() driver.Snapshot
	SetPump(on bool) (prev, next models.TankState)
	SetConfig(p engine.ConfigPatch) (models.TankState, error)
	Engine() *engine.Engine
	Period() time.Duration
}

// Service aggregates the sub-services used by the HTTP layer.
type Service struct {
	Tank
	Monitoring
	EventLog
	Simulation
}

// NewService wires the driver and repositories into concrete services.
// base outlives requests and scopes the simulation run.
func NewService(base context.Context, repos *repository.Repository, drv TankDriver, log *logger.Logger) *Service {
	return &Service{
		Tank:       NewTankService(drv, repos.EventRepo, log),
		Monitoring: NewMonitoringService(drv),
		EventLog:   NewEventLogService(repos.EventRepo),
		Simulation: NewSimulationService(base, drv, repos.EventRepo, log),
	}
}
