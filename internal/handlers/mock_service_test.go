package handlers

import (
	"context"
	"sync"
	"time"

	"water_tank/internal/models"
	"water_tank/internal/service"

	"github.com/gin-gonic/gin"
)

// ---- Service Mocks ----

type mockTank struct {
	reading models.TankReading

	pumpErr    error
	pumpCalls  int
	lastPumpOn bool

	configErr   error
	configCalls int
	lastConfig  service.ConfigParams
}

func (m *mockTank) SetPump(ctx context.Context, on bool) (models.TankReading, error) {
	m.pumpCalls++
	m.lastPumpOn = on
	return m.reading, m.pumpErr
}

func (m *mockTank) SetConfig(ctx context.Context, p service.ConfigParams) (models.TankReading, error) {
	m.configCalls++
	m.lastConfig = p
	return m.reading, m.configErr
}

type mockMonitoring struct {
	state models.TankReading
	err   error
}

func (m *mockMonitoring) GetState(ctx context.Context) (models.TankReading, error) {
	return m.state, m.err
}

type mockEventLog struct {
	resp     []models.TankEvent
	err      error
	lastFrom time.Time
	lastTo   time.Time
	lastType string
	calls    int
}

func (m *mockEventLog) List(ctx context.Context, f service.LogFilter) ([]models.TankEvent, error) {
	m.calls++
	m.lastFrom = f.From
	m.lastTo = f.To
	m.lastType = f.Type
	return m.resp, m.err
}

type mockSimulation struct {
	startErr    error
	stopErr     error
	status      service.SimulationStatus
	statusErr   error
	startCalled int
	stopCalled  int
}

func (m *mockSimulation) Start(ctx context.Context) error {
	m.startCalled++
	return m.startErr
}

func (m *mockSimulation) Stop(ctx context.Context) error {
	m.stopCalled++
	return m.stopErr
}

func (m *mockSimulation) Status(ctx context.Context) (service.SimulationStatus, error) {
	return m.status, m.statusErr
}

// fakeStream hands every subscriber the same channel.
type fakeStream struct {
	mu       sync.Mutex
	ch       chan models.TankReading
	subs     int
	canceled int
}

func newFakeStream() *fakeStream {
	return &fakeStream{ch: make(chan models.TankReading, 8)}
}

func (f *fakeStream) Subscribe() (<-chan models.TankReading, func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.subs++
	return f.ch, func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.canceled++
	}
}

// ---- Shared Test Helpers ----

func newTestRouter(s *service.Service, opts ...Option) *gin.Engine {
	h := NewHandler(s, nil, opts...)
	gin.SetMode(gin.TestMode)
	return h.InitRoutes()
}
