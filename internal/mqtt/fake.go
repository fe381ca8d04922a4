package mqtt

import (
	"sync"

	"water_tank/internal/models"
)

// FakePublisher records published messages for test assertions.
type FakePublisher struct {
	mu sync.Mutex

	Readings     []models.TankReading
	Payloads     [][]byte
	SystemEvents []SystemEvent

	// PublishError, if set, is returned by Publish.
	PublishError error

	Closed bool
}

func NewFakePublisher() *FakePublisher {
	return &FakePublisher{}
}

func (f *FakePublisher) Publish(r models.TankReading) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.PublishError != nil {
		return f.PublishError
	}
	payload, err := FormatPayload(r)
	if err != nil {
		return err
	}
	f.Readings = append(f.Readings, r)
	f.Payloads = append(f.Payloads, payload)
	return nil
}

func (f *FakePublisher) PublishSystem(event SystemEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.SystemEvents = append(f.SystemEvents, event)
	return nil
}

func (f *FakePublisher) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Closed = true
	return nil
}

// Published returns a copy of the recorded readings.
func (f *FakePublisher) Published() []models.TankReading {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.TankReading(nil), f.Readings...)
}
