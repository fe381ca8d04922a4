package mqtt

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"water_tank/internal/driver"
	"water_tank/internal/models"
)

func TestTopics(t *testing.T) {
	if got := DefaultTopic("roof"); got != "water/tank/roof/state" {
		t.Errorf("DefaultTopic: got %s", got)
	}
	cases := map[string]string{
		"water/tank/roof/state": "water/tank/roof/system",
		"tank":                  "tank/system",
	}
	for in, want := range cases {
		if got := SystemTopic(in); got != want {
			t.Errorf("SystemTopic(%q): got %s, want %s", in, got, want)
		}
	}
}

func TestFormatPayload(t *testing.T) {
	r := models.TankReading{
		TankState: models.TankState{Level: 72.35, AutoCutoffEnabled: true, NightLimitEnabled: true, CriticalThreshold: 20},
		Status:    models.StatusNormal,
		Liters:    723.5,
		Seq:       1,
		UpdatedAt: time.Date(2025, 3, 1, 10, 0, 0, 0, time.FixedZone("X", 3600)),
	}
	b, err := FormatPayload(r)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var p Payload
	if err := json.Unmarshal(b, &p); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if p.Tank.Timestamp != "2025-03-01T09:00:00Z" {
		t.Errorf("timestamp: got %s", p.Tank.Timestamp)
	}
	if p.Tank.Level != 72.35 || p.Tank.Status != "NORMAL" || p.Tank.Seq != 1 || p.Tank.PumpOn {
		t.Errorf("unexpected payload: %+v", p.Tank)
	}
}

func TestFormatSystemPayload(t *testing.T) {
	b, err := FormatSystemPayload("roof", SystemEvent{
		Timestamp: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		Event:     EventShutdown,
		Reason:    "SIGTERM",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := `{"system":{"timestamp":"2025-03-01T00:00:00Z","node":"roof","event":"SHUTDOWN","reason":"SIGTERM"}}`
	if string(b) != want {
		t.Errorf("got %s\nwant %s", b, want)
	}
}

func readingOf(u driver.Update) models.TankReading {
	return models.TankReading{TankState: u.State, Seq: u.Seq, UpdatedAt: u.At}
}

func TestObserver_PublishesInOrder(t *testing.T) {
	pub := NewFakePublisher()
	obs := NewObserver(pub, readingOf, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go obs.Run(ctx)

	for i := uint64(1); i <= 3; i++ {
		obs.Observe(driver.Update{Seq: i, At: time.Now()})
	}

	deadline := time.Now().Add(2 * time.Second)
	for len(pub.Published()) < 3 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	got := pub.Published()
	if len(got) != 3 {
		t.Fatalf("expected 3 readings, got %d", len(got))
	}
	for i, r := range got {
		if r.Seq != uint64(i+1) {
			t.Errorf("reading %d: seq %d", i, r.Seq)
		}
	}
}

func TestObserver_PublishErrorIsNotFatal(t *testing.T) {
	pub := NewFakePublisher()
	pub.PublishError = errors.New("broker down")
	obs := NewObserver(pub, readingOf, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		obs.Run(ctx)
		close(done)
	}()

	obs.Observe(driver.Update{Seq: 1})
	obs.Observe(driver.Update{Seq: 2})
	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
	if len(pub.Published()) != 0 {
		t.Errorf("expected nothing recorded on error")
	}
}

func TestObserver_ObserveDoesNotBlockWithoutRun(t *testing.T) {
	obs := NewObserver(NewFakePublisher(), readingOf, nil)
	done := make(chan struct{})
	go func() {
		for i := 0; i < queueSize*2; i++ {
			obs.Observe(driver.Update{Seq: uint64(i)})
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Observe blocked")
	}
}
