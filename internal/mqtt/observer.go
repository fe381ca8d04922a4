package mqtt

import (
	"context"

	"water_tank/internal/driver"
	"water_tank/internal/logger"
	"water_tank/internal/models"
)

const queueSize = 64

// Observer forwards driver updates to a Publisher from its own goroutine,
// so a slow broker never delays a tick.
type Observer struct {
	pub     Publisher
	reading func(driver.Update) models.TankReading
	log     *logger.Logger
	queue   chan driver.Update
}

// NewObserver builds an Observer. reading converts an update to the
// published view.
func NewObserver(pub Publisher, reading func(driver.Update) models.TankReading, log *logger.Logger) *Observer {
	if log == nil {
		log = logger.Nop()
	}
	return &Observer{pub: pub, reading: reading, log: log, queue: make(chan driver.Update, queueSize)}
}

// Observe implements driver.Observer.
func (o *Observer) Observe(u driver.Update) {
	select {
	case o.queue <- u:
	default:
		o.log.Warnw("mqtt_update_dropped", "seq", u.Seq)
	}
}

// Run publishes queued updates until ctx is cancelled.
func (o *Observer) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case u := <-o.queue:
			if err := o.pub.Publish(o.reading(u)); err != nil {
				o.log.Errorw("mqtt_publish_failed", "err", err, "seq", u.Seq)
			}
		}
	}
}
