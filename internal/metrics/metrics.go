// Package metrics exports tank telemetry in the Prometheus format.
package metrics

import (
	"net/http"

	"water_tank/internal/driver"
	"water_tank/internal/engine"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "tank"

// Collector is a driver.Observer that keeps gauges current with each tick.
type Collector struct {
	reg *prometheus.Registry

	level    prometheus.Gauge
	pumpOn   prometheus.Gauge
	critical prometheus.Gauge
	ticks    prometheus.Counter
	trips    *prometheus.CounterVec
}

// New registers the tank metrics on a private registry, together with the
// Go runtime and process collectors.
func New(node string) *Collector {
	labels := prometheus.Labels{"node": node}
	c := &Collector{
		reg: prometheus.NewRegistry(),
		level: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "level_percent",
			Help: "Current tank level in percent.", ConstLabels: labels,
		}),
		pumpOn: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "pump_on",
			Help: "1 when the pump is running.", ConstLabels: labels,
		}),
		critical: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "critical",
			Help: "1 when the level is at or below the critical threshold.", ConstLabels: labels,
		}),
		ticks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "ticks_total",
			Help: "Simulation ticks processed.", ConstLabels: labels,
		}),
		trips: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "interlock_trips_total",
			Help: "Interlock trips by kind.", ConstLabels: labels,
		}, []string{"trip"}),
	}
	c.reg.MustRegister(
		c.level, c.pumpOn, c.critical, c.ticks, c.trips,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	for _, name := range (engine.TripNightLockout | engine.TripAutoCutoff).Names() {
		c.trips.WithLabelValues(name)
	}
	return c
}

// Observe implements driver.Observer.
func (c *Collector) Observe(u driver.Update) {
	c.ticks.Inc()
	c.level.Set(u.State.Level)
	c.pumpOn.Set(boolGauge(u.State.PumpOn))
	c.critical.Set(boolGauge(u.State.Level <= u.State.CriticalThreshold))
	for _, name := range u.Trips.Names() {
		c.trips.WithLabelValues(name).Inc()
	}
}

// Handler serves the private registry.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.reg, promhttp.HandlerOpts{Registry: c.reg})
}

func boolGauge(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
