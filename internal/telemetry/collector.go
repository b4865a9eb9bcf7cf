// Package telemetry exposes the scaler's operational state as Prometheus
// metrics. A Collector subscribes to the event bus and translates cycle
// and scale events into counters and gauges; a Server serves them over
// HTTP alongside a health endpoint.
package telemetry

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mesoscale/mesoscaler/internal/event"
)

const namespace = "mesoscaler"

// Collector owns the metric instruments and its own registry, so tests and
// restarts never fight over global registration.
type Collector struct {
	registry *prometheus.Registry

	cyclesTotal        prometheus.Counter
	cycleSkipsTotal    *prometheus.CounterVec
	verdictsTotal      *prometheus.CounterVec
	scaleActionsTotal  *prometheus.CounterVec
	scaleClampedTotal  *prometheus.CounterVec
	scaleFailuresTotal *prometheus.CounterVec
	currentInstances   prometheus.Gauge
	signalValue        *prometheus.GaugeVec
	cycleSeconds       prometheus.Histogram
}

// NewCollector builds and registers the instrument set.
func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		cyclesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cycles_total",
			Help:      "Evaluation cycles completed.",
		}),
		cycleSkipsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cycle_skips_total",
			Help:      "Evaluation cycles skipped because a collaborator was unavailable.",
		}, []string{"reason"}),
		verdictsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "verdicts_total",
			Help:      "Verdicts observed, by outcome.",
		}, []string{"verdict"}),
		scaleActionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scale_actions_total",
			Help:      "Scale requests accepted by the orchestrator.",
		}, []string{"direction"}),
		scaleClampedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scale_clamped_total",
			Help:      "Scale actions suppressed because an instance bound already held.",
		}, []string{"direction"}),
		scaleFailuresTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scale_failures_total",
			Help:      "Scale requests rejected or lost by the orchestrator.",
		}, []string{"direction"}),
		currentInstances: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "current_instances",
			Help:      "Deployed instance count last observed for the application.",
		}),
		signalValue: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "signal_value",
			Help:      "Last value observed per signal dimension.",
		}, []string{"dimension"}),
		cycleSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "cycle_duration_seconds",
			Help:      "Wall time of one evaluation cycle.",
			Buckets:   prometheus.DefBuckets,
		}),
	}

	c.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		c.cyclesTotal,
		c.cycleSkipsTotal,
		c.verdictsTotal,
		c.scaleActionsTotal,
		c.scaleClampedTotal,
		c.scaleFailuresTotal,
		c.currentInstances,
		c.signalValue,
		c.cycleSeconds,
	)
	return c
}

// Observe subscribes the collector to everything the bus publishes.
func (c *Collector) Observe(bus *event.Bus) {
	bus.SubscribeAll(c.handle)
}

func (c *Collector) handle(e event.Event) {
	switch ev := e.(type) {
	case event.CycleCompletedEvent:
		c.cyclesTotal.Inc()
		c.verdictsTotal.WithLabelValues(ev.Verdict).Inc()
		c.currentInstances.Set(float64(ev.Instances))
		c.cycleSeconds.Observe(ev.Elapsed.Seconds())
		for dimension, value := range ev.Values {
			c.signalValue.WithLabelValues(dimension).Set(value)
		}
	case event.CycleSkippedEvent:
		c.cycleSkipsTotal.WithLabelValues(ev.Reason).Inc()
	case event.ScaleTriggeredEvent:
		c.scaleActionsTotal.WithLabelValues(string(ev.Direction)).Inc()
		c.currentInstances.Set(float64(ev.To))
	case event.ScaleClampedEvent:
		c.scaleClampedTotal.WithLabelValues(string(ev.Direction)).Inc()
	case event.ScaleFailedEvent:
		c.scaleFailuresTotal.WithLabelValues(string(ev.Direction)).Inc()
	case event.InstancesChangedEvent:
		c.currentInstances.Set(float64(ev.Current))
	}
}

// Handler returns the exposition endpoint for this collector's registry.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
