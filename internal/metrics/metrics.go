package metrics

import (
	"errors"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Package-level Prometheus collectors, registered via Register.
var (
	regOK atomic.Bool

	serviceStarts = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "companion",
			Subsystem: "service",
			Name:      "starts_total",
			Help:      "Number of successful server spawns.",
		},
	)
	serviceStops = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "companion",
			Subsystem: "service",
			Name:      "stops_total",
			Help:      "Number of stop requests that cleared a handle.",
		},
	)
	startFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "companion",
			Subsystem: "service",
			Name:      "start_failures_total",
			Help:      "Start requests that did not spawn, by reason.",
		}, []string{"reason"},
	)
	serviceUp = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "companion",
			Subsystem: "service",
			Name:      "up",
			Help:      "1 while the supervisor tracks a child handle.",
		},
	)
	probes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "companion",
			Subsystem: "probe",
			Name:      "requests_total",
			Help:      "Health/capability probes by path and outcome.",
		}, []string{"path", "outcome"},
	)
	readinessWait = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "companion",
			Subsystem: "readiness",
			Name:      "wait_seconds",
			Help:      "Observed time until the server answered its health endpoint.",
			Buckets:   prometheus.ExponentialBuckets(0.2, 2, 8),
		},
	)
	readinessTimeouts = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "companion",
			Subsystem: "readiness",
			Name:      "timeouts_total",
			Help:      "Readiness waits that exhausted their budget.",
		},
	)
)

// Register registers all metrics with the provided registerer. Safe to
// call multiple times; subsequent calls after success are no-ops.
func Register(r prometheus.Registerer) error {
	if regOK.Load() {
		return nil
	}
	cs := []prometheus.Collector{
		serviceStarts, serviceStops, startFailures, serviceUp,
		probes, readinessWait, readinessTimeouts,
	}
	for _, c := range cs {
		if err := r.Register(c); err != nil {
			var are prometheus.AlreadyRegisteredError
			if errors.As(err, &are) {
				continue
			}
			return err
		}
	}
	regOK.Store(true)
	return nil
}

// Handler serves Prometheus metrics for the default gatherer.
func Handler() http.Handler { return promhttp.Handler() }

// Helpers below no-op until Register has been called.

func IncStart() {
	if regOK.Load() {
		serviceStarts.Inc()
		serviceUp.Set(1)
	}
}

func IncStop() {
	if regOK.Load() {
		serviceStops.Inc()
		serviceUp.Set(0)
	}
}

func IncStartFailure(reason string) {
	if regOK.Load() {
		startFailures.WithLabelValues(reason).Inc()
	}
}

func IncProbe(path, outcome string) {
	if regOK.Load() {
		probes.WithLabelValues(path, outcome).Inc()
	}
}

func ObserveReadinessWait(d time.Duration) {
	if regOK.Load() {
		readinessWait.Observe(d.Seconds())
	}
}

func IncReadinessTimeout() {
	if regOK.Load() {
		readinessTimeouts.Inc()
	}
}
