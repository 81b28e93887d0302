// Package metrics owns the Prometheus registry for the bridge.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "rephoton"

// Metrics contains all bridge metrics.
type Metrics struct {
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	UpstreamCalls *prometheus.CounterVec

	IDMapHits       prometheus.Counter
	IDMapMisses     prometheus.Counter
	IDMapObserves   prometheus.Counter
	IDMapCollisions prometheus.Counter

	ActiveSessions prometheus.Gauge
}

// Registry wraps a private Prometheus registry with the bridge metrics
// registered on it.
type Registry struct {
	prometheusRegistry *prometheus.Registry
	Metrics            *Metrics
}

// NewRegistry creates a registry with runtime collectors and bridge metrics.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()
	m := newMetrics()

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.HTTPRequests,
		m.HTTPDuration,
		m.UpstreamCalls,
		m.IDMapHits,
		m.IDMapMisses,
		m.IDMapObserves,
		m.IDMapCollisions,
		m.ActiveSessions,
	)

	return &Registry{prometheusRegistry: reg, Metrics: m}
}

func newMetrics() *Metrics {
	return &Metrics{
		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total number of Lemmy API requests served",
			},
			[]string{"route", "code"},
		),
		HTTPDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "Lemmy API request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"route"},
		),
		UpstreamCalls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "upstream",
				Name:      "calls_total",
				Help:      "Total number of XRPC calls to the Bluesky service",
			},
			[]string{"method", "outcome"},
		),
		IDMapHits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "idmap",
			Name:      "hits_total",
			Help:      "Handle lookups that found a reference",
		}),
		IDMapMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "idmap",
			Name:      "misses_total",
			Help:      "Handle lookups that found nothing",
		}),
		IDMapObserves: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "idmap",
			Name:      "observes_total",
			Help:      "Remote references recorded in a handle cache",
		}),
		IDMapCollisions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "idmap",
			Name:      "collisions_total",
			Help:      "Observations that replaced a different URI under the same handle",
		}),
		ActiveSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "active",
			Help:      "Sessions currently held in memory",
		}),
	}
}

// PrometheusRegistry returns the underlying Prometheus registry
func (r *Registry) PrometheusRegistry() *prometheus.Registry {
	return r.prometheusRegistry
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.prometheusRegistry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
}

// ObserveUpstream counts one XRPC call. A nil *Registry is a no-op so callers
// can run without metrics.
func (r *Registry) ObserveUpstream(method string, err error) {
	if r == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	r.Metrics.UpstreamCalls.WithLabelValues(method, outcome).Inc()
}
