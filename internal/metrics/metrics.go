// Package metrics exposes dashboard counters in Prometheus format.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "scandash"

// Collector owns a private Prometheus registry with the dashboard metrics.
// It implements dashboard.Observer.
type Collector struct {
	registry    *prometheus.Registry
	scans       prometheus.Gauge
	simulations *prometheus.CounterVec
	refreshes   *prometheus.CounterVec
	deletes     prometheus.Counter
	requests    *prometheus.HistogramVec
}

// New creates a Collector. Runtime collectors (Go, process) are added when
// runtime is true.
func New(runtime bool) *Collector {
	reg := prometheus.NewRegistry()
	if runtime {
		reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		reg.MustRegister(collectors.NewGoCollector())
	}

	c := &Collector{
		registry: reg,
		scans: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "registry_scans",
			Help:      "Number of scan records in the registry.",
		}),
		simulations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "simulations_total",
			Help:      "Scan simulations by outcome.",
		}, []string{"outcome"}),
		refreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "refreshes_total",
			Help:      "Dashboard refreshes by result.",
		}, []string{"result"}),
		deletes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scans_deleted_total",
			Help:      "Scan records removed through the delete flow.",
		}),
		requests: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP API latency by route and status.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}
	reg.MustRegister(c.scans, c.simulations, c.refreshes, c.deletes, c.requests)
	return c
}

// Registry returns the underlying Prometheus registry.
func (c *Collector) Registry() *prometheus.Registry { return c.registry }

// SetScanCount records the registry size.
func (c *Collector) SetScanCount(n int) { c.scans.Set(float64(n)) }

// SimulationFinished counts a finished simulation.
func (c *Collector) SimulationFinished(outcome string) {
	c.simulations.WithLabelValues(outcome).Inc()
}

// Refreshed counts a refresh attempt.
func (c *Collector) Refreshed(result string) {
	c.refreshes.WithLabelValues(result).Inc()
}

// ScanDeleted counts a confirmed delete.
func (c *Collector) ScanDeleted() { c.deletes.Inc() }

// ObserveRequest records one HTTP request.
func (c *Collector) ObserveRequest(method, route string, status int, d time.Duration) {
	c.requests.WithLabelValues(method, route, strconv.Itoa(status)).Observe(d.Seconds())
}

// Handler serves the exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
