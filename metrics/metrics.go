// Package metrics holds the Prometheus collectors exported by the ledger node
// and the worker.
package metrics

import (
	"net/http"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "feecycle"

// DefaultRegistry is the registry every collector in this module registers on.
var DefaultRegistry = prometheus.NewRegistry()

func init() {
	DefaultRegistry.MustRegister(
		collectors.NewGoCollector(),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "system_cpu_proctime",
			Help:      "Process CPU time in hundredths of a second.",
		}, func() float64 { return float64(getProcessCPUTime()) }),
	)
}

// metricName maps a slash separated name like "state/commit/storage" onto a
// Prometheus metric name.
func metricName(name string) string {
	return strings.NewReplacer("/", "_", "-", "_", ".", "_").Replace(name)
}

// NewRegisteredCounter creates and registers a counter.
func NewRegisteredCounter(name, help string) prometheus.Counter {
	c := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      metricName(name),
		Help:      help,
	})
	DefaultRegistry.MustRegister(c)
	return c
}

// NewRegisteredCounterVec creates and registers a labelled counter.
func NewRegisteredCounterVec(name, help string, labels ...string) *prometheus.CounterVec {
	c := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      metricName(name),
		Help:      help,
	}, labels)
	DefaultRegistry.MustRegister(c)
	return c
}

// NewRegisteredGauge creates and registers a gauge.
func NewRegisteredGauge(name, help string) prometheus.Gauge {
	g := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      metricName(name),
		Help:      help,
	})
	DefaultRegistry.MustRegister(g)
	return g
}

// NewRegisteredHistogram creates and registers a histogram with the default
// buckets.
func NewRegisteredHistogram(name, help string) prometheus.Histogram {
	h := prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      metricName(name),
		Help:      help,
		Buckets:   prometheus.DefBuckets,
	})
	DefaultRegistry.MustRegister(h)
	return h
}

// Handler serves DefaultRegistry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.HandlerFor(DefaultRegistry, promhttp.HandlerOpts{})
}
