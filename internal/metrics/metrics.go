// Package metrics records fetch attempts and outcomes as Prometheus metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/mydehq/lrcfetch/internal/retry"
	"github.com/mydehq/lrcfetch/internal/types"
)

const namespace = "lrcfetch"

// Collector holds the fetch metrics on a private registry.
type Collector struct {
	registry *prometheus.Registry
	attempts *prometheus.CounterVec
	results  *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// New creates a Collector with its metrics registered.
func New() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		attempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetch_attempts_total",
			Help:      "Fetch attempts made against a provider, including retries.",
		}, []string{"provider"}),
		results: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetch_results_total",
			Help:      "Terminal fetch outcomes by provider and error kind.",
		}, []string{"provider", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "fetch_duration_seconds",
			Help:      "Time from the first attempt to the terminal outcome, backoff included.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"provider"}),
	}
	c.registry.MustRegister(c.attempts, c.results, c.duration)
	return c
}

// Registry returns the registry the metrics live on
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Attach registers the collector's hooks for each provider.
func (c *Collector) Attach(hooks *retry.Hooks, providers ...string) {
	for _, p := range providers {
		hooks.OnBeforeFetch(p, c.beforeFetch)
		hooks.OnAfterFetch(p, c.afterFetch)
	}
}

func (c *Collector) beforeFetch(ev types.FetchEvent) error {
	c.attempts.WithLabelValues(ev.Provider).Inc()
	return nil
}

func (c *Collector) afterFetch(ev types.FetchEvent) error {
	c.results.WithLabelValues(ev.Provider, Outcome(ev.Err)).Inc()
	c.duration.WithLabelValues(ev.Provider).Observe(ev.Elapsed.Seconds())
	return nil
}

// Outcome labels a terminal result: "success" or the error kind.
func Outcome(err error) string {
	if err == nil {
		return "success"
	}
	return types.KindOf(err).String()
}

// WriteTextfile writes every metric in the text exposition format, for the
// node exporter textfile collector.
func (c *Collector) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, c.registry)
}
