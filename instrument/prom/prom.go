// Package prom exposes the executor instrumentation hook as prometheus
// metrics.
package prom

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/wutthichai46/openvino/instrument"
)

// Hook counts cache traffic, kernel builds, implementation selections and
// fallback emissions on a prometheus registry.
type Hook struct {
	cacheHits   prometheus.Counter
	cacheMisses prometheus.Counter

	kernelBuilds  *prometheus.CounterVec
	buildDuration prometheus.Histogram

	selections *prometheus.CounterVec
	fallbacks  *prometheus.CounterVec
}

var _ instrument.Hook = (*Hook)(nil)

// NewHook creates the collectors and registers them on reg. Pass
// prometheus.DefaultRegisterer for process-global metrics, or a private
// registry in tests.
func NewHook(reg prometheus.Registerer) *Hook {
	h := &Hook{
		cacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "executors",
			Subsystem: "kernel_cache",
			Name:      "hits_total",
			Help:      "Kernel cache lookups answered by an existing entry.",
		}),
		cacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "executors",
			Subsystem: "kernel_cache",
			Name:      "misses_total",
			Help:      "Kernel cache lookups that triggered a build.",
		}),
		kernelBuilds: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "executors",
			Subsystem: "kernel_cache",
			Name:      "builds_total",
			Help:      "Kernel builds by outcome.",
		}, []string{"status"}),
		buildDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "executors",
			Subsystem: "kernel_cache",
			Name:      "build_duration_seconds",
			Help:      "Wall time spent building kernels.",
			Buckets:   prometheus.ExponentialBuckets(1e-4, 4, 10),
		}),
		selections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "executors",
			Name:      "selections_total",
			Help:      "Implementation selections by name.",
		}, []string{"implementation"}),
		fallbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "executors",
			Name:      "fallbacks_total",
			Help:      "Fallback decompositions emitted by implementation name.",
		}, []string{"implementation"}),
	}
	reg.MustRegister(h.cacheHits, h.cacheMisses, h.kernelBuilds, h.buildDuration, h.selections, h.fallbacks)
	return h
}

// CacheHit implements instrument.Hook.
func (h *Hook) CacheHit() { h.cacheHits.Inc() }

// CacheMiss implements instrument.Hook.
func (h *Hook) CacheMiss() { h.cacheMisses.Inc() }

// KernelBuilt implements instrument.Hook.
func (h *Hook) KernelBuilt(d time.Duration, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	h.kernelBuilds.WithLabelValues(status).Inc()
	h.buildDuration.Observe(d.Seconds())
}

// ImplementationSelected implements instrument.Hook.
func (h *Hook) ImplementationSelected(name string) {
	h.selections.WithLabelValues(name).Inc()
}

// FallbackEmitted implements instrument.Hook.
func (h *Hook) FallbackEmitted(name string) {
	h.fallbacks.WithLabelValues(name).Inc()
}
