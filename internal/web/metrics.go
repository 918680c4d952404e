package web

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/rfkit/rfkit/pkg/observability"
)

// Metrics implements the observability hooks on Prometheus collectors.
type Metrics struct {
	reg *prometheus.Registry

	eventsTotal   *prometheus.CounterVec
	skipsTotal    *prometheus.CounterVec
	fetchDuration prometheus.Histogram

	rendersTotal   *prometheus.CounterVec
	renderDuration prometheus.Histogram

	cacheHits   prometheus.Counter
	cacheMisses prometheus.Counter
	cacheBytes  prometheus.Counter
}

// NewMetrics creates the collectors on a fresh registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		reg: prometheus.NewRegistry(),
		eventsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rfkit_fetch_events_total",
			Help: "Event/station pairs fetched, by outcome.",
		}, []string{"outcome"}),
		skipsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rfkit_fetch_skips_total",
			Help: "Event/station pairs skipped, by reason.",
		}, []string{"reason"}),
		fetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "rfkit_fetch_duration_seconds",
			Help:    "Duration of one event/station fetch.",
			Buckets: prometheus.DefBuckets,
		}),
		rendersTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rfkit_renders_total",
			Help: "Figures rendered, by kind and outcome.",
		}, []string{"kind", "outcome"}),
		renderDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "rfkit_render_duration_seconds",
			Help:    "Duration of one figure render.",
			Buckets: []float64{.001, .005, .01, .05, .1, .5, 1, 5},
		}),
		cacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rfkit_cache_hits_total",
			Help: "Cache hits.",
		}),
		cacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rfkit_cache_misses_total",
			Help: "Cache misses.",
		}),
		cacheBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rfkit_cache_stored_bytes_total",
			Help: "Bytes written to the cache.",
		}),
	}
	m.reg.MustRegister(m.eventsTotal, m.skipsTotal, m.fetchDuration,
		m.rendersTotal, m.renderDuration,
		m.cacheHits, m.cacheMisses, m.cacheBytes)
	return m
}

// Registry exposes the registry for the /metrics handler.
func (m *Metrics) Registry() *prometheus.Registry { return m.reg }

// Install registers the metrics as the process-wide observability hooks.
func (m *Metrics) Install() {
	observability.SetFetchHooks(m)
	observability.SetPlotHooks(m)
	observability.SetCacheHooks(m)
}

// OnEventStart implements observability.FetchHooks.
func (m *Metrics) OnEventStart(context.Context, string, string) {}

// OnEventComplete implements observability.FetchHooks.
func (m *Metrics) OnEventComplete(_ context.Context, _, _ string, traces int, d time.Duration, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.eventsTotal.WithLabelValues(outcome).Inc()
	m.fetchDuration.Observe(d.Seconds())
}

// OnSkip implements observability.FetchHooks.
func (m *Metrics) OnSkip(_ context.Context, _, _ string, reason string) {
	m.skipsTotal.WithLabelValues(reason).Inc()
}

// OnRenderStart implements observability.PlotHooks.
func (m *Metrics) OnRenderStart(context.Context, string, int) {}

// OnRenderComplete implements observability.PlotHooks.
func (m *Metrics) OnRenderComplete(_ context.Context, kind string, _ int, d time.Duration, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.rendersTotal.WithLabelValues(kind, outcome).Inc()
	m.renderDuration.Observe(d.Seconds())
}

// OnCacheHit implements observability.CacheHooks.
func (m *Metrics) OnCacheHit(context.Context, string) { m.cacheHits.Inc() }

// OnCacheMiss implements observability.CacheHooks.
func (m *Metrics) OnCacheMiss(context.Context, string) { m.cacheMisses.Inc() }

// OnCacheSet implements observability.CacheHooks.
func (m *Metrics) OnCacheSet(_ context.Context, _ string, size int) {
	m.cacheBytes.Add(float64(size))
}
