// Package prom implements the observability hooks with Prometheus metrics.
//
//	m := prom.New(prometheus.DefaultRegisterer)
//	m.Install()
//	http.Handle("/metrics", promhttp.Handler())
package prom

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/matzehuels/listgraph/pkg/observability"
)

// Metrics holds the collectors. It implements every hook interface of
// package observability.
type Metrics struct {
	highlights     *prometheus.CounterVec
	highlightNodes *prometheus.HistogramVec
	highlightLinks *prometheus.HistogramVec
	locks          *prometheus.CounterVec
	roots          *prometheus.CounterVec
	queries        *prometheus.CounterVec

	loads        *prometheus.CounterVec
	loadDuration *prometheus.HistogramVec
	loadedNodes  *prometheus.GaugeVec

	cacheLookups *prometheus.CounterVec
	cacheBytes   *prometheus.CounterVec

	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

var (
	_ observability.InteractionHooks = (*Metrics)(nil)
	_ observability.LoadHooks        = (*Metrics)(nil)
	_ observability.CacheHooks       = (*Metrics)(nil)
	_ observability.HTTPHooks        = (*Metrics)(nil)
)

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	sizeBuckets := []float64{1, 2, 5, 10, 20, 50, 100, 200, 500, 1000}
	return &Metrics{
		highlights: f.NewCounterVec(prometheus.CounterOpts{
			Name: "listgraph_highlights_total",
			Help: "Highlight operations by class",
		}, []string{"class"}),
		highlightNodes: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "listgraph_highlight_nodes",
			Help:    "Nodes marked per highlight",
			Buckets: sizeBuckets,
		}, []string{"class"}),
		highlightLinks: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "listgraph_highlight_links",
			Help:    "Links recorded per highlight",
			Buckets: sizeBuckets,
		}, []string{"class"}),
		locks: f.NewCounterVec(prometheus.CounterOpts{
			Name: "listgraph_lock_changes_total",
			Help: "Lock changes by direction",
		}, []string{"action"}),
		roots: f.NewCounterVec(prometheus.CounterOpts{
			Name: "listgraph_root_changes_total",
			Help: "Root changes by direction",
		}, []string{"action"}),
		queries: f.NewCounterVec(prometheus.CounterOpts{
			Name: "listgraph_query_changes_total",
			Help: "Query mode changes by resulting mode",
		}, []string{"mode"}),

		loads: f.NewCounterVec(prometheus.CounterOpts{
			Name: "listgraph_loads_total",
			Help: "Graph loads by source and result",
		}, []string{"source", "result"}),
		loadDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "listgraph_load_duration_seconds",
			Help:    "Graph load duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
		}, []string{"source"}),
		loadedNodes: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "listgraph_loaded_nodes",
			Help: "Node instances of the last successful load by kind",
		}, []string{"source", "kind"}),

		cacheLookups: f.NewCounterVec(prometheus.CounterOpts{
			Name: "listgraph_cache_lookups_total",
			Help: "Cache lookups by key type and result",
		}, []string{"key_type", "result"}),
		cacheBytes: f.NewCounterVec(prometheus.CounterOpts{
			Name: "listgraph_cache_stored_bytes_total",
			Help: "Bytes written to the cache by key type",
		}, []string{"key_type"}),

		requests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "listgraph_http_requests_total",
			Help: "HTTP requests by method, route and status",
		}, []string{"method", "route", "status"}),
		requestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "listgraph_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
}

// Install registers m as every global hook.
func (m *Metrics) Install() {
	observability.SetInteractionHooks(m)
	observability.SetLoadHooks(m)
	observability.SetCacheHooks(m)
	observability.SetHTTPHooks(m)
}

// OnHighlight implements observability.InteractionHooks.
func (m *Metrics) OnHighlight(class string, nodes, links int) {
	m.highlights.WithLabelValues(class).Inc()
	m.highlightNodes.WithLabelValues(class).Observe(float64(nodes))
	m.highlightLinks.WithLabelValues(class).Observe(float64(links))
}

// OnLock implements observability.InteractionHooks.
func (m *Metrics) OnLock(_ string, locked bool) {
	m.locks.WithLabelValues(direction(locked, "lock", "unlock")).Inc()
}

// OnRoot implements observability.InteractionHooks.
func (m *Metrics) OnRoot(_ string, rooted bool) {
	m.roots.WithLabelValues(direction(rooted, "root", "unroot")).Inc()
}

// OnQuery implements observability.InteractionHooks.
func (m *Metrics) OnQuery(_ string, mode string) {
	m.queries.WithLabelValues(mode).Inc()
}

// OnLoad implements observability.LoadHooks.
func (m *Metrics) OnLoad(_ context.Context, source string, nodes, clones int, d time.Duration, err error) {
	if err != nil {
		m.loads.WithLabelValues(source, "error").Inc()
		return
	}
	m.loads.WithLabelValues(source, "ok").Inc()
	m.loadDuration.WithLabelValues(source).Observe(d.Seconds())
	m.loadedNodes.WithLabelValues(source, "regular").Set(float64(nodes - clones))
	m.loadedNodes.WithLabelValues(source, "clone").Set(float64(clones))
}

// OnCacheHit implements observability.CacheHooks.
func (m *Metrics) OnCacheHit(_ context.Context, keyType string) {
	m.cacheLookups.WithLabelValues(keyType, "hit").Inc()
}

// OnCacheMiss implements observability.CacheHooks.
func (m *Metrics) OnCacheMiss(_ context.Context, keyType string) {
	m.cacheLookups.WithLabelValues(keyType, "miss").Inc()
}

// OnCacheSet implements observability.CacheHooks.
func (m *Metrics) OnCacheSet(_ context.Context, keyType string, size int) {
	m.cacheBytes.WithLabelValues(keyType).Add(float64(size))
}

// OnResponse implements observability.HTTPHooks.
func (m *Metrics) OnResponse(_ context.Context, method, route string, status int, d time.Duration) {
	m.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

func direction(on bool, yes, no string) string {
	if on {
		return yes
	}
	return no
}
