// Package prom implements the observability hooks with Prometheus metrics.
//
// The CLI is a short-lived process, so metrics are not served over HTTP.
// Instead [Hooks.WriteTextfile] dumps the registry in the text exposition
// format, ready for node_exporter's textfile collector.
package prom

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/matzehuels/nodegraph/pkg/observability"
)

// Hooks records conversion and cache events on its own registry.
type Hooks struct {
	registry *prometheus.Registry

	ParsesTotal        *prometheus.CounterVec
	ParseDuration      prometheus.Histogram
	GraphNodes         prometheus.Gauge
	GraphEdges         prometheus.Gauge
	GraphRoots         prometheus.Gauge
	ConversionsTotal   *prometheus.CounterVec
	ConversionDuration *prometheus.HistogramVec
	CacheOpsTotal      *prometheus.CounterVec
	CacheBytes         prometheus.Counter
}

// New creates hooks backed by a fresh registry.
func New() *Hooks {
	h := &Hooks{registry: prometheus.NewRegistry()}
	f := promauto.With(h.registry)

	h.ParsesTotal = f.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nodegraph_parses_total",
			Help: "Total number of session documents parsed",
		},
		[]string{"status"},
	)
	h.ParseDuration = f.NewHistogram(prometheus.HistogramOpts{
		Name:    "nodegraph_parse_duration_seconds",
		Help:    "Time to decode a session and build its graph",
		Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0},
	})
	h.GraphNodes = f.NewGauge(prometheus.GaugeOpts{
		Name: "nodegraph_graph_nodes",
		Help: "Nodes in the most recently parsed graph",
	})
	h.GraphEdges = f.NewGauge(prometheus.GaugeOpts{
		Name: "nodegraph_graph_edges",
		Help: "Edges in the most recently parsed graph",
	})
	h.GraphRoots = f.NewGauge(prometheus.GaugeOpts{
		Name: "nodegraph_graph_roots",
		Help: "Roots in the most recently parsed graph",
	})
	h.ConversionsTotal = f.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nodegraph_conversions_total",
			Help: "Total number of projections computed",
		},
		[]string{"projection", "status"},
	)
	h.ConversionDuration = f.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "nodegraph_conversion_duration_seconds",
			Help:    "Projection duration in seconds",
			Buckets: []float64{0.0001, 0.001, 0.01, 0.1, 1.0},
		},
		[]string{"projection"},
	)
	h.CacheOpsTotal = f.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nodegraph_cache_operations_total",
			Help: "Cache lookups and writes",
		},
		[]string{"key_type", "op"},
	)
	h.CacheBytes = f.NewCounter(prometheus.CounterOpts{
		Name: "nodegraph_cache_written_bytes_total",
		Help: "Bytes written to the cache",
	})
	return h
}

// Registry returns the registry the metrics live on.
func (h *Hooks) Registry() *prometheus.Registry { return h.registry }

// Register installs h as the global conversion and cache hooks.
func (h *Hooks) Register() {
	observability.SetConversionHooks(h)
	observability.SetCacheHooks(h)
}

// WriteTextfile writes all metrics to path in the text exposition format.
func (h *Hooks) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, h.registry)
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func (h *Hooks) OnParseStart(context.Context, string) {}

func (h *Hooks) OnParseComplete(_ context.Context, _ string, stats observability.Stats, d time.Duration, err error) {
	h.ParsesTotal.WithLabelValues(status(err)).Inc()
	h.ParseDuration.Observe(d.Seconds())
	if err == nil {
		h.GraphNodes.Set(float64(stats.Nodes))
		h.GraphEdges.Set(float64(stats.Edges))
		h.GraphRoots.Set(float64(stats.Roots))
	}
}

func (h *Hooks) OnConvertStart(context.Context, string) {}

func (h *Hooks) OnConvertComplete(_ context.Context, projection string, d time.Duration, err error) {
	h.ConversionsTotal.WithLabelValues(projection, status(err)).Inc()
	h.ConversionDuration.WithLabelValues(projection).Observe(d.Seconds())
}

func (h *Hooks) OnCacheHit(_ context.Context, keyType string) {
	h.CacheOpsTotal.WithLabelValues(keyType, "hit").Inc()
}

func (h *Hooks) OnCacheMiss(_ context.Context, keyType string) {
	h.CacheOpsTotal.WithLabelValues(keyType, "miss").Inc()
}

func (h *Hooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.CacheOpsTotal.WithLabelValues(keyType, "set").Inc()
	h.CacheBytes.Add(float64(size))
}

var (
	_ observability.ConversionHooks = (*Hooks)(nil)
	_ observability.CacheHooks      = (*Hooks)(nil)
)
