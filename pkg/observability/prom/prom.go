// Package prom implements the observability hooks with Prometheus metrics.
package prom

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/matzehuels/patchplan/pkg/observability"
)

const namespace = "patchplan"

// Metrics holds every collector. It implements PipelineHooks, CacheHooks and
// APIHooks.
type Metrics struct {
	runs          *prometheus.CounterVec
	runDuration   prometheus.Histogram
	plans         *prometheus.CounterVec
	planUnits     prometheus.Histogram
	stagePlaced   *prometheus.CounterVec
	stageSkipped  *prometheus.CounterVec
	stageDuration *prometheus.HistogramVec
	cacheOps      *prometheus.CounterVec
	cacheBytes    prometheus.Counter
	requests      *prometheus.CounterVec
	reqDuration   *prometheus.HistogramVec
	inflight      prometheus.Gauge
}

// New creates the collectors and registers them with reg. A nil reg skips
// registration.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Planning runs by result.",
		}, []string{"result"}),
		runDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall time of complete planning runs.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 14),
		}),
		plans: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "plans_total",
			Help:      "Calculator results by source.",
		}, []string{"source"}),
		planUnits: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "plan_units",
			Help:      "Unit placements per plan.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
		}),
		stagePlaced: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stage_placed_total",
			Help:      "Markers accepted by the sink, by stage.",
		}, []string{"stage"}),
		stageSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stage_skipped_total",
			Help:      "Markers blocked or refused, by stage.",
		}, []string{"stage"}),
		stageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Wall time of placement stages.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 14),
		}, []string{"stage"}),
		cacheOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_operations_total",
			Help:      "Cache operations by key type and outcome.",
		}, []string{"key_type", "op"}),
		cacheBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_written_bytes_total",
			Help:      "Bytes written to the cache.",
		}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "API requests by route and status.",
		}, []string{"method", "route", "status"}),
		reqDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "API request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		inflight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "http_requests_inflight",
			Help:      "API requests being served.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.collectors()...)
	}
	return m
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.runs, m.runDuration, m.plans, m.planUnits,
		m.stagePlaced, m.stageSkipped, m.stageDuration,
		m.cacheOps, m.cacheBytes,
		m.requests, m.reqDuration, m.inflight,
	}
}

// Handler serves the metrics gathered by g in the text exposition format.
// A nil g serves the default registry.
func Handler(g prometheus.Gatherer) http.Handler {
	if g == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

// Install registers m as the global pipeline, cache and API hooks.
func (m *Metrics) Install() {
	observability.SetPipelineHooks(m)
	observability.SetCacheHooks(m)
	observability.SetAPIHooks(m)
}

func (m *Metrics) OnRunStart(context.Context, string, string) {}

func (m *Metrics) OnRunComplete(_ context.Context, _ string, _, _ int, d time.Duration, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.runs.WithLabelValues(result).Inc()
	m.runDuration.Observe(d.Seconds())
}

func (m *Metrics) OnPlanComputed(_ context.Context, units, _ int, cached bool, _ time.Duration) {
	source := "computed"
	if cached {
		source = "cache"
	}
	m.plans.WithLabelValues(source).Inc()
	m.planUnits.Observe(float64(units))
}

func (m *Metrics) OnStageComplete(_ context.Context, stage string, placed, skipped int, d time.Duration) {
	m.stagePlaced.WithLabelValues(stage).Add(float64(placed))
	m.stageSkipped.WithLabelValues(stage).Add(float64(skipped))
	m.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

func (m *Metrics) OnCacheHit(_ context.Context, keyType string) {
	m.cacheOps.WithLabelValues(keyType, "hit").Inc()
}

func (m *Metrics) OnCacheMiss(_ context.Context, keyType string) {
	m.cacheOps.WithLabelValues(keyType, "miss").Inc()
}

func (m *Metrics) OnCacheSet(_ context.Context, keyType string, size int) {
	m.cacheOps.WithLabelValues(keyType, "set").Inc()
	m.cacheBytes.Add(float64(size))
}

func (m *Metrics) OnRequest(context.Context, string, string) {
	m.inflight.Inc()
}

func (m *Metrics) OnResponse(_ context.Context, method, route string, status int, d time.Duration) {
	m.inflight.Dec()
	m.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.reqDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

var (
	_ observability.PipelineHooks = (*Metrics)(nil)
	_ observability.CacheHooks    = (*Metrics)(nil)
	_ observability.APIHooks      = (*Metrics)(nil)
)
