// Package metrics exports artistgraph observability events as Prometheus
// metrics.
//
// [Collector] implements the hook interfaces of pkg/observability. Register
// it once at startup:
//
//	reg := prometheus.NewRegistry()
//	m := metrics.New(reg)
//	m.Install()
//	http.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/matzehuels/artistgraph/pkg/errors"
	"github.com/matzehuels/artistgraph/pkg/observability"
)

const namespace = "artistgraph"

// Collector records build, cache and HTTP client events.
type Collector struct {
	builds        *prometheus.CounterVec
	buildDuration *prometheus.HistogramVec
	graphNodes    *prometheus.HistogramVec
	fallbacks     *prometheus.CounterVec

	cacheEvents *prometheus.CounterVec
	cacheBytes  *prometheus.CounterVec

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
	httpErrors   *prometheus.CounterVec
}

// New creates a Collector and registers its metrics with reg.
// It panics if a metric is already registered, like prometheus.MustRegister.
func New(reg prometheus.Registerer) *Collector {
	c := &Collector{
		builds: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "build",
			Name:      "total",
			Help:      "Graph builds by mode and result.",
		}, []string{"mode", "result"}),
		buildDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "build",
			Name:      "duration_seconds",
			Help:      "Graph build latency by mode.",
			Buckets:   []float64{.1, .25, .5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"mode"}),
		graphNodes: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "build",
			Name:      "nodes",
			Help:      "Nodes per successfully built graph.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
		}, []string{"mode"}),
		fallbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "build",
			Name:      "fallbacks_total",
			Help:      "Switches from full to degraded mode by reason code.",
		}, []string{"reason"}),

		cacheEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "events_total",
			Help:      "Cache hits, misses and sets by tier.",
		}, []string{"tier", "event"}),
		cacheBytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "written_bytes_total",
			Help:      "Bytes written to the cache by tier.",
		}, []string{"tier"}),

		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http_client",
			Name:      "requests_total",
			Help:      "Outgoing metadata requests by host and status.",
		}, []string{"host", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http_client",
			Name:      "request_duration_seconds",
			Help:      "Outgoing metadata request latency by host.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"host"}),
		httpErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http_client",
			Name:      "errors_total",
			Help:      "Outgoing metadata requests that failed without a response.",
		}, []string{"host"}),
	}

	reg.MustRegister(
		c.builds, c.buildDuration, c.graphNodes, c.fallbacks,
		c.cacheEvents, c.cacheBytes,
		c.httpRequests, c.httpDuration, c.httpErrors,
	)
	return c
}

// Install registers c as the global build, cache and HTTP hooks.
func (c *Collector) Install() {
	observability.SetBuildHooks(c)
	observability.SetCacheHooks(c)
	observability.SetHTTPHooks(c)
}

func (c *Collector) OnBuildStart(context.Context, string, string) {}

func (c *Collector) OnBuildComplete(_ context.Context, _, mode string, nodes, _ int, duration time.Duration, err error) {
	c.buildDuration.WithLabelValues(mode).Observe(duration.Seconds())
	if err != nil {
		c.builds.WithLabelValues(mode, resultLabel(err)).Inc()
		return
	}
	c.builds.WithLabelValues(mode, "ok").Inc()
	c.graphNodes.WithLabelValues(mode).Observe(float64(nodes))
}

func (c *Collector) OnFallback(_ context.Context, _ string, reason error) {
	c.fallbacks.WithLabelValues(resultLabel(reason)).Inc()
}

func (c *Collector) OnCacheHit(_ context.Context, tier string) {
	c.cacheEvents.WithLabelValues(tier, "hit").Inc()
}

func (c *Collector) OnCacheMiss(_ context.Context, tier string) {
	c.cacheEvents.WithLabelValues(tier, "miss").Inc()
}

func (c *Collector) OnCacheSet(_ context.Context, tier string, size int) {
	c.cacheEvents.WithLabelValues(tier, "set").Inc()
	if size > 0 {
		c.cacheBytes.WithLabelValues(tier).Add(float64(size))
	}
}

func (c *Collector) OnRequest(context.Context, string, string, string) {}

func (c *Collector) OnResponse(_ context.Context, _, host, _ string, statusCode int, duration time.Duration) {
	c.httpRequests.WithLabelValues(host, statusClass(statusCode)).Inc()
	c.httpDuration.WithLabelValues(host).Observe(duration.Seconds())
}

func (c *Collector) OnError(_ context.Context, _, host, _ string, _ error) {
	c.httpErrors.WithLabelValues(host).Inc()
}

// resultLabel keeps label cardinality bounded by reporting error codes only.
func resultLabel(err error) string {
	if code := errors.GetCode(err); code != "" {
		return string(code)
	}
	return "error"
}

func statusClass(code int) string {
	switch {
	case code >= 500:
		return "5xx"
	case code >= 400:
		return "4xx"
	case code >= 300:
		return "3xx"
	case code >= 200:
		return "2xx"
	default:
		return "other"
	}
}

var (
	_ observability.BuildHooks = (*Collector)(nil)
	_ observability.CacheHooks = (*Collector)(nil)
	_ observability.HTTPHooks  = (*Collector)(nil)
)
