// Package observability provides Prometheus metrics, OpenTelemetry tracing
// and HTTP middleware for monitoring the bedrockgen server.
package observability

import "github.com/prometheus/client_golang/prometheus"

// LLMBuckets defines histogram buckets suited for LLM inference latencies,
// ranging from 100ms to 120s.
var LLMBuckets = []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120}

var (
	// RequestsTotal counts all HTTP requests by method, status class, and route.
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bedrockgen_requests_total",
			Help: "Total requests",
		},
		[]string{"method", "status", "route"},
	)

	// RequestDuration records HTTP request duration in seconds by method and route.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bedrockgen_request_duration_seconds",
			Help:    "Request duration",
			Buckets: LLMBuckets,
		},
		[]string{"method", "route"},
	)

	// StreamingConnections tracks the number of active SSE streaming connections.
	StreamingConnections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "bedrockgen_streaming_connections_active",
			Help: "Active streaming connections",
		},
	)

	// GeneratorCallsTotal counts generator calls by mode (blocking/stream)
	// and outcome.
	GeneratorCallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bedrockgen_generator_calls_total",
			Help: "Generator calls",
		},
		[]string{"generator", "model", "mode", "status"},
	)

	// GeneratorLatency records generator call latency in seconds. For
	// streams this is the time until the sequence ended.
	GeneratorLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bedrockgen_generator_latency_seconds",
			Help:    "Generator latency",
			Buckets: LLMBuckets,
		},
		[]string{"generator", "model", "mode"},
	)

	// StreamEventsTotal counts stream events delivered to consumers.
	StreamEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bedrockgen_stream_events_total",
			Help: "Stream events",
		},
		[]string{"generator", "model"},
	)

	// RateLimitRejectedTotal counts requests rejected by the rate limiter.
	RateLimitRejectedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bedrockgen_ratelimit_rejected_total",
			Help: "Rate limit rejections",
		},
		[]string{"tier"},
	)
)

func init() {
	prometheus.MustRegister(
		RequestsTotal,
		RequestDuration,
		StreamingConnections,
		GeneratorCallsTotal,
		GeneratorLatency,
		StreamEventsTotal,
		RateLimitRejectedTotal,
	)
}
