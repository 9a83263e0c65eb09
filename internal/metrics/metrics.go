// Package metrics 暴露给 /metrics 的 Prometheus 指标
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ProviderRequests 外部服务请求数，outcome: success / failure / rejected
	ProviderRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "movielog_provider_requests_total",
			Help: "Requests sent to external metadata providers",
		},
		[]string{"provider", "outcome"},
	)

	// ProviderLatency 外部服务请求耗时
	ProviderLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "movielog_provider_request_duration_seconds",
			Help:    "Latency of external metadata provider requests",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"provider"},
	)

	// ProviderCacheHits 外部服务缓存命中
	ProviderCacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "movielog_provider_cache_hits_total",
			Help: "Provider lookups answered from cache",
		},
		[]string{"provider"},
	)

	// CircuitBreakerState 取值同 gobreaker.State：0=closed, 1=half-open, 2=open
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "movielog_circuit_breaker_state",
			Help: "Circuit breaker state per provider (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	// RecordsWritten 观影记录写入结果，result: created / duplicate / invalid
	RecordsWritten = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "movielog_records_written_total",
			Help: "Watch record insert attempts by result",
		},
		[]string{"result"},
	)

	// HTTPRequests API 请求数
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "movielog_http_requests_total",
			Help: "HTTP requests by route and status",
		},
		[]string{"method", "route", "status"},
	)

	// HTTPDuration API 请求耗时
	HTTPDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "movielog_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
)
