package pumproom

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusObserver exports SDK operation metrics to a Prometheus registry.
//
// Example:
//
//	observer := pumproom.NewPrometheusObserver(prometheus.DefaultRegisterer)
//	config := pumproom.NewConfig(key, realm).WithObserver(observer)
type PrometheusObserver struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	retriesTotal    *prometheus.CounterVec
	cacheHitsTotal  prometheus.Counter
	cacheMissTotal  prometheus.Counter
}

// NewPrometheusObserver creates an observer registered against reg.
func NewPrometheusObserver(reg prometheus.Registerer) *PrometheusObserver {
	o := &PrometheusObserver{
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pumproom_sdk",
			Name:      "requests_total",
			Help:      "Total API requests issued by the SDK",
		}, []string{"method", "path", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "pumproom_sdk",
			Name:      "request_duration_seconds",
			Help:      "API request latency",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "path"}),
		retriesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pumproom_sdk",
			Name:      "retries_total",
			Help:      "Total retry attempts",
		}, []string{"method", "path"}),
		cacheHitsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "pumproom_sdk",
			Name:      "user_cache_hits_total",
			Help:      "Cached users that passed re-verification",
		}),
		cacheMissTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "pumproom_sdk",
			Name:      "user_cache_misses_total",
			Help:      "Authentication attempts without a usable cached user",
		}),
	}
	reg.MustRegister(o.requestsTotal, o.requestDuration, o.retriesTotal, o.cacheHitsTotal, o.cacheMissTotal)
	return o
}

// OnRequestStart is a no-op; requests are counted on completion so the
// status label is known.
func (o *PrometheusObserver) OnRequestStart(method, path string) {}

// OnRequestEnd records the request outcome and latency.
func (o *PrometheusObserver) OnRequestEnd(method, path string, duration time.Duration, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	o.requestsTotal.WithLabelValues(method, path, status).Inc()
	o.requestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// OnRetryAttempt counts retry attempts.
func (o *PrometheusObserver) OnRetryAttempt(method, path string, attempt int, delay time.Duration, err error) {
	o.retriesTotal.WithLabelValues(method, path).Inc()
}

// OnCacheHit counts verified cache hits.
func (o *PrometheusObserver) OnCacheHit(key string) {
	o.cacheHitsTotal.Inc()
}

// OnCacheMiss counts cache misses.
func (o *PrometheusObserver) OnCacheMiss(key string) {
	o.cacheMissTotal.Inc()
}
