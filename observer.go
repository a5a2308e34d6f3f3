package pumproom

import (
	"sync"
	"time"
)

// Observer provides hooks for monitoring SDK operations. Implement it to
// track API latencies, cache effectiveness or retry behavior. Observer
// methods should be fast and non-blocking.
type Observer interface {
	// OnRequestStart is called when an API request starts.
	OnRequestStart(method, path string)

	// OnRequestEnd is called when an API request completes, with the total
	// duration and the final error (nil on success).
	OnRequestEnd(method, path string, duration time.Duration, err error)

	// OnRetryAttempt is called before each retry attempt.
	OnRetryAttempt(method, path string, attempt int, delay time.Duration, err error)

	// OnCacheHit is called when a cached user passes re-verification.
	OnCacheHit(key string)

	// OnCacheMiss is called when no usable cached user was found.
	OnCacheMiss(key string)
}

// NoopObserver is the default Observer; it does nothing.
type NoopObserver struct{}

// OnRequestStart does nothing.
func (*NoopObserver) OnRequestStart(method, path string) {}

// OnRequestEnd does nothing.
func (*NoopObserver) OnRequestEnd(method, path string, duration time.Duration, err error) {}

// OnRetryAttempt does nothing.
func (*NoopObserver) OnRetryAttempt(method, path string, attempt int, delay time.Duration, err error) {
}

// OnCacheHit does nothing.
func (*NoopObserver) OnCacheHit(key string) {}

// OnCacheMiss does nothing.
func (*NoopObserver) OnCacheMiss(key string) {}

// MetricsCollector is an in-memory Observer intended for debugging and
// tests. It is safe for concurrent use.
type MetricsCollector struct {
	mu           sync.RWMutex
	requestCount map[string]int64
	errorCount   map[string]int64
	retryCount   map[string]int64
	latencies    map[string][]time.Duration
	cacheHits    int64
	cacheMisses  int64
}

// NewMetricsCollector creates an empty collector.
func NewMetricsCollector() *MetricsCollector {
	return &MetricsCollector{
		requestCount: make(map[string]int64),
		errorCount:   make(map[string]int64),
		retryCount:   make(map[string]int64),
		latencies:    make(map[string][]time.Duration),
	}
}

// OnRequestStart increments the request count.
func (m *MetricsCollector) OnRequestStart(method, path string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requestCount[method+" "+path]++
}

// OnRequestEnd records the latency and any error.
func (m *MetricsCollector) OnRequestEnd(method, path string, duration time.Duration, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := method + " " + path
	m.latencies[key] = append(m.latencies[key], duration)
	if err != nil {
		m.errorCount[key]++
	}
}

// OnRetryAttempt increments the retry count.
func (m *MetricsCollector) OnRetryAttempt(method, path string, attempt int, delay time.Duration, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.retryCount[method+" "+path]++
}

// OnCacheHit increments the cache hit count.
func (m *MetricsCollector) OnCacheHit(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cacheHits++
}

// OnCacheMiss increments the cache miss count.
func (m *MetricsCollector) OnCacheMiss(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cacheMisses++
}

// Snapshot returns a copy of the collected metrics.
func (m *MetricsCollector) Snapshot() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	requests := make(map[string]int64, len(m.requestCount))
	for k, v := range m.requestCount {
		requests[k] = v
	}
	errors := make(map[string]int64, len(m.errorCount))
	for k, v := range m.errorCount {
		errors[k] = v
	}
	retries := make(map[string]int64, len(m.retryCount))
	for k, v := range m.retryCount {
		retries[k] = v
	}

	total := m.cacheHits + m.cacheMisses
	hitRate := float64(0)
	if total > 0 {
		hitRate = float64(m.cacheHits) / float64(total)
	}

	return map[string]interface{}{
		"requests":       requests,
		"errors":         errors,
		"retries":        retries,
		"cache_hits":     m.cacheHits,
		"cache_misses":   m.cacheMisses,
		"cache_hit_rate": hitRate,
	}
}

// CompositeObserver fans hooks out to multiple observers. A panicking
// observer is recovered so it cannot affect the others.
type CompositeObserver struct {
	observers []Observer
}

// NewCompositeObserver combines multiple observers into one.
func NewCompositeObserver(observers ...Observer) Observer {
	return &CompositeObserver{observers: observers}
}

func (c *CompositeObserver) each(fn func(Observer)) {
	for _, obs := range c.observers {
		func() {
			defer func() {
				_ = recover()
			}()
			fn(obs)
		}()
	}
}

// OnRequestStart notifies all observers.
func (c *CompositeObserver) OnRequestStart(method, path string) {
	c.each(func(o Observer) { o.OnRequestStart(method, path) })
}

// OnRequestEnd notifies all observers.
func (c *CompositeObserver) OnRequestEnd(method, path string, duration time.Duration, err error) {
	c.each(func(o Observer) { o.OnRequestEnd(method, path, duration, err) })
}

// OnRetryAttempt notifies all observers.
func (c *CompositeObserver) OnRetryAttempt(method, path string, attempt int, delay time.Duration, err error) {
	c.each(func(o Observer) { o.OnRetryAttempt(method, path, attempt, delay, err) })
}

// OnCacheHit notifies all observers.
func (c *CompositeObserver) OnCacheHit(key string) {
	c.each(func(o Observer) { o.OnCacheHit(key) })
}

// OnCacheMiss notifies all observers.
func (c *CompositeObserver) OnCacheMiss(key string) {
	c.each(func(o Observer) { o.OnCacheMiss(key) })
}
