package pumproom

import (
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/sirupsen/logrus"
)

// callbackRegistry holds the lifecycle callbacks. Each slot is last-write-wins
// and may be replaced at any time, including while messages are in flight.
type callbackRegistry struct {
	mu              sync.RWMutex
	onInit          OnInitCallback
	onTaskLoaded    OnTaskLoadedCallback
	onTaskSubmitted OnTaskSubmittedCallback
	onResultReady   OnResultReadyCallback
}

func (r *callbackRegistry) setOnInit(cb OnInitCallback) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onInit = cb
}

func (r *callbackRegistry) setOnTaskLoaded(cb OnTaskLoadedCallback) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onTaskLoaded = cb
}

func (r *callbackRegistry) setOnTaskSubmitted(cb OnTaskSubmittedCallback) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onTaskSubmitted = cb
}

func (r *callbackRegistry) setOnResultReady(cb OnResultReadyCallback) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onResultReady = cb
}

func (r *callbackRegistry) getOnInit() OnInitCallback {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.onInit
}

func (r *callbackRegistry) getOnTaskLoaded() OnTaskLoadedCallback {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.onTaskLoaded
}

func (r *callbackRegistry) getOnTaskSubmitted() OnTaskSubmittedCallback {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.onTaskSubmitted
}

func (r *callbackRegistry) getOnResultReady() OnResultReadyCallback {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.onResultReady
}

// dispatcher runs user callbacks fire-and-forget on a bounded worker pool.
// A panicking callback is recovered and logged so it cannot break message
// dispatch or starve the pool.
type dispatcher struct {
	pool   *ants.Pool
	logger *logrus.Logger
}

func newDispatcher(workers int, logger *logrus.Logger) (*dispatcher, error) {
	pool, err := ants.NewPool(workers, ants.WithNonblocking(true))
	if err != nil {
		return nil, err
	}
	return &dispatcher{pool: pool, logger: logger}, nil
}

// submit schedules fn on the pool. When the pool is saturated or released the
// callback still runs, on a plain goroutine, so no event is ever dropped.
func (d *dispatcher) submit(name string, fn func()) {
	wrapped := func() {
		defer func() {
			if r := recover(); r != nil {
				d.logger.WithFields(logrus.Fields{
					"callback": name,
					"panic":    r,
				}).Error("Callback panicked")
			}
		}()
		fn()
	}
	if err := d.pool.Submit(wrapped); err != nil {
		go wrapped()
	}
}

// close releases the pool. Queued callbacks already submitted keep running.
func (d *dispatcher) close() {
	d.pool.Release()
}
