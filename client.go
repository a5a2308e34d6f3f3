package pumproom

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"

	"github.com/inzhenerka-cloud/pumproom-sdk-go/storage"
)

// Client is a PumpRoom integration client. It owns the authenticated session,
// the message router serving embedded frames and the backend API access.
// All methods are safe for concurrent use.
type Client struct {
	config     *Config
	logger     *logrus.Logger
	keys       *storage.KeyBuilder
	session    *session
	cache      *userCache
	api        *apiClient
	registry   *callbackRegistry
	dispatcher *dispatcher
	router     *Router

	authMu sync.Mutex

	statesMu sync.RWMutex
	states   map[string]struct{}

	closed atomic.Bool
}

// New creates a client from config. The config is validated and defaults are
// filled in place; New is the only constructor.
func New(config *Config) (*Client, error) {
	if config == nil {
		return nil, ErrInvalidConfig
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	disp, err := newDispatcher(config.CallbackWorkers, config.Logger)
	if err != nil {
		return nil, err
	}

	keys := storage.NewKeyBuilder(config.PageURL)
	sess := newSession()
	registry := &callbackRegistry{}

	c := &Client{
		config:     config,
		logger:     config.Logger,
		keys:       keys,
		session:    sess,
		cache:      newUserCache(config.Store, keys, config.Logger, config.cacheEnabled()),
		api:        newAPIClient(config),
		registry:   registry,
		dispatcher: disp,
		states:     make(map[string]struct{}),
	}
	c.router = &Router{
		session:    sess,
		registry:   registry,
		dispatcher: disp,
		viewport:   config.Viewport,
		pageURL:    config.PageURL,
		logger:     config.Logger,
	}

	c.logger.WithFields(logrus.Fields{
		"realm":    config.Realm,
		"page_url": config.PageURL,
		"version":  Version,
	}).Debug("PumpRoom client created")
	return c, nil
}

// Router returns the message router for wiring a transport, e.g. a wsbridge
// Bridge.
func (c *Client) Router() *Router {
	return c.router
}

// Dispatch routes one raw inbound message. See Router.Dispatch.
func (c *Client) Dispatch(ctx context.Context, raw []byte, sender Conn) {
	if c.operational() != nil {
		return
	}
	c.router.Dispatch(ctx, raw, sender)
}

// OnInit registers the callback fired when a frame announces itself.
// Passing nil unregisters.
func (c *Client) OnInit(cb OnInitCallback) {
	c.registry.setOnInit(cb)
}

// OnTaskLoaded registers the callback fired when a frame loads a task.
func (c *Client) OnTaskLoaded(cb OnTaskLoadedCallback) {
	c.registry.setOnTaskLoaded(cb)
}

// OnTaskSubmitted registers the callback fired when a frame submits a task.
func (c *Client) OnTaskSubmitted(cb OnTaskSubmittedCallback) {
	c.registry.setOnTaskSubmitted(cb)
}

// OnResultReady registers the callback fired when a submission result lands.
func (c *Client) OnResultReady(cb OnResultReadyCallback) {
	c.registry.setOnResultReady(cb)
}

// RecordScroll stores the current scroll position of the hosting surface. The
// router restores it when a frame leaves fullscreen mode.
func (c *Client) RecordScroll(y int) {
	c.session.recordScroll(y)
}

// Instances returns the frames that have announced themselves so far.
func (c *Client) Instances() []InstanceContext {
	return c.session.instanceList()
}

// Version returns the SDK version string.
func (c *Client) Version() string {
	return Version
}

// Close releases the callback worker pool. The client is unusable afterwards;
// in-flight callbacks finish on their own.
func (c *Client) Close() error {
	if c.closed.Swap(true) {
		return ErrClientClosed
	}
	c.dispatcher.close()
	return nil
}

// operational reports whether the client can serve calls.
func (c *Client) operational() error {
	if c == nil || c.api == nil {
		return ErrNotInitialized
	}
	if c.closed.Load() {
		return ErrClientClosed
	}
	return nil
}
