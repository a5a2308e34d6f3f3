package pumproom

import (
	"net/url"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/inzhenerka-cloud/pumproom-sdk-go/storage"
)

// DefaultBaseURL is the production PumpRoom API endpoint.
const DefaultBaseURL = "https://pumproom-api.inzhenerka-cloud.com"

// AlertFunc presents a blocking, user-facing alert. The GetCourse identifier
// guard raises one before failing authentication.
type AlertFunc func(message string)

// Viewport abstracts the scrollable surface hosting the embedded frames.
// The router restores the scroll position through it when a frame exits
// fullscreen mode.
type Viewport interface {
	// ScrollTo scrolls the hosting page to the given vertical offset.
	ScrollTo(y int)
}

// noopViewport is used when no viewport is configured.
type noopViewport struct{}

func (noopViewport) ScrollTo(int) {}

// Config holds the configuration for a PumpRoom client.
// APIKey and Realm are required; everything else has a default.
//
// Configuration can be built using the fluent builder pattern:
//
//	config := pumproom.NewConfig("api-key", "academy").
//	    WithPageURL("https://school.example.com/lesson/3").
//	    WithProviderType(pumproom.ProviderGetCourse).
//	    WithTimeout(15 * time.Second)
//
//	client, err := pumproom.New(config)
type Config struct {
	// APIKey authenticates the integration against the PumpRoom API.
	// Sent as the X-API-KEY header on every request. Required.
	APIKey string

	// Realm is the tenant identifier scoping all backend calls. Required.
	Realm string

	// BaseURL is the base URL of the PumpRoom API.
	// Default: DefaultBaseURL.
	BaseURL string

	// PageURL is the URL of the hosting page. The query string and fragment
	// are stripped once during validation; the normalized form is sent to the
	// backend and to embedded frames.
	PageURL string

	// CacheUser enables reuse of a previously stored user after successful
	// re-verification, skipping the full authentication round trip.
	// Default: true.
	CacheUser *bool

	// MinHeight is the minimum height in pixels the host should give
	// embedded frames. Informational; forwarded to host-page integrations.
	MinHeight int

	// ProviderType enables provider-specific validation of LMS profiles.
	ProviderType ProviderType

	// Context is the LMS context attached to all API calls.
	Context *LMSContext

	// Timeout is the HTTP request timeout. Default: 30s.
	Timeout time.Duration

	// RetryConfig configures automatic retries of failed API requests.
	RetryConfig RetryConfig

	// Headers are extra headers included in all API requests.
	Headers map[string]string

	// Store is the persistent key-value backend for cached users, states and
	// course data. Default: an in-memory store.
	Store storage.Store

	// Logger receives SDK diagnostics and non-fatal warnings.
	// Default: logrus.StandardLogger().
	Logger *logrus.Logger

	// Observer receives hooks for monitoring SDK operations.
	// Default: NoopObserver.
	Observer Observer

	// Alert presents blocking user-facing alerts. Default: logs through
	// Logger at error level.
	Alert AlertFunc

	// Viewport is the scrollable surface hosting the frames. Default: no-op.
	Viewport Viewport

	// AuthCompletedHook, when set, is invoked fire-and-forget after every
	// Authenticate or SetUser completion with the resulting user, or nil
	// when the attempt failed.
	AuthCompletedHook func(*User)

	// CallbackWorkers caps the goroutine pool used for fire-and-forget
	// callback invocation. Default: 8.
	CallbackWorkers int
}

// RetryConfig holds retry settings for API requests. Retries apply only to
// retryable failures: transport errors, 5xx, 408 and 429 responses.
type RetryConfig struct {
	// MaxRetries is the maximum number of retry attempts.
	// Set to 0 to disable retries. Default: 2.
	MaxRetries int

	// InitialInterval is the delay before the first retry. Default: 100ms.
	InitialInterval time.Duration

	// MaxInterval caps the retry delay. Default: 2s.
	MaxInterval time.Duration

	// Multiplier is the exponential backoff multiplier. Default: 2.0.
	Multiplier float64
}

// NewConfig returns a Config for the given credentials with defaults applied
// lazily by Validate.
func NewConfig(apiKey, realm string) *Config {
	return &Config{
		APIKey: apiKey,
		Realm:  realm,
		RetryConfig: RetryConfig{
			MaxRetries:      2,
			InitialInterval: 100 * time.Millisecond,
			MaxInterval:     2 * time.Second,
			Multiplier:      2.0,
		},
	}
}

// WithBaseURL overrides the API base URL.
func (c *Config) WithBaseURL(baseURL string) *Config {
	c.BaseURL = baseURL
	return c
}

// WithPageURL sets the hosting page URL.
func (c *Config) WithPageURL(pageURL string) *Config {
	c.PageURL = pageURL
	return c
}

// WithMinHeight sets the minimum embedded frame height in pixels.
func (c *Config) WithMinHeight(pixels int) *Config {
	c.MinHeight = pixels
	return c
}

// WithCacheUser enables or disables user caching.
func (c *Config) WithCacheUser(enabled bool) *Config {
	c.CacheUser = &enabled
	return c
}

// WithProviderType sets the LMS provider type.
func (c *Config) WithProviderType(provider ProviderType) *Config {
	c.ProviderType = provider
	return c
}

// WithContext sets the LMS context attached to API calls.
func (c *Config) WithContext(lmsContext LMSContext) *Config {
	c.Context = &lmsContext
	return c
}

// WithTimeout sets the HTTP request timeout.
func (c *Config) WithTimeout(timeout time.Duration) *Config {
	c.Timeout = timeout
	return c
}

// WithRetries sets the maximum number of retry attempts.
func (c *Config) WithRetries(maxRetries int) *Config {
	c.RetryConfig.MaxRetries = maxRetries
	return c
}

// WithHeader adds a custom header sent with all API requests.
func (c *Config) WithHeader(key, value string) *Config {
	if c.Headers == nil {
		c.Headers = make(map[string]string)
	}
	c.Headers[key] = value
	return c
}

// WithStore sets the persistent key-value backend.
func (c *Config) WithStore(store storage.Store) *Config {
	c.Store = store
	return c
}

// WithLogger sets the diagnostics logger.
func (c *Config) WithLogger(logger *logrus.Logger) *Config {
	c.Logger = logger
	return c
}

// WithObserver sets the monitoring observer.
func (c *Config) WithObserver(observer Observer) *Config {
	c.Observer = observer
	return c
}

// WithAlert sets the user-facing alert function.
func (c *Config) WithAlert(alert AlertFunc) *Config {
	c.Alert = alert
	return c
}

// WithViewport sets the scrollable viewport.
func (c *Config) WithViewport(viewport Viewport) *Config {
	c.Viewport = viewport
	return c
}

// WithAuthCompletedHook sets the authentication completion hook.
func (c *Config) WithAuthCompletedHook(hook func(*User)) *Config {
	c.AuthCompletedHook = hook
	return c
}

// Validate checks required fields and fills defaults. Called automatically
// by New.
func (c *Config) Validate() error {
	if c.APIKey == "" || c.Realm == "" {
		return ErrInvalidConfig
	}
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.CacheUser == nil {
		enabled := true
		c.CacheUser = &enabled
	}
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}
	if c.RetryConfig.MaxRetries < 0 {
		c.RetryConfig.MaxRetries = 0
	}
	if c.RetryConfig.InitialInterval <= 0 {
		c.RetryConfig.InitialInterval = 100 * time.Millisecond
	}
	if c.RetryConfig.MaxInterval <= 0 {
		c.RetryConfig.MaxInterval = 2 * time.Second
	}
	if c.RetryConfig.Multiplier <= 1 {
		c.RetryConfig.Multiplier = 2.0
	}
	if c.Store == nil {
		c.Store = storage.NewMemoryStore()
	}
	if c.Logger == nil {
		c.Logger = logrus.StandardLogger()
	}
	if c.Observer == nil {
		c.Observer = &NoopObserver{}
	}
	if c.Viewport == nil {
		c.Viewport = noopViewport{}
	}
	if c.CallbackWorkers <= 0 {
		c.CallbackWorkers = 8
	}
	c.PageURL = normalizeURL(c.PageURL)
	return nil
}

// cacheEnabled reports whether the user cache path is active.
func (c *Config) cacheEnabled() bool {
	return c.CacheUser != nil && *c.CacheUser
}

// normalizeURL strips the query string and fragment from a URL. Unparseable
// input is returned unchanged.
func normalizeURL(raw string) string {
	if raw == "" {
		return ""
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	parsed.RawQuery = ""
	parsed.Fragment = ""
	return parsed.String()
}
