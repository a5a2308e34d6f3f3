package pumproom

import (
	"context"
	"errors"
	"regexp"
	"strings"
)

// getCourseAlertMessage is shown to the end user when the GetCourse guard
// rejects an identifier. GetCourse admins see it on their own pages, so it is
// in Russian and names the exact checkbox to flip.
const getCourseAlertMessage = "Некорректный идентификатор пользователя из GetCourse. " +
	"При встраивании JavaScript-кода включите галочку «Заменять переменные пользователя»."

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Authenticate establishes the current user for the client.
//
// With caching enabled, a previously stored user is re-verified first and, if
// still valid, reused without a full authentication round trip. Otherwise the
// normalized profile is exchanged for a fresh user, which is cached for next
// time. On success the client starts answering getPumpRoomUser requests from
// frames.
//
// Concurrent calls are serialized; each caller observes a fully completed
// attempt. A failed attempt leaves any previously established user intact.
func (c *Client) Authenticate(ctx context.Context, opts AuthOptions) (*User, error) {
	if err := c.operational(); err != nil {
		return nil, err
	}

	c.authMu.Lock()
	defer c.authMu.Unlock()

	opts.LMS = c.normalizeLMSProfile(opts.LMS)
	if err := c.validateProvider(opts.LMS); err != nil {
		c.completeAuth(nil)
		return nil, err
	}

	if user := c.tryCache(ctx); user != nil {
		c.adoptUser(ctx, user, false)
		return user, nil
	}

	user, err := c.api.authenticate(ctx, opts)
	if err != nil {
		c.completeAuth(nil)
		var apiErr *APIError
		if errors.As(err, &apiErr) {
			return nil, &AuthenticationError{StatusCode: apiErr.StatusCode, Status: apiErr.Status}
		}
		return nil, err
	}

	c.adoptUser(ctx, user, true)
	return user, nil
}

// SetUser installs a known user directly, bypassing profile exchange. The
// token is verified first; an invalid token is an AuthenticationError and the
// current user is left untouched.
func (c *Client) SetUser(ctx context.Context, uid, token string) (*User, error) {
	if err := c.operational(); err != nil {
		return nil, err
	}

	c.authMu.Lock()
	defer c.authMu.Unlock()

	candidate := &User{UID: uid, Token: token}
	result, err := c.api.verifyToken(ctx, candidate)
	if err != nil {
		c.completeAuth(nil)
		return nil, err
	}
	if !result.IsValid {
		c.completeAuth(nil)
		return nil, &AuthenticationError{StatusCode: 0, Status: "token verification failed"}
	}

	candidate.IsAdmin = result.IsAdmin
	c.adoptUser(ctx, candidate, true)
	return candidate, nil
}

// CurrentUser returns the authenticated user, or nil before the first
// successful Authenticate or SetUser.
func (c *Client) CurrentUser() *User {
	return c.session.currentUser()
}

// tryCache returns a cached user that passed re-verification, or nil. An
// invalid or corrupt cache entry is removed so the next attempt starts
// clean. With caching disabled nothing is consulted and no cache metrics
// are recorded.
func (c *Client) tryCache(ctx context.Context) *User {
	if !c.config.cacheEnabled() {
		return nil
	}
	cached := c.cache.load(ctx)
	if cached == nil {
		c.config.Observer.OnCacheMiss(c.keys.UserKey())
		return nil
	}

	result, err := c.api.verifyToken(ctx, cached)
	if err != nil {
		c.logger.WithError(err).Warn("Cached user verification failed")
		c.cache.clear(ctx)
		c.config.Observer.OnCacheMiss(c.keys.UserKey())
		return nil
	}
	if !result.IsValid {
		c.cache.clear(ctx)
		c.config.Observer.OnCacheMiss(c.keys.UserKey())
		return nil
	}

	// The verify response is authoritative for the admin flag.
	cached.IsAdmin = result.IsAdmin
	c.cache.save(ctx, cached)
	c.config.Observer.OnCacheHit(c.keys.UserKey())
	return cached
}

// adoptUser commits a verified user: cache, session latch and completion hook.
func (c *Client) adoptUser(ctx context.Context, user *User, persist bool) {
	if persist {
		c.cache.save(ctx, user)
	}
	c.session.setUser(user)
	c.completeAuth(user)
}

// completeAuth fires the auth-completed hook. It runs for failed attempts
// too, with a nil user: every attempt produces exactly one completion signal.
func (c *Client) completeAuth(user *User) {
	if hook := c.config.AuthCompletedHook; hook != nil {
		c.dispatcher.submit("authCompleted", func() { hook(user) })
	}
}

// normalizeLMSProfile applies the identifier promotion rules without mutating
// the caller's profile. An email supplied without an id is promoted to the id
// when it is a valid address; an email alongside an id is ignored.
func (c *Client) normalizeLMSProfile(lms *LMSProfile) *LMSProfile {
	if lms == nil {
		return nil
	}
	normalized := *lms
	switch {
	case normalized.ID != "" && normalized.Email != "":
		c.logger.Warn("LMS email provided along with id; email will be ignored")
	case normalized.ID == "" && normalized.Email != "":
		if emailPattern.MatchString(normalized.Email) {
			normalized.ID = normalized.Email
		} else {
			c.logger.Warn("Invalid email supplied to LMS profile")
		}
	}
	return &normalized
}

// validateProvider runs provider-specific checks before any network call.
// For GetCourse, an identifier that is absent (no profile at all), empty or
// still containing an unreplaced {template} placeholder raises the
// user-facing alert and fails the attempt.
func (c *Client) validateProvider(lms *LMSProfile) error {
	if c.config.ProviderType != ProviderGetCourse {
		return nil
	}
	if lms == nil || lms.ID == "" || strings.ContainsAny(lms.ID, "{}") {
		c.alert(getCourseAlertMessage)
		return &ProviderValidationError{
			Provider: ProviderGetCourse,
			Reason:   "user identifier is missing or contains an unreplaced template placeholder",
		}
	}
	return nil
}

func (c *Client) alert(message string) {
	if c.config.Alert != nil {
		c.config.Alert(message)
		return
	}
	c.logger.Error(message)
}
