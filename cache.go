package pumproom

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/inzhenerka-cloud/pumproom-sdk-go/storage"
)

// userCache persists the authenticated user across client lifetimes. It
// deliberately never surfaces storage errors: a broken store degrades to a
// cache miss, and authentication proceeds over the network.
type userCache struct {
	store   storage.Store
	keys    *storage.KeyBuilder
	logger  *logrus.Logger
	enabled bool
}

func newUserCache(store storage.Store, keys *storage.KeyBuilder, logger *logrus.Logger, enabled bool) *userCache {
	return &userCache{store: store, keys: keys, logger: logger, enabled: enabled}
}

// load returns the cached user, or nil on a miss. Corrupt entries count as a
// miss and are removed.
func (c *userCache) load(ctx context.Context) *User {
	if !c.enabled {
		return nil
	}
	data, err := c.store.Get(ctx, c.keys.UserKey())
	if err != nil {
		if !errors.Is(err, storage.ErrKeyNotFound) {
			c.logger.WithError(err).Warn("Failed to read cached user")
		}
		return nil
	}
	var user User
	if err := json.Unmarshal(data, &user); err != nil {
		c.logger.WithError(err).Warn("Discarding corrupt cached user")
		c.clear(ctx)
		return nil
	}
	if user.UID == "" || user.Token == "" {
		c.clear(ctx)
		return nil
	}
	return &user
}

// save stores the user. Failures are logged and swallowed.
func (c *userCache) save(ctx context.Context, user *User) {
	if !c.enabled || user == nil {
		return
	}
	data, err := json.Marshal(user)
	if err != nil {
		c.logger.WithError(err).Warn("Failed to serialize user for caching")
		return
	}
	if err := c.store.Set(ctx, c.keys.UserKey(), data); err != nil {
		c.logger.WithError(err).Warn("Failed to cache user")
	}
}

// clear removes the cached user. Failures are logged and swallowed.
func (c *userCache) clear(ctx context.Context) {
	if err := c.store.Delete(ctx, c.keys.UserKey()); err != nil && !errors.Is(err, storage.ErrKeyNotFound) {
		c.logger.WithError(err).Warn("Failed to remove cached user")
	}
}
