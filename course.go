package pumproom

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/inzhenerka-cloud/pumproom-sdk-go/storage"
)

// LoadCourseData loads the course bound to the hosting page.
//
// When a cached copy exists the callback sees it first, before the backend
// round trip, so course details can render without waiting on the network.
// The fresh response is persisted and delivered to the callback as well, then
// returned. The callback may be nil.
func (c *Client) LoadCourseData(ctx context.Context, callback CourseDataCallback) (*LoadCourseDataOutput, error) {
	if err := c.operational(); err != nil {
		return nil, err
	}

	if cached := c.loadCachedCourse(ctx); cached != nil && callback != nil {
		callback(*cached)
	}

	resp, err := c.api.loadCourseData(ctx, c.session.currentUser())
	if err != nil {
		return nil, err
	}

	c.saveCourse(ctx, resp)
	if callback != nil {
		callback(*resp)
	}
	return resp, nil
}

func (c *Client) loadCachedCourse(ctx context.Context) *LoadCourseDataOutput {
	data, err := c.config.Store.Get(ctx, c.keys.CourseKey())
	if err != nil {
		if !errors.Is(err, storage.ErrKeyNotFound) {
			c.logger.WithError(err).Debug("Failed to read cached course data")
		}
		return nil
	}
	var out LoadCourseDataOutput
	if err := json.Unmarshal(data, &out); err != nil {
		c.logger.WithError(err).Warn("Discarding corrupt cached course data")
		return nil
	}
	return &out
}

func (c *Client) saveCourse(ctx context.Context, out *LoadCourseDataOutput) {
	data, err := json.Marshal(out)
	if err != nil {
		c.logger.WithError(err).Warn("Failed to serialize course data")
		return
	}
	if err := c.config.Store.Set(ctx, c.keys.CourseKey(), data); err != nil {
		c.logger.WithError(err).Warn("Failed to cache course data")
	}
}
