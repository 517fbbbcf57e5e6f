package cache

import (
	"context"
	"encoding/json"
	"time"

	"AuxFM/logger"
	"AuxFM/model"

	"github.com/redis/go-redis/v9"
)

const (
	playlistKey = "auxfm:playlist"
	playlistTTL = 10 * time.Minute
)

// PlaylistCache is a cache-aside layer over the ordered track listing. It is
// purely an optimization: every method degrades to a no-op / miss when Redis
// is not configured, and cache errors are logged, never propagated.
type PlaylistCache struct {
	client *redis.Client
}

// NewPlaylistCache wraps a Redis client; client may be nil to disable caching.
func NewPlaylistCache(client *redis.Client) *PlaylistCache {
	return &PlaylistCache{client: client}
}

// Get returns the cached listing, or ok=false on miss or error.
func (c *PlaylistCache) Get(ctx context.Context) ([]*model.Track, bool) {
	if c == nil || c.client == nil {
		return nil, false
	}

	data, err := c.client.Get(ctx, playlistKey).Bytes()
	if err != nil {
		if err != redis.Nil {
			logger.Warn("playlist cache get failed", logger.ErrorField(err))
		}
		return nil, false
	}

	var tracks []*model.Track
	if err := json.Unmarshal(data, &tracks); err != nil {
		logger.Warn("playlist cache corrupt, dropping", logger.ErrorField(err))
		c.Invalidate(ctx)
		return nil, false
	}
	return tracks, true
}

// Set stores the listing with a TTL.
func (c *PlaylistCache) Set(ctx context.Context, tracks []*model.Track) {
	if c == nil || c.client == nil {
		return
	}

	data, err := json.Marshal(tracks)
	if err != nil {
		logger.Warn("playlist cache marshal failed", logger.ErrorField(err))
		return
	}
	if err := c.client.Set(ctx, playlistKey, data, playlistTTL).Err(); err != nil {
		logger.Warn("playlist cache set failed", logger.ErrorField(err))
	}
}

// Invalidate drops the cached listing. Called after every catalog mutation.
func (c *PlaylistCache) Invalidate(ctx context.Context) {
	if c == nil || c.client == nil {
		return
	}
	if err := c.client.Del(ctx, playlistKey).Err(); err != nil {
		logger.Warn("playlist cache invalidate failed", logger.ErrorField(err))
	}
}
