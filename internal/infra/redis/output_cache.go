package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"dreambees-video-pipeline/internal/domain"
	"dreambees-video-pipeline/internal/transcode"
)

const (
	outputKeyPrefix = "transcode_output:"
	outputTTL       = 24 * time.Hour
)

// OutputCache remembers where a remote transcode job landed its file so
// repeated URL lookups skip the storage listing.
type OutputCache struct {
	client RedisClient
}

var _ transcode.LocationCache = (*OutputCache)(nil)

func NewOutputCache(client RedisClient) *OutputCache {
	return &OutputCache{client: client}
}

func (c *OutputCache) Get(ctx context.Context, remoteJobID string) (*transcode.OutputLocation, error) {
	data, err := c.client.Get(ctx, outputKeyPrefix+remoteJobID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get output location: %w", err)
	}
	var loc transcode.OutputLocation
	if err := json.Unmarshal([]byte(data), &loc); err != nil {
		return nil, fmt.Errorf("decode output location: %w", err)
	}
	return &loc, nil
}

func (c *OutputCache) Forget(ctx context.Context, remoteJobID string) error {
	if err := c.client.Del(ctx, outputKeyPrefix+remoteJobID); err != nil {
		return fmt.Errorf("evict output location: %w", err)
	}
	return nil
}

func (c *OutputCache) Put(ctx context.Context, remoteJobID string, loc *transcode.OutputLocation) error {
	data, err := json.Marshal(loc)
	if err != nil {
		return fmt.Errorf("encode output location: %w", err)
	}
	if err := c.client.Set(ctx, outputKeyPrefix+remoteJobID, data, outputTTL); err != nil {
		return fmt.Errorf("store output location: %w", err)
	}
	return nil
}
