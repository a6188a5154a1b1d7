package redis

import (
	"context"
	"time"
)

const (
	scriptKeyPrefix = "script_cache:"
	scriptTTL       = 7 * 24 * time.Hour
)

// ScriptCache stores generated narration scripts keyed by source image so
// re-running a job with the same image skips the vision call.
type ScriptCache struct {
	client RedisClient
}

func NewScriptCache(client RedisClient) *ScriptCache {
	return &ScriptCache{client: client}
}

func (c *ScriptCache) Get(ctx context.Context, imageKey string) (string, bool) {
	v, err := c.client.Get(ctx, scriptKeyPrefix+imageKey)
	if err != nil {
		return "", false
	}
	return v, true
}

func (c *ScriptCache) Put(ctx context.Context, imageKey, script string) error {
	return c.client.Set(ctx, scriptKeyPrefix+imageKey, script, scriptTTL)
}
