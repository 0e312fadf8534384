package comparison

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/eleven-am/pose-coach/internal/metrics"
	"github.com/eleven-am/pose-coach/internal/shared"
	"github.com/eleven-am/pose-coach/internal/similarity"
	"github.com/redis/go-redis/v9"
)

const defaultReferenceTTL = 24 * time.Hour

// ReferenceCache keeps extracted reference descriptors in Redis so each
// reference video is decoded and detected once per pipeline configuration.
type ReferenceCache struct {
	redis *redis.Client
	ttl   time.Duration
}

func NewReferenceCache(client *redis.Client, ttl time.Duration) *ReferenceCache {
	if ttl <= 0 {
		ttl = defaultReferenceTTL
	}
	return &ReferenceCache{redis: client, ttl: ttl}
}

// ReferenceKey changes whenever the exercise or the pipeline settings do.
func ReferenceKey(exerciseID string, updatedAt time.Time, fingerprint string) string {
	return fmt.Sprintf("reference:%s:%d:%s", exerciseID, updatedAt.UnixNano(), fingerprint)
}

func (c *ReferenceCache) Get(ctx context.Context, key string) (*similarity.Extraction, error) {
	data, err := c.redis.Get(ctx, key).Bytes()
	if err == redis.Nil {
		metrics.ReferenceCacheTotal.WithLabelValues(metrics.CacheMiss).Inc()
		return nil, shared.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var ext similarity.Extraction
	if err := json.Unmarshal(data, &ext); err != nil {
		return nil, fmt.Errorf("decode cached reference: %w", err)
	}
	metrics.ReferenceCacheTotal.WithLabelValues(metrics.CacheHit).Inc()
	return &ext, nil
}

func (c *ReferenceCache) Set(ctx context.Context, key string, ext *similarity.Extraction) error {
	data, err := json.Marshal(ext)
	if err != nil {
		return fmt.Errorf("encode reference: %w", err)
	}
	return c.redis.Set(ctx, key, data, c.ttl).Err()
}

func (c *ReferenceCache) Delete(ctx context.Context, key string) error {
	return c.redis.Del(ctx, key).Err()
}
