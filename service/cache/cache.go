// Package cache stores translated transactions in Redis keyed by translator
// fingerprint and digest.

package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/brojonat/suiscope/service/metrics"
	"github.com/brojonat/suiscope/service/translate"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "translation:v1:"

// Key returns the cache key for a digest translated under fingerprint.
func Key(fingerprint, digest string) string {
	return keyPrefix + fingerprint + ":" + digest
}

// Connect parses a redis:// URL and verifies the connection.
func Connect(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("redis: parse url: %w", err)
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis: ping: %w", err)
	}
	return rdb, nil
}

// TranslationCache is a TTL cache of TranslatedTransaction values.
type TranslationCache struct {
	rdb     redis.Cmdable
	ttl     time.Duration
	metrics *metrics.Metrics
}

// NewTranslationCache wraps a redis client. Metrics may be nil.
func NewTranslationCache(rdb redis.Cmdable, ttl time.Duration, m *metrics.Metrics) *TranslationCache {
	return &TranslationCache{rdb: rdb, ttl: ttl, metrics: m}
}

// Get returns the cached translation. A miss is (nil, false, nil).
func (c *TranslationCache) Get(ctx context.Context, fingerprint, digest string) (*translate.TranslatedTransaction, bool, error) {
	data, err := c.rdb.Get(ctx, Key(fingerprint, digest)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			c.record(false)
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("redis: get translation %s: %w", digest, err)
	}

	var tx translate.TranslatedTransaction
	if err := json.Unmarshal(data, &tx); err != nil {
		// A corrupt entry is treated as a miss; the caller will overwrite it.
		c.record(false)
		return nil, false, nil
	}
	c.record(true)
	return &tx, true, nil
}

// Set stores a translation under fingerprint and its digest.
func (c *TranslationCache) Set(ctx context.Context, fingerprint string, tx *translate.TranslatedTransaction) error {
	if tx == nil || tx.Digest == "" {
		return fmt.Errorf("redis: set translation: digest is required")
	}
	data, err := json.Marshal(tx)
	if err != nil {
		return fmt.Errorf("redis: marshal translation %s: %w", tx.Digest, err)
	}
	if err := c.rdb.Set(ctx, Key(fingerprint, tx.Digest), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis: set translation %s: %w", tx.Digest, err)
	}
	return nil
}

// Delete evicts a digest. Deleting a missing key is not an error.
func (c *TranslationCache) Delete(ctx context.Context, fingerprint, digest string) error {
	if err := c.rdb.Del(ctx, Key(fingerprint, digest)).Err(); err != nil {
		return fmt.Errorf("redis: delete translation %s: %w", digest, err)
	}
	return nil
}

func (c *TranslationCache) record(hit bool) {
	if c.metrics != nil {
		c.metrics.RecordCacheLookup(hit)
	}
}
