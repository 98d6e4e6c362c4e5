package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"water-admin/internal/logger"
	"water-admin/internal/metrics"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const responseKeyPrefix = "resp:"

type Options struct {
	Addr     string
	Password string
	DB       int
}

// Connect opens a Redis client and pings it. On failure the client is closed
// and nil is returned so callers can run without a cache.
func Connect(ctx context.Context, opts Options) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, err
	}
	return client, nil
}

// ResponseCache stores raw backend response bodies per token and URL. A nil
// client turns every call into a no-op miss.
type ResponseCache struct {
	client *redis.Client
	ttl    time.Duration
	log    zerolog.Logger
}

func NewResponseCache(client *redis.Client, ttl time.Duration) *ResponseCache {
	return &ResponseCache{client: client, ttl: ttl, log: logger.WithComponent("cache")}
}

// WithLogger replaces the component logger.
func (c *ResponseCache) WithLogger(l zerolog.Logger) *ResponseCache {
	c.log = l
	return c
}

func (c *ResponseCache) Enabled() bool {
	return c != nil && c.client != nil && c.ttl > 0
}

func (c *ResponseCache) Get(ctx context.Context, token, url string) ([]byte, bool) {
	if !c.Enabled() {
		return nil, false
	}
	data, err := c.client.Get(ctx, ResponseKey(token, url)).Bytes()
	if err != nil {
		metrics.CacheLookups.WithLabelValues("miss").Inc()
		return nil, false
	}
	metrics.CacheLookups.WithLabelValues("hit").Inc()
	return data, true
}

func (c *ResponseCache) Set(ctx context.Context, token, url string, body []byte) {
	if !c.Enabled() {
		return
	}
	if err := c.client.Set(ctx, ResponseKey(token, url), body, c.ttl).Err(); err != nil {
		c.log.Warn().Err(err).Msg("cache write failed")
	}
}

// Invalidate drops every cached response for the token. SCAN is used so a
// large keyspace never blocks Redis.
func (c *ResponseCache) Invalidate(ctx context.Context, token string) {
	if !c.Enabled() {
		return
	}
	pattern := responseKeyPrefix + TokenScope(token) + ":*"
	iter := c.client.Scan(ctx, 0, pattern, 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		c.log.Warn().Err(err).Msg("cache invalidation scan failed")
		return
	}
	if len(keys) == 0 {
		return
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		c.log.Warn().Err(err).Int("keys", len(keys)).Msg("cache invalidation failed")
	}
}

func (c *ResponseCache) Ping(ctx context.Context) error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Ping(ctx).Err()
}

// TokenScope hashes a bearer token so raw tokens never appear in key names.
func TokenScope(token string) string {
	h := sha256.Sum256([]byte(token))
	return hex.EncodeToString(h[:])[:32]
}

func ResponseKey(token, url string) string {
	h := sha256.Sum256([]byte(url))
	return responseKeyPrefix + TokenScope(token) + ":" + hex.EncodeToString(h[:])[:32]
}
