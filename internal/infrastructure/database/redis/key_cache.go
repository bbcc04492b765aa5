package redis

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"github.com/turtacn/SymRxn/internal/config"
	"github.com/turtacn/SymRxn/internal/domain/reaction"
	"github.com/turtacn/SymRxn/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/SymRxn/pkg/errors"
)

// keyNamespace scopes the name-based UUIDs used as Redis key suffixes.
var keyNamespace = uuid.MustParse("2f1c7b8e-5d0a-4a53-9a43-6f2d8e1b7c90")

// KeyCache stores reaction keys in Redis under prefix + a UUIDv5 of the
// probe/pattern fingerprint. Concurrent lookups of one fingerprint share a
// single round trip.
type KeyCache struct {
	client *Client
	logger logging.Logger
	prefix string
	ttl    time.Duration
	group  singleflight.Group
}

var _ reaction.KeyCache = (*KeyCache)(nil)

// KeyCacheOption configures a KeyCache.
type KeyCacheOption func(*KeyCache)

func WithPrefix(prefix string) KeyCacheOption {
	return func(c *KeyCache) { c.prefix = prefix }
}

// WithTTL sets the expiry of stored keys; zero stores without expiry.
func WithTTL(ttl time.Duration) KeyCacheOption {
	return func(c *KeyCache) { c.ttl = ttl }
}

// NewKeyCache returns a Redis-backed reaction.KeyCache.
func NewKeyCache(client *Client, log logging.Logger, opts ...KeyCacheOption) *KeyCache {
	if log == nil {
		log = logging.NewNopLogger()
	}
	c := &KeyCache{
		client: client,
		logger: log.Named("key_cache"),
		prefix: config.DefaultCachePrefix,
		ttl:    config.DefaultCacheTTL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// RedisKey returns the Redis key used for probe and pattern.
func (c *KeyCache) RedisKey(probe, pattern string) string {
	fp := reaction.CacheFingerprint(probe, pattern)
	return c.prefix + uuid.NewSHA1(keyNamespace, []byte(fp)).String()
}

type lookupResult struct {
	key reaction.Key
	ok  bool
}

// Lookup fetches a cached key. Redis errors are returned as CacheError and
// not logged here; the caller decides whether to carry on without the cache.
func (c *KeyCache) Lookup(ctx context.Context, probe, pattern string) (reaction.Key, bool, error) {
	redisKey := c.RedisKey(probe, pattern)
	v, err, _ := c.group.Do(redisKey, func() (interface{}, error) {
		val, err := c.client.Get(ctx, redisKey).Result()
		if stderrors.Is(err, redis.Nil) {
			return lookupResult{}, nil
		}
		if err != nil {
			return nil, err
		}
		return lookupResult{key: reaction.Key(val), ok: true}, nil
	})
	if err != nil {
		return "", false, errors.Wrap(err, errors.ErrCodeCacheError, "reaction key lookup failed")
	}
	res := v.(lookupResult)
	if res.ok {
		c.logger.Debug("reaction key cache hit", logging.String(logging.FieldPattern, pattern), logging.String(logging.FieldKey, res.key.String()))
	}
	return res.key, res.ok, nil
}

// Store writes key with the configured TTL. Errors are returned, not logged.
func (c *KeyCache) Store(ctx context.Context, probe, pattern string, key reaction.Key) error {
	if err := c.client.Set(ctx, c.RedisKey(probe, pattern), string(key), c.ttl).Err(); err != nil {
		return errors.Wrap(err, errors.ErrCodeCacheError, "reaction key store failed")
	}
	return nil
}

//Personal.AI order the ending
