package trace

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/tracewalk-network/tracewalk/pkg/model"
	"github.com/tracewalk-network/tracewalk/pkg/util"
)

// Cache stores completed trace results so repeated troubleshooting runs of
// the same pair skip the device logins. Only complete traces are cached;
// every failure mode re-traces. A nil Cache on Options disables caching.
type Cache interface {
	Get(ctx context.Context, key string) (*model.TracePath, bool)
	Put(ctx context.Context, key string, path *model.TracePath)
}

// cacheKey builds the lookup key for a request. The start override is part
// of the key: a continuation trace is a different path than a fresh one.
func cacheKey(req Request) string {
	return strings.Join([]string{
		req.SourceIP, req.DestinationIP, req.StartDevice, req.StartSite, req.StartContext,
	}, "|")
}

const redisKeyPrefix = "tracewalk:path:"

// RedisCache is the Redis-backed Cache. Results are stored as JSON with a
// TTL. Cache errors degrade to tracing normally and are logged at debug.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache creates a cache against a Redis address like "host:6379".
func NewRedisCache(addr string, ttl time.Duration) *RedisCache {
	return &RedisCache{
		client: redis.NewClient(&redis.Options{Addr: addr}),
		ttl:    ttl,
	}
}

// Ping verifies the Redis connection.
func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close releases the Redis connection.
func (c *RedisCache) Close() error {
	return c.client.Close()
}

func (c *RedisCache) Get(ctx context.Context, key string) (*model.TracePath, bool) {
	data, err := c.client.Get(ctx, redisKeyPrefix+key).Bytes()
	if err != nil {
		if err != redis.Nil {
			util.Debugf("trace cache get: %v", err)
		}
		return nil, false
	}
	var path model.TracePath
	if err := json.Unmarshal(data, &path); err != nil {
		util.Debugf("trace cache decode: %v", err)
		return nil, false
	}
	return &path, true
}

func (c *RedisCache) Put(ctx context.Context, key string, path *model.TracePath) {
	data, err := json.Marshal(path)
	if err != nil {
		util.Debugf("trace cache encode: %v", err)
		return
	}
	if err := c.client.Set(ctx, redisKeyPrefix+key, data, c.ttl).Err(); err != nil {
		util.Debugf("trace cache put: %v", err)
	}
}
