package cache

import (
	"fmt"

	"github.com/jaennil/tileview/pkg/logger"
)

// New creates the hot cache backend selected by config.
func New(backend string, capacity int, redisCfg RedisConfig, l logger.Logger) (TileCache, error) {
	switch backend {
	case "lru":
		l.Info("using in-memory LRU hot cache", "capacity", capacity)
		return NewLRUCache(capacity), nil
	case "redis":
		l.Info("using redis hot cache", "addr", redisCfg.Addr, "ttl", redisCfg.TTL)
		return NewRedisCache(redisCfg)
	case "disabled":
		l.Info("hot cache disabled")
		return NewNoopCache(), nil
	default:
		return nil, fmt.Errorf("unknown cache backend: %s (supported: lru, redis, disabled)", backend)
	}
}
