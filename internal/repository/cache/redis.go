package cache

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

func NewRedisCache(cfg RedisConfig) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	ttl := cfg.TTL
	if ttl == 0 {
		ttl = 24 * time.Hour // default TTL
	}

	return &RedisCache{
		client: client,
		ttl:    ttl,
	}, nil
}

var _ TileCache = (*RedisCache)(nil)

func (c *RedisCache) keyFor(k Key) string {
	tier := "full"
	if k.Preview {
		tier = "preview"
	}
	return fmt.Sprintf("tile:%s:%d:%d", tier, k.Row, k.Col)
}

// Entries are framed as extension, NUL byte, payload. Extensions never
// contain NUL so the first separator is unambiguous.
func encode(v Value) []byte {
	buf := make([]byte, 0, len(v.Extension)+1+len(v.Data))
	buf = append(buf, v.Extension...)
	buf = append(buf, 0)
	buf = append(buf, v.Data...)
	return buf
}

func decode(raw []byte) (Value, error) {
	i := bytes.IndexByte(raw, 0)
	if i < 0 {
		return Value{}, fmt.Errorf("malformed cached tile entry")
	}
	return Value{Extension: string(raw[:i]), Data: raw[i+1:]}, nil
}

func (c *RedisCache) Get(k Key) (Value, bool, error) {
	ctx := context.Background()

	raw, err := c.client.Get(ctx, c.keyFor(k)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return Value{}, false, nil
		}
		return Value{}, false, fmt.Errorf("redis get error: %w", err)
	}

	v, err := decode(raw)
	if err != nil {
		return Value{}, false, err
	}

	return v, true, nil
}

func (c *RedisCache) Set(k Key, v Value) error {
	ctx := context.Background()

	if err := c.client.Set(ctx, c.keyFor(k), encode(v), c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set error: %w", err)
	}

	return nil
}

func (c *RedisCache) Invalidate(k Key) error {
	ctx := context.Background()

	if err := c.client.Del(ctx, c.keyFor(k)).Err(); err != nil {
		return fmt.Errorf("redis del error: %w", err)
	}

	return nil
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}
