package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

type DishCache interface {
	Get(ctx context.Context, dishID int64) (*Dish, error)
	Set(ctx context.Context, dish *Dish) error
	Invalidate(ctx context.Context, dishID int64) error
}

// RedisCache keeps resolved dishes as JSON strings under dish:<id>.
type RedisCache struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{Client: client, TTL: ttl}
}

func (c *RedisCache) key(dishID int64) string {
	return "dish:" + strconv.FormatInt(dishID, 10)
}

// Get returns nil, nil on a cache miss.
func (c *RedisCache) Get(ctx context.Context, dishID int64) (*Dish, error) {
	raw, err := c.Client.Get(ctx, c.key(dishID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var d Dish
	if err := json.Unmarshal(raw, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

func (c *RedisCache) Set(ctx context.Context, dish *Dish) error {
	payload, err := json.Marshal(dish)
	if err != nil {
		return err
	}
	return c.Client.Set(ctx, c.key(dish.ID), payload, c.TTL).Err()
}

func (c *RedisCache) Invalidate(ctx context.Context, dishID int64) error {
	return c.Client.Del(ctx, c.key(dishID)).Err()
}
