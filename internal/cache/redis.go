package cache

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/Scott-fo/t3-clone/internal/domain"
	"github.com/Scott-fo/t3-clone/pkg/jsonutil"
)

const cvrKeyPrefix = "cvr/"

type RedisCvrCache struct {
	client *redis.Client
}

func NewRedis(addr string) *RedisCvrCache {
	return &RedisCvrCache{client: redis.NewClient(&redis.Options{Addr: addr})}
}

func (c *RedisCvrCache) Get(ctx context.Context, id string) (*domain.CvrRecord, bool, error) {
	raw, err := c.client.Get(ctx, cvrKeyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get cvr %s: %w", id, err)
	}

	var rec domain.CvrRecord
	if err := jsonutil.Unmarshal(raw, &rec); err != nil {
		return nil, false, fmt.Errorf("decode cvr %s: %w", id, err)
	}
	return &rec, true, nil
}

func (c *RedisCvrCache) Put(ctx context.Context, id string, rec *domain.CvrRecord) error {
	raw, err := jsonutil.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode cvr %s: %w", id, err)
	}
	if err := c.client.Set(ctx, cvrKeyPrefix+id, raw, 0).Err(); err != nil {
		return fmt.Errorf("put cvr %s: %w", id, err)
	}
	return nil
}

func (c *RedisCvrCache) Close() error { return c.client.Close() }
