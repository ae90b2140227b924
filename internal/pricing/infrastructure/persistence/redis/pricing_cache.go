// Package redis 定价结果的 Redis 缓存实现
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/wyfcoding/optionpricing/internal/pricing/domain"
)

const latestKeyPrefix = "pricing:latest:"

// PricingCache domain.PricingCache 的 Redis 实现
type PricingCache struct {
	client redis.UniversalClient
	ttl    time.Duration
}

// NewPricingCache 创建定价结果缓存，ttl <= 0 时取 15 分钟
func NewPricingCache(client redis.UniversalClient, ttl time.Duration) *PricingCache {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &PricingCache{client: client, ttl: ttl}
}

// SavePricingResult 缓存合约最近一次定价结果
func (c *PricingCache) SavePricingResult(ctx context.Context, result *domain.PricingResult) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshal pricing result: %w", err)
	}
	return c.client.Set(ctx, latestKeyPrefix+result.Symbol, data, c.ttl).Err()
}

// GetLatestPricingResult 缓存未命中时返回 nil, nil
func (c *PricingCache) GetLatestPricingResult(ctx context.Context, symbol string) (*domain.PricingResult, error) {
	data, err := c.client.Get(ctx, latestKeyPrefix+symbol).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var result domain.PricingResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("unmarshal pricing result: %w", err)
	}
	return &result, nil
}
