package cache

import (
	"context"
	"errors"
	"fmt"

	"meal-planner/internal/infrastructure/config"
	"meal-planner/internal/pkg/common"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const redisKeyPrefix = "meal-planner:"

// RedisService 以 Redis 實作的緩存服務
type RedisService struct {
	client redis.UniversalClient
	config config.CacheConfig
}

// NewRedisService 連線 Redis 並確認可用
func NewRedisService(ctx context.Context, cfg config.CacheConfig) (*RedisService, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	common.LogInfo("Redis 快取已連線", zap.String("addr", cfg.Redis.Addr))
	return newRedisService(client, cfg), nil
}

func newRedisService(client redis.UniversalClient, cfg config.CacheConfig) *RedisService {
	return &RedisService{client: client, config: cfg}
}

// Get 獲取緩存
func (s *RedisService) Get(ctx context.Context, namespace, key string) (string, bool) {
	value, err := s.client.Get(ctx, redisKey(namespace, key)).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			common.LogWarn("Redis 讀取失敗", zap.String("namespace", namespace), zap.Error(err))
		}
		common.LogCacheMiss(namespace)
		return "", false
	}
	common.LogCacheHit(namespace)
	return value, true
}

// Set 設置緩存
func (s *RedisService) Set(ctx context.Context, namespace, key, value string) error {
	if err := s.client.Set(ctx, redisKey(namespace, key), value, s.config.TTL).Err(); err != nil {
		return fmt.Errorf("failed to set cache: %w", err)
	}
	return nil
}

// Close 關閉 Redis 連線
func (s *RedisService) Close() error {
	return s.client.Close()
}

func redisKey(namespace, key string) string {
	return redisKeyPrefix + entryKey(namespace, key)
}
