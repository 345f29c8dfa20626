package cache

import (
	"context"
	"fmt"

	"meal-planner/internal/infrastructure/config"
	"meal-planner/internal/pkg/common"
)

// Cache 依命名空間存放字串值的快取
type Cache interface {
	// Get 取得快取值；未命中、過期或後端錯誤時 ok 為 false
	Get(ctx context.Context, namespace, key string) (value string, ok bool)
	Set(ctx context.Context, namespace, key, value string) error
	Close() error
}

// New 依設定建立快取後端；快取停用時返回 nil
func New(ctx context.Context, cfg config.CacheConfig) (Cache, error) {
	if !cfg.Enabled {
		common.LogInfo("Cache disabled")
		return nil, nil
	}

	switch cfg.Backend {
	case "", "memory":
		return NewManager(cfg), nil
	case "redis":
		return NewRedisService(ctx, cfg)
	default:
		return nil, fmt.Errorf("unsupported cache backend %q", cfg.Backend)
	}
}

// entryKey 組合命名空間與雜湊後的鍵
func entryKey(namespace, key string) string {
	return namespace + ":" + common.HashKey(key)
}
