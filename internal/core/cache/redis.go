package cache

import (
	"context"
	"fmt"
	"time"

	"pantryip/internal/pkg/common"

	"github.com/go-redis/redis/v8"
)

// redisBackend Redis 快取後端
// 連線由程序啟動時建立一次，之後跨併發任務共用
type redisBackend struct {
	client *redis.Client
}

// newRedisBackend 建立 Redis 後端並測試連線
func newRedisBackend(addr string) (Backend, error) {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
	})

	// 測試連接，失敗交由呼叫端降級
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &redisBackend{client: client}, nil
}

// Get 獲取快取
func (b *redisBackend) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := b.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, common.ErrCacheMiss
		}
		return nil, fmt.Errorf("failed to get cache: %w", err)
	}
	return data, nil
}

// Set 設置快取
func (b *redisBackend) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := b.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set cache: %w", err)
	}
	return nil
}

// Close 關閉連線
func (b *redisBackend) Close() error {
	return b.client.Close()
}
