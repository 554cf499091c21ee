package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"pantryip/internal/infrastructure/config"
	"pantryip/internal/pkg/common"

	"go.uber.org/zap"
)

// Backend 快取後端
// Get 未命中時回傳 common.ErrCacheMiss
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Close() error
}

// Manager 商品搜尋結果快取
// 後端屬於可選基礎設施：初始化或呼叫失敗一律降級為「沒有快取」，
// pipeline 行為不變，只會變慢
type Manager struct {
	backend Backend
	ttl     time.Duration
}

// NewManager 建立快取管理器
// 後端不可用時回傳仍可用的 Manager（所有操作都是 no-op）
func NewManager(cfg *config.CacheConfig) *Manager {
	if cfg == nil || !cfg.Enabled {
		common.LogInfo("Cache disabled")
		return &Manager{ttl: 0}
	}

	var backend Backend
	var err error
	switch cfg.Backend {
	case "memory":
		backend = newMemoryBackend(cfg.MaxSize, cfg.CleanupInterval)
	default:
		backend, err = newRedisBackend(cfg.RedisAddr)
	}
	if err != nil {
		common.LogWarn("快取後端初始化失敗，降級為無快取模式",
			zap.String("backend", cfg.Backend),
			zap.Error(err),
		)
		return &Manager{ttl: cfg.TTL}
	}

	common.LogInfo("快取管理員已初始化",
		zap.String("backend", cfg.Backend),
		zap.Duration("存活時間", cfg.TTL),
	)

	return &Manager{
		backend: backend,
		ttl:     cfg.TTL,
	}
}

// NewManagerWithBackend 直接注入後端，測試用
func NewManagerWithBackend(backend Backend, ttl time.Duration) *Manager {
	return &Manager{backend: backend, ttl: ttl}
}

// Key 產生 (來源, 正規化搜尋詞) 的快取鍵
// 搜尋詞一律小寫去空白，等價查詢不會產生重複條目
func Key(source common.Source, term string) string {
	return fmt.Sprintf("products:%s:%s", source, strings.ToLower(strings.TrimSpace(term)))
}

// Get 查詢某 (來源, 搜尋詞) 的快取商品清單
// 任何失敗都當作未命中
func (m *Manager) Get(ctx context.Context, source common.Source, term string) ([]common.Product, bool) {
	if m == nil || m.backend == nil {
		return nil, false
	}

	key := Key(source, term)
	data, err := m.backend.Get(ctx, key)
	if err != nil {
		common.LogCacheMiss("products", key)
		return nil, false
	}

	var products []common.Product
	if err := json.Unmarshal(data, &products); err != nil {
		common.LogWarn("快取條目解析失敗，視為未命中",
			zap.String("鍵", key),
			zap.Error(err),
		)
		return nil, false
	}

	common.LogCacheHit("products", key)
	return products, true
}

// Put 寫入某 (來源, 搜尋詞) 的商品清單，失敗靜默丟棄
func (m *Manager) Put(ctx context.Context, source common.Source, term string, products []common.Product) {
	if m == nil || m.backend == nil {
		return
	}

	data, err := json.Marshal(products)
	if err != nil {
		return
	}

	key := Key(source, term)
	if err := m.backend.Set(ctx, key, data, m.ttl); err != nil {
		common.LogDebug("快取寫入失敗",
			zap.String("鍵", key),
			zap.Error(err),
		)
	}
}

// Available 後端是否可用（/ready 回報用）
func (m *Manager) Available() bool {
	return m != nil && m.backend != nil
}

// Close 關閉快取管理器
func (m *Manager) Close() error {
	if m == nil || m.backend == nil {
		return nil
	}
	return m.backend.Close()
}
