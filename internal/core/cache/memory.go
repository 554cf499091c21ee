package cache

import (
	"context"
	"sync"
	"time"

	"pantryip/internal/pkg/common"
)

// memoryBackend 行程內快取後端
// 沒有 Redis 的環境（本機開發、測試）用這個，語意與 Redis 後端一致
type memoryBackend struct {
	mu      sync.RWMutex
	store   map[string]memoryEntry
	maxSize int
	done    chan struct{}
	once    sync.Once
}

// memoryEntry 快取條目
type memoryEntry struct {
	value      []byte
	expiresAt  time.Time
	lastAccess time.Time
}

// newMemoryBackend 建立記憶體後端並啟動清理協程
func newMemoryBackend(maxSize int, cleanupInterval time.Duration) Backend {
	if maxSize <= 0 {
		maxSize = 1000
	}
	b := &memoryBackend{
		store:   make(map[string]memoryEntry),
		maxSize: maxSize,
		done:    make(chan struct{}),
	}
	if cleanupInterval > 0 {
		go b.startCleanup(cleanupInterval)
	}
	return b
}

// Get 獲取快取值，過期視為未命中
func (b *memoryBackend) Get(ctx context.Context, key string) ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	entry, exists := b.store[key]
	if !exists {
		return nil, common.ErrCacheMiss
	}
	if time.Now().After(entry.expiresAt) {
		delete(b.store, key)
		return nil, common.ErrCacheMiss
	}

	entry.lastAccess = time.Now()
	b.store[key] = entry
	return entry.value, nil
}

// Set 設置快取值
// 容量滿時先清過期條目，仍滿則淘汰最久未使用的一筆
func (b *memoryBackend) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.store) >= b.maxSize {
		b.cleanupLocked()
		if len(b.store) >= b.maxSize {
			b.evictLRULocked()
		}
	}

	now := time.Now()
	b.store[key] = memoryEntry{
		value:      value,
		expiresAt:  now.Add(ttl),
		lastAccess: now,
	}
	return nil
}

// startCleanup 啟動清理過期快取的協程
func (b *memoryBackend) startCleanup(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			b.mu.Lock()
			b.cleanupLocked()
			b.mu.Unlock()
		case <-b.done:
			return
		}
	}
}

// cleanupLocked 清理過期條目，呼叫端需持鎖
func (b *memoryBackend) cleanupLocked() {
	now := time.Now()
	for key, entry := range b.store {
		if now.After(entry.expiresAt) {
			delete(b.store, key)
		}
	}
}

// evictLRULocked 淘汰最久未使用的條目，呼叫端需持鎖
func (b *memoryBackend) evictLRULocked() {
	var oldestKey string
	var oldestAccess time.Time
	for key, entry := range b.store {
		if oldestKey == "" || entry.lastAccess.Before(oldestAccess) {
			oldestKey = key
			oldestAccess = entry.lastAccess
		}
	}
	if oldestKey != "" {
		delete(b.store, oldestKey)
	}
}

// Close 關閉後端
func (b *memoryBackend) Close() error {
	b.once.Do(func() { close(b.done) })
	b.mu.Lock()
	b.store = make(map[string]memoryEntry)
	b.mu.Unlock()
	return nil
}
