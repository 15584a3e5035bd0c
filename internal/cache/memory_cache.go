package cache

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryCache 进程内的模型响应缓存
// 条目数达到上限后先清理过期项，仍然满时不再写入
type MemoryCache struct {
	items      *gocache.Cache
	maxEntries int
}

// NewMemoryCache 创建内存缓存
func NewMemoryCache(config Config) (Cache, error) {
	ttl := config.DefaultTTL
	if ttl == 0 {
		ttl = 24 * time.Hour
	}

	cleanup := config.CleanupInterval
	if cleanup == 0 {
		cleanup = 10 * time.Minute
	}

	return &MemoryCache{
		items:      gocache.New(ttl, cleanup),
		maxEntries: config.MaxEntries,
	}, nil
}

// Get 读取缓存的响应文本
func (m *MemoryCache) Get(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	value, found := m.items.Get(key)
	if !found {
		return "", false, nil
	}
	text, ok := value.(string)
	return text, ok, nil
}

// Set 写入响应文本，ttl 为0时使用默认过期时间
func (m *MemoryCache) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if ttl == 0 {
		ttl = gocache.DefaultExpiration
	}

	if m.maxEntries > 0 && m.items.ItemCount() >= m.maxEntries {
		if _, exists := m.items.Get(key); !exists {
			m.items.DeleteExpired()
			if m.items.ItemCount() >= m.maxEntries {
				return nil
			}
		}
	}

	m.items.Set(key, value, ttl)
	return nil
}

// Delete 删除缓存项
func (m *MemoryCache) Delete(ctx context.Context, key string) error {
	m.items.Delete(key)
	return nil
}

// Clear 清空所有缓存
func (m *MemoryCache) Clear(ctx context.Context) error {
	m.items.Flush()
	return nil
}

func init() {
	RegisterCache("memory", NewMemoryCache)
}
