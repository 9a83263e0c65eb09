package utils

import (
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/patrickmn/go-cache"
)

// TTLCache 带默认过期时间的类型化缓存（go-cache），用于外部服务响应
type TTLCache[T any] struct {
	store *cache.Cache
	ttl   time.Duration
}

// NewTTLCache 创建缓存，清理间隔为 ttl 的两倍
func NewTTLCache[T any](ttl time.Duration) *TTLCache[T] {
	return &TTLCache[T]{
		store: cache.New(ttl, 2*ttl),
		ttl:   ttl,
	}
}

// Get 获取缓存值
func (c *TTLCache[T]) Get(key string) (T, bool) {
	var zero T
	v, ok := c.store.Get(key)
	if !ok {
		return zero, false
	}
	typed, ok := v.(T)
	if !ok {
		return zero, false
	}
	return typed, true
}

// Set 设置缓存值
func (c *TTLCache[T]) Set(key string, value T) {
	c.store.Set(key, value, c.ttl)
}

type lruItem[T any] struct {
	Value     T
	ExpiredAt time.Time
}

// SearchCache 固定容量的 LRU 缓存，条目带过期时间
type SearchCache[T any] struct {
	storage *lru.Cache[string, lruItem[T]]
	ttl     time.Duration
}

// NewSearchCache size 是最大缓存条数，ttl 是数据有效期
func NewSearchCache[T any](size int, ttl time.Duration) *SearchCache[T] {
	c, _ := lru.New[string, lruItem[T]](max(1, size))
	return &SearchCache[T]{
		storage: c,
		ttl:     ttl,
	}
}

// Set 写入或覆盖
func (c *SearchCache[T]) Set(key string, value T) {
	c.storage.Add(key, lruItem[T]{Value: value, ExpiredAt: time.Now().Add(c.ttl)})
}

// Get 读取，过期条目顺便删除
func (c *SearchCache[T]) Get(key string) (T, bool) {
	var zero T
	item, ok := c.storage.Get(key)
	if !ok {
		return zero, false
	}
	if time.Now().After(item.ExpiredAt) {
		c.storage.Remove(key)
		return zero, false
	}
	return item.Value, true
}

