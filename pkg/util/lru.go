package util

import (
	"container/list"
	"fmt"
	"sync"
	"time"
)

// entry 结构体用于存储链表节点中的实际数据。
type entry[K comparable, V any] struct {
	key        K
	value      V
	expiration time.Time // 元素的过期时间，零值表示永不过期
}

// LRUCache 是一个支持泛型、带 TTL 且线程安全的 LRU 缓存。
// 记忆管线用它缓存用户的认知状态评分，避免每次写入都查询画像库。
type LRUCache[K comparable, V any] struct {
	capacity int
	ttl      time.Duration
	ll       *list.List
	cache    map[K]*list.Element
	lock     sync.Mutex
}

// NewLRU 创建一个 LRU 缓存实例。capacity 必须大于 0；ttl 为 0 表示永不过期。
func NewLRU[K comparable, V any](capacity int, ttl time.Duration) (*LRUCache[K, V], error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("capacity 必须大于 0")
	}
	return &LRUCache[K, V]{
		capacity: capacity,
		ttl:      ttl,
		ll:       list.New(),
		cache:    make(map[K]*list.Element),
	}, nil
}

// Get 根据键获取一个值。过期的元素会被删除并视为未命中。
func (c *LRUCache[K, V]) Get(key K) (V, bool) {
	c.lock.Lock()
	defer c.lock.Unlock()

	var zero V
	element, ok := c.cache[key]
	if !ok {
		return zero, false
	}

	ent := element.Value.(*entry[K, V])
	if !ent.expiration.IsZero() && time.Now().After(ent.expiration) {
		c.removeElement(element)
		return zero, false
	}

	c.ll.MoveToFront(element)
	return ent.value, true
}

// Set 写入或更新一个键值对，并在超出容量时淘汰最久未使用的元素。
func (c *LRUCache[K, V]) Set(key K, value V) {
	c.lock.Lock()
	defer c.lock.Unlock()

	var expiration time.Time
	if c.ttl > 0 {
		expiration = time.Now().Add(c.ttl)
	}

	if element, ok := c.cache[key]; ok {
		ent := element.Value.(*entry[K, V])
		ent.value = value
		ent.expiration = expiration
		c.ll.MoveToFront(element)
		return
	}

	element := c.ll.PushFront(&entry[K, V]{key: key, value: value, expiration: expiration})
	c.cache[key] = element

	if c.ll.Len() > c.capacity {
		if oldest := c.ll.Back(); oldest != nil {
			c.removeElement(oldest)
		}
	}
}

// Remove 删除一个键。
func (c *LRUCache[K, V]) Remove(key K) {
	c.lock.Lock()
	defer c.lock.Unlock()

	if element, ok := c.cache[key]; ok {
		c.removeElement(element)
	}
}

// Len 返回当前缓存的元素数量。
func (c *LRUCache[K, V]) Len() int {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.ll.Len()
}

func (c *LRUCache[K, V]) removeElement(element *list.Element) {
	c.ll.Remove(element)
	delete(c.cache, element.Value.(*entry[K, V]).key)
}
