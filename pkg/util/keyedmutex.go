package util

import "sync"

// KeyedMutex 提供按键互斥：不同键的持有者互不阻塞，同一键串行。
// 记忆管线用它实现按用户的写锁，使“读取现有事实 → 去重 → 写入”对同一
// 用户串行执行，而不同用户完全并行。
type KeyedMutex struct {
	mu      sync.Mutex
	entries map[string]*keyedEntry
}

type keyedEntry struct {
	mu   sync.Mutex
	refs int
}

// NewKeyedMutex 创建一个 KeyedMutex。
func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{entries: make(map[string]*keyedEntry)}
}

// Lock 获取指定键的锁，必要时阻塞等待。
func (k *KeyedMutex) Lock(key string) {
	k.mu.Lock()
	ent, ok := k.entries[key]
	if !ok {
		ent = &keyedEntry{}
		k.entries[key] = ent
	}
	ent.refs++
	k.mu.Unlock()

	ent.mu.Lock()
}

// Unlock 释放指定键的锁。当没有等待者时，对应的条目会被回收，
// 因此长期运行不会因用户数增长而泄漏内存。
func (k *KeyedMutex) Unlock(key string) {
	k.mu.Lock()
	ent, ok := k.entries[key]
	if !ok {
		k.mu.Unlock()
		panic("util: Unlock of unlocked KeyedMutex key " + key)
	}
	ent.refs--
	if ent.refs == 0 {
		delete(k.entries, key)
	}
	k.mu.Unlock()

	ent.mu.Unlock()
}
