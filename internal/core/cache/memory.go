package cache

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/sync/singleflight"
)

// Memory is a bounded in-process TTL cache. Failed loads are not cached.
type Memory struct {
	lru *expirable.LRU[string, []byte]
	sf  singleflight.Group
}

func NewMemory(size int, ttl time.Duration) *Memory {
	if size <= 0 {
		size = 100
	}
	return &Memory{lru: expirable.NewLRU[string, []byte](size, nil, ttl)}
}

func (m *Memory) GetOrLoad(ctx context.Context, key string, load LoadFunc) ([]byte, error) {
	if b, ok := m.lru.Get(key); ok {
		return b, nil
	}
	v, err, _ := m.sf.Do(key, func() (any, error) {
		b, err := load(ctx)
		if err != nil {
			return nil, err
		}
		m.lru.Add(key, b)
		return b, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

func (m *Memory) Len() int { return m.lru.Len() }

func (m *Memory) Purge() { m.lru.Purge() }
