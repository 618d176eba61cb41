package cache

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru"
)

// NewARC returns an adaptive replacement cache holding at most size entries.
func NewARC[K comparable, V any](size int) (*ARC[K, V], error) {
	c, err := lru.NewARC(size)
	if err != nil {
		return nil, fmt.Errorf("new arc cache: %w", err)
	}

	return &ARC[K, V]{cache: c}, nil
}

var _ Cache[string, int] = (*ARC[string, int])(nil)

type ARC[K comparable, V any] struct {
	cache *lru.ARCCache
}

func (c *ARC[K, V]) Get(key K) (V, bool) {
	v, ok := c.cache.Get(key)
	if !ok {
		var zero V
		return zero, false
	}
	return v.(V), true
}

func (c *ARC[K, V]) Add(key K, value V) {
	c.cache.Add(key, value)
}

func (c *ARC[K, V]) Keys() []K {
	raw := c.cache.Keys()
	keys := make([]K, 0, len(raw))
	for _, k := range raw {
		keys = append(keys, k.(K))
	}
	return keys
}

func (c *ARC[K, V]) Delete(key K) {
	c.cache.Remove(key)
}

func (c *ARC[K, V]) Len() int {
	return c.cache.Len()
}
