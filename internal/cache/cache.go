// Package cache holds in-memory caches placed in front of the bbolt stores.
package cache

// Cache is a bounded key/value cache. Implementations are safe for
// concurrent use.
type Cache[K comparable, V any] interface {
	Get(key K) (V, bool)
	Add(key K, value V)
	Keys() []K
	Delete(key K)
	Len() int
}
