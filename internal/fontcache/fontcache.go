// Package fontcache memoizes parsed fonts by content digest. Decoding
// many pictures that embed the same font bytes parses the font once;
// every later table entry is a map lookup.
package fontcache

import "sync"

const (
	// shardCount spreads lock contention across independent shards.
	// Power of 2 so shard selection is a mask.
	shardCount = 16
	shardMask  = shardCount - 1

	// shardCapacity bounds entries per shard. Eviction is LRU.
	shardCapacity = 64
)

// Cache is a sharded LRU map from 32-byte content digests to parsed
// values. Safe for concurrent use. The zero Cache is not usable; call
// New.
type Cache[V any] struct {
	shards [shardCount]shard[V]
}

type shard[V any] struct {
	mu      sync.Mutex
	entries map[[32]byte]V
	order   [][32]byte
}

// New creates an empty cache.
func New[V any]() *Cache[V] {
	c := &Cache[V]{}
	for i := range c.shards {
		c.shards[i].entries = make(map[[32]byte]V, shardCapacity)
	}
	return c
}

// shardFor selects a shard from the digest's leading bytes; the digest
// is already uniformly distributed.
func (c *Cache[V]) shardFor(key [32]byte) *shard[V] {
	return &c.shards[key[0]&shardMask]
}

// Get returns the cached value for key, refreshing its recency.
func (c *Cache[V]) Get(key [32]byte) (V, bool) {
	s := c.shardFor(key)
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.entries[key]
	if ok {
		s.touch(key)
	}
	return v, ok
}

// Put stores the value for key, evicting the least recently used entry
// if the shard is full.
func (c *Cache[V]) Put(key [32]byte, v V) {
	s := c.shardFor(key)
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[key]; ok {
		s.entries[key] = v
		s.touch(key)
		return
	}
	if len(s.order) >= shardCapacity {
		oldest := s.order[0]
		s.order = s.order[1:]
		delete(s.entries, oldest)
	}
	s.entries[key] = v
	s.order = append(s.order, key)
}

// Len returns the total number of cached entries.
func (c *Cache[V]) Len() int {
	n := 0
	for i := range c.shards {
		s := &c.shards[i]
		s.mu.Lock()
		n += len(s.entries)
		s.mu.Unlock()
	}
	return n
}

// touch moves key to the most-recent end of the shard's order.
// Caller holds the shard lock.
func (s *shard[V]) touch(key [32]byte) {
	for i, k := range s.order {
		if k == key {
			copy(s.order[i:], s.order[i+1:])
			s.order[len(s.order)-1] = key
			return
		}
	}
}
