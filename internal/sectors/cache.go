package sectors

import (
	"container/list"
	"sync"
)

// lruEntry is a single cached, decrypted sector with LRU metadata,
// following the teacher's lruNode/lruBlock shape
// (internal/services/object_map_btree_cache.go).
type lruEntry struct {
	sectorIndex uint64
	plaintext   []byte
	element     *list.Element
}

// Cache is a fixed-capacity, sector-granular LRU cache of decrypted
// plaintext sectors, read/write-locked for concurrent readers (spec.md §7,
// §9). Unlike the teacher's two-level node/block cache, Cache holds a
// single kind of entry, but keeps the same PushFront/MoveToFront/evict-from-
// Back structure. Evicted and closed entries are zeroed before being
// dropped, since a decrypted sector is key material's closest relative on
// this read path (spec.md §9's "zeroization-on-evict" invariant, which the
// teacher's cache has no equivalent of since B-tree nodes carry no secrets).
type Cache struct {
	mu       sync.RWMutex
	capacity int
	entries  map[uint64]*lruEntry
	order    *list.List
	closed   bool
}

// NewCache builds a Cache holding at most capacity decrypted sectors.
func NewCache(capacity int) *Cache {
	if capacity <= 0 {
		capacity = 1
	}
	return &Cache{
		capacity: capacity,
		entries:  make(map[uint64]*lruEntry),
		order:    list.New(),
	}
}

// Get returns a copy of the cached plaintext for sectorIndex, or (nil,
// false) on a miss. The cache never hands out its internal buffer directly
// so a caller mutating the returned slice cannot corrupt the cache.
func (c *Cache) Get(sectorIndex uint64) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[sectorIndex]
	if !ok {
		return nil, false
	}
	c.order.MoveToFront(e.element)
	out := make([]byte, len(e.plaintext))
	copy(out, e.plaintext)
	return out, true
}

// Put stores a copy of plaintext for sectorIndex, evicting the least
// recently used entry if the cache is at capacity.
func (c *Cache) Put(sectorIndex uint64, plaintext []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	if existing, ok := c.entries[sectorIndex]; ok {
		zero(existing.plaintext)
		copy(existing.plaintext, plaintext)
		if len(plaintext) != len(existing.plaintext) {
			existing.plaintext = append([]byte(nil), plaintext...)
		}
		c.order.MoveToFront(existing.element)
		return
	}

	stored := make([]byte, len(plaintext))
	copy(stored, plaintext)
	element := c.order.PushFront(&lruEntry{sectorIndex: sectorIndex, plaintext: stored})
	c.entries[sectorIndex] = &lruEntry{sectorIndex: sectorIndex, plaintext: stored, element: element}

	for len(c.entries) > c.capacity && c.order.Len() > 0 {
		c.evictOldestLocked()
	}
}

func (c *Cache) evictOldestLocked() {
	back := c.order.Back()
	if back == nil {
		return
	}
	e := back.Value.(*lruEntry)
	zero(e.plaintext)
	delete(c.entries, e.sectorIndex)
	c.order.Remove(back)
}

// Close zeroes and drops every cached sector. The cache is unusable after
// Close; subsequent Put calls are no-ops.
func (c *Cache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, e := range c.entries {
		zero(e.plaintext)
	}
	c.entries = make(map[uint64]*lruEntry)
	c.order = list.New()
	c.closed = true
	return nil
}

func zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
