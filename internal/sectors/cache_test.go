package sectors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheMissOnEmpty(t *testing.T) {
	c := NewCache(4)
	_, ok := c.Get(0)
	assert.False(t, ok)
}

func TestCachePutGetRoundTrip(t *testing.T) {
	c := NewCache(4)
	c.Put(7, []byte{1, 2, 3, 4})

	out, ok := c.Get(7)
	require.True(t, ok)
	assert.Equal(t, []byte{1, 2, 3, 4}, out)
}

func TestCacheGetReturnsCopyNotAlias(t *testing.T) {
	c := NewCache(4)
	c.Put(1, []byte{9, 9, 9})

	out, ok := c.Get(1)
	require.True(t, ok)
	out[0] = 0xFF

	again, ok := c.Get(1)
	require.True(t, ok)
	assert.Equal(t, byte(9), again[0], "mutating a Get result must not corrupt the cache")
}

func TestCacheEvictsLeastRecentlyUsed(t *testing.T) {
	c := NewCache(2)
	c.Put(1, []byte{1})
	c.Put(2, []byte{2})
	c.Put(3, []byte{3}) // evicts sector 1, the least recently used

	_, ok := c.Get(1)
	assert.False(t, ok, "sector 1 should have been evicted")

	_, ok = c.Get(2)
	assert.True(t, ok)
	_, ok = c.Get(3)
	assert.True(t, ok)
}

func TestCacheGetRefreshesRecency(t *testing.T) {
	c := NewCache(2)
	c.Put(1, []byte{1})
	c.Put(2, []byte{2})

	// touching sector 1 makes sector 2 the least recently used
	_, _ = c.Get(1)
	c.Put(3, []byte{3})

	_, ok := c.Get(2)
	assert.False(t, ok, "sector 2 should have been evicted after sector 1 was refreshed")
	_, ok = c.Get(1)
	assert.True(t, ok)
	_, ok = c.Get(3)
	assert.True(t, ok)
}

func TestCachePutOverwritesExisting(t *testing.T) {
	c := NewCache(4)
	c.Put(1, []byte{1, 1, 1})
	c.Put(1, []byte{2, 2, 2})

	out, ok := c.Get(1)
	require.True(t, ok)
	assert.Equal(t, []byte{2, 2, 2}, out)
}

func TestCacheZeroOrNegativeCapacityDefaultsToOne(t *testing.T) {
	c := NewCache(0)
	c.Put(1, []byte{1})
	c.Put(2, []byte{2})

	_, ok := c.Get(1)
	assert.False(t, ok)
	_, ok = c.Get(2)
	assert.True(t, ok)
}

func TestCacheCloseDropsEntriesAndIgnoresFurtherPuts(t *testing.T) {
	c := NewCache(4)
	c.Put(1, []byte{1, 2, 3})

	require.NoError(t, c.Close())

	_, ok := c.Get(1)
	assert.False(t, ok)

	c.Put(2, []byte{4, 5, 6})
	_, ok = c.Get(2)
	assert.False(t, ok, "Put after Close must be a no-op")
}
