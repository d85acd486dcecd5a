package authkeys

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoleCachePutGet(t *testing.T) {
	cache := NewRoleCache(4)

	cache.Put("k1", RoleAdmin)
	role, ok := cache.Get("k1")
	assert.True(t, ok)
	assert.Equal(t, RoleAdmin, role)

	_, ok = cache.Get("unknown")
	assert.False(t, ok)
}

func TestRoleCacheBounded(t *testing.T) {
	cache := NewRoleCache(3)

	for i := 0; i < 10; i++ {
		cache.Put(fmt.Sprintf("k%d", i), RoleGeneral)
	}
	assert.Equal(t, 3, cache.Len())

	// Newest entries survive, oldest are gone.
	_, ok := cache.Get("k9")
	assert.True(t, ok)
	_, ok = cache.Get("k0")
	assert.False(t, ok)
}

func TestRoleCacheUpdateExisting(t *testing.T) {
	cache := NewRoleCache(2)

	cache.Put("k1", RoleGeneral)
	cache.Put("k1", RoleAdmin)
	assert.Equal(t, 1, cache.Len())

	role, _ := cache.Get("k1")
	assert.Equal(t, RoleAdmin, role)
}

func TestRoleCacheInvalidate(t *testing.T) {
	cache := NewRoleCache(4)

	cache.Put("k1", RoleAdmin)
	cache.Put("k2", RoleGeneral)
	cache.Invalidate("k1")

	_, ok := cache.Get("k1")
	assert.False(t, ok)
	assert.Equal(t, 1, cache.Len())

	// Invalidating an absent key is a no-op.
	cache.Invalidate("never-cached")
	assert.Equal(t, 1, cache.Len())
}

func TestRoleCacheConcurrentAccess(t *testing.T) {
	cache := NewRoleCache(16)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				key := fmt.Sprintf("k%d-%d", n, j%4)
				cache.Put(key, RoleGeneral)
				cache.Get(key)
				if j%10 == 0 {
					cache.Invalidate(key)
				}
			}
		}(i)
	}
	wg.Wait()

	assert.LessOrEqual(t, cache.Len(), 16)
}
