package authkeys

import "sync"

// RoleCache is a bounded key-to-role cache. Only successful lookups are
// stored; failed lookups are never cached, so flooding the server with
// bogus keys cannot grow the cache. When full, the oldest entry is
// evicted.
type RoleCache struct {
	mu    sync.Mutex
	max   int
	roles map[string]string
	order []string
}

// NewRoleCache creates a cache holding at most max entries.
func NewRoleCache(max int) *RoleCache {
	if max < 1 {
		max = 1
	}
	return &RoleCache{
		max:   max,
		roles: make(map[string]string, max),
	}
}

// Get returns the cached role for key.
func (c *RoleCache) Get(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	role, ok := c.roles[key]
	return role, ok
}

// Put caches a successful lookup, evicting the oldest entry when full.
func (c *RoleCache) Put(key, role string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.roles[key]; exists {
		c.roles[key] = role
		return
	}

	for len(c.roles) >= c.max && len(c.order) > 0 {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.roles, oldest)
	}

	c.roles[key] = role
	c.order = append(c.order, key)
}

// Invalidate drops a single entry. Called when a key is updated or
// deleted so a stale role is never served.
func (c *RoleCache) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.roles[key]; !ok {
		return
	}
	delete(c.roles, key)
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}

// Len returns the number of cached entries.
func (c *RoleCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.roles)
}
