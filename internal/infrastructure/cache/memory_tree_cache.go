package cache

import (
	"context"
	"sync"
	"time"

	appcatalog "github.com/erp/catalog/internal/application/catalog"
	"github.com/google/uuid"
)

// treeEntry represents a stored payload with expiration
type treeEntry struct {
	payload   []byte
	expiresAt time.Time
}

// InMemoryTreeCache implements TreeCache using an in-memory map
// This is suitable for single-instance deployments and testing
type InMemoryTreeCache struct {
	mu        sync.RWMutex
	tenants   map[uuid.UUID]map[string]treeEntry
	ttl       time.Duration
	stopChan  chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewInMemoryTreeCache creates a new in-memory tree cache
// It starts a background goroutine to clean up expired entries
func NewInMemoryTreeCache(ttl time.Duration) *InMemoryTreeCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	cache := &InMemoryTreeCache{
		tenants:  make(map[uuid.UUID]map[string]treeEntry),
		ttl:      ttl,
		stopChan: make(chan struct{}),
	}

	cache.wg.Add(1)
	go cache.cleanupLoop()

	return cache
}

// Get returns the cached payload for the key, if present and not expired
func (c *InMemoryTreeCache) Get(_ context.Context, tenantID uuid.UUID, key string) ([]byte, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entries, ok := c.tenants[tenantID]
	if !ok {
		return nil, false
	}
	e, ok := entries[key]
	if !ok || time.Now().After(e.expiresAt) {
		return nil, false
	}
	return e.payload, true
}

// Set stores the payload under the tenant and key
func (c *InMemoryTreeCache) Set(_ context.Context, tenantID uuid.UUID, key string, payload []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entries, ok := c.tenants[tenantID]
	if !ok {
		entries = make(map[string]treeEntry)
		c.tenants[tenantID] = entries
	}
	entries[key] = treeEntry{
		payload:   payload,
		expiresAt: time.Now().Add(c.ttl),
	}
}

// InvalidateTenant drops every cached tree of the tenant
func (c *InMemoryTreeCache) InvalidateTenant(_ context.Context, tenantID uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.tenants, tenantID)
}

// Close stops the cleanup goroutine and releases resources
// Safe to call multiple times
func (c *InMemoryTreeCache) Close() error {
	c.closeOnce.Do(func() {
		close(c.stopChan)
		c.wg.Wait()
	})
	return nil
}

// cleanupLoop periodically removes expired entries
func (c *InMemoryTreeCache) cleanupLoop() {
	defer c.wg.Done()

	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopChan:
			return
		case <-ticker.C:
			c.cleanup()
		}
	}
}

// cleanup removes expired entries from the cache
func (c *InMemoryTreeCache) cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	for tenantID, entries := range c.tenants {
		for key, e := range entries {
			if now.After(e.expiresAt) {
				delete(entries, key)
			}
		}
		if len(entries) == 0 {
			delete(c.tenants, tenantID)
		}
	}
}

// Size returns the number of cached entries (for testing/monitoring)
func (c *InMemoryTreeCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	total := 0
	for _, entries := range c.tenants {
		total += len(entries)
	}
	return total
}

// Ensure InMemoryTreeCache implements TreeCache
var _ appcatalog.TreeCache = (*InMemoryTreeCache)(nil)
