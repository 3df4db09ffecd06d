package cache

import (
	"context"
	"sync"
	"time"

	"github.com/rental/backoffice/internal/domain/catalog"
)

const cleanupInterval = 5 * time.Minute

type entry struct {
	equipment catalog.Equipment
	expiresAt time.Time
}

// InMemoryEquipmentCache implements catalog.EquipmentCache with a map.
// Suitable for single-instance deployments and tests.
type InMemoryEquipmentCache struct {
	mu        sync.RWMutex
	entries   map[int64]entry
	ttl       time.Duration
	now       func() time.Time
	stopChan  chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewInMemoryEquipmentCache creates the cache and starts a background
// goroutine that drops expired entries. Call Close to stop it.
func NewInMemoryEquipmentCache(ttl time.Duration) *InMemoryEquipmentCache {
	c := &InMemoryEquipmentCache{
		entries:  make(map[int64]entry),
		ttl:      ttl,
		now:      time.Now,
		stopChan: make(chan struct{}),
	}
	c.wg.Add(1)
	go c.cleanupLoop()
	return c
}

// Get returns a copy of the cached equipment, or nil, nil on a miss
func (c *InMemoryEquipmentCache) Get(_ context.Context, id int64) (*catalog.Equipment, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[id]
	if !ok || c.now().After(e.expiresAt) {
		return nil, nil
	}
	eq := e.equipment
	return &eq, nil
}

// Set stores a copy of eq
func (c *InMemoryEquipmentCache) Set(_ context.Context, eq *catalog.Equipment) error {
	if eq == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[eq.ID] = entry{equipment: *eq, expiresAt: c.now().Add(c.ttl)}
	return nil
}

// Delete evicts one entry
func (c *InMemoryEquipmentCache) Delete(_ context.Context, id int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, id)
	return nil
}

// Close stops the cleanup goroutine. Safe to call multiple times.
func (c *InMemoryEquipmentCache) Close() error {
	c.closeOnce.Do(func() {
		close(c.stopChan)
		c.wg.Wait()
	})
	return nil
}

func (c *InMemoryEquipmentCache) cleanupLoop() {
	defer c.wg.Done()

	ticker := time.NewTicker(cleanupInterval)
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

func (c *InMemoryEquipmentCache) cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for id, e := range c.entries {
		if now.After(e.expiresAt) {
			delete(c.entries, id)
		}
	}
}

// Size returns the number of entries, expired ones included
func (c *InMemoryEquipmentCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

var _ catalog.EquipmentCache = (*InMemoryEquipmentCache)(nil)
