package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"rentdesk/internal/models"
)

type memoryEntry struct {
	result    *models.AvailabilityResult
	expiresAt time.Time
}

// MemoryAvailabilityCache mirrors the redis cache in-process: the same
// per-item version counters, with TTL enforced on read.
type MemoryAvailabilityCache struct {
	mu       sync.RWMutex
	versions map[string]int64
	entries  map[string]memoryEntry
}

func NewMemoryAvailabilityCache() *MemoryAvailabilityCache {
	return &MemoryAvailabilityCache{
		versions: make(map[string]int64),
		entries:  make(map[string]memoryEntry),
	}
}

func (m *MemoryAvailabilityCache) entryKey(key models.AvailabilityKey) string {
	version := m.versions[versionKey(key.ShopID, key.ItemID)]
	return fmt.Sprintf("%d:%s", version, key.String())
}

func (m *MemoryAvailabilityCache) Get(ctx context.Context, key models.AvailabilityKey) (*models.AvailabilityResult, error) {
	m.mu.RLock()
	entry, ok := m.entries[m.entryKey(key)]
	m.mu.RUnlock()

	if !ok || time.Now().After(entry.expiresAt) {
		return nil, nil
	}
	return entry.result, nil
}

func (m *MemoryAvailabilityCache) Set(ctx context.Context, key models.AvailabilityKey, result *models.AvailabilityResult, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[m.entryKey(key)] = memoryEntry{result: result, expiresAt: time.Now().Add(ttl)}
	return nil
}

func (m *MemoryAvailabilityCache) Invalidate(ctx context.Context, shopID string, itemID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.versions[versionKey(shopID, itemID)]++
	// Entries under the old version are unreachable; drop expired ones so the
	// map does not grow without bound.
	now := time.Now()
	for k, entry := range m.entries {
		if now.After(entry.expiresAt) {
			delete(m.entries, k)
		}
	}
	return nil
}
