// Package cache provides the fingerprint cache used by the screening
// pipeline: an interface keyed by structure key and fingerprint type, with
// an in-memory implementation for single runs and a Redis implementation
// for shared deployments.
package cache

import (
	"context"
	"sync"

	"github.com/turtacn/ChemSAR/internal/domain/molecule"
	"github.com/turtacn/ChemSAR/pkg/types/chem"
)

// FingerprintCache stores computed fingerprints keyed by structure key and
// fingerprint type.  Implementations must be safe for concurrent use.
type FingerprintCache interface {
	// Get returns the cached fingerprint and whether it was present.
	Get(ctx context.Context, structureKey string, fpType chem.FingerprintType) (*molecule.Fingerprint, bool, error)

	// Set stores a fingerprint.
	Set(ctx context.Context, structureKey string, fp *molecule.Fingerprint) error
}

// MemoryCache is a process-local FingerprintCache.
type MemoryCache struct {
	mu    sync.RWMutex
	items map[string]*molecule.Fingerprint
}

// NewMemoryCache returns an empty in-memory cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{items: make(map[string]*molecule.Fingerprint)}
}

func cacheKey(structureKey string, fpType chem.FingerprintType) string {
	return structureKey + "|" + string(fpType)
}

// Get implements FingerprintCache.
func (c *MemoryCache) Get(_ context.Context, structureKey string, fpType chem.FingerprintType) (*molecule.Fingerprint, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	fp, ok := c.items[cacheKey(structureKey, fpType)]
	return fp, ok, nil
}

// Set implements FingerprintCache.
func (c *MemoryCache) Set(_ context.Context, structureKey string, fp *molecule.Fingerprint) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[cacheKey(structureKey, fp.Type)] = fp
	return nil
}

// Len returns the number of cached entries.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}
