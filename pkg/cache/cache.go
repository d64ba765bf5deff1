// Package cache provides pluggable byte caches for placement and render
// artifacts.
//
// Three backends are included: a file cache for CLI usage, a Redis cache for
// server deployments, and a null cache that disables caching entirely. Keys
// are produced by a Keyer so every consumer derives them the same way: a
// placement is keyed by the netlist hash plus the search options that
// produced it, a rendered artifact by the placement hash plus the output
// options.
package cache

import (
	"context"
	"time"
)

// Default TTLs per artifact class. Placements are cheap to recompute for
// small circuits but expensive for large ones; rendered artifacts are always
// cheap to rebuild from a cached placement.
const (
	PlacementTTL = 7 * 24 * time.Hour
	ArtifactTTL  = 24 * time.Hour
)

// Cache is a byte-oriented cache with TTL support.
type Cache interface {
	// Get retrieves a value. The second return reports whether the key was
	// present; a miss is not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value. A non-positive ttl stores the value without
	// expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// PlacementKeyOpts are the search parameters that shape a placement result.
// Two runs with equal netlists and equal options produce equal placements,
// so they share a cache entry.
type PlacementKeyOpts struct {
	MaxIterations int
	MaxStagnation int
}

// ArtifactKeyOpts are the render parameters that shape an output artifact.
type ArtifactKeyOpts struct {
	Format string
	Scale  float64
}

// Keyer derives cache keys for the two cacheable stages.
type Keyer interface {
	// PlacementKey generates a key for placement caching.
	PlacementKey(netlistHash string, opts PlacementKeyOpts) string

	// ArtifactKey generates a key for rendered artifact caching.
	ArtifactKey(placementHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer is the standard key derivation.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

// PlacementKey generates a key for placement caching.
func (k *DefaultKeyer) PlacementKey(netlistHash string, opts PlacementKeyOpts) string {
	return hashKey("placement", netlistHash, opts)
}

// ArtifactKey generates a key for rendered artifact caching.
func (k *DefaultKeyer) ArtifactKey(placementHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", placementHash, opts)
}
