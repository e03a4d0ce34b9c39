// Package cache stores computed layouts and rendered artifacts.
//
// A [Cache] is a flat byte store with per-entry TTLs. [FileCache] keeps
// entries on disk for the CLI, [RedisCache] shares them between server
// instances and [NullCache] disables caching. Keys come from a [Keyer] so
// that callers never build them by hand.
package cache

import (
	"context"
	"time"
)

// Cache is a byte store keyed by strings.
//
// Get reports a miss with ok == false and a nil error; errors are reserved
// for backend failures. Implementations must be safe for concurrent use.
type Cache interface {
	Get(ctx context.Context, key string) (data []byte, ok bool, err error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Clearer is implemented by caches that can drop every entry they own.
type Clearer interface {
	Clear(ctx context.Context) error
}

// Entry lifetimes. Layouts depend only on the dataset content and options,
// so they can live long; histories loaded from live sources go stale.
const (
	TTLHistory  = 10 * time.Minute
	TTLLayout   = 7 * 24 * time.Hour
	TTLArtifact = 7 * 24 * time.Hour
)
