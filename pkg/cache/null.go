package cache

import (
	"context"
	"time"
)

// NullCache stores nothing. Every Get misses, so the pipeline always
// recomputes. It backs --no-cache and cache.backend = "none".
type NullCache struct{}

// NewNullCache returns a cache that disables caching.
func NewNullCache() Cache { return NullCache{} }

func (NullCache) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, nil
}

func (NullCache) Set(context.Context, string, []byte, time.Duration) error { return nil }

func (NullCache) Delete(context.Context, string) error { return nil }

func (NullCache) Close() error { return nil }

var _ Cache = NullCache{}
