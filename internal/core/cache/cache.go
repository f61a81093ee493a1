// Package cache memoizes slow remote lookups (release tags, commit hashes)
// behind a shared key space. Concurrent misses on one key trigger a single
// load.
package cache

import "context"

type LoadFunc func(ctx context.Context) ([]byte, error)

// Store is implemented by Memory and Redis.
type Store interface {
	GetOrLoad(ctx context.Context, key string, load LoadFunc) ([]byte, error)
}
