// Package cache provides byte-level caching with pluggable backends. The
// server uses it to memoize expensive graph queries (cycle enumeration,
// merge-order computation) keyed by the graph's content hash, so a repeated
// query against an unchanged graph never recomputes.
package cache

import (
	"context"
	"time"
)

// Cache is the backend interface. Get reports a miss with a false second
// return, not an error; errors are reserved for backend failures.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// QueryKey builds the cache key for a graph query result. The graph hash
// covers the full serialized graph, so any mutation invalidates every cached
// query implicitly; op and params distinguish queries against the same graph.
func QueryKey(graphHash, op string, params ...any) string {
	return hashKey("query:"+op+":"+graphHash, params...)
}
