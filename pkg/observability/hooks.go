// Package observability provides hooks for metrics and tracing without
// binding the libraries to a specific backend. The no-op defaults keep call
// sites unconditional; main registers real implementations at startup:
//
//	observability.SetQueryHooks(&prometheusQueryHooks{})
//
// Libraries emit events through the registry:
//
//	observability.Query().OnQueryStart(ctx, "cycles", g.Len())
package observability

import (
	"context"
	"sync"
	"time"
)

// QueryHooks receives events from graph query execution (cycle enumeration,
// merge-order computation, traversals).
type QueryHooks interface {
	OnQueryStart(ctx context.Context, op string, nodeCount int)
	OnQueryComplete(ctx context.Context, op string, nodeCount int, duration time.Duration, err error)
}

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	OnCacheHit(ctx context.Context, keyType string)
	OnCacheMiss(ctx context.Context, keyType string)
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// HTTPHooks receives events from the HTTP server.
type HTTPHooks interface {
	OnRequest(ctx context.Context, method, path string)
	OnResponse(ctx context.Context, method, path string, statusCode int, duration time.Duration)
}

// NoopQueryHooks is a no-op implementation of QueryHooks.
type NoopQueryHooks struct{}

func (NoopQueryHooks) OnQueryStart(context.Context, string, int)                              {}
func (NoopQueryHooks) OnQueryComplete(context.Context, string, int, time.Duration, error)     {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopHTTPHooks is a no-op implementation of HTTPHooks.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string)                              {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, int, time.Duration)         {}

var (
	queryHooks QueryHooks = NoopQueryHooks{}
	cacheHooks CacheHooks = NoopCacheHooks{}
	httpHooks  HTTPHooks  = NoopHTTPHooks{}
	hooksMu    sync.RWMutex
)

// SetQueryHooks registers custom query hooks. Call once at startup.
func SetQueryHooks(h QueryHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		queryHooks = h
	}
}

// SetCacheHooks registers custom cache hooks. Call once at startup.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// SetHTTPHooks registers custom HTTP hooks. Call once at startup.
func SetHTTPHooks(h HTTPHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		httpHooks = h
	}
}

// Query returns the registered query hooks.
func Query() QueryHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return queryHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// HTTP returns the registered HTTP hooks.
func HTTP() HTTPHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return httpHooks
}

// Reset restores the no-op defaults. Primarily for tests.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	queryHooks = NoopQueryHooks{}
	cacheHooks = NoopCacheHooks{}
	httpHooks = NoopHTTPHooks{}
}
