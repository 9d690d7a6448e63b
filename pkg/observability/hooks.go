// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends. Consumers register hooks at startup
// to receive events about routine composition, cache operations, and HTTP
// requests served.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// Two implementations ship here: [LogHooks] writes every event to a
// charmbracelet logger at debug level, and [MetricsHooks] records them as
// Prometheus metrics. [Fanout] combines several.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetPipelineHooks(observability.NewLogHooks(logger))
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Pipeline().OnComposeStart(ctx, teamSize, sections)
//	// ... compose ...
//	observability.Pipeline().OnComposeComplete(ctx, difficulty, duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Pipeline Hooks
// =============================================================================

// PipelineHooks receives events from the routine pipeline.
type PipelineHooks interface {
	// Compose events
	OnComposeStart(ctx context.Context, teamSize, sections int)
	OnComposeComplete(ctx context.Context, difficulty int, duration time.Duration, err error)

	// Render events
	OnRenderStart(ctx context.Context, format string)
	OnRenderComplete(ctx context.Context, format string, size int, duration time.Duration, err error)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, keyType string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, keyType string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// HTTP Hooks
// =============================================================================

// HTTPHooks receives events from the HTTP server.
type HTTPHooks interface {
	// OnRequest records an incoming request.
	OnRequest(ctx context.Context, method, route string)

	// OnResponse records the response written for a request.
	OnResponse(ctx context.Context, method, route string, statusCode int, duration time.Duration)
}

// Hooks implements every hook category.
type Hooks interface {
	PipelineHooks
	CacheHooks
	HTTPHooks
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopPipelineHooks is a no-op implementation of PipelineHooks.
type NoopPipelineHooks struct{}

func (NoopPipelineHooks) OnComposeStart(context.Context, int, int)                            {}
func (NoopPipelineHooks) OnComposeComplete(context.Context, int, time.Duration, error)        {}
func (NoopPipelineHooks) OnRenderStart(context.Context, string)                               {}
func (NoopPipelineHooks) OnRenderComplete(context.Context, string, int, time.Duration, error) {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopHTTPHooks is a no-op implementation of HTTPHooks.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, int, time.Duration) {}

// =============================================================================
// Fanout
// =============================================================================

// Fanout forwards every event to each of its hooks in order.
type Fanout []Hooks

func (f Fanout) OnComposeStart(ctx context.Context, teamSize, sections int) {
	for _, h := range f {
		h.OnComposeStart(ctx, teamSize, sections)
	}
}

func (f Fanout) OnComposeComplete(ctx context.Context, difficulty int, d time.Duration, err error) {
	for _, h := range f {
		h.OnComposeComplete(ctx, difficulty, d, err)
	}
}

func (f Fanout) OnRenderStart(ctx context.Context, format string) {
	for _, h := range f {
		h.OnRenderStart(ctx, format)
	}
}

func (f Fanout) OnRenderComplete(ctx context.Context, format string, size int, d time.Duration, err error) {
	for _, h := range f {
		h.OnRenderComplete(ctx, format, size, d, err)
	}
}

func (f Fanout) OnCacheHit(ctx context.Context, keyType string) {
	for _, h := range f {
		h.OnCacheHit(ctx, keyType)
	}
}

func (f Fanout) OnCacheMiss(ctx context.Context, keyType string) {
	for _, h := range f {
		h.OnCacheMiss(ctx, keyType)
	}
}

func (f Fanout) OnCacheSet(ctx context.Context, keyType string, size int) {
	for _, h := range f {
		h.OnCacheSet(ctx, keyType, size)
	}
}

func (f Fanout) OnRequest(ctx context.Context, method, route string) {
	for _, h := range f {
		h.OnRequest(ctx, method, route)
	}
}

func (f Fanout) OnResponse(ctx context.Context, method, route string, status int, d time.Duration) {
	for _, h := range f {
		h.OnResponse(ctx, method, route, status, d)
	}
}

// =============================================================================
// Global Hook Registry
// =============================================================================

// Register installs h for every hook category.
func Register(h Hooks) {
	SetPipelineHooks(h)
	SetCacheHooks(h)
	SetHTTPHooks(h)
}

var (
	pipelineHooks PipelineHooks = NoopPipelineHooks{}
	cacheHooks    CacheHooks    = NoopCacheHooks{}
	httpHooks     HTTPHooks     = NoopHTTPHooks{}
	hooksMu       sync.RWMutex
)

// SetPipelineHooks registers custom pipeline hooks.
// This should be called once at application startup before any pipeline operations.
func SetPipelineHooks(h PipelineHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		pipelineHooks = h
	}
}

// SetCacheHooks registers custom cache hooks.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// SetHTTPHooks registers custom HTTP hooks.
func SetHTTPHooks(h HTTPHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		httpHooks = h
	}
}

// Pipeline returns the registered pipeline hooks.
func Pipeline() PipelineHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return pipelineHooks
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

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	pipelineHooks = NoopPipelineHooks{}
	cacheHooks = NoopCacheHooks{}
	httpHooks = NoopHTTPHooks{}
}
