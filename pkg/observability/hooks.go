// Package observability provides hooks for metrics and tracing.
//
// The conversion packages emit events through hook interfaces instead of
// importing a metrics backend. The CLI registers a backend at startup (see
// package prom); when nothing is registered the no-op defaults are used.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetConversionHooks(&myConversionHooks{})
//	    observability.SetCacheHooks(&myCacheHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Conversion().OnConvertStart(ctx, projection)
//	// ... convert ...
//	observability.Conversion().OnConvertComplete(ctx, projection, duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Conversion Hooks
// =============================================================================

// Stats summarises the graph a conversion ran on.
type Stats struct {
	Nodes int
	Edges int
	Roots int
}

// ConversionHooks receives events from the conversion pipeline.
type ConversionHooks interface {
	// Parse events
	OnParseStart(ctx context.Context, source string)
	OnParseComplete(ctx context.Context, source string, stats Stats, duration time.Duration, err error)

	// Projection events
	OnConvertStart(ctx context.Context, projection string)
	OnConvertComplete(ctx context.Context, projection string, duration time.Duration, err error)
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
// No-op Implementations
// =============================================================================

// NoopConversionHooks is a no-op implementation of ConversionHooks.
type NoopConversionHooks struct{}

func (NoopConversionHooks) OnParseStart(context.Context, string) {}
func (NoopConversionHooks) OnParseComplete(context.Context, string, Stats, time.Duration, error) {
}
func (NoopConversionHooks) OnConvertStart(context.Context, string)                          {}
func (NoopConversionHooks) OnConvertComplete(context.Context, string, time.Duration, error) {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	conversionHooks ConversionHooks = NoopConversionHooks{}
	cacheHooks      CacheHooks      = NoopCacheHooks{}
	hooksMu         sync.RWMutex
)

// SetConversionHooks registers custom conversion hooks.
// This should be called once at application startup before any conversion.
func SetConversionHooks(h ConversionHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		conversionHooks = h
	}
}

// SetCacheHooks registers custom cache hooks.
// This should be called once at application startup before any cache operations.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// Conversion returns the registered conversion hooks.
func Conversion() ConversionHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return conversionHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	conversionHooks = NoopConversionHooks{}
	cacheHooks = NoopCacheHooks{}
}
