package cache

import (
	"context"

	"saleflow/internal/core/security"
)

// CacheBackedFlags implements security.FeatureFlagProvider using FlagCache.
// This provides type-safe, context-aware feature flag access with automatic
// invalidation via PostgreSQL NOTIFY.
type CacheBackedFlags struct {
	cache *FlagCache
}

// NewCacheBackedFlags creates a feature flag provider backed by the flag cache.
func NewCacheBackedFlags(cache *FlagCache) *CacheBackedFlags {
	return &CacheBackedFlags{cache: cache}
}

// IsEnabled checks if feature is enabled.
func (f *CacheBackedFlags) IsEnabled(ctx context.Context, flag string) bool {
	return f.cache.IsFeatureEnabled(flag)
}

// GetVariant returns variant name for A/B tests.
func (f *CacheBackedFlags) GetVariant(ctx context.Context, flag string) string {
	return f.cache.GetFeatureVariant(flag)
}

// GetValue returns typed value for feature configuration.
func (f *CacheBackedFlags) GetValue(ctx context.Context, flag string) any {
	// Return a copy of config to avoid external mutation of cache state.
	return f.cache.GetFeatureConfig(flag)
}

var _ security.FeatureFlagProvider = (*CacheBackedFlags)(nil)
