// Package cache provides caching infrastructure with PostgreSQL LISTEN/NOTIFY support.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"saleflow/pkg/logger"
)

// FlagCache provides thread-safe caching of feature flags with automatic
// invalidation via PostgreSQL LISTEN/NOTIFY. This eliminates TTL-based
// polling and provides near-realtime flag updates.
type FlagCache struct {
	pool  *pgxpool.Pool
	mu    sync.RWMutex
	flags map[string]FeatureFlag

	// Listeners for cache invalidation
	listeners   []InvalidationListener
	listenersMu sync.RWMutex

	// Lifecycle
	lifecycleMu sync.Mutex
	ctx         context.Context
	cancel      context.CancelFunc
	wg          sync.WaitGroup
	started     bool
}

// FeatureFlag represents a feature flag.
type FeatureFlag struct {
	ID          string
	FlagName    string
	Description string
	IsEnabled   bool
	Variant     string
	Config      map[string]any
	ValidFrom   *time.Time
	ValidUntil  *time.Time
}

// InvalidationListener is called when cache is invalidated.
type InvalidationListener func(channel string, payload string)

// NewFlagCache creates a new feature flag cache.
func NewFlagCache(pool *pgxpool.Pool) *FlagCache {
	return &FlagCache{
		pool:  pool,
		flags: make(map[string]FeatureFlag),
	}
}

// Start begins listening for NOTIFY events and loads initial data.
func (c *FlagCache) Start(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	c.lifecycleMu.Lock()
	if c.started {
		c.lifecycleMu.Unlock()
		return nil
	}
	c.ctx, c.cancel = context.WithCancel(ctx)
	c.started = true
	c.lifecycleMu.Unlock()

	if err := c.loadFlags(c.ctx); err != nil {
		c.Stop()
		return fmt.Errorf("load feature flags: %w", err)
	}

	c.wg.Add(1)
	go c.listenLoop()
	logger.Info(c.ctx, "feature flag cache started")
	return nil
}

// Stop gracefully stops the cache listener.
func (c *FlagCache) Stop() {
	c.lifecycleMu.Lock()
	if !c.started {
		c.lifecycleMu.Unlock()
		return
	}
	cancel := c.cancel
	c.started = false
	c.cancel = nil
	c.lifecycleMu.Unlock()

	if cancel != nil {
		cancel()
	}
	c.wg.Wait()
	logger.Info(context.Background(), "feature flag cache stopped")
}

// listenLoop listens for PostgreSQL NOTIFY events.
func (c *FlagCache) listenLoop() {
	defer c.wg.Done()

	for {
		select {
		case <-c.ctx.Done():
			return
		default:
		}

		// Acquire dedicated connection for LISTEN
		conn, err := c.pool.Acquire(c.ctx)
		if err != nil {
			logger.Error(c.ctx, "failed to acquire connection for LISTEN", "error", err)
			time.Sleep(time.Second)
			continue
		}

		_, err = conn.Exec(c.ctx, "LISTEN feature_flags_changed;")
		if err != nil {
			logger.Error(c.ctx, "failed to LISTEN", "error", err)
			conn.Release()
			time.Sleep(time.Second)
			continue
		}

		logger.Info(c.ctx, "listening for feature_flags_changed notifications")

		c.waitForNotifications(conn)
		conn.Release()
	}
}

// waitForNotifications blocks waiting for NOTIFY events.
func (c *FlagCache) waitForNotifications(conn *pgxpool.Conn) {
	for {
		select {
		case <-c.ctx.Done():
			return
		default:
		}

		// Wait for notification with timeout for graceful shutdown
		ctx, cancel := context.WithTimeout(c.ctx, 30*time.Second)
		notification, err := conn.Conn().WaitForNotification(ctx)
		cancel()

		if err != nil {
			if c.ctx.Err() != nil {
				return // Shutting down
			}
			// Timeout is expected, continue listening
			continue
		}

		logger.Debug(c.ctx, "received notification",
			"channel", notification.Channel,
			"payload", notification.Payload)

		c.handleNotification(notification.Channel, notification.Payload)
	}
}

// handleNotification processes NOTIFY event.
func (c *FlagCache) handleNotification(channel, payload string) {
	// Payload carries the flag name, but a full reload keeps validity
	// windows consistent across all flags.
	if err := c.loadFlags(c.ctx); err != nil {
		logger.Error(c.ctx, "failed to reload feature flags", "error", err)
	}

	// Notify registered listeners with panic recovery (no goroutine fan-out).
	// This keeps invalidation delivery bounded and avoids goroutine storms on bursts of NOTIFY events.
	c.listenersMu.RLock()
	for _, listener := range c.listeners {
		func(l InvalidationListener) {
			defer func() {
				if r := recover(); r != nil {
					logger.Error(c.ctx, "listener panic recovered", "channel", channel, "panic", r)
				}
			}()
			l(channel, payload)
		}(listener)
	}
	c.listenersMu.RUnlock()
}

// loadFlags loads all feature flags from database.
func (c *FlagCache) loadFlags(ctx context.Context) error {
	rows, err := c.pool.Query(ctx, `
		SELECT id, flag_name, description, is_enabled, variant,
			   config, valid_from, valid_until
		FROM sys_feature_flags
	`)
	if err != nil {
		return fmt.Errorf("query feature flags: %w", err)
	}
	defer rows.Close()

	flags := make(map[string]FeatureFlag)
	now := time.Now()

	for rows.Next() {
		var f FeatureFlag
		var config []byte

		err := rows.Scan(
			&f.ID, &f.FlagName, &f.Description, &f.IsEnabled, &f.Variant,
			&config, &f.ValidFrom, &f.ValidUntil,
		)
		if err != nil {
			return fmt.Errorf("scan feature flag: %w", err)
		}

		if len(config) > 0 {
			var m map[string]any
			if err := json.Unmarshal(config, &m); err != nil {
				return fmt.Errorf("unmarshal feature flag config (%s): %w", f.FlagName, err)
			}
			f.Config = m
		}

		// Check validity period
		if f.ValidFrom != nil && now.Before(*f.ValidFrom) {
			f.IsEnabled = false
		}
		if f.ValidUntil != nil && now.After(*f.ValidUntil) {
			f.IsEnabled = false
		}

		flags[f.FlagName] = f
	}

	c.mu.Lock()
	c.flags = flags
	c.mu.Unlock()

	logger.Info(ctx, "loaded feature flags", "count", len(flags))
	return nil
}

// IsFeatureEnabled checks if feature flag is enabled.
func (c *FlagCache) IsFeatureEnabled(flagName string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	flag, ok := c.flags[flagName]
	return ok && flag.IsEnabled
}

// GetFeatureVariant returns variant for A/B test.
func (c *FlagCache) GetFeatureVariant(flagName string) string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if flag, ok := c.flags[flagName]; ok {
		return flag.Variant
	}
	return ""
}

// GetFeatureConfig returns a shallow copy of feature flag config (map) if present.
// It returns nil if flag is missing or has no config.
func (c *FlagCache) GetFeatureConfig(flagName string) map[string]any {
	c.mu.RLock()
	defer c.mu.RUnlock()

	flag, ok := c.flags[flagName]
	if !ok || len(flag.Config) == 0 {
		return nil
	}
	cfg := make(map[string]any, len(flag.Config))
	for k, v := range flag.Config {
		cfg[k] = v
	}
	return cfg
}

// OnInvalidation registers a callback for cache invalidation events.
func (c *FlagCache) OnInvalidation(listener InvalidationListener) {
	c.listenersMu.Lock()
	c.listeners = append(c.listeners, listener)
	c.listenersMu.Unlock()
}
