package cache

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/yourusername/kubmonitor/internal/model"
	"go.uber.org/zap"
)

// ErrNoSnapshot is returned when the slot is empty or its snapshot expired
var ErrNoSnapshot = errors.New("no snapshot available")

// TTLCache is a single-slot, time-based snapshot store. Only whole
// snapshots are stored, so a reader never observes a partial one.
type TTLCache struct {
	data      *model.ClusterSnapshot
	ttl       time.Duration
	expiresAt time.Time
	mu        sync.RWMutex
	logger    *zap.Logger
}

// NewTTLCache creates a new TTL-based cache
func NewTTLCache(ttl time.Duration, logger *zap.Logger) *TTLCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TTLCache{
		ttl:    ttl,
		logger: logger,
	}
}

// Get retrieves the cached snapshot
func (c *TTLCache) Get(ctx context.Context) (*model.ClusterSnapshot, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.data == nil {
		c.logger.Debug("Cache miss: no data")
		return nil, false
	}

	if c.expired() {
		c.logger.Debug("Cache miss: expired",
			zap.Time("expires_at", c.expiresAt),
			zap.Time("now", time.Now()),
		)
		return nil, false
	}

	return c.data, true
}

// Latest returns the cached snapshot or ErrNoSnapshot
func (c *TTLCache) Latest(ctx context.Context) (*model.ClusterSnapshot, error) {
	snap, ok := c.Get(ctx)
	if !ok {
		return nil, ErrNoSnapshot
	}
	return snap, nil
}

// Set stores a snapshot in the cache
func (c *TTLCache) Set(ctx context.Context, snap *model.ClusterSnapshot) error {
	if snap == nil {
		return errors.New("refusing to cache a nil snapshot")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.data = snap
	c.expiresAt = time.Now().Add(c.ttl)

	c.logger.Debug("Cache updated",
		zap.Time("expires_at", c.expiresAt),
		zap.Duration("ttl", c.ttl),
		zap.Int("jobs", len(snap.Jobs)),
		zap.Int("pods", snap.PodCount()),
	)

	return nil
}

// expired reports whether the slot is empty or past its TTL; the caller
// holds the lock
func (c *TTLCache) expired() bool {
	return c.data == nil || time.Now().After(c.expiresAt)
}
