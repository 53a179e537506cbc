package cache

import (
	"context"
	"fmt"
	"sync"

	"github.com/yourusername/kubmonitor/internal/model"
)

// SlotProvider serves the latest snapshot published by a Refresher. It
// never blocks on the cluster; when the worker has not delivered yet, or
// the snapshot expired, it returns ErrNoSnapshot and the caller keeps what
// it already shows.
//
// Once a published snapshot has been handed out, a failing worker is
// reported as an error so the caller can mark its data stale.
type SlotProvider struct {
	cache     *TTLCache
	refresher *Refresher

	mu     sync.Mutex
	served *model.ClusterSnapshot
}

// NewSlotProvider reads from cache; refresher may be nil
func NewSlotProvider(cache *TTLCache, refresher *Refresher) *SlotProvider {
	return &SlotProvider{cache: cache, refresher: refresher}
}

// FetchClusterSnapshot returns the published snapshot for namespace
func (p *SlotProvider) FetchClusterSnapshot(ctx context.Context, namespace string) (*model.ClusterSnapshot, error) {
	var lastErr error
	if p.refresher != nil {
		lastErr = p.refresher.GetStatus().LastError
	}

	snap, err := p.cache.Latest(ctx)
	if err != nil {
		if lastErr != nil {
			return nil, fmt.Errorf("%w: %v", ErrNoSnapshot, lastErr)
		}
		return nil, err
	}
	if snap.Namespace != namespace {
		return nil, fmt.Errorf("%w for namespace %s", ErrNoSnapshot, namespace)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if lastErr != nil && snap == p.served {
		return nil, fmt.Errorf("latest refresh failed: %w", lastErr)
	}
	p.served = snap
	return snap, nil
}

// RefreshNow makes the worker fetch once on the caller's goroutine, so a
// manual refresh reaches the cluster instead of re-reading the slot.
func (p *SlotProvider) RefreshNow(ctx context.Context) error {
	if p.refresher == nil {
		return nil
	}
	return p.refresher.RefreshNow(ctx)
}
