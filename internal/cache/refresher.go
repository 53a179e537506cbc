package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/yourusername/kubmonitor/internal/model"
	"go.uber.org/zap"
)

// SnapshotFetcher produces complete cluster snapshots
type SnapshotFetcher interface {
	FetchClusterSnapshot(ctx context.Context, namespace string) (*model.ClusterSnapshot, error)
}

// Refresher fetches snapshots on its own goroutine and publishes each
// complete one into the cache.
type Refresher struct {
	source          SnapshotFetcher
	cache           *TTLCache
	refreshInterval time.Duration
	timeout         time.Duration
	namespace       string
	logger          *zap.Logger

	ctx        context.Context
	cancel     context.CancelFunc
	wg         sync.WaitGroup
	mu         sync.RWMutex
	isRunning  bool
	lastError  error
	lastUpdate time.Time
}

// NewRefresher creates a new snapshot refresher. A positive timeout bounds
// each fetch.
func NewRefresher(
	source SnapshotFetcher,
	cache *TTLCache,
	refreshInterval time.Duration,
	timeout time.Duration,
	namespace string,
	logger *zap.Logger,
) *Refresher {
	ctx, cancel := context.WithCancel(context.Background())
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Refresher{
		source:          source,
		cache:           cache,
		refreshInterval: refreshInterval,
		timeout:         timeout,
		namespace:       namespace,
		logger:          logger,
		ctx:             ctx,
		cancel:          cancel,
	}
}

// Start begins the automatic refresh process
func (r *Refresher) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.isRunning {
		return fmt.Errorf("refresher already running")
	}

	r.logger.Info("Starting snapshot refresher",
		zap.Duration("interval", r.refreshInterval),
		zap.String("namespace", r.namespace),
	)

	r.isRunning = true
	r.wg.Add(1)

	go r.run()

	return nil
}

// Stop stops the automatic refresh process and waits for the worker
func (r *Refresher) Stop() error {
	r.mu.Lock()
	if !r.isRunning {
		r.mu.Unlock()
		return fmt.Errorf("refresher not running")
	}
	r.mu.Unlock()

	r.logger.Info("Stopping snapshot refresher")

	r.cancel()
	r.wg.Wait()

	r.mu.Lock()
	r.isRunning = false
	r.mu.Unlock()

	r.logger.Info("Snapshot refresher stopped")
	return nil
}

// run is the main refresh loop
func (r *Refresher) run() {
	defer r.wg.Done()

	// Do initial refresh immediately
	r.refresh(r.ctx)

	ticker := time.NewTicker(r.refreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.ctx.Done():
			r.logger.Debug("Refresh loop exiting")
			return

		case <-ticker.C:
			r.refresh(r.ctx)
		}
	}
}

// refresh performs a single refresh operation
func (r *Refresher) refresh(parent context.Context) error {
	r.logger.Debug("Refreshing cluster snapshot")

	startTime := time.Now()

	ctx := parent
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(parent, r.timeout)
		defer cancel()
	}

	snap, err := r.source.FetchClusterSnapshot(ctx, r.namespace)
	if err == nil && snap == nil {
		err = fmt.Errorf("source returned no snapshot")
	}
	if err != nil {
		r.mu.Lock()
		r.lastError = err
		r.mu.Unlock()

		// the previous snapshot stays published until it expires
		r.logger.Warn("Failed to refresh cluster snapshot",
			zap.String("namespace", r.namespace),
			zap.Error(err),
			zap.Duration("elapsed", time.Since(startTime)),
		)
		return err
	}

	// Update cache
	if err := r.cache.Set(r.ctx, snap); err != nil {
		r.logger.Error("Failed to update cache",
			zap.Error(err),
		)
		return err
	}

	r.mu.Lock()
	r.lastError = nil
	r.lastUpdate = time.Now()
	r.mu.Unlock()

	r.logger.Debug("Cluster snapshot refreshed successfully",
		zap.Duration("elapsed", time.Since(startTime)),
		zap.Int("jobs", len(snap.Jobs)),
		zap.Int("pods", snap.PodCount()),
	)
	return nil
}

// RefreshNow forces an immediate refresh on the caller's goroutine and
// returns its error. A successful fetch is published like any other.
func (r *Refresher) RefreshNow(ctx context.Context) error {
	r.logger.Info("Forcing immediate refresh")
	return r.refresh(ctx)
}

// GetStatus returns the current refresher status
func (r *Refresher) GetStatus() RefresherStatus {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return RefresherStatus{
		IsRunning:  r.isRunning,
		LastUpdate: r.lastUpdate,
		LastError:  r.lastError,
		Interval:   r.refreshInterval,
	}
}

// RefresherStatus represents the current state of the refresher
type RefresherStatus struct {
	IsRunning  bool
	LastUpdate time.Time
	LastError  error
	Interval   time.Duration
}
