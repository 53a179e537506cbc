package datasource

import (
	"context"
	"time"

	"github.com/yourusername/kubmonitor/internal/model"
)

// Bounded applies a per-call timeout to a DataSource and a MetricsSource
type Bounded struct {
	Source  DataSource
	Metrics MetricsSource
	Timeout time.Duration
}

// NewBounded wraps source and metrics with timeout
func NewBounded(source DataSource, metrics MetricsSource, timeout time.Duration) *Bounded {
	return &Bounded{Source: source, Metrics: metrics, Timeout: timeout}
}

func (b *Bounded) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if b.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, b.Timeout)
}

// FetchClusterSnapshot calls the wrapped source with a deadline
func (b *Bounded) FetchClusterSnapshot(ctx context.Context, namespace string) (*model.ClusterSnapshot, error) {
	ctx, cancel := b.withTimeout(ctx)
	defer cancel()
	return b.Source.FetchClusterSnapshot(ctx, namespace)
}

// FetchPodLogs calls the wrapped source with a deadline
func (b *Bounded) FetchPodLogs(ctx context.Context, namespace, podID string, maxLines int) ([]string, error) {
	ctx, cancel := b.withTimeout(ctx)
	defer cancel()
	return b.Source.FetchPodLogs(ctx, namespace, podID, maxLines)
}

// FetchLocalMetrics calls the wrapped metrics source with a deadline
func (b *Bounded) FetchLocalMetrics(ctx context.Context) (model.LocalMetrics, error) {
	ctx, cancel := b.withTimeout(ctx)
	defer cancel()
	return b.Metrics.FetchLocalMetrics(ctx)
}
