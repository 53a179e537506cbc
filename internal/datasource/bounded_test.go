package datasource

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/kubmonitor/internal/model"
)

type slowSource struct {
	MockSource
	deadline time.Time
	hasDL    bool
}

func (s *slowSource) FetchClusterSnapshot(ctx context.Context, namespace string) (*model.ClusterSnapshot, error) {
	s.deadline, s.hasDL = ctx.Deadline()
	<-ctx.Done()
	return nil, ctx.Err()
}

func (s *slowSource) FetchPodLogs(ctx context.Context, namespace, podID string, maxLines int) ([]string, error) {
	s.deadline, s.hasDL = ctx.Deadline()
	return []string{"ok"}, nil
}

type deadlineMetrics struct {
	hasDL bool
}

func (d *deadlineMetrics) FetchLocalMetrics(ctx context.Context) (model.LocalMetrics, error) {
	_, d.hasDL = ctx.Deadline()
	return model.LocalMetrics{MemPercent: 1}, nil
}

func TestBoundedAppliesTimeout(t *testing.T) {
	src := &slowSource{}
	metrics := &deadlineMetrics{}
	b := NewBounded(src, metrics, 20*time.Millisecond)

	start := time.Now()
	_, err := b.FetchClusterSnapshot(context.Background(), "ns")
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 2*time.Second)
	assert.True(t, src.hasDL)

	lines, err := b.FetchPodLogs(context.Background(), "ns", "p", 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"ok"}, lines)
	assert.True(t, src.hasDL)

	m, err := b.FetchLocalMetrics(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1.0, m.MemPercent)
	assert.True(t, metrics.hasDL)
}

func TestBoundedWithoutTimeout(t *testing.T) {
	src := &slowSource{}
	b := NewBounded(src, nil, 0)

	_, err := b.FetchPodLogs(context.Background(), "ns", "p", 10)
	require.NoError(t, err)
	assert.False(t, src.hasDL)
}
