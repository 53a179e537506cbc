package datasource

import (
	"context"
	"errors"

	"github.com/yourusername/kubmonitor/internal/model"
)

// ErrUnknownPod is returned when logs are requested for a pod the source
// does not know about.
var ErrUnknownPod = errors.New("unknown pod")

// DataSource defines the interface for cluster snapshot providers
type DataSource interface {
	// FetchClusterSnapshot returns quota, jobs with their pods, and the GPU
	// inventory of one namespace. A snapshot is returned whole or not at all.
	FetchClusterSnapshot(ctx context.Context, namespace string) (*model.ClusterSnapshot, error)

	// FetchPodLogs returns up to maxLines trailing lines of a pod's log
	FetchPodLogs(ctx context.Context, namespace, podID string, maxLines int) ([]string, error)

	// Name returns the data source name (for logging/debugging)
	Name() string

	// Close cleans up resources
	Close() error
}

// MetricsSource samples the machine running the dashboard
type MetricsSource interface {
	FetchLocalMetrics(ctx context.Context) (model.LocalMetrics, error)
}
