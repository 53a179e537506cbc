package datasource

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"time"

	"github.com/yourusername/kubmonitor/internal/model"
	"go.uber.org/zap"
)

const (
	// NotAvailable is shown when no accelerator could be queried
	NotAvailable = "N/A"

	defaultMinSampleInterval = 500 * time.Millisecond
	defaultGPUCacheTTL       = 2 * time.Second
	nvidiaSMITimeout         = 2 * time.Second
)

// LocalCollector samples CPU and memory from /proc and GPU utilization
// from nvidia-smi. CPU percentages are deltas between two calls, so the
// first call reports 0. Calls closer together than the minimum sample
// interval return the previous sample.
type LocalCollector struct {
	procRoot string
	logger   *zap.Logger
	now      func() time.Time
	gpuQuery func(ctx context.Context) (string, error)

	minInterval time.Duration
	gpuTTL      time.Duration

	mu         sync.Mutex
	prevTotal  cpuTimes
	prevCores  []cpuTimes
	sampled    bool
	lastSample time.Time
	last       model.LocalMetrics
	gpuText    string
	gpuAt      time.Time
}

// NewLocalCollector creates a collector reading the host's /proc
func NewLocalCollector(logger *zap.Logger) *LocalCollector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LocalCollector{
		procRoot:    "/proc",
		logger:      logger,
		now:         time.Now,
		gpuQuery:    queryNvidiaSMI,
		minInterval: defaultMinSampleInterval,
		gpuTTL:      defaultGPUCacheTTL,
	}
}

func queryNvidiaSMI(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, nvidiaSMITimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "nvidia-smi", "--query-gpu=utilization.gpu", "--format=csv,noheader")
	output, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("calling nvidia-smi: %w", err)
	}
	return string(output), nil
}

// FetchLocalMetrics returns the current machine sample
func (c *LocalCollector) FetchLocalMetrics(ctx context.Context) (model.LocalMetrics, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if c.sampled && now.Sub(c.lastSample) < c.minInterval {
		return c.last, nil
	}

	procStat, err := os.ReadFile(filepath.Join(c.procRoot, "stat"))
	if err != nil {
		return model.LocalMetrics{}, fmt.Errorf("failed to read cpu stats: %w", err)
	}
	total, cores, err := parseProcStat(string(procStat))
	if err != nil {
		return model.LocalMetrics{}, err
	}

	meminfo, err := os.ReadFile(filepath.Join(c.procRoot, "meminfo"))
	if err != nil {
		return model.LocalMetrics{}, fmt.Errorf("failed to read memory stats: %w", err)
	}
	memPercent, err := parseMeminfo(string(meminfo))
	if err != nil {
		return model.LocalMetrics{}, err
	}

	metrics := model.LocalMetrics{
		CPUPerCore:      make([]float64, len(cores)),
		MemPercent:      memPercent,
		AcceleratorText: c.accelerator(ctx, now),
	}
	if c.sampled {
		metrics.CPUTotalPercent = total.busyPercent(c.prevTotal)
		for i := range cores {
			if i < len(c.prevCores) {
				metrics.CPUPerCore[i] = cores[i].busyPercent(c.prevCores[i])
			}
		}
	}

	c.prevTotal = total
	c.prevCores = cores
	c.sampled = true
	c.lastSample = now
	c.last = metrics
	return metrics, nil
}

func (c *LocalCollector) accelerator(ctx context.Context, now time.Time) string {
	if c.gpuText != "" && now.Sub(c.gpuAt) < c.gpuTTL {
		return c.gpuText
	}
	c.gpuAt = now
	c.gpuText = NotAvailable

	if c.gpuQuery == nil {
		return c.gpuText
	}
	output, err := c.gpuQuery(ctx)
	if err != nil {
		c.logger.Debug("GPU utilization unavailable", zap.Error(err))
		return c.gpuText
	}
	text, err := parseGPUUtilization(output)
	if err != nil {
		c.logger.Debug("GPU utilization unparsable", zap.Error(err))
		return c.gpuText
	}
	c.gpuText = text
	return c.gpuText
}
