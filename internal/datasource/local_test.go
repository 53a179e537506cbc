package datasource

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const procStatSample = `cpu  100 0 100 800 0 0 0 0 0 0
cpu0 50 0 50 400 0 0 0 0 0 0
cpu1 50 0 50 400 0 0 0 0 0 0
intr 12345
ctxt 999
`

const procStatLater = `cpu  200 0 200 1000 0 0 0 0 0 0
cpu0 150 0 100 450 0 0 0 0 0 0
cpu1 50 0 100 550 0 0 0 0 0 0
`

const meminfoSample = `MemTotal:       16000000 kB
MemFree:         2000000 kB
MemAvailable:    4000000 kB
Buffers:          100000 kB
Cached:          1000000 kB
`

func TestParseProcStat(t *testing.T) {
	total, cores, err := parseProcStat(procStatSample)
	require.NoError(t, err)
	assert.Equal(t, uint64(1000), total.total)
	assert.Equal(t, uint64(800), total.idle)
	require.Len(t, cores, 2)
	assert.Equal(t, uint64(500), cores[1].total)

	_, _, err = parseProcStat("intr 1\n")
	assert.Error(t, err)

	_, _, err = parseProcStat("cpu 1 2 x 4\n")
	assert.Error(t, err)
}

func TestBusyPercent(t *testing.T) {
	prev := cpuTimes{total: 1000, idle: 800}
	assert.InDelta(t, 50.0, cpuTimes{total: 1400, idle: 1000}.busyPercent(prev), 0.001)
	assert.Equal(t, 0.0, prev.busyPercent(prev))
	assert.Equal(t, 0.0, cpuTimes{total: 10}.busyPercent(prev), "counter reset")
}

func TestParseMeminfo(t *testing.T) {
	pct, err := parseMeminfo(meminfoSample)
	require.NoError(t, err)
	assert.InDelta(t, 75.0, pct, 0.001)

	// no MemAvailable: free + buffers + cached
	pct, err = parseMeminfo("MemTotal: 1000 kB\nMemFree: 100 kB\nBuffers: 100 kB\nCached: 300 kB\n")
	require.NoError(t, err)
	assert.InDelta(t, 50.0, pct, 0.001)

	_, err = parseMeminfo("SwapTotal: 0 kB\n")
	assert.Error(t, err)
}

func TestParseGPUUtilization(t *testing.T) {
	text, err := parseGPUUtilization("35 %\n80 %\n")
	require.NoError(t, err)
	assert.Equal(t, "35 %, 80 %", text)

	_, err = parseGPUUtilization("")
	assert.Error(t, err)
}

func writeProc(t *testing.T, dir, stat, meminfo string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "stat"), []byte(stat), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "meminfo"), []byte(meminfo), 0o644))
}

func newTestCollector(t *testing.T) (*LocalCollector, string, *time.Time, *int) {
	dir := t.TempDir()
	writeProc(t, dir, procStatSample, meminfoSample)

	now := testNow
	queries := 0
	c := NewLocalCollector(zap.NewNop())
	c.procRoot = dir
	c.now = func() time.Time { return now }
	c.gpuQuery = func(ctx context.Context) (string, error) {
		queries++
		return "12 %\n", nil
	}
	return c, dir, &now, &queries
}

func TestLocalCollectorDeltas(t *testing.T) {
	c, dir, now, _ := newTestCollector(t)

	first, err := c.FetchLocalMetrics(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0.0, first.CPUTotalPercent, "first sample has no baseline")
	assert.Equal(t, []float64{0, 0}, first.CPUPerCore)
	assert.InDelta(t, 75.0, first.MemPercent, 0.001)
	assert.Equal(t, "12 %", first.AcceleratorText)

	writeProc(t, dir, procStatLater, meminfoSample)
	*now = now.Add(time.Second)

	second, err := c.FetchLocalMetrics(context.Background())
	require.NoError(t, err)
	// delta total 400, idle 200
	assert.InDelta(t, 50.0, second.CPUTotalPercent, 0.001)
	require.Len(t, second.CPUPerCore, 2)
	assert.InDelta(t, 75.0, second.CPUPerCore[0], 0.001)
	assert.InDelta(t, 25.0, second.CPUPerCore[1], 0.001)
}

func TestLocalCollectorRateLimited(t *testing.T) {
	c, dir, now, queries := newTestCollector(t)

	first, err := c.FetchLocalMetrics(context.Background())
	require.NoError(t, err)

	writeProc(t, dir, procStatLater, meminfoSample)
	*now = now.Add(100 * time.Millisecond)
	again, err := c.FetchLocalMetrics(context.Background())
	require.NoError(t, err)
	assert.Equal(t, first, again, "sample reused inside the minimum interval")
	assert.Equal(t, 1, *queries)

	*now = now.Add(time.Second)
	_, err = c.FetchLocalMetrics(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, *queries, "gpu text cached")

	*now = now.Add(3 * time.Second)
	_, err = c.FetchLocalMetrics(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, *queries)
}

func TestLocalCollectorWithoutGPU(t *testing.T) {
	c, _, _, _ := newTestCollector(t)
	c.gpuQuery = func(ctx context.Context) (string, error) {
		return "", errors.New("executable file not found")
	}

	m, err := c.FetchLocalMetrics(context.Background())
	require.NoError(t, err)
	assert.Equal(t, NotAvailable, m.AcceleratorText)
}

func TestLocalCollectorMissingProc(t *testing.T) {
	c := NewLocalCollector(zap.NewNop())
	c.procRoot = filepath.Join(t.TempDir(), "missing")

	_, err := c.FetchLocalMetrics(context.Background())
	assert.Error(t, err)
}
