package app

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/kubmonitor/internal/cache"
	"github.com/yourusername/kubmonitor/internal/dashboard"
	"github.com/yourusername/kubmonitor/internal/input"
	"github.com/yourusername/kubmonitor/internal/model"
	"sigs.k8s.io/yaml"
)

func mockConfig(t *testing.T) *Config {
	t.Helper()
	cfg := &Config{
		Namespace:  "ml-team",
		SourceMode: SourceMock,
		MockSeed:   42,
		LogFile:    filepath.Join(t.TempDir(), "kubmonitor.log"),
	}
	cfg.Normalize()
	return cfg
}

func newTestApp(t *testing.T, cfg *Config) *App {
	t.Helper()
	a, err := New(cfg, "test")
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Shutdown() })
	return a
}

func TestSetupRejectsInvalidConfig(t *testing.T) {
	cfg := mockConfig(t)
	cfg.Namespace = ""
	a := newTestApp(t, cfg)

	err := a.Setup()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "namespace is required")
}

func TestSnapshotFromMock(t *testing.T) {
	a := newTestApp(t, mockConfig(t))

	snap, err := a.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ml-team", snap.Namespace)
	assert.Len(t, snap.Jobs, 30)
	assert.Equal(t, "8 / 16", snap.Quota.CPU.Text)
}

func TestControllerOverMock(t *testing.T) {
	a := newTestApp(t, mockConfig(t))
	require.NoError(t, a.Setup())

	ctx := context.Background()
	now := time.Now()
	vm, running := a.ctrl.Step(ctx, input.None, now)
	require.True(t, running)
	assert.Equal(t, 30, vm.JobCount)
	require.NotEmpty(t, vm.Rows)

	// first pod row sits right under the first job
	vm, _ = a.ctrl.Step(ctx, input.Down, now.Add(100*time.Millisecond))
	require.True(t, vm.Rows[vm.SelectedVisible()].IsPod())

	vm, _ = a.ctrl.Step(ctx, input.Enter, now.Add(200*time.Millisecond))
	assert.Equal(t, dashboard.ModeLogViewer, vm.Mode)
	assert.NotEmpty(t, vm.Log.Lines)
	assert.Empty(t, vm.Log.Err)

	vm, _ = a.ctrl.Step(ctx, input.Escape, now.Add(300*time.Millisecond))
	assert.Equal(t, dashboard.ModeList, vm.Mode)
	assert.Equal(t, 1, vm.Selected)

	_, running = a.ctrl.Step(ctx, input.Quit, now.Add(400*time.Millisecond))
	assert.False(t, running)
}

func TestAsyncSetupUsesSlot(t *testing.T) {
	cfg := mockConfig(t)
	cfg.Async = true
	cfg.RefreshInterval = 20 * time.Millisecond
	a := newTestApp(t, cfg)
	require.NoError(t, a.Setup())

	_, ok := a.snapshots.(*cache.SlotProvider)
	require.True(t, ok)

	ctx := context.Background()
	_, err := a.snapshots.FetchClusterSnapshot(ctx, cfg.Namespace)
	assert.ErrorIs(t, err, cache.ErrNoSnapshot, "nothing published before the worker runs")

	require.NoError(t, a.refresher.Start())
	require.Eventually(t, func() bool {
		snap, err := a.snapshots.FetchClusterSnapshot(ctx, cfg.Namespace)
		return err == nil && len(snap.Jobs) == 30
	}, 2*time.Second, 10*time.Millisecond)
}

func TestAsyncManualRefreshReachesSource(t *testing.T) {
	cfg := mockConfig(t)
	cfg.Async = true
	cfg.RefreshInterval = time.Hour
	a := newTestApp(t, cfg)
	require.NoError(t, a.Setup())

	// the worker is not running; only the manual refresh can publish
	vm, running := a.ctrl.Step(context.Background(), input.Refresh, time.Now())
	require.True(t, running)
	assert.Equal(t, 30, vm.JobCount)
	assert.Empty(t, vm.StaleErr)
}

func TestWriteSnapshot(t *testing.T) {
	snap := &model.ClusterSnapshot{
		Namespace: "ml-team",
		Quota:     model.EmptyQuota(),
		Jobs: []model.JobRecord{{
			Name: "train", Owner: "alice", Status: model.JobRunning, Completions: "0/1",
			Pods: []model.PodRecord{{Name: "train-abcde", Phase: model.PodRunning}},
		}},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteSnapshot(&buf, snap, "yaml"))
	var fromYAML model.ClusterSnapshot
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &fromYAML))
	assert.Equal(t, "train-abcde", fromYAML.Jobs[0].Pods[0].Name)

	buf.Reset()
	require.NoError(t, WriteSnapshot(&buf, snap, "json"))
	var fromJSON map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &fromJSON))
	assert.Equal(t, "ml-team", fromJSON["namespace"])

	assert.Error(t, WriteSnapshot(&buf, snap, "xml"))
}

func TestInitLoggerWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	logger, err := initLogger("debug", path)
	require.NoError(t, err)
	logger.Info("hello")
	require.NoError(t, logger.Sync())
	assert.FileExists(t, path)
}

func TestCheckAccessUnsupportedOnMock(t *testing.T) {
	a := newTestApp(t, mockConfig(t))

	_, err := a.CheckAccess(context.Background())
	assert.ErrorIs(t, err, ErrNoAccessCheck)
	a.preflight(context.Background())
}
