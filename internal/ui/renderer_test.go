package ui

import (
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/kubmonitor/internal/dashboard"
	"github.com/yourusername/kubmonitor/internal/i18n"
	"github.com/yourusername/kubmonitor/internal/model"
)

func init() {
	lipgloss.SetColorProfile(termenv.Ascii)
}

func testViewModel() dashboard.ViewModel {
	jobs := []model.JobRecord{
		{
			Name: "train-resnet", Owner: "alice", Status: model.JobRunning,
			Completions: "0/1", DurationText: "5m 3s (Run)", GPURequest: 2, GPUType: "A100",
			Pods: []model.PodRecord{
				{Name: "train-resnet-x7k2p", Phase: model.PodRunning, NodeName: "gpu-node-1"},
				{Name: "train-resnet-q9w8e", Phase: model.PodPending},
			},
		},
		{Name: "etl", Owner: "bob", Status: model.JobFailed, Completions: "0/1", DurationText: "12s"},
	}
	rows := dashboard.BuildRows(jobs)
	return dashboard.ViewModel{
		Namespace:       "ml-team",
		Mode:            dashboard.ModeList,
		RefreshInterval: 2 * time.Second,
		LastUpdated:     time.Date(2026, 5, 4, 9, 0, 0, 0, time.UTC),
		Quota: model.QuotaInfo{
			CPU:    model.QuotaEntry{Used: "8", Limit: "16", Text: "8 / 16", Percent: 50, HasPercent: true},
			Memory: model.QuotaEntry{Used: "32Gi", Limit: "64Gi", Text: "32Gi / 64Gi"},
			GPU:    model.EmptyQuotaEntry(),
		},
		GPUs: model.GPUInventory{
			Nodes:    []model.GPUNode{{Name: "gpu-node-1", Capacity: 8, Allocatable: 8}},
			Capacity: 8, Allocatable: 8, Requested: 2,
		},
		Local: model.LocalMetrics{
			CPUTotalPercent: 12.5,
			CPUPerCore:      []float64{10, 55, 90, 0, 20},
			MemPercent:      40,
			AcceleratorText: "35 %",
		},
		JobCount:  2,
		PodCount:  2,
		Rows:      rows,
		TotalRows: len(rows),
		Selected:  1,
		Hints:     []dashboard.Hint{{Key: "q", MessageID: "keys.quit"}},
	}
}

func newTestRenderer(width, height int) *Renderer {
	r := NewRenderer(i18n.NewLocalizer("en"))
	r.SetSize(width, height)
	return r
}

func TestViewport(t *testing.T) {
	r := newTestRenderer(120, 30)
	list, logs := r.Viewport()
	assert.Equal(t, 21, list)
	assert.Equal(t, 21, logs)

	r.SetSize(40, 5)
	list, logs = r.Viewport()
	assert.Equal(t, 1, list)
	assert.Equal(t, 1, logs)

	r.SetSize(0, -1)
	w, h := r.Size()
	assert.Equal(t, 40, w, "non-positive sizes are ignored")
	assert.Equal(t, 5, h)
}

func TestRenderListFrame(t *testing.T) {
	r := newTestRenderer(120, 30)
	frame := r.Render(testViewModel())

	lines := strings.Split(frame, "\n")
	assert.Len(t, lines, 30, "frame fills the terminal exactly")
	for i, line := range lines {
		assert.LessOrEqual(t, visualLength(line), 120, "line %d overflows", i)
	}

	for _, want := range []string{
		"Kubernetes Job Monitor",
		"Namespace: ml-team",
		"every 2s",
		"Cluster Quota",
		"8 / 16 50.0%",
		"32Gi / 64Gi",
		"GPU Inventory",
		"Requested",
		"Local Machine",
		"35 %",
		"C4:20%",
		"Jobs (2)",
		"2 jobs, 2 pods",
		"train-resnet",
		"  ├── train-resnet-x7k2p",
		"  └── train-resnet-q9w8e",
		"2xA100",
		"5m 3s (Run)",
		"Failed",
		"q Quit",
	} {
		assert.Contains(t, frame, want)
	}
	assert.NotContains(t, frame, "stale")
}

func TestRenderNarrowHidesSideColumn(t *testing.T) {
	r := newTestRenderer(80, 24)
	frame := r.Render(testViewModel())

	assert.NotContains(t, frame, "Cluster Quota")
	assert.Contains(t, frame, "train-resnet")
	assert.Len(t, strings.Split(frame, "\n"), 24)
}

func TestRenderShortensLongNames(t *testing.T) {
	vm := testViewModel()
	long := "distributed-training-resnet-imagenet-experiment-x7k2p"
	vm.Rows = dashboard.BuildRows([]model.JobRecord{{
		Name:   "distributed-training-resnet-imagenet-experiment",
		Status: model.JobRunning,
		Pods:   []model.PodRecord{{Name: long, Phase: model.PodRunning}},
	}})

	r := newTestRenderer(120, 30)
	frame := r.Render(vm)
	assert.NotContains(t, frame, long)
	assert.Contains(t, frame, "~")
	assert.Contains(t, frame, "x7k2p", "the generated suffix survives shortening")
}

func TestRenderEmptyAndStale(t *testing.T) {
	vm := testViewModel()
	vm.Rows = nil
	vm.TotalRows = 0
	vm.JobCount = 0
	vm.PodCount = 0
	vm.StaleErr = "connection refused"

	frame := newTestRenderer(120, 30).Render(vm)
	assert.Contains(t, frame, "No jobs in this namespace")
	assert.Contains(t, frame, "stale: connection refused")
}

func TestRenderNeverUpdated(t *testing.T) {
	vm := testViewModel()
	vm.LastUpdated = time.Time{}
	vm.GPUs = model.GPUInventory{}

	frame := newTestRenderer(120, 30).Render(vm)
	assert.Contains(t, frame, "Waiting for first update")
	assert.Contains(t, frame, "No GPU nodes visible")
}

func TestRenderNotice(t *testing.T) {
	vm := testViewModel()
	vm.Notice = &dashboard.Notice{MessageID: "notice.copied_name", Data: map[string]interface{}{"Name": "etl"}}
	assert.Contains(t, newTestRenderer(120, 30).Render(vm), "Copied etl")

	vm.Notice = &dashboard.Notice{MessageID: "notice.copy_failed", Data: map[string]interface{}{"Error": "no xclip"}, Error: true}
	assert.Contains(t, newTestRenderer(120, 30).Render(vm), "Copy failed: no xclip")
}

func TestRenderLogViewer(t *testing.T) {
	vm := testViewModel()
	vm.Mode = dashboard.ModeLogViewer
	vm.Hints = []dashboard.Hint{{Key: "esc/q", MessageID: "keys.back"}}
	vm.Log = dashboard.LogView{
		PodID:  "train-resnet-x7k2p",
		Lines:  []dashboard.LogLine{{Number: 11, Text: "epoch 3 loss=0.42"}, {Number: 12, Text: "epoch 4 loss=0.39"}},
		Offset: 10,
		Total:  40,
	}

	r := newTestRenderer(100, 20)
	frame := r.Render(vm)
	lines := strings.Split(frame, "\n")
	assert.Len(t, lines, 20)

	assert.Contains(t, frame, "Logs: train-resnet-x7k2p")
	assert.Contains(t, frame, "  11│ epoch 3 loss=0.42")
	assert.Contains(t, frame, "  12│ epoch 4 loss=0.39")
	assert.Contains(t, frame, "Lines 11-12 of 40")
	assert.Contains(t, frame, "esc/q Back")
	assert.NotContains(t, frame, "Jobs (2)")
}

func TestRenderLogViewerStates(t *testing.T) {
	vm := testViewModel()
	vm.Mode = dashboard.ModeLogViewer
	vm.Log = dashboard.LogView{PodID: "p"}
	assert.Contains(t, newTestRenderer(100, 20).Render(vm), "No log output")

	vm.Log = dashboard.LogView{
		PodID: "p",
		Lines: []dashboard.LogLine{{Number: 1, Text: "kept"}},
		Total: 1,
		Err:   "timeout",
	}
	frame := newTestRenderer(100, 20).Render(vm)
	assert.Contains(t, frame, "Log fetch failed: timeout")
	assert.Contains(t, frame, "kept", "previous lines stay visible")
}

func TestCoreGrid(t *testing.T) {
	rows := coreGrid([]float64{1, 2, 3, 4, 5, 6}, 32)
	require.Len(t, rows, 2)
	assert.Contains(t, rows[0], "C0:1%")
	assert.Contains(t, rows[0], "C3:4%")
	assert.Contains(t, rows[1], "C5:6%")

	assert.Empty(t, coreGrid(nil, 32))
}

func manyCores(n int) []float64 {
	cores := make([]float64, n)
	for i := range cores {
		cores[i] = float64(i % 100)
	}
	return cores
}

func TestRenderClipsCoreGrid(t *testing.T) {
	vm := testViewModel()
	vm.Local.CPUPerCore = manyCores(64)

	frame := newTestRenderer(120, 30).Render(vm)
	assert.Len(t, strings.Split(frame, "\n"), 30)
	assert.Contains(t, frame, "C15:")
	assert.NotContains(t, frame, "C16:")
	assert.Contains(t, frame, "+48 more cores")
	assert.Equal(t, 4, strings.Count(frame, "╰"), "every panel keeps its bottom border")
}

func TestRenderCoreGridNoRoom(t *testing.T) {
	vm := testViewModel()
	vm.Local.CPUPerCore = manyCores(64)

	frame := newTestRenderer(120, 25).Render(vm)
	assert.NotContains(t, frame, "C0:")
	assert.Contains(t, frame, "+64 more cores")
	assert.Equal(t, 4, strings.Count(frame, "╰"))
}

func TestPercentStyle(t *testing.T) {
	assert.Equal(t, StyleStatusReady, percentStyle(49.9))
	assert.Equal(t, StyleStatusPending, percentStyle(50))
	assert.Equal(t, StyleStatusPending, percentStyle(79))
	assert.Equal(t, StyleStatusNotReady, percentStyle(80))
}

func TestFitAndTruncate(t *testing.T) {
	assert.Equal(t, "abc  ", fit("abc", 5))
	assert.Equal(t, "ab...", fit("abcdefgh", 5))
	assert.Equal(t, "ab", truncate("abcdef", 2))
	assert.Equal(t, "", truncate("abc", 0))
	assert.Equal(t, 4, visualLength("中文"))
	assert.Equal(t, "a\nb", clipLines("a\nb\nc", 2))
}
