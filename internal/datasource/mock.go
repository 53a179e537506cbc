package datasource

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/yourusername/kubmonitor/internal/model"
	"go.uber.org/zap"
)

const (
	mockSuffixAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"
	mockLogEvery       = 3 * time.Second
	mockFinishedLines  = 40
	mockMaxLines       = 2000
)

type mockJob struct {
	name       string
	image      string
	gpu        int64
	gpuType    string
	active     int32
	succeeded  int32
	failed     int32
	startedAgo time.Duration
	// zero while still running
	finishedAgo time.Duration
}

func ago(h, m int) time.Duration {
	return time.Duration(h)*time.Hour + time.Duration(m)*time.Minute
}

// mockJobs is a namespace of a small ML team: running, completed and
// failed jobs with a mix of GPU requests.
var mockJobs = []mockJob{
	{name: "ml-training-bert-large", image: "alice/pytorch:2.1", gpu: 2, gpuType: "A100", active: 1, startedAgo: ago(2, 0)},
	{name: "hyperparameter-tuning-job", image: "david/optuna:3.4", gpu: 1, active: 1, startedAgo: ago(5, 15)},
	{name: "image-preprocessing-batch", image: "frank/opencv:4.8", active: 1, startedAgo: ago(0, 40)},
	{name: "distributed-training-resnet", image: "bob/horovod:0.28", gpu: 4, gpuType: "A100", active: 1, startedAgo: ago(7, 30)},
	{name: "feature-extraction-pipeline", image: "eve/sklearn:1.3", active: 1, startedAgo: ago(2, 30)},
	{name: "model-serving-warmup", image: "carol/triton:23.10", gpu: 1, active: 1, startedAgo: ago(0, 15)},
	{name: "batch-prediction-service", image: "david/tensorflow:2.14", gpu: 2, gpuType: "H100", active: 1, startedAgo: ago(3, 0)},
	{name: "recommendation-engine-train", image: "frank/lightgbm:4.1", active: 1, startedAgo: ago(0, 30)},
	{name: "speech-recognition-train", image: "iris/whisper:large-v3", gpu: 2, gpuType: "H100", active: 1, startedAgo: ago(3, 45)},
	{name: "time-series-forecasting", image: "jack/prophet:1.1", active: 1, startedAgo: ago(5, 0)},
	{name: "semantic-search-indexing", image: "leo/elasticsearch:8.11", active: 1, startedAgo: ago(7, 15)},
	{name: "document-embedding-job", image: "nancy/sentence-transformers:2.2", gpu: 1, active: 1, startedAgo: ago(9, 30)},
	{name: "reinforcement-learning-agent", image: "peter/stable-baselines3:2.2", gpu: 2, gpuType: "A100", active: 1, startedAgo: ago(10, 45)},
	{name: "anomaly-detection-pipeline", image: "rachel/isolation-forest:1.3", active: 1, startedAgo: ago(13, 15)},
	{name: "clickstream-analytics", image: "tina/flink:1.18", active: 1, startedAgo: ago(15, 0)},

	{name: "inference-api-deployment", image: "charlie/fastapi:0.104", gpu: 1, succeeded: 1, startedAgo: ago(3, 30), finishedAgo: ago(2, 45)},
	{name: "model-evaluation-suite", image: "emily/mlflow:2.8", succeeded: 1, startedAgo: ago(6, 30), finishedAgo: ago(6, 0)},
	{name: "nlp-sentiment-analysis", image: "henry/transformers:4.35", gpu: 1, succeeded: 1, startedAgo: ago(9, 0), finishedAgo: ago(8, 15)},
	{name: "database-backup-export", image: "ivan/pgdump:16", succeeded: 1, startedAgo: ago(11, 30), finishedAgo: ago(11, 0)},
	{name: "log-aggregation-batch", image: "judy/logstash:8.11", succeeded: 1, startedAgo: ago(13, 30), finishedAgo: ago(12, 38)},
	{name: "text-classification-job", image: "grace/bert-base:1.0", gpu: 1, succeeded: 1, startedAgo: ago(1, 30), finishedAgo: ago(0, 48)},
	{name: "object-detection-yolo", image: "karen/yolov8:2.0", gpu: 2, succeeded: 1, startedAgo: ago(6, 30), finishedAgo: ago(5, 5)},
	{name: "ab-testing-analysis", image: "oscar/scipy:1.11", succeeded: 1, startedAgo: ago(10, 30), finishedAgo: ago(10, 12)},
	{name: "data-lake-sync", image: "quinn/delta-lake:3.0", succeeded: 1, startedAgo: ago(12, 0), finishedAgo: ago(11, 8)},

	{name: "data-processing-pipeline", image: "emily/spark:3.5", failed: 1, startedAgo: ago(4, 30), finishedAgo: ago(4, 15)},
	{name: "video-encoding-job", image: "grace/ffmpeg:6.0", gpu: 1, failed: 1, startedAgo: ago(10, 30), finishedAgo: ago(10, 25)},
	{name: "etl-customer-data", image: "ivan/airflow:2.7", failed: 1, startedAgo: ago(8, 30), finishedAgo: ago(8, 27)},
	{name: "fraud-detection-model", image: "henry/catboost:1.2", gpu: 1, failed: 1, startedAgo: ago(2, 15), finishedAgo: ago(2, 10)},
	{name: "graph-neural-network", image: "maria/pytorch-geometric:2.4", gpu: 2, failed: 1, startedAgo: ago(8, 0), finishedAgo: ago(7, 55)},
	{name: "multilingual-translation", image: "steve/marian-mt:3.1", gpu: 1, failed: 1, startedAgo: ago(14, 30), finishedAgo: ago(14, 22)},
}

type mockPod struct {
	job   int
	name  string
	phase model.PodPhase
	node  string
}

// MockSource serves a synthetic namespace without a cluster. Pod names are
// generated once from the seed, so a pod id stays valid across refreshes.
// Running pods keep producing log lines as time passes.
type MockSource struct {
	logger *zap.Logger
	now    func() time.Time
	origin time.Time

	// pods is fixed at construction; mu guards origin
	mu   sync.Mutex
	pods []mockPod
}

// NewMockSource creates a mock source; the same seed yields the same pods
func NewMockSource(seed int64, logger *zap.Logger) *MockSource {
	if logger == nil {
		logger = zap.NewNop()
	}
	rng := rand.New(rand.NewSource(seed))

	var pods []mockPod
	for i, job := range mockJobs {
		// ~60% get 1 pod, ~30% get 2 pods, ~10% get 3 pods
		n := 1
		switch r := rng.Float64(); {
		case r >= 0.9:
			n = 3
		case r >= 0.6:
			n = 2
		}

		phase := model.PodFailed
		if job.active > 0 {
			phase = model.PodRunning
		} else if job.succeeded > 0 {
			phase = model.PodSucceeded
		}

		for p := 0; p < n; p++ {
			var node string
			if job.gpu > 0 {
				node = fmt.Sprintf("gpu-node-%d", 1+rng.Intn(2))
			} else {
				node = fmt.Sprintf("cpu-node-%d", 1+rng.Intn(3))
			}
			pods = append(pods, mockPod{
				job:   i,
				name:  job.name + "-" + randomSuffix(rng, 5),
				phase: phase,
				node:  node,
			})
		}
	}

	logger.Info("Mock data source initialized",
		zap.Int64("seed", seed),
		zap.Int("jobs", len(mockJobs)),
		zap.Int("pods", len(pods)),
	)

	return &MockSource{
		logger: logger,
		now:    time.Now,
		pods:   pods,
	}
}

func randomSuffix(rng *rand.Rand, n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = mockSuffixAlphabet[rng.Intn(len(mockSuffixAlphabet))]
	}
	return string(b)
}

func (m *MockSource) clock() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	if m.origin.IsZero() {
		m.origin = now
	}
	return now
}

// FetchClusterSnapshot returns the synthetic namespace as of now
func (m *MockSource) FetchClusterSnapshot(ctx context.Context, namespace string) (*model.ClusterSnapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	now := m.clock()

	jobs := make([]model.JobRecord, len(mockJobs))
	for i, job := range mockJobs {
		start := now.Add(-job.startedAgo)
		var completion *time.Time
		if job.finishedAgo > 0 {
			t := now.Add(-job.finishedAgo)
			completion = &t
		}
		jobs[i] = model.JobRecord{
			Name:         job.name,
			Status:       model.DeriveJobStatus(job.active, job.succeeded, job.failed, 1),
			Owner:        OwnerFromImage(job.image),
			Completions:  fmt.Sprintf("%d/1", job.succeeded),
			DurationText: model.JobDurationText(&start, completion, now),
			GPURequest:   job.gpu,
			GPUType:      job.gpuType,
			Pods:         []model.PodRecord{},
		}
	}

	var requested int64
	for _, p := range m.pods {
		jobs[p.job].Pods = append(jobs[p.job].Pods, model.PodRecord{Name: p.name, Phase: p.phase, NodeName: p.node})
		if p.phase == model.PodRunning {
			requested += mockJobs[p.job].gpu
		}
	}
	for i := range jobs {
		sort.Slice(jobs[i].Pods, func(a, b int) bool { return jobs[i].Pods[a].Name < jobs[i].Pods[b].Name })
	}

	nodes := []model.GPUNode{
		{Name: "gpu-node-1", Product: "NVIDIA-A100-SXM4-80GB", Capacity: 8, Allocatable: 8},
		{Name: "gpu-node-2", Product: "NVIDIA-H100-80GB-HBM3", Capacity: 8, Allocatable: 7},
	}

	return &model.ClusterSnapshot{
		Namespace: namespace,
		Quota: model.QuotaInfo{
			CPU:    NewQuotaEntry("8", "16"),
			Memory: NewQuotaEntry("32Gi", "64Gi"),
			GPU:    NewQuotaEntry("2", "4"),
		},
		Jobs: jobs,
		GPUs: model.GPUInventory{
			Nodes:       nodes,
			Capacity:    16,
			Allocatable: 15,
			Requested:   requested,
		},
		FetchedAt: now,
	}, nil
}

// FetchPodLogs returns synthetic training output. Running pods gain a line
// every few seconds; finished pods have a fixed log ending in their result.
func (m *MockSource) FetchPodLogs(ctx context.Context, namespace, podID string, maxLines int) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	now := m.clock()

	var pod *mockPod
	for i := range m.pods {
		if m.pods[i].name == podID {
			pod = &m.pods[i]
			break
		}
	}
	if pod == nil {
		return nil, fmt.Errorf("%w: %s/%s", ErrUnknownPod, namespace, podID)
	}

	job := mockJobs[pod.job]
	start := now.Add(-job.startedAgo)

	total := mockFinishedLines
	if pod.phase == model.PodRunning {
		// a fixed backlog plus lines produced since the source started
		total = mockFinishedLines + int(now.Sub(m.origin)/mockLogEvery)
		if total > mockMaxLines {
			total = mockMaxLines
		}
	}

	first := 0
	if maxLines > 0 && total > maxLines {
		first = total - maxLines
	}

	lines := make([]string, 0, total-first)
	for i := first; i < total; i++ {
		lines = append(lines, mockLogLine(job, pod, start, i))
	}
	if pod.phase != model.PodRunning && len(lines) > 0 {
		lines[len(lines)-1] = mockResultLine(pod, start.Add(time.Duration(total)*time.Second))
	}
	return lines, nil
}

func mockLogLine(job mockJob, pod *mockPod, start time.Time, i int) string {
	ts := start.Add(time.Duration(i) * time.Second).UTC().Format(time.RFC3339)
	switch {
	case i == 0:
		return fmt.Sprintf("%s INFO starting %s on %s (image %s)", ts, pod.name, pod.node, job.image)
	case i%25 == 0:
		return fmt.Sprintf("%s INFO checkpoint saved step=%d", ts, i*10)
	default:
		loss := 2.5 / (1 + float64(i)/20)
		return fmt.Sprintf("%s INFO step=%d loss=%.4f", ts, i*10, loss)
	}
}

func mockResultLine(pod *mockPod, at time.Time) string {
	ts := at.UTC().Format(time.RFC3339)
	if pod.phase == model.PodSucceeded {
		return ts + " INFO job finished successfully"
	}
	return ts + " ERROR process exited with code 1"
}

// Name returns the data source name
func (m *MockSource) Name() string {
	return "mock"
}

// Close is a no-op
func (m *MockSource) Close() error {
	return nil
}
