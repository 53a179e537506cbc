package datasource

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/yourusername/kubmonitor/internal/diagnostic"
	"github.com/yourusername/kubmonitor/internal/model"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	batchv1 "k8s.io/api/batch/v1"
	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"
)

// APIServerClient implements DataSource using Kubernetes API Server
type APIServerClient struct {
	clientset kubernetes.Interface
	logger    *zap.Logger

	// now is replaced in tests
	now func() time.Time
}

// NewAPIServerClient creates a new API Server client
func NewAPIServerClient(kubeconfig, context string, logger *zap.Logger) (*APIServerClient, error) {
	config, err := LoadRESTConfig(kubeconfig, context)
	if err != nil {
		return nil, err
	}

	// Create clientset
	clientset, err := kubernetes.NewForConfig(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create kubernetes clientset: %w", err)
	}

	client := NewAPIServerClientForClientset(clientset, logger)

	logger.Info("API Server client initialized",
		zap.String("host", config.Host),
	)

	return client, nil
}

// NewAPIServerClientForClientset wraps an existing clientset
func NewAPIServerClientForClientset(clientset kubernetes.Interface, logger *zap.Logger) *APIServerClient {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &APIServerClient{
		clientset: clientset,
		logger:    logger,
		now:       time.Now,
	}
}

// LoadRESTConfig resolves the cluster connection: an explicit kubeconfig
// path, else in-cluster config, else the default kubeconfig location.
func LoadRESTConfig(kubeconfig, context string) (*rest.Config, error) {
	configOverrides := &clientcmd.ConfigOverrides{}
	if context != "" {
		configOverrides.CurrentContext = context
	}

	if kubeconfig != "" {
		loadingRules := &clientcmd.ClientConfigLoadingRules{ExplicitPath: kubeconfig}
		config, err := clientcmd.NewNonInteractiveDeferredLoadingClientConfig(
			loadingRules,
			configOverrides,
		).ClientConfig()
		if err != nil {
			return nil, fmt.Errorf("failed to load kubeconfig from %s: %w", kubeconfig, err)
		}
		return config, nil
	}

	// Try in-cluster config first, unless a context was asked for
	if context == "" {
		if config, err := rest.InClusterConfig(); err == nil {
			return config, nil
		}
	}

	// Fall back to default kubeconfig location
	loadingRules := clientcmd.NewDefaultClientConfigLoadingRules()
	config, err := clientcmd.NewNonInteractiveDeferredLoadingClientConfig(
		loadingRules,
		configOverrides,
	).ClientConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load kubeconfig: %w", err)
	}
	return config, nil
}

// FetchClusterSnapshot lists jobs, pods, quotas and nodes concurrently and
// assembles them into one snapshot. Any failure except a forbidden node
// list fails the whole snapshot.
func (c *APIServerClient) FetchClusterSnapshot(ctx context.Context, namespace string) (*model.ClusterSnapshot, error) {
	c.logger.Debug("Fetching cluster snapshot from API Server",
		zap.String("namespace", namespace),
	)

	var (
		jobs   *batchv1.JobList
		pods   *corev1.PodList
		quotas *corev1.ResourceQuotaList
		nodes  *corev1.NodeList
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		jobs, err = c.clientset.BatchV1().Jobs(namespace).List(gctx, metav1.ListOptions{})
		if err != nil {
			return fmt.Errorf("failed to list jobs: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		pods, err = c.clientset.CoreV1().Pods(namespace).List(gctx, metav1.ListOptions{})
		if err != nil {
			return fmt.Errorf("failed to list pods: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		quotas, err = c.clientset.CoreV1().ResourceQuotas(namespace).List(gctx, metav1.ListOptions{})
		if err != nil {
			return fmt.Errorf("failed to list resource quotas: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		nodes, err = c.clientset.CoreV1().Nodes().List(gctx, metav1.ListOptions{})
		if err != nil {
			// Namespace-scoped users usually cannot list nodes
			if apierrors.IsForbidden(err) {
				c.logger.Debug("Node list forbidden, GPU inventory disabled", zap.Error(err))
				nodes = &corev1.NodeList{}
				return nil
			}
			return fmt.Errorf("failed to list nodes: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	now := c.now()
	records := make([]model.JobRecord, 0, len(jobs.Items))
	for i := range jobs.Items {
		records = append(records, ConvertJob(&jobs.Items[i], now))
	}
	sort.Slice(records, func(a, b int) bool { return records[a].Name < records[b].Name })
	AttachPods(records, pods.Items)

	snap := &model.ClusterSnapshot{
		Namespace: namespace,
		Quota:     ConvertQuota(quotas.Items),
		Jobs:      records,
		GPUs:      ConvertGPUNodes(nodes.Items, pods.Items),
		FetchedAt: now,
	}

	c.logger.Debug("Cluster snapshot fetched successfully",
		zap.Int("jobs", len(snap.Jobs)),
		zap.Int("pods", snap.PodCount()),
		zap.Int("gpu_nodes", len(snap.GPUs.Nodes)),
	)
	return snap, nil
}

// FetchPodLogs retrieves the trailing log lines of the pod's first container
func (c *APIServerClient) FetchPodLogs(ctx context.Context, namespace, podID string, maxLines int) ([]string, error) {
	tailLines := int64(maxLines)
	c.logger.Debug("Fetching pod logs",
		zap.String("namespace", namespace),
		zap.String("pod", podID),
		zap.Int64("tailLines", tailLines),
	)

	pod, err := c.clientset.CoreV1().Pods(namespace).Get(ctx, podID, metav1.GetOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get pod: %w", err)
	}

	opts := &corev1.PodLogOptions{}
	if len(pod.Spec.Containers) > 0 {
		opts.Container = pod.Spec.Containers[0].Name
	}
	if tailLines > 0 {
		opts.TailLines = &tailLines
	}

	req := c.clientset.CoreV1().Pods(namespace).GetLogs(podID, opts)
	logStream, err := req.Stream(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get log stream: %w", err)
	}
	defer logStream.Close()

	// Read logs from stream
	var buf strings.Builder
	_, err = io.Copy(&buf, logStream)
	if err != nil {
		return nil, fmt.Errorf("failed to read logs: %w", err)
	}

	lines := SplitLogLines(buf.String())
	if maxLines > 0 && len(lines) > maxLines {
		lines = lines[len(lines)-maxLines:]
	}
	return lines, nil
}

// CheckAccess verifies the current identity may perform every read the
// dashboard issues in namespace.
func (c *APIServerClient) CheckAccess(ctx context.Context, namespace string) (*diagnostic.AccessReport, error) {
	c.logger.Debug("Checking RBAC access", zap.String("namespace", namespace))
	return diagnostic.CheckAccess(ctx, c.clientset.AuthorizationV1(), namespace)
}

// Name returns the data source name
func (c *APIServerClient) Name() string {
	return "apiserver"
}

// Close closes the client
func (c *APIServerClient) Close() error {
	c.logger.Debug("Closing API Server client")
	return nil
}
