package datasource

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/yourusername/kubmonitor/internal/model"
	batchv1 "k8s.io/api/batch/v1"
	corev1 "k8s.io/api/core/v1"
)

const (
	// GPUProductLabel is set by the NVIDIA GPU feature discovery on nodes
	// and used as a nodeSelector by jobs that pin a GPU model.
	GPUProductLabel = "nvidia.com/gpu.product"

	unknownOwner = "Unknown"
)

// Helper functions to convert Kubernetes API objects to internal models

// ConvertJob converts a Kubernetes Job to a JobRecord without pods
func ConvertJob(job *batchv1.Job, now time.Time) model.JobRecord {
	completions := int32(1)
	if job.Spec.Completions != nil {
		completions = *job.Spec.Completions
	}

	var start, completion *time.Time
	if job.Status.StartTime != nil {
		t := job.Status.StartTime.Time
		start = &t
	}
	if job.Status.CompletionTime != nil {
		t := job.Status.CompletionTime.Time
		completion = &t
	}

	podSpec := &job.Spec.Template.Spec
	return model.JobRecord{
		Name:         job.Name,
		Status:       model.DeriveJobStatus(job.Status.Active, job.Status.Succeeded, job.Status.Failed, completions),
		Owner:        ownerFromPodSpec(podSpec),
		Completions:  strconv.Itoa(int(job.Status.Succeeded)) + "/" + strconv.Itoa(int(completions)),
		DurationText: model.JobDurationText(start, completion, now),
		GPURequest:   PodSpecGPURequest(podSpec),
		GPUType:      podSpec.NodeSelector[GPUProductLabel],
		Pods:         []model.PodRecord{},
	}
}

func ownerFromPodSpec(spec *corev1.PodSpec) string {
	if len(spec.Containers) == 0 {
		return unknownOwner
	}
	return OwnerFromImage(spec.Containers[0].Image)
}

// OwnerFromImage guesses the submitting user from a container image:
// the registry/namespace segment when present, else the bare image name.
func OwnerFromImage(image string) string {
	if image == "" {
		return unknownOwner
	}
	if i := strings.Index(image, "/"); i >= 0 {
		return image[:i]
	}
	if i := strings.Index(image, ":"); i >= 0 {
		return image[:i]
	}
	return image
}

// IsGPUResource reports whether a resource name is an extended GPU resource
// such as nvidia.com/gpu or amd.com/gpu.
func IsGPUResource(name corev1.ResourceName) bool {
	return strings.HasSuffix(string(name), "/gpu")
}

// PodSpecGPURequest sums GPU requests over all containers, falling back to
// limits when a container only sets limits.
func PodSpecGPURequest(spec *corev1.PodSpec) int64 {
	var total int64
	for i := range spec.Containers {
		res := spec.Containers[i].Resources
		found := false
		for name, q := range res.Requests {
			if IsGPUResource(name) {
				total += q.Value()
				found = true
			}
		}
		if found {
			continue
		}
		for name, q := range res.Limits {
			if IsGPUResource(name) {
				total += q.Value()
			}
		}
	}
	return total
}

// ConvertPhase maps a Kubernetes pod phase to the model phase
func ConvertPhase(phase corev1.PodPhase) model.PodPhase {
	switch phase {
	case corev1.PodPending:
		return model.PodPending
	case corev1.PodRunning:
		return model.PodRunning
	case corev1.PodSucceeded:
		return model.PodSucceeded
	case corev1.PodFailed:
		return model.PodFailed
	default:
		return model.PodUnknown
	}
}

// AttachPods assigns each pod to the job with the longest name N such that
// the pod name starts with N + "-". Pods matching no job are dropped. Pods
// inside a job are ordered by name.
func AttachPods(jobs []model.JobRecord, pods []corev1.Pod) {
	for i := range pods {
		pod := &pods[i]
		best := -1
		for j := range jobs {
			prefix := jobs[j].Name + "-"
			if !strings.HasPrefix(pod.Name, prefix) {
				continue
			}
			if best < 0 || len(jobs[j].Name) > len(jobs[best].Name) {
				best = j
			}
		}
		if best < 0 {
			continue
		}
		jobs[best].Pods = append(jobs[best].Pods, model.PodRecord{
			Name:     pod.Name,
			Phase:    ConvertPhase(pod.Status.Phase),
			NodeName: pod.Spec.NodeName,
		})
	}

	for j := range jobs {
		sort.Slice(jobs[j].Pods, func(a, b int) bool {
			return jobs[j].Pods[a].Name < jobs[j].Pods[b].Name
		})
	}
}

// ConvertQuota folds the namespace's ResourceQuota objects into the three
// dashboard rows. limits.* entries are ignored; a later quota overrides an
// earlier one for the same row.
func ConvertQuota(quotas []corev1.ResourceQuota) model.QuotaInfo {
	info := model.EmptyQuota()

	for i := range quotas {
		q := &quotas[i]
		names := make([]string, 0, len(q.Status.Hard))
		for name := range q.Status.Hard {
			names = append(names, string(name))
		}
		sort.Strings(names)

		for _, name := range names {
			if strings.HasPrefix(name, "limits.") {
				continue
			}
			var entry *model.QuotaEntry
			switch {
			case name == "requests.cpu" || name == "cpu":
				entry = &info.CPU
			case name == "requests.memory" || name == "memory":
				entry = &info.Memory
			case strings.Contains(name, "gpu"):
				entry = &info.GPU
			default:
				continue
			}

			hard := q.Status.Hard[corev1.ResourceName(name)]
			used := q.Status.Used[corev1.ResourceName(name)]
			*entry = NewQuotaEntry(used.String(), hard.String())
		}
	}
	return info
}

// NewQuotaEntry formats a quota row. The percentage is only computed when
// both values are plain integers and the limit is positive.
func NewQuotaEntry(used, limit string) model.QuotaEntry {
	entry := model.QuotaEntry{Used: used, Limit: limit, Text: used + " / " + limit}

	u, errU := strconv.ParseInt(used, 10, 64)
	l, errL := strconv.ParseInt(limit, 10, 64)
	if errU == nil && errL == nil && l > 0 {
		entry.Percent = float64(u) / float64(l) * 100
		entry.HasPercent = true
	}
	return entry
}

// ConvertGPUNodes builds the GPU inventory from nodes exposing a GPU
// resource. Requested counts GPUs asked for by pods that are not finished.
func ConvertGPUNodes(nodes []corev1.Node, pods []corev1.Pod) model.GPUInventory {
	inv := model.GPUInventory{Nodes: []model.GPUNode{}}

	for i := range nodes {
		node := &nodes[i]
		capacity := gpuQuantity(node.Status.Capacity)
		if capacity == 0 {
			continue
		}
		gn := model.GPUNode{
			Name:        node.Name,
			Product:     node.Labels[GPUProductLabel],
			Capacity:    capacity,
			Allocatable: gpuQuantity(node.Status.Allocatable),
		}
		inv.Nodes = append(inv.Nodes, gn)
		inv.Capacity += gn.Capacity
		inv.Allocatable += gn.Allocatable
	}
	sort.Slice(inv.Nodes, func(a, b int) bool { return inv.Nodes[a].Name < inv.Nodes[b].Name })

	for i := range pods {
		switch pods[i].Status.Phase {
		case corev1.PodSucceeded, corev1.PodFailed:
			continue
		}
		inv.Requested += PodSpecGPURequest(&pods[i].Spec)
	}
	return inv
}

func gpuQuantity(list corev1.ResourceList) int64 {
	var total int64
	for name, q := range list {
		if IsGPUResource(name) {
			total += q.Value()
		}
	}
	return total
}

// SplitLogLines splits raw log output into lines, dropping the empty
// trailing line left by a final newline.
func SplitLogLines(raw string) []string {
	if raw == "" {
		return []string{}
	}
	raw = strings.TrimSuffix(raw, "\n")
	lines := strings.Split(raw, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}
