package model

import "time"

// PodPhase mirrors the Kubernetes pod phase
type PodPhase string

const (
	PodPending   PodPhase = "Pending"
	PodRunning   PodPhase = "Running"
	PodSucceeded PodPhase = "Succeeded"
	PodFailed    PodPhase = "Failed"
	PodUnknown   PodPhase = "Unknown"
)

// JobStatus is the status derived from a job's counters (see DeriveJobStatus)
type JobStatus string

const (
	JobPending   JobStatus = "Pending"
	JobRunning   JobStatus = "Running"
	JobCompleted JobStatus = "Completed"
	JobFailed    JobStatus = "Failed"
)

// PodRecord is a single pod belonging to a job
type PodRecord struct {
	Name     string   `json:"name"`
	Phase    PodPhase `json:"phase"`
	NodeName string   `json:"nodeName,omitempty"`
}

// JobRecord is a job with its pods, already formatted for display.
// Pods are attributed by name prefix: a pod belongs to the job whose
// name followed by "-" is the longest prefix of the pod name.
type JobRecord struct {
	Name         string      `json:"name"`
	Status       JobStatus   `json:"status"`
	Owner        string      `json:"owner"`
	Completions  string      `json:"completions"`
	DurationText string      `json:"duration"`
	GPURequest   int64       `json:"gpuRequest"`
	GPUType      string      `json:"gpuType,omitempty"`
	Pods         []PodRecord `json:"pods"`
}

// QuotaEntry is one row of the namespace quota panel
type QuotaEntry struct {
	Used    string  `json:"used"`
	Limit   string  `json:"limit"`
	Text    string  `json:"text"`
	Percent float64 `json:"percent,omitempty"`
	// HasPercent is false when used/limit are not plain integers
	HasPercent bool `json:"hasPercent"`
}

// QuotaInfo holds the namespace ResourceQuota summary
type QuotaInfo struct {
	CPU    QuotaEntry `json:"cpu"`
	Memory QuotaEntry `json:"memory"`
	GPU    QuotaEntry `json:"gpu"`
}

// EmptyQuotaEntry returns the placeholder used when no quota is defined
func EmptyQuotaEntry() QuotaEntry {
	return QuotaEntry{Used: "0", Limit: "0", Text: "0/0"}
}

// EmptyQuota returns a QuotaInfo with every row set to the placeholder
func EmptyQuota() QuotaInfo {
	return QuotaInfo{CPU: EmptyQuotaEntry(), Memory: EmptyQuotaEntry(), GPU: EmptyQuotaEntry()}
}

// GPUNode describes the accelerators exposed by one node
type GPUNode struct {
	Name        string `json:"name"`
	Product     string `json:"product,omitempty"`
	Capacity    int64  `json:"capacity"`
	Allocatable int64  `json:"allocatable"`
}

// GPUInventory summarizes GPU capacity visible to the namespace
type GPUInventory struct {
	Nodes       []GPUNode `json:"nodes"`
	Capacity    int64     `json:"capacity"`
	Allocatable int64     `json:"allocatable"`
	// Requested counts GPUs requested by non-terminal pods in the namespace
	Requested int64 `json:"requested"`
}

// ClusterSnapshot is produced atomically once per refresh and is never
// patched in place; a refresh either replaces it or leaves it untouched.
type ClusterSnapshot struct {
	Namespace string       `json:"namespace"`
	Quota     QuotaInfo    `json:"quota"`
	Jobs      []JobRecord  `json:"jobs"`
	GPUs      GPUInventory `json:"gpus"`
	FetchedAt time.Time    `json:"fetchedAt"`
}

// PodCount returns the number of pods across all jobs
func (s *ClusterSnapshot) PodCount() int {
	if s == nil {
		return 0
	}
	n := 0
	for i := range s.Jobs {
		n += len(s.Jobs[i].Pods)
	}
	return n
}

// LocalMetrics is a sample of the machine running the dashboard
type LocalMetrics struct {
	CPUTotalPercent float64
	CPUPerCore      []float64
	MemPercent      float64
	AcceleratorText string
}
