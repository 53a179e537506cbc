package dashboard

import (
	"strconv"

	"github.com/yourusername/kubmonitor/internal/model"
)

// RowKind distinguishes job rows from pod rows
type RowKind int

const (
	RowJob RowKind = iota
	RowPod
)

// Severity classifies a status for coloring
type Severity int

const (
	SeverityNeutral Severity = iota
	SeveritySuccess
	SeverityWarning
	SeverityError
)

// Tree prefixes drawn in front of pod labels
const (
	treeBranch = "├── "
	treeLast   = "└── "
	treeIndent = "  "
)

// DisplayRow is one flattened, renderable line of the job table
type DisplayRow struct {
	Kind RowKind
	// Label is the text of the name column, tree prefix included for pods
	Label string
	// Name is the bare job or pod name
	Name            string
	JobName         string
	OwnerText       string
	StatusText      string
	Severity        Severity
	GPUText         string
	CompletionsText string
	DurationText    string
	// PodID is set only on pod rows
	PodID    string
	NodeName string
	// TreeLast marks the final pod of a job
	TreeLast bool
}

// IsPod reports whether the row refers to a pod
func (r DisplayRow) IsPod() bool {
	return r.Kind == RowPod
}

// BuildRows flattens jobs into display rows: each job row is immediately
// followed by its pods, in order. Empty input yields an empty slice.
func BuildRows(jobs []model.JobRecord) []DisplayRow {
	total := len(jobs)
	for i := range jobs {
		total += len(jobs[i].Pods)
	}
	rows := make([]DisplayRow, 0, total)

	for i := range jobs {
		job := &jobs[i]
		rows = append(rows, DisplayRow{
			Kind:            RowJob,
			Label:           job.Name,
			Name:            job.Name,
			JobName:         job.Name,
			OwnerText:       job.Owner,
			StatusText:      string(job.Status),
			Severity:        JobSeverity(job.Status),
			GPUText:         GPUText(job.GPURequest, job.GPUType),
			CompletionsText: job.Completions,
			DurationText:    job.DurationText,
		})

		for j, pod := range job.Pods {
			last := j == len(job.Pods)-1
			prefix := treeBranch
			if last {
				prefix = treeLast
			}
			rows = append(rows, DisplayRow{
				Kind:       RowPod,
				Label:      treeIndent + prefix + pod.Name,
				Name:       pod.Name,
				JobName:    job.Name,
				StatusText: string(pod.Phase),
				Severity:   PodSeverity(pod.Phase),
				PodID:      pod.Name,
				NodeName:   pod.NodeName,
				TreeLast:   last,
			})
		}
	}
	return rows
}

// GPUText renders a GPU request: "-" for none, "2xA100" when the type is
// known, the bare count otherwise.
func GPUText(request int64, gpuType string) string {
	if request <= 0 {
		return "-"
	}
	if gpuType != "" {
		return strconv.FormatInt(request, 10) + "x" + gpuType
	}
	return strconv.FormatInt(request, 10)
}

// JobSeverity maps Completed to success, Failed to error, anything else to warning
func JobSeverity(status model.JobStatus) Severity {
	switch status {
	case model.JobCompleted:
		return SeveritySuccess
	case model.JobFailed:
		return SeverityError
	default:
		return SeverityWarning
	}
}

// PodSeverity maps Running to success, anything else to neutral
func PodSeverity(phase model.PodPhase) Severity {
	if phase == model.PodRunning {
		return SeveritySuccess
	}
	return SeverityNeutral
}
