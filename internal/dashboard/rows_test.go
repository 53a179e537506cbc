package dashboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/kubmonitor/internal/model"
)

func threeJobs() []model.JobRecord {
	return []model.JobRecord{
		{
			Name: "job1", Status: model.JobRunning, Owner: "alice", Completions: "0/1",
			DurationText: "2h (Run)", GPURequest: 2, GPUType: "A100",
			Pods: []model.PodRecord{{Name: "job1-aaaaa", Phase: model.PodRunning, NodeName: "gpu-node-1"}},
		},
		{
			Name: "job2", Status: model.JobCompleted, Owner: "bob", Completions: "1/1",
			DurationText: "45m", GPURequest: 1,
			Pods: []model.PodRecord{
				{Name: "job2-bbbbb", Phase: model.PodSucceeded},
				{Name: "job2-ccccc", Phase: model.PodFailed},
			},
		},
		{
			Name: "job3", Status: model.JobFailed, Owner: "carol", Completions: "0/1",
			DurationText: "-",
		},
	}
}

func TestBuildRowsScenario(t *testing.T) {
	rows := BuildRows(threeJobs())
	require.Len(t, rows, 6)

	names := make([]string, len(rows))
	for i, r := range rows {
		names[i] = r.Name
	}
	assert.Equal(t, []string{"job1", "job1-aaaaa", "job2", "job2-bbbbb", "job2-ccccc", "job3"}, names)

	kinds := []RowKind{RowJob, RowPod, RowJob, RowPod, RowPod, RowJob}
	for i, r := range rows {
		assert.Equal(t, kinds[i], r.Kind, "row %d", i)
	}

	// pod identifiers only on pod rows
	assert.Empty(t, rows[0].PodID)
	assert.Equal(t, "job1-aaaaa", rows[1].PodID)
	assert.Equal(t, "job2-ccccc", rows[4].PodID)
	assert.Empty(t, rows[5].PodID)

	// tree prefixes
	assert.Equal(t, "  └── job1-aaaaa", rows[1].Label)
	assert.Equal(t, "  ├── job2-bbbbb", rows[3].Label)
	assert.Equal(t, "  └── job2-ccccc", rows[4].Label)
	assert.True(t, rows[4].TreeLast)
	assert.False(t, rows[3].TreeLast)

	// job columns
	assert.Equal(t, "2xA100", rows[0].GPUText)
	assert.Equal(t, "1", rows[2].GPUText)
	assert.Equal(t, "-", rows[5].GPUText)
	assert.Equal(t, "alice", rows[0].OwnerText)
	assert.Equal(t, "0/1", rows[0].CompletionsText)
	assert.Equal(t, "2h (Run)", rows[0].DurationText)
	assert.Equal(t, "gpu-node-1", rows[1].NodeName)
	assert.Equal(t, "job2", rows[4].JobName)
}

func TestBuildRowsLengthAndContiguity(t *testing.T) {
	jobs := []model.JobRecord{}
	for j := 0; j < 7; j++ {
		job := model.JobRecord{Name: string(rune('a' + j))}
		for p := 0; p < j%4; p++ {
			job.Pods = append(job.Pods, model.PodRecord{Name: job.Name + "-" + string(rune('0'+p))})
		}
		jobs = append(jobs, job)
	}

	rows := BuildRows(jobs)

	want := 0
	for _, j := range jobs {
		want += 1 + len(j.Pods)
	}
	require.Len(t, rows, want)

	i := 0
	for _, job := range jobs {
		require.Equal(t, RowJob, rows[i].Kind)
		require.Equal(t, job.Name, rows[i].Name)
		i++
		for _, pod := range job.Pods {
			require.Equal(t, RowPod, rows[i].Kind)
			require.Equal(t, pod.Name, rows[i].PodID)
			require.Equal(t, job.Name, rows[i].JobName)
			i++
		}
	}
}

func TestBuildRowsEmpty(t *testing.T) {
	assert.Empty(t, BuildRows(nil))
	assert.Empty(t, BuildRows([]model.JobRecord{}))
}

func TestSeverity(t *testing.T) {
	assert.Equal(t, SeveritySuccess, JobSeverity(model.JobCompleted))
	assert.Equal(t, SeverityError, JobSeverity(model.JobFailed))
	assert.Equal(t, SeverityWarning, JobSeverity(model.JobRunning))
	assert.Equal(t, SeverityWarning, JobSeverity(model.JobPending))

	assert.Equal(t, SeveritySuccess, PodSeverity(model.PodRunning))
	assert.Equal(t, SeverityNeutral, PodSeverity(model.PodSucceeded))
	assert.Equal(t, SeverityNeutral, PodSeverity(model.PodPending))
}

func TestGPUText(t *testing.T) {
	assert.Equal(t, "-", GPUText(0, "A100"))
	assert.Equal(t, "4xH100", GPUText(4, "H100"))
	assert.Equal(t, "3", GPUText(3, ""))
}
