package model

import (
	"fmt"
	"time"
)

// DurationPlaceholder is shown when a job has no usable start time
const DurationPlaceholder = "-"

// runningSuffix marks a duration that is still growing
const runningSuffix = " (Run)"

// DeriveJobStatus maps job counters to a JobStatus.
// Precedence is fixed: completion, then activity, then failure.
// completions <= 0 is treated as the Kubernetes default of 1.
func DeriveJobStatus(active, succeeded, failed, completions int32) JobStatus {
	if completions <= 0 {
		completions = 1
	}
	switch {
	case succeeded >= completions:
		return JobCompleted
	case active > 0:
		return JobRunning
	case failed > 0:
		return JobFailed
	default:
		return JobPending
	}
}

// FormatDuration renders whole seconds by magnitude:
// "45s", "2m", "1h 1m", "1d 1h", "1w 1d". Zero trailing units are omitted.
func FormatDuration(seconds int64) string {
	if seconds < 0 {
		seconds = 0
	}
	const (
		minute = 60
		hour   = 60 * minute
		day    = 24 * hour
		week   = 7 * day
	)

	switch {
	case seconds < minute:
		return fmt.Sprintf("%ds", seconds)
	case seconds < hour:
		return fmt.Sprintf("%dm", seconds/minute)
	case seconds < day:
		return joinUnits(seconds/hour, "h", (seconds%hour)/minute, "m")
	case seconds < week:
		return joinUnits(seconds/day, "d", (seconds%day)/hour, "h")
	default:
		return joinUnits(seconds/week, "w", (seconds%week)/day, "d")
	}
}

func joinUnits(major int64, majorUnit string, minor int64, minorUnit string) string {
	if minor == 0 {
		return fmt.Sprintf("%d%s", major, majorUnit)
	}
	return fmt.Sprintf("%d%s %d%s", major, majorUnit, minor, minorUnit)
}

// JobDurationText formats the elapsed time of a job.
// A nil completion time means the job is still running: now is used as the
// end and " (Run)" is appended. A nil or zero start yields "-".
func JobDurationText(start, completion *time.Time, now time.Time) string {
	if start == nil || start.IsZero() {
		return DurationPlaceholder
	}

	end := now
	running := true
	if completion != nil && !completion.IsZero() {
		end = *completion
		running = false
	}

	text := FormatDuration(int64(end.Sub(*start) / time.Second))
	if running {
		text += runningSuffix
	}
	return text
}
