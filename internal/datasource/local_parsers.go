package datasource

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
)

// cpuTimes holds cumulative jiffies from one /proc/stat cpu line
type cpuTimes struct {
	total uint64
	idle  uint64
}

// busyPercent returns the busy share of the interval between prev and t
func (t cpuTimes) busyPercent(prev cpuTimes) float64 {
	if t.total <= prev.total {
		return 0
	}
	dTotal := t.total - prev.total
	dIdle := uint64(0)
	if t.idle > prev.idle {
		dIdle = t.idle - prev.idle
	}
	if dIdle > dTotal {
		return 0
	}
	return float64(dTotal-dIdle) / float64(dTotal) * 100
}

// parseProcStat reads the aggregate and per-core cpu lines of /proc/stat
func parseProcStat(procStat string) (cpuTimes, []cpuTimes, error) {
	var total cpuTimes
	var cores []cpuTimes
	foundTotal := false

	scanner := bufio.NewScanner(strings.NewReader(procStat))
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "cpu") {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) < 5 {
			return cpuTimes{}, nil, fmt.Errorf("invalid /proc/stat cpu line: %s", line)
		}

		// Fields: cpu user nice system idle iowait irq softirq steal guest guest_nice
		var t cpuTimes
		for i := 1; i < len(fields); i++ {
			// guest time is already included in user
			if i >= 9 {
				break
			}
			val, err := strconv.ParseUint(fields[i], 10, 64)
			if err != nil {
				return cpuTimes{}, nil, fmt.Errorf("failed to parse cpu field %d: %w", i, err)
			}
			t.total += val
			if i == 4 || i == 5 {
				t.idle += val
			}
		}

		if fields[0] == "cpu" {
			total = t
			foundTotal = true
		} else {
			cores = append(cores, t)
		}
	}

	if err := scanner.Err(); err != nil {
		return cpuTimes{}, nil, fmt.Errorf("error scanning /proc/stat: %w", err)
	}
	if !foundTotal {
		return cpuTimes{}, nil, fmt.Errorf("no aggregate cpu line in /proc/stat")
	}
	return total, cores, nil
}

// parseMeminfo returns the used memory percent from /proc/meminfo:
// (MemTotal - MemAvailable) / MemTotal.
func parseMeminfo(procMeminfo string) (float64, error) {
	var memTotal, memAvailable, memFree, buffers, cached int64
	haveAvailable := false

	scanner := bufio.NewScanner(strings.NewReader(procMeminfo))
	for scanner.Scan() {
		parts := strings.Fields(scanner.Text())
		if len(parts) < 2 {
			continue
		}
		key := strings.TrimSuffix(parts[0], ":")
		val, err := strconv.ParseInt(parts[1], 10, 64)
		if err != nil {
			continue
		}

		switch key {
		case "MemTotal":
			memTotal = val
		case "MemAvailable":
			memAvailable = val
			haveAvailable = true
		case "MemFree":
			memFree = val
		case "Buffers":
			buffers = val
		case "Cached":
			cached = val
		}
	}
	if err := scanner.Err(); err != nil {
		return 0, fmt.Errorf("error scanning /proc/meminfo: %w", err)
	}
	if memTotal <= 0 {
		return 0, fmt.Errorf("no MemTotal in /proc/meminfo")
	}

	// kernels before 3.14 have no MemAvailable
	if !haveAvailable {
		memAvailable = memFree + buffers + cached
	}
	used := memTotal - memAvailable
	if used < 0 {
		used = 0
	}
	return float64(used) / float64(memTotal) * 100, nil
}

// parseGPUUtilization joins the per-GPU rows of
// `nvidia-smi --query-gpu=utilization.gpu --format=csv,noheader`.
func parseGPUUtilization(output string) (string, error) {
	r := csv.NewReader(strings.NewReader(output))
	r.TrimLeadingSpace = true
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return "", fmt.Errorf("parsing nvidia-smi output: %w", err)
	}

	values := make([]string, 0, len(records))
	for _, record := range records {
		if len(record) == 0 {
			continue
		}
		v := strings.TrimSpace(record[0])
		if v != "" {
			values = append(values, v)
		}
	}
	if len(values) == 0 {
		return "", fmt.Errorf("nvidia-smi reported no GPUs")
	}
	return strings.Join(values, ", "), nil
}
