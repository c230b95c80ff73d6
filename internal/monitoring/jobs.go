package monitoring

import (
	"sort"
	"sync"
	"time"

	"github.com/bazaarhq/bazaar/pkg/metrics"
)

// JobStatus summarises the run history of a background job.
type JobStatus struct {
	Job                 string    `json:"job"`
	TotalRuns           uint64    `json:"total_runs"`
	ConsecutiveFailures uint64    `json:"consecutive_failures"`
	LastResult          string    `json:"last_result"`
	LastError           string    `json:"last_error,omitempty"`
	LastRunAt           time.Time `json:"last_run_at"`
}

// JobTracker records maintenance job outcomes for health probes and metrics.
type JobTracker struct {
	mu   sync.Mutex
	jobs map[string]*JobStatus
	now  func() time.Time
}

// NewJobTracker constructs an empty tracker.
func NewJobTracker() *JobTracker {
	return &JobTracker{jobs: make(map[string]*JobStatus), now: time.Now}
}

// Record stores the outcome of a single job run. A nil err counts as success.
func (t *JobTracker) Record(job string, err error, duration time.Duration) {
	if t == nil || job == "" {
		return
	}

	result := "success"
	if err != nil {
		result = "failure"
	}
	metrics.MaintenanceRuns.WithLabelValues(job, result).Inc()
	metrics.MaintenanceDuration.WithLabelValues(job).Observe(duration.Seconds())

	t.mu.Lock()
	defer t.mu.Unlock()

	status, ok := t.jobs[job]
	if !ok {
		status = &JobStatus{Job: job}
		t.jobs[job] = status
	}
	status.TotalRuns++
	status.LastResult = result
	status.LastRunAt = t.now()
	if err != nil {
		status.ConsecutiveFailures++
		status.LastError = err.Error()
	} else {
		status.ConsecutiveFailures = 0
		status.LastError = ""
	}
}

// Jobs returns a snapshot sorted by job name.
func (t *JobTracker) Jobs() []JobStatus {
	if t == nil {
		return nil
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]JobStatus, 0, len(t.jobs))
	for _, status := range t.jobs {
		out = append(out, *status)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Job < out[j].Job })
	return out
}
