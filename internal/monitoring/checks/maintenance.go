package checks

import (
	"context"
	"strings"
	"time"

	"github.com/bazaarhq/bazaar/internal/monitoring"
)

const defaultMaintenanceMaxAge = 36 * time.Hour

// Maintenance reports whether tracked background jobs keep succeeding. Jobs that
// failed on their latest run mark the probe down; jobs that have not run within
// maxAge degrade it.
func Maintenance(tracker *monitoring.JobTracker, maxAge time.Duration) monitoring.Check {
	if maxAge <= 0 {
		maxAge = defaultMaintenanceMaxAge
	}

	return monitoring.NewCheck("maintenance", func(ctx context.Context) monitoring.ProbeResult {
		jobs := tracker.Jobs()
		if len(jobs) == 0 {
			return monitoring.ProbeResult{Status: monitoring.StatusUp, Details: "no maintenance runs recorded"}
		}

		now := time.Now()
		status := monitoring.StatusUp
		var problems []string

		for _, job := range jobs {
			if job.ConsecutiveFailures > 0 {
				status = worstStatus(status, monitoring.StatusDown)
				problems = append(problems, job.Job+": "+job.LastError)
				continue
			}
			if now.Sub(job.LastRunAt) > maxAge {
				status = worstStatus(status, monitoring.StatusDegraded)
				problems = append(problems, job.Job+": stale run "+job.LastRunAt.UTC().Format(time.RFC3339))
			}
		}

		return monitoring.ProbeResult{Status: status, Details: strings.Join(problems, "; ")}
	})
}

func worstStatus(current, candidate monitoring.ProbeStatus) monitoring.ProbeStatus {
	if current == monitoring.StatusDown || candidate == monitoring.StatusDown {
		return monitoring.StatusDown
	}
	if current == monitoring.StatusDegraded || candidate == monitoring.StatusDegraded {
		return monitoring.StatusDegraded
	}
	return monitoring.StatusUp
}
