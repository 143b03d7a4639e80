package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/openclaw/dashd/pkg/models"
	"github.com/sirupsen/logrus"
)

// jobsFile mirrors the on-disk cron/jobs.json schema.
type jobsFile struct {
	Jobs []struct {
		ID       string `json:"id"`
		Name     string `json:"name"`
		Enabled  bool   `json:"enabled"`
		Schedule struct {
			Kind    string `json:"kind"`
			Expr    string `json:"expr"`
			EveryMs int64  `json:"everyMs"`
		} `json:"schedule"`
		State struct {
			LastRunAtMs       int64  `json:"lastRunAtMs"`
			NextRunAtMs       int64  `json:"nextRunAtMs"`
			LastStatus        string `json:"lastStatus"`
			LastDurationMs    int64  `json:"lastDurationMs"`
			ConsecutiveErrors int    `json:"consecutiveErrors"`
			LastError         string `json:"lastError"`
		} `json:"state"`
	} `json:"jobs"`
}

// JobsCollector reads the workspace's cron job definitions periodically.
// It is read-only; job actuation belongs to the workspace runtime.
type JobsCollector struct {
	path     string
	interval time.Duration
	logger   *logrus.Entry
}

// NewJobsCollector creates a collector for <workspace>/cron/jobs.json.
func NewJobsCollector(workspaceRoot string, interval time.Duration, logger *logrus.Entry) *JobsCollector {
	if interval == 0 {
		interval = 30 * time.Second
	}
	return &JobsCollector{
		path:     filepath.Join(workspaceRoot, "cron", "jobs.json"),
		interval: interval,
		logger:   logger,
	}
}

// Name returns the collector's name.
func (c *JobsCollector) Name() string { return "jobs" }

// Run starts the jobs polling loop.
func (c *JobsCollector) Run(ctx context.Context, updates chan<- Update) error {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	emit := func() {
		jobs, err := LoadJobs(c.path)
		if err != nil {
			c.logger.WithError(err).Debug("Jobs file not readable")
			return
		}
		select {
		case updates <- Update{Type: UpdateJobs, Source: c.Name(), Payload: jobs}:
		case <-ctx.Done():
		}
	}

	emit()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			emit()
		}
	}
}

// LoadJobs parses a jobs.json file into the API view. A missing file yields
// an empty list, not an error.
func LoadJobs(path string) ([]models.JobStatus, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return []models.JobStatus{}, nil
		}
		return nil, err
	}

	var file jobsFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, err
	}

	jobs := make([]models.JobStatus, 0, len(file.Jobs))
	for _, raw := range file.Jobs {
		job := models.JobStatus{
			ID:                raw.ID,
			Name:              raw.Name,
			Enabled:           raw.Enabled,
			Schedule:          formatSchedule(raw.Schedule.Kind, raw.Schedule.Expr, raw.Schedule.EveryMs),
			LastStatus:        raw.State.LastStatus,
			LastDurationMs:    raw.State.LastDurationMs,
			ConsecutiveErrors: raw.State.ConsecutiveErrors,
			ErrorMessage:      raw.State.LastError,
		}
		if raw.State.LastRunAtMs > 0 {
			job.LastRun = time.UnixMilli(raw.State.LastRunAtMs).UTC().Format(time.RFC3339)
		}
		if raw.State.NextRunAtMs > 0 {
			job.NextRun = time.UnixMilli(raw.State.NextRunAtMs).UTC().Format(time.RFC3339)
		}
		jobs = append(jobs, job)
	}
	return jobs, nil
}

func formatSchedule(kind, expr string, everyMs int64) string {
	switch kind {
	case "cron":
		return expr
	case "every":
		if everyMs >= 3600000 {
			return fmt.Sprintf("Every %dh", everyMs/3600000)
		}
		return fmt.Sprintf("Every %dm", everyMs/60000)
	default:
		return "Unknown"
	}
}
