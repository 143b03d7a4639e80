package models

// JobStatus is the read-only view of one cron job from the workspace's
// cron/jobs.json file.
type JobStatus struct {
	ID                string `json:"id"`
	Name              string `json:"name"`
	Enabled           bool   `json:"enabled"`
	Schedule          string `json:"schedule"`
	LastRun           string `json:"last_run,omitempty"`
	LastStatus        string `json:"last_status,omitempty"`
	LastDurationMs    int64  `json:"last_duration,omitempty"`
	ConsecutiveErrors int    `json:"consecutive_errors"`
	NextRun           string `json:"next_run,omitempty"`
	ErrorMessage      string `json:"error_message,omitempty"`
}

// SessionInfo summarizes one agent session transcript file.
type SessionInfo struct {
	ID           string `json:"id"`
	Started      string `json:"started"`
	LastActivity string `json:"last_activity"`
	Messages     int    `json:"messages"`
	Model        string `json:"model"`
	Status       string `json:"status"`
}

// Overview aggregates top-level dashboard counters from the discovery
// snapshot and the supplemental collectors.
type Overview struct {
	TotalJobs      int    `json:"total_jobs"`
	ActiveJobs     int    `json:"active_jobs"`
	ErrorJobs      int    `json:"error_jobs"`
	ActiveSessions int    `json:"active_sessions"`
	PipelinesCount int    `json:"pipelines_count"`
	AgentsCount    int    `json:"agents_count"`
	SkillsCount    int    `json:"skills_count"`
	LastUpdated    string `json:"last_updated"`
}
