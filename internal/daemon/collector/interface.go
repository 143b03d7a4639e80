// Package collector provides background workers that read supplemental
// workspace state (cron jobs, agent sessions) for the daemon.
package collector

import "context"

// UpdateType identifies what kind of data an update carries.
type UpdateType string

const (
	UpdateJobs     UpdateType = "jobs"
	UpdateSessions UpdateType = "sessions"
)

// Update is one state change emitted by a collector.
type Update struct {
	Type    UpdateType
	Source  string
	Payload interface{}
}

// Collector is a background worker that fetches data and emits updates.
type Collector interface {
	// Name returns the collector's name for logging.
	Name() string

	// Run starts the collector. It blocks until the context is canceled
	// and emits updates via the updates channel.
	Run(ctx context.Context, updates chan<- Update) error
}
