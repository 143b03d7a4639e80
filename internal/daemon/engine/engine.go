// Package engine orchestrates the supplemental collectors and republishes
// their updates on the realtime channel.
package engine

import (
	"context"
	"sync"

	"github.com/openclaw/dashd/internal/daemon/channel"
	"github.com/openclaw/dashd/internal/daemon/collector"
	"github.com/openclaw/dashd/pkg/models"
	"github.com/sirupsen/logrus"
)

// Engine manages and runs all collectors. It keeps the latest jobs and
// sessions views for REST readers and forwards every update as a frame on
// the realtime channel.
type Engine struct {
	collectors []collector.Collector
	manager    *channel.Manager
	logger     *logrus.Entry

	mu       sync.RWMutex
	jobs     []models.JobStatus
	sessions []models.SessionInfo
}

// New creates a new Engine instance. manager may be nil (no republishing).
func New(manager *channel.Manager, logger *logrus.Entry) *Engine {
	return &Engine{
		manager:  manager,
		logger:   logger,
		jobs:     []models.JobStatus{},
		sessions: []models.SessionInfo{},
	}
}

// Register adds a collector to the engine.
func (e *Engine) Register(c collector.Collector) {
	e.collectors = append(e.collectors, c)
}

// Start runs all collectors and blocks until the context is canceled.
func (e *Engine) Start(ctx context.Context) {
	updates := make(chan collector.Update, 100)
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case u := <-updates:
				e.apply(u)
			}
		}
	}()

	for _, c := range e.collectors {
		wg.Add(1)
		go func(col collector.Collector) {
			defer wg.Done()
			e.logger.WithField("collector", col.Name()).Info("Starting collector")
			if err := col.Run(ctx, updates); err != nil {
				e.logger.WithField("collector", col.Name()).WithError(err).Error("Collector failed")
			}
		}(c)
	}

	wg.Wait()
}

// Jobs returns the latest jobs view.
func (e *Engine) Jobs() []models.JobStatus {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.jobs
}

// Sessions returns the latest sessions view.
func (e *Engine) Sessions() []models.SessionInfo {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.sessions
}

// apply installs an update and republishes it to channel subscribers.
func (e *Engine) apply(u collector.Update) {
	var frameType string

	e.mu.Lock()
	switch u.Type {
	case collector.UpdateJobs:
		if jobs, ok := u.Payload.([]models.JobStatus); ok {
			e.jobs = jobs
			frameType = models.FrameJobs
		}
	case collector.UpdateSessions:
		if sessions, ok := u.Payload.([]models.SessionInfo); ok {
			e.sessions = sessions
			frameType = models.FrameSessions
		}
	}
	e.mu.Unlock()

	if frameType == "" || e.manager == nil {
		return
	}
	e.manager.Publish(models.ChannelRealtime, models.Frame{
		Channel: models.ChannelRealtime,
		Type:    frameType,
		Payload: u.Payload,
	})
}
