// Package scheduler drives periodic discovery scans and coalesces manual
// refresh requests.
package scheduler

import (
	"context"
	"time"

	"github.com/openclaw/dashd/errors"
	"github.com/openclaw/dashd/internal/daemon/notify"
	"github.com/openclaw/dashd/internal/daemon/store"
	"github.com/openclaw/dashd/pkg/models"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

// ScanFunc performs one full discovery scan and returns the new snapshot.
// The scheduler wires this to the scanner + builder pair; tests inject
// stubs.
type ScanFunc func(ctx context.Context) (*models.WorkspaceSnapshot, error)

// Scheduler owns the scan cadence. Exactly one scan runs at a time
// system-wide: the timer loop serializes its own scans, and concurrent
// ScanNow callers are collapsed onto the in-flight scan by singleflight.
type Scheduler struct {
	interval time.Duration
	scan     ScanFunc
	store    *store.Store
	notifier *notify.Notifier
	logger   *logrus.Entry

	group singleflight.Group

	// refresh carries coalesced on-demand requests. Capacity one: any
	// number of refreshes arriving during an in-flight scan queue exactly
	// one follow-up scan.
	refresh chan struct{}
}

// New creates a scheduler. notifier may be nil (no realtime publishing).
func New(interval time.Duration, scan ScanFunc, st *store.Store, notifier *notify.Notifier, logger *logrus.Entry) *Scheduler {
	return &Scheduler{
		interval: interval,
		scan:     scan,
		store:    st,
		notifier: notifier,
		logger:   logger,
		refresh:  make(chan struct{}, 1),
	}
}

// Run performs an initial scan, then rescans on the configured interval and
// whenever a refresh request is pending. It blocks until the context is
// canceled. Scan failures are logged and leave the cache untouched; the
// timer keeps going.
func (s *Scheduler) Run(ctx context.Context) {
	s.scanOnce(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.scanOnce(ctx)
		case <-s.refresh:
			s.scanOnce(ctx)
		}
	}
}

// Refresh requests an on-demand rescan and returns immediately. If a scan
// is already in flight the request coalesces into the follow-up scan slot;
// this is never an error.
func (s *Scheduler) Refresh() {
	select {
	case s.refresh <- struct{}{}:
	default:
	}
}

// ScanNow runs one scan synchronously and returns the resulting snapshot.
// Concurrent callers share a single scan execution.
func (s *Scheduler) ScanNow(ctx context.Context) (*models.WorkspaceSnapshot, error) {
	result, err, _ := s.group.Do("scan", func() (interface{}, error) {
		snap, err := s.scan(ctx)
		if err != nil {
			return nil, err
		}

		prev, _ := s.store.Current()
		s.store.Replace(snap)
		if s.notifier != nil {
			s.notifier.SnapshotReplaced(prev, snap)
		}
		return snap, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*models.WorkspaceSnapshot), nil
}

// scanOnce is the loop-side wrapper: a failed scan is contained here and
// never reaches cache readers.
func (s *Scheduler) scanOnce(ctx context.Context) {
	start := time.Now()
	snap, err := s.ScanNow(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		if errors.Is(err, errors.ErrCodeWorkspaceUnavailable) {
			s.logger.WithError(err).Error("Scan aborted, retaining previous snapshot")
		} else {
			s.logger.WithError(err).Error("Scan failed")
		}
		return
	}

	s.logger.WithFields(logrus.Fields{
		"duration":  time.Since(start).Round(time.Millisecond),
		"pipelines": len(snap.Pipelines),
		"agents":    len(snap.Agents),
		"skills":    len(snap.Skills),
	}).Info("Discovery scan complete")
}
