// Package notify bridges snapshot replacements to the channel manager.
package notify

import (
	"github.com/openclaw/dashd/internal/daemon/channel"
	"github.com/openclaw/dashd/pkg/models"
	"github.com/sirupsen/logrus"
)

// maxDeltaIdentities caps each added/removed list so a single frame stays
// bounded no matter how much the workspace changed between scans.
const maxDeltaIdentities = 50

// Notifier publishes a snapshot delta on the realtime channel after each
// successful rescan. It is never invoked for failed scans.
type Notifier struct {
	manager *channel.Manager
	logger  *logrus.Entry
}

// New creates a notifier on top of a channel manager.
func New(manager *channel.Manager, logger *logrus.Entry) *Notifier {
	return &Notifier{manager: manager, logger: logger}
}

// SnapshotReplaced computes the delta between the previous and new snapshot
// and publishes it. Publishing happens on a separate goroutine so the
// scheduler never blocks on channel delivery. prev may be nil on the first
// successful scan.
func (n *Notifier) SnapshotReplaced(prev, next *models.WorkspaceSnapshot) {
	delta := ComputeDelta(prev, next)
	go func() {
		delivered := n.manager.Publish(models.ChannelRealtime, models.Frame{
			Channel: models.ChannelRealtime,
			Type:    models.FrameSnapshotDelta,
			Payload: delta,
		})
		n.logger.WithField("subscribers", delivered).Debug("Snapshot delta published")
	}()
}

// ComputeDelta produces the bounded per-kind added/removed identity lists.
func ComputeDelta(prev, next *models.WorkspaceSnapshot) *models.SnapshotDelta {
	delta := &models.SnapshotDelta{
		DetectedAt: next.DetectedAt,
		Added:      make(map[string][]string),
		Removed:    make(map[string][]string),
		Metrics:    next.Metrics,
	}

	prevIDs := identitySets(prev)
	nextIDs := identitySets(next)

	for kind, ids := range nextIDs {
		for _, id := range ids {
			if !contains(prevIDs[kind], id) {
				delta.Added[kind] = appendCapped(delta.Added[kind], id, &delta.Truncated)
			}
		}
	}
	for kind, ids := range prevIDs {
		for _, id := range ids {
			if !contains(nextIDs[kind], id) {
				delta.Removed[kind] = appendCapped(delta.Removed[kind], id, &delta.Truncated)
			}
		}
	}
	return delta
}

func identitySets(snap *models.WorkspaceSnapshot) map[string][]string {
	ids := map[string][]string{}
	if snap == nil {
		return ids
	}
	for _, p := range snap.Pipelines {
		ids["pipelines"] = append(ids["pipelines"], p.ID)
	}
	for _, a := range snap.Agents {
		ids["agents"] = append(ids["agents"], a.ConfigPath)
	}
	for _, s := range snap.Skills {
		ids["skills"] = append(ids["skills"], s.Name)
	}
	for _, m := range snap.CustomModules {
		ids["custom_modules"] = append(ids["custom_modules"], m.Name)
	}
	return ids
}

func contains(ids []string, id string) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}

func appendCapped(ids []string, id string, truncated *bool) []string {
	if len(ids) >= maxDeltaIdentities {
		*truncated = true
		return ids
	}
	return append(ids, id)
}
