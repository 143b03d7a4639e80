// Package store holds the current discovery snapshot for the dashd daemon.
package store

import (
	"sync"

	"github.com/openclaw/dashd/pkg/models"
)

// Store is the discovery cache: it owns the current WorkspaceSnapshot and
// supports many concurrent readers with atomic replacement by a single
// writer. Snapshots are treated as immutable once installed; readers must
// not modify what they receive.
type Store struct {
	mu   sync.RWMutex
	snap *models.WorkspaceSnapshot
}

// New creates an empty store. Current returns ok=false until the first
// Replace.
func New() *Store {
	return &Store{}
}

// Current returns the current snapshot. ok is false before the first
// successful scan; callers must surface that as "not yet discovered", never
// as an error.
func (s *Store) Current() (*models.WorkspaceSnapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap, s.snap != nil
}

// Replace atomically installs a new snapshot as current. Readers observe
// either the fully-old or fully-new snapshot, never a mix.
func (s *Store) Replace(snap *models.WorkspaceSnapshot) {
	s.mu.Lock()
	s.snap = snap
	s.mu.Unlock()
}
