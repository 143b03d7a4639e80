package store

import (
	"sync"
	"testing"

	"github.com/openclaw/dashd/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func snapshotWithPipelines(n int) *models.WorkspaceSnapshot {
	pipelines := make([]models.PipelineRecord, n)
	for i := range pipelines {
		pipelines[i] = models.PipelineRecord{ID: "p", Status: models.StatusIdle}
	}
	return &models.WorkspaceSnapshot{
		WorkspaceRoot: "/ws",
		Pipelines:     pipelines,
		Metrics:       map[string]int{"pipelines_total": n},
	}
}

func TestCurrentBeforeFirstReplace(t *testing.T) {
	s := New()
	snap, ok := s.Current()
	assert.False(t, ok)
	assert.Nil(t, snap)
}

func TestReplaceAndCurrent(t *testing.T) {
	s := New()
	want := snapshotWithPipelines(2)
	s.Replace(want)

	got, ok := s.Current()
	require.True(t, ok)
	assert.Same(t, want, got)
}

func TestConcurrentReadersSeeConsistentSnapshots(t *testing.T) {
	s := New()
	s.Replace(snapshotWithPipelines(1))

	var wg sync.WaitGroup
	stop := make(chan struct{})

	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			s.Replace(snapshotWithPipelines(i % 5))
		}
		close(stop)
	}()

	for r := 0; r < 4; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				snap, ok := s.Current()
				if !ok {
					t.Error("snapshot disappeared after first replace")
					return
				}
				// Readers must never see a half-replaced snapshot.
				if len(snap.Pipelines) != snap.Metrics["pipelines_total"] {
					t.Errorf("inconsistent snapshot: %d pipelines, metric %d",
						len(snap.Pipelines), snap.Metrics["pipelines_total"])
					return
				}
			}
		}()
	}

	wg.Wait()
}
