package notify

import (
	"fmt"
	"testing"
	"time"

	"github.com/openclaw/dashd/config"
	"github.com/openclaw/dashd/internal/daemon/channel"
	"github.com/openclaw/dashd/logging"
	"github.com/openclaw/dashd/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func snapshot(pipelines []string, skills []string) *models.WorkspaceSnapshot {
	snap := &models.WorkspaceSnapshot{
		DetectedAt: time.Now(),
		Metrics:    map[string]int{"pipelines_total": len(pipelines)},
	}
	for _, id := range pipelines {
		snap.Pipelines = append(snap.Pipelines, models.PipelineRecord{ID: id})
	}
	for _, name := range skills {
		snap.Skills = append(snap.Skills, models.SkillRecord{Name: name})
	}
	return snap
}

func TestComputeDeltaAddedAndRemoved(t *testing.T) {
	prev := snapshot([]string{"/ws/a-pipeline", "/ws/b-pipeline"}, []string{"parser"})
	next := snapshot([]string{"/ws/b-pipeline", "/ws/c-pipeline"}, []string{"parser", "scraper"})

	delta := ComputeDelta(prev, next)

	assert.Equal(t, []string{"/ws/c-pipeline"}, delta.Added["pipelines"])
	assert.Equal(t, []string{"/ws/a-pipeline"}, delta.Removed["pipelines"])
	assert.Equal(t, []string{"scraper"}, delta.Added["skills"])
	assert.Empty(t, delta.Removed["skills"])
	assert.False(t, delta.Truncated)
	assert.Equal(t, next.Metrics, delta.Metrics)
	assert.Equal(t, next.DetectedAt, delta.DetectedAt)
}

func TestComputeDeltaFirstScan(t *testing.T) {
	next := snapshot([]string{"/ws/a-pipeline"}, nil)
	delta := ComputeDelta(nil, next)

	assert.Equal(t, []string{"/ws/a-pipeline"}, delta.Added["pipelines"])
	assert.Empty(t, delta.Removed)
}

func TestComputeDeltaNoChanges(t *testing.T) {
	prev := snapshot([]string{"/ws/a-pipeline"}, []string{"parser"})
	next := snapshot([]string{"/ws/a-pipeline"}, []string{"parser"})

	delta := ComputeDelta(prev, next)
	assert.Empty(t, delta.Added)
	assert.Empty(t, delta.Removed)
}

func TestComputeDeltaTruncation(t *testing.T) {
	var ids []string
	for i := 0; i < maxDeltaIdentities+10; i++ {
		ids = append(ids, fmt.Sprintf("/ws/p%03d-pipeline", i))
	}
	delta := ComputeDelta(nil, snapshot(ids, nil))

	assert.Len(t, delta.Added["pipelines"], maxDeltaIdentities)
	assert.True(t, delta.Truncated)
}

// recordingConn is a minimal channel.Conn for observing published frames.
type recordingConn struct {
	frames chan models.Frame
}

func (r *recordingConn) WriteJSON(v interface{}) error {
	if frame, ok := v.(models.Frame); ok {
		r.frames <- frame
	}
	return nil
}

func (r *recordingConn) Close() error { return nil }

func TestSnapshotReplacedPublishesDelta(t *testing.T) {
	logger := logging.NewTestLogger()
	mgr := channel.NewManager(config.ChannelConfig{QueueBound: 10, SendTimeoutSeconds: 1, HeartbeatSeconds: 30}, logger)
	conn := &recordingConn{frames: make(chan models.Frame, 1)}
	mgr.Subscribe(models.ChannelRealtime, conn)

	n := New(mgr, logger)
	n.SnapshotReplaced(nil, snapshot([]string{"/ws/a-pipeline"}, nil))

	select {
	case frame := <-conn.frames:
		assert.Equal(t, models.ChannelRealtime, frame.Channel)
		assert.Equal(t, models.FrameSnapshotDelta, frame.Type)
		delta, ok := frame.Payload.(*models.SnapshotDelta)
		require.True(t, ok)
		assert.Equal(t, []string{"/ws/a-pipeline"}, delta.Added["pipelines"])
	case <-time.After(time.Second):
		t.Fatal("no delta frame published")
	}
}
