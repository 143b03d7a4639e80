package engine

import (
	"context"
	"testing"
	"time"

	"github.com/openclaw/dashd/config"
	"github.com/openclaw/dashd/internal/daemon/channel"
	"github.com/openclaw/dashd/internal/daemon/collector"
	"github.com/openclaw/dashd/logging"
	"github.com/openclaw/dashd/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubCollector emits a fixed sequence of updates, then idles until the
// context is canceled.
type stubCollector struct {
	name    string
	updates []collector.Update
}

func (s *stubCollector) Name() string { return s.name }

func (s *stubCollector) Run(ctx context.Context, updates chan<- collector.Update) error {
	for _, u := range s.updates {
		select {
		case updates <- u:
		case <-ctx.Done():
			return nil
		}
	}
	<-ctx.Done()
	return nil
}

func TestEngineAppliesCollectorUpdates(t *testing.T) {
	eng := New(nil, logging.NewTestLogger())
	eng.Register(&stubCollector{name: "jobs", updates: []collector.Update{{
		Type:   collector.UpdateJobs,
		Source: "jobs",
		Payload: []models.JobStatus{
			{ID: "job-1", Name: "nightly sync", Enabled: true},
		},
	}}})
	eng.Register(&stubCollector{name: "sessions", updates: []collector.Update{{
		Type:    collector.UpdateSessions,
		Source:  "sessions",
		Payload: []models.SessionInfo{{ID: "s-1", Status: "active"}},
	}}})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		eng.Start(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool {
		return len(eng.Jobs()) == 1 && len(eng.Sessions()) == 1
	}, time.Second, 5*time.Millisecond)

	assert.Equal(t, "job-1", eng.Jobs()[0].ID)
	assert.Equal(t, "s-1", eng.Sessions()[0].ID)

	cancel()
	<-done
}

type captureConn struct {
	frames chan models.Frame
}

func (c *captureConn) WriteJSON(v interface{}) error {
	if frame, ok := v.(models.Frame); ok {
		c.frames <- frame
	}
	return nil
}

func (c *captureConn) Close() error { return nil }

func TestEngineRepublishesOnRealtimeChannel(t *testing.T) {
	logger := logging.NewTestLogger()
	mgr := channel.NewManager(config.ChannelConfig{QueueBound: 10, SendTimeoutSeconds: 1, HeartbeatSeconds: 30}, logger)
	conn := &captureConn{frames: make(chan models.Frame, 1)}
	mgr.Subscribe(models.ChannelRealtime, conn)

	eng := New(mgr, logger)
	eng.Register(&stubCollector{name: "jobs", updates: []collector.Update{{
		Type:    collector.UpdateJobs,
		Source:  "jobs",
		Payload: []models.JobStatus{{ID: "job-1"}},
	}}})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go eng.Start(ctx)

	select {
	case frame := <-conn.frames:
		assert.Equal(t, models.ChannelRealtime, frame.Channel)
		assert.Equal(t, models.FrameJobs, frame.Type)
	case <-time.After(time.Second):
		t.Fatal("no jobs frame republished")
	}
}

func TestEngineViewsEmptyByDefault(t *testing.T) {
	eng := New(nil, logging.NewTestLogger())
	assert.NotNil(t, eng.Jobs())
	assert.Empty(t, eng.Jobs())
	assert.NotNil(t, eng.Sessions())
	assert.Empty(t, eng.Sessions())
}
