package collector

import (
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/openclaw/dashd/logging"
	"github.com/openclaw/dashd/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sessionLine(ts, model string) string {
	return fmt.Sprintf(`{"timestamp":%q,"model":%q,"role":"assistant"}`, ts, model)
}

func TestLoadSessions(t *testing.T) {
	ws := testutil.NewWorkspace(t)
	ws.AddFile("agents/main/sessions/20260830-120000.jsonl", strings.Join([]string{
		sessionLine("2026-08-30T12:00:00Z", "sonnet"),
		sessionLine("2026-08-30T12:01:00Z", "sonnet"),
		sessionLine("2026-08-30T12:05:00Z", "sonnet"),
	}, "\n"))
	ws.AddFile("agents/main/sessions/notes.txt", "not a transcript")

	sessions := LoadSessions(filepath.Join(ws.Root, "agents", "main", "sessions"), logging.NewTestLogger())
	require.Len(t, sessions, 1)

	s := sessions[0]
	assert.Equal(t, "20260830-120000", s.ID)
	assert.Equal(t, "2026-08-30T12:00:00Z", s.Started)
	assert.Equal(t, "2026-08-30T12:05:00Z", s.LastActivity)
	assert.Equal(t, 3, s.Messages)
	assert.Equal(t, "sonnet", s.Model)
	assert.Equal(t, "active", s.Status)
}

func TestLoadSessionsArchivedAndCapped(t *testing.T) {
	ws := testutil.NewWorkspace(t)

	var long []string
	for i := 0; i < archiveThreshold; i++ {
		long = append(long, sessionLine("2026-08-29T10:00:00Z", "opus"))
	}
	ws.AddFile("agents/main/sessions/20260829-100000.jsonl", strings.Join(long, "\n"))

	for i := 0; i < maxSessions+5; i++ {
		ws.AddFile(fmt.Sprintf("agents/main/sessions/20260828-%06d.jsonl", i),
			sessionLine("2026-08-28T09:00:00Z", "haiku"))
	}

	sessions := LoadSessions(filepath.Join(ws.Root, "agents", "main", "sessions"), logging.NewTestLogger())
	assert.Len(t, sessions, maxSessions)

	// Newest names sort first; the long transcript is newest.
	assert.Equal(t, "20260829-100000", sessions[0].ID)
	assert.Equal(t, "archived", sessions[0].Status)
}

func TestLoadSessionsMissingDir(t *testing.T) {
	sessions := LoadSessions(filepath.Join(t.TempDir(), "nope"), logging.NewTestLogger())
	assert.NotNil(t, sessions)
	assert.Empty(t, sessions)
}

func TestSummarizeTranscriptUnknownModel(t *testing.T) {
	ws := testutil.NewWorkspace(t)
	path := ws.AddFile("agents/main/sessions/s.jsonl", `{"timestamp":"2026-08-30T12:00:00Z"}`)

	info, err := summarizeTranscript(path)
	require.NoError(t, err)
	assert.Equal(t, "unknown", info.Model)
	assert.Equal(t, 1, info.Messages)
}
