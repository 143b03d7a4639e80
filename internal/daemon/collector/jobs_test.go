package collector

import (
	"path/filepath"
	"testing"

	"github.com/openclaw/dashd/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const jobsFixture = `{
  "jobs": [
    {
      "id": "job-1",
      "name": "nightly sync",
      "enabled": true,
      "schedule": {"kind": "cron", "expr": "0 3 * * *"},
      "state": {
        "lastRunAtMs": 1756600000000,
        "nextRunAtMs": 1756686400000,
        "lastStatus": "ok",
        "lastDurationMs": 4200,
        "consecutiveErrors": 0
      }
    },
    {
      "id": "job-2",
      "name": "heartbeat",
      "enabled": false,
      "schedule": {"kind": "every", "everyMs": 900000},
      "state": {
        "lastStatus": "error",
        "consecutiveErrors": 3,
        "lastError": "exit status 1"
      }
    }
  ]
}`

func TestLoadJobs(t *testing.T) {
	ws := testutil.NewWorkspace(t)
	path := ws.AddFile("cron/jobs.json", jobsFixture)

	jobs, err := LoadJobs(path)
	require.NoError(t, err)
	require.Len(t, jobs, 2)

	assert.Equal(t, "job-1", jobs[0].ID)
	assert.Equal(t, "nightly sync", jobs[0].Name)
	assert.True(t, jobs[0].Enabled)
	assert.Equal(t, "0 3 * * *", jobs[0].Schedule)
	assert.Equal(t, "ok", jobs[0].LastStatus)
	assert.Equal(t, int64(4200), jobs[0].LastDurationMs)
	assert.NotEmpty(t, jobs[0].LastRun)
	assert.NotEmpty(t, jobs[0].NextRun)

	assert.Equal(t, "job-2", jobs[1].ID)
	assert.False(t, jobs[1].Enabled)
	assert.Equal(t, "Every 15m", jobs[1].Schedule)
	assert.Equal(t, 3, jobs[1].ConsecutiveErrors)
	assert.Equal(t, "exit status 1", jobs[1].ErrorMessage)
	assert.Empty(t, jobs[1].LastRun)
}

func TestLoadJobsMissingFile(t *testing.T) {
	jobs, err := LoadJobs(filepath.Join(t.TempDir(), "cron", "jobs.json"))
	require.NoError(t, err)
	assert.NotNil(t, jobs)
	assert.Empty(t, jobs)
}

func TestLoadJobsMalformed(t *testing.T) {
	ws := testutil.NewWorkspace(t)
	path := ws.AddFile("cron/jobs.json", "{not json")

	_, err := LoadJobs(path)
	assert.Error(t, err)
}

func TestFormatSchedule(t *testing.T) {
	assert.Equal(t, "*/5 * * * *", formatSchedule("cron", "*/5 * * * *", 0))
	assert.Equal(t, "Every 2h", formatSchedule("every", "", 7200000))
	assert.Equal(t, "Every 30m", formatSchedule("every", "", 1800000))
	assert.Equal(t, "Unknown", formatSchedule("manual", "", 0))
}
